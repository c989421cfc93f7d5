package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	repo EntryRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewService(repo EntryRepository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// Record writes an audit entry. A failed write is logged and swallowed so
// auditing never breaks the operation being audited.
func (s *Service) Record(ctx context.Context, e *Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	if err := s.repo.Create(ctx, e); err != nil {
		s.log.Error().Err(err).
			Str("action", e.Action).
			Str("actor_id", e.ActorID.String()).
			Msg("audit entry dropped")
	}
}

// Create is the strict variant used by the ingestion endpoint, where the
// caller wants to know the entry was persisted.
func (s *Service) Create(ctx context.Context, e *Entry) error {
	if e.ActorID == uuid.Nil {
		return fmt.Errorf("actor_id is required")
	}
	if e.Action == "" {
		return fmt.Errorf("action is required")
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Entry, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	return s.repo.ListByActor(ctx, actorID, limit, offset)
}
