package audit

import (
	"context"

	"github.com/google/uuid"
)

// EntryRepository is intentionally append-only.
type EntryRepository interface {
	Create(ctx context.Context, e *Entry) error
	List(ctx context.Context, limit, offset int) ([]*Entry, int, error)
	ListByActor(ctx context.Context, actorID uuid.UUID, limit, offset int) ([]*Entry, int, error)
}
