package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Source produces the full contents of one collection for the snapshot
// payload. Implementations typically close over a domain service's List
// call.
type Source func(ctx context.Context) (interface{}, error)

// snapshotLimit caps how many rows a single collection contributes. The
// snapshot is a working-set bootstrap, not an export.
const snapshotLimit = 1000

// Service assembles the full-state payload that clients load on startup
// and re-fetch while reconciling.
type Service struct {
	sources map[string]Source
	order   []string
	log     zerolog.Logger
	now     func() time.Time
}

func NewService(log zerolog.Logger) *Service {
	return &Service{
		sources: make(map[string]Source),
		log:     log,
		now:     time.Now,
	}
}

// Register adds a collection to the snapshot. Registration order is
// preserved so payloads assemble deterministically.
func (s *Service) Register(key string, src Source) {
	if _, exists := s.sources[key]; !exists {
		s.order = append(s.order, key)
	}
	s.sources[key] = src
}

func (s *Service) Collections() []string {
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

// Payload is the snapshot wire shape.
type Payload struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Data        map[string]interface{} `json:"data"`
}

// Build assembles the snapshot. Any collection failing makes the whole
// snapshot fail: a partial snapshot would silently drop data on clients
// that replace their local state with it.
func (s *Service) Build(ctx context.Context) (*Payload, error) {
	started := s.now()
	data := make(map[string]interface{}, len(s.sources))
	for _, key := range s.order {
		items, err := s.sources[key](ctx)
		if err != nil {
			return nil, fmt.Errorf("snapshot collection %s: %w", key, err)
		}
		data[key] = items
	}
	s.log.Debug().
		Int("collections", len(data)).
		Dur("took", s.now().Sub(started)).
		Msg("snapshot assembled")
	return &Payload{GeneratedAt: started, Data: data}, nil
}
