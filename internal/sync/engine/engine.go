// Package engine owns the client replica. It is the only mutator of the
// local cache store: every write goes through an engine operation that
// validates, applies the change optimistically, fires the change signal,
// and then persists to the server of record.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caresync/caresync/internal/platform/phi"
	"github.com/caresync/caresync/internal/sync/api"
	"github.com/caresync/caresync/internal/sync/signal"
	"github.com/caresync/caresync/internal/sync/store"
)

// Error taxonomy. Validation errors reject synchronously before any
// mutation; persistence errors mean the optimistic local write stands but
// the server write failed and will be retried by the next user action or
// reconciliation cycle.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("server persistence failed")
)

// Remote is the transport to the server of record.
type Remote interface {
	Snapshot(ctx context.Context) (*api.SnapshotPayload, error)
	Post(ctx context.Context, path string, body, out interface{}) error
	Put(ctx context.Context, path string, body, out interface{}) error
	Delete(ctx context.Context, path string) error
}

type Engine struct {
	store  *store.Store
	bus    *signal.Bus
	remote Remote
	phi    *phi.Service
	log    zerolog.Logger
	now    func() time.Time

	mu             sync.Mutex
	unconfirmed    map[store.Collection]map[uuid.UUID]struct{}
	lastReconciled map[store.Collection]string
}

func New(st *store.Store, bus *signal.Bus, remote Remote, phiSvc *phi.Service, log zerolog.Logger) *Engine {
	return &Engine{
		store:          st,
		bus:            bus,
		remote:         remote,
		phi:            phiSvc,
		log:            log,
		now:            time.Now,
		unconfirmed:    make(map[store.Collection]map[uuid.UUID]struct{}),
		lastReconciled: make(map[store.Collection]string),
	}
}

// GetAll reads the current replica of a collection, optionally filtered.
// It never touches the network.
func (e *Engine) GetAll(c store.Collection, filter func(store.Entity) bool) []store.Entity {
	items := e.store.Snapshot(c)
	if filter == nil {
		return items
	}
	var out []store.Entity
	for _, item := range items {
		if filter(item) {
			out = append(out, item)
		}
	}
	return out
}

// Find looks up one entity in the replica.
func (e *Engine) Find(c store.Collection, id uuid.UUID) (store.Entity, bool) {
	return e.store.Find(c, id)
}

func (e *Engine) publish(c store.Collection, origin signal.Origin) {
	e.bus.Publish(signal.Change{Collection: c, Origin: origin})
}

func (e *Engine) markUnconfirmed(c store.Collection, id uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.unconfirmed[c] == nil {
		e.unconfirmed[c] = make(map[uuid.UUID]struct{})
	}
	e.unconfirmed[c][id] = struct{}{}
}

func (e *Engine) confirm(c store.Collection, id uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.unconfirmed[c], id)
}

// Unconfirmed reports whether an entity has an optimistic local write the
// server has not yet acknowledged.
func (e *Engine) Unconfirmed(c store.Collection, id uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.unconfirmed[c][id]
	return ok
}

// persist sends the remote write for an already-applied local mutation.
// The id is marked unconfirmed before the request goes out and stays so
// for the whole round trip: a reconciliation that lands while the write
// is in flight re-appends the entity instead of clobbering it. Success
// confirms; failure keeps the local copy pending and the caller receives
// ErrPersistence. When the server actively reports the entity gone, the
// local copy is evicted instead.
func (e *Engine) persist(ctx context.Context, c store.Collection, id uuid.UUID, path string, body interface{}) error {
	e.markUnconfirmed(c, id)
	return e.afterPersist(c, id, e.remote.Post(ctx, path, body, nil))
}

// persistPut is persist for entity replacement writes.
func (e *Engine) persistPut(ctx context.Context, c store.Collection, id uuid.UUID, path string, body interface{}) error {
	e.markUnconfirmed(c, id)
	return e.afterPersist(c, id, e.remote.Put(ctx, path, body, nil))
}

func (e *Engine) afterPersist(c store.Collection, id uuid.UUID, err error) error {
	if err == nil {
		e.confirm(c, id)
		return nil
	}
	if errors.Is(err, api.ErrGone) {
		e.confirm(c, id)
		if e.store.Remove(c, id) {
			e.publish(c, signal.OriginRemote)
		}
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	e.log.Warn().Err(err).
		Str("collection", string(c)).
		Str("id", id.String()).
		Msg("remote persist failed, keeping local copy")
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
