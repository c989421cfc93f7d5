package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/caresync/caresync/internal/domain/audit"
	"github.com/caresync/caresync/internal/sync/signal"
	"github.com/caresync/caresync/internal/sync/store"
)

// SaveAuditEntry appends to the audit collection. The local append always
// happens; only the server write can fail. Entries are never mutated or
// deleted.
func (e *Engine) SaveAuditEntry(ctx context.Context, entry *audit.Entry) error {
	if entry.ActorID == uuid.Nil {
		return fmt.Errorf("%w: actor_id is required", ErrValidation)
	}
	if entry.Action == "" {
		return fmt.Errorf("%w: action is required", ErrValidation)
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = e.now()
	}

	e.store.Append(store.AuditLog, entry)
	e.publish(store.AuditLog, signal.OriginLocal)
	return e.persist(ctx, store.AuditLog, entry.ID, "/api/v1/activity-logs", entry)
}
