package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/caresync/caresync/internal/domain/chat"
	"github.com/caresync/caresync/internal/sync/signal"
	"github.com/caresync/caresync/internal/sync/store"
)

// SendMessage appends a chat message to the replica and persists it to
// the room's message log. Messages are immutable after creation.
func (e *Engine) SendMessage(ctx context.Context, m *chat.Message) error {
	if m.RoomID == "" {
		return fmt.Errorf("%w: room_id is required", ErrValidation)
	}
	if m.SenderID == uuid.Nil {
		return fmt.Errorf("%w: sender_id is required", ErrValidation)
	}
	if m.Content == "" && m.Attachment == nil {
		return fmt.Errorf("%w: content or attachment is required", ErrValidation)
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = e.now()
	}

	e.store.Append(store.Messages, m)
	e.publish(store.Messages, signal.OriginLocal)
	return e.persist(ctx, store.Messages, m.ID, "/api/v1/rooms/"+m.RoomID+"/messages", m)
}

// ApplyInboundMessage folds a message delivered over the real-time
// channel into the replica. Messages already present (our own echo) are
// left alone.
func (e *Engine) ApplyInboundMessage(m *chat.Message) {
	if m.ID == uuid.Nil {
		return
	}
	if _, exists := e.store.Find(store.Messages, m.ID); exists {
		return
	}
	e.store.Append(store.Messages, m)
	e.confirm(store.Messages, m.ID)
	e.publish(store.Messages, signal.OriginRemote)
}

// RemoveMessageLocal drops a message from the local replica only. There
// is no server-side message delete; the tombstone lasts until the next
// reconciliation restores the server copy.
func (e *Engine) RemoveMessageLocal(id uuid.UUID) error {
	if !e.store.Remove(store.Messages, id) {
		return fmt.Errorf("%w: message %s", ErrNotFound, id)
	}
	e.publish(store.Messages, signal.OriginLocal)
	return nil
}
