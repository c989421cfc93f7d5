package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message is a chat message in a room. Messages are immutable after
// creation; there is no edit or server-side delete.
//
// Rooms are keyed by patient id (care-team discussion about a patient) or
// user id (direct messages).
type Message struct {
	ID         uuid.UUID `db:"id" json:"id"`
	RoomID     string    `db:"room_id" json:"room_id"`
	SenderID   uuid.UUID `db:"sender_id" json:"sender_id"`
	SenderRole string    `db:"sender_role" json:"sender_role"`
	Content    string    `db:"content" json:"content"`
	Attachment *string   `db:"attachment" json:"attachment,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// EntityID returns the stable identity used by cache reconciliation.
func (m *Message) EntityID() uuid.UUID { return m.ID }
