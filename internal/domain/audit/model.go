package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one line in the activity log. Entries are append-only: once
// written they are never updated or deleted.
type Entry struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ActorID    uuid.UUID `db:"actor_id" json:"actor_id"`
	ActorName  string    `db:"actor_name" json:"actor_name"`
	Action     string    `db:"action" json:"action"`
	TargetID   string    `db:"target_id" json:"target_id,omitempty"`
	TargetName string    `db:"target_name" json:"target_name,omitempty"`
	Location   string    `db:"location" json:"location,omitempty"`
	Notes      string    `db:"notes" json:"notes,omitempty"`
	Timestamp  time.Time `db:"timestamp" json:"timestamp"`
}

func (e *Entry) EntityID() uuid.UUID { return e.ID }
