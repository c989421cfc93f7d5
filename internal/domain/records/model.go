package records

import (
	"time"

	"github.com/google/uuid"
)

// Record is a dispatched medical record. Records are immutable once written;
// the only mutation the domain supports is an explicit, confirmed hard
// delete.
type Record struct {
	ID         uuid.UUID              `db:"id" json:"id"`
	PatientID  uuid.UUID              `db:"patient_id" json:"patient_id"`
	AuthorID   uuid.UUID              `db:"author_id" json:"author_id"`
	AuthorRole string                 `db:"author_role" json:"author_role"`
	Unit       string                 `db:"unit" json:"unit"`
	Payload    map[string]interface{} `db:"payload" json:"payload,omitempty"`
	CreatedAt  time.Time              `db:"created_at" json:"created_at"`
}

// EntityID returns the stable identity used by cache reconciliation.
func (r *Record) EntityID() uuid.UUID { return r.ID }
