package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// Prescription statuses. Transitions move strictly forward through the
// dispensing workflow, except the explicit reopen of a completed
// prescription when a refill is authorized.
const (
	StatusPending   = "Pending"
	StatusActive    = "Active"
	StatusDispensed = "Dispensed"
	StatusCompleted = "Completed"
)

// Prescription represents a drug order for a patient.
type Prescription struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patient_id"`
	PrescriberID     uuid.UUID  `db:"prescriber_id" json:"prescriber_id"`
	DrugName         string     `db:"drug_name" json:"drug_name"`
	Dosage           string     `db:"dosage" json:"dosage"`
	Status           string     `db:"status" json:"status"`
	RefillsRemaining int        `db:"refills_remaining" json:"refills_remaining"`
	LastFilled       *time.Time `db:"last_filled" json:"last_filled,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// EntityID returns the stable identity used by cache reconciliation.
func (p *Prescription) EntityID() uuid.UUID { return p.ID }

var prescriptionRank = map[string]int{
	StatusPending:   0,
	StatusActive:    1,
	StatusDispensed: 2,
	StatusCompleted: 3,
}

// CanTransition reports whether a prescription may move between statuses.
// Forward moves only; Completed -> Active is the one sanctioned reopen.
func CanTransition(from, to string) bool {
	if from == StatusCompleted && to == StatusActive {
		return true
	}
	fromRank, okFrom := prescriptionRank[from]
	toRank, okTo := prescriptionRank[to]
	if !okFrom || !okTo {
		return false
	}
	return toRank > fromRank
}
