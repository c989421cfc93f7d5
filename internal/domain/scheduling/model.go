package scheduling

import (
	"time"

	"github.com/google/uuid"
)

// Appointment statuses. The lifecycle moves strictly forward; Cancelled is
// reachable from any state except Completed and is terminal.
const (
	StatusUpcoming   = "Upcoming"
	StatusInProgress = "In Progress"
	StatusConfirmed  = "Confirmed"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
)

// Payment statuses derived from the amounts, never set directly.
const (
	PaymentUnpaid  = "Unpaid"
	PaymentPartial = "Partial"
	PaymentPaid    = "Paid"
)

// Appointment represents a scheduled encounter between a patient and a
// professional. Monetary amounts are in minor units (kobo/cents).
type Appointment struct {
	ID               uuid.UUID `db:"id" json:"id"`
	PatientID        uuid.UUID `db:"patient_id" json:"patient_id"`
	ProfessionalID   uuid.UUID `db:"professional_id" json:"professional_id"`
	ScheduledAt      time.Time `db:"scheduled_at" json:"scheduled_at"`
	Status           string    `db:"status" json:"status"`
	PaymentStatus    string    `db:"payment_status" json:"payment_status"`
	AgreedAmount     int64     `db:"agreed_amount" json:"agreed_amount"`
	AmountPaid       int64     `db:"amount_paid" json:"amount_paid"`
	BalanceDue       int64     `db:"balance_due" json:"balance_due"`
	ServicesRendered bool      `db:"services_rendered" json:"services_rendered"`
	Reason           *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// EntityID returns the stable identity used by cache reconciliation.
func (a *Appointment) EntityID() uuid.UUID { return a.ID }

// Open reports whether the appointment can still absorb a rendered service:
// it has been booked but not yet concluded.
func (a *Appointment) Open() bool {
	return a.Status == StatusUpcoming || a.Status == StatusInProgress
}

var statusRank = map[string]int{
	StatusUpcoming:   0,
	StatusInProgress: 1,
	StatusConfirmed:  2,
	StatusCompleted:  3,
}

// CanTransition reports whether an appointment may move from one status to
// another. Forward moves only; Cancelled is terminal and unreachable from
// Completed.
func CanTransition(from, to string) bool {
	if from == to {
		return false
	}
	if from == StatusCancelled {
		return false
	}
	if to == StatusCancelled {
		return from != StatusCompleted
	}
	fromRank, okFrom := statusRank[from]
	toRank, okTo := statusRank[to]
	if !okFrom || !okTo {
		return false
	}
	return toRank > fromRank
}

// RecomputeBalance re-derives balance_due and payment_status from the
// agreed and paid amounts. The balance is clamped at zero so an overpayment
// never produces a negative due amount.
func (a *Appointment) RecomputeBalance() {
	balance := a.AgreedAmount - a.AmountPaid
	if balance < 0 {
		balance = 0
	}
	a.BalanceDue = balance

	switch {
	case a.AgreedAmount > 0 && a.AmountPaid >= a.AgreedAmount:
		a.PaymentStatus = PaymentPaid
	case a.AmountPaid > 0:
		a.PaymentStatus = PaymentPartial
	default:
		a.PaymentStatus = PaymentUnpaid
	}
}
