package notify

import (
	"time"

	"github.com/google/uuid"
)

// Notification statuses. Movement is forward-only with one exception: a
// snoozed notification may be reactivated to Unread. Dismissed is terminal.
const (
	StatusUnread    = "Unread"
	StatusAccepted  = "Accepted"
	StatusSnoozed   = "Snoozed"
	StatusDismissed = "Dismissed"
)

// Notification types.
const (
	TypeAppointmentBooking   = "APPOINTMENT_BOOKING"
	TypePaymentConfirmation  = "PAYMENT_CONFIRMATION"
	TypePrescriptionReady    = "PRESCRIPTION_READY"
	TypeRecordDispatched     = "RECORD_DISPATCHED"
	TypeSystemAnnouncement   = "SYSTEM_ANNOUNCEMENT"
)

// Notification targets either a specific user or everyone holding a role.
type Notification struct {
	ID            uuid.UUID              `db:"id" json:"id"`
	RecipientID   *uuid.UUID             `db:"recipient_id" json:"recipient_id,omitempty"`
	RecipientRole string                 `db:"recipient_role" json:"recipient_role,omitempty"`
	Title         string                 `db:"title" json:"title"`
	Message       string                 `db:"message" json:"message"`
	Type          string                 `db:"type" json:"type"`
	Status        string                 `db:"status" json:"status"`
	Details       map[string]interface{} `db:"details" json:"details,omitempty"`
	CreatedAt     time.Time              `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time              `db:"updated_at" json:"updated_at"`
}

// EntityID returns the stable identity used by cache reconciliation.
func (n *Notification) EntityID() uuid.UUID { return n.ID }

// Active reports whether the notification should appear in active views.
func (n *Notification) Active() bool { return n.Status != StatusDismissed }

// CanTransition reports whether a notification may move between statuses.
func CanTransition(from, to string) bool {
	if from == to {
		return false
	}
	switch from {
	case StatusUnread:
		return to == StatusAccepted || to == StatusSnoozed || to == StatusDismissed
	case StatusSnoozed:
		return to == StatusUnread || to == StatusDismissed
	case StatusAccepted:
		return to == StatusDismissed
	default: // Dismissed is terminal
		return false
	}
}

// AppointmentID extracts the referenced appointment from the details payload
// of an APPOINTMENT_BOOKING notification.
func (n *Notification) AppointmentID() (uuid.UUID, bool) {
	if n.Details == nil {
		return uuid.Nil, false
	}
	raw, ok := n.Details["appointmentId"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
