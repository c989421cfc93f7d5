package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/caresync/caresync/internal/domain/notify"
	"github.com/caresync/caresync/internal/domain/scheduling"
	"github.com/caresync/caresync/internal/sync/signal"
	"github.com/caresync/caresync/internal/sync/store"
)

// SaveNotification creates a notification addressed to a user or a role.
func (e *Engine) SaveNotification(ctx context.Context, n *notify.Notification) error {
	if n.RecipientID == nil && n.RecipientRole == "" {
		return fmt.Errorf("%w: recipient_id or recipient_role is required", ErrValidation)
	}
	if n.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if n.Type == "" {
		return fmt.Errorf("%w: type is required", ErrValidation)
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.Status = notify.StatusUnread
	if n.CreatedAt.IsZero() {
		n.CreatedAt = e.now()
	}
	n.UpdatedAt = e.now()

	e.store.Append(store.Notifications, n)
	e.publish(store.Notifications, signal.OriginLocal)
	return e.persist(ctx, store.Notifications, n.ID, "/api/v1/notifications", n)
}

// ActiveNotifications returns everything except dismissed notifications.
func (e *Engine) ActiveNotifications() []store.Entity {
	return e.GetAll(store.Notifications, func(ent store.Entity) bool {
		n, ok := ent.(*notify.Notification)
		return ok && n.Active()
	})
}

// AcceptNotification accepts a notification. For APPOINTMENT_BOOKING the
// referenced appointment is advanced as part of the same action; views
// never move an appointment directly, only through this handler. If the
// local appointment cannot advance, the accept is rejected before any
// mutation.
func (e *Engine) AcceptNotification(ctx context.Context, id uuid.UUID) (*notify.Notification, error) {
	n, err := e.findNotification(id)
	if err != nil {
		return nil, err
	}
	if !notify.CanTransition(n.Status, notify.StatusAccepted) {
		return nil, fmt.Errorf("%w: notification cannot move from %s to %s", ErrValidation, n.Status, notify.StatusAccepted)
	}

	if n.Type == notify.TypeAppointmentBooking {
		apptID, ok := n.AppointmentID()
		if !ok {
			return nil, fmt.Errorf("%w: booking notification has no appointmentId", ErrValidation)
		}
		// The server advances the appointment as part of its accept
		// endpoint; here the local replica is advanced too so views
		// update without waiting for reconciliation. A local appointment
		// that can no longer advance rejects the whole accept before any
		// mutation.
		if appt, err := e.findAppointment(apptID); err == nil {
			if !scheduling.CanTransition(appt.Status, scheduling.StatusInProgress) {
				return nil, fmt.Errorf("%w: appointment %s cannot advance from %s", ErrValidation, apptID, appt.Status)
			}
			advanced := *appt
			advanced.Status = scheduling.StatusInProgress
			advanced.UpdatedAt = e.now()
			e.store.Update(store.Appointments, &advanced)
			e.publish(store.Appointments, signal.OriginLocal)
		}
	}

	updated := *n
	updated.Status = notify.StatusAccepted
	updated.UpdatedAt = e.now()
	e.store.Update(store.Notifications, &updated)
	e.publish(store.Notifications, signal.OriginLocal)
	err = e.persist(ctx, store.Notifications, id, "/api/v1/notifications/"+id.String()+"/accept", nil)
	return &updated, err
}

// SnoozeNotification moves Unread to Snoozed.
func (e *Engine) SnoozeNotification(ctx context.Context, id uuid.UUID) (*notify.Notification, error) {
	return e.transitionNotification(ctx, id, notify.StatusSnoozed, "snooze")
}

// ReactivateNotification returns a Snoozed notification to Unread.
func (e *Engine) ReactivateNotification(ctx context.Context, id uuid.UUID) (*notify.Notification, error) {
	return e.transitionNotification(ctx, id, notify.StatusUnread, "reactivate")
}

// DismissNotification dismisses a notification. Dismissing an already
// dismissed notification is a no-op, not an error.
func (e *Engine) DismissNotification(ctx context.Context, id uuid.UUID) (*notify.Notification, error) {
	n, err := e.findNotification(id)
	if err != nil {
		return nil, err
	}
	if n.Status == notify.StatusDismissed {
		return n, nil
	}
	return e.transitionNotification(ctx, id, notify.StatusDismissed, "dismiss")
}

func (e *Engine) transitionNotification(ctx context.Context, id uuid.UUID, to, action string) (*notify.Notification, error) {
	n, err := e.findNotification(id)
	if err != nil {
		return nil, err
	}
	if !notify.CanTransition(n.Status, to) {
		return nil, fmt.Errorf("%w: notification cannot move from %s to %s", ErrValidation, n.Status, to)
	}
	updated := *n
	updated.Status = to
	updated.UpdatedAt = e.now()

	e.store.Update(store.Notifications, &updated)
	e.publish(store.Notifications, signal.OriginLocal)
	err = e.persist(ctx, store.Notifications, id, "/api/v1/notifications/"+id.String()+"/"+action, nil)
	return &updated, err
}

func (e *Engine) findNotification(id uuid.UUID) (*notify.Notification, error) {
	ent, ok := e.store.Find(store.Notifications, id)
	if !ok {
		return nil, fmt.Errorf("%w: notification %s", ErrNotFound, id)
	}
	n, ok := ent.(*notify.Notification)
	if !ok {
		return nil, fmt.Errorf("notifications collection holds unexpected type %T", ent)
	}
	return n, nil
}
