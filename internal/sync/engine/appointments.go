package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/caresync/caresync/internal/domain/scheduling"
	"github.com/caresync/caresync/internal/sync/signal"
	"github.com/caresync/caresync/internal/sync/store"
)

// SaveAppointment books a new appointment. Status always starts at
// Upcoming and the payment fields are re-derived before the write.
func (e *Engine) SaveAppointment(ctx context.Context, appt *scheduling.Appointment) error {
	if appt.PatientID == uuid.Nil {
		return fmt.Errorf("%w: patient_id is required", ErrValidation)
	}
	if appt.ProfessionalID == uuid.Nil {
		return fmt.Errorf("%w: professional_id is required", ErrValidation)
	}
	if appt.ScheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduled_at is required", ErrValidation)
	}
	if appt.AgreedAmount < 0 || appt.AmountPaid < 0 {
		return fmt.Errorf("%w: amounts cannot be negative", ErrValidation)
	}
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	appt.Status = scheduling.StatusUpcoming
	appt.RecomputeBalance()
	if appt.CreatedAt.IsZero() {
		appt.CreatedAt = e.now()
	}
	appt.UpdatedAt = e.now()

	e.store.Append(store.Appointments, appt)
	e.publish(store.Appointments, signal.OriginLocal)
	return e.persist(ctx, store.Appointments, appt.ID, "/api/v1/appointments", appt)
}

// AcceptAppointment moves Upcoming to In Progress.
func (e *Engine) AcceptAppointment(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error) {
	return e.transitionAppointment(ctx, id, scheduling.StatusInProgress, "accept")
}

// CompleteAppointment moves the appointment to Completed.
func (e *Engine) CompleteAppointment(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error) {
	return e.transitionAppointment(ctx, id, scheduling.StatusCompleted, "complete")
}

// CancelAppointment cancels; allowed from any state except Completed.
func (e *Engine) CancelAppointment(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error) {
	return e.transitionAppointment(ctx, id, scheduling.StatusCancelled, "cancel")
}

func (e *Engine) transitionAppointment(ctx context.Context, id uuid.UUID, to, action string) (*scheduling.Appointment, error) {
	appt, err := e.findAppointment(id)
	if err != nil {
		return nil, err
	}
	if !scheduling.CanTransition(appt.Status, to) {
		return nil, fmt.Errorf("%w: appointment cannot move from %s to %s", ErrValidation, appt.Status, to)
	}
	updated := *appt
	updated.Status = to
	updated.UpdatedAt = e.now()

	e.store.Update(store.Appointments, &updated)
	e.publish(store.Appointments, signal.OriginLocal)
	err = e.persist(ctx, store.Appointments, id, "/api/v1/appointments/"+id.String()+"/"+action, nil)
	return &updated, err
}

// RecordAppointmentPayment adds a payment and re-derives the balance. The
// balance never goes negative regardless of the amount.
func (e *Engine) RecordAppointmentPayment(ctx context.Context, id uuid.UUID, amount int64) (*scheduling.Appointment, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	}
	appt, err := e.findAppointment(id)
	if err != nil {
		return nil, err
	}
	if appt.Status == scheduling.StatusCancelled {
		return nil, fmt.Errorf("%w: cannot record payment on a cancelled appointment", ErrValidation)
	}
	updated := *appt
	updated.AmountPaid += amount
	updated.RecomputeBalance()
	updated.UpdatedAt = e.now()

	e.store.Update(store.Appointments, &updated)
	e.publish(store.Appointments, signal.OriginLocal)

	body := map[string]int64{"amount": amount}
	err = e.persist(ctx, store.Appointments, id, "/api/v1/appointments/"+id.String()+"/payments", body)
	return &updated, err
}

func (e *Engine) findAppointment(id uuid.UUID) (*scheduling.Appointment, error) {
	ent, ok := e.store.Find(store.Appointments, id)
	if !ok {
		return nil, fmt.Errorf("%w: appointment %s", ErrNotFound, id)
	}
	appt, ok := ent.(*scheduling.Appointment)
	if !ok {
		return nil, fmt.Errorf("appointments collection holds unexpected type %T", ent)
	}
	return appt, nil
}
