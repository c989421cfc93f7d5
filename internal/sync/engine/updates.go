package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/caresync/caresync/internal/domain/notify"
	"github.com/caresync/caresync/internal/domain/pharmacy"
	"github.com/caresync/caresync/internal/domain/scheduling"
	"github.com/caresync/caresync/internal/sync/signal"
	"github.com/caresync/caresync/internal/sync/store"
)

// Patch operations merge a shallow JSON patch over the stored entity,
// re-validate its invariants and persist the merged copy. The id,
// creation timestamp and status never change through a patch: status
// moves only through the explicit transition operations.

// UpdateAppointment edits an appointment's details, rescheduling or
// adjusting amounts. The balance is re-derived after the merge.
func (e *Engine) UpdateAppointment(ctx context.Context, id uuid.UUID, patch json.RawMessage) (*scheduling.Appointment, error) {
	appt, err := e.findAppointment(id)
	if err != nil {
		return nil, err
	}
	updated := *appt
	if err := json.Unmarshal(patch, &updated); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	updated.ID = appt.ID
	updated.CreatedAt = appt.CreatedAt
	if updated.Status != appt.Status {
		return nil, fmt.Errorf("%w: status changes only through accept, complete or cancel", ErrValidation)
	}
	if updated.PatientID == uuid.Nil || updated.ProfessionalID == uuid.Nil {
		return nil, fmt.Errorf("%w: patient_id and professional_id are required", ErrValidation)
	}
	if updated.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("%w: scheduled_at is required", ErrValidation)
	}
	if updated.AgreedAmount < 0 || updated.AmountPaid < 0 {
		return nil, fmt.Errorf("%w: amounts cannot be negative", ErrValidation)
	}
	updated.RecomputeBalance()
	updated.UpdatedAt = e.now()

	e.store.Update(store.Appointments, &updated)
	e.publish(store.Appointments, signal.OriginLocal)
	err = e.persistPut(ctx, store.Appointments, id, "/api/v1/appointments/"+id.String(), &updated)
	return &updated, err
}

// UpdatePrescription edits drug details or the refill allowance.
func (e *Engine) UpdatePrescription(ctx context.Context, id uuid.UUID, patch json.RawMessage) (*pharmacy.Prescription, error) {
	p, err := e.findPrescription(id)
	if err != nil {
		return nil, err
	}
	updated := *p
	if err := json.Unmarshal(patch, &updated); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	updated.ID = p.ID
	updated.CreatedAt = p.CreatedAt
	if updated.Status != p.Status {
		return nil, fmt.Errorf("%w: status changes only through the dispensing workflow", ErrValidation)
	}
	if updated.DrugName == "" {
		return nil, fmt.Errorf("%w: drug_name is required", ErrValidation)
	}
	if updated.RefillsRemaining < 0 {
		return nil, fmt.Errorf("%w: refills_remaining cannot be negative", ErrValidation)
	}
	updated.UpdatedAt = e.now()

	e.store.Update(store.Prescriptions, &updated)
	e.publish(store.Prescriptions, signal.OriginLocal)
	err = e.persistPut(ctx, store.Prescriptions, id, "/api/v1/prescriptions/"+id.String(), &updated)
	return &updated, err
}

// UpdateNotification edits a notification's content or details.
func (e *Engine) UpdateNotification(ctx context.Context, id uuid.UUID, patch json.RawMessage) (*notify.Notification, error) {
	n, err := e.findNotification(id)
	if err != nil {
		return nil, err
	}
	updated := *n
	if err := json.Unmarshal(patch, &updated); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	updated.ID = n.ID
	updated.CreatedAt = n.CreatedAt
	if updated.Status != n.Status {
		return nil, fmt.Errorf("%w: status changes only through accept, snooze, reactivate or dismiss", ErrValidation)
	}
	if updated.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if updated.Type == "" {
		return nil, fmt.Errorf("%w: type is required", ErrValidation)
	}
	updated.UpdatedAt = e.now()

	e.store.Update(store.Notifications, &updated)
	e.publish(store.Notifications, signal.OriginLocal)
	err = e.persistPut(ctx, store.Notifications, id, "/api/v1/notifications/"+id.String(), &updated)
	return &updated, err
}
