package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/caresync/caresync/internal/domain/pharmacy"
	"github.com/caresync/caresync/internal/sync/signal"
	"github.com/caresync/caresync/internal/sync/store"
)

// SavePrescription creates a new prescription in Pending status.
func (e *Engine) SavePrescription(ctx context.Context, p *pharmacy.Prescription) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("%w: patient_id is required", ErrValidation)
	}
	if p.PrescriberID == uuid.Nil {
		return fmt.Errorf("%w: prescriber_id is required", ErrValidation)
	}
	if p.DrugName == "" {
		return fmt.Errorf("%w: drug_name is required", ErrValidation)
	}
	if p.RefillsRemaining < 0 {
		return fmt.Errorf("%w: refills_remaining cannot be negative", ErrValidation)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Status = pharmacy.StatusPending
	if p.CreatedAt.IsZero() {
		p.CreatedAt = e.now()
	}
	p.UpdatedAt = e.now()

	e.store.Append(store.Prescriptions, p)
	e.publish(store.Prescriptions, signal.OriginLocal)
	return e.persist(ctx, store.Prescriptions, p.ID, "/api/v1/prescriptions", p)
}

// ActivatePrescription moves Pending to Active.
func (e *Engine) ActivatePrescription(ctx context.Context, id uuid.UUID) (*pharmacy.Prescription, error) {
	return e.transitionPrescription(ctx, id, pharmacy.StatusActive, "activate", nil)
}

// DispensePrescription moves Active to Dispensed, consumes one refill
// (never dropping below zero) and stamps last_filled.
func (e *Engine) DispensePrescription(ctx context.Context, id uuid.UUID) (*pharmacy.Prescription, error) {
	return e.transitionPrescription(ctx, id, pharmacy.StatusDispensed, "dispense", func(p *pharmacy.Prescription) {
		if p.RefillsRemaining > 0 {
			p.RefillsRemaining--
		}
		filled := e.now()
		p.LastFilled = &filled
	})
}

// CompletePrescription closes out the prescription.
func (e *Engine) CompletePrescription(ctx context.Context, id uuid.UUID) (*pharmacy.Prescription, error) {
	return e.transitionPrescription(ctx, id, pharmacy.StatusCompleted, "complete", nil)
}

// ReopenPrescription returns a Completed prescription to Active, allowed
// only while refills remain.
func (e *Engine) ReopenPrescription(ctx context.Context, id uuid.UUID) (*pharmacy.Prescription, error) {
	p, err := e.findPrescription(id)
	if err != nil {
		return nil, err
	}
	if p.Status != pharmacy.StatusCompleted {
		return nil, fmt.Errorf("%w: only completed prescriptions can be reopened", ErrValidation)
	}
	if p.RefillsRemaining <= 0 {
		return nil, fmt.Errorf("%w: no refills remaining", ErrValidation)
	}
	return e.transitionPrescription(ctx, id, pharmacy.StatusActive, "reopen", nil)
}

func (e *Engine) transitionPrescription(ctx context.Context, id uuid.UUID, to, action string, mutate func(*pharmacy.Prescription)) (*pharmacy.Prescription, error) {
	p, err := e.findPrescription(id)
	if err != nil {
		return nil, err
	}
	if !pharmacy.CanTransition(p.Status, to) {
		return nil, fmt.Errorf("%w: prescription cannot move from %s to %s", ErrValidation, p.Status, to)
	}
	updated := *p
	updated.Status = to
	if mutate != nil {
		mutate(&updated)
	}
	updated.UpdatedAt = e.now()

	e.store.Update(store.Prescriptions, &updated)
	e.publish(store.Prescriptions, signal.OriginLocal)
	err = e.persist(ctx, store.Prescriptions, id, "/api/v1/prescriptions/"+id.String()+"/"+action, nil)
	return &updated, err
}

func (e *Engine) findPrescription(id uuid.UUID) (*pharmacy.Prescription, error) {
	ent, ok := e.store.Find(store.Prescriptions, id)
	if !ok {
		return nil, fmt.Errorf("%w: prescription %s", ErrNotFound, id)
	}
	p, ok := ent.(*pharmacy.Prescription)
	if !ok {
		return nil, fmt.Errorf("prescriptions collection holds unexpected type %T", ent)
	}
	return p, nil
}
