package pharmacy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	prescriptions PrescriptionRepository
	now           func() time.Time
}

func NewService(prescriptions PrescriptionRepository) *Service {
	return &Service{prescriptions: prescriptions, now: time.Now}
}

func (s *Service) Create(ctx context.Context, p *Prescription) error {
	if p.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if p.PrescriberID == uuid.Nil {
		return fmt.Errorf("prescriber_id is required")
	}
	if p.DrugName == "" {
		return fmt.Errorf("drug_name is required")
	}
	if p.Dosage == "" {
		return fmt.Errorf("dosage is required")
	}
	if p.RefillsRemaining < 0 {
		return fmt.Errorf("refills_remaining must not be negative")
	}
	if p.Status == "" {
		p.Status = StatusPending
	}
	if p.Status != StatusPending {
		return fmt.Errorf("new prescriptions must start as %s", StatusPending)
	}
	return s.prescriptions.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.prescriptions.GetByID(ctx, id)
}

// Update edits drug details or the refill allowance. Status never changes
// here; the dispensing workflow owns status.
func (s *Service) Update(ctx context.Context, p *Prescription) error {
	existing, err := s.prescriptions.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if p.Status != existing.Status {
		return fmt.Errorf("status changes only through the dispensing workflow")
	}
	if p.DrugName == "" {
		return fmt.Errorf("drug_name is required")
	}
	if p.Dosage == "" {
		return fmt.Errorf("dosage is required")
	}
	if p.RefillsRemaining < 0 {
		return fmt.Errorf("refills_remaining must not be negative")
	}
	return s.prescriptions.Update(ctx, p)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Prescription, int, error) {
	return s.prescriptions.ListByStatus(ctx, status, limit, offset)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to string) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(p.Status, to) {
		return nil, fmt.Errorf("cannot move prescription from %s to %s", p.Status, to)
	}
	p.Status = to
	if err := s.prescriptions.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Activate approves a pending prescription for dispensing.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.transition(ctx, id, StatusActive)
}

// Dispense hands the drug to the patient. It consumes a refill when one is
// available and stamps last_filled; refills never go below zero.
func (s *Service) Dispense(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(p.Status, StatusDispensed) {
		return nil, fmt.Errorf("cannot dispense prescription in status %s", p.Status)
	}
	p.Status = StatusDispensed
	if p.RefillsRemaining > 0 {
		p.RefillsRemaining--
	}
	filled := s.now()
	p.LastFilled = &filled
	if err := s.prescriptions.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Complete closes out a prescription.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.transition(ctx, id, StatusCompleted)
}

// Reopen reactivates a completed prescription, e.g. when a refill is
// authorized after the course ended. Requires refills to be available.
func (s *Service) Reopen(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusCompleted {
		return nil, fmt.Errorf("only completed prescriptions can be reopened, current status is %s", p.Status)
	}
	if p.RefillsRemaining <= 0 {
		return nil, fmt.Errorf("no refills remaining")
	}
	p.Status = StatusActive
	if err := s.prescriptions.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
