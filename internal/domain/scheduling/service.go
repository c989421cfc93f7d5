package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ChangeNotifier pushes an appointment-change ping into the patient's
// room. The ping carries no payload; clients re-fetch. Satisfied by the
// websocket hub.
type ChangeNotifier interface {
	NotifyAppointmentChange(room string)
}

type Service struct {
	appointments AppointmentRepository
	notifier     ChangeNotifier
}

func NewService(appointments AppointmentRepository) *Service {
	return &Service{appointments: appointments}
}

// SetChangeNotifier wires the real-time push path. Optional: without it
// clients rely on reconciliation alone.
func (s *Service) SetChangeNotifier(n ChangeNotifier) {
	s.notifier = n
}

func (s *Service) notifyChange(a *Appointment) {
	if s.notifier != nil {
		s.notifier.NotifyAppointmentChange(a.PatientID.String())
	}
}

func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.ProfessionalID == uuid.Nil {
		return fmt.Errorf("professional_id is required")
	}
	if a.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled_at is required")
	}
	if a.AgreedAmount < 0 || a.AmountPaid < 0 {
		return fmt.Errorf("amounts must not be negative")
	}
	if a.Status == "" {
		a.Status = StatusUpcoming
	}
	if a.Status != StatusUpcoming {
		return fmt.Errorf("new appointments must start as %s", StatusUpcoming)
	}
	a.RecomputeBalance()
	return s.appointments.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByProfessional(ctx context.Context, professionalID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByProfessional(ctx, professionalID, limit, offset)
}

// Update edits an appointment's details. Status never changes here; the
// transition methods own status. The balance is re-derived.
func (s *Service) Update(ctx context.Context, a *Appointment) error {
	existing, err := s.appointments.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	if a.Status != existing.Status {
		return fmt.Errorf("status changes only through accept, complete or cancel")
	}
	if a.PatientID == uuid.Nil || a.ProfessionalID == uuid.Nil {
		return fmt.Errorf("patient_id and professional_id are required")
	}
	if a.ScheduledAt.IsZero() {
		return fmt.Errorf("scheduled_at is required")
	}
	if a.AgreedAmount < 0 || a.AmountPaid < 0 {
		return fmt.Errorf("amounts must not be negative")
	}
	a.RecomputeBalance()
	if err := s.appointments.Update(ctx, a); err != nil {
		return err
	}
	s.notifyChange(a)
	return nil
}

// Transition moves an appointment to a new status, enforcing the forward-only
// state machine.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to string) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(a.Status, to) {
		return nil, fmt.Errorf("cannot move appointment from %s to %s", a.Status, to)
	}
	a.Status = to
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	s.notifyChange(a)
	return a, nil
}

// Accept marks an Upcoming appointment as In Progress. This is the only way
// an appointment enters In Progress; UI layers never set statuses directly.
func (s *Service) Accept(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusUpcoming {
		return nil, fmt.Errorf("only %s appointments can be accepted, current status is %s", StatusUpcoming, a.Status)
	}
	a.Status = StatusInProgress
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	s.notifyChange(a)
	return a, nil
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.Transition(ctx, id, StatusCompleted)
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.Transition(ctx, id, StatusCancelled)
}

// RecordPayment adds a payment against the appointment and re-derives the
// balance and payment status.
func (s *Service) RecordPayment(ctx context.Context, id uuid.UUID, amount int64) (*Appointment, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive")
	}
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == StatusCancelled {
		return nil, fmt.Errorf("cannot record payment on a cancelled appointment")
	}
	a.AmountPaid += amount
	a.RecomputeBalance()
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	s.notifyChange(a)
	return a, nil
}

// MarkServicesRendered flags the patient's oldest open appointment as having
// had services rendered. Called when a medical record is dispatched for the
// patient; a patient with no open appointment is not an error.
func (s *Service) MarkServicesRendered(ctx context.Context, patientID uuid.UUID) (*Appointment, error) {
	open, err := s.appointments.FindOpenByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if len(open) == 0 {
		return nil, nil
	}
	a := open[0]
	if a.ServicesRendered {
		return a, nil
	}
	a.ServicesRendered = true
	if err := s.appointments.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
