package records

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/caresync/caresync/internal/domain/scheduling"
	"github.com/caresync/caresync/internal/platform/phi"
)

// AppointmentMarker flags a patient's open appointment when services are
// rendered. Satisfied by the scheduling service.
type AppointmentMarker interface {
	MarkServicesRendered(ctx context.Context, patientID uuid.UUID) (*scheduling.Appointment, error)
}

type Service struct {
	records      RecordRepository
	appointments AppointmentMarker
	phi          *phi.Service
	log          zerolog.Logger
}

func NewService(records RecordRepository, appointments AppointmentMarker, phiSvc *phi.Service, log zerolog.Logger) *Service {
	return &Service{records: records, appointments: appointments, phi: phiSvc, log: log}
}

// Dispatch writes a new medical record. As a side effect, the patient's
// oldest open appointment is flagged services-rendered; a failure there does
// not undo the dispatch, since the record is the clinical source of truth.
func (s *Service) Dispatch(ctx context.Context, rec *Record) error {
	if rec.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if rec.AuthorID == uuid.Nil {
		return fmt.Errorf("author_id is required")
	}
	if rec.AuthorRole == "" {
		return fmt.Errorf("author_role is required")
	}
	if rec.Unit == "" {
		return fmt.Errorf("unit is required")
	}

	if err := s.phi.EncryptPayload("records", rec.Payload); err != nil {
		return fmt.Errorf("encrypt record payload: %w", err)
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return err
	}
	s.phi.DecryptPayload("records", rec.Payload)

	if _, err := s.appointments.MarkServicesRendered(ctx, rec.PatientID); err != nil {
		s.log.Error().Err(err).
			Str("record_id", rec.ID.String()).
			Str("patient_id", rec.PatientID.String()).
			Msg("failed to flag services rendered for dispatched record")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.phi.DecryptPayload("records", rec.Payload)
	return rec, nil
}

// Delete permanently removes a record. Callers are expected to have obtained
// an explicit confirmation before invoking this.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.records.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Record, int, error) {
	items, total, err := s.records.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, rec := range items {
		s.phi.DecryptPayload("records", rec.Payload)
	}
	return items, total, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	items, total, err := s.records.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for _, rec := range items {
		s.phi.DecryptPayload("records", rec.Payload)
	}
	return items, total, nil
}
