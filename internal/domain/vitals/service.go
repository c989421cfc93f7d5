package vitals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/caresync/caresync/internal/clinical/ranges"
	"github.com/caresync/caresync/internal/clinical/triage"
	"github.com/caresync/caresync/internal/domain/identity"
)

// PatientDirectory resolves patient demographics for range analysis.
// Satisfied by the identity service.
type PatientDirectory interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*identity.Patient, error)
}

type Service struct {
	samples  SampleRepository
	patients PatientDirectory
	now      func() time.Time
}

func NewService(samples SampleRepository, patients PatientDirectory) *Service {
	return &Service{samples: samples, patients: patients, now: time.Now}
}

func (s *Service) Record(ctx context.Context, sample *Sample) error {
	if sample.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if sample.HeartRate == 0 && sample.SpO2 == 0 && sample.BloodPressure == "" && sample.Temperature == 0 {
		return fmt.Errorf("at least one vital measurement is required")
	}
	if sample.RecordedAt.IsZero() {
		sample.RecordedAt = s.now()
	}
	return s.samples.Create(ctx, sample)
}

func (s *Service) History(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Sample, int, error) {
	return s.samples.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Sample, int, error) {
	return s.samples.List(ctx, limit, offset)
}

func (s *Service) Latest(ctx context.Context, patientID uuid.UUID) (*Sample, error) {
	return s.samples.LatestByPatient(ctx, patientID)
}

// Triage classifies the patient's current risk from the latest sample. A
// patient with no samples assesses as NORMAL.
func (s *Service) Triage(ctx context.Context, patientID uuid.UUID) (triage.Result, error) {
	sample, err := s.samples.LatestByPatient(ctx, patientID)
	if err != nil {
		return triage.Result{}, err
	}
	if sample == nil {
		return triage.Assess(triage.Vitals{}), nil
	}
	return triage.Assess(triage.Vitals{
		BloodPressure: sample.BloodPressure,
		HeartRate:     sample.HeartRate,
		SpO2:          sample.SpO2,
		Temperature:   sample.Temperature,
	}), nil
}

// Analyze flags a lab or vital value against the reference table for this
// patient's demographics.
func (s *Service) Analyze(ctx context.Context, patientID uuid.UUID, category, testName string, value interface{}) (ranges.Finding, error) {
	p, err := s.patients.GetPatient(ctx, patientID)
	if err != nil {
		return ranges.Finding{}, fmt.Errorf("resolve patient: %w", err)
	}
	return ranges.Analyze(category, testName, value, p.Age(s.now()), p.Sex), nil
}
