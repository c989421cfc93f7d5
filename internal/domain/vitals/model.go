package vitals

import (
	"time"

	"github.com/google/uuid"
)

// Sample is one vitals reading for a patient. Samples are ordered by
// recorded_at; the most recent sample is the patient's "current" vitals.
type Sample struct {
	ID            uuid.UUID `db:"id" json:"id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	RecordedAt    time.Time `db:"recorded_at" json:"recorded_at"`
	HeartRate     float64   `db:"heart_rate" json:"heart_rate,omitempty"`
	SpO2          float64   `db:"spo2" json:"spo2,omitempty"`
	BloodPressure string    `db:"blood_pressure" json:"blood_pressure,omitempty"`
	Temperature   float64   `db:"temperature" json:"temperature,omitempty"`
}

// EntityID returns the stable identity used by cache reconciliation.
func (s *Sample) EntityID() uuid.UUID { return s.ID }
