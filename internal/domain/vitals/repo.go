package vitals

import (
	"context"

	"github.com/google/uuid"
)

type SampleRepository interface {
	Create(ctx context.Context, s *Sample) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Sample, int, error)
	List(ctx context.Context, limit, offset int) ([]*Sample, int, error)
	// LatestByPatient returns the most recent sample, or nil when the
	// patient has none.
	LatestByPatient(ctx context.Context, patientID uuid.UUID) (*Sample, error)
}
