package vitals

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type sampleRepoPG struct{ pool *pgxpool.Pool }

func NewSampleRepoPG(pool *pgxpool.Pool) SampleRepository {
	return &sampleRepoPG{pool: pool}
}

const sampleCols = `id, patient_id, recorded_at, heart_rate, spo2, blood_pressure, temperature`

func (r *sampleRepoPG) scan(row pgx.Row) (*Sample, error) {
	var s Sample
	err := row.Scan(&s.ID, &s.PatientID, &s.RecordedAt, &s.HeartRate, &s.SpO2,
		&s.BloodPressure, &s.Temperature)
	return &s, err
}

func (r *sampleRepoPG) Create(ctx context.Context, s *Sample) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO vitals_sample (id, patient_id, recorded_at, heart_rate, spo2,
			blood_pressure, temperature)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.ID, s.PatientID, s.RecordedAt, s.HeartRate, s.SpO2,
		s.BloodPressure, s.Temperature)
	return err
}

func (r *sampleRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Sample, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM vitals_sample WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+sampleCols+` FROM vitals_sample
		WHERE patient_id = $1 ORDER BY recorded_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *sampleRepoPG) List(ctx context.Context, limit, offset int) ([]*Sample, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM vitals_sample`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+sampleCols+` FROM vitals_sample ORDER BY recorded_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *sampleRepoPG) collect(rows pgx.Rows, total int) ([]*Sample, int, error) {
	var items []*Sample
	for rows.Next() {
		s, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *sampleRepoPG) LatestByPatient(ctx context.Context, patientID uuid.UUID) (*Sample, error) {
	s, err := r.scan(r.pool.QueryRow(ctx, `
		SELECT `+sampleCols+` FROM vitals_sample
		WHERE patient_id = $1 ORDER BY recorded_at DESC LIMIT 1`, patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
