package pharmacy

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

const rxCols = `id, patient_id, prescriber_id, drug_name, dosage, status,
	refills_remaining, last_filled, created_at, updated_at`

func (r *prescriptionRepoPG) scan(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.PatientID, &p.PrescriberID, &p.DrugName, &p.Dosage,
		&p.Status, &p.RefillsRemaining, &p.LastFilled, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO prescription (id, patient_id, prescriber_id, drug_name, dosage,
			status, refills_remaining, last_filled)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.PatientID, p.PrescriberID, p.DrugName, p.Dosage,
		p.Status, p.RefillsRemaining, p.LastFilled)
	return err
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return r.scan(r.pool.QueryRow(ctx, `SELECT `+rxCols+` FROM prescription WHERE id = $1`, id))
}

func (r *prescriptionRepoPG) Update(ctx context.Context, p *Prescription) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE prescription SET drug_name=$2, dosage=$3, status=$4,
			refills_remaining=$5, last_filled=$6, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.DrugName, p.Dosage, p.Status, p.RefillsRemaining, p.LastFilled)
	return err
}

func (r *prescriptionRepoPG) List(ctx context.Context, limit, offset int) ([]*Prescription, int, error) {
	return r.list(ctx, `SELECT `+rxCols+` FROM prescription ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		`SELECT COUNT(*) FROM prescription`, nil, limit, offset)
}

func (r *prescriptionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return r.list(ctx,
		`SELECT `+rxCols+` FROM prescription WHERE patient_id = $3 ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		`SELECT COUNT(*) FROM prescription WHERE patient_id = $1`, []interface{}{patientID}, limit, offset)
}

func (r *prescriptionRepoPG) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Prescription, int, error) {
	return r.list(ctx,
		`SELECT `+rxCols+` FROM prescription WHERE status = $3 ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		`SELECT COUNT(*) FROM prescription WHERE status = $1`, []interface{}{status}, limit, offset)
}

func (r *prescriptionRepoPG) list(ctx context.Context, query, countQuery string, filter []interface{}, limit, offset int) ([]*Prescription, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, filter...).Scan(&total); err != nil {
		return nil, 0, err
	}
	args := append([]interface{}{limit, offset}, filter...)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
