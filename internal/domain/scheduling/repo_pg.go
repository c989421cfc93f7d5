package scheduling

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

const apptCols = `id, patient_id, professional_id, scheduled_at, status, payment_status,
	agreed_amount, amount_paid, balance_due, services_rendered, reason, created_at, updated_at`

func (r *appointmentRepoPG) scan(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.ProfessionalID, &a.ScheduledAt, &a.Status,
		&a.PaymentStatus, &a.AgreedAmount, &a.AmountPaid, &a.BalanceDue,
		&a.ServicesRendered, &a.Reason, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment (id, patient_id, professional_id, scheduled_at, status,
			payment_status, agreed_amount, amount_paid, balance_due, services_rendered, reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID, a.PatientID, a.ProfessionalID, a.ScheduledAt, a.Status,
		a.PaymentStatus, a.AgreedAmount, a.AmountPaid, a.BalanceDue,
		a.ServicesRendered, a.Reason)
	return err
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.scan(r.pool.QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE appointment SET scheduled_at=$2, status=$3, payment_status=$4,
			agreed_amount=$5, amount_paid=$6, balance_due=$7, services_rendered=$8,
			reason=$9, updated_at=NOW()
		WHERE id = $1`,
		a.ID, a.ScheduledAt, a.Status, a.PaymentStatus,
		a.AgreedAmount, a.AmountPaid, a.BalanceDue, a.ServicesRendered, a.Reason)
	return err
}

func (r *appointmentRepoPG) List(ctx context.Context, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx, `SELECT `+apptCols+` FROM appointment ORDER BY scheduled_at DESC LIMIT $1 OFFSET $2`,
		`SELECT COUNT(*) FROM appointment`, nil, limit, offset)
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE patient_id = $3 ORDER BY scheduled_at DESC LIMIT $1 OFFSET $2`,
		`SELECT COUNT(*) FROM appointment WHERE patient_id = $1`, []interface{}{patientID}, limit, offset)
}

func (r *appointmentRepoPG) ListByProfessional(ctx context.Context, professionalID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return r.list(ctx,
		`SELECT `+apptCols+` FROM appointment WHERE professional_id = $3 ORDER BY scheduled_at DESC LIMIT $1 OFFSET $2`,
		`SELECT COUNT(*) FROM appointment WHERE professional_id = $1`, []interface{}{professionalID}, limit, offset)
}

func (r *appointmentRepoPG) list(ctx context.Context, query, countQuery string, filter []interface{}, limit, offset int) ([]*Appointment, int, error) {
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
	var items []*Appointment
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *appointmentRepoPG) FindOpenByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptCols+` FROM appointment
		WHERE patient_id = $1 AND status IN ($2, $3)
		ORDER BY scheduled_at ASC`,
		patientID, StatusUpcoming, StatusInProgress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
