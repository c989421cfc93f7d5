package notify

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type notificationRepoPG struct{ pool *pgxpool.Pool }

func NewNotificationRepoPG(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepoPG{pool: pool}
}

const notifCols = `id, recipient_id, recipient_role, title, message, type, status,
	details, created_at, updated_at`

func (r *notificationRepoPG) scan(row pgx.Row) (*Notification, error) {
	var n Notification
	var details []byte
	err := row.Scan(&n.ID, &n.RecipientID, &n.RecipientRole, &n.Title, &n.Message,
		&n.Type, &n.Status, &details, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &n.Details); err != nil {
			return nil, err
		}
	}
	return &n, nil
}

func (r *notificationRepoPG) Create(ctx context.Context, n *Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	details, err := json.Marshal(n.Details)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO notification (id, recipient_id, recipient_role, title, message,
			type, status, details)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		n.ID, n.RecipientID, n.RecipientRole, n.Title, n.Message,
		n.Type, n.Status, details)
	return err
}

func (r *notificationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	return r.scan(r.pool.QueryRow(ctx, `SELECT `+notifCols+` FROM notification WHERE id = $1`, id))
}

func (r *notificationRepoPG) Update(ctx context.Context, n *Notification) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification SET status=$2, updated_at=NOW()
		WHERE id = $1`,
		n.ID, n.Status)
	return err
}

func (r *notificationRepoPG) List(ctx context.Context, limit, offset int) ([]*Notification, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notification`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+notifCols+` FROM notification ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *notificationRepoPG) ListActive(ctx context.Context, recipientID uuid.UUID, role string, limit, offset int) ([]*Notification, int, error) {
	const filter = `status <> 'Dismissed' AND (recipient_id = $1 OR recipient_role = $2)`
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notification WHERE `+filter, recipientID, role).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+notifCols+` FROM notification
		WHERE `+filter+` ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		recipientID, role, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *notificationRepoPG) collect(rows pgx.Rows, total int) ([]*Notification, int, error) {
	var items []*Notification
	for rows.Next() {
		n, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, n)
	}
	return items, total, rows.Err()
}
