package notify

import (
	"context"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	Update(ctx context.Context, n *Notification) error
	List(ctx context.Context, limit, offset int) ([]*Notification, int, error)
	// ListActive returns non-dismissed notifications addressed to the user
	// directly or to their role, newest first.
	ListActive(ctx context.Context, recipientID uuid.UUID, role string, limit, offset int) ([]*Notification, int, error)
}
