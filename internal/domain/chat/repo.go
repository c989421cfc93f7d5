package chat

import (
	"context"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*Message, error)
	ListByRoom(ctx context.Context, roomID string, limit, offset int) ([]*Message, int, error)
	List(ctx context.Context, limit, offset int) ([]*Message, int, error)
	// ListRooms returns the distinct room ids with at least one message,
	// most recently active first.
	ListRooms(ctx context.Context) ([]string, error)
}
