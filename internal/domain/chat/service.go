package chat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	messages MessageRepository
}

func NewService(messages MessageRepository) *Service {
	return &Service{messages: messages}
}

func (s *Service) Send(ctx context.Context, m *Message) error {
	if m.RoomID == "" {
		return fmt.Errorf("room_id is required")
	}
	if m.SenderID == uuid.Nil {
		return fmt.Errorf("sender_id is required")
	}
	if m.Content == "" && m.Attachment == nil {
		return fmt.Errorf("a message needs content or an attachment")
	}
	return s.messages.Create(ctx, m)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Message, error) {
	return s.messages.GetByID(ctx, id)
}

func (s *Service) ListByRoom(ctx context.Context, roomID string, limit, offset int) ([]*Message, int, error) {
	return s.messages.ListByRoom(ctx, roomID, limit, offset)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Message, int, error) {
	return s.messages.List(ctx, limit, offset)
}

func (s *Service) ListRooms(ctx context.Context) ([]string, error) {
	return s.messages.ListRooms(ctx)
}

// Receive handles a raw inbound message from the real-time channel: parse,
// validate, persist, and hand back the stored message for broadcast. The
// room in the envelope wins over anything inside the payload.
func (s *Service) Receive(ctx context.Context, roomID string, raw json.RawMessage) (interface{}, error) {
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("malformed message payload: %w", err)
	}
	m.RoomID = roomID
	if err := s.Send(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
