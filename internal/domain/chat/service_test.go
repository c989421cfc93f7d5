package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockMessageRepo struct {
	messages map[uuid.UUID]*Message
	seq      int
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{messages: make(map[uuid.UUID]*Message)}
}

func (m *mockMessageRepo) Create(_ context.Context, msg *Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	m.seq++
	msg.CreatedAt = time.Unix(int64(m.seq), 0)
	cp := *msg
	m.messages[msg.ID] = &cp
	return nil
}

func (m *mockMessageRepo) GetByID(_ context.Context, id uuid.UUID) (*Message, error) {
	msg, ok := m.messages[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *msg
	return &cp, nil
}

func (m *mockMessageRepo) ListByRoom(_ context.Context, roomID string, limit, offset int) ([]*Message, int, error) {
	var items []*Message
	for _, msg := range m.messages {
		if msg.RoomID == roomID {
			cp := *msg
			items = append(items, &cp)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, len(items), nil
}

func (m *mockMessageRepo) List(_ context.Context, limit, offset int) ([]*Message, int, error) {
	var items []*Message
	for _, msg := range m.messages {
		cp := *msg
		items = append(items, &cp)
	}
	return items, len(items), nil
}

func (m *mockMessageRepo) ListRooms(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var rooms []string
	for _, msg := range m.messages {
		if !seen[msg.RoomID] {
			seen[msg.RoomID] = true
			rooms = append(rooms, msg.RoomID)
		}
	}
	return rooms, nil
}

func TestSendValidation(t *testing.T) {
	svc := NewService(newMockMessageRepo())

	if err := svc.Send(context.Background(), &Message{SenderID: uuid.New(), Content: "hi"}); err == nil {
		t.Error("expected error for missing room")
	}
	if err := svc.Send(context.Background(), &Message{RoomID: "r", Content: "hi"}); err == nil {
		t.Error("expected error for missing sender")
	}
	if err := svc.Send(context.Background(), &Message{RoomID: "r", SenderID: uuid.New()}); err == nil {
		t.Error("expected error for empty message")
	}

	att := "scan.pdf"
	if err := svc.Send(context.Background(), &Message{RoomID: "r", SenderID: uuid.New(), Attachment: &att}); err != nil {
		t.Errorf("attachment-only message should be valid: %v", err)
	}
}

func TestListByRoomOrdered(t *testing.T) {
	repo := newMockMessageRepo()
	svc := NewService(repo)
	sender := uuid.New()

	for _, content := range []string{"first", "second", "third"} {
		if err := svc.Send(context.Background(), &Message{RoomID: "patient-1", SenderID: sender, Content: content}); err != nil {
			t.Fatal(err)
		}
	}
	if err := svc.Send(context.Background(), &Message{RoomID: "patient-2", SenderID: sender, Content: "elsewhere"}); err != nil {
		t.Fatal(err)
	}

	items, total, err := svc.ListByRoom(context.Background(), "patient-1", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Fatalf("expected 3 messages, got %d", total)
	}
	for i, want := range []string{"first", "second", "third"} {
		if items[i].Content != want {
			t.Errorf("position %d: got %q, want %q", i, items[i].Content, want)
		}
	}
}

func TestReceiveParsesAndPersists(t *testing.T) {
	repo := newMockMessageRepo()
	svc := NewService(repo)
	sender := uuid.New()

	raw, _ := json.Marshal(map[string]interface{}{
		"sender_id":   sender.String(),
		"sender_role": "nurse",
		"content":     "vitals updated",
		"room_id":     "spoofed-room",
	})
	saved, err := svc.Receive(context.Background(), "patient-1", raw)
	if err != nil {
		t.Fatal(err)
	}
	msg, ok := saved.(*Message)
	if !ok {
		t.Fatalf("expected *Message, got %T", saved)
	}
	// The envelope room wins over the payload's claim.
	if msg.RoomID != "patient-1" {
		t.Errorf("room not taken from envelope: %q", msg.RoomID)
	}
	if len(repo.messages) != 1 {
		t.Error("message not persisted")
	}
}

func TestReceiveRejectsMalformedPayload(t *testing.T) {
	svc := NewService(newMockMessageRepo())
	if _, err := svc.Receive(context.Background(), "r", json.RawMessage(`not json`)); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestListRooms(t *testing.T) {
	svc := NewService(newMockMessageRepo())
	sender := uuid.New()
	for _, room := range []string{"a", "b", "a"} {
		if err := svc.Send(context.Background(), &Message{RoomID: room, SenderID: sender, Content: "x"}); err != nil {
			t.Fatal(err)
		}
	}
	rooms, err := svc.ListRooms(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(rooms) != 2 {
		t.Errorf("expected 2 rooms, got %v", rooms)
	}
}
