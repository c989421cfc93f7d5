package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
)

func newTestClient() *Client {
	return &Client{
		ID:    "test",
		Rooms: []string{},
		Send:  make(chan []byte, 8),
	}
}

func drain(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case data := <-c.Send:
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("bad event payload: %v", err)
		}
		return ev
	default:
		t.Fatal("expected a pending event")
		return Event{}
	}
}

func TestJoinAndBroadcast(t *testing.T) {
	hub := NewHub()
	a, b, outsider := newTestClient(), newTestClient(), newTestClient()
	hub.Register(a)
	hub.Register(b)
	hub.Register(outsider)

	hub.Join(a, "patient-1")
	hub.Join(b, "patient-1")
	hub.Join(outsider, "patient-2")

	if hub.RoomCount("patient-1") != 2 {
		t.Fatalf("expected 2 members, got %d", hub.RoomCount("patient-1"))
	}

	hub.Broadcast("patient-1", Event{Type: EventReceiveMessage, Room: "patient-1", Data: json.RawMessage(`{"content":"hi"}`)})

	// Both room members receive it, including a would-be sender.
	for _, c := range []*Client{a, b} {
		ev := drain(t, c)
		if ev.Type != EventReceiveMessage || ev.Room != "patient-1" {
			t.Errorf("unexpected event: %+v", ev)
		}
		if ev.Timestamp.IsZero() {
			t.Error("timestamp not stamped")
		}
	}
	select {
	case <-outsider.Send:
		t.Error("outsider received a room-scoped event")
	default:
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	hub := NewHub()
	c := newTestClient()
	hub.Register(c)
	hub.Join(c, "room")
	hub.Join(c, "room")
	if len(c.Rooms) != 1 {
		t.Errorf("duplicate join recorded: %v", c.Rooms)
	}
	if hub.RoomCount("room") != 1 {
		t.Errorf("unexpected room count %d", hub.RoomCount("room"))
	}
}

func TestLeaveRoom(t *testing.T) {
	hub := NewHub()
	c := newTestClient()
	hub.Register(c)
	hub.Join(c, "room")
	hub.Leave(c, "room")

	if hub.RoomCount("room") != 0 {
		t.Error("client still in room after leave")
	}
	hub.Broadcast("room", Event{Type: EventReceiveMessage, Room: "room"})
	select {
	case <-c.Send:
		t.Error("received event after leaving")
	default:
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	c := newTestClient()
	hub.Register(c)
	hub.Join(c, "room")
	hub.Unregister(c)

	if hub.ClientCount() != 0 || hub.RoomCount("room") != 0 {
		t.Error("client not fully removed")
	}
	if _, open := <-c.Send; open {
		t.Error("send channel not closed")
	}
	// Double unregister is safe.
	hub.Unregister(c)
}

func TestNotifyAppointmentChangeHasNoPayload(t *testing.T) {
	hub := NewHub()
	c := newTestClient()
	hub.Register(c)
	hub.Join(c, "user-9")

	hub.NotifyAppointmentChange("user-9")

	ev := drain(t, c)
	if ev.Type != EventAppointmentChange {
		t.Errorf("unexpected type %s", ev.Type)
	}
	if len(ev.Data) != 0 {
		t.Errorf("appointment_change must carry no payload, got %s", ev.Data)
	}
}

type fakeSink struct {
	fail bool
	got  []string
}

func (f *fakeSink) Receive(_ context.Context, roomID string, raw json.RawMessage) (interface{}, error) {
	if f.fail {
		return nil, fmt.Errorf("rejected")
	}
	f.got = append(f.got, roomID)
	return map[string]string{"room": roomID, "echo": string(raw)}, nil
}

func TestSendMessagePersistsThenBroadcasts(t *testing.T) {
	hub := NewHub()
	sink := &fakeSink{}
	h := NewHandler(hub, sink)

	sender, other := newTestClient(), newTestClient()
	hub.Register(sender)
	hub.Register(other)
	hub.Join(sender, "patient-1")
	hub.Join(other, "patient-1")

	h.ProcessMessage(context.Background(), sender, ClientMessage{
		Action: ActionSendMessage,
		Room:   "patient-1",
		Data:   json.RawMessage(`{"content":"hello"}`),
	})

	if len(sink.got) != 1 {
		t.Fatalf("message not persisted, sink calls: %v", sink.got)
	}
	// Broadcast to all members including the sender.
	for _, c := range []*Client{sender, other} {
		ev := drain(t, c)
		if ev.Type != EventReceiveMessage {
			t.Errorf("unexpected event type %s", ev.Type)
		}
	}
}

func TestSendMessageRejectedBySinkIsNotBroadcast(t *testing.T) {
	hub := NewHub()
	h := NewHandler(hub, &fakeSink{fail: true})

	c := newTestClient()
	hub.Register(c)
	hub.Join(c, "patient-1")

	h.ProcessMessage(context.Background(), c, ClientMessage{
		Action: ActionSendMessage,
		Room:   "patient-1",
		Data:   json.RawMessage(`{}`),
	})

	select {
	case <-c.Send:
		t.Error("rejected message was broadcast")
	default:
	}
}
