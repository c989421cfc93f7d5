package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/caresync/caresync/internal/domain/chat"
)

// echoServer upgrades the connection, records joins, and echoes every
// send_message back as a receive_message event.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			var msg clientMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			switch msg.Action {
			case actionSendMessage:
				ev := event{Type: EventReceiveMessage, Room: msg.Room, Timestamp: time.Now(), Data: msg.Data}
				if err := conn.WriteJSON(ev); err != nil {
					return
				}
			case actionJoinRoom:
				ev := event{Type: EventAppointmentChange, Room: msg.Room, Timestamp: time.Now()}
				if err := conn.WriteJSON(ev); err != nil {
					return
				}
			}
		}
	}))
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestSendMessageEchoesToHandler(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	received := make(chan *chat.Message, 1)
	ch := NewChannel(wsURL(srv), Handlers{
		OnMessage: func(_ string, m *chat.Message) { received <- m },
	}, zerolog.Nop())

	if err := ch.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer ch.Close()

	sent := &chat.Message{ID: uuid.New(), RoomID: "patient-1", SenderID: uuid.New(), Content: "hello"}
	if err := ch.SendMessage(sent); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-received:
		if got.ID != sent.ID || got.Content != "hello" {
			t.Errorf("echo mismatch: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no echo received")
	}
}

func TestJoinRoomDeliversAppointmentChange(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	changed := make(chan string, 1)
	ch := NewChannel(wsURL(srv), Handlers{
		OnAppointmentChange: func(room string) { changed <- room },
	}, zerolog.Nop())

	if err := ch.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer ch.Close()

	if err := ch.JoinRoom("patient-7"); err != nil {
		t.Fatal(err)
	}

	select {
	case room := <-changed:
		if room != "patient-7" {
			t.Errorf("room = %s", room)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no appointment_change received")
	}
}

func TestSendWithoutConnectFails(t *testing.T) {
	ch := NewChannel("ws://127.0.0.1:1/ws", Handlers{}, zerolog.Nop())
	if err := ch.SendMessage(&chat.Message{RoomID: "r", SenderID: uuid.New(), Content: "x"}); err == nil {
		t.Error("expected error before connect")
	}
}

func TestMalformedEventIsDropped(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		bad := event{Type: EventReceiveMessage, Room: "r", Data: json.RawMessage(`"not an object"`)}
		good := event{Type: EventAppointmentChange, Room: "r"}
		_ = conn.WriteJSON(bad)
		_ = conn.WriteJSON(good)
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	changed := make(chan string, 1)
	ch := NewChannel(wsURL(srv), Handlers{
		OnMessage:           func(_ string, _ *chat.Message) { t.Error("malformed message dispatched") },
		OnAppointmentChange: func(room string) { changed <- room },
	}, zerolog.Nop())
	if err := ch.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer ch.Close()

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("channel stopped after malformed event")
	}
}
