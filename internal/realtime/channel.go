// Package realtime is the client side of the room channel. It is a
// latency optimization only: payloads are invalidation hints folded into
// the replica or a nudge to the reconciler, never a source of truth.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/caresync/caresync/internal/domain/chat"
)

// Wire event and action names, shared with the server hub.
const (
	EventReceiveMessage    = "receive_message"
	EventAppointmentChange = "appointment_change"

	actionJoinRoom    = "join_room"
	actionLeaveRoom   = "leave_room"
	actionSendMessage = "send_message"
)

type event struct {
	Type      string          `json:"type"`
	Room      string          `json:"room"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type clientMessage struct {
	Action string          `json:"action"`
	Room   string          `json:"room"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Handlers receive pushed events. Both are optional; nil handlers drop
// the event.
type Handlers struct {
	// OnMessage delivers a chat message broadcast to a joined room,
	// including the echo of our own sends.
	OnMessage func(room string, m *chat.Message)
	// OnAppointmentChange signals that some appointment in the room
	// changed. No payload: the receiver re-fetches.
	OnAppointmentChange func(room string)
}

// Channel is an explicitly owned connection with a connect/join/close
// lifecycle. It is not safe to call Connect concurrently with itself.
type Channel struct {
	url      string
	handlers Handlers
	log      zerolog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	rooms  map[string]struct{}
	closed bool
}

func NewChannel(url string, handlers Handlers, log zerolog.Logger) *Channel {
	return &Channel{
		url:      url,
		handlers: handlers,
		log:      log,
		rooms:    make(map[string]struct{}),
	}
}

// Connect dials the server and starts the read loop. Rooms joined before
// a reconnect are re-joined.
func (c *Channel) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.closed = false
	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	c.mu.Unlock()

	for _, room := range rooms {
		if err := c.send(clientMessage{Action: actionJoinRoom, Room: room}); err != nil {
			return err
		}
	}

	go c.readLoop(conn)
	return nil
}

// JoinRoom subscribes to a room keyed by patient or user id.
func (c *Channel) JoinRoom(room string) error {
	c.mu.Lock()
	c.rooms[room] = struct{}{}
	c.mu.Unlock()
	return c.send(clientMessage{Action: actionJoinRoom, Room: room})
}

// LeaveRoom unsubscribes from a room.
func (c *Channel) LeaveRoom(room string) error {
	c.mu.Lock()
	delete(c.rooms, room)
	c.mu.Unlock()
	return c.send(clientMessage{Action: actionLeaveRoom, Room: room})
}

// SendMessage pushes a chat message into the room. The server persists
// it and echoes it to all members, sender included.
func (c *Channel) SendMessage(m *chat.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return c.send(clientMessage{Action: actionSendMessage, Room: m.RoomID, Data: data})
}

// Close shuts the connection down. Safe to call more than once.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.conn == nil {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (c *Channel) send(msg clientMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.closed {
		return websocket.ErrCloseSent
	}
	return c.conn.WriteJSON(msg)
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		var ev event
		if err := conn.ReadJSON(&ev); err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				c.log.Warn().Err(err).Msg("realtime channel read failed")
			}
			return
		}
		c.dispatch(ev)
	}
}

func (c *Channel) dispatch(ev event) {
	switch ev.Type {
	case EventReceiveMessage:
		if c.handlers.OnMessage == nil {
			return
		}
		var m chat.Message
		if err := json.Unmarshal(ev.Data, &m); err != nil {
			c.log.Warn().Err(err).Str("room", ev.Room).Msg("dropping malformed room message")
			return
		}
		c.handlers.OnMessage(ev.Room, &m)
	case EventAppointmentChange:
		if c.handlers.OnAppointmentChange != nil {
			c.handlers.OnAppointmentChange(ev.Room)
		}
	default:
		// Unknown push types are ignored; reconciliation covers them.
	}
}
