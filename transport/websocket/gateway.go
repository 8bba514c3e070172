package websocket

import (
	"log/slog"
	"sync"
	"time"
)

const writeWait = 10 * time.Second

// messageWriter is the slice of *websocket.Conn the gateway needs; tests
// substitute an in-memory fake.
type messageWriter interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
}

// client serializes writes: gorilla connections allow one writer at a time.
type client struct {
	mu   sync.Mutex
	conn messageWriter
}

func (that *client) write(msg Message) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))

	return that.conn.WriteJSON(msg)
}

// Gateway addresses outbound messages: point-to-point by connection id, or
// group delivery to every member of a room code. Delivery is best effort;
// write failures are logged and dropped.
type Gateway struct {
	logger *slog.Logger

	mu    sync.RWMutex
	conns map[string]*client
	rooms map[string]map[string]struct{}
}

func NewGateway(logger *slog.Logger) *Gateway {
	return &Gateway{
		logger: logger,
		conns:  make(map[string]*client),
		rooms:  make(map[string]map[string]struct{}),
	}
}

func (that *Gateway) Register(connID string, conn messageWriter) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.conns[connID] = &client{conn: conn}
}

// Unregister drops the connection and its room memberships; emptied room
// groups are pruned.
func (that *Gateway) Unregister(connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.conns, connID)

	for code, members := range that.rooms {
		delete(members, connID)
		if len(members) == 0 {
			delete(that.rooms, code)
		}
	}
}

// Subscribe adds the connection to a room's broadcast group.
func (that *Gateway) Subscribe(connID, code string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	members, ok := that.rooms[code]
	if !ok {
		members = make(map[string]struct{})
		that.rooms[code] = members
	}

	members[connID] = struct{}{}
}

// SendTo delivers one message to a single connection.
func (that *Gateway) SendTo(connID string, msg Message) {
	that.mu.RLock()
	target, ok := that.conns[connID]
	that.mu.RUnlock()

	if !ok {
		that.logger.Warn("connection not found", "connID", connID)
		return
	}

	if err := target.write(msg); err != nil {
		that.logger.Error("failed to send message", "connID", connID, "event", msg.Event, "error", err)
	}
}

// Broadcast delivers one message to every connection in the room group.
func (that *Gateway) Broadcast(code string, msg Message) {
	that.mu.RLock()
	memberIDs := make([]string, 0, len(that.rooms[code]))
	for connID := range that.rooms[code] {
		memberIDs = append(memberIDs, connID)
	}
	that.mu.RUnlock()

	for _, connID := range memberIDs {
		that.SendTo(connID, msg)
	}
}
