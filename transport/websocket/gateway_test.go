package websocket

import (
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []Message
	writeErr error
}

func (that *fakeConn) WriteJSON(v interface{}) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.writeErr != nil {
		return that.writeErr
	}

	msg, ok := v.(Message)
	if !ok {
		return errors.New("unexpected payload type")
	}

	that.messages = append(that.messages, msg)
	return nil
}

func (that *fakeConn) SetWriteDeadline(_ time.Time) error {
	return nil
}

func (that *fakeConn) received() []Message {
	that.mu.Lock()
	defer that.mu.Unlock()

	out := make([]Message, len(that.messages))
	copy(out, that.messages)
	return out
}

func newTestGateway() *Gateway {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewGateway(logger)
}

func TestGateway_SendTo(t *testing.T) {
	t.Run("Delivers to exactly one connection", func(t *testing.T) {
		// Given: two registered connections
		gateway := newTestGateway()
		first := &fakeConn{}
		second := &fakeConn{}
		gateway.Register("conn-1", first)
		gateway.Register("conn-2", second)

		// When: a message is sent to one of them
		gateway.SendTo("conn-1", Message{Event: EventRoomCreated})

		// Then: only that connection receives it
		require.Len(t, first.received(), 1)
		assert.Equal(t, EventRoomCreated, first.received()[0].Event)
		assert.Empty(t, second.received())
	})

	t.Run("Unknown connection is dropped silently", func(t *testing.T) {
		// Given: an empty gateway
		gateway := newTestGateway()

		// When/Then: sending to nobody must not panic
		gateway.SendTo("conn-ghost", Message{Event: EventErrorMsg})
	})

	t.Run("Write failures are best effort", func(t *testing.T) {
		// Given: a connection whose writes fail
		gateway := newTestGateway()
		broken := &fakeConn{writeErr: errors.New("broken pipe")}
		gateway.Register("conn-1", broken)

		// When/Then: the send is swallowed
		gateway.SendTo("conn-1", Message{Event: EventGameUpdate})
	})
}

func TestGateway_Broadcast(t *testing.T) {
	t.Run("Reaches every member of the room and nobody else", func(t *testing.T) {
		// Given: two members of one room and an outsider
		gateway := newTestGateway()
		memberX := &fakeConn{}
		memberO := &fakeConn{}
		outsider := &fakeConn{}
		gateway.Register("conn-x", memberX)
		gateway.Register("conn-o", memberO)
		gateway.Register("conn-out", outsider)
		gateway.Subscribe("conn-x", "AB12CD")
		gateway.Subscribe("conn-o", "AB12CD")

		// When: a room broadcast goes out
		gateway.Broadcast("AB12CD", Message{Event: EventGameUpdate})

		// Then: both members got it, the outsider did not
		require.Len(t, memberX.received(), 1)
		require.Len(t, memberO.received(), 1)
		assert.Empty(t, outsider.received())
	})

	t.Run("Broadcast to an unknown room is a no-op", func(t *testing.T) {
		// Given: a gateway with one registered connection
		gateway := newTestGateway()
		conn := &fakeConn{}
		gateway.Register("conn-1", conn)

		// When: broadcasting to a room nobody joined
		gateway.Broadcast("NOPE42", Message{Event: EventGameUpdate})

		// Then: nothing is delivered
		assert.Empty(t, conn.received())
	})
}

func TestGateway_Unregister(t *testing.T) {
	// Given: two members of a room
	gateway := newTestGateway()
	memberX := &fakeConn{}
	memberO := &fakeConn{}
	gateway.Register("conn-x", memberX)
	gateway.Register("conn-o", memberO)
	gateway.Subscribe("conn-x", "AB12CD")
	gateway.Subscribe("conn-o", "AB12CD")

	// When: one member is unregistered
	gateway.Unregister("conn-x")
	gateway.Broadcast("AB12CD", Message{Event: EventGameUpdate})

	// Then: only the remaining member hears the broadcast
	assert.Empty(t, memberX.received())
	require.Len(t, memberO.received(), 1)

	// When: the last member leaves too
	gateway.Unregister("conn-o")

	// Then: the room group is pruned
	gateway.mu.RLock()
	_, ok := gateway.rooms["AB12CD"]
	gateway.mu.RUnlock()
	assert.False(t, ok)
}
