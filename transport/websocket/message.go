package websocket

import (
	"encoding/json"

	"github.com/unkitsingh0/Multiplayer-Tic-Tac-Toe/internal/entity"
)

// Client and server events carried over the socket.
const (
	EventCreateRoom         = "createRoom"
	EventRoomCreated        = "roomCreated"
	EventJoinRoom           = "joinRoom"
	EventRoomJoined         = "roomJoined"
	EventErrorMsg           = "errorMsg"
	EventMakeMove           = "makeMove"
	EventGameUpdate         = "gameUpdate"
	EventResetGame          = "resetGame"
	EventPlayerDisconnected = "playerDisconnected"
)

// Message is the envelope for every event in both directions.
type Message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RolePayload acknowledges room creation or joining to a single connection.
type RolePayload struct {
	Code string `json:"code"`
	Role string `json:"role"`
}

// MovePayload is the client's move attempt. Idx is a pointer so a missing
// index is rejected instead of defaulting to cell 0.
type MovePayload struct {
	Code string `json:"code"`
	Idx  *int   `json:"idx"`
	Role string `json:"role"`
}

func newMessage(event string, payload interface{}) Message {
	return Message{
		Event:   event,
		Payload: json.RawMessage(mustMarshal(payload)),
	}
}

func mustMarshal(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// maskRoomDetails hides connection ownership from the broadcast snapshot.
func maskRoomDetails(room *entity.Room) *entity.Room {
	masked := *room
	masked.Players = nil
	return &masked
}
