package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/unkitsingh0/Multiplayer-Tic-Tac-Toe/internal/apperror"
	"github.com/unkitsingh0/Multiplayer-Tic-Tac-Toe/internal/entity"
)

// User-visible error strings of the room protocol.
const (
	errRoomNotFound = "Room not found"
	errRoomFull     = "Room full"
)

func (that *Server) handleCreateRoom(ctx context.Context, connID string, _ *Message) error {
	log := that.logger.With("method", "handleCreateRoom", "connID", connID)

	room, err := that.rooms.CreateRoom(ctx, connID)
	if err != nil {
		log.Error("failed to create room", "error", err)
		that.sendError(connID, "failed to create room")
		return fmt.Errorf("failed to create room: %w", err)
	}

	that.gateway.Subscribe(connID, room.Code)

	that.gateway.SendTo(connID, newMessage(EventRoomCreated, RolePayload{
		Code: room.Code,
		Role: entity.PlayerX,
	}))

	return nil
}

func (that *Server) handleJoinRoom(ctx context.Context, connID string, msg *Message) error {
	log := that.logger.With("method", "handleJoinRoom", "connID", connID)

	var code string
	if err := json.Unmarshal(msg.Payload, &code); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room, mark, err := that.rooms.JoinRoom(ctx, code, connID)

	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		that.sendError(connID, errRoomNotFound)
		return nil
	case errors.Is(err, apperror.ErrRoomFull):
		that.sendError(connID, errRoomFull)
		return nil
	case err != nil:
		log.Error("failed to join room", "code", code, "error", err)
		that.sendError(connID, "failed to join room")
		return fmt.Errorf("failed to join room: %w", err)
	}

	that.gateway.Subscribe(connID, room.Code)

	that.gateway.SendTo(connID, newMessage(EventRoomJoined, RolePayload{
		Code: room.Code,
		Role: mark,
	}))

	// the earlier player gets the same confirmation with their own role
	if opponent := room.Players[entity.OpposingMark(mark)]; opponent != entity.Unassigned && opponent != connID {
		that.gateway.SendTo(opponent, newMessage(EventRoomJoined, RolePayload{
			Code: room.Code,
			Role: entity.OpposingMark(mark),
		}))
	}

	that.gateway.Broadcast(room.Code, newMessage(EventGameUpdate, maskRoomDetails(room)))

	return nil
}

func (that *Server) handleMakeMove(ctx context.Context, connID string, msg *Message) error {
	log := that.logger.With("method", "handleMakeMove", "connID", connID)

	var payload MovePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.Idx == nil {
		log.Debug("move without cell index dropped")
		return nil
	}

	room, err := that.rooms.MakeMove(ctx, payload.Code, connID, payload.Role, *payload.Idx)

	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		that.sendError(connID, errRoomNotFound)
		return nil
	case isRejectedMove(err):
		// expected from stale or racing clients: no state change, no broadcast
		log.Debug("move rejected", "code", payload.Code, "error", err)
		return nil
	case err != nil:
		log.Error("failed to make move", "code", payload.Code, "error", err)
		return fmt.Errorf("failed to make move: %w", err)
	}

	that.gateway.Broadcast(room.Code, newMessage(EventGameUpdate, maskRoomDetails(room)))

	return nil
}

func (that *Server) handleResetGame(ctx context.Context, connID string, msg *Message) error {
	log := that.logger.With("method", "handleResetGame", "connID", connID)

	var code string
	if err := json.Unmarshal(msg.Payload, &code); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room, err := that.rooms.ResetGame(ctx, code)

	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		log.Debug("reset of unknown room dropped", "code", code)
		return nil
	case err != nil:
		log.Error("failed to reset room", "code", code, "error", err)
		return fmt.Errorf("failed to reset room: %w", err)
	}

	that.gateway.Broadcast(room.Code, newMessage(EventGameUpdate, maskRoomDetails(room)))

	return nil
}

// handleDisconnect - releases the connection's marks and notifies any
// opponents left behind.
func (that *Server) handleDisconnect(ctx context.Context, connID string) {
	log := that.logger.With("method", "handleDisconnect", "connID", connID)

	departures, err := that.rooms.RemoveConnection(ctx, connID)
	if err != nil {
		log.Error("failed to remove connection", "error", err)
	}

	for _, departure := range departures {
		that.gateway.SendTo(departure.Opponent, Message{Event: EventPlayerDisconnected})
	}

	that.gateway.Unregister(connID)

	log.Info("player disconnected", "rooms", len(departures))
}

// isRejectedMove reports whether the error belongs to the silent rejection
// class of the move protocol.
func isRejectedMove(err error) bool {
	return errors.Is(err, apperror.ErrRoomNotPlaying) ||
		errors.Is(err, apperror.ErrNotYourTurn) ||
		errors.Is(err, apperror.ErrCellOccupied) ||
		errors.Is(err, apperror.ErrInvalidCell) ||
		errors.Is(err, apperror.ErrNotYourMark)
}

func (that *Server) sendError(connID, errorMsg string) {
	that.gateway.SendTo(connID, newMessage(EventErrorMsg, errorMsg))
}
