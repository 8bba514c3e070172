package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/unkitsingh0/Multiplayer-Tic-Tac-Toe/internal/apperror"
	"github.com/unkitsingh0/Multiplayer-Tic-Tac-Toe/internal/entity"
	"github.com/unkitsingh0/Multiplayer-Tic-Tac-Toe/internal/pkg"
	"github.com/unkitsingh0/Multiplayer-Tic-Tac-Toe/internal/tictactoe"
)

var ErrCodeGeneration = errors.New("failed to generate room code")

type roomRepo interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByCode(ctx context.Context, code string) (*entity.Room, error)
	DeleteByCode(ctx context.Context, code string) error
	GetAll(ctx context.Context) ([]*entity.Room, error)
}

// Departure describes one room a dropped connection has to be removed from.
// Opponent is the connection left behind, if any.
type Departure struct {
	Room     *entity.Room
	Opponent string
}

// RoomManager owns every room: it creates, joins, mutates and garbage-collects
// them. All mutations of one room run under that room's lock, so a move is
// validated against the exact board and turn it will be applied to.
type RoomManager struct {
	logger *slog.Logger
	rooms  roomRepo

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRoomManager(logger *slog.Logger, rooms roomRepo) *RoomManager {
	return &RoomManager{
		logger: logger,
		rooms:  rooms,
		locks:  make(map[string]*sync.Mutex),
	}
}

// CreateRoom - allocates a waiting room under a fresh code; the creating
// connection owns mark X.
func (that *RoomManager) CreateRoom(ctx context.Context, connID string) (*entity.Room, error) {
	log := that.logger.With("method", "CreateRoom")

	code, err := that.newRoomCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate room code: %w", err)
	}

	room := entity.NewRoom(code, connID)
	if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	log.Info("room created", "code", code, "connID", connID)

	return room, nil
}

// JoinRoom - assigns the unowned mark to the connection and starts the match.
// Joining a room the connection already plays in is a no-op returning its mark.
func (that *RoomManager) JoinRoom(ctx context.Context, code, connID string) (*entity.Room, string, error) {
	unlock := that.lockRoom(code)
	defer unlock()

	room, err := that.rooms.GetByCode(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get room: %w", err)
	}

	if mark := room.MarkOf(connID); mark != entity.Unassigned {
		return room, mark, nil
	}

	mark := room.OpenMark()
	if mark == entity.Unassigned {
		return nil, "", fmt.Errorf("room %s: %w", code, apperror.ErrRoomFull)
	}

	room.Players[mark] = connID
	if room.IsWaiting() && room.IsFull() {
		room.Status = entity.StatusPlaying
	}

	if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
		return nil, "", fmt.Errorf("failed to update room: %w", err)
	}

	that.logger.Info("player joined room", "code", code, "mark", mark, "connID", connID)

	return room, mark, nil
}

// MakeMove - applies one move on behalf of the connection. The claimed mark is
// an assertion only: it must match the mark recorded for the connection at
// join time, never the other way around.
func (that *RoomManager) MakeMove(ctx context.Context, code, connID, claimedMark string, cell int) (*entity.Room, error) {
	unlock := that.lockRoom(code)
	defer unlock()

	room, err := that.rooms.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	mark := room.MarkOf(connID)
	if mark == entity.Unassigned || (claimedMark != "" && claimedMark != mark) {
		return nil, fmt.Errorf("room %s: %w", code, apperror.ErrNotYourMark)
	}

	if err = tictactoe.MakeTurn(room, mark, cell); err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	return room, nil
}

// ResetGame - clears the board for a rematch, keeping the win counts.
func (that *RoomManager) ResetGame(ctx context.Context, code string) (*entity.Room, error) {
	unlock := that.lockRoom(code)
	defer unlock()

	room, err := that.rooms.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	room.Reset()

	if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	that.logger.Info("room reset", "code", code)

	return room, nil
}

// RemoveConnection - releases every mark the connection owns, deletes rooms
// left with no players, and reports which opponents need a disconnect notice.
func (that *RoomManager) RemoveConnection(ctx context.Context, connID string) ([]Departure, error) {
	log := that.logger.With("method", "RemoveConnection")

	rooms, err := that.rooms.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	var departures []Departure

	for _, stale := range rooms {
		departure, err := that.leaveRoom(ctx, stale.Code, connID)
		if err != nil {
			log.Error("failed to clean up room", "code", stale.Code, "error", err)
			continue
		}

		if departure == nil {
			continue
		}

		if departure.Opponent != entity.Unassigned {
			departures = append(departures, *departure)
		}
	}

	return departures, nil
}

// leaveRoom - removes the connection from one room under that room's lock.
// Returns nil when the connection owned no mark there.
func (that *RoomManager) leaveRoom(ctx context.Context, code, connID string) (*Departure, error) {
	unlock := that.lockRoom(code)
	defer unlock()

	room, err := that.rooms.GetByCode(ctx, code)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	opponent, released := room.Release(connID)
	if !released {
		return nil, nil
	}

	if room.IsEmpty() {
		if err = that.rooms.DeleteByCode(ctx, code); err != nil {
			return nil, fmt.Errorf("failed to delete room: %w", err)
		}
		that.forgetLock(code)
		that.logger.Info("room destroyed", "code", code)

		return &Departure{Room: room, Opponent: opponent}, nil
	}

	if err = that.rooms.CreateOrUpdate(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	that.logger.Info("player left room", "code", code, "connID", connID)

	return &Departure{Room: room, Opponent: opponent}, nil
}

// newRoomCode - regenerates until the code is unused among live rooms.
func (that *RoomManager) newRoomCode(ctx context.Context) (string, error) {
	for {
		code := pkg.GenerateRoomCode()
		if code == "" {
			return "", ErrCodeGeneration
		}

		_, err := that.rooms.GetByCode(ctx, code)
		if errors.Is(err, apperror.ErrRoomNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check room code: %w", err)
		}
	}
}

func (that *RoomManager) lockRoom(code string) func() {
	that.mu.Lock()
	lock, ok := that.locks[code]
	if !ok {
		lock = &sync.Mutex{}
		that.locks[code] = lock
	}
	that.mu.Unlock()

	lock.Lock()

	return lock.Unlock
}

func (that *RoomManager) forgetLock(code string) {
	that.mu.Lock()
	delete(that.locks, code)
	that.mu.Unlock()
}
