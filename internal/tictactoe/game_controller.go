package tictactoe

import (
	"fmt"

	"github.com/unkitsingh0/Multiplayer-Tic-Tac-Toe/internal/apperror"
	"github.com/unkitsingh0/Multiplayer-Tic-Tac-Toe/internal/entity"
)

// WinCombos enumerates the 8 winning line triples: rows, columns, diagonals.
// Evaluate checks them in this order, so the first completed line wins.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Evaluate - returns the winning mark, entity.WinnerDraw when all 9 cells are
// occupied without a line, or an empty string while the game is still open.
func Evaluate(board [9]string) string {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return a
		}
	}

	for _, cell := range board {
		if cell == entity.EmptyCell {
			return ""
		}
	}

	return entity.WinnerDraw
}

// MakeTurn - applies one move for the given mark, flips the turn or finishes
// the room. A finished room credits the winning mark's win count.
func MakeTurn(room *entity.Room, mark string, cell int) error {
	if !room.IsPlaying() {
		return apperror.ErrRoomNotPlaying
	}

	if err := validateMove(room, mark, cell); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	room.Board[cell] = mark
	updateRoomStatus(room, mark)

	return nil
}

// validateMove - checks if the move is valid.
func validateMove(room *entity.Room, mark string, cell int) error {
	if cell < 0 || cell >= len(room.Board) {
		return apperror.ErrInvalidCell
	}

	if room.Turn != mark {
		return apperror.ErrNotYourTurn
	}

	if room.Board[cell] != entity.EmptyCell {
		return apperror.ErrCellOccupied
	}

	return nil
}

// updateRoomStatus - checks the room status after a move.
func updateRoomStatus(room *entity.Room, mark string) {
	switch winner := Evaluate(room.Board); winner {
	case entity.PlayerX, entity.PlayerO:
		room.Winner = winner
		room.Status = entity.StatusFinished
		room.WinCounts[winner]++
	case entity.WinnerDraw:
		room.Winner = entity.WinnerDraw
		room.Status = entity.StatusFinished
	default:
		room.Turn = entity.OpposingMark(mark)
	}
}
