package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unkitsingh0/Multiplayer-Tic-Tac-Toe/internal/apperror"
	"github.com/unkitsingh0/Multiplayer-Tic-Tac-Toe/internal/entity"
)

func playingRoom() *entity.Room {
	room := entity.NewRoom("AB12CD", "conn-x")
	room.Players[entity.PlayerO] = "conn-o"
	room.Status = entity.StatusPlaying
	return room
}

func TestMakeTurn(t *testing.T) {
	t.Run("Accepted move flips the turn", func(t *testing.T) {
		// Given: a playing room with X to move
		room := playingRoom()

		// When: player X makes a turn
		err := MakeTurn(room, entity.PlayerX, 0)
		require.NoError(t, err)

		// Then: the cell is set and the turn passes to O
		assert.Equal(t, entity.PlayerX, room.Board[0])
		assert.Equal(t, entity.PlayerO, room.Turn)
		assert.Equal(t, entity.StatusPlaying, room.Status)
	})

	t.Run("Error on cell already occupied", func(t *testing.T) {
		// Given: a playing room where X has taken cell 0
		room := playingRoom()
		require.NoError(t, MakeTurn(room, entity.PlayerX, 0))

		// When: player O tries to move to the same cell
		err := MakeTurn(room, entity.PlayerO, 0)

		// Then: ErrCellOccupied is returned and nothing changed
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, entity.PlayerX, room.Board[0])
		assert.Equal(t, entity.PlayerO, room.Turn)
	})

	t.Run("Error on playing out of turn", func(t *testing.T) {
		// Given: a playing room with X to move
		room := playingRoom()

		// When: player O tries to move first
		err := MakeTurn(room, entity.PlayerO, 1)

		// Then: ErrNotYourTurn is returned and the board is untouched
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, entity.NewBoard(), room.Board)
		assert.Equal(t, entity.PlayerX, room.Turn)
	})

	t.Run("Invalid cell index", func(t *testing.T) {
		// Given: a playing room
		room := playingRoom()

		// When: an index outside the board is passed
		err := MakeTurn(room, entity.PlayerX, 20)

		// Then: ErrInvalidCell is returned
		assert.ErrorIs(t, err, apperror.ErrInvalidCell)
	})

	t.Run("Invalid negative cell index", func(t *testing.T) {
		// Given: a playing room
		room := playingRoom()

		// When: a negative index is passed
		err := MakeTurn(room, entity.PlayerX, -1)

		// Then: ErrInvalidCell is returned
		assert.ErrorIs(t, err, apperror.ErrInvalidCell)
	})

	t.Run("Move in a waiting room", func(t *testing.T) {
		// Given: a room still waiting for a second player
		room := entity.NewRoom("AB12CD", "conn-x")

		// When: the creator tries to move alone
		err := MakeTurn(room, entity.PlayerX, 0)

		// Then: ErrRoomNotPlaying is returned
		assert.ErrorIs(t, err, apperror.ErrRoomNotPlaying)
	})

	t.Run("Move after the game finished", func(t *testing.T) {
		// Given: a room where player X has already won
		room := playingRoom()
		room.Board = [9]string{
			entity.PlayerX, entity.PlayerX, entity.PlayerX,
			"", entity.PlayerO, "",
			"", entity.PlayerO, "",
		}
		room.Status = entity.StatusFinished
		room.Winner = entity.PlayerX

		// When: player O tries to move anyway
		err := MakeTurn(room, entity.PlayerO, 3)

		// Then: ErrRoomNotPlaying is returned
		assert.ErrorIs(t, err, apperror.ErrRoomNotPlaying)
	})

	t.Run("Winning move finishes the room and credits the winner", func(t *testing.T) {
		// Given: a playing room where X completes the top row next
		room := playingRoom()
		room.Board = [9]string{
			entity.PlayerX, entity.PlayerX, "",
			"", entity.PlayerO, entity.PlayerO,
			"", "", "",
		}

		// When: player X takes cell 2
		err := MakeTurn(room, entity.PlayerX, 2)
		require.NoError(t, err)

		// Then: the room is finished, X won and the win count ticked up
		assert.Equal(t, entity.StatusFinished, room.Status)
		assert.Equal(t, entity.PlayerX, room.Winner)
		assert.Equal(t, 1, room.WinCounts[entity.PlayerX])
		assert.Equal(t, 0, room.WinCounts[entity.PlayerO])
	})

	t.Run("Drawing move finishes the room without crediting anyone", func(t *testing.T) {
		// Given: a playing room one move away from a full board with no line
		room := playingRoom()
		room.Board = [9]string{
			entity.PlayerO, entity.PlayerX, entity.PlayerO,
			entity.PlayerO, entity.PlayerX, entity.PlayerX,
			"", entity.PlayerO, entity.PlayerO,
		}

		// When: player X fills the last cell
		err := MakeTurn(room, entity.PlayerX, 6)
		require.NoError(t, err)

		// Then: the room is finished with a draw and counts are untouched
		assert.Equal(t, entity.StatusFinished, room.Status)
		assert.Equal(t, entity.WinnerDraw, room.Winner)
		assert.Equal(t, 0, room.WinCounts[entity.PlayerX])
		assert.Equal(t, 0, room.WinCounts[entity.PlayerO])
	})
}

func TestEvaluate(t *testing.T) {
	t.Run("Detects every winning line the moment it forms", func(t *testing.T) {
		for _, combo := range WinCombos {
			// Given: a board where O holds exactly one complete line,
			// with some unrelated X cells filled in
			board := entity.NewBoard()
			for _, cell := range combo {
				board[cell] = entity.PlayerO
			}
			for cell := 0; cell < len(board); cell++ {
				if board[cell] == entity.EmptyCell {
					board[cell] = entity.PlayerX
					break
				}
			}

			// When: the board is evaluated
			result := Evaluate(board)

			// Then: O is the winner
			require.Equal(t, entity.PlayerO, result, "combo %v", combo)
		}
	})

	t.Run("No result before a line is completed", func(t *testing.T) {
		// Given: an open board with no complete line
		board := [9]string{
			entity.PlayerX, entity.PlayerO, entity.PlayerX,
			"", entity.PlayerO, "",
			entity.PlayerX, "", "",
		}

		// When: the board is evaluated
		result := Evaluate(board)

		// Then: the game continues
		require.Equal(t, "", result)
	})

	t.Run("Two cells of a line are not a win", func(t *testing.T) {
		// Given: X holds two thirds of the top row
		board := entity.NewBoard()
		board[0] = entity.PlayerX
		board[1] = entity.PlayerX

		// When: the board is evaluated
		result := Evaluate(board)

		// Then: no result is reported
		require.Equal(t, "", result)
	})

	t.Run("Full board without a line is a draw", func(t *testing.T) {
		// Given: all 9 cells filled with no winning triple
		board := [9]string{
			entity.PlayerO, entity.PlayerX, entity.PlayerO,
			entity.PlayerO, entity.PlayerX, entity.PlayerX,
			entity.PlayerX, entity.PlayerO, entity.PlayerX,
		}

		// When: the board is evaluated
		result := Evaluate(board)

		// Then: the game is a draw
		assert.Equal(t, entity.WinnerDraw, result)
	})

	t.Run("Multiple lines return the first in enumeration order", func(t *testing.T) {
		// Given: an impossible board where X holds both the top row
		// and the left column
		board := [9]string{
			entity.PlayerX, entity.PlayerX, entity.PlayerX,
			entity.PlayerX, "", "",
			entity.PlayerX, "", "",
		}

		// When: the board is evaluated
		result := Evaluate(board)

		// Then: it must not crash and reports X
		assert.Equal(t, entity.PlayerX, result)
	})
}
