package entity

const (
	StatusWaiting  = "waiting"
	StatusPlaying  = "playing"
	StatusFinished = "finished"

	PlayerX = "X"
	PlayerO = "O"

	WinnerDraw = "draw"

	EmptyCell = ""

	// Unassigned marks a mark slot with no owning connection.
	Unassigned = ""
)

// Room is the full state of one match, keyed by its shareable code.
// Players maps a mark to the connection that owns it; WinCounts survives
// resets and is dropped only when the room is destroyed.
type Room struct {
	Code      string            `json:"code"`
	Board     [9]string         `json:"board"`
	Turn      string            `json:"turn"`
	Players   map[string]string `json:"players,omitempty"`
	Status    string            `json:"status"`
	Winner    string            `json:"winner,omitempty"`
	WinCounts map[string]int    `json:"winCounts"`
}

func NewBoard() [9]string {
	return [9]string{}
}

// NewRoom - creates a waiting room with the creator owning mark X.
func NewRoom(code, connID string) *Room {
	return &Room{
		Code:  code,
		Board: NewBoard(),
		Turn:  PlayerX,
		Players: map[string]string{
			PlayerX: connID,
			PlayerO: Unassigned,
		},
		Status:    StatusWaiting,
		WinCounts: map[string]int{PlayerX: 0, PlayerO: 0},
	}
}

func (that *Room) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Room) IsPlaying() bool {
	return that.Status == StatusPlaying
}

func (that *Room) IsFinished() bool {
	return that.Status == StatusFinished
}

// IsFull reports whether both marks are owned by live connections.
func (that *Room) IsFull() bool {
	return that.Players[PlayerX] != Unassigned && that.Players[PlayerO] != Unassigned
}

// IsEmpty reports whether no connection owns a mark anymore.
func (that *Room) IsEmpty() bool {
	return that.Players[PlayerX] == Unassigned && that.Players[PlayerO] == Unassigned
}

// OpenMark returns the unowned mark, or Unassigned when the room is full.
func (that *Room) OpenMark() string {
	if that.Players[PlayerX] == Unassigned {
		return PlayerX
	}
	if that.Players[PlayerO] == Unassigned {
		return PlayerO
	}
	return Unassigned
}

// MarkOf returns the mark owned by the given connection, or Unassigned.
func (that *Room) MarkOf(connID string) string {
	for _, mark := range []string{PlayerX, PlayerO} {
		if that.Players[mark] == connID {
			return mark
		}
	}
	return Unassigned
}

// Release clears every mark owned by the given connection and returns the
// connection that owns the opposing mark, if any.
func (that *Room) Release(connID string) (string, bool) {
	var opponent string
	var released bool

	for _, mark := range []string{PlayerX, PlayerO} {
		if that.Players[mark] != connID {
			continue
		}

		that.Players[mark] = Unassigned
		released = true

		if owner := that.Players[OpposingMark(mark)]; owner != Unassigned {
			opponent = owner
		}
	}

	return opponent, released
}

// Reset clears the board for a rematch. Win counts are kept; the room goes
// back to playing only when both marks are still owned.
func (that *Room) Reset() {
	that.Board = NewBoard()
	that.Turn = PlayerX
	that.Winner = ""

	if that.IsFull() {
		that.Status = StatusPlaying
	} else {
		that.Status = StatusWaiting
	}
}

func OpposingMark(mark string) string {
	if mark == PlayerX {
		return PlayerO
	}
	return PlayerX
}
