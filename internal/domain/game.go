package domain

import (
	"github.com/pkg/errors"
)

var (
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrGameAlreadyEnded  = errors.New("game already ended")
	ErrInvalidDimensions = errors.New("board dimensions must be positive")
	ErrInvalidMineCount  = errors.New("mine count must be between 1 and rows*columns")
	ErrInvalidThreshold  = errors.New("win threshold must be positive")
)

type Status byte

const (
	InProgress = Status(iota)
	Finished
)

type Rules struct {
	WinThreshold int
}

func (r Rules) Validate() error {
	if r.WinThreshold <= 0 {
		return errors.WithMessagef(ErrInvalidThreshold, "got %d", r.WinThreshold)
	}
	return nil
}

func ValidateBoard(rows int, cols int, mines int) error {
	if rows <= 0 || cols <= 0 {
		return errors.WithMessagef(ErrInvalidDimensions, "got %dx%d", rows, cols)
	}
	if mines <= 0 || mines > rows*cols {
		return errors.WithMessagef(ErrInvalidMineCount, "got %d mines on %dx%d", mines, rows, cols)
	}
	return nil
}

// Result describes how a finished game ended. Winner is -1 on a tie.
type Result struct {
	Winner int  `json:"winner"`
	Tie    bool `json:"tie"`
}

func WinResult(player int) Result {
	return Result{Winner: player}
}

func TieResult() Result {
	return Result{Winner: -1, Tie: true}
}

func (r Result) Describe(players [2]Player) string {
	if r.Tie {
		return "It's a tie!"
	}
	return players[r.Winner].Name + " wins!"
}

type CellView struct {
	Revealed bool `json:"revealed"`
	Kind     Kind `json:"kind"`
	Count    int  `json:"count"`
	// Owner is the index of the player who revealed a mine, -1 otherwise.
	Owner int `json:"owner"`
}

type GameState struct {
	Uuid          string       `json:"uuid"`
	Rows          int          `json:"rows"`
	Cols          int          `json:"cols"`
	TotalMines    int          `json:"total_mines"`
	Cells         [][]CellView `json:"cells"`
	Players       [2]Player    `json:"players"`
	CurrentPlayer int          `json:"current_player"`
	Status        Status       `json:"status"`
	Result        *Result      `json:"result,omitempty"`
}

type GameUseCase interface {
	Uuid() string
	Start() Event
	Activate(c Coord) ([]Event, error)
	Snapshot() GameState
	IsFinished() bool
}
