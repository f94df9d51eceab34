// Package view folds game events into the state a renderer draws.
package view

import (
	"fmt"
	"sync"

	"github.com/kiryu-dev/minesweeper-duel/internal/domain"
	"github.com/pkg/errors"
)

var errNotStarted = errors.New("event received before game start")

type Cell struct {
	Revealed bool
	Kind     domain.Kind
	Count    int
	Owner    int
}

type View struct {
	Uuid          string
	Rows          int
	Cols          int
	TotalMines    int
	Players       [2]domain.Player
	CurrentPlayer int
	Cells         [][]Cell
	Finished      bool
	ResultMessage string
	started       bool
	mu            sync.RWMutex
}

func New() *View {
	return &View{}
}

func (v *View) Apply(event domain.Event) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if event.Type != domain.GameStarted && !v.started {
		return errors.WithMessagef(errNotStarted, "'%s'", event.Type)
	}
	switch p := event.Payload.(type) {
	case domain.GameStartedPayload:
		v.start(p)
	case domain.CellRevealedPayload:
		cell := Cell{Revealed: true, Kind: p.Kind, Count: p.Count, Owner: -1}
		if p.Owner != nil {
			cell.Owner = *p.Owner
		}
		v.Cells[p.Coord.Row][p.Coord.Col] = cell
	case domain.TurnChangedPayload:
		v.CurrentPlayer = p.Player
	case domain.ScoreChangedPayload:
		v.Players[p.Player].Score = p.Score
	case domain.GameEndedPayload:
		v.Finished = true
		v.ResultMessage = p.Message
	default:
		return errors.Errorf("unexpected payload %T for '%s' event", event.Payload, event.Type)
	}
	return nil
}

func (v *View) start(p domain.GameStartedPayload) {
	v.Uuid = p.Uuid
	v.Rows = p.Rows
	v.Cols = p.Cols
	v.TotalMines = p.TotalMines
	v.Players = p.Players
	v.CurrentPlayer = p.CurrentPlayer
	v.Cells = make([][]Cell, p.Rows)
	for r := range v.Cells {
		v.Cells[r] = make([]Cell, p.Cols)
		for c := range v.Cells[r] {
			v.Cells[r][c].Owner = -1
		}
	}
	v.Finished = false
	v.ResultMessage = ""
	v.started = true
}

// Status is the one-line summary shown above the board.
func (v *View) Status() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.Finished {
		return "Game Over: " + v.ResultMessage
	}
	player := v.Players[v.CurrentPlayer]
	return fmt.Sprintf("%s's Turn (Score: %d) | %s: %d | %s: %d",
		player.Name, player.Score,
		v.Players[0].Name, v.Players[0].Score,
		v.Players[1].Name, v.Players[1].Score)
}

// Read runs fn with the view locked for reading.
func (v *View) Read(fn func(v *View)) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	fn(v)
}
