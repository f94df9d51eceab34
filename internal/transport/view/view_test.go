package view

import (
	"testing"

	"github.com/kiryu-dev/minesweeper-duel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startEvent() domain.Event {
	return domain.Event{
		Type: domain.GameStarted,
		Payload: domain.GameStartedPayload{
			Uuid:       "game",
			Rows:       2,
			Cols:       3,
			TotalMines: 2,
			Players: [2]domain.Player{
				domain.NewPlayer("Player 1", "#E74C3C"),
				domain.NewPlayer("Player 2", "#3498DB"),
			},
		},
	}
}

func TestApplyRequiresStart(t *testing.T) {
	v := New()
	err := v.Apply(domain.Event{Type: domain.TurnChanged, Payload: domain.TurnChangedPayload{Player: 1}})
	assert.ErrorIs(t, err, errNotStarted)
}

func TestApplyFoldsEvents(t *testing.T) {
	v := New()
	require.NoError(t, v.Apply(startEvent()))
	assert.Equal(t, "Player 1's Turn (Score: 0) | Player 1: 0 | Player 2: 0", v.Status())

	owner := 0
	events := []domain.Event{
		{Type: domain.CellRevealed, Payload: domain.CellRevealedPayload{Coord: domain.Coord{Row: 0, Col: 1}, Kind: domain.Mine, Owner: &owner}},
		{Type: domain.ScoreChanged, Payload: domain.ScoreChangedPayload{Player: 0, Score: 1}},
		{Type: domain.CellRevealed, Payload: domain.CellRevealedPayload{Coord: domain.Coord{Row: 1, Col: 2}, Kind: domain.Clear, Count: 1}},
		{Type: domain.TurnChanged, Payload: domain.TurnChangedPayload{Player: 1}},
	}
	for _, e := range events {
		require.NoError(t, v.Apply(e))
	}
	assert.Equal(t, Cell{Revealed: true, Kind: domain.Mine, Owner: 0}, v.Cells[0][1])
	assert.Equal(t, Cell{Revealed: true, Kind: domain.Clear, Count: 1, Owner: -1}, v.Cells[1][2])
	assert.Equal(t, Cell{Owner: -1}, v.Cells[0][0])
	assert.Equal(t, "Player 2's Turn (Score: 0) | Player 1: 1 | Player 2: 0", v.Status())

	require.NoError(t, v.Apply(domain.Event{
		Type:    domain.GameEnded,
		Payload: domain.GameEndedPayload{Result: domain.WinResult(0), Message: "Player 1 wins!"},
	}))
	assert.True(t, v.Finished)
	assert.Equal(t, "Game Over: Player 1 wins!", v.Status())
}

func TestApplyRejectsUnknownPayload(t *testing.T) {
	v := New()
	require.NoError(t, v.Apply(startEvent()))
	assert.Error(t, v.Apply(domain.Event{Type: domain.TurnChanged, Payload: "oops"}))
}
