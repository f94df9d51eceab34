package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/minesweeper-duel/internal/domain"
	"github.com/kiryu-dev/minesweeper-duel/internal/usecase/board"
	"github.com/kiryu-dev/minesweeper-duel/internal/usecase/game"
	"github.com/kiryu-dev/minesweeper-duel/internal/usecase/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type line struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
	Error   string         `json:"error"`
}

func play(t *testing.T, input string) ([]line, domain.GameUseCase) {
	t.Helper()
	b, err := board.FromMines(2, 2, []domain.Coord{{Row: 0, Col: 0}, {Row: 1, Col: 1}})
	require.NoError(t, err)
	players := []domain.Player{
		domain.NewPlayer("Player 1", "#E74C3C"),
		domain.NewPlayer("Player 2", "#3498DB"),
	}
	g, err := game.New(b, players, domain.Rules{WinThreshold: 8}, zap.NewNop())
	require.NoError(t, err)
	h := hub.New(g, zap.NewNop())
	out := &bytes.Buffer{}
	f := New(strings.NewReader(input), out, zap.NewNop())
	h.Subscribe(f)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = h.Run(ctx)
	}()
	require.NoError(t, f.Serve(ctx, h))

	var lines []line
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		var l line
		require.NoError(t, jsoniter.Unmarshal(scanner.Bytes(), &l))
		lines = append(lines, l)
	}
	return lines, g
}

func types(lines []line) []string {
	result := make([]string, 0, len(lines))
	for _, l := range lines {
		result = append(result, l.Type)
	}
	return result
}

func TestServeWritesEventsAsJSONLines(t *testing.T) {
	lines, g := play(t, `{"row":0,"col":1}
{"row":7,"col":7}

not json
{"row":0,"col":0}
{"row":1,"col":1}
{"row":1,"col":0}
`)
	assert.Equal(t, []string{
		"game_started",
		"cell_revealed",
		"turn_changed",
		"rejected",
		"cell_revealed",
		"score_changed",
		"cell_revealed",
		"score_changed",
		"game_ended",
	}, types(lines))

	assert.Equal(t, "clear", lines[1].Payload["kind"])
	assert.Equal(t, float64(2), lines[1].Payload["count"])
	assert.Contains(t, lines[3].Error, domain.ErrInvalidCoordinate.Error())
	assert.Equal(t, "mine", lines[4].Payload["kind"])
	assert.Equal(t, float64(1), lines[4].Payload["owner"])
	assert.Equal(t, "Player 2 wins!", lines[8].Payload["message"])
	assert.True(t, g.IsFinished())
}

func TestServeStopsAtEndOfInput(t *testing.T) {
	lines, g := play(t, `{"row":0,"col":0}`)
	assert.Equal(t, []string{"game_started", "cell_revealed", "score_changed"}, types(lines))
	assert.False(t, g.IsFinished())
}

func TestServeReturnsOnCancelWithOpenInput(t *testing.T) {
	b, err := board.FromMines(2, 2, []domain.Coord{{Row: 0, Col: 0}})
	require.NoError(t, err)
	players := []domain.Player{
		domain.NewPlayer("Player 1", "#E74C3C"),
		domain.NewPlayer("Player 2", "#3498DB"),
	}
	g, err := game.New(b, players, domain.Rules{WinThreshold: 8}, zap.NewNop())
	require.NoError(t, err)
	h := hub.New(g, zap.NewNop())

	in, writer := io.Pipe()
	defer func() {
		_ = writer.Close()
	}()
	f := New(in, io.Discard, zap.NewNop())
	h.Subscribe(f)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = h.Run(ctx)
	}()
	served := make(chan error, 1)
	go func() {
		served <- f.Serve(ctx, h)
	}()

	// The writer side stays open, so the scanner is blocked on a read.
	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after the context was cancelled")
	}
}
