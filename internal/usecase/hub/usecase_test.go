package hub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kiryu-dev/minesweeper-duel/internal/domain"
	"github.com/kiryu-dev/minesweeper-duel/internal/usecase/board"
	"github.com/kiryu-dev/minesweeper-duel/internal/usecase/game"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (r *recorder) Render(event domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recorder) types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]domain.EventType, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}

func startHub(t *testing.T, mines []domain.Coord, renderers ...domain.Renderer) *useCase {
	t.Helper()
	b, err := board.FromMines(2, 2, mines)
	require.NoError(t, err)
	players := []domain.Player{
		domain.NewPlayer("Player 1", "#E74C3C"),
		domain.NewPlayer("Player 2", "#3498DB"),
	}
	g, err := game.New(b, players, domain.Rules{WinThreshold: 8}, zap.NewNop())
	require.NoError(t, err)
	h := New(g, zap.NewNop())
	for _, r := range renderers {
		h.Subscribe(r)
	}
	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() {
		runErr <- h.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-runErr)
	})
	return h
}

func TestActivateDispatchesToAllRenderers(t *testing.T) {
	lhs, rhs := &recorder{}, &recorder{}
	h := startHub(t, []domain.Coord{{Row: 0, Col: 0}, {Row: 0, Col: 1}}, lhs, rhs)

	require.NoError(t, h.Activate(context.Background(), domain.Coord{Row: 0, Col: 0}))
	require.NoError(t, h.Activate(context.Background(), domain.Coord{Row: 1, Col: 1}))

	want := []domain.EventType{
		domain.GameStarted,
		domain.CellRevealed,
		domain.ScoreChanged,
		domain.CellRevealed,
		domain.TurnChanged,
	}
	assert.Equal(t, want, lhs.types())
	assert.Equal(t, want, rhs.types())

	select {
	case <-h.Done():
		t.Fatal("game should still be in progress")
	default:
	}
}

func TestDoneClosedWhenGameEnds(t *testing.T) {
	rec := &recorder{}
	h := startHub(t, []domain.Coord{{Row: 0, Col: 0}}, rec)

	require.NoError(t, h.Activate(context.Background(), domain.Coord{Row: 0, Col: 0}))
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("done channel was not closed")
	}
	types := rec.types()
	assert.Equal(t, domain.GameEnded, types[len(types)-1])

	err := h.Activate(context.Background(), domain.Coord{Row: 1, Col: 1})
	assert.ErrorIs(t, err, domain.ErrGameAlreadyEnded)
}

func TestActivateRejectsInvalidCoordinate(t *testing.T) {
	rec := &recorder{}
	h := startHub(t, []domain.Coord{{Row: 0, Col: 0}}, rec)

	err := h.Activate(context.Background(), domain.Coord{Row: 5, Col: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidCoordinate)
	assert.Equal(t, []domain.EventType{domain.GameStarted}, rec.types())
}

func TestActivateReturnsRendererError(t *testing.T) {
	rec := &recorder{}
	h := startHub(t, []domain.Coord{{Row: 0, Col: 0}}, rec)
	// A rejected activation guarantees the start event has been dispatched.
	require.Error(t, h.Activate(context.Background(), domain.Coord{Row: -1, Col: 0}))
	rec.mu.Lock()
	rec.err = errors.New("screen closed")
	rec.mu.Unlock()

	err := h.Activate(context.Background(), domain.Coord{Row: 1, Col: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "screen closed")
}

func TestActivateHonoursContext(t *testing.T) {
	b, err := board.FromMines(2, 2, []domain.Coord{{Row: 1, Col: 1}})
	require.NoError(t, err)
	g, err := game.New(b, []domain.Player{{Name: "a"}, {Name: "b"}}, domain.Rules{WinThreshold: 8}, zap.NewNop())
	require.NoError(t, err)
	h := New(g, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// Nothing runs the dispatch loop, so the call can only return via ctx.
	err = h.Activate(ctx, domain.Coord{})
	assert.ErrorIs(t, err, context.Canceled)
}
