package hub

import (
	"context"
	"sync"

	"github.com/kiryu-dev/minesweeper-duel/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const activationQueueBufSize = 2

type activation struct {
	coord      domain.Coord
	resultChan chan error
}

type useCase struct {
	game      domain.GameUseCase
	queue     chan activation
	renderers []domain.Renderer
	done      chan struct{}
	closed    *atomic.Bool
	mu        *sync.RWMutex
	logger    *zap.Logger
}

func New(game domain.GameUseCase, logger *zap.Logger) *useCase {
	return &useCase{
		game:   game,
		queue:  make(chan activation, activationQueueBufSize),
		done:   make(chan struct{}),
		closed: atomic.NewBool(false),
		mu:     &sync.RWMutex{},
		logger: logger,
	}
}

func (u *useCase) Subscribe(r domain.Renderer) {
	u.mu.Lock()
	u.renderers = append(u.renderers, r)
	u.mu.Unlock()
}

func (u *useCase) Done() <-chan struct{} {
	return u.done
}

// Activate enqueues an activation and waits until the dispatch loop has
// applied it and delivered the resulting events to every renderer.
func (u *useCase) Activate(ctx context.Context, c domain.Coord) error {
	ch := make(chan error, 1)
	select {
	case u.queue <- activation{coord: c, resultChan: ch}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run publishes the start event and then processes activations one at a
// time until ctx is cancelled.
func (u *useCase) Run(ctx context.Context) error {
	if err := u.dispatch([]domain.Event{u.game.Start()}); err != nil {
		return errors.WithMessage(err, "dispatch start event")
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case a := <-u.queue:
			a.resultChan <- u.handle(a.coord)
		}
	}
}

func (u *useCase) handle(c domain.Coord) error {
	events, err := u.game.Activate(c)
	switch {
	case errors.Is(err, domain.ErrInvalidCoordinate), errors.Is(err, domain.ErrGameAlreadyEnded):
		u.logger.Warn("activation rejected",
			zap.Int("row", c.Row), zap.Int("col", c.Col), zap.Error(err))
		return err
	case err != nil:
		return errors.WithMessage(err, "activate cell")
	}
	if err := u.dispatch(events); err != nil {
		return errors.WithMessage(err, "dispatch events")
	}
	if u.game.IsFinished() && u.closed.CompareAndSwap(false, true) {
		close(u.done)
	}
	return nil
}

func (u *useCase) dispatch(events []domain.Event) error {
	u.mu.RLock()
	defer u.mu.RUnlock()
	for _, event := range events {
		for _, r := range u.renderers {
			if err := r.Render(event); err != nil {
				return errors.WithMessagef(err, "render '%s' event", event.Type)
			}
		}
	}
	return nil
}
