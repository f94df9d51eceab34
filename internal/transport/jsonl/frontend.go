// Package jsonl drives a game headlessly: activations are read as JSON
// objects, one per line, and every event is written back as a JSON line.
package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/kiryu-dev/minesweeper-duel/internal/domain"
	"github.com/kiryu-dev/minesweeper-duel/pkg/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type rejection struct {
	Type  string       `json:"type"`
	Coord domain.Coord `json:"coord"`
	Error string       `json:"error"`
}

type frontend struct {
	in     io.Reader
	out    io.Writer
	mu     sync.Mutex
	logger *zap.Logger
}

func New(in io.Reader, out io.Writer, logger *zap.Logger) *frontend {
	return &frontend{
		in:     in,
		out:    out,
		logger: logger,
	}
}

func (f *frontend) Render(event domain.Event) error {
	return f.writeLine(event)
}

// Serve reads activations until the input is exhausted, the game ends or
// ctx is cancelled. Rejected activations are reported on the output and do
// not stop the loop.
func (f *frontend) Serve(ctx context.Context, hub domain.HubUseCase) error {
	lines := make(chan []byte)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(f.in)
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			select {
			case lines <- bytes.Clone(line):
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hub.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return errors.WithMessage(err, "scan input")
				default:
					return nil
				}
			}
			if err := f.handleLine(ctx, hub, line); err != nil {
				return err
			}
			select {
			case <-hub.Done():
				return nil
			default:
			}
		}
	}
}

func (f *frontend) handleLine(ctx context.Context, hub domain.HubUseCase, line []byte) error {
	coord, err := utils.UnmarshalJson[domain.Coord](line)
	if err != nil {
		f.logger.Warn("skipping malformed activation", zap.ByteString("line", line), zap.Error(err))
		return nil
	}
	err = hub.Activate(ctx, coord)
	switch {
	case errors.Is(err, domain.ErrInvalidCoordinate), errors.Is(err, domain.ErrGameAlreadyEnded):
		return f.writeLine(rejection{Type: "rejected", Coord: coord, Error: err.Error()})
	case errors.Is(err, context.Canceled):
		return nil
	case err != nil:
		return errors.WithMessage(err, "activate cell")
	}
	return nil
}

func (f *frontend) writeLine(v any) error {
	data, err := utils.MarshalJson(v)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.out.Write(append(data, '\n')); err != nil {
		return errors.WithMessage(err, "write json line")
	}
	return nil
}
