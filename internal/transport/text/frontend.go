package text

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/kiryu-dev/minesweeper-duel/internal/domain"
	"github.com/kiryu-dev/minesweeper-duel/internal/transport/view"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var errInvalidInput = errors.New("expected two numbers: row and column")

type frontend struct {
	in     io.Reader
	out    io.Writer
	view   *view.View
	color  bool
	mu     sync.Mutex
	logger *zap.Logger
}

// New returns a line-oriented frontend. Rows and columns are typed 1-based.
// When color is set, the board is drawn with ANSI escape sequences.
func New(in io.Reader, out io.Writer, color bool, logger *zap.Logger) *frontend {
	return &frontend{
		in:     in,
		out:    out,
		view:   view.New(),
		color:  color,
		logger: logger,
	}
}

func (f *frontend) Render(event domain.Event) error {
	if err := f.view.Apply(event); err != nil {
		return errors.WithMessage(err, "apply event to view")
	}
	switch event.Type {
	case domain.GameStarted, domain.TurnChanged, domain.GameEnded:
		f.printBoard()
	}
	return nil
}

func (f *frontend) Serve(ctx context.Context, hub domain.HubUseCase) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(f.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()
	for {
		f.prompt()
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
			if strings.TrimSpace(line) == "q" {
				return nil
			}
			coord, err := parseCoord(line)
			if err != nil {
				f.print(err.Error() + "\n")
				continue
			}
			err = hub.Activate(ctx, coord)
			switch {
			case errors.Is(err, domain.ErrInvalidCoordinate):
				f.print("no such cell\n")
			case errors.Is(err, domain.ErrGameAlreadyEnded):
				return nil
			case err != nil:
				return errors.WithMessage(err, "activate cell")
			}
		}
	}
}

func (f *frontend) prompt() {
	var finished bool
	f.view.Read(func(v *view.View) {
		finished = v.Finished
	})
	if !finished {
		f.print("row col: ")
	}
}

func parseCoord(line string) (domain.Coord, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return domain.Coord{}, errInvalidInput
	}
	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return domain.Coord{}, errors.WithMessage(errInvalidInput, err.Error())
	}
	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return domain.Coord{}, errors.WithMessage(errInvalidInput, err.Error())
	}
	return domain.Coord{Row: row - 1, Col: col - 1}, nil
}

func (f *frontend) printBoard() {
	var sb strings.Builder
	if f.color {
		sb.WriteString("\033[H\033[J")
	}
	f.view.Read(func(v *view.View) {
		sb.WriteString("    ")
		for c := 0; c < v.Cols; c++ {
			fmt.Fprintf(&sb, "%2d ", c+1)
		}
		sb.WriteByte('\n')
		for r, row := range v.Cells {
			fmt.Fprintf(&sb, "%2d  ", r+1)
			for _, cell := range row {
				sb.WriteString(f.cellString(cell, v.Players))
			}
			sb.WriteByte('\n')
		}
	})
	sb.WriteString(f.view.Status())
	sb.WriteByte('\n')
	f.print(sb.String())
}

func (f *frontend) print(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := io.WriteString(f.out, s); err != nil {
		f.logger.Warn("failed to write output", zap.Error(err))
	}
}

func (f *frontend) cellString(cell view.Cell, players [2]domain.Player) string {
	switch {
	case !cell.Revealed:
		return " . "
	case cell.Kind == domain.Mine:
		mark := fmt.Sprintf("*%d ", cell.Owner+1)
		if !f.color {
			return mark
		}
		return colorize(mark, players[cell.Owner].Color)
	default:
		return fmt.Sprintf(" %d ", cell.Count)
	}
}

// colorize paints s with a 24-bit background. Colors are parsed the same way
// the terminal window parses them.
func colorize(s string, name string) string {
	color := tcell.GetColor(name)
	if !color.Valid() {
		return s
	}
	r, g, b := color.RGB()
	return fmt.Sprintf("\033[97;48;2;%d;%d;%dm%s\033[0m", r, g, b, s)
}
