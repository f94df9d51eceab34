package tui

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/kiryu-dev/minesweeper-duel/internal/domain"
	"github.com/kiryu-dev/minesweeper-duel/internal/transport/view"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	boardTop  = 2
	boardLeft = 2
	cellWidth = 5
	hintText  = "arrows/click: select  enter/space: reveal  q: quit"
)

var (
	backgroundStyle = tcell.StyleDefault.Background(tcell.GetColor("#34495E")).Foreground(tcell.ColorWhite)
	hiddenStyle     = tcell.StyleDefault.Background(tcell.GetColor("#BDC3C7")).Foreground(tcell.ColorBlack)
	clearStyle      = tcell.StyleDefault.Background(tcell.GetColor("#ECF0F1")).Foreground(tcell.ColorBlack)
)

type frontend struct {
	screen  tcell.Screen
	view    *view.View
	selRow  int
	selCol  int
	buttons tcell.ButtonMask
	mu      sync.Mutex
	logger  *zap.Logger
}

// New returns a frontend drawing on an initialised screen. The caller owns
// the screen and must call Fini on it.
func New(screen tcell.Screen, logger *zap.Logger) *frontend {
	screen.EnableMouse()
	screen.HideCursor()
	return &frontend{
		screen: screen,
		view:   view.New(),
		logger: logger,
	}
}

func (f *frontend) Render(event domain.Event) error {
	if err := f.view.Apply(event); err != nil {
		return errors.WithMessage(err, "apply event to view")
	}
	f.draw()
	return nil
}

func (f *frontend) Serve(ctx context.Context, hub domain.HubUseCase) error {
	events := make(chan tcell.Event)
	quit := make(chan struct{})
	defer close(quit)
	go f.screen.ChannelEvents(events, quit)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			stop, err := f.handleEvent(ctx, hub, ev)
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}
	}
}

func (f *frontend) handleEvent(ctx context.Context, hub domain.HubUseCase, ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		f.screen.Sync()
		f.draw()
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
			return true, nil
		}
		if f.finished() {
			return true, nil
		}
		switch ev.Key() {
		case tcell.KeyUp:
			f.moveSelection(-1, 0)
		case tcell.KeyDown:
			f.moveSelection(1, 0)
		case tcell.KeyLeft:
			f.moveSelection(0, -1)
		case tcell.KeyRight:
			f.moveSelection(0, 1)
		case tcell.KeyEnter:
			return false, f.activate(ctx, hub, f.selection())
		case tcell.KeyRune:
			if ev.Rune() == ' ' {
				return false, f.activate(ctx, hub, f.selection())
			}
		}
	case *tcell.EventMouse:
		pressed := ev.Buttons()&tcell.Button1 != 0 && f.buttons&tcell.Button1 == 0
		f.buttons = ev.Buttons()
		if !pressed || f.finished() {
			return false, nil
		}
		x, y := ev.Position()
		coord, ok := f.cellAt(x, y)
		if !ok {
			return false, nil
		}
		f.setSelection(coord)
		return false, f.activate(ctx, hub, coord)
	}
	return false, nil
}

func (f *frontend) activate(ctx context.Context, hub domain.HubUseCase, c domain.Coord) error {
	err := hub.Activate(ctx, c)
	switch {
	case errors.Is(err, domain.ErrInvalidCoordinate), errors.Is(err, domain.ErrGameAlreadyEnded):
		f.logger.Debug("activation ignored", zap.Error(err))
		return nil
	case errors.Is(err, context.Canceled):
		return nil
	case err != nil:
		return errors.WithMessage(err, "activate cell")
	}
	return nil
}

// cellAt maps screen coordinates to the board cell drawn there.
func (f *frontend) cellAt(x int, y int) (domain.Coord, bool) {
	if x < boardLeft || y < boardTop {
		return domain.Coord{}, false
	}
	coord := domain.Coord{Row: y - boardTop, Col: (x - boardLeft) / cellWidth}
	var rows, cols int
	f.view.Read(func(v *view.View) {
		rows, cols = v.Rows, v.Cols
	})
	return coord, coord.Row < rows && coord.Col < cols
}

func (f *frontend) finished() bool {
	var finished bool
	f.view.Read(func(v *view.View) {
		finished = v.Finished
	})
	return finished
}

func (f *frontend) selection() domain.Coord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return domain.Coord{Row: f.selRow, Col: f.selCol}
}

func (f *frontend) setSelection(c domain.Coord) {
	f.mu.Lock()
	f.selRow, f.selCol = c.Row, c.Col
	f.mu.Unlock()
	f.draw()
}

func (f *frontend) moveSelection(dr int, dc int) {
	var rows, cols int
	f.view.Read(func(v *view.View) {
		rows, cols = v.Rows, v.Cols
	})
	f.mu.Lock()
	if r := f.selRow + dr; r >= 0 && r < rows {
		f.selRow = r
	}
	if c := f.selCol + dc; c >= 0 && c < cols {
		f.selCol = c
	}
	f.mu.Unlock()
	f.draw()
}

func (f *frontend) draw() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.screen.SetStyle(backgroundStyle)
	f.screen.Clear()
	status := f.view.Status()
	f.view.Read(func(v *view.View) {
		statusStyle := backgroundStyle.Bold(true)
		if !v.Finished {
			statusStyle = statusStyle.Foreground(tcell.GetColor(v.Players[v.CurrentPlayer].Color))
		}
		drawText(f.screen, boardLeft, 0, statusStyle, status)
		for r, row := range v.Cells {
			for c, cell := range row {
				label, style := cellLook(cell, v.Players)
				if !v.Finished && r == f.selRow && c == f.selCol {
					style = style.Reverse(true)
				}
				drawText(f.screen, boardLeft+c*cellWidth, boardTop+r, style, label)
			}
		}
		hint := hintText
		if v.Finished {
			hint = "press any key to exit"
		}
		drawText(f.screen, boardLeft, boardTop+v.Rows+1, backgroundStyle, hint)
	})
	f.screen.Show()
}

func cellLook(cell view.Cell, players [2]domain.Player) (string, tcell.Style) {
	switch {
	case !cell.Revealed:
		return "    ", hiddenStyle
	case cell.Kind == domain.Mine:
		style := tcell.StyleDefault.Background(tcell.GetColor(players[cell.Owner].Color)).
			Foreground(tcell.ColorWhite).Bold(true)
		return " ** ", style
	default:
		return fmt.Sprintf(" %d  ", cell.Count), clearStyle
	}
}

func drawText(screen tcell.Screen, x int, y int, style tcell.Style, text string) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}
