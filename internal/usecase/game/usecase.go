package game

import (
	"sync"

	"github.com/google/uuid"
	"github.com/kiryu-dev/minesweeper-duel/internal/domain"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type coordSet map[domain.Coord]struct{}

type useCase struct {
	uuid       string
	board      domain.Board
	rules      domain.Rules
	players    [2]domain.Player
	current    int
	revealed   coordSet
	minesFound [2]coordSet
	status     domain.Status
	result     *domain.Result
	finished   *atomic.Bool
	mu         *sync.Mutex
	logger     *zap.Logger
}

func New(board domain.Board, players []domain.Player, rules domain.Rules, logger *zap.Logger) (*useCase, error) {
	if len(players) != 2 {
		return nil, errors.WithMessagef(errNotEnoughPlayers, "got %d", len(players))
	}
	if err := rules.Validate(); err != nil {
		return nil, errors.WithMessage(err, "validate rules")
	}
	if err := domain.ValidateBoard(board.Rows, board.Cols, board.MineCount()); err != nil {
		return nil, errors.WithMessage(err, "validate board")
	}
	gameUuid := uuid.NewString()
	u := &useCase{
		uuid:       gameUuid,
		board:      board,
		rules:      rules,
		players:    [2]domain.Player{players[0], players[1]},
		revealed:   make(coordSet),
		minesFound: [2]coordSet{make(coordSet), make(coordSet)},
		status:     domain.InProgress,
		finished:   atomic.NewBool(false),
		mu:         &sync.Mutex{},
		logger:     logger.With(zap.String("game", gameUuid)),
	}
	for i := range u.players {
		u.players[i].Score = 0
	}
	return u, nil
}

func (u *useCase) Uuid() string {
	return u.uuid
}

func (u *useCase) IsFinished() bool {
	return u.finished.Load()
}

func (u *useCase) Start() domain.Event {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.logger.Info("game started",
		zap.Int("rows", u.board.Rows),
		zap.Int("cols", u.board.Cols),
		zap.Int("mines", u.board.MineCount()),
		zap.Int("win threshold", u.rules.WinThreshold))
	return domain.Event{
		Type: domain.GameStarted,
		Payload: domain.GameStartedPayload{
			Uuid:          u.uuid,
			Rows:          u.board.Rows,
			Cols:          u.board.Cols,
			TotalMines:    u.board.MineCount(),
			WinThreshold:  u.rules.WinThreshold,
			Players:       u.players,
			CurrentPlayer: u.current,
		},
	}
}

// Activate reveals c on behalf of the current player and returns the events
// produced, in order. Activating an already revealed cell is a no-op.
func (u *useCase) Activate(c domain.Coord) ([]domain.Event, error) {
	if u.finished.Load() {
		return nil, domain.ErrGameAlreadyEnded
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.status == domain.Finished {
		return nil, domain.ErrGameAlreadyEnded
	}
	if !u.board.Contains(c) {
		return nil, errors.WithMessagef(domain.ErrInvalidCoordinate,
			"(%d, %d) is outside %dx%d", c.Row, c.Col, u.board.Rows, u.board.Cols)
	}
	if _, ok := u.revealed[c]; ok {
		return nil, nil
	}
	player := u.current
	events := u.reveal(c, player)
	if u.status == domain.Finished {
		return events, nil
	}
	if u.minesFoundTotal() == u.board.MineCount() {
		return append(events, u.finish(u.compareScores())), nil
	}
	if u.board.At(c).Kind == domain.Clear {
		u.current = domain.Other(player)
		u.logger.Info("turn passed", zap.String("player", u.players[u.current].Name))
		events = append(events, domain.Event{
			Type:    domain.TurnChanged,
			Payload: domain.TurnChangedPayload{Player: u.current},
		})
	}
	return events, nil
}

// reveal walks the cascade starting at start with an explicit stack; the
// revealed set guarantees each cell is processed once.
func (u *useCase) reveal(start domain.Coord, player int) []domain.Event {
	var (
		events []domain.Event
		stack  = []domain.Coord{start}
	)
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := u.revealed[c]; ok {
			continue
		}
		u.revealed[c] = struct{}{}
		cell := u.board.At(c)
		if cell.Kind == domain.Mine {
			events = append(events, u.scoreMine(c, player)...)
			if u.players[player].Score >= u.rules.WinThreshold {
				return append(events, u.finish(domain.WinResult(player)))
			}
			continue
		}
		u.logger.Debug("cell revealed",
			zap.Int("row", c.Row), zap.Int("col", c.Col), zap.Int("count", cell.Count))
		events = append(events, domain.Event{
			Type: domain.CellRevealed,
			Payload: domain.CellRevealedPayload{
				Coord: c,
				Kind:  domain.Clear,
				Count: cell.Count,
			},
		})
		if cell.Count != 0 {
			continue
		}
		for _, n := range u.board.Neighbors(c) {
			if _, ok := u.revealed[n]; !ok {
				stack = append(stack, n)
			}
		}
	}
	return events
}

func (u *useCase) scoreMine(c domain.Coord, player int) []domain.Event {
	u.players[player].Score++
	u.minesFound[player][c] = struct{}{}
	u.logger.Info("mine found",
		zap.String("player", u.players[player].Name),
		zap.Int("row", c.Row),
		zap.Int("col", c.Col),
		zap.Int("score", u.players[player].Score))
	owner := player
	return []domain.Event{
		{
			Type: domain.CellRevealed,
			Payload: domain.CellRevealedPayload{
				Coord: c,
				Kind:  domain.Mine,
				Owner: &owner,
			},
		},
		{
			Type: domain.ScoreChanged,
			Payload: domain.ScoreChangedPayload{
				Player: player,
				Score:  u.players[player].Score,
			},
		},
	}
}

func (u *useCase) minesFoundTotal() int {
	return len(u.minesFound[0]) + len(u.minesFound[1])
}

func (u *useCase) compareScores() domain.Result {
	lhs, rhs := u.players[0].Score, u.players[1].Score
	switch {
	case lhs > rhs:
		return domain.WinResult(0)
	case rhs > lhs:
		return domain.WinResult(1)
	default:
		return domain.TieResult()
	}
}

func (u *useCase) finish(result domain.Result) domain.Event {
	u.status = domain.Finished
	u.result = &result
	u.finished.Store(true)
	msg := result.Describe(u.players)
	u.logger.Info("game over",
		zap.String("result", msg),
		zap.Int("score 1", u.players[0].Score),
		zap.Int("score 2", u.players[1].Score))
	return domain.Event{
		Type: domain.GameEnded,
		Payload: domain.GameEndedPayload{
			Result:  result,
			Message: msg,
		},
	}
}

func (u *useCase) Snapshot() domain.GameState {
	u.mu.Lock()
	defer u.mu.Unlock()
	cells := make([][]domain.CellView, u.board.Rows)
	for r := range cells {
		cells[r] = make([]domain.CellView, u.board.Cols)
		for c := range cells[r] {
			coord := domain.Coord{Row: r, Col: c}
			view := domain.CellView{Owner: -1}
			if _, ok := u.revealed[coord]; ok {
				cell := u.board.At(coord)
				view.Revealed = true
				view.Kind = cell.Kind
				view.Count = cell.Count
				for i, found := range u.minesFound {
					if _, ok := found[coord]; ok {
						view.Owner = i
					}
				}
			}
			cells[r][c] = view
		}
	}
	state := domain.GameState{
		Uuid:          u.uuid,
		Rows:          u.board.Rows,
		Cols:          u.board.Cols,
		TotalMines:    u.board.MineCount(),
		Cells:         cells,
		Players:       u.players,
		CurrentPlayer: u.current,
		Status:        u.status,
	}
	if u.result != nil {
		result := *u.result
		state.Result = &result
	}
	return state
}
