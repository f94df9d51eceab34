package domain

type EventType byte

const (
	GameStarted = EventType(iota)
	CellRevealed
	TurnChanged
	ScoreChanged
	GameEnded
)

func (t EventType) String() string {
	switch t {
	case GameStarted:
		return "game_started"
	case CellRevealed:
		return "cell_revealed"
	case TurnChanged:
		return "turn_changed"
	case ScoreChanged:
		return "score_changed"
	case GameEnded:
		return "game_ended"
	default:
		return "unknown"
	}
}

func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

type GameStartedPayload struct {
	Uuid          string    `json:"uuid"`
	Rows          int       `json:"rows"`
	Cols          int       `json:"cols"`
	TotalMines    int       `json:"total_mines"`
	WinThreshold  int       `json:"win_threshold"`
	Players       [2]Player `json:"players"`
	CurrentPlayer int       `json:"current_player"`
}

type CellRevealedPayload struct {
	Coord Coord `json:"coord"`
	Kind  Kind  `json:"kind"`
	Count int   `json:"count"`
	// Owner is set only for mines.
	Owner *int `json:"owner,omitempty"`
}

type TurnChangedPayload struct {
	Player int `json:"player"`
}

type ScoreChangedPayload struct {
	Player int `json:"player"`
	Score  int `json:"score"`
}

type GameEndedPayload struct {
	Result  Result `json:"result"`
	Message string `json:"message"`
}
