package config

import (
	"os"

	"github.com/kiryu-dev/minesweeper-duel/internal/domain"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrNotEnoughPlayers = errors.New("exactly two players must be specified")
	ErrUnknownRenderer  = errors.New("unknown renderer")
)

const (
	DefaultRows         = 8
	DefaultColumns      = 7
	DefaultMines        = 15
	DefaultWinThreshold = 8

	RendererTUI   = "tui"
	RendererText  = "text"
	RendererJSONL = "jsonl"

	playerCount = 2
)

type BoardConfig struct {
	Rows    int `yaml:"rows"`
	Columns int `yaml:"columns"`
	Mines   int `yaml:"mines"`
}

type PlayerConfig struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
}

type LogConfig struct {
	Level       string   `yaml:"level"`
	OutputPaths []string `yaml:"output_paths"`
}

type Config struct {
	Board        BoardConfig    `yaml:"board"`
	WinThreshold int            `yaml:"win_threshold"`
	Seed         uint64         `yaml:"seed"`
	Renderer     string         `yaml:"renderer"`
	Players      []PlayerConfig `yaml:"players"`
	Log          LogConfig      `yaml:"log"`
}

func Default() Config {
	return Config{
		Board: BoardConfig{
			Rows:    DefaultRows,
			Columns: DefaultColumns,
			Mines:   DefaultMines,
		},
		WinThreshold: DefaultWinThreshold,
		Renderer:     RendererTUI,
		Players: []PlayerConfig{
			{Name: "Player 1", Color: "#E74C3C"},
			{Name: "Player 2", Color: "#3498DB"},
		},
		Log: LogConfig{
			Level:       "info",
			OutputPaths: []string{"minesweeper.log"},
		},
	}
}

// New reads the YAML file at cfgPath on top of the defaults. An empty path
// yields the defaults.
func New(cfgPath string) (Config, error) {
	cfg := Default()
	if cfgPath == "" {
		return cfg, nil
	}
	file, err := os.Open(cfgPath)
	if err != nil {
		return Config{}, errors.WithMessage(err, "open config file")
	}
	defer func() {
		_ = file.Close()
	}()
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return Config{}, errors.WithMessage(err, "decode yaml config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load behaves like New but falls back to the defaults when no file exists
// at cfgPath.
func Load(cfgPath string) (Config, error) {
	cfg, err := New(cfgPath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func (c Config) Validate() error {
	if err := domain.ValidateBoard(c.Board.Rows, c.Board.Columns, c.Board.Mines); err != nil {
		return errors.WithMessage(err, "board")
	}
	if err := (domain.Rules{WinThreshold: c.WinThreshold}).Validate(); err != nil {
		return err
	}
	if len(c.Players) != playerCount {
		return errors.WithMessagef(ErrNotEnoughPlayers, "got %d", len(c.Players))
	}
	switch c.Renderer {
	case RendererTUI, RendererText, RendererJSONL:
	default:
		return errors.WithMessagef(ErrUnknownRenderer, "'%s'", c.Renderer)
	}
	return nil
}
