package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/kiryu-dev/minesweeper-duel/internal/config"
	"github.com/kiryu-dev/minesweeper-duel/internal/domain"
	"github.com/kiryu-dev/minesweeper-duel/internal/transport/jsonl"
	"github.com/kiryu-dev/minesweeper-duel/internal/transport/text"
	"github.com/kiryu-dev/minesweeper-duel/internal/transport/tui"
	"github.com/kiryu-dev/minesweeper-duel/internal/usecase/board"
	"github.com/kiryu-dev/minesweeper-duel/internal/usecase/game"
	"github.com/kiryu-dev/minesweeper-duel/internal/usecase/hub"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultConfigPath = "./config.yml"

func main() {
	cfgPath := flag.String("config", defaultConfigPath, "path to config")
	seed := flag.Uint64("seed", 0, "board seed, overrides config")
	renderer := flag.String("renderer", "", "tui, text or jsonl, overrides config")
	ansi := flag.Bool("ansi", true, "use ANSI colors in the text renderer")
	flag.Parse()
	cfg, err := loadConfig(*cfgPath, *seed, *renderer)
	if err != nil {
		bootstrap, _ := zap.NewProduction()
		bootstrap.Fatal(err.Error())
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	if err := run(cfg, *ansi, logger); err != nil {
		logger.Info("game stopped: " + err.Error())
	}
}

func loadConfig(path string, seed uint64, renderer string) (config.Config, error) {
	load := config.New
	if path == defaultConfigPath {
		load = config.Load
	}
	cfg, err := load(path)
	if err != nil {
		return config.Config{}, errors.WithMessage(err, "load config")
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if renderer != "" {
		cfg.Renderer = renderer
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, errors.WithMessage(err, "validate config")
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, errors.WithMessage(err, "parse log level")
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = level
	zapCfg.OutputPaths = cfg.OutputPaths
	zapCfg.ErrorOutputPaths = cfg.OutputPaths
	return zapCfg.Build()
}

func run(cfg config.Config, ansi bool, logger *zap.Logger) error {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	logger.Info("generating board", zap.Uint64("seed", seed))
	b, err := board.NewSeeded(seed).Generate(cfg.Board.Rows, cfg.Board.Columns, cfg.Board.Mines)
	if err != nil {
		return errors.WithMessage(err, "generate board")
	}
	players := make([]domain.Player, 0, len(cfg.Players))
	for _, p := range cfg.Players {
		players = append(players, domain.NewPlayer(p.Name, p.Color))
	}
	game, err := game.New(b, players, domain.Rules{WinThreshold: cfg.WinThreshold}, logger)
	if err != nil {
		return errors.WithMessage(err, "create game")
	}
	frontend, cleanup, err := newFrontend(cfg.Renderer, ansi, logger)
	if err != nil {
		return errors.WithMessage(err, "create frontend")
	}
	defer cleanup()
	hub := hub.New(game, logger)
	hub.Subscribe(frontend)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errGroup, ctx := errgroup.WithContext(ctx)
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	errGroup.Go(func() error {
		select {
		case s := <-sigChan:
			return errors.Errorf("captured signal: %v", s)
		case <-ctx.Done():
			return nil
		}
	})
	errGroup.Go(func() error {
		return hub.Run(ctx)
	})
	errGroup.Go(func() error {
		defer cancel()
		return frontend.Serve(ctx, hub)
	})
	return errGroup.Wait()
}

func newFrontend(renderer string, ansi bool, logger *zap.Logger) (domain.Frontend, func(), error) {
	switch renderer {
	case config.RendererText:
		return text.New(os.Stdin, os.Stdout, ansi, logger), func() {}, nil
	case config.RendererJSONL:
		return jsonl.New(os.Stdin, os.Stdout, logger), func() {}, nil
	case config.RendererTUI:
		screen, err := tcell.NewScreen()
		if err != nil {
			return nil, nil, errors.WithMessage(err, "new screen")
		}
		if err := screen.Init(); err != nil {
			return nil, nil, errors.WithMessage(err, "init screen")
		}
		return tui.New(screen, logger), screen.Fini, nil
	default:
		return nil, nil, errors.WithMessagef(config.ErrUnknownRenderer, "'%s'", renderer)
	}
}
