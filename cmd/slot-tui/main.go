// cmd/slot-tui/main.go
//
// Terminal host: plays one engine in the current terminal.
//
//	slot-tui [word]
//
// Logs go to SLOT_TUI_LOG (default ./data/slot-tui.log) since the screen owns stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/robalobadob/resetslot/internal/config"
	"github.com/robalobadob/resetslot/internal/game"
	"github.com/robalobadob/resetslot/internal/tui"
	"github.com/robalobadob/resetslot/internal/words"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "slot-tui: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, closeLog, err := openLog(config.Getenv("SLOT_TUI_LOG", "./data/slot-tui.log"), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := words.Init(); err != nil {
		logger.Warn().Err(err).Msg("word list unavailable, using default word")
	}

	eng := game.New(cfg.Game.Settings, game.WithCompletion(func(s game.Snapshot) {
		logger.Info().
			Str("word", s.Word).
			Int("lives", s.Lives).
			Int("wrong", s.WrongAttempts).
			Uint64("playthrough", s.Playthrough).
			Msg("playthrough complete")
	}))

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.HideCursor()

	app := tui.New(screen, eng, cfg.Game, tui.WithLogger(logger))
	if err := app.Start(strings.Join(os.Args[1:], ""), time.Now()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func openLog(path, level string) (zerolog.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), func() {}, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), func() {}, err
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	l := zerolog.New(f).Level(lvl).With().Timestamp().Str("host", "tui").Logger()
	return l, func() { _ = f.Close() }, nil
}
