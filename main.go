package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/resetslot/internal/config"
	"github.com/robalobadob/resetslot/internal/httpserver"
	"github.com/robalobadob/resetslot/internal/receipt"
	"github.com/robalobadob/resetslot/internal/store"
	"github.com/robalobadob/resetslot/internal/words"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatal().Err(err).Msg("failed to read .env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}

	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer db.Close()
	if err := store.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	receipts, err := receipt.NewIssuer(cfg.ReceiptSecret, cfg.ReceiptTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("receipt issuer")
	}
	if cfg.ReceiptSecret == "dev_secret_change_me" {
		log.Warn().Msg("RECEIPT_SECRET is the development default")
	}

	srv := httpserver.New(httpserver.Deps{
		Sessions:     store.NewMemoryStore(),
		Completions:  store.NewCompletionStore(db),
		Receipts:     receipts,
		Game:         cfg.Game,
		ClientOrigin: cfg.ClientOrigin,
		DailySalt:    cfg.DailySalt,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go srv.SweepSessions(ctx, cfg.SessionTTL, time.Minute)

	log.Info().
		Str("port", cfg.Port).
		Int("words", words.Count()).
		Str("default_word", cfg.Game.DefaultWord).
		Msg("starting resetslot server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
