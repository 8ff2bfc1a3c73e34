package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/fadedpez/nothanks/internal/app"
	"github.com/fadedpez/nothanks/internal/bot"
	"github.com/fadedpez/nothanks/internal/config"
	"github.com/fadedpez/nothanks/internal/discord"
	"github.com/fadedpez/nothanks/internal/games"
	"github.com/fadedpez/nothanks/internal/logging"
	"github.com/fadedpez/nothanks/pkg/games/nothanks"
	"github.com/fadedpez/nothanks/pkg/players"
	"github.com/fadedpez/nothanks/pkg/scheduler"
	"github.com/fadedpez/nothanks/pkg/services/statistics"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := cfg.ValidateDiscord(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := app.SetupLogging(cfg)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := app.OpenRepository(ctx, cfg)
	if err != nil {
		return fmt.Errorf("error opening repository: %w", err)
	}
	defer repo.Close()

	pub, err := app.OpenPublisher(cfg)
	if err != nil {
		return fmt.Errorf("error connecting publisher: %w", err)
	}
	defer pub.Close()

	store, err := app.OpenStorage(cfg)
	if err != nil {
		return fmt.Errorf("error opening table storage: %w", err)
	}
	defer store.Close()

	stats := statistics.NewService(repo)
	registry := games.NewRegistry()
	if err := registry.RegisterGame(nothanks.Name, nothanks.NewFactory(store, repo, stats, pub, players.DefaultRegistry())); err != nil {
		return fmt.Errorf("error registering game: %w", err)
	}

	session, err := discord.NewSession(cfg.Token)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	b, err := bot.New(cfg, session, registry)
	if err != nil {
		return fmt.Errorf("error creating bot: %w", err)
	}
	if err := b.Start(); err != nil {
		return fmt.Errorf("error starting bot: %w", err)
	}

	opts := scheduler.DefaultMaintenanceOptions()
	opts.GameMaxAge = cfg.GameMaxAge
	opts.CleanupInterval = 0
	opts.MaxMatchesPerPlayer = cfg.MaxMatchesPerPlayer
	maintenance := scheduler.NewMaintenanceScheduler(store, repo, opts)
	maintenance.Start(ctx)

	logging.Default.Info("Bot is running. Press Ctrl+C to exit")
	<-ctx.Done()

	logging.Default.Info("Shutting down...")
	maintenance.Stop()
	b.Shutdown()
	return nil
}
