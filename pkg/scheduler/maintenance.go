package scheduler

import (
	"context"
	"time"

	"github.com/fadedpez/nothanks/internal/logging"
	"github.com/fadedpez/nothanks/pkg/repositories/game"
	"github.com/fadedpez/nothanks/pkg/storage"
)

// MaintenanceOptions controls the housekeeping intervals
type MaintenanceOptions struct {
	// GameMaxAge is how long an untouched table survives
	GameMaxAge      time.Duration
	CleanupInterval time.Duration
	// MaxMatchesPerPlayer caps stored history per player; zero disables pruning
	MaxMatchesPerPlayer int
	PruneInterval       time.Duration
}

// DefaultMaintenanceOptions returns hourly table cleanup and daily pruning to 100 games
func DefaultMaintenanceOptions() MaintenanceOptions {
	return MaintenanceOptions{
		GameMaxAge:          24 * time.Hour,
		CleanupInterval:     time.Hour,
		MaxMatchesPerPlayer: 100,
		PruneInterval:       24 * time.Hour,
	}
}

// MaintenanceScheduler expires abandoned tables and trims stored results
type MaintenanceScheduler struct {
	scheduler *Scheduler
	storage   storage.Storage
	repo      game.Repository
	opts      MaintenanceOptions
}

// NewMaintenanceScheduler creates a scheduler for the bot's housekeeping tasks
func NewMaintenanceScheduler(store storage.Storage, repo game.Repository, opts MaintenanceOptions) *MaintenanceScheduler {
	defaults := DefaultMaintenanceOptions()
	if opts.GameMaxAge <= 0 {
		opts.GameMaxAge = defaults.GameMaxAge
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = max(opts.GameMaxAge/4, time.Minute)
	}
	if opts.PruneInterval <= 0 {
		opts.PruneInterval = defaults.PruneInterval
	}

	return &MaintenanceScheduler{
		scheduler: NewScheduler(),
		storage:   store,
		repo:      repo,
		opts:      opts,
	}
}

// Start registers the tasks and starts the scheduler
func (s *MaintenanceScheduler) Start(ctx context.Context) {
	if s.storage != nil {
		s.scheduler.AddTask("game_cleanup", s.opts.CleanupInterval, s.cleanupGames)
	}
	if s.repo != nil && s.opts.MaxMatchesPerPlayer > 0 {
		s.scheduler.AddTask("result_pruning", s.opts.PruneInterval, s.pruneResults)
	}

	s.scheduler.Start(ctx)
}

// Stop stops the maintenance scheduler
func (s *MaintenanceScheduler) Stop() {
	s.scheduler.Stop()
}

func (s *MaintenanceScheduler) cleanupGames(ctx context.Context) error {
	return s.storage.CleanupOldGames(ctx, s.opts.GameMaxAge)
}

func (s *MaintenanceScheduler) pruneResults(ctx context.Context) error {
	logging.Default.Debug("Pruning results to %d games per player", s.opts.MaxMatchesPerPlayer)
	return s.repo.PruneGameResultsPerPlayer(ctx, s.opts.MaxMatchesPerPlayer)
}
