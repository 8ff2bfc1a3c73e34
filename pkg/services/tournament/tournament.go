// Package tournament plays many bot-only games of No Thanks in parallel and
// feeds every result through storage, statistics and the publisher.
package tournament

import (
	"cmp"
	"context"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fadedpez/nothanks/internal/logging"
	"github.com/fadedpez/nothanks/internal/types"
	"github.com/fadedpez/nothanks/pkg/entities"
	"github.com/fadedpez/nothanks/pkg/players"
	"github.com/fadedpez/nothanks/pkg/publisher"
	"github.com/fadedpez/nothanks/pkg/repositories/game"
	"github.com/fadedpez/nothanks/pkg/services/nothanks"
	"github.com/fadedpez/nothanks/pkg/services/statistics"
)

// Options configures a run
type Options struct {
	// Strategies names one bot per seat; a name may repeat
	Strategies []string
	Games      int
	Seed       int64
	Workers    int
	// TableID is recorded as the channel of every game
	TableID string
}

// PlayerSummary aggregates one bot's games in a run
type PlayerSummary struct {
	PlayerID   string
	Strategy   string
	Games      int
	Wins       int
	TotalScore int
}

// MeanScore is the average final score; lower is better
func (p *PlayerSummary) MeanScore() float64 {
	if p.Games == 0 {
		return 0
	}
	return float64(p.TotalScore) / float64(p.Games)
}

// Summary is the outcome of a run, players ordered by wins then mean score
type Summary struct {
	Games   int
	Players []*PlayerSummary
	Elapsed time.Duration
}

// Runner plays tournaments
type Runner struct {
	registry   *players.Registry
	repository game.Repository
	stats      *statistics.Service
	publisher  publisher.Publisher
}

// NewRunner creates a runner. A nil publisher discards results.
func NewRunner(registry *players.Registry, repository game.Repository, stats *statistics.Service, pub publisher.Publisher) *Runner {
	if pub == nil {
		pub = publisher.NewNop()
	}
	return &Runner{
		registry:   registry,
		repository: repository,
		stats:      stats,
		publisher:  pub,
	}
}

// seat is one entry of Options.Strategies with its stable player ID
type seat struct {
	id       string
	strategy string
}

// Run plays opts.Games games. Seating rotates by one place each game and game
// i shuffles with seed opts.Seed+i, so a run is reproducible for a given seed
// regardless of worker count. Cancelling ctx stops new games from starting.
func (r *Runner) Run(ctx context.Context, opts Options) (*Summary, error) {
	if err := r.validate(opts); err != nil {
		return nil, err
	}
	workers := max(opts.Workers, 1)

	seats := seatsFor(opts.Strategies)
	totals := make(map[string]*PlayerSummary, len(seats))
	for _, s := range seats {
		totals[s.id] = &PlayerSummary{PlayerID: s.id, Strategy: s.strategy}
	}

	var (
		mu     sync.Mutex
		played int
	)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range opts.Games {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			result, err := r.playGame(opts, seats, i)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			if err := r.persist(gctx, result); err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}

			mu.Lock()
			defer mu.Unlock()
			played++
			for _, pr := range result.PlayerResults {
				t := totals[pr.PlayerID]
				t.Games++
				t.TotalScore += pr.Score
				if pr.Result.IsWin() {
					t.Wins++
				}
			}
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	summary := &Summary{Games: played, Elapsed: time.Since(start)}
	for _, s := range seats {
		summary.Players = append(summary.Players, totals[s.id])
	}
	slices.SortStableFunc(summary.Players, func(a, b *PlayerSummary) int {
		if c := cmp.Compare(b.Wins, a.Wins); c != 0 {
			return c
		}
		return cmp.Compare(a.MeanScore(), b.MeanScore())
	})

	logging.Default.Info("Tournament finished: %d games in %s", played, summary.Elapsed)
	return summary, err
}

func (r *Runner) validate(opts Options) error {
	n := len(opts.Strategies)
	if n < entities.MinPlayers {
		return types.NewGameError(types.ErrNotEnoughPlayers,
			fmt.Sprintf("A tournament needs at least %d strategies", entities.MinPlayers))
	}
	if n > entities.MaxPlayers {
		return types.NewGameError(types.ErrTooManyPlayers,
			fmt.Sprintf("A tournament takes at most %d strategies", entities.MaxPlayers))
	}
	if opts.Games < 0 {
		return types.NewGameError(types.ErrInvalidArgument, "Number of games cannot be negative")
	}
	for _, name := range opts.Strategies {
		if !r.registry.Has(name) {
			return types.NewGameError(types.ErrStrategyNotFound, fmt.Sprintf("Unknown strategy %q", name))
		}
	}
	return nil
}

// seatsFor gives each strategy entry a player ID, numbering repeats
func seatsFor(strategies []string) []seat {
	counts := make(map[string]int, len(strategies))
	for _, name := range strategies {
		counts[name]++
	}

	seen := make(map[string]int, len(strategies))
	seats := make([]seat, 0, len(strategies))
	for _, name := range strategies {
		id := "bot:" + name
		if counts[name] > 1 {
			seen[name]++
			id = fmt.Sprintf("%s#%d", id, seen[name])
		}
		seats = append(seats, seat{id: id, strategy: name})
	}
	return seats
}

func (r *Runner) playGame(opts Options, seats []seat, i int) (*entities.GameResult, error) {
	rng := rand.New(rand.NewSource(opts.Seed + int64(i)))
	table := nothanks.NewGame(opts.TableID)

	n := len(seats)
	for j := range n {
		s := seats[(i+j)%n]
		p, err := r.registry.New(s.strategy, rng)
		if err != nil {
			return nil, err
		}
		if err := table.AddSeat(s.id, s.strategy, p, s.strategy); err != nil {
			return nil, err
		}
	}

	if err := table.Start(rng); err != nil {
		return nil, err
	}
	if err := table.PlayBots(); err != nil {
		return nil, err
	}
	return table.Result()
}

// persist saves, records and publishes a result, in that order. A failed
// publish is logged and does not stop the run.
func (r *Runner) persist(ctx context.Context, result *entities.GameResult) error {
	if err := r.repository.SaveGameResult(ctx, result); err != nil {
		return types.WrapError(types.ErrDatabaseError, "Failed to save game result", err)
	}
	if err := r.stats.RecordGame(ctx, result); err != nil {
		return types.WrapError(types.ErrDatabaseError, "Failed to record statistics", err)
	}
	if err := r.publisher.Publish(ctx, result); err != nil {
		logging.Default.Warn("Failed to publish game %s: %v", result.ID, err)
	}
	return nil
}
