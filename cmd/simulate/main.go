package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"github.com/fadedpez/nothanks/internal/app"
	"github.com/fadedpez/nothanks/internal/config"
	"github.com/fadedpez/nothanks/pkg/players"
	"github.com/fadedpez/nothanks/pkg/services/statistics"
	"github.com/fadedpez/nothanks/pkg/services/tournament"
)

func main() {
	if err := run(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	games := flag.Int("games", cfg.SimGames, "Number of games to play")
	seed := flag.Int64("seed", cfg.SimSeed, "Seed for the first game's shuffle")
	workers := flag.Int("workers", cfg.SimWorkers, "Games played in parallel")
	strategies := flag.String("strategies", strings.Join(cfg.SimStrategies, ","), "Comma separated strategy per seat")
	list := flag.Bool("list", false, "List available strategies and exit")
	flag.Parse()

	registry := players.DefaultRegistry()
	if *list {
		for _, name := range registry.Names() {
			pterm.Println(name)
		}
		return nil
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

	opts := tournament.Options{
		Strategies: splitStrategies(*strategies),
		Games:      *games,
		Seed:       *seed,
		Workers:    *workers,
		TableID:    "simulation",
	}

	spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Playing %d games with %d workers...", opts.Games, opts.Workers))
	runner := tournament.NewRunner(registry, repo, statistics.NewService(repo), pub)
	summary, err := runner.Run(ctx, opts)
	if err != nil {
		if spinner != nil {
			spinner.Fail(err.Error())
		}
		return err
	}
	if spinner != nil {
		spinner.Success(fmt.Sprintf("Played %d games in %s", summary.Games, summary.Elapsed))
	}

	return printSummary(summary)
}

func printSummary(summary *tournament.Summary) error {
	data := pterm.TableData{{"Player", "Strategy", "Games", "Wins", "Win %", "Mean score"}}
	for _, p := range summary.Players {
		winRate := 0.0
		if p.Games > 0 {
			winRate = float64(p.Wins) / float64(p.Games) * 100
		}
		data = append(data, []string{
			p.PlayerID,
			p.Strategy,
			fmt.Sprintf("%d", p.Games),
			fmt.Sprintf("%d", p.Wins),
			fmt.Sprintf("%.1f", winRate),
			fmt.Sprintf("%.2f", p.MeanScore()),
		})
	}

	pterm.Println()
	return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Render()
}

func splitStrategies(value string) []string {
	var names []string
	for _, name := range strings.Split(value, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
