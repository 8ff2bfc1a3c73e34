// Package app turns configuration into the wired components the binaries share
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fadedpez/nothanks/internal/config"
	"github.com/fadedpez/nothanks/internal/logging"
	"github.com/fadedpez/nothanks/pkg/publisher"
	"github.com/fadedpez/nothanks/pkg/repositories/game"
	"github.com/fadedpez/nothanks/pkg/storage"
	"github.com/fadedpez/nothanks/pkg/storage/file"
)

// SetupLogging installs the default logger at the configured level
func SetupLogging(cfg *config.Config) *logging.Logger {
	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel))
	logging.SetDefault(logger)
	return logger
}

// OpenRepository opens the results repository selected by STORAGE_TYPE. When
// Elasticsearch is configured every write is mirrored there as well.
func OpenRepository(ctx context.Context, cfg *config.Config) (game.Repository, error) {
	var repo game.Repository
	switch cfg.StorageType {
	case config.StorageMemory:
		logging.Default.Warn("Using in-memory repository, results will be lost on restart")
		repo = game.NewMemoryRepository()
	case config.StorageSQLite:
		logging.Default.Info("Opening SQLite repository at %s", cfg.SQLitePath)
		r, err := game.NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite repository: %w", err)
		}
		repo = r
	case config.StoragePostgres:
		r, err := game.NewPostgresRepository(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open Postgres repository: %w", err)
		}
		repo = r
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.StorageType)
	}

	if !cfg.ElasticsearchEnabled() {
		return repo, nil
	}

	esRepo, err := game.NewElasticsearchRepository(repo, &game.ElasticsearchConfig{
		URL:         cfg.ElasticsearchURL,
		Username:    cfg.ElasticsearchUsername,
		Password:    cfg.ElasticsearchPassword,
		IndexPrefix: cfg.ElasticsearchPrefix,
	})
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	logging.Default.Info("Indexing results in Elasticsearch at %s", cfg.ElasticsearchURL)
	return esRepo, nil
}

// OpenPublisher connects to the AMQP broker, or returns a publisher that
// drops every result when AMQP_URL is unset
func OpenPublisher(cfg *config.Config) (publisher.Publisher, error) {
	if !cfg.AMQPEnabled() {
		return publisher.NewNop(), nil
	}
	return publisher.NewAMQPPublisher(publisher.AMQPConfig{
		URL:      cfg.AMQPURL,
		Username: cfg.AMQPUsername,
		Password: cfg.AMQPPassword,
		Address:  cfg.AMQPAddress,
		Timeout:  cfg.PublishTimeout,
	})
}

// OpenStorage opens the table snapshot file in the data directory
func OpenStorage(cfg *config.Config) (storage.Storage, error) {
	return file.New(&storage.Options{
		Path:       filepath.Join(cfg.DataDir, "games.json"),
		MaxGameAge: cfg.GameMaxAge,
	})
}
