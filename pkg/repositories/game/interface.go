package game

import (
	"context"

	"github.com/fadedpez/nothanks/pkg/entities"
)

//go:generate mockgen -source=$GOFILE -destination=mock/mock.go -package=mock_game

// Repository defines storage operations for finished games and player statistics
type Repository interface {
	// Game results
	SaveGameResult(ctx context.Context, result *entities.GameResult) error
	// GetPlayerResults returns every stored game the player sat in, newest first
	GetPlayerResults(ctx context.Context, playerID string) ([]*entities.GameResult, error)
	// GetChannelResults returns at most limit games played in the channel, newest first
	GetChannelResults(ctx context.Context, channelID string, limit int) ([]*entities.GameResult, error)
	// PruneGameResultsPerPlayer keeps only each player's newest results
	PruneGameResultsPerPlayer(ctx context.Context, maxMatchesPerPlayer int) error

	// Player statistics
	// GetPlayerStatistics returns empty statistics at the initial rating for unknown players
	GetPlayerStatistics(ctx context.Context, playerID string, gameType entities.GameType) (*entities.PlayerStatistics, error)
	GetAllPlayerStatistics(ctx context.Context, gameType entities.GameType) ([]*entities.PlayerStatistics, error)
	SavePlayerStatistics(ctx context.Context, stats *entities.PlayerStatistics) error

	// Close closes any resources used by the repository
	Close() error
}
