package statistics

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/fadedpez/nothanks/internal/logging"
	"github.com/fadedpez/nothanks/pkg/entities"
	"github.com/fadedpez/nothanks/pkg/repositories/game"
)

// Service provides methods for recording and ranking player statistics
type Service struct {
	repository game.Repository
	gameType   entities.GameType
	// serializes the read-modify-write of RecordGame
	mu sync.Mutex
}

// NewService creates a new statistics service
func NewService(repository game.Repository) *Service {
	return &Service{
		repository: repository,
		gameType:   entities.GameTypeNoThanks,
	}
}

// PlayerRank represents a player's statistics with ranking information
type PlayerRank struct {
	*entities.PlayerStatistics
	Rank         int     `json:"rank"`
	WinRate      float64 `json:"win_rate"`
	AverageScore float64 `json:"average_score"`
	IsTopWinner  bool    `json:"is_top_winner"`
	IsTopPlayer  bool    `json:"is_top_player"`
}

// Leaderboard represents a paginated leaderboard of player statistics
type Leaderboard struct {
	Players        []*PlayerRank `json:"players"`
	TotalPlayers   int           `json:"total_players"`
	CurrentPage    int           `json:"current_page"`
	TotalPages     int           `json:"total_pages"`
	PlayersPerPage int           `json:"players_per_page"`
	LastUpdated    time.Time     `json:"last_updated"`
}

// RecordGame folds a finished game into every participant's statistics and
// moves their ratings
func (s *Service) RecordGame(ctx context.Context, result *entities.GameResult) error {
	if len(result.PlayerResults) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	at := result.CompletedAt
	if at.IsZero() {
		at = time.Now()
	}

	all := make([]*entities.PlayerStatistics, 0, len(result.PlayerResults))
	ratings := make([]int, 0, len(result.PlayerResults))
	scores := make([]int, 0, len(result.PlayerResults))
	for _, pr := range result.PlayerResults {
		stats, err := s.repository.GetPlayerStatistics(ctx, pr.PlayerID, s.gameType)
		if err != nil {
			return fmt.Errorf("error loading statistics for %s: %w", pr.PlayerID, err)
		}
		stats.Apply(pr, at)
		all = append(all, stats)
		ratings = append(ratings, stats.Rating)
		scores = append(scores, pr.Score)
	}

	for i, rating := range ComputeEloUpdates(ratings, scores) {
		all[i].Rating = rating
		if err := s.repository.SavePlayerStatistics(ctx, all[i]); err != nil {
			return fmt.Errorf("error saving statistics for %s: %w", all[i].PlayerID, err)
		}
	}

	logging.Default.Debug("Recorded game %s for %d players", result.ID, len(all))
	return nil
}

// GetPlayerStatistics returns a single player's statistics
func (s *Service) GetPlayerStatistics(ctx context.Context, playerID string) (*entities.PlayerStatistics, error) {
	return s.repository.GetPlayerStatistics(ctx, playerID, s.gameType)
}

// gameSearcher is implemented by repositories that keep a search index of
// every game, including games pruned from the primary store
type gameSearcher interface {
	SearchPlayerGames(ctx context.Context, playerID string, size int) ([]*entities.GameResult, error)
}

// GetRecentGames returns up to limit of the player's newest games. A searchable
// repository answers from its index; if that fails the primary store is used.
func (s *Service) GetRecentGames(ctx context.Context, playerID string, limit int) ([]*entities.GameResult, error) {
	if limit < 1 {
		limit = 5
	}

	if searcher, ok := s.repository.(gameSearcher); ok {
		results, err := searcher.SearchPlayerGames(ctx, playerID, limit)
		if err == nil {
			return results, nil
		}
		logging.Default.Warn("Game search for %s failed, reading stored results: %v", playerID, err)
	}

	results, err := s.repository.GetPlayerResults(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// GetChannelGames returns up to limit of the newest games played in a channel
func (s *Service) GetChannelGames(ctx context.Context, channelID string, limit int) ([]*entities.GameResult, error) {
	if limit < 1 {
		limit = 5
	}
	return s.repository.GetChannelResults(ctx, channelID, limit)
}

// GetLeaderboard retrieves a paginated leaderboard ordered by rating, then
// win rate, then player ID
func (s *Service) GetLeaderboard(ctx context.Context, page, playersPerPage int) (*Leaderboard, error) {
	// Default values
	if page < 1 {
		page = 1
	}
	if playersPerPage < 1 {
		playersPerPage = 10
	}

	allStats, err := s.repository.GetAllPlayerStatistics(ctx, s.gameType)
	if err != nil {
		return nil, err
	}

	playerRanks := make([]*PlayerRank, 0, len(allStats))
	for _, stats := range allStats {
		// Skip players with no games
		if stats.GamesPlayed == 0 {
			continue
		}
		playerRanks = append(playerRanks, &PlayerRank{
			PlayerStatistics: stats,
			WinRate:          stats.WinRate(),
			AverageScore:     stats.AverageScore(),
		})
	}

	slices.SortFunc(playerRanks, func(a, b *PlayerRank) int {
		if c := cmp.Compare(b.Rating, a.Rating); c != 0 {
			return c
		}
		if c := cmp.Compare(b.WinRate, a.WinRate); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})

	// Mark top winners and players
	if len(playerRanks) > 0 {
		mostWinsIdx, mostGamesIdx := 0, 0
		for i := 1; i < len(playerRanks); i++ {
			if playerRanks[i].Wins > playerRanks[mostWinsIdx].Wins {
				mostWinsIdx = i
			}
			if playerRanks[i].GamesPlayed > playerRanks[mostGamesIdx].GamesPlayed {
				mostGamesIdx = i
			}
		}
		playerRanks[mostWinsIdx].IsTopWinner = true
		playerRanks[mostGamesIdx].IsTopPlayer = true
	}

	// Assign ranks
	for i := range playerRanks {
		playerRanks[i].Rank = i + 1
	}

	// Calculate pagination
	totalPlayers := len(playerRanks)
	totalPages := (totalPlayers + playersPerPage - 1) / playersPerPage
	if page > totalPages && totalPages > 0 {
		page = totalPages
	}

	start := (page - 1) * playersPerPage
	end := min(start+playersPerPage, totalPlayers)

	currentPagePlayers := []*PlayerRank{}
	if start < totalPlayers {
		currentPagePlayers = playerRanks[start:end]
	}

	return &Leaderboard{
		Players:        currentPagePlayers,
		TotalPlayers:   totalPlayers,
		CurrentPage:    page,
		TotalPages:     totalPages,
		PlayersPerPage: playersPerPage,
		LastUpdated:    time.Now(),
	}, nil
}
