package game

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/fadedpez/nothanks/pkg/entities"
)

// MemoryRepository implements Repository interface with in-memory storage
type MemoryRepository struct {
	mu sync.RWMutex
	// Game results by ID, plus insertion order
	results map[string]*entities.GameResult
	order   []string
	// Map of channelID to game IDs
	channelResults map[string][]string
	// Map of playerID to game IDs
	playerResults map[string][]string
	// Map of gameType to playerID to statistics
	stats map[entities.GameType]map[string]*entities.PlayerStatistics
}

// NewMemoryRepository creates a new in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		results:        make(map[string]*entities.GameResult),
		channelResults: make(map[string][]string),
		playerResults:  make(map[string][]string),
		stats:          make(map[entities.GameType]map[string]*entities.PlayerStatistics),
	}
}

// SaveGameResult stores a game result and updates both channel and player histories
func (r *MemoryRepository) SaveGameResult(ctx context.Context, result *entities.GameResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.results[result.ID]; exists {
		return nil
	}

	r.results[result.ID] = result
	r.order = append(r.order, result.ID)
	r.channelResults[result.ChannelID] = append(r.channelResults[result.ChannelID], result.ID)
	for _, pr := range result.PlayerResults {
		r.playerResults[pr.PlayerID] = append(r.playerResults[pr.PlayerID], result.ID)
	}

	return nil
}

// GetPlayerResults retrieves game results for a player
func (r *MemoryRepository) GetPlayerResults(ctx context.Context, playerID string) ([]*entities.GameResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.newestFirst(r.playerResults[playerID], 0), nil
}

// GetChannelResults retrieves recent game results for a channel
func (r *MemoryRepository) GetChannelResults(ctx context.Context, channelID string, limit int) ([]*entities.GameResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.newestFirst(r.channelResults[channelID], limit), nil
}

// PruneGameResultsPerPlayer drops all but each player's newest results. Games
// no player still references are forgotten entirely.
func (r *MemoryRepository) PruneGameResultsPerPlayer(ctx context.Context, maxMatchesPerPlayer int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for playerID, ids := range r.playerResults {
		if len(ids) <= maxMatchesPerPlayer {
			continue
		}
		kept := r.newestFirst(ids, maxMatchesPerPlayer)
		keep := make([]string, 0, len(kept))
		for i := len(kept) - 1; i >= 0; i-- {
			keep = append(keep, kept[i].ID)
		}
		r.playerResults[playerID] = keep
	}

	referenced := make(map[string]bool)
	for _, ids := range r.playerResults {
		for _, id := range ids {
			referenced[id] = true
		}
	}

	drop := func(id string) bool { return !referenced[id] }
	r.order = slices.DeleteFunc(r.order, drop)
	for channelID, ids := range r.channelResults {
		r.channelResults[channelID] = slices.DeleteFunc(ids, drop)
	}
	for id := range r.results {
		if drop(id) {
			delete(r.results, id)
		}
	}

	return nil
}

// GetPlayerStatistics retrieves statistics for a specific player and game type
func (r *MemoryRepository) GetPlayerStatistics(ctx context.Context, playerID string, gameType entities.GameType) (*entities.PlayerStatistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if stats, ok := r.stats[gameType][playerID]; ok {
		copied := *stats
		return &copied, nil
	}
	return entities.NewPlayerStatistics(playerID, gameType), nil
}

// GetAllPlayerStatistics retrieves statistics for all players for a specific game type
func (r *MemoryRepository) GetAllPlayerStatistics(ctx context.Context, gameType entities.GameType) ([]*entities.PlayerStatistics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statsList := make([]*entities.PlayerStatistics, 0, len(r.stats[gameType]))
	for _, stats := range r.stats[gameType] {
		copied := *stats
		statsList = append(statsList, &copied)
	}

	slices.SortFunc(statsList, func(a, b *entities.PlayerStatistics) int {
		return cmp.Or(
			cmp.Compare(b.Rating, a.Rating),
			cmp.Compare(a.PlayerID, b.PlayerID),
		)
	})

	return statsList, nil
}

// SavePlayerStatistics stores a copy of stats, replacing any previous value
func (r *MemoryRepository) SavePlayerStatistics(ctx context.Context, stats *entities.PlayerStatistics) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byPlayer, ok := r.stats[stats.GameType]
	if !ok {
		byPlayer = make(map[string]*entities.PlayerStatistics)
		r.stats[stats.GameType] = byPlayer
	}
	copied := *stats
	byPlayer[stats.PlayerID] = &copied
	return nil
}

// Close is a no-op for memory repository since there are no resources to close
func (r *MemoryRepository) Close() error {
	return nil
}

// newestFirst resolves ids (in insertion order) to results sorted by
// completion time, newest first. limit <= 0 means no limit.
func (r *MemoryRepository) newestFirst(ids []string, limit int) []*entities.GameResult {
	results := make([]*entities.GameResult, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if result, ok := r.results[ids[i]]; ok {
			results = append(results, result)
		}
	}

	slices.SortStableFunc(results, func(a, b *entities.GameResult) int {
		return b.CompletedAt.Compare(a.CompletedAt)
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
