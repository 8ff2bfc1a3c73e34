package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fadedpez/nothanks/internal/logging"
	"github.com/fadedpez/nothanks/pkg/storage"
)

// Storage implements file-based storage for game states
type Storage struct {
	path    string
	mu      sync.RWMutex
	games   map[string]*storage.GameState
	options *storage.Options
}

// New creates a new file storage instance
func New(options *storage.Options) (*Storage, error) {
	if options == nil {
		options = storage.NewOptions()
	}

	s := &Storage{
		path:    options.Path,
		games:   make(map[string]*storage.GameState),
		options: options,
	}

	// Load existing games from file
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}

	return s, nil
}

// SaveGame saves or updates a game state
func (s *Storage) SaveGame(ctx context.Context, state *storage.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Update timestamps
	now := time.Now()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	state.UpdatedAt = now

	s.games[state.ID] = clone(state)
	return s.save()
}

// LoadGame loads a game state by ID
func (s *Storage) LoadGame(ctx context.Context, id string) (*storage.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	game, ok := s.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrGameNotFound, id)
	}

	return clone(game), nil
}

// LoadGameByChannel loads the most recently updated game state for a channel
func (s *Storage) LoadGameByChannel(ctx context.Context, channelID string) (*storage.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var found *storage.GameState
	for _, game := range s.games {
		if game.ChannelID == channelID && (found == nil || game.UpdatedAt.After(found.UpdatedAt)) {
			found = game
		}
	}
	if found == nil {
		return nil, fmt.Errorf("%w for channel: %s", storage.ErrGameNotFound, channelID)
	}

	return clone(found), nil
}

// DeleteGame deletes a game state
func (s *Storage) DeleteGame(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[id]; !ok {
		return nil
	}
	delete(s.games, id)
	return s.save()
}

// ListGames lists all game states, oldest first
func (s *Storage) ListGames(ctx context.Context) ([]*storage.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games := make([]*storage.GameState, 0, len(s.games))
	for _, game := range s.games {
		games = append(games, clone(game))
	}
	slices.SortFunc(games, func(a, b *storage.GameState) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})

	return games, nil
}

// CleanupOldGames removes games older than maxAge
func (s *Storage) CleanupOldGames(ctx context.Context, maxAge time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, game := range s.games {
		if now.Sub(game.UpdatedAt) > maxAge {
			delete(s.games, id)
			removed++
		}
	}
	if removed == 0 {
		return nil
	}

	logging.Default.Info("Removed %d stale games", removed)
	return s.save()
}

// Close writes the current games to disk
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// Helper functions

func (s *Storage) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, &s.games)
}

// save writes to a temporary file and renames it over the old one
func (s *Storage) save() error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Marshal and save
	data, err := json.Marshal(s.games)
	if err != nil {
		return fmt.Errorf("failed to marshal games: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}

	return nil
}

func clone(state *storage.GameState) *storage.GameState {
	copied := *state
	copied.State = slices.Clone(state.State)
	return &copied
}
