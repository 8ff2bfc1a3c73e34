package games

import (
	"fmt"
	"slices"
	"sync"

	"github.com/fadedpez/nothanks/internal/types"
)

// Registry maps game names to their factories. The name doubles as the
// custom ID prefix of the game's buttons.
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty game registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// RegisterGame registers a game factory under name
func (r *Registry) RegisterGame(name string, factory Factory) error {
	if name == "" {
		return types.NewGameError(types.ErrInvalidArgument, "Game name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return types.NewGameError(types.ErrInvalidAction, fmt.Sprintf("Game %s is already registered", name))
	}

	r.factories[name] = factory
	return nil
}

// GetFactory returns the factory registered under name
func (r *Registry) GetFactory(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	if !exists {
		return nil, types.NewGameError(types.ErrGameNotFound, fmt.Sprintf("Game %s not found", name))
	}

	return factory, nil
}

// CreateManager creates a new manager for the named game
func (r *Registry) CreateManager(name string) (Manager, error) {
	factory, err := r.GetFactory(name)
	if err != nil {
		return nil, err
	}

	return factory.CreateManager(), nil
}

// ListGames returns the registered game names in sorted order
func (r *Registry) ListGames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	games := make([]string, 0, len(r.factories))
	for name := range r.factories {
		games = append(games, name)
	}
	slices.Sort(games)
	return games
}
