package players

import (
	"fmt"
	"math/rand"
	"slices"
	"sync"

	"github.com/fadedpez/nothanks/internal/types"
)

// Strategy names known to DefaultRegistry
const (
	StrategyAlwaysTake   = "always-take"
	StrategyAlwaysReject = "always-reject"
	StrategyRandom       = "random"
	StrategyBasic        = "basic"
)

// Constructor builds a Player. Stateless strategies ignore rng.
type Constructor func(rng *rand.Rand) Player

// Registry maps strategy names to constructors
type Registry struct {
	constructors map[string]Constructor
	mu           sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
	}
}

// DefaultRegistry returns a registry holding every built-in strategy
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(StrategyAlwaysTake, func(*rand.Rand) Player { return AlwaysTake })
	_ = r.Register(StrategyAlwaysReject, func(*rand.Rand) Player { return AlwaysReject })
	_ = r.Register(StrategyRandom, Random)
	_ = r.Register(StrategyBasic, func(*rand.Rand) Player { return Basic })
	return r
}

// Register adds a strategy constructor under name
func (r *Registry) Register(name string, c Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.constructors[name]; exists {
		return types.NewGameError(types.ErrInvalidAction, fmt.Sprintf("Strategy %s is already registered", name))
	}

	r.constructors[name] = c
	return nil
}

// New builds the named strategy
func (r *Registry) New(name string, rng *rand.Rand) (Player, error) {
	r.mu.RLock()
	c, exists := r.constructors[name]
	r.mu.RUnlock()

	if !exists {
		return nil, types.NewGameError(types.ErrStrategyNotFound, fmt.Sprintf("Strategy %s not found", name))
	}
	return c(rng), nil
}

// Has reports whether name is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.constructors[name]
	return ok
}

// Names returns the registered strategy names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
