package nothanks

import (
	"github.com/fadedpez/nothanks/internal/games"
	"github.com/fadedpez/nothanks/pkg/players"
	"github.com/fadedpez/nothanks/pkg/publisher"
	"github.com/fadedpez/nothanks/pkg/repositories/game"
	"github.com/fadedpez/nothanks/pkg/services/statistics"
	"github.com/fadedpez/nothanks/pkg/storage"
)

// Factory creates No Thanks managers sharing one set of backends
type Factory struct {
	storage    storage.Storage
	repository game.Repository
	stats      *statistics.Service
	publisher  publisher.Publisher
	registry   *players.Registry
}

var _ games.Factory = (*Factory)(nil)

// NewFactory creates a new No Thanks factory
func NewFactory(store storage.Storage, repository game.Repository, stats *statistics.Service, pub publisher.Publisher, registry *players.Registry) *Factory {
	return &Factory{
		storage:    store,
		repository: repository,
		stats:      stats,
		publisher:  pub,
		registry:   registry,
	}
}

// CreateManager implements games.Factory
func (f *Factory) CreateManager() games.Manager {
	return NewManager(f.storage, f.repository, f.stats, f.publisher, f.registry)
}
