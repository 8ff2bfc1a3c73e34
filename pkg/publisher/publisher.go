// Package publisher announces finished games to downstream consumers
package publisher

import (
	"context"

	"github.com/fadedpez/nothanks/pkg/entities"
)

// Publisher sends finished game results somewhere outside the process
type Publisher interface {
	Publish(ctx context.Context, result *entities.GameResult) error
	Close() error
}

// Nop discards every result. It is used when no broker is configured.
type Nop struct{}

// NewNop returns a publisher that does nothing
func NewNop() *Nop {
	return &Nop{}
}

func (Nop) Publish(ctx context.Context, result *entities.GameResult) error { return nil }

func (Nop) Close() error { return nil }
