package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fadedpez/nothanks/pkg/entities"
	"github.com/fadedpez/nothanks/pkg/publisher"
)

// Publisher is a mock implementation of publisher.Publisher
type Publisher struct {
	mock.Mock
}

var _ publisher.Publisher = (*Publisher)(nil)

func (m *Publisher) Publish(ctx context.Context, result *entities.GameResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *Publisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
