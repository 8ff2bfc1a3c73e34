package games

import (
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"

	"github.com/fadedpez/nothanks/internal/discord"
)

// MockManager implements Manager for testing
type MockManager struct {
	mock.Mock
}

func (m *MockManager) Commands() []*discordgo.ApplicationCommand {
	args := m.Called()
	cmds, _ := args.Get(0).([]*discordgo.ApplicationCommand)
	return cmds
}

func (m *MockManager) HandleCommand(s discord.SessionHandler, i *discordgo.InteractionCreate) {
	m.Called(s, i)
}

func (m *MockManager) HandleButton(s discord.SessionHandler, i *discordgo.InteractionCreate) {
	m.Called(s, i)
}

// MockFactory implements Factory for testing
type MockFactory struct {
	mock.Mock
}

func (m *MockFactory) CreateManager() Manager {
	args := m.Called()
	return args.Get(0).(Manager)
}
