// Package bot connects the registered games to a Discord session
package bot

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/fadedpez/nothanks/internal/config"
	"github.com/fadedpez/nothanks/internal/discord"
	"github.com/fadedpez/nothanks/internal/games"
	"github.com/fadedpez/nothanks/internal/logging"
)

// Bot represents the Discord bot and its dependencies
type Bot struct {
	config   *config.Config
	session  discord.SessionHandler
	managers map[string]games.Manager // by game name, which is also the button prefix
	routes   map[string]games.Manager // by slash command name
	commands []*discordgo.ApplicationCommand

	removeHandler func()
	shutdownWg    sync.WaitGroup
}

// New creates a manager for every registered game and collects their commands
func New(cfg *config.Config, session discord.SessionHandler, registry *games.Registry) (*Bot, error) {
	b := &Bot{
		config:   cfg,
		session:  session,
		managers: make(map[string]games.Manager),
		routes:   make(map[string]games.Manager),
	}

	for _, name := range registry.ListGames() {
		manager, err := registry.CreateManager(name)
		if err != nil {
			return nil, err
		}
		if err := b.addManager(name, manager); err != nil {
			return nil, err
		}
	}

	b.removeHandler = session.AddHandler(b.handleInteractionCreate)
	return b, nil
}

// Start connects to Discord and registers the slash commands
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	logging.Default.Info("Bot started with %d commands", len(b.commands))
	return nil
}

// Shutdown waits for in-flight interactions and closes the session. In
// development the guild commands are removed as well.
func (b *Bot) Shutdown() {
	if b.removeHandler != nil {
		b.removeHandler()
	}
	b.shutdownWg.Wait()

	if b.config.IsDevelopment() {
		if err := b.cleanupCommands(); err != nil {
			logging.Default.Error("Failed to clean up commands: %v", err)
		}
	}

	if err := b.session.Close(); err != nil {
		logging.Default.Error("Error closing Discord session: %v", err)
	}
}

// Commands returns the slash commands the bot answers
func (b *Bot) Commands() []*discordgo.ApplicationCommand {
	return b.commands
}

func (b *Bot) addManager(name string, manager games.Manager) error {
	for _, cmd := range manager.Commands() {
		if _, exists := b.routes[cmd.Name]; exists {
			return fmt.Errorf("command %s is registered by more than one game", cmd.Name)
		}
		b.routes[cmd.Name] = manager
		b.commands = append(b.commands, cmd)
	}
	b.managers[name] = manager
	return nil
}

// handleInteractionCreate is the discordgo event handler. The session it is
// given is ignored in favour of the bot's own handler.
func (b *Bot) handleInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	b.shutdownWg.Add(1)
	defer b.shutdownWg.Done()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleSlashCommand(b.session, i)
	case discordgo.InteractionMessageComponent:
		b.handleMessageComponent(b.session, i)
	}
}
