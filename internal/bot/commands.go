package bot

import (
	"fmt"

	"github.com/fadedpez/nothanks/internal/logging"
)

// registerCommands replaces the guild's commands with the bot's set
func (b *Bot) registerCommands() error {
	created, err := b.session.ApplicationCommandBulkOverwrite(b.config.AppID, b.config.GuildID, b.commands)
	if err != nil {
		return err
	}
	for _, cmd := range created {
		logging.Default.Debug("Registered command /%s (%s)", cmd.Name, cmd.ID)
	}
	return nil
}

// cleanupCommands removes every command registered in the guild
func (b *Bot) cleanupCommands() error {
	cmds, err := b.session.ApplicationCommands(b.config.AppID, b.config.GuildID)
	if err != nil {
		return fmt.Errorf("failed to list commands: %w", err)
	}

	for _, cmd := range cmds {
		if err := b.session.ApplicationCommandDelete(b.config.AppID, b.config.GuildID, cmd.ID); err != nil {
			return fmt.Errorf("failed to delete command %s: %w", cmd.Name, err)
		}
	}
	return nil
}
