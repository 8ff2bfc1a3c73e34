package bot

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/fadedpez/nothanks/internal/discord"
	"github.com/fadedpez/nothanks/internal/logging"
	"github.com/fadedpez/nothanks/internal/types"
)

// handleSlashCommand hands a slash command to the game that declared it
func (b *Bot) handleSlashCommand(s discord.SessionHandler, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name
	manager, ok := b.routes[name]
	if !ok {
		logging.Default.Warn("Unknown command: %s", name)
		discord.SendErrorResponse(s, i, types.NewGameError(types.ErrInvalidCommand, fmt.Sprintf("Unknown command /%s", name)))
		return
	}
	manager.HandleCommand(s, i)
}

// handleMessageComponent routes a button by the game name before the first underscore
func (b *Bot) handleMessageComponent(s discord.SessionHandler, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	prefix, _, _ := strings.Cut(customID, "_")

	manager, ok := b.managers[prefix]
	if !ok {
		logging.Default.Warn("Unknown component interaction: %s", customID)
		discord.SendErrorResponse(s, i, types.NewGameError(types.ErrInvalidAction, "That button no longer does anything"))
		return
	}
	manager.HandleButton(s, i)
}
