package games

import (
	"github.com/bwmarrin/discordgo"

	"github.com/fadedpez/nothanks/internal/discord"
)

// Table is a single game in progress in one channel
type Table interface {
	// IsFinished returns whether the game is over
	IsFinished() bool

	// String renders the table as message content
	String() string

	// GetButtons returns the buttons valid in the current state
	GetButtons() []discordgo.MessageComponent
}

// Manager owns every table of one game type and answers its interactions
type Manager interface {
	// Commands returns the slash commands this manager answers
	Commands() []*discordgo.ApplicationCommand

	// HandleCommand handles one of the manager's slash commands
	HandleCommand(s discord.SessionHandler, i *discordgo.InteractionCreate)

	// HandleButton handles a button whose custom ID starts with the game name
	HandleButton(s discord.SessionHandler, i *discordgo.InteractionCreate)
}

// Factory creates the manager for one game type
type Factory interface {
	CreateManager() Manager
}
