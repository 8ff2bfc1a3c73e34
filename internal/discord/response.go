package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/fadedpez/nothanks/internal/types"
)

// ResponseEmoji maps error codes to the emoji shown in front of the message
var ResponseEmoji = map[types.ErrorCode]string{
	types.ErrGameNotFound:     "🔍",
	types.ErrGameInProgress:   "🎮",
	types.ErrGameNotStarted:   "🕰️",
	types.ErrGameAlreadyEnded: "🏁",
	types.ErrInvalidState:     "⚠️",
	types.ErrPlayerNotFound:   "👤",
	types.ErrNotPlayerTurn:    "⏳",
	types.ErrNotGameCreator:   "👑",
	types.ErrAlreadyJoined:    "✋",
	types.ErrTooManyPlayers:   "👥",
	types.ErrNotEnoughPlayers: "🤷",
	types.ErrNoChips:          "🪙",
	types.ErrStrategyNotFound: "🤖",
	types.ErrInvalidAction:    "❌",
	types.ErrInvalidCommand:   "⛔",
	types.ErrInvalidArgument:  "❗",
	types.ErrPermissionDenied: "🚫",
	types.ErrInternalError:    "💥",
	types.ErrIndexOutOfRange:  "📏",
	types.ErrNetworkError:     "🌐",
	types.ErrDatabaseError:    "💾",
}

// Response is the content of one interaction reply
type Response struct {
	Content    string
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
	Ephemeral  bool
}

// NewResponse creates a public Response
func NewResponse(content string, components []discordgo.MessageComponent) *Response {
	return &Response{
		Content:    content,
		Components: components,
	}
}

// NewEphemeralResponse creates a Response only the invoking user can see
func NewEphemeralResponse(content string, components []discordgo.MessageComponent) *Response {
	return &Response{
		Content:    content,
		Components: components,
		Ephemeral:  true,
	}
}

// NewEmbedResponse creates a public Response made of a single embed
func NewEmbedResponse(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) *Response {
	return &Response{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	}
}

// NewErrorResponse turns an error into an ephemeral reply. GameErrors show
// their message only; anything else is reported as is.
func NewErrorResponse(err error) *Response {
	var gameErr *types.GameError
	if types.As(err, &gameErr) {
		emoji := ResponseEmoji[gameErr.Code]
		if emoji == "" {
			emoji = "❌"
		}
		return NewEphemeralResponse(fmt.Sprintf("%s %s", emoji, gameErr.Message), nil)
	}
	return NewEphemeralResponse(fmt.Sprintf("❌ An error occurred: %v", err), nil)
}

// SendResponse replies to an interaction with a new message
func SendResponse(s SessionHandler, i *discordgo.InteractionCreate, r *Response) error {
	return respond(s, i, discordgo.InteractionResponseChannelMessageWithSource, r)
}

// UpdateResponse replaces the message a component interaction came from
func UpdateResponse(s SessionHandler, i *discordgo.InteractionCreate, r *Response) error {
	return respond(s, i, discordgo.InteractionResponseUpdateMessage, r)
}

// SendGameResponse posts a table message with its buttons
func SendGameResponse(s SessionHandler, i *discordgo.InteractionCreate, content string, components []discordgo.MessageComponent) error {
	return SendResponse(s, i, NewResponse(content, components))
}

// UpdateGameResponse rewrites a table message in place
func UpdateGameResponse(s SessionHandler, i *discordgo.InteractionCreate, content string, components []discordgo.MessageComponent) error {
	return UpdateResponse(s, i, NewResponse(content, components))
}

// SendErrorResponse replies with an ephemeral error message
func SendErrorResponse(s SessionHandler, i *discordgo.InteractionCreate, err error) error {
	return SendResponse(s, i, NewErrorResponse(err))
}

func respond(s SessionHandler, i *discordgo.InteractionCreate, kind discordgo.InteractionResponseType, r *Response) error {
	components := r.Components
	if kind == discordgo.InteractionResponseUpdateMessage && components == nil {
		// an update without components would leave the old buttons in place
		components = []discordgo.MessageComponent{}
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: kind,
		Data: &discordgo.InteractionResponseData{
			Content:    r.Content,
			Embeds:     r.Embeds,
			Components: components,
			Flags:      getFlags(r.Ephemeral),
		},
	})
}

func getFlags(ephemeral bool) discordgo.MessageFlags {
	if ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}
