package nothanks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/fadedpez/nothanks/internal/games"
	"github.com/fadedpez/nothanks/pkg/entities"
	engine "github.com/fadedpez/nothanks/pkg/services/nothanks"
)

// Table renders a game as a Discord message
type Table struct {
	Game *engine.Game
	// Warning is appended under the table when set
	Warning string
}

var _ games.Table = (*Table)(nil)

// IsFinished implements games.Table
func (t *Table) IsFinished() bool {
	return t.Game.IsFinished()
}

// GetButtons implements games.Table
func (t *Table) GetButtons() []discordgo.MessageComponent {
	g := t.Game
	switch g.State {
	case entities.StateWaiting:
		return []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    "Join",
						Style:    discordgo.SuccessButton,
						CustomID: ButtonJoin,
						Disabled: len(g.Seats) >= entities.MaxPlayers,
					},
					discordgo.Button{
						Label:    "Start",
						Style:    discordgo.PrimaryButton,
						CustomID: ButtonStart,
						Disabled: len(g.Seats) < entities.MinPlayers,
					},
				},
			},
		}
	case entities.StatePlaying:
		return []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						Label:    fmt.Sprintf("Take %d (+%d)", g.Card, g.Pot),
						Style:    discordgo.PrimaryButton,
						CustomID: ButtonTake,
					},
					discordgo.Button{
						Label:    "No thanks! (-1)",
						Style:    discordgo.DangerButton,
						CustomID: ButtonPass,
						Disabled: g.CurrentSeat().Chips == 0,
					},
				},
			},
		}
	}
	return nil
}

// String implements games.Table
func (t *Table) String() string {
	g := t.Game
	var sb strings.Builder

	switch g.State {
	case entities.StateWaiting:
		sb.WriteString(fmt.Sprintf("🃏 **No Thanks!** waiting for players (%d/%d)\n", len(g.Seats), entities.MaxPlayers))
		for _, s := range g.Seats {
			sb.WriteString(fmt.Sprintf("• %s\n", s.Name))
		}
		if len(g.Seats) < entities.MinPlayers {
			sb.WriteString(fmt.Sprintf("\nAt least %d players are needed to start.", entities.MinPlayers))
		}

	case entities.StatePlaying:
		sb.WriteString(fmt.Sprintf("🃏 **No Thanks!** card **%d** with %d 🪙 on it, %d left in the deck\n\n",
			g.Card, g.Pot, g.Remaining()))
		current := g.CurrentSeat()
		for _, s := range g.Seats {
			marker := "  "
			if s == current {
				marker = "▶️"
			}
			sb.WriteString(fmt.Sprintf("%s %s: %d 🪙 | %s\n", marker, s.Name, s.Chips, FormatCards(s.Hand.Values())))
		}
		sb.WriteString(fmt.Sprintf("\n%s to act.", current.Name))

	case entities.StateComplete:
		sb.WriteString(fmt.Sprintf("🏁 **No Thanks!** finished after %d turns\n\n", g.Turns))
		if result, err := g.Result(); err == nil {
			for _, pr := range result.PlayerResults {
				medal := fmt.Sprintf("%d.", pr.Rank)
				if pr.Result.IsWin() {
					medal = "🏆"
				}
				sb.WriteString(fmt.Sprintf("%s %s: **%d** (%d 🪙) | %s\n", medal, pr.Name, pr.Score, pr.Chips, FormatCards(pr.Cards)))
			}
		}
	}

	if t.Warning != "" {
		sb.WriteString("\n⚠️ " + t.Warning)
	}
	return sb.String()
}

// FormatCards writes sorted cards with consecutive runs collapsed, so that
// 3 4 5 9 reads "3-5, 9". Only the first card of each run counts against
// the player.
func FormatCards(cards []int) string {
	if len(cards) == 0 {
		return "no cards"
	}

	var parts []string
	start := 0
	for i := 1; i <= len(cards); i++ {
		if i < len(cards) && cards[i] == cards[i-1]+1 {
			continue
		}
		if i-1 == start {
			parts = append(parts, strconv.Itoa(cards[start]))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", cards[start], cards[i-1]))
		}
		start = i
	}
	return strings.Join(parts, ", ")
}
