package nothanks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/fadedpez/nothanks/internal/discord"
	"github.com/fadedpez/nothanks/pkg/services/statistics"
)

// leaderboard buttons carry the page they lead to: nothanks_lb:3
const leaderboardPrefix = "nothanks_lb:"

const leaderboardPageSize = 10

func (m *Manager) sendLeaderboard(s discord.SessionHandler, i *discordgo.InteractionCreate, page int, update bool) {
	leaderboard, err := m.stats.GetLeaderboard(context.Background(), page, leaderboardPageSize)
	if err != nil {
		discord.SendErrorResponse(s, i, err)
		return
	}

	resp := discord.NewEmbedResponse(leaderboardEmbed(leaderboard), leaderboardButtons(leaderboard))
	if update {
		err = discord.UpdateResponse(s, i, resp)
	} else {
		err = discord.SendResponse(s, i, resp)
	}
	if err != nil {
		discord.SendErrorResponse(s, i, err)
	}
}

func leaderboardEmbed(lb *statistics.Leaderboard) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "🃏 No Thanks Leaderboard",
		Color:     0x00ff00,
		Timestamp: lb.LastUpdated.Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: "👑 = #1 Rating | 💰 = Most Wins | 🏆 = Most Games Played",
		},
	}

	if lb.TotalPlayers == 0 {
		embed.Description = "No games have been played yet."
		return embed
	}
	embed.Description = fmt.Sprintf("Showing page %d of %d (%d total players)",
		lb.CurrentPage, lb.TotalPages, lb.TotalPlayers)

	for _, p := range lb.Players {
		var rank string
		switch p.Rank {
		case 1:
			rank = "👑"
		case 2:
			rank = "🥈"
		case 3:
			rank = "🥉"
		default:
			rank = fmt.Sprintf("%d.", p.Rank)
		}
		var badges []string
		if p.IsTopWinner && p.Rank != 1 {
			badges = append(badges, "💰")
		}
		if p.IsTopPlayer {
			badges = append(badges, "🏆")
		}

		value := fmt.Sprintf("**Rating:** %d | **Games:** %d | **Record:** %dW-%dL | **Win Rate:** %.1f%%\n**Average Score:** %.1f | **Best:** %d",
			p.Rating, p.GamesPlayed, p.Wins, p.Losses, p.WinRate, p.AverageScore, p.BestScore)
		if !isBot(p.PlayerID) {
			value = fmt.Sprintf("<@%s>\n%s", p.PlayerID, value)
		}

		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  strings.TrimSpace(fmt.Sprintf("%s %s %s", rank, playerLabel(p.PlayerID), strings.Join(badges, " "))),
			Value: value,
		})
	}
	return embed
}

func leaderboardButtons(lb *statistics.Leaderboard) []discordgo.MessageComponent {
	if lb.TotalPages <= 1 {
		return nil
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Previous",
					Style:    discordgo.SecondaryButton,
					CustomID: fmt.Sprintf("%s%d", leaderboardPrefix, lb.CurrentPage-1),
					Disabled: lb.CurrentPage <= 1,
					Emoji:    &discordgo.ComponentEmoji{Name: "⬅️"},
				},
				discordgo.Button{
					Label:    "Next",
					Style:    discordgo.SecondaryButton,
					CustomID: fmt.Sprintf("%s%d", leaderboardPrefix, lb.CurrentPage+1),
					Disabled: lb.CurrentPage >= lb.TotalPages,
					Emoji:    &discordgo.ComponentEmoji{Name: "➡️"},
				},
			},
		},
	}
}

// playerLabel shows bots by strategy ID and people by their Discord ID.
// Embed field names do not render mentions, so people are also mentioned
// in the field value.
func playerLabel(id string) string {
	if isBot(id) {
		return "🤖 " + strings.TrimPrefix(id, "bot:")
	}
	return "👤 " + id
}

func isBot(id string) bool {
	return strings.HasPrefix(id, "bot:")
}
