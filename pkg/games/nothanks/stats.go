package nothanks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/fadedpez/nothanks/internal/discord"
	"github.com/fadedpez/nothanks/pkg/entities"
)

const recentGamesShown = 5

func (m *Manager) sendPlayerStats(s discord.SessionHandler, i *discordgo.InteractionCreate) {
	user, err := interactionUser(i)
	if err != nil {
		discord.SendErrorResponse(s, i, err)
		return
	}

	data := i.ApplicationCommandData()
	playerID, label := user.ID, displayName(user)
	for _, opt := range data.Options {
		if opt.Name != "user" {
			continue
		}
		playerID, label = opt.UserValue(nil).ID, ""
		if data.Resolved != nil {
			if u, ok := data.Resolved.Users[playerID]; ok && u != nil {
				label = displayName(u)
			}
		}
		if label == "" {
			label = playerID
		}
	}

	ctx := context.Background()
	stats, err := m.stats.GetPlayerStatistics(ctx, playerID)
	if err != nil {
		discord.SendErrorResponse(s, i, err)
		return
	}
	recent, err := m.stats.GetRecentGames(ctx, playerID, recentGamesShown)
	if err != nil {
		discord.SendErrorResponse(s, i, err)
		return
	}

	if err := discord.SendResponse(s, i, discord.NewEmbedResponse(statsEmbed(label, stats, recent), nil)); err != nil {
		discord.SendErrorResponse(s, i, err)
	}
}

func (m *Manager) sendChannelHistory(s discord.SessionHandler, i *discordgo.InteractionCreate) {
	games, err := m.stats.GetChannelGames(context.Background(), i.ChannelID, recentGamesShown)
	if err != nil {
		discord.SendErrorResponse(s, i, err)
		return
	}
	if err := discord.SendResponse(s, i, discord.NewEmbedResponse(historyEmbed(games), nil)); err != nil {
		discord.SendErrorResponse(s, i, err)
	}
}

func statsEmbed(label string, stats *entities.PlayerStatistics, recent []*entities.GameResult) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🃏 No Thanks stats for %s", label),
		Color: 0x00ff00,
	}
	if stats.GamesPlayed == 0 {
		embed.Description = fmt.Sprintf("%s has not finished a game yet.", label)
		return embed
	}

	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Rating", Value: fmt.Sprintf("%d", stats.Rating), Inline: true},
		{Name: "Record", Value: fmt.Sprintf("%dW-%dL", stats.Wins, stats.Losses), Inline: true},
		{Name: "Win Rate", Value: fmt.Sprintf("%.1f%%", stats.WinRate()), Inline: true},
		{Name: "Average Score", Value: fmt.Sprintf("%.1f", stats.AverageScore()), Inline: true},
		{Name: "Best Score", Value: fmt.Sprintf("%d", stats.BestScore), Inline: true},
		{Name: "Cards Taken", Value: fmt.Sprintf("%d", stats.CardsTaken), Inline: true},
	}
	if !stats.LastUpdated.IsZero() {
		embed.Timestamp = stats.LastUpdated.Format(time.RFC3339)
	}

	var lines []string
	for _, g := range recent {
		for _, pr := range g.PlayerResults {
			if pr.PlayerID != stats.PlayerID {
				continue
			}
			medal := fmt.Sprintf("#%d", pr.Rank)
			if pr.Result.IsWin() {
				medal = "🏆"
			}
			lines = append(lines, fmt.Sprintf("%s %s score **%d** of %d players", g.CompletedAt.Format("Jan 2 15:04"), medal, pr.Score, len(g.PlayerResults)))
		}
	}
	if len(lines) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Recent Games",
			Value: strings.Join(lines, "\n"),
		})
	}
	return embed
}

func historyEmbed(games []*entities.GameResult) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🃏 Recent No Thanks games in this channel",
		Color: 0x00ff00,
	}
	if len(games) == 0 {
		embed.Description = "No games have finished in this channel yet."
		return embed
	}

	for _, g := range games {
		var seats []string
		for _, pr := range g.PlayerResults {
			name := pr.Name
			if name == "" {
				name = pr.PlayerID
			}
			if pr.Result.IsWin() {
				seats = append(seats, fmt.Sprintf("🏆 %s **%d**", name, pr.Score))
			} else {
				seats = append(seats, fmt.Sprintf("%s %d", name, pr.Score))
			}
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s (%d turns)", g.CompletedAt.Format("Jan 2 15:04"), g.Turns),
			Value: strings.Join(seats, " | "),
		})
	}
	return embed
}
