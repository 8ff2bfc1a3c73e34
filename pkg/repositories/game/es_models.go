package game

import (
	"time"

	"github.com/fadedpez/nothanks/pkg/entities"
)

// ESGameResult represents a game result document in Elasticsearch
type ESGameResult struct {
	GameID      string           `json:"game_id"`
	GameType    string           `json:"game_type"`
	ChannelID   string           `json:"channel_id"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
	Turns       int              `json:"turns"`
	Winners     []string         `json:"winners"`
	Players     []ESPlayerResult `json:"players"`
}

// ESPlayerResult represents a player result in Elasticsearch
type ESPlayerResult struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name,omitempty"`
	Strategy string `json:"strategy,omitempty"`
	Seat     int    `json:"seat"`
	Cards    []int  `json:"cards"`
	Chips    int    `json:"chips"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
	Result   string `json:"result"`
}

// ESPlayerStatistics is a player statistics document with its derived rates
type ESPlayerStatistics struct {
	entities.PlayerStatistics
	WinRate      float64 `json:"win_rate"`
	AverageScore float64 `json:"average_score"`
}

func toESGameResult(result *entities.GameResult) *ESGameResult {
	doc := &ESGameResult{
		GameID:      result.ID,
		GameType:    string(result.GameType),
		ChannelID:   result.ChannelID,
		StartedAt:   result.StartedAt,
		CompletedAt: result.CompletedAt,
		Turns:       result.Turns,
		Winners:     result.Winners(),
		Players:     make([]ESPlayerResult, 0, len(result.PlayerResults)),
	}
	for seat, pr := range result.PlayerResults {
		doc.Players = append(doc.Players, ESPlayerResult{
			PlayerID: pr.PlayerID,
			Name:     pr.Name,
			Strategy: pr.Strategy,
			Seat:     seat,
			Cards:    pr.Cards,
			Chips:    pr.Chips,
			Score:    pr.Score,
			Rank:     pr.Rank,
			Result:   pr.Result.String(),
		})
	}
	return doc
}

func (doc *ESGameResult) toGameResult() *entities.GameResult {
	result := &entities.GameResult{
		ID:            doc.GameID,
		ChannelID:     doc.ChannelID,
		GameType:      entities.GameType(doc.GameType),
		StartedAt:     doc.StartedAt,
		CompletedAt:   doc.CompletedAt,
		Turns:         doc.Turns,
		PlayerResults: make([]*entities.PlayerResult, 0, len(doc.Players)),
	}
	for _, p := range doc.Players {
		result.PlayerResults = append(result.PlayerResults, &entities.PlayerResult{
			PlayerID: p.PlayerID,
			Name:     p.Name,
			Strategy: p.Strategy,
			Cards:    p.Cards,
			Chips:    p.Chips,
			Score:    p.Score,
			Rank:     p.Rank,
			Result:   entities.Result(p.Result),
		})
	}
	return result
}

func toESPlayerStatistics(stats *entities.PlayerStatistics) *ESPlayerStatistics {
	return &ESPlayerStatistics{
		PlayerStatistics: *stats,
		WinRate:          stats.WinRate(),
		AverageScore:     stats.AverageScore(),
	}
}
