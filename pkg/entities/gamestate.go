package entities

import "time"

// Result represents the outcome of a player's participation in a game
type Result string

// Result constants
const (
	ResultWin  Result = "WIN"
	ResultLose Result = "LOSE"
)

// String returns the string representation of the result
func (r Result) String() string {
	return string(r)
}

// IsWin returns true if this result represents a win
func (r Result) IsWin() bool {
	return r == ResultWin
}

// GameState is the lifecycle stage of a table
type GameState string

const (
	StateWaiting  GameState = "WAITING"
	StatePlaying  GameState = "PLAYING"
	StateComplete GameState = "COMPLETE"
)

// GameType identifies which game produced a result
type GameType string

const GameTypeNoThanks GameType = "nothanks"

// GameResult represents the outcome of a finished game
type GameResult struct {
	ID            string          `json:"id"`
	ChannelID     string          `json:"channel_id"`
	GameType      GameType        `json:"game_type"`
	StartedAt     time.Time       `json:"started_at"`
	CompletedAt   time.Time       `json:"completed_at"`
	Turns         int             `json:"turns"`
	PlayerResults []*PlayerResult `json:"player_results"`
}

// PlayerResult is one seat's final position
type PlayerResult struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name,omitempty"`
	Strategy string `json:"strategy,omitempty"`
	Cards    []int  `json:"cards"`
	Chips    int    `json:"chips"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
	Result   Result `json:"result"`
}

// Winners returns the IDs of every player who shared the win
func (g *GameResult) Winners() []string {
	var ids []string
	for _, pr := range g.PlayerResults {
		if pr.Result.IsWin() {
			ids = append(ids, pr.PlayerID)
		}
	}
	return ids
}
