package entities

import "time"

// InitialRating is the Elo rating assigned to a player's first game
const InitialRating = 1000

// PlayerStatistics represents aggregated statistics for a player in a specific game type
type PlayerStatistics struct {
	PlayerID    string    `json:"player_id"`
	GameType    GameType  `json:"game_type"`
	GamesPlayed int       `json:"games_played"`
	Wins        int       `json:"wins"`
	Losses      int       `json:"losses"`
	TotalScore  int64     `json:"total_score"`
	BestScore   int       `json:"best_score"`
	CardsTaken  int       `json:"cards_taken"`
	ChipsLeft   int64     `json:"chips_left"`
	Rating      int       `json:"rating"`
	LastUpdated time.Time `json:"last_updated"`
}

// NewPlayerStatistics returns empty statistics at the initial rating
func NewPlayerStatistics(playerID string, gameType GameType) *PlayerStatistics {
	return &PlayerStatistics{
		PlayerID: playerID,
		GameType: gameType,
		Rating:   InitialRating,
	}
}

// WinRate calculates the player's win rate as a percentage
func (s *PlayerStatistics) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0.0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100.0
}

// AverageScore is the mean final score; lower is better
func (s *PlayerStatistics) AverageScore() float64 {
	if s.GamesPlayed == 0 {
		return 0.0
	}
	return float64(s.TotalScore) / float64(s.GamesPlayed)
}

// Apply folds one finished game into the aggregates. Rating is left to the caller.
func (s *PlayerStatistics) Apply(pr *PlayerResult, at time.Time) {
	if s.GamesPlayed == 0 || pr.Score < s.BestScore {
		s.BestScore = pr.Score
	}
	s.GamesPlayed++
	if pr.Result.IsWin() {
		s.Wins++
	} else {
		s.Losses++
	}
	s.TotalScore += int64(pr.Score)
	s.CardsTaken += len(pr.Cards)
	s.ChipsLeft += int64(pr.Chips)
	s.LastUpdated = at
}
