package nothanks

import (
	"slices"

	"github.com/fadedpez/nothanks/internal/types"
	"github.com/fadedpez/nothanks/pkg/entities"
	"github.com/fadedpez/nothanks/pkg/players"
)

// ScoreHand sums the lowest card of each run of consecutive cards and
// subtracts the chips held. Lower is better.
func ScoreHand(h players.Hand, chips int) (int, error) {
	total, prev := 0, 0
	for i := range h.Size() {
		card, err := h.Get(i)
		if err != nil {
			return 0, types.WrapError(types.ErrIndexOutOfRange, "Failed to read hand", err)
		}
		if i == 0 || card != prev+1 {
			total += card
		}
		prev = card
	}
	return total - chips, nil
}

// Scores returns each seat's current score in seat order
func (g *Game) Scores() ([]int, error) {
	scores := make([]int, len(g.Seats))
	for i, s := range g.Seats {
		score, err := ScoreHand(s.Hand, s.Chips)
		if err != nil {
			return nil, err
		}
		scores[i] = score
	}
	return scores, nil
}

// Result summarizes a finished game. Every seat with the lowest score wins.
func (g *Game) Result() (*entities.GameResult, error) {
	if !g.IsFinished() {
		return nil, types.NewGameError(types.ErrInvalidState, "Game is not finished")
	}

	scores, err := g.Scores()
	if err != nil {
		return nil, err
	}

	distinct := slices.Clone(scores)
	slices.Sort(distinct)
	distinct = slices.Compact(distinct)

	result := &entities.GameResult{
		ID:            g.ID,
		ChannelID:     g.ChannelID,
		GameType:      entities.GameTypeNoThanks,
		StartedAt:     g.StartedAt,
		CompletedAt:   g.CompletedAt,
		Turns:         g.Turns,
		PlayerResults: make([]*entities.PlayerResult, 0, len(g.Seats)),
	}

	for i, s := range g.Seats {
		rank, _ := slices.BinarySearch(distinct, scores[i])
		outcome := entities.ResultLose
		if rank == 0 {
			outcome = entities.ResultWin
		}
		result.PlayerResults = append(result.PlayerResults, &entities.PlayerResult{
			PlayerID: s.ID,
			Name:     s.Name,
			Strategy: s.Strategy,
			Cards:    s.Hand.Values(),
			Chips:    s.Chips,
			Score:    scores[i],
			Rank:     rank + 1,
			Result:   outcome,
		})
	}

	return result, nil
}
