package statistics

import "math"

// EloK is the rating swing of a two-player game. Larger tables split it over
// every opponent so one game moves a rating by at most EloK.
const EloK = 32

// ComputeEloUpdates returns new ratings for a finished table. Each pair of seats
// is scored as a head-to-head game: the lower final score wins, equal scores draw.
// ratings and scores are indexed by seat; ratings never drop below zero.
func ComputeEloUpdates(ratings, scores []int) []int {
	n := len(ratings)
	updated := make([]int, n)
	copy(updated, ratings)
	if n < 2 {
		return updated
	}

	k := float64(EloK) / float64(n-1)
	for i := range n {
		var delta float64
		for j := range n {
			if i == j {
				continue
			}
			var actual float64
			switch {
			case scores[i] < scores[j]:
				actual = 1
			case scores[i] == scores[j]:
				actual = 0.5
			}
			expected := 1 / (1 + math.Pow(10, float64(ratings[j]-ratings[i])/400))
			delta += actual - expected
		}
		updated[i] = max(ratings[i]+int(math.Round(k*delta)), 0)
	}
	return updated
}
