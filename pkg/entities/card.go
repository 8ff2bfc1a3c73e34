package entities

import "github.com/fadedpez/nothanks/internal/types"

// Card values in a No Thanks deck
const (
	MinCard      = 3
	MaxCard      = 35
	RemovedCards = 9
	DealtCards   = MaxCard - MinCard + 1 - RemovedCards
)

// Table size limits
const (
	MinPlayers = 3
	MaxPlayers = 7
)

// StartingChips returns the chips each player receives for a table of the given size
func StartingChips(players int) (int, error) {
	switch {
	case players < MinPlayers:
		return 0, types.NewGameError(types.ErrNotEnoughPlayers, "at least 3 players are needed")
	case players <= 5:
		return 11, nil
	case players == 6:
		return 9, nil
	case players == MaxPlayers:
		return 7, nil
	default:
		return 0, types.NewGameError(types.ErrTooManyPlayers, "at most 7 players can sit at a table")
	}
}
