package players

import (
	"math/rand"

	"github.com/fadedpez/nothanks/pkg/entities"
)

// AlwaysTake takes every card it is offered.
var AlwaysTake Player = PlayerFunc(func(int, int, []Hand, int, int) bool {
	return true
})

// AlwaysReject passes unless the card extends a run it already holds.
var AlwaysReject Player = PlayerFunc(func(card, _ int, hands []Hand, me, _ int) bool {
	return Adjacent(hands[me], card)
})

// Random takes when broke, otherwise with probability 1/myChips.
func Random(rng *rand.Rand) Player {
	return PlayerFunc(func(_, _ int, _ []Hand, _, myChips int) bool {
		if myChips == 0 {
			return true
		}
		return rng.Intn(myChips) == 0
	})
}

// Thresholds used by Basic.
const (
	basicHighCard      = 33
	basicLateGame      = 3
	basicEarlyHandSize = 3
	basicRichPot       = 6
	basicCheapCard     = 20
)

// Basic is a hand-tuned heuristic:
//   - take anything that extends a run
//   - never take 33 or above otherwise
//   - take when the pot covers the card
//   - stay clear once fewer than three cards are left to deal
//   - with a short hand, take rich pots on mid-low cards
//   - otherwise take only when out of chips
var Basic Player = PlayerFunc(func(card, chipsOnCard int, hands []Hand, me, myChips int) bool {
	mine := hands[me]
	if Adjacent(mine, card) {
		return true
	}

	if card >= basicHighCard {
		return false
	}

	if card-chipsOnCard <= 0 {
		return true
	}

	left := entities.DealtCards - CardsInHands(hands)
	if left < basicLateGame {
		return false
	}

	if mine.Size() < basicEarlyHandSize {
		return chipsOnCard > basicRichPot && card-chipsOnCard/2 < basicCheapCard
	}

	return myChips == 0
})
