// Package players holds the take-or-pass strategies that sit at a No Thanks table.
package players

// Hand is the read-only view of a player's cards that strategies may inspect.
// *sortedlist.SortedList[int] satisfies it.
type Hand interface {
	Size() int
	Get(index int) (int, error)
	Contains(card int) bool
}

// Player decides whether to take the face-up card. hands is indexed by seat
// number and hands[me] is the deciding player's own hand. Implementations must
// not modify any hand.
type Player interface {
	OfferedCard(card, chipsOnCard int, hands []Hand, me, myChips int) bool
}

// PlayerFunc adapts an ordinary function to the Player interface.
type PlayerFunc func(card, chipsOnCard int, hands []Hand, me, myChips int) bool

// OfferedCard calls f.
func (f PlayerFunc) OfferedCard(card, chipsOnCard int, hands []Hand, me, myChips int) bool {
	return f(card, chipsOnCard, hands, me, myChips)
}

// Adjacent reports whether hand already holds card-1 or card+1.
func Adjacent(hand Hand, card int) bool {
	return hand.Contains(card+1) || hand.Contains(card-1)
}

// CardsInHands sums the sizes of every hand.
func CardsInHands(hands []Hand) int {
	total := 0
	for _, h := range hands {
		total += h.Size()
	}
	return total
}
