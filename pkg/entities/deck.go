package entities

import "math/rand"

// Deck holds the face-down cards still to be offered
type Deck struct {
	Cards []int `json:"cards"`
}

// NewDeck creates an ordered deck with one card of each value from MinCard to MaxCard
func NewDeck() *Deck {
	cards := make([]int, 0, MaxCard-MinCard+1)
	for v := MinCard; v <= MaxCard; v++ {
		cards = append(cards, v)
	}
	return &Deck{Cards: cards}
}

// Shuffle randomizes the card order using rng
func (d *Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.Cards), func(i, j int) {
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	})
}

// Trim discards n cards from the bottom of the deck without revealing them
func (d *Deck) Trim(n int) {
	if n > len(d.Cards) {
		n = len(d.Cards)
	}
	d.Cards = d.Cards[:len(d.Cards)-n]
}

// Draw removes and returns the top card from the deck
func (d *Deck) Draw() (int, bool) {
	if len(d.Cards) == 0 {
		return 0, false
	}
	card := d.Cards[0]
	d.Cards = d.Cards[1:]
	return card, true
}

// Remaining returns the number of cards left to draw
func (d *Deck) Remaining() int {
	return len(d.Cards)
}
