// Package nothanks runs a single game of No Thanks: 24 of the cards 3..35 are
// offered one at a time and each player either pays a chip to pass or takes
// the card together with every chip paid on it.
package nothanks

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/fadedpez/nothanks/internal/logging"
	"github.com/fadedpez/nothanks/internal/types"
	"github.com/fadedpez/nothanks/pkg/entities"
	"github.com/fadedpez/nothanks/pkg/players"
	"github.com/fadedpez/nothanks/pkg/sortedlist"
)

// Seat is one player at the table. Bots carry a strategy; humans act through Take and Pass.
type Seat struct {
	ID       string                      `json:"id"`
	Name     string                      `json:"name"`
	Strategy string                      `json:"strategy,omitempty"`
	Chips    int                         `json:"chips"`
	Hand     *sortedlist.SortedList[int] `json:"hand"`

	player players.Player
}

// IsBot reports whether the seat is played by a strategy
func (s *Seat) IsBot() bool {
	return s.player != nil
}

// Game is the state of one table. It is not safe for concurrent use.
type Game struct {
	ID          string             `json:"id"`
	ChannelID   string             `json:"channel_id"`
	CreatorID   string             `json:"creator_id,omitempty"`
	State       entities.GameState `json:"state"`
	Seats       []*Seat            `json:"seats"`
	Deck        *entities.Deck     `json:"deck"`
	Card        int                `json:"card"`
	Pot         int                `json:"pot"`
	Current     int                `json:"current"`
	Turns       int                `json:"turns"`
	StartedAt   time.Time          `json:"started_at"`
	CompletedAt time.Time          `json:"completed_at"`
}

// NewGame creates an empty table waiting for players
func NewGame(channelID string) *Game {
	return &Game{
		ID:        uuid.New().String(),
		ChannelID: channelID,
		State:     entities.StateWaiting,
		Seats:     make([]*Seat, 0, entities.MaxPlayers),
		Deck:      &entities.Deck{},
	}
}

// AddSeat seats a player. Pass a nil Player for a human.
func (g *Game) AddSeat(id, name string, p players.Player, strategy string) error {
	if g.State != entities.StateWaiting {
		return types.NewGameError(types.ErrGameInProgress, "Cannot join a game in progress")
	}
	if g.seat(id) != nil {
		return types.NewGameError(types.ErrAlreadyJoined, fmt.Sprintf("%s is already seated", name))
	}
	if len(g.Seats) >= entities.MaxPlayers {
		return types.NewGameError(types.ErrTooManyPlayers,
			fmt.Sprintf("Game is full (%d/%d players)", len(g.Seats), entities.MaxPlayers))
	}

	g.Seats = append(g.Seats, &Seat{
		ID:       id,
		Name:     name,
		Strategy: strategy,
		Hand:     sortedlist.New[int](),
		player:   p,
	})
	return nil
}

// Start deals chips, shuffles, hides nine cards and turns over the first card
func (g *Game) Start(rng *rand.Rand) error {
	if g.State != entities.StateWaiting {
		return types.NewGameError(types.ErrGameInProgress, "Game has already started")
	}

	chips, err := entities.StartingChips(len(g.Seats))
	if err != nil {
		return err
	}

	g.Deck = entities.NewDeck()
	g.Deck.Shuffle(rng)
	g.Deck.Trim(entities.RemovedCards)

	for _, s := range g.Seats {
		s.Chips = chips
		s.Hand.Clear()
	}

	g.State = entities.StatePlaying
	g.Current = 0
	g.Turns = 0
	g.StartedAt = time.Now()
	g.flip()
	return nil
}

// Take gives the face-up card and the pot to the current player, who then
// faces the next card.
func (g *Game) Take(seatID string) error {
	s, err := g.checkTurn(seatID)
	if err != nil {
		return err
	}

	s.Hand.Add(g.Card)
	s.Chips += g.Pot
	g.Turns++
	g.flip()
	return nil
}

// Pass pays one chip onto the face-up card and moves play to the next seat
func (g *Game) Pass(seatID string) error {
	s, err := g.checkTurn(seatID)
	if err != nil {
		return err
	}
	if s.Chips == 0 {
		return types.NewGameError(types.ErrNoChips, "No chips left, you must take the card")
	}

	s.Chips--
	g.Pot++
	g.Turns++
	g.Current = (g.Current + 1) % len(g.Seats)
	return nil
}

// CurrentSeat returns the seat to act, or nil when the game is not in play
func (g *Game) CurrentSeat() *Seat {
	if g.State != entities.StatePlaying {
		return nil
	}
	return g.Seats[g.Current]
}

// Hands returns every seat's hand in seat order
func (g *Game) Hands() []players.Hand {
	hands := make([]players.Hand, len(g.Seats))
	for i, s := range g.Seats {
		hands[i] = s.Hand
	}
	return hands
}

// Decide asks the current bot whether to take the face-up card. A bot with
// no chips always takes.
func (g *Game) Decide() (bool, error) {
	s := g.CurrentSeat()
	if s == nil {
		return false, types.NewGameError(types.ErrInvalidState, "Game is not in play")
	}
	if !s.IsBot() {
		return false, types.NewGameError(types.ErrInvalidAction, fmt.Sprintf("%s is not a bot", s.Name))
	}
	if s.Chips == 0 {
		return true, nil
	}
	return s.player.OfferedCard(g.Card, g.Pot, g.Hands(), g.Current, s.Chips), nil
}

// Step lets the current bot act once
func (g *Game) Step() error {
	take, err := g.Decide()
	if err != nil {
		return err
	}
	id := g.Seats[g.Current].ID
	if take {
		return g.Take(id)
	}
	return g.Pass(id)
}

// PlayBots advances the game until a human is to act or the game ends
func (g *Game) PlayBots() error {
	for {
		s := g.CurrentSeat()
		if s == nil || !s.IsBot() {
			return nil
		}
		if err := g.Step(); err != nil {
			return err
		}
	}
}

// IsFinished returns whether every card has been taken
func (g *Game) IsFinished() bool {
	return g.State == entities.StateComplete
}

// Remaining is the number of face-down cards still to be offered
func (g *Game) Remaining() int {
	return g.Deck.Remaining()
}

// MarshalState encodes the table for storage
func (g *Game) MarshalState() (json.RawMessage, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, types.WrapError(types.ErrInternalError, "Failed to encode game state", err)
	}
	return data, nil
}

// Restore rebuilds a table from MarshalState output. Bot seats are rebuilt
// from their strategy name through registry.
func Restore(data json.RawMessage, registry *players.Registry, rng *rand.Rand) (*Game, error) {
	g := &Game{}
	if err := json.Unmarshal(data, g); err != nil {
		return nil, types.WrapError(types.ErrInternalError, "Failed to decode game state", err)
	}
	if g.Deck == nil {
		g.Deck = &entities.Deck{}
	}
	for _, s := range g.Seats {
		if s == nil {
			return nil, types.NewGameError(types.ErrInvalidState, "Stored game has an empty seat")
		}
		if s.Hand == nil {
			s.Hand = sortedlist.New[int]()
		}
		if s.Strategy == "" {
			continue
		}
		p, err := registry.New(s.Strategy, rng)
		if err != nil {
			return nil, err
		}
		s.player = p
	}
	if g.State == entities.StatePlaying {
		if len(g.Seats) < entities.MinPlayers || len(g.Seats) > entities.MaxPlayers {
			return nil, types.NewGameError(types.ErrInvalidState,
				fmt.Sprintf("Stored game has %d seats", len(g.Seats)))
		}
		if g.Current < 0 || g.Current >= len(g.Seats) {
			return nil, types.NewGameError(types.ErrInvalidState, "Stored game has no valid current seat")
		}
	}
	return g, nil
}

func (g *Game) seat(id string) *Seat {
	for _, s := range g.Seats {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (g *Game) checkTurn(seatID string) (*Seat, error) {
	switch g.State {
	case entities.StateWaiting:
		return nil, types.NewGameError(types.ErrGameNotStarted, "Game has not started")
	case entities.StateComplete:
		return nil, types.NewGameError(types.ErrGameAlreadyEnded, "Game is over")
	}

	s := g.seat(seatID)
	if s == nil {
		return nil, types.NewGameError(types.ErrPlayerNotFound, "You are not seated at this table")
	}
	if g.Seats[g.Current] != s {
		return nil, types.NewGameError(types.ErrNotPlayerTurn, "It's not your turn")
	}
	return s, nil
}

// flip turns over the next card with an empty pot, or ends the game
func (g *Game) flip() {
	g.Pot = 0
	card, ok := g.Deck.Draw()
	if !ok {
		g.Card = 0
		g.State = entities.StateComplete
		g.CompletedAt = time.Now()
		logging.Default.Debug("Game %s finished after %d turns", g.ID, g.Turns)
		return
	}
	g.Card = card
}
