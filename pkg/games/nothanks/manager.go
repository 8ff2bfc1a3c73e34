// Package nothanks plays No Thanks tables in Discord channels. One table can
// be open per channel; its snapshot lives in storage between interactions.
package nothanks

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/fadedpez/nothanks/internal/discord"
	"github.com/fadedpez/nothanks/internal/games"
	"github.com/fadedpez/nothanks/internal/logging"
	"github.com/fadedpez/nothanks/internal/types"
	"github.com/fadedpez/nothanks/pkg/entities"
	"github.com/fadedpez/nothanks/pkg/players"
	"github.com/fadedpez/nothanks/pkg/publisher"
	"github.com/fadedpez/nothanks/pkg/repositories/game"
	engine "github.com/fadedpez/nothanks/pkg/services/nothanks"
	"github.com/fadedpez/nothanks/pkg/services/statistics"
	"github.com/fadedpez/nothanks/pkg/storage"
)

// Name is the game's registry name and button prefix
const Name = "nothanks"

// Command names
const (
	CommandPlay        = "nothanks"
	CommandLeaderboard = "nothanks-leaderboard"
	CommandStats       = "nothanks-stats"
	CommandHistory     = "nothanks-history"
)

// Button custom IDs
const (
	ButtonJoin  = "nothanks_join"
	ButtonStart = "nothanks_start"
	ButtonTake  = "nothanks_take"
	ButtonPass  = "nothanks_pass"
)

const defaultStrategy = players.StrategyBasic

// Manager runs every No Thanks table the bot hosts
type Manager struct {
	storage    storage.Storage
	repository game.Repository
	stats      *statistics.Service
	publisher  publisher.Publisher
	registry   *players.Registry
	newRNG     func() *rand.Rand

	// one lock per channel so two clicks on the same table apply in order
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ games.Manager = (*Manager)(nil)

// NewManager creates a table manager. A nil publisher disables publishing.
func NewManager(store storage.Storage, repository game.Repository, stats *statistics.Service, pub publisher.Publisher, registry *players.Registry) *Manager {
	if pub == nil {
		pub = publisher.NewNop()
	}
	return &Manager{
		storage:    store,
		repository: repository,
		stats:      stats,
		publisher:  pub,
		registry:   registry,
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		locks: make(map[string]*sync.Mutex),
	}
}

// Commands implements games.Manager
func (m *Manager) Commands() []*discordgo.ApplicationCommand {
	minBots, maxBots := float64(0), float64(entities.MaxPlayers-1)
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0)
	for _, name := range m.registry.Names() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandPlay,
			Description: "Open a No Thanks table in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "bots",
					Description: "Number of bots to seat",
					MinValue:    &minBots,
					MaxValue:    maxBots,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "strategy",
					Description: "Strategy the bots play",
					Choices:     choices,
				},
			},
		},
		{
			Name:        CommandLeaderboard,
			Description: "Show the No Thanks ratings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "page",
					Description: "Leaderboard page",
				},
			},
		},
	}
}

// HandleCommand implements games.Manager
func (m *Manager) HandleCommand(s discord.SessionHandler, i *discordgo.InteractionCreate) {
	switch name := i.ApplicationCommandData().Name; name {
	case CommandPlay:
		m.HandleStart(s, i)
	case CommandLeaderboard:
		page := 1
		for _, opt := range i.ApplicationCommandData().Options {
			if opt.Name == "page" {
				page = int(opt.IntValue())
			}
		}
		m.sendLeaderboard(s, i, page, false)
	case CommandStats:
		m.sendPlayerStats(s, i)
	case CommandHistory:
		m.sendChannelHistory(s, i)
	default:
		discord.SendErrorResponse(s, i, types.NewGameError(types.ErrInvalidCommand, fmt.Sprintf("Unknown command %s", name)))
	}
}

// HandleStart opens a table with the invoking user in the first seat and
// any requested bots after them
func (m *Manager) HandleStart(s discord.SessionHandler, i *discordgo.InteractionCreate) {
	user, err := interactionUser(i)
	if err != nil {
		discord.SendErrorResponse(s, i, err)
		return
	}
	if i.ChannelID == "" {
		discord.SendErrorResponse(s, i, types.NewGameError(types.ErrInvalidCommand, "Tables can only be opened in a channel"))
		return
	}

	bots, strategy := 0, defaultStrategy
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "bots":
			bots = int(opt.IntValue())
		case "strategy":
			strategy = opt.StringValue()
		}
	}

	unlock := m.lock(i.ChannelID)
	defer unlock()

	ctx := context.Background()
	existing, err := m.load(ctx, i.ChannelID)
	if err != nil && !types.IsGameError(err, types.ErrGameNotFound) {
		discord.SendErrorResponse(s, i, err)
		return
	}
	if existing != nil {
		discord.SendErrorResponse(s, i, types.NewGameError(types.ErrGameInProgress, "A table is already open in this channel"))
		return
	}

	g, err := m.newTable(i.ChannelID, user, bots, strategy)
	if err != nil {
		discord.SendErrorResponse(s, i, err)
		return
	}
	if err := m.save(ctx, g, time.Time{}); err != nil {
		discord.SendErrorResponse(s, i, err)
		return
	}

	logging.Default.Info("Table %s opened in channel %s by %s with %d bots", g.ID, g.ChannelID, user.ID, bots)
	t := &Table{Game: g}
	if err := discord.SendGameResponse(s, i, t.String(), t.GetButtons()); err != nil {
		logging.Default.Error("Failed to send table %s: %v", g.ID, err)
	}
}

// HandleButton implements games.Manager
func (m *Manager) HandleButton(s discord.SessionHandler, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	if strings.HasPrefix(customID, leaderboardPrefix) {
		page, err := strconv.Atoi(strings.TrimPrefix(customID, leaderboardPrefix))
		if err != nil {
			discord.SendErrorResponse(s, i, types.WrapError(types.ErrInvalidArgument, "Bad leaderboard page", err))
			return
		}
		m.sendLeaderboard(s, i, page, true)
		return
	}

	user, err := interactionUser(i)
	if err != nil {
		discord.SendErrorResponse(s, i, err)
		return
	}

	unlock := m.lock(i.ChannelID)
	defer unlock()

	ctx := context.Background()
	state, err := m.storage.LoadGameByChannel(ctx, i.ChannelID)
	if err != nil {
		discord.SendErrorResponse(s, i, notFound(err))
		return
	}
	g, err := engine.Restore(state.State, m.registry, m.newRNG())
	if err != nil {
		discord.SendErrorResponse(s, i, err)
		return
	}

	switch customID {
	case ButtonJoin:
		err = g.AddSeat(user.ID, displayName(user), nil, "")
	case ButtonStart:
		if user.ID != g.CreatorID {
			err = types.NewGameError(types.ErrNotGameCreator, "Only the player who opened the table can start it")
			break
		}
		if err = g.Start(m.newRNG()); err == nil {
			err = g.PlayBots()
		}
	case ButtonTake:
		if err = g.Take(user.ID); err == nil {
			err = g.PlayBots()
		}
	case ButtonPass:
		if err = g.Pass(user.ID); err == nil {
			err = g.PlayBots()
		}
	default:
		err = types.NewGameError(types.ErrInvalidAction, fmt.Sprintf("Unknown button %s", customID))
	}
	if err != nil {
		discord.SendErrorResponse(s, i, err)
		return
	}

	t := &Table{Game: g}
	if g.IsFinished() {
		if err := m.finish(ctx, g); err != nil {
			logging.Default.LogError(err)
			t.Warning = "Results could not be recorded"
		}
	} else if err := m.save(ctx, g, state.CreatedAt); err != nil {
		discord.SendErrorResponse(s, i, err)
		return
	}

	if err := discord.UpdateGameResponse(s, i, t.String(), t.GetButtons()); err != nil {
		logging.Default.Error("Failed to update table %s: %v", g.ID, err)
	}
}

// newTable seats the creator and the requested bots
func (m *Manager) newTable(channelID string, creator *discordgo.User, bots int, strategy string) (*engine.Game, error) {
	if bots < 0 || bots > entities.MaxPlayers-1 {
		return nil, types.NewGameError(types.ErrInvalidArgument,
			fmt.Sprintf("Between 0 and %d bots can join a table", entities.MaxPlayers-1))
	}
	if !m.registry.Has(strategy) {
		return nil, types.NewGameError(types.ErrStrategyNotFound, fmt.Sprintf("Unknown strategy %s", strategy))
	}

	g := engine.NewGame(channelID)
	g.CreatorID = creator.ID
	if err := g.AddSeat(creator.ID, displayName(creator), nil, ""); err != nil {
		return nil, err
	}

	rng := m.newRNG()
	for k := 1; k <= bots; k++ {
		p, err := m.registry.New(strategy, rng)
		if err != nil {
			return nil, err
		}
		id, name := "bot:"+strategy, "Bot ("+strategy+")"
		if bots > 1 {
			id = fmt.Sprintf("%s#%d", id, k)
			name = fmt.Sprintf("Bot %d (%s)", k, strategy)
		}
		if err := g.AddSeat(id, name, p, strategy); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// finish records a finished table and drops its snapshot. The snapshot is
// removed even when recording fails so the channel is free again.
func (m *Manager) finish(ctx context.Context, g *engine.Game) error {
	log := logging.Default.With("table", g.ID, "channel", g.ChannelID)
	defer func() {
		if err := m.storage.DeleteGame(ctx, g.ID); err != nil {
			log.Error("Failed to delete finished table: %v", err)
		}
	}()

	result, err := g.Result()
	if err != nil {
		return err
	}
	if err := m.repository.SaveGameResult(ctx, result); err != nil {
		return types.WrapError(types.ErrDatabaseError, "Failed to save game result", err)
	}
	if err := m.stats.RecordGame(ctx, result); err != nil {
		return types.WrapError(types.ErrDatabaseError, "Failed to record statistics", err)
	}
	if err := m.publisher.Publish(ctx, result); err != nil {
		log.Warn("Failed to publish result: %v", err)
	}

	log.Info("Table finished, winners %v", result.Winners())
	return nil
}

func (m *Manager) load(ctx context.Context, channelID string) (*engine.Game, error) {
	state, err := m.storage.LoadGameByChannel(ctx, channelID)
	if err != nil {
		return nil, notFound(err)
	}
	return engine.Restore(state.State, m.registry, m.newRNG())
}

func (m *Manager) save(ctx context.Context, g *engine.Game, createdAt time.Time) error {
	data, err := g.MarshalState()
	if err != nil {
		return err
	}
	err = m.storage.SaveGame(ctx, &storage.GameState{
		ID:        g.ID,
		GameType:  entities.GameTypeNoThanks,
		ChannelID: g.ChannelID,
		CreatorID: g.CreatorID,
		State:     data,
		CreatedAt: createdAt,
	})
	if err != nil {
		return types.WrapError(types.ErrDatabaseError, "Failed to save table", err)
	}
	return nil
}

func (m *Manager) lock(channelID string) func() {
	m.mu.Lock()
	l, ok := m.locks[channelID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[channelID] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func notFound(err error) error {
	if errors.Is(err, storage.ErrGameNotFound) {
		return types.WrapError(types.ErrGameNotFound, "No table is open in this channel, use /nothanks to open one", err)
	}
	return types.WrapError(types.ErrDatabaseError, "Failed to load table", err)
}

func interactionUser(i *discordgo.InteractionCreate) (*discordgo.User, error) {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User, nil
	}
	if i.User != nil {
		return i.User, nil
	}
	return nil, types.NewGameError(types.ErrPlayerNotFound, "Could not tell who pressed that")
}

func displayName(u *discordgo.User) string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}
