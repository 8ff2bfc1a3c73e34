package nothanks

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	discordmock "github.com/fadedpez/nothanks/internal/discord/mock"
	"github.com/fadedpez/nothanks/internal/types"
	"github.com/fadedpez/nothanks/pkg/entities"
	"github.com/fadedpez/nothanks/pkg/players"
	mock_publisher "github.com/fadedpez/nothanks/pkg/publisher/mock"
	"github.com/fadedpez/nothanks/pkg/repositories/game"
	mock_game "github.com/fadedpez/nothanks/pkg/repositories/game/mock"
	engine "github.com/fadedpez/nothanks/pkg/services/nothanks"
	"github.com/fadedpez/nothanks/pkg/services/statistics"
	"github.com/fadedpez/nothanks/pkg/storage"
	"github.com/fadedpez/nothanks/pkg/storage/file"
)

const channel = "channel-1"

type ManagerTestSuite struct {
	suite.Suite
	ctx       context.Context
	storage   *file.Storage
	repo      *game.MemoryRepository
	stats     *statistics.Service
	publisher *mock_publisher.Publisher
	session   *discordmock.SessionHandler
	manager   *Manager

	// last response sent through the session
	sent *discordgo.InteractionResponse
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

func (s *ManagerTestSuite) SetupTest() {
	s.ctx = context.Background()

	store, err := file.New(&storage.Options{Path: filepath.Join(s.T().TempDir(), "games.json")})
	s.Require().NoError(err)
	s.storage = store

	s.repo = game.NewMemoryRepository()
	s.stats = statistics.NewService(s.repo)
	s.publisher = new(mock_publisher.Publisher)
	s.publisher.Test(s.T())
	s.session = &discordmock.SessionHandler{}
	s.session.Test(s.T())
	s.session.On("InteractionRespond", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			s.sent = args.Get(1).(*discordgo.InteractionResponse)
		}).
		Return(nil)

	s.manager = NewManager(s.storage, s.repo, s.stats, s.publisher, players.DefaultRegistry())
	s.manager.newRNG = func() *rand.Rand { return rand.New(rand.NewSource(7)) }
	s.sent = nil
}

func (s *ManagerTestSuite) TearDownTest() {
	s.storage.Close()
}

func member(userID string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: userID, Username: userID}}
}

func command(userID, name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "command",
		Type:      discordgo.InteractionApplicationCommand,
		ChannelID: channel,
		Member:    member(userID),
		Data:      discordgo.ApplicationCommandInteractionData{Name: name, Options: opts},
	}}
}

func button(userID, customID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:        "button",
		Type:      discordgo.InteractionMessageComponent,
		ChannelID: channel,
		Member:    member(userID),
		Data:      discordgo.MessageComponentInteractionData{CustomID: customID},
	}}
}

func botsOption(n int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name: "bots", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(n),
	}
}

func strategyOption(name string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name: "strategy", Type: discordgo.ApplicationCommandOptionString, Value: name,
	}
}

// table restores the channel's stored snapshot
func (s *ManagerTestSuite) table() *engine.Game {
	state, err := s.storage.LoadGameByChannel(s.ctx, channel)
	s.Require().NoError(err)
	g, err := engine.Restore(state.State, players.DefaultRegistry(), rand.New(rand.NewSource(1)))
	s.Require().NoError(err)
	return g
}

func (s *ManagerTestSuite) seatIDs(g *engine.Game) []string {
	ids := make([]string, 0, len(g.Seats))
	for _, seat := range g.Seats {
		ids = append(ids, seat.ID)
	}
	return ids
}

func (s *ManagerTestSuite) TestStartOpensTable() {
	// Execute
	s.manager.HandleCommand(s.session, command("alice", CommandPlay, botsOption(2), strategyOption(players.StrategyAlwaysTake)))

	// Assert
	s.Require().NotNil(s.sent)
	s.Equal(discordgo.InteractionResponseChannelMessageWithSource, s.sent.Type, "Response type should match")
	s.Contains(s.sent.Data.Content, "waiting for players (3/7)")
	s.Zero(s.sent.Data.Flags, "Table should be public")
	s.NotEmpty(s.sent.Data.Components, "Table should have buttons")

	g := s.table()
	s.Equal(entities.StateWaiting, g.State)
	s.Equal("alice", g.CreatorID)
	s.Equal([]string{"alice", "bot:always-take#1", "bot:always-take#2"}, s.seatIDs(g))
	s.True(g.Seats[1].IsBot(), "Bot seat should be rebuilt from its strategy")
}

func (s *ManagerTestSuite) TestStartSingleBotDefaultsToBasic() {
	// Execute
	s.manager.HandleCommand(s.session, command("alice", CommandPlay, botsOption(1)))

	// Assert
	g := s.table()
	s.Equal([]string{"alice", "bot:basic"}, s.seatIDs(g))
	s.Equal(players.StrategyBasic, g.Seats[1].Strategy)
}

func (s *ManagerTestSuite) TestStartErrors() {
	testCases := []struct {
		name        string
		setup       func()
		interaction func() *discordgo.InteractionCreate
		expected    string
	}{
		{
			name: "too many bots",
			interaction: func() *discordgo.InteractionCreate {
				return command("alice", CommandPlay, botsOption(entities.MaxPlayers))
			},
			expected: "❗ Between 0 and 6 bots can join a table",
		},
		{
			name: "unknown strategy",
			interaction: func() *discordgo.InteractionCreate {
				return command("alice", CommandPlay, botsOption(1), strategyOption("card-counter"))
			},
			expected: "🤖 Unknown strategy card-counter",
		},
		{
			name:  "table already open",
			setup: func() { s.manager.HandleCommand(s.session, command("bob", CommandPlay)) },
			interaction: func() *discordgo.InteractionCreate {
				return command("alice", CommandPlay)
			},
			expected: "🎮 A table is already open in this channel",
		},
		{
			name: "no channel",
			interaction: func() *discordgo.InteractionCreate {
				i := command("alice", CommandPlay)
				i.ChannelID = ""
				return i
			},
			expected: "⛔ Tables can only be opened in a channel",
		},
		{
			name: "no user",
			interaction: func() *discordgo.InteractionCreate {
				i := command("alice", CommandPlay)
				i.Member = nil
				return i
			},
			expected: "👤 Could not tell who pressed that",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			// Setup
			s.SetupTest()
			if tc.setup != nil {
				tc.setup()
			}

			// Execute
			s.manager.HandleCommand(s.session, tc.interaction())

			// Assert
			s.Require().NotNil(s.sent)
			s.Equal(tc.expected, s.sent.Data.Content, "Error message should match")
			s.Equal(discordgo.MessageFlagsEphemeral, s.sent.Data.Flags, "Errors should be ephemeral")
		})
	}
}

func (s *ManagerTestSuite) TestJoinAndStart() {
	// Setup
	s.manager.HandleCommand(s.session, command("alice", CommandPlay))

	// Execute
	s.manager.HandleButton(s.session, button("bob", ButtonJoin))
	s.manager.HandleButton(s.session, button("bob", ButtonJoin))
	dupe := s.sent
	s.manager.HandleButton(s.session, button("carol", ButtonJoin))
	s.manager.HandleButton(s.session, button("bob", ButtonStart))
	notCreator := s.sent
	s.manager.HandleButton(s.session, button("alice", ButtonStart))

	// Assert
	s.Equal("✋ bob is already seated", dupe.Data.Content)
	s.Equal("👑 Only the player who opened the table can start it", notCreator.Data.Content)

	s.Equal(discordgo.InteractionResponseUpdateMessage, s.sent.Type, "Start should update the table")
	s.Contains(s.sent.Data.Content, "alice to act.")

	g := s.table()
	s.Equal(entities.StatePlaying, g.State)
	s.Equal([]string{"alice", "bob", "carol"}, s.seatIDs(g))
	for _, seat := range g.Seats {
		s.Equal(11, seat.Chips, "Three players start with 11 chips")
	}
}

func (s *ManagerTestSuite) TestStartNeedsThreePlayers() {
	// Setup
	s.manager.HandleCommand(s.session, command("alice", CommandPlay, botsOption(1)))

	// Execute
	s.manager.HandleButton(s.session, button("alice", ButtonStart))

	// Assert
	s.Equal("🤷 at least 3 players are needed", s.sent.Data.Content)
	s.Equal(entities.StateWaiting, s.table().State)
}

func (s *ManagerTestSuite) TestTurnOrder() {
	// Setup
	s.manager.HandleCommand(s.session, command("alice", CommandPlay))
	s.manager.HandleButton(s.session, button("bob", ButtonJoin))
	s.manager.HandleButton(s.session, button("carol", ButtonJoin))
	s.manager.HandleButton(s.session, button("alice", ButtonStart))

	// Execute
	s.manager.HandleButton(s.session, button("bob", ButtonTake))
	outOfTurn := s.sent
	s.manager.HandleButton(s.session, button("dave", ButtonPass))
	stranger := s.sent
	s.manager.HandleButton(s.session, button("alice", ButtonPass))

	// Assert
	s.Equal("⏳ It's not your turn", outOfTurn.Data.Content)
	s.Equal("👤 You are not seated at this table", stranger.Data.Content)

	g := s.table()
	s.Equal(1, g.Current, "Play should move to bob after alice passes")
	s.Equal(1, g.Pot)
	s.Equal(10, g.Seats[0].Chips)
}

func (s *ManagerTestSuite) TestFinishedGameIsRecorded() {
	// Setup
	s.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(r *entities.GameResult) bool {
		return r.ChannelID == channel
	})).Return(nil).Once()
	s.manager.HandleCommand(s.session, command("alice", CommandPlay, botsOption(2), strategyOption(players.StrategyAlwaysTake)))
	s.manager.HandleButton(s.session, button("alice", ButtonStart))

	// Execute
	// the first bot takes the card and every card after it
	s.manager.HandleButton(s.session, button("alice", ButtonPass))

	// Assert
	s.Equal(discordgo.InteractionResponseUpdateMessage, s.sent.Type)
	s.Contains(s.sent.Data.Content, "🏁 **No Thanks!** finished")
	s.NotContains(s.sent.Data.Content, "⚠️")
	s.Empty(s.sent.Data.Components, "Finished table should have no buttons")

	_, err := s.storage.LoadGameByChannel(s.ctx, channel)
	s.ErrorIs(err, storage.ErrGameNotFound, "Snapshot should be deleted")

	results, err := s.repo.GetChannelResults(s.ctx, channel, 0)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	result := results[0]
	s.Equal([]string{"bot:always-take#2"}, result.Winners(), "The bot that never took a card should win")
	s.Len(result.PlayerResults[1].Cards, entities.DealtCards)

	alice, err := s.stats.GetPlayerStatistics(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(1, alice.GamesPlayed)
	s.Equal(1, alice.Losses)
	s.Equal(-10, alice.BestScore)

	s.publisher.AssertExpectations(s.T())

	// the channel is free again
	s.manager.HandleCommand(s.session, command("bob", CommandPlay))
	s.Contains(s.sent.Data.Content, "waiting for players")
}

func (s *ManagerTestSuite) TestRecordingFailureStillClosesTable() {
	// Setup
	ctrl := gomock.NewController(s.T())
	repo := mock_game.NewMockRepository(ctrl)
	repo.EXPECT().SaveGameResult(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	s.manager.repository = repo

	s.manager.HandleCommand(s.session, command("alice", CommandPlay, botsOption(2), strategyOption(players.StrategyAlwaysTake)))
	s.manager.HandleButton(s.session, button("alice", ButtonStart))

	// Execute
	s.manager.HandleButton(s.session, button("alice", ButtonPass))

	// Assert
	s.Contains(s.sent.Data.Content, "🏁")
	s.Contains(s.sent.Data.Content, "⚠️ Results could not be recorded")
	_, err := s.storage.LoadGameByChannel(s.ctx, channel)
	s.ErrorIs(err, storage.ErrGameNotFound, "Snapshot should be deleted")
	s.publisher.AssertNotCalled(s.T(), "Publish", mock.Anything, mock.Anything)
}

func (s *ManagerTestSuite) TestButtonWithoutTable() {
	// Execute
	s.manager.HandleButton(s.session, button("alice", ButtonTake))

	// Assert
	s.Equal("🔍 No table is open in this channel, use /nothanks to open one", s.sent.Data.Content)
}

func (s *ManagerTestSuite) TestLeaderboard() {
	// Setup
	for i := range 12 {
		stats := entities.NewPlayerStatistics(string(rune('a'+i)), entities.GameTypeNoThanks)
		stats.GamesPlayed = 1
		stats.Rating = 1000 + i
		s.Require().NoError(s.repo.SavePlayerStatistics(s.ctx, stats))
	}

	// Execute
	s.manager.HandleCommand(s.session, command("alice", CommandLeaderboard))
	first := s.sent
	s.manager.HandleButton(s.session, button("alice", leaderboardPrefix+"2"))

	// Assert
	s.Require().Len(first.Data.Embeds, 1)
	s.Equal("Showing page 1 of 2 (12 total players)", first.Data.Embeds[0].Description)
	s.Len(first.Data.Embeds[0].Fields, 10)
	s.Contains(first.Data.Embeds[0].Fields[0].Name, "👑 👤 l")

	s.Equal(discordgo.InteractionResponseUpdateMessage, s.sent.Type, "Paging should update the message")
	s.Equal("Showing page 2 of 2 (12 total players)", s.sent.Data.Embeds[0].Description)
	s.Len(s.sent.Data.Embeds[0].Fields, 2)
}

func (s *ManagerTestSuite) TestEmptyLeaderboard() {
	// Execute
	s.manager.HandleCommand(s.session, command("alice", CommandLeaderboard))

	// Assert
	s.Require().Len(s.sent.Data.Embeds, 1)
	s.Equal("No games have been played yet.", s.sent.Data.Embeds[0].Description)
	s.Empty(s.sent.Data.Components)
}

// recordGame stores a finished three-seat game the way a closing table does
func (s *ManagerTestSuite) recordGame(id, channelID string, at time.Time, winner string, seats ...string) {
	result := &entities.GameResult{
		ID:          id,
		ChannelID:   channelID,
		GameType:    entities.GameTypeNoThanks,
		StartedAt:   at.Add(-10 * time.Minute),
		CompletedAt: at,
		Turns:       50,
	}
	for k, p := range seats {
		pr := &entities.PlayerResult{PlayerID: p, Name: "name-" + p, Score: 10 + k, Rank: k + 2, Result: entities.ResultLose}
		if p == winner {
			pr.Score, pr.Rank, pr.Result = 5, 1, entities.ResultWin
		}
		result.PlayerResults = append(result.PlayerResults, pr)
	}
	s.Require().NoError(s.repo.SaveGameResult(s.ctx, result))
	s.Require().NoError(s.stats.RecordGame(s.ctx, result))
}

func (s *ManagerTestSuite) TestStatsForCaller() {
	// Setup
	at := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	s.recordGame("g1", channel, at, "alice", "alice", "bob", "carol")
	s.recordGame("g2", channel, at.Add(time.Hour), "bob", "alice", "bob", "carol")

	// Execute
	s.manager.HandleCommand(s.session, command("alice", CommandStats))

	// Assert
	s.Require().NotNil(s.sent)
	s.Require().Len(s.sent.Data.Embeds, 1)
	embed := s.sent.Data.Embeds[0]
	s.Equal("🃏 No Thanks stats for alice", embed.Title)

	values := map[string]string{}
	for _, f := range embed.Fields {
		values[f.Name] = f.Value
	}
	s.Equal("1W-1L", values["Record"], "Record should match")
	s.Equal("50.0%", values["Win Rate"])
	s.Equal("5", values["Best Score"])
	s.Equal("May 1 21:00 #2 score **10** of 3 players\nMay 1 20:00 🏆 score **5** of 3 players",
		values["Recent Games"], "Newest game should come first")
}

func (s *ManagerTestSuite) TestStatsForAnotherUser() {
	// Setup
	s.recordGame("g1", channel, time.Now(), "bob", "alice", "bob", "carol")
	interaction := command("alice", CommandStats, &discordgo.ApplicationCommandInteractionDataOption{
		Name: "user", Type: discordgo.ApplicationCommandOptionUser, Value: "bob",
	})
	data := interaction.Data.(discordgo.ApplicationCommandInteractionData)
	data.Resolved = &discordgo.ApplicationCommandInteractionDataResolved{
		Users: map[string]*discordgo.User{"bob": {ID: "bob", Username: "bob", GlobalName: "Bobby"}},
	}
	interaction.Data = data

	// Execute
	s.manager.HandleCommand(s.session, interaction)

	// Assert
	s.Require().Len(s.sent.Data.Embeds, 1)
	s.Equal("🃏 No Thanks stats for Bobby", s.sent.Data.Embeds[0].Title)
	s.Equal("1W-0L", s.sent.Data.Embeds[0].Fields[1].Value)
}

func (s *ManagerTestSuite) TestStatsWithoutGames() {
	// Execute
	s.manager.HandleCommand(s.session, command("dave", CommandStats))

	// Assert
	s.Require().Len(s.sent.Data.Embeds, 1)
	s.Equal("dave has not finished a game yet.", s.sent.Data.Embeds[0].Description)
	s.Empty(s.sent.Data.Embeds[0].Fields)
}

func (s *ManagerTestSuite) TestStatsReadError() {
	// Setup
	ctrl := gomock.NewController(s.T())
	repo := mock_game.NewMockRepository(ctrl)
	repo.EXPECT().GetPlayerStatistics(gomock.Any(), "alice", entities.GameTypeNoThanks).
		Return(nil, types.NewGameError(types.ErrDatabaseError, "Database unavailable"))
	s.manager.stats = statistics.NewService(repo)

	// Execute
	s.manager.HandleCommand(s.session, command("alice", CommandStats))

	// Assert
	s.Require().NotNil(s.sent)
	s.Equal(discordgo.MessageFlagsEphemeral, s.sent.Data.Flags, "Errors should be ephemeral")
	s.Contains(s.sent.Data.Content, "Database unavailable")
}

func (s *ManagerTestSuite) TestChannelHistory() {
	// Setup
	at := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)
	for k := range 7 {
		s.recordGame(fmt.Sprintf("g%d", k), channel, at.Add(time.Duration(k)*time.Hour), "bob", "alice", "bob", "carol")
	}
	s.recordGame("elsewhere", "channel-2", at.Add(24*time.Hour), "alice", "alice", "bob", "carol")

	// Execute
	s.manager.HandleCommand(s.session, command("alice", CommandHistory))

	// Assert
	s.Require().Len(s.sent.Data.Embeds, 1)
	fields := s.sent.Data.Embeds[0].Fields
	s.Require().Len(fields, recentGamesShown, "Only the newest games should be shown")
	s.Equal("May 2 02:00 (50 turns)", fields[0].Name, "Newest game should come first")
	s.Equal("name-alice 10 | 🏆 name-bob **5** | name-carol 12", fields[0].Value)
}

func (s *ManagerTestSuite) TestEmptyChannelHistory() {
	// Execute
	s.manager.HandleCommand(s.session, command("alice", CommandHistory))

	// Assert
	s.Require().Len(s.sent.Data.Embeds, 1)
	s.Equal("No games have finished in this channel yet.", s.sent.Data.Embeds[0].Description)
}

func (s *ManagerTestSuite) TestCommands() {
	// Execute
	cmds := s.manager.Commands()

	// Assert
	s.Require().Len(cmds, 4)
	s.Equal(CommandPlay, cmds[0].Name)
	s.Equal(CommandLeaderboard, cmds[1].Name)
	s.Equal(CommandStats, cmds[2].Name)
	s.Equal(discordgo.ApplicationCommandOptionUser, cmds[2].Options[0].Type)
	s.Equal(CommandHistory, cmds[3].Name)

	var strategies []string
	for _, choice := range cmds[0].Options[1].Choices {
		strategies = append(strategies, choice.Name)
	}
	s.Equal(players.DefaultRegistry().Names(), strategies)
}

func (s *ManagerTestSuite) TestFactoryCreatesManager() {
	// Setup
	factory := NewFactory(s.storage, s.repo, s.stats, nil, players.DefaultRegistry())

	// Execute
	manager, ok := factory.CreateManager().(*Manager)

	// Assert
	s.Require().True(ok, "Factory should create a No Thanks manager")
	s.Equal(s.storage, manager.storage)
	s.NotNil(manager.publisher, "A nil publisher should be replaced")
}

func TestFormatCards(t *testing.T) {
	testCases := []struct {
		name     string
		cards    []int
		expected string
	}{
		{name: "empty", cards: nil, expected: "no cards"},
		{name: "single", cards: []int{17}, expected: "17"},
		{name: "run", cards: []int{3, 4, 5}, expected: "3-5"},
		{name: "mixed", cards: []int{3, 4, 5, 9, 20, 21}, expected: "3-5, 9, 20-21"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatCards(tc.cards); got != tc.expected {
				t.Errorf("FormatCards(%v) = %q, want %q", tc.cards, got, tc.expected)
			}
		})
	}
}
