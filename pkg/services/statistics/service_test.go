package statistics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/fadedpez/nothanks/pkg/entities"
	"github.com/fadedpez/nothanks/pkg/repositories/game"
	mock_game "github.com/fadedpez/nothanks/pkg/repositories/game/mock"
)

func TestComputeEloUpdates(t *testing.T) {
	testCases := []struct {
		name     string
		ratings  []int
		scores   []int
		expected []int
	}{
		{"two players lower score wins", []int{1000, 1000}, []int{5, 10}, []int{1016, 984}},
		{"two players draw", []int{1000, 1000}, []int{7, 7}, []int{1000, 1000}},
		{"three players split K", []int{1000, 1000, 1000}, []int{1, 2, 3}, []int{1016, 1000, 984}},
		{"upset moves more", []int{1200, 1000}, []int{20, 10}, []int{1176, 1024}},
		{"floor at zero", []int{10, 10}, []int{1, 50}, []int{26, 0}},
		{"single player unchanged", []int{1000}, []int{3}, []int{1000}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeEloUpdates(tc.ratings, tc.scores)
			assert.Equal(t, tc.expected, got, "Ratings should match")
		})
	}
}

func TestComputeEloUpdatesDoesNotMutateInput(t *testing.T) {
	// Setup
	ratings := []int{1000, 1000}

	// Execute
	ComputeEloUpdates(ratings, []int{1, 2})

	// Assert
	assert.Equal(t, []int{1000, 1000}, ratings)
}

func nothanksResult(id string, completed time.Time, seats ...*entities.PlayerResult) *entities.GameResult {
	return &entities.GameResult{
		ID:            id,
		ChannelID:     "channel1",
		GameType:      entities.GameTypeNoThanks,
		CompletedAt:   completed,
		PlayerResults: seats,
	}
}

func TestRecordGame(t *testing.T) {
	// Setup
	ctx := context.Background()
	repo := game.NewMemoryRepository()
	service := NewService(repo)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	result := nothanksResult("g1", now,
		&entities.PlayerResult{PlayerID: "alice", Cards: []int{3, 4, 5}, Chips: 4, Score: -1, Result: entities.ResultWin},
		&entities.PlayerResult{PlayerID: "bob", Cards: []int{20}, Chips: 10, Score: 10, Rank: 1, Result: entities.ResultLose},
		&entities.PlayerResult{PlayerID: "carol", Cards: []int{30, 33}, Chips: 2, Score: 61, Rank: 2, Result: entities.ResultLose},
	)

	// Execute
	err := service.RecordGame(ctx, result)

	// Assert
	require.NoError(t, err)

	alice, err := service.GetPlayerStatistics(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, alice.GamesPlayed)
	assert.Equal(t, 1, alice.Wins)
	assert.Equal(t, 3, alice.CardsTaken)
	assert.Equal(t, -1, alice.BestScore)
	assert.Equal(t, 1016, alice.Rating, "Winner should gain rating")
	assert.True(t, now.Equal(alice.LastUpdated), "Update time should be the completion time")

	bob, err := service.GetPlayerStatistics(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1000, bob.Rating, "Middle seat beats one and loses to one")
	assert.Equal(t, 1, bob.Losses)

	carol, err := service.GetPlayerStatistics(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, 984, carol.Rating)

	// a second game builds on stored ratings
	require.NoError(t, service.RecordGame(ctx, nothanksResult("g2", now.Add(time.Hour),
		&entities.PlayerResult{PlayerID: "alice", Score: 30, Result: entities.ResultLose},
		&entities.PlayerResult{PlayerID: "carol", Score: 5, Result: entities.ResultWin},
	)))
	alice, err = service.GetPlayerStatistics(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, alice.GamesPlayed)
	assert.Less(t, alice.Rating, 1016, "Loss should cost rating")
	assert.Equal(t, -1, alice.BestScore, "Best score should keep the lowest")
}

func TestRecordGameEmpty(t *testing.T) {
	// Setup
	ctrl := gomock.NewController(t)
	repo := mock_game.NewMockRepository(ctrl)
	service := NewService(repo)

	// Execute
	err := service.RecordGame(context.Background(), nothanksResult("g1", time.Now()))

	// Assert
	assert.NoError(t, err, "A game without seats touches nothing")
}

func TestRecordGameRepositoryErrors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("load fails", func(t *testing.T) {
		// Setup
		ctrl := gomock.NewController(t)
		repo := mock_game.NewMockRepository(ctrl)
		repo.EXPECT().GetPlayerStatistics(gomock.Any(), "alice", entities.GameTypeNoThanks).Return(nil, boom)

		// Execute
		err := NewService(repo).RecordGame(context.Background(), nothanksResult("g1", time.Now(),
			&entities.PlayerResult{PlayerID: "alice"}, &entities.PlayerResult{PlayerID: "bob"}))

		// Assert
		assert.ErrorIs(t, err, boom)
	})

	t.Run("save fails", func(t *testing.T) {
		// Setup
		ctrl := gomock.NewController(t)
		repo := mock_game.NewMockRepository(ctrl)
		repo.EXPECT().GetPlayerStatistics(gomock.Any(), gomock.Any(), entities.GameTypeNoThanks).
			DoAndReturn(func(_ context.Context, id string, gt entities.GameType) (*entities.PlayerStatistics, error) {
				return entities.NewPlayerStatistics(id, gt), nil
			}).Times(2)
		repo.EXPECT().SavePlayerStatistics(gomock.Any(), gomock.Any()).Return(boom)

		// Execute
		err := NewService(repo).RecordGame(context.Background(), nothanksResult("g1", time.Now(),
			&entities.PlayerResult{PlayerID: "alice", Score: 1}, &entities.PlayerResult{PlayerID: "bob", Score: 2}))

		// Assert
		assert.ErrorIs(t, err, boom)
	})
}

// TestGetLeaderboard tests ordering, flags and pagination
func TestGetLeaderboard(t *testing.T) {
	// Setup
	ctrl := gomock.NewController(t)
	mockRepo := mock_game.NewMockRepository(ctrl)

	testStats := []*entities.PlayerStatistics{
		{PlayerID: "player1", GamesPlayed: 10, Wins: 5, Rating: 1050},
		{PlayerID: "player2", GamesPlayed: 15, Wins: 8, Rating: 1100},
		{PlayerID: "player3", GamesPlayed: 20, Wins: 6, Rating: 1050},
		{PlayerID: "player4", GamesPlayed: 4, Wins: 2, Rating: 1050},
		{PlayerID: "idle", GamesPlayed: 0, Rating: 1000},
	}
	mockRepo.EXPECT().GetAllPlayerStatistics(gomock.Any(), entities.GameTypeNoThanks).Return(testStats, nil).AnyTimes()

	service := NewService(mockRepo)
	ctx := context.Background()

	// Execute
	leaderboard, err := service.GetLeaderboard(ctx, 1, 10)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, leaderboard.TotalPlayers, "Players without games should be skipped")
	assert.Equal(t, 1, leaderboard.TotalPages)

	order := make([]string, 0, len(leaderboard.Players))
	for _, p := range leaderboard.Players {
		order = append(order, p.PlayerID)
	}
	// equal ratings fall back to win rate, then ID
	assert.Equal(t, []string{"player2", "player1", "player4", "player3"}, order)
	assert.Equal(t, 1, leaderboard.Players[0].Rank)
	assert.Equal(t, 4, leaderboard.Players[3].Rank)
	assert.True(t, leaderboard.Players[0].IsTopWinner, "player2 has the most wins")
	assert.True(t, leaderboard.Players[3].IsTopPlayer, "player3 has the most games")
	assert.InDelta(t, 50.0, leaderboard.Players[1].WinRate, 0.001)

	t.Run("pagination", func(t *testing.T) {
		testCases := []struct {
			name        string
			page        int
			perPage     int
			wantPage    int
			wantPages   int
			wantPlayers []string
		}{
			{"second page", 2, 3, 2, 2, []string{"player3"}},
			{"page past end clamps", 9, 3, 2, 2, []string{"player3"}},
			{"zero page defaults", 0, 2, 1, 2, []string{"player2", "player1"}},
			{"zero per page defaults to ten", 1, 0, 1, 1, []string{"player2", "player1", "player4", "player3"}},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				lb, err := service.GetLeaderboard(ctx, tc.page, tc.perPage)
				require.NoError(t, err)
				assert.Equal(t, tc.wantPage, lb.CurrentPage, "Page should match")
				assert.Equal(t, tc.wantPages, lb.TotalPages, "Total pages should match")
				got := make([]string, 0, len(lb.Players))
				for _, p := range lb.Players {
					got = append(got, p.PlayerID)
				}
				assert.Equal(t, tc.wantPlayers, got)
			})
		}
	})
}

func TestGetLeaderboardEmpty(t *testing.T) {
	// Setup
	service := NewService(game.NewMemoryRepository())

	// Execute
	leaderboard, err := service.GetLeaderboard(context.Background(), 3, 10)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, leaderboard.Players)
	assert.Equal(t, 0, leaderboard.TotalPages)
	assert.Equal(t, 3, leaderboard.CurrentPage)
}

// searchableRepository answers player searches from a canned index
type searchableRepository struct {
	*game.MemoryRepository
	indexed []*entities.GameResult
	err     error
	sizes   []int
}

func (r *searchableRepository) SearchPlayerGames(ctx context.Context, playerID string, size int) ([]*entities.GameResult, error) {
	r.sizes = append(r.sizes, size)
	return r.indexed, r.err
}

func TestGetRecentGames(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	stored := game.NewMemoryRepository()
	for k := range 4 {
		result := nothanksResult(fmt.Sprintf("g%d", k), base.Add(time.Duration(k)*time.Hour),
			&entities.PlayerResult{PlayerID: "alice", Result: entities.ResultWin},
			&entities.PlayerResult{PlayerID: "bob", Result: entities.ResultLose})
		require.NoError(t, stored.SaveGameResult(ctx, result))
	}
	archived := []*entities.GameResult{nothanksResult("archived", base)}

	testCases := []struct {
		name     string
		repo     game.Repository
		limit    int
		expected []string
	}{
		{"stored results newest first", stored, 2, []string{"g3", "g2"}},
		{"limit defaults to five", stored, 0, []string{"g3", "g2", "g1", "g0"}},
		{"search index wins", &searchableRepository{MemoryRepository: stored, indexed: archived}, 3, []string{"archived"}},
		{"search failure falls back", &searchableRepository{MemoryRepository: stored, err: errors.New("cluster down")}, 1, []string{"g3"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Execute
			results, err := NewService(tc.repo).GetRecentGames(ctx, "alice", tc.limit)

			// Assert
			require.NoError(t, err)
			ids := make([]string, 0, len(results))
			for _, r := range results {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tc.expected, ids, "Game IDs should match")
			if searcher, ok := tc.repo.(*searchableRepository); ok {
				assert.Equal(t, []int{tc.limit}, searcher.sizes, "Search should ask for the limit")
			}
		})
	}
}

func TestGetChannelGames(t *testing.T) {
	// Setup
	ctrl := gomock.NewController(t)
	repo := mock_game.NewMockRepository(ctrl)
	want := []*entities.GameResult{nothanksResult("g1", time.Now())}
	repo.EXPECT().GetChannelResults(gomock.Any(), "channel1", 5).Return(want, nil)
	repo.EXPECT().GetChannelResults(gomock.Any(), "channel2", 2).Return(nil, errors.New("db closed"))
	service := NewService(repo)

	// Execute
	got, err := service.GetChannelGames(context.Background(), "channel1", 0)
	_, failErr := service.GetChannelGames(context.Background(), "channel2", 2)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Error(t, failErr, "Repository errors should be returned")
}
