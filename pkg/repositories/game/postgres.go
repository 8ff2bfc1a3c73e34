package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fadedpez/nothanks/internal/logging"
	"github.com/fadedpez/nothanks/pkg/entities"
)

const createPostgresSchemaSQL = `
CREATE TABLE IF NOT EXISTS game_results (
	id           TEXT PRIMARY KEY,
	channel_id   TEXT NOT NULL,
	game_type    TEXT NOT NULL,
	started_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ NOT NULL,
	turns        INT NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_game_results_channel ON game_results(channel_id, completed_at DESC);
CREATE TABLE IF NOT EXISTS player_results (
	id             BIGSERIAL PRIMARY KEY,
	game_result_id TEXT NOT NULL REFERENCES game_results(id) ON DELETE CASCADE,
	seat           SMALLINT NOT NULL,
	player_id      TEXT NOT NULL,
	name           TEXT NOT NULL DEFAULT '',
	strategy       TEXT NOT NULL DEFAULT '',
	cards          JSONB NOT NULL,
	chips          INT NOT NULL,
	score          INT NOT NULL,
	rank           INT NOT NULL,
	result         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_player_results_player ON player_results(player_id);
CREATE INDEX IF NOT EXISTS idx_player_results_game ON player_results(game_result_id);
CREATE TABLE IF NOT EXISTS player_statistics (
	player_id    TEXT NOT NULL,
	game_type    TEXT NOT NULL,
	games_played INT NOT NULL DEFAULT 0,
	wins         INT NOT NULL DEFAULT 0,
	losses       INT NOT NULL DEFAULT 0,
	total_score  BIGINT NOT NULL DEFAULT 0,
	best_score   INT NOT NULL DEFAULT 0,
	cards_taken  INT NOT NULL DEFAULT 0,
	chips_left   BIGINT NOT NULL DEFAULT 0,
	rating       INT NOT NULL DEFAULT 1000,
	last_updated TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (player_id, game_type)
);
CREATE INDEX IF NOT EXISTS idx_player_statistics_rating ON player_statistics(game_type, rating DESC);
`

// PostgresRepository implements the Repository interface on a pgx connection pool
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects to Postgres and ensures the schema exists
func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createPostgresSchemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("error creating schema: %w", err)
	}
	logging.Default.Info("Connected to Postgres")
	return &PostgresRepository{pool: pool}, nil
}

// SaveGameResult stores a game result and its player rows in one transaction
func (r *PostgresRepository) SaveGameResult(ctx context.Context, result *entities.GameResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO game_results (id, channel_id, game_type, started_at, completed_at, turns)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		result.ID, result.ChannelID, string(result.GameType), result.StartedAt, result.CompletedAt, result.Turns)
	if err != nil {
		return fmt.Errorf("error inserting game result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	for seat, pr := range result.PlayerResults {
		cardsJSON, err := json.Marshal(pr.Cards)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO player_results (
				game_result_id, seat, player_id, name, strategy, cards, chips, score, rank, result
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			result.ID, seat, pr.PlayerID, pr.Name, pr.Strategy, string(cardsJSON),
			pr.Chips, pr.Score, pr.Rank, string(pr.Result))
		if err != nil {
			return fmt.Errorf("error inserting player result: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetPlayerResults retrieves game results for a player, newest first
func (r *PostgresRepository) GetPlayerResults(ctx context.Context, playerID string) ([]*entities.GameResult, error) {
	return r.queryResults(ctx, `
		SELECT gr.id, gr.channel_id, gr.game_type, gr.started_at, gr.completed_at, gr.turns
		FROM game_results gr
		WHERE gr.id IN (SELECT game_result_id FROM player_results WHERE player_id = $1)
		ORDER BY gr.completed_at DESC, gr.created_at DESC`, playerID)
}

// GetChannelResults retrieves recent game results for a channel
func (r *PostgresRepository) GetChannelResults(ctx context.Context, channelID string, limit int) ([]*entities.GameResult, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	return r.queryResults(ctx, `
		SELECT gr.id, gr.channel_id, gr.game_type, gr.started_at, gr.completed_at, gr.turns
		FROM game_results gr
		WHERE gr.channel_id = $1
		ORDER BY gr.completed_at DESC, gr.created_at DESC
		LIMIT $2`, channelID, lim)
}

// PruneGameResultsPerPlayer keeps only each player's newest rows and drops orphaned games
func (r *PostgresRepository) PruneGameResultsPerPlayer(ctx context.Context, maxMatchesPerPlayer int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM player_results WHERE id IN (
			SELECT id FROM (
				SELECT pr.id, ROW_NUMBER() OVER (
					PARTITION BY pr.player_id ORDER BY gr.completed_at DESC, gr.created_at DESC
				) AS rn
				FROM player_results pr
				JOIN game_results gr ON gr.id = pr.game_result_id
			) ranked WHERE rn > $1
		)`, maxMatchesPerPlayer); err != nil {
		return fmt.Errorf("error pruning player results: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM game_results gr
		WHERE NOT EXISTS (SELECT 1 FROM player_results pr WHERE pr.game_result_id = gr.id)`); err != nil {
		return fmt.Errorf("error pruning game results: %w", err)
	}

	return tx.Commit(ctx)
}

// GetPlayerStatistics retrieves statistics for a specific player and game type
func (r *PostgresRepository) GetPlayerStatistics(ctx context.Context, playerID string, gameType entities.GameType) (*entities.PlayerStatistics, error) {
	stats, err := scanStatistics(r.pool.QueryRow(ctx, `
		SELECT player_id, game_type, games_played, wins, losses, total_score,
			best_score, cards_taken, chips_left, rating, last_updated
		FROM player_statistics
		WHERE player_id = $1 AND game_type = $2`, playerID, string(gameType)))
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.NewPlayerStatistics(playerID, gameType), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting player statistics: %w", err)
	}
	return stats, nil
}

// GetAllPlayerStatistics retrieves statistics for all players for a specific game type
func (r *PostgresRepository) GetAllPlayerStatistics(ctx context.Context, gameType entities.GameType) ([]*entities.PlayerStatistics, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT player_id, game_type, games_played, wins, losses, total_score,
			best_score, cards_taken, chips_left, rating, last_updated
		FROM player_statistics
		WHERE game_type = $1
		ORDER BY rating DESC, player_id ASC`, string(gameType))
	if err != nil {
		return nil, fmt.Errorf("error querying player statistics: %w", err)
	}
	defer rows.Close()

	var statsList []*entities.PlayerStatistics
	for rows.Next() {
		stats, err := scanStatistics(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning player statistics: %w", err)
		}
		statsList = append(statsList, stats)
	}
	return statsList, rows.Err()
}

// SavePlayerStatistics saves or updates statistics for a player
func (r *PostgresRepository) SavePlayerStatistics(ctx context.Context, stats *entities.PlayerStatistics) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO player_statistics (
			player_id, game_type, games_played, wins, losses, total_score,
			best_score, cards_taken, chips_left, rating, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (player_id, game_type) DO UPDATE SET
			games_played = EXCLUDED.games_played,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			total_score = EXCLUDED.total_score,
			best_score = EXCLUDED.best_score,
			cards_taken = EXCLUDED.cards_taken,
			chips_left = EXCLUDED.chips_left,
			rating = EXCLUDED.rating,
			last_updated = EXCLUDED.last_updated`,
		stats.PlayerID, string(stats.GameType), stats.GamesPlayed, stats.Wins, stats.Losses,
		stats.TotalScore, stats.BestScore, stats.CardsTaken, stats.ChipsLeft, stats.Rating,
		stats.LastUpdated)
	if err != nil {
		return fmt.Errorf("error saving player statistics: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) queryResults(ctx context.Context, query string, args ...any) ([]*entities.GameResult, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	results := []*entities.GameResult{}
	resultMap := make(map[string]*entities.GameResult)
	ids := []string{}
	for rows.Next() {
		var (
			result   entities.GameResult
			gameType string
		)
		if err := rows.Scan(&result.ID, &result.ChannelID, &gameType,
			&result.StartedAt, &result.CompletedAt, &result.Turns); err != nil {
			rows.Close()
			return nil, err
		}
		result.GameType = entities.GameType(gameType)
		result.PlayerResults = []*entities.PlayerResult{}
		resultMap[result.ID] = &result
		results = append(results, &result)
		ids = append(ids, result.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return results, nil
	}

	playerRows, err := r.pool.Query(ctx, `
		SELECT game_result_id, player_id, name, strategy, cards, chips, score, rank, result
		FROM player_results
		WHERE game_result_id = ANY($1)
		ORDER BY game_result_id, seat`, ids)
	if err != nil {
		return nil, err
	}
	defer playerRows.Close()

	for playerRows.Next() {
		var (
			gameID    string
			resultStr string
			pr        entities.PlayerResult
		)
		if err := playerRows.Scan(&gameID, &pr.PlayerID, &pr.Name, &pr.Strategy, &pr.Cards,
			&pr.Chips, &pr.Score, &pr.Rank, &resultStr); err != nil {
			return nil, err
		}
		pr.Result = entities.Result(resultStr)
		if result, ok := resultMap[gameID]; ok {
			result.PlayerResults = append(result.PlayerResults, &pr)
		}
	}
	return results, playerRows.Err()
}
