package game

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fadedpez/nothanks/pkg/db/migrations"
	"github.com/fadedpez/nothanks/pkg/entities"
)

// SQLiteRepository implements the Repository interface using SQLite
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite repository
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	// Ensure the directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating database directory: %w", err)
	}

	// Open the database
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// A single connection serialises writers from concurrent simulations
	db.SetMaxOpenConns(1)

	// Apply migrations
	migrator := migrations.NewMigrator(db, migrations.SQLite())
	if err := migrator.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error applying migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// SaveGameResult stores a game result and its player rows in one transaction
func (r *SQLiteRepository) SaveGameResult(ctx context.Context, result *entities.GameResult) error {
	// Begin transaction
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Insert game result
	query := `
		INSERT INTO game_results (
			id, channel_id, game_type, started_at, completed_at, turns
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`

	res, err := tx.ExecContext(ctx, query,
		result.ID, result.ChannelID, string(result.GameType),
		result.StartedAt.UTC(), result.CompletedAt.UTC(), result.Turns)
	if err != nil {
		return fmt.Errorf("error inserting game result: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Already stored
		return nil
	}

	// Insert player results
	for seat, pr := range result.PlayerResults {
		cardsJSON, err := json.Marshal(pr.Cards)
		if err != nil {
			return err
		}

		query := `
			INSERT INTO player_results (
				game_result_id, seat, player_id, name, strategy, cards, chips, score, rank, result
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

		_, err = tx.ExecContext(ctx, query,
			result.ID, seat, pr.PlayerID, pr.Name, pr.Strategy, string(cardsJSON),
			pr.Chips, pr.Score, pr.Rank, string(pr.Result))
		if err != nil {
			return fmt.Errorf("error inserting player result: %w", err)
		}
	}

	// Commit transaction
	return tx.Commit()
}

// GetPlayerResults retrieves game results for a player
func (r *SQLiteRepository) GetPlayerResults(ctx context.Context, playerID string) ([]*entities.GameResult, error) {
	query := `
		SELECT gr.id, gr.channel_id, gr.game_type, gr.started_at, gr.completed_at, gr.turns
		FROM game_results gr
		WHERE gr.id IN (SELECT game_result_id FROM player_results WHERE player_id = ?)
		ORDER BY gr.completed_at DESC, gr.created_at DESC`

	return r.queryResults(ctx, query, playerID)
}

// GetChannelResults retrieves recent game results for a channel
func (r *SQLiteRepository) GetChannelResults(ctx context.Context, channelID string, limit int) ([]*entities.GameResult, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}

	query := `
		SELECT gr.id, gr.channel_id, gr.game_type, gr.started_at, gr.completed_at, gr.turns
		FROM game_results gr
		WHERE gr.channel_id = ?
		ORDER BY gr.completed_at DESC, gr.created_at DESC
		LIMIT ?`

	return r.queryResults(ctx, query, channelID, limit)
}

// PruneGameResultsPerPlayer keeps the newest maxMatchesPerPlayer rows for each
// player and removes games that no longer have any players attached
func (r *SQLiteRepository) PruneGameResultsPerPlayer(ctx context.Context, maxMatchesPerPlayer int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM player_results WHERE id IN (
			SELECT id FROM (
				SELECT pr.id, ROW_NUMBER() OVER (
					PARTITION BY pr.player_id ORDER BY gr.completed_at DESC, gr.created_at DESC
				) AS rn
				FROM player_results pr
				JOIN game_results gr ON gr.id = pr.game_result_id
			) WHERE rn > ?
		)`, maxMatchesPerPlayer)
	if err != nil {
		return fmt.Errorf("error pruning player results: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM game_results
		WHERE id NOT IN (SELECT DISTINCT game_result_id FROM player_results)`)
	if err != nil {
		return fmt.Errorf("error pruning game results: %w", err)
	}

	return tx.Commit()
}

// GetPlayerStatistics retrieves statistics for a specific player and game type
func (r *SQLiteRepository) GetPlayerStatistics(ctx context.Context, playerID string, gameType entities.GameType) (*entities.PlayerStatistics, error) {
	query := `
		SELECT player_id, game_type, games_played, wins, losses, total_score,
			best_score, cards_taken, chips_left, rating, last_updated
		FROM player_statistics
		WHERE player_id = ? AND game_type = ?`

	stats, err := scanStatistics(r.db.QueryRowContext(ctx, query, playerID, string(gameType)))
	if errors.Is(err, sql.ErrNoRows) {
		return entities.NewPlayerStatistics(playerID, gameType), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error getting player statistics: %w", err)
	}
	return stats, nil
}

// GetAllPlayerStatistics retrieves statistics for all players for a specific game type
func (r *SQLiteRepository) GetAllPlayerStatistics(ctx context.Context, gameType entities.GameType) ([]*entities.PlayerStatistics, error) {
	query := `
		SELECT player_id, game_type, games_played, wins, losses, total_score,
			best_score, cards_taken, chips_left, rating, last_updated
		FROM player_statistics
		WHERE game_type = ?
		ORDER BY rating DESC, player_id ASC`

	rows, err := r.db.QueryContext(ctx, query, string(gameType))
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
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return statsList, nil
}

// SavePlayerStatistics saves or updates statistics for a player
func (r *SQLiteRepository) SavePlayerStatistics(ctx context.Context, stats *entities.PlayerStatistics) error {
	query := `
		INSERT INTO player_statistics (
			player_id, game_type, games_played, wins, losses, total_score,
			best_score, cards_taken, chips_left, rating, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(player_id, game_type) DO UPDATE SET
			games_played = excluded.games_played,
			wins = excluded.wins,
			losses = excluded.losses,
			total_score = excluded.total_score,
			best_score = excluded.best_score,
			cards_taken = excluded.cards_taken,
			chips_left = excluded.chips_left,
			rating = excluded.rating,
			last_updated = excluded.last_updated`

	_, err := r.db.ExecContext(ctx, query,
		stats.PlayerID, string(stats.GameType), stats.GamesPlayed, stats.Wins, stats.Losses,
		stats.TotalScore, stats.BestScore, stats.CardsTaken, stats.ChipsLeft, stats.Rating,
		stats.LastUpdated.UTC())
	if err != nil {
		return fmt.Errorf("error saving player statistics: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// queryResults runs a game_results query and attaches player rows in seat order
func (r *SQLiteRepository) queryResults(ctx context.Context, query string, args ...any) ([]*entities.GameResult, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	results := []*entities.GameResult{}
	resultMap := make(map[string]*entities.GameResult)
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
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(results) == 0 {
		return results, nil
	}

	// Second pass: get player results for each game
	placeholders := make([]string, len(results))
	ids := make([]any, len(results))
	for i, result := range results {
		placeholders[i] = "?"
		ids[i] = result.ID
	}

	playerRows, err := r.db.QueryContext(ctx, `
		SELECT game_result_id, player_id, name, strategy, cards, chips, score, rank, result
		FROM player_results
		WHERE game_result_id IN (`+strings.Join(placeholders, ",")+`)
		ORDER BY game_result_id, seat`, ids...)
	if err != nil {
		return nil, err
	}
	defer playerRows.Close()

	for playerRows.Next() {
		var (
			gameID    string
			cardsJSON string
			resultStr string
			pr        entities.PlayerResult
		)
		if err := playerRows.Scan(&gameID, &pr.PlayerID, &pr.Name, &pr.Strategy, &cardsJSON,
			&pr.Chips, &pr.Score, &pr.Rank, &resultStr); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(cardsJSON), &pr.Cards); err != nil {
			return nil, fmt.Errorf("error decoding cards for game %s: %w", gameID, err)
		}
		pr.Result = entities.Result(resultStr)

		if result, exists := resultMap[gameID]; exists {
			result.PlayerResults = append(result.PlayerResults, &pr)
		}
	}

	return results, playerRows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanStatistics(row rowScanner) (*entities.PlayerStatistics, error) {
	var (
		stats       entities.PlayerStatistics
		gameType    string
		lastUpdated time.Time
	)
	err := row.Scan(&stats.PlayerID, &gameType, &stats.GamesPlayed, &stats.Wins, &stats.Losses,
		&stats.TotalScore, &stats.BestScore, &stats.CardsTaken, &stats.ChipsLeft, &stats.Rating,
		&lastUpdated)
	if err != nil {
		return nil, err
	}
	stats.GameType = entities.GameType(gameType)
	stats.LastUpdated = lastUpdated
	return &stats, nil
}
