package game

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/fadedpez/nothanks/internal/logging"
	"github.com/fadedpez/nothanks/pkg/entities"
)

// ElasticsearchConfig holds configuration options for the Elasticsearch repository
type ElasticsearchConfig struct {
	URL         string
	Username    string
	Password    string
	IndexPrefix string
}

const gameIndexMapping = `{
	"mappings": {
		"properties": {
			"game_id": { "type": "keyword" },
			"game_type": { "type": "keyword" },
			"channel_id": { "type": "keyword" },
			"started_at": { "type": "date" },
			"completed_at": { "type": "date" },
			"turns": { "type": "integer" },
			"winners": { "type": "keyword" },
			"players": {
				"type": "nested",
				"properties": {
					"player_id": { "type": "keyword" },
					"name": { "type": "text" },
					"strategy": { "type": "keyword" },
					"seat": { "type": "integer" },
					"cards": { "type": "integer" },
					"chips": { "type": "integer" },
					"score": { "type": "integer" },
					"rank": { "type": "integer" },
					"result": { "type": "keyword" }
				}
			}
		}
	}
}`

const playerIndexMapping = `{
	"mappings": {
		"properties": {
			"player_id": { "type": "keyword" },
			"game_type": { "type": "keyword" },
			"games_played": { "type": "integer" },
			"wins": { "type": "integer" },
			"losses": { "type": "integer" },
			"total_score": { "type": "long" },
			"best_score": { "type": "integer" },
			"cards_taken": { "type": "integer" },
			"chips_left": { "type": "long" },
			"rating": { "type": "integer" },
			"win_rate": { "type": "float" },
			"average_score": { "type": "float" },
			"last_updated": { "type": "date" }
		}
	}
}`

// ElasticsearchRepository decorates a base Repository, mirroring every write
// into Elasticsearch for search. Reads are served by the base repository.
type ElasticsearchRepository struct {
	baseRepo    Repository
	client      *elasticsearch.Client
	config      *ElasticsearchConfig
	indexPrefix string
}

// NewElasticsearchRepository creates a new Elasticsearch repository
func NewElasticsearchRepository(baseRepo Repository, config *ElasticsearchConfig) (*ElasticsearchRepository, error) {
	// Configure the Elasticsearch client
	cfg := elasticsearch.Config{
		Addresses: []string{config.URL},
	}

	// Add authentication if provided
	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	// Create the client
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
	}

	// Set default index prefix if not provided
	if config.IndexPrefix == "" {
		config.IndexPrefix = "nothanks"
	}

	repo := &ElasticsearchRepository{
		baseRepo:    baseRepo,
		client:      client,
		config:      config,
		indexPrefix: config.IndexPrefix,
	}

	// Initialize indices
	ctx := context.Background()
	if err := repo.initIndices(ctx); err != nil {
		return nil, fmt.Errorf("error initializing indices: %w", err)
	}

	return repo, nil
}

func (r *ElasticsearchRepository) gameIndex() string   { return r.indexPrefix + "_games" }
func (r *ElasticsearchRepository) playerIndex() string { return r.indexPrefix + "_players" }

// initIndices creates the necessary indices if they don't exist
func (r *ElasticsearchRepository) initIndices(ctx context.Context) error {
	for index, mapping := range map[string]string{
		r.gameIndex():   gameIndexMapping,
		r.playerIndex(): playerIndexMapping,
	} {
		res, err := r.client.Indices.Exists([]string{index}, r.client.Indices.Exists.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("error checking if index %s exists: %w", index, err)
		}
		res.Body.Close()

		if res.StatusCode != http.StatusNotFound {
			if res.IsError() {
				return fmt.Errorf("error checking if index %s exists: %s", index, res.Status())
			}
			continue
		}

		req := esapi.IndicesCreateRequest{
			Index: index,
			Body:  bytes.NewReader([]byte(mapping)),
		}
		createRes, err := req.Do(ctx, r.client)
		if err != nil {
			return fmt.Errorf("error creating index %s: %w", index, err)
		}
		createRes.Body.Close()
		if createRes.IsError() {
			return fmt.Errorf("error creating index %s: %s", index, createRes.String())
		}
		logging.Default.Info("Created Elasticsearch index %s", index)
	}
	return nil
}

// SaveGameResult saves a game result to the base repository and indexes it in Elasticsearch
func (r *ElasticsearchRepository) SaveGameResult(ctx context.Context, result *entities.GameResult) error {
	// First save to the base repository
	if err := r.baseRepo.SaveGameResult(ctx, result); err != nil {
		return fmt.Errorf("error saving game result to base repository: %w", err)
	}

	// Then index in Elasticsearch
	return r.indexDocument(ctx, r.gameIndex(), result.ID, toESGameResult(result))
}

// SavePlayerStatistics saves statistics to the base repository and indexes them in Elasticsearch
func (r *ElasticsearchRepository) SavePlayerStatistics(ctx context.Context, stats *entities.PlayerStatistics) error {
	if err := r.baseRepo.SavePlayerStatistics(ctx, stats); err != nil {
		return fmt.Errorf("error saving player statistics to base repository: %w", err)
	}

	docID := stats.PlayerID + "_" + string(stats.GameType)
	return r.indexDocument(ctx, r.playerIndex(), docID, toESPlayerStatistics(stats))
}

// GetPlayerResults retrieves game results for a player from the base repository
func (r *ElasticsearchRepository) GetPlayerResults(ctx context.Context, playerID string) ([]*entities.GameResult, error) {
	return r.baseRepo.GetPlayerResults(ctx, playerID)
}

// GetChannelResults retrieves game results for a channel from the base repository
func (r *ElasticsearchRepository) GetChannelResults(ctx context.Context, channelID string, limit int) ([]*entities.GameResult, error) {
	return r.baseRepo.GetChannelResults(ctx, channelID, limit)
}

// GetPlayerStatistics retrieves statistics from the base repository
func (r *ElasticsearchRepository) GetPlayerStatistics(ctx context.Context, playerID string, gameType entities.GameType) (*entities.PlayerStatistics, error) {
	return r.baseRepo.GetPlayerStatistics(ctx, playerID, gameType)
}

// GetAllPlayerStatistics retrieves statistics from the base repository
func (r *ElasticsearchRepository) GetAllPlayerStatistics(ctx context.Context, gameType entities.GameType) ([]*entities.PlayerStatistics, error) {
	return r.baseRepo.GetAllPlayerStatistics(ctx, gameType)
}

// PruneGameResultsPerPlayer prunes the base repository. Indexed documents are
// kept as the long-term history.
func (r *ElasticsearchRepository) PruneGameResultsPerPlayer(ctx context.Context, maxMatchesPerPlayer int) error {
	return r.baseRepo.PruneGameResultsPerPlayer(ctx, maxMatchesPerPlayer)
}

// SearchPlayerGames returns the player's newest size games from the Elasticsearch
// index, including games already pruned from the base repository
func (r *ElasticsearchRepository) SearchPlayerGames(ctx context.Context, playerID string, size int) ([]*entities.GameResult, error) {
	query := map[string]any{
		"query": map[string]any{
			"nested": map[string]any{
				"path": "players",
				"query": map[string]any{
					"term": map[string]any{"players.player_id": playerID},
				},
			},
		},
		"sort": []map[string]any{
			{"completed_at": map[string]string{"order": "desc"}},
		},
	}

	var docs []ESGameResult
	if err := r.search(ctx, r.gameIndex(), query, size, &docs); err != nil {
		return nil, fmt.Errorf("error searching for player games: %w", err)
	}

	results := make([]*entities.GameResult, len(docs))
	for i := range docs {
		results[i] = docs[i].toGameResult()
	}
	return results, nil
}

// Close closes the base repository
func (r *ElasticsearchRepository) Close() error {
	return r.baseRepo.Close()
}

// GetIndexPrefix returns the index prefix used by the repository
func (r *ElasticsearchRepository) GetIndexPrefix() string {
	return r.indexPrefix
}

func (r *ElasticsearchRepository) indexDocument(ctx context.Context, index, docID string, doc any) error {
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error marshaling document: %w", err)
	}

	res, err := r.client.Index(
		index,
		bytes.NewReader(jsonData),
		r.client.Index.WithContext(ctx),
		r.client.Index.WithDocumentID(docID),
		r.client.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("error indexing document in %s: %w", index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing document in %s: %s", index, res.String())
	}
	return nil
}

// search runs query against index and decodes every hit's _source into out,
// which must point to a slice
func (r *ElasticsearchRepository) search(ctx context.Context, index string, query map[string]any, size int, out any) error {
	body, err := json.Marshal(query)
	if err != nil {
		return err
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(index),
		r.client.Search.WithBody(bytes.NewReader(body)),
		r.client.Search.WithSize(size),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("search failed: %s", res.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return fmt.Errorf("error parsing search response: %w", err)
	}

	sources := make([]json.RawMessage, len(result.Hits.Hits))
	for i, hit := range result.Hits.Hits {
		sources[i] = hit.Source
	}
	joined, err := json.Marshal(sources)
	if err != nil {
		return err
	}
	return json.Unmarshal(joined, out)
}
