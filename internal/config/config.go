package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends for game results and player statistics
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	// Discord configuration
	Token   string
	AppID   string
	GuildID string

	// Resource paths
	DataDir string

	// Persistence
	StorageType string // "memory", "sqlite" or "postgres"
	SQLitePath  string
	DatabaseURL string
	GameMaxAge  time.Duration
	// MaxMatchesPerPlayer bounds stored history per player, 0 keeps everything
	MaxMatchesPerPlayer int

	// Elasticsearch indexing, disabled when URL is empty
	ElasticsearchURL      string
	ElasticsearchUsername string
	ElasticsearchPassword string
	ElasticsearchPrefix   string

	// AMQP result publishing, disabled when URL is empty
	AMQPURL        string
	AMQPUsername   string
	AMQPPassword   string
	AMQPAddress    string
	PublishTimeout time.Duration

	// Simulation defaults for cmd/simulate
	SimGames      int
	SimSeed       int64
	SimWorkers    int
	SimStrategies []string

	// Environment
	Environment string // "development" or "production"
	LogLevel    string
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Only return error if file exists but couldn't be loaded
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// FromEnv builds a Config from the current environment without touching disk
func FromEnv() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	dataDir := getEnvWithDefault("DATA_DIR", filepath.Join(wd, "data"))

	cfg := &Config{
		Token:       os.Getenv("DISCORD_TOKEN"),
		AppID:       os.Getenv("APP_ID"),
		GuildID:     os.Getenv("GUILD_ID"),
		DataDir:     dataDir,
		StorageType: strings.ToLower(getEnvWithDefault("STORAGE_TYPE", StorageSQLite)),
		SQLitePath:  getEnvWithDefault("SQLITE_PATH", filepath.Join(dataDir, "nothanks.db")),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		ElasticsearchURL:      os.Getenv("ELASTICSEARCH_URL"),
		ElasticsearchUsername: os.Getenv("ELASTICSEARCH_USERNAME"),
		ElasticsearchPassword: os.Getenv("ELASTICSEARCH_PASSWORD"),
		ElasticsearchPrefix:   getEnvWithDefault("ELASTICSEARCH_INDEX_PREFIX", "nothanks"),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPUsername: os.Getenv("AMQP_USERNAME"),
		AMQPPassword: os.Getenv("AMQP_PASSWORD"),
		AMQPAddress:  getEnvWithDefault("AMQP_ADDRESS", "nothanks.results"),

		SimStrategies: splitList(getEnvWithDefault("SIM_STRATEGIES", "basic,random,always-reject")),

		Environment: getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
	}

	if cfg.GameMaxAge, err = getDurationWithDefault("GAME_MAX_AGE", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.MaxMatchesPerPlayer, err = getIntWithDefault("MAX_MATCHES_PER_PLAYER", 0); err != nil {
		return nil, err
	}
	if cfg.PublishTimeout, err = getDurationWithDefault("PUBLISH_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.SimGames, err = getIntWithDefault("SIM_GAMES", 1000); err != nil {
		return nil, err
	}
	if cfg.SimWorkers, err = getIntWithDefault("SIM_WORKERS", 4); err != nil {
		return nil, err
	}
	seed, err := getIntWithDefault("SIM_SEED", 1)
	if err != nil {
		return nil, err
	}
	cfg.SimSeed = int64(seed)

	return cfg, nil
}

// Validate checks storage, publishing and simulation settings
func (c *Config) Validate() error {
	switch c.StorageType {
	case StorageMemory:
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for sqlite storage")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_TYPE %q", c.StorageType)
	}
	if c.AMQPURL != "" && c.AMQPAddress == "" {
		return fmt.Errorf("AMQP_ADDRESS is required when AMQP_URL is set")
	}
	if c.MaxMatchesPerPlayer < 0 {
		return fmt.Errorf("MAX_MATCHES_PER_PLAYER must not be negative")
	}
	if c.SimGames < 0 {
		return fmt.Errorf("SIM_GAMES must not be negative")
	}
	if c.SimWorkers < 1 {
		return fmt.Errorf("SIM_WORKERS must be at least 1")
	}
	return nil
}

// ValidateDiscord checks if all configuration required by the bot is present
func (c *Config) ValidateDiscord() error {
	if c.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.AppID == "" {
		return fmt.Errorf("APP_ID is required")
	}
	if c.GuildID == "" {
		return fmt.Errorf("GUILD_ID is required")
	}
	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// ElasticsearchEnabled reports whether results should also be indexed
func (c *Config) ElasticsearchEnabled() bool {
	return c.ElasticsearchURL != ""
}

// AMQPEnabled reports whether results should be published
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

// getEnvWithDefault returns environment variable value or default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDurationWithDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
