package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the environment-driven settings for the table server
type Config struct {
	ListenAddr string
	LogLevel   string

	StorageType string
	DBPath      string

	MinBet             int64
	MaxBet             int64
	StartingBalance    int64
	Seats              int
	CutCard            int
	BettingSeconds     int
	ReshuffleSeconds   int
	PayoutDelaySeconds int

	ElasticsearchURL      string
	ElasticsearchUsername string
	ElasticsearchPassword string
	ElasticsearchIndex    string
}

// Load reads configuration from an optional env file and the process
// environment, applying defaults for anything unset.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	} else {
		// Optional in production, where the environment is set directly
		_ = godotenv.Load()
	}

	cfg := &Config{
		ListenAddr:  getEnvWithDefault("LISTEN_ADDR", ":8080"),
		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		StorageType: getEnvWithDefault("STORAGE_TYPE", "memory"),
		DBPath:      getEnvWithDefault("DB_PATH", "data/felttable.db"),

		ElasticsearchURL:      os.Getenv("ELASTICSEARCH_URL"),
		ElasticsearchUsername: os.Getenv("ELASTICSEARCH_USERNAME"),
		ElasticsearchPassword: os.Getenv("ELASTICSEARCH_PASSWORD"),
		ElasticsearchIndex:    getEnvWithDefault("ELASTICSEARCH_INDEX", "felttable"),
	}

	var err error
	if cfg.MinBet, err = getEnvInt64("MIN_BET", 5); err != nil {
		return nil, err
	}
	if cfg.MaxBet, err = getEnvInt64("MAX_BET", 1000); err != nil {
		return nil, err
	}
	if cfg.StartingBalance, err = getEnvInt64("STARTING_BALANCE", 10000); err != nil {
		return nil, err
	}
	if cfg.Seats, err = getEnvInt("TABLE_SEATS", 5); err != nil {
		return nil, err
	}
	if cfg.CutCard, err = getEnvInt("CUT_CARD", 15); err != nil {
		return nil, err
	}
	if cfg.BettingSeconds, err = getEnvInt("BETTING_SECONDS", 15); err != nil {
		return nil, err
	}
	if cfg.ReshuffleSeconds, err = getEnvInt("RESHUFFLE_SECONDS", 5); err != nil {
		return nil, err
	}
	if cfg.PayoutDelaySeconds, err = getEnvInt("PAYOUT_DELAY_SECONDS", 3); err != nil {
		return nil, err
	}

	if cfg.MinBet < 1 || cfg.MaxBet < cfg.MinBet {
		return nil, fmt.Errorf("invalid bet limits: min %d max %d", cfg.MinBet, cfg.MaxBet)
	}
	if cfg.Seats < 1 {
		return nil, fmt.Errorf("invalid seat count: %d", cfg.Seats)
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return parsed, nil
}
