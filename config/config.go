package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/bellapacxx/bingo-engine/utils/logger"
)

type Config struct {
	Port             string        `toml:"port"`
	DatabaseURL      string        `toml:"database_url"`
	CORSOrigins      []string      `toml:"cors_origins"`
	LogLevel         string        `toml:"log_level"`
	Rounds           int           `toml:"rounds"`
	DrawInterval     time.Duration `toml:"draw_interval"`
	AnnounceInterval time.Duration `toml:"announce_interval"`
	PatternsFile     string        `toml:"patterns_file"`
}

func Default() *Config {
	return &Config{
		Port:             "4000",
		CORSOrigins:      []string{"http://localhost:3000"},
		LogLevel:         "debug",
		Rounds:           2,
		DrawInterval:     6 * time.Second,
		AnnounceInterval: 1500 * time.Millisecond,
	}
}

// Load reads .env, then the TOML file named by BINGO_CONFIG, then environment overrides.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Info("[Config] No .env file found, reading environment variables")
	}

	cfg := Default()
	if path := os.Getenv("BINGO_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = strings.Split(v, ",")
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("PATTERNS_FILE"); v != "" {
		c.PatternsFile = v
	}
	if v := getenv("ROUNDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ROUNDS: %w", err)
		}
		c.Rounds = n
	}
	if v := getenv("DRAW_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DRAW_INTERVAL: %w", err)
		}
		c.DrawInterval = d
	}
	if v := getenv("ANNOUNCE_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ANNOUNCE_INTERVAL: %w", err)
		}
		c.AnnounceInterval = d
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Rounds < 1 {
		return fmt.Errorf("rounds must be at least 1, got %d", c.Rounds)
	}
	if c.DrawInterval <= 0 {
		return fmt.Errorf("draw interval must be positive, got %s", c.DrawInterval)
	}
	if c.AnnounceInterval < 0 {
		return fmt.Errorf("announce interval must not be negative, got %s", c.AnnounceInterval)
	}
	return nil
}
