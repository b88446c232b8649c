package config

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bellapacxx/bingo-engine/utils/logger"
)

// SetupDatabase connects to postgres and runs migrations.
func SetupDatabase(cfg *Config) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to DB: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Info("✅ Database connected and migrated")
	return db, nil
}
