package main

import (
	"github.com/bellapacxx/bingo-engine/config"
	"github.com/bellapacxx/bingo-engine/utils/logger"
)

func main() {
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if _, err := config.SetupDatabase(cfg); err != nil { // connects + migrates
		logger.Fatalf("migration: %v", err)
	}
	logger.Info("✅ Database migration completed successfully")
}
