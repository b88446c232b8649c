package config

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/bellapacxx/bingo-engine/models"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Card{},
		&models.Game{},
		&models.Claim{},
	); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
