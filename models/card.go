package models

import (
	"time"

	"gorm.io/datatypes"
)

type Card struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Code      string         `gorm:"uniqueIndex;size:16" json:"code"`
	Owner     string         `gorm:"index" json:"owner"`
	Numbers   datatypes.JSON `json:"numbers"` // 5x5 grid, center 0
	Marked    datatypes.JSON `json:"marked"`  // ["row-col", ...]
	AutoMode  bool           `json:"autoMode"`
	Status    string         `gorm:"index" json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
