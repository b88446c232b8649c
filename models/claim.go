package models

import (
	"time"

	"gorm.io/datatypes"
)

type Claim struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	GameID        uint           `gorm:"index" json:"gameId"`
	CardID        string         `gorm:"index;size:36" json:"cartonId"`
	Type          string         `json:"type"` // FULL_CARD | PATTERN | LINE
	Round         int            `json:"round"`
	CardNumbers   datatypes.JSON `json:"cardNumbers"`
	MarkedCells   datatypes.JSON `json:"markedCells"`
	CalledNumbers datatypes.JSON `json:"calledNumbers"`
	Accepted      bool           `json:"accepted"`
	Reason        string         `json:"reason,omitempty"`
	ClaimedAt     time.Time      `json:"claimedAt"`
	CreatedAt     time.Time      `json:"created_at"`
}
