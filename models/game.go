package models

import (
	"time"

	"gorm.io/datatypes"
)

type Game struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Status        string         `json:"status"` // waiting | in_progress | paused | finished
	RoundNumber   int            `json:"roundNumber"`
	Pattern       datatypes.JSON `json:"pattern"`
	CalledNumbers datatypes.JSON `json:"calledNumbers"`
	StartTime     time.Time      `json:"startTime"`
	EndTime       *time.Time     `json:"endTime"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
