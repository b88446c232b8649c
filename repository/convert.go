package repository

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"github.com/bellapacxx/bingo-engine/game"
	"github.com/bellapacxx/bingo-engine/models"
)

func toModel(owner string, c *game.Card) (*models.Card, error) {
	numbers, err := json.Marshal(c.Numbers)
	if err != nil {
		return nil, err
	}
	marked, err := json.Marshal(c.Marked)
	if err != nil {
		return nil, err
	}
	return &models.Card{
		ID:       c.ID,
		Code:     c.Code,
		Owner:    owner,
		Numbers:  datatypes.JSON(numbers),
		Marked:   datatypes.JSON(marked),
		AutoMode: c.AutoMode,
		Status:   string(c.Status),
	}, nil
}

func fromModel(m *models.Card) (*game.Card, error) {
	c := &game.Card{
		ID:       m.ID,
		Code:     m.Code,
		AutoMode: m.AutoMode,
		Status:   game.Status(m.Status),
		Marked:   make(game.MarkSet),
	}
	if err := json.Unmarshal(m.Numbers, &c.Numbers); err != nil {
		return nil, fmt.Errorf("card %s numbers: %w", m.ID, err)
	}
	if len(m.Marked) > 0 {
		if err := json.Unmarshal(m.Marked, &c.Marked); err != nil {
			return nil, fmt.Errorf("card %s marks: %w", m.ID, err)
		}
	}
	return c, nil
}

func claimModel(gameID uint, claim *game.WinClaim, accepted bool, reason string) (*models.Claim, error) {
	numbers, err := json.Marshal(claim.CardNumbers)
	if err != nil {
		return nil, err
	}
	marked, err := json.Marshal(claim.MarkedCells)
	if err != nil {
		return nil, err
	}
	called, err := json.Marshal(claim.CalledNumbers)
	if err != nil {
		return nil, err
	}
	claimedAt := claim.ClaimedAt
	if claimedAt.IsZero() {
		claimedAt = time.Now()
	}
	return &models.Claim{
		GameID:        gameID,
		CardID:        claim.CartonID,
		Type:          string(claim.Type),
		Round:         claim.Round,
		CardNumbers:   datatypes.JSON(numbers),
		MarkedCells:   datatypes.JSON(marked),
		CalledNumbers: datatypes.JSON(called),
		Accepted:      accepted,
		Reason:        reason,
		ClaimedAt:     claimedAt,
	}, nil
}
