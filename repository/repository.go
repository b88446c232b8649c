package repository

import (
	"context"
	"errors"

	"github.com/bellapacxx/bingo-engine/game"
	"github.com/bellapacxx/bingo-engine/models"
)

var ErrNotFound = errors.New("record not found")

type Repository interface {
	CreateCard(ctx context.Context, owner string, card *game.Card) error
	GetCard(ctx context.Context, id string) (*game.Card, error)
	UpdateCard(ctx context.Context, card *game.Card) error
	ListCards(ctx context.Context, owner string) ([]*game.Card, error)

	SaveClaim(ctx context.Context, gameID uint, claim *game.WinClaim, accepted bool, reason string) (*models.Claim, error)
	ListClaims(ctx context.Context, gameID uint) ([]models.Claim, error)

	SaveGame(ctx context.Context, g *models.Game) error
	LatestGame(ctx context.Context) (*models.Game, error)
}
