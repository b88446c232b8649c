package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bellapacxx/bingo-engine/game"
	"github.com/bellapacxx/bingo-engine/models"
)

// GormRepository stores cards, claims and games in postgres.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *GormRepository) CreateCard(ctx context.Context, owner string, card *game.Card) error {
	m, err := toModel(owner, card)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *GormRepository) GetCard(ctx context.Context, id string) (*game.Card, error) {
	var m models.Card
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return fromModel(&m)
}

func (r *GormRepository) UpdateCard(ctx context.Context, card *game.Card) error {
	m, err := toModel("", card)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&models.Card{}).Where("id = ?", card.ID).Updates(map[string]any{
		"marked":    m.Marked,
		"auto_mode": m.AutoMode,
		"status":    m.Status,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) ListCards(ctx context.Context, owner string) ([]*game.Card, error) {
	var ms []models.Card
	q := r.db.WithContext(ctx).Order("created_at, code")
	if owner != "" {
		q = q.Where("owner = ?", owner)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*game.Card, 0, len(ms))
	for i := range ms {
		c, err := fromModel(&ms[i])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *GormRepository) SaveClaim(ctx context.Context, gameID uint, claim *game.WinClaim, accepted bool, reason string) (*models.Claim, error) {
	m, err := claimModel(gameID, claim, accepted, reason)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (r *GormRepository) ListClaims(ctx context.Context, gameID uint) ([]models.Claim, error) {
	out := []models.Claim{}
	q := r.db.WithContext(ctx).Order("id")
	if gameID != 0 {
		q = q.Where("game_id = ?", gameID)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepository) SaveGame(ctx context.Context, g *models.Game) error {
	return r.db.WithContext(ctx).Save(g).Error
}

func (r *GormRepository) LatestGame(ctx context.Context) (*models.Game, error) {
	var g models.Game
	if err := r.db.WithContext(ctx).Order("id DESC").First(&g).Error; err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}
