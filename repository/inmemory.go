package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bellapacxx/bingo-engine/game"
	"github.com/bellapacxx/bingo-engine/models"
)

type InMemoryRepository struct {
	mu          sync.Mutex
	cards       map[string]*models.Card
	claims      []models.Claim
	games       []models.Game
	nextClaimID uint
	nextGameID  uint
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		cards:       make(map[string]*models.Card),
		nextClaimID: 1,
		nextGameID:  1,
	}
}

func (r *InMemoryRepository) CreateCard(_ context.Context, owner string, card *game.Card) error {
	m, err := toModel(owner, card)
	if err != nil {
		return err
	}
	now := time.Now()
	m.CreatedAt, m.UpdatedAt = now, now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cards[m.ID] = m
	return nil
}

func (r *InMemoryRepository) GetCard(_ context.Context, id string) (*game.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.cards[id]
	if !ok {
		return nil, ErrNotFound
	}
	return fromModel(m)
}

func (r *InMemoryRepository) UpdateCard(_ context.Context, card *game.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.cards[card.ID]
	if !ok {
		return ErrNotFound
	}
	m, err := toModel(old.Owner, card)
	if err != nil {
		return err
	}
	m.CreatedAt, m.UpdatedAt = old.CreatedAt, time.Now()
	r.cards[card.ID] = m
	return nil
}

func (r *InMemoryRepository) ListCards(_ context.Context, owner string) ([]*game.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ms []*models.Card
	for _, m := range r.cards {
		if owner == "" || m.Owner == owner {
			ms = append(ms, m)
		}
	}
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].CreatedAt.Equal(ms[j].CreatedAt) {
			return ms[i].Code < ms[j].Code
		}
		return ms[i].CreatedAt.Before(ms[j].CreatedAt)
	})
	out := make([]*game.Card, 0, len(ms))
	for _, m := range ms {
		c, err := fromModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *InMemoryRepository) SaveClaim(_ context.Context, gameID uint, claim *game.WinClaim, accepted bool, reason string) (*models.Claim, error) {
	m, err := claimModel(gameID, claim, accepted, reason)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = r.nextClaimID
	r.nextClaimID++
	m.CreatedAt = time.Now()
	r.claims = append(r.claims, *m)
	return m, nil
}

func (r *InMemoryRepository) ListClaims(_ context.Context, gameID uint) ([]models.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Claim{}
	for _, c := range r.claims {
		if gameID == 0 || c.GameID == gameID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *InMemoryRepository) SaveGame(_ context.Context, g *models.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if g.ID == 0 {
		g.ID = r.nextGameID
		r.nextGameID++
		g.CreatedAt = now
		g.UpdatedAt = now
		r.games = append(r.games, *g)
		return nil
	}
	for i := range r.games {
		if r.games[i].ID == g.ID {
			g.UpdatedAt = now
			r.games[i] = *g
			return nil
		}
	}
	return ErrNotFound
}

func (r *InMemoryRepository) LatestGame(_ context.Context) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.games) == 0 {
		return nil, ErrNotFound
	}
	g := r.games[len(r.games)-1]
	return &g, nil
}
