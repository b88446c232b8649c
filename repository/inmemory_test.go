package repository

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellapacxx/bingo-engine/game"
	"github.com/bellapacxx/bingo-engine/models"
)

func newCard(id, code string) *game.Card {
	grid := game.NewGenerator(rand.New(rand.NewSource(int64(len(id))))).Generate()
	return game.NewCard(id, code, grid)
}

func TestCardRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	c := newCard("c1", "BC-1")
	c.Marked[game.Cell{Row: 0, Col: 0}] = struct{}{}
	require.NoError(t, repo.CreateCard(ctx, "0414-1234567", c))

	got, err := repo.GetCard(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, c.Numbers, got.Numbers)
	assert.Equal(t, c.Marked, got.Marked)
	assert.Equal(t, game.StatusPendingPayment, got.Status)

	got.AutoMode = true
	got.Status = game.StatusCurrent
	require.NoError(t, repo.UpdateCard(ctx, got))
	again, err := repo.GetCard(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, again.AutoMode)

	_, err = repo.GetCard(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.UpdateCard(ctx, newCard("missing", "X")), ErrNotFound)
}

func TestListCards(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	a := newCard("a", "BC-1")
	a.Status = game.StatusCurrent
	b := newCard("bb", "BC-2")
	require.NoError(t, repo.CreateCard(ctx, "p1", a))
	require.NoError(t, repo.CreateCard(ctx, "p2", b))

	mine, err := repo.ListCards(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "a", mine[0].ID)

	all, err := repo.ListCards(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestClaimsAndGames(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	_, err := repo.LatestGame(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	g := &models.Game{Status: "in_progress", RoundNumber: 1}
	require.NoError(t, repo.SaveGame(ctx, g))
	assert.Equal(t, uint(1), g.ID)
	g.RoundNumber = 2
	require.NoError(t, repo.SaveGame(ctx, g))
	latest, err := repo.LatestGame(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.RoundNumber)

	claim := &game.WinClaim{CartonID: "a", Type: game.ClaimLine, Round: 2, MarkedCells: game.MarkSet{}, CalledNumbers: []int{1}}
	saved, err := repo.SaveClaim(ctx, g.ID, claim, true, "")
	require.NoError(t, err)
	assert.Equal(t, uint(1), saved.ID)

	claims, err := repo.ListClaims(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.JSONEq(t, `[1]`, string(claims[0].CalledNumbers))
}
