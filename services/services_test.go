package services

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bellapacxx/bingo-engine/game"
	"github.com/bellapacxx/bingo-engine/realtime"
	"github.com/bellapacxx/bingo-engine/repository"
)

// testGrid's center row is 3 18 _ 50 70.
func testGrid() game.Grid {
	return game.Grid{
		{1, 16, 31, 46, 61},
		{2, 17, 32, 47, 62},
		{3, 18, game.Free, 50, 70},
		{4, 19, 33, 48, 63},
		{5, 20, 34, 49, 64},
	}
}

var centerRow = &game.Pattern{Name: "center row", Positions: []game.Cell{{Row: 2, Col: 0}, {Row: 2, Col: 1}, {Row: 2, Col: 3}, {Row: 2, Col: 4}}}

type fixture struct {
	ch      *realtime.Memory
	repo    *repository.InMemoryRepository
	drawer  *Drawer
	session *Session
}

// newFixture wires a drawer that never draws on its own; tests call numbers explicitly.
func newFixture(t *testing.T, rounds int) *fixture {
	t.Helper()
	ch := realtime.NewMemory()
	repo := repository.NewInMemoryRepository()
	drawer := NewDrawer(ch, repo, rand.New(rand.NewSource(1)), time.Hour, rounds, []*game.Pattern{centerRow})
	session := NewSession(ch, repo, nil)
	t.Cleanup(func() {
		session.Stop()
		_ = drawer.Finish(context.Background())
		ch.Close()
	})
	return &fixture{ch: ch, repo: repo, drawer: drawer, session: session}
}

func (f *fixture) addCard(t *testing.T, id string, status game.Status, auto bool) {
	t.Helper()
	c := game.NewCard(id, "BC-"+id, testGrid())
	c.Status = status
	c.AutoMode = auto
	require.NoError(t, f.repo.CreateCard(context.Background(), "0414-0000000", c))
}

func (f *fixture) call(t *testing.T, numbers ...int) {
	t.Helper()
	for _, n := range numbers {
		require.NoError(t, f.drawer.Call(context.Background(), n))
	}
}
