package services

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellapacxx/bingo-engine/game"
)

func TestSessionLoadsStoredCards(t *testing.T) {
	f := newFixture(t, 2)
	f.addCard(t, "a", game.StatusCurrent, true)
	f.addCard(t, "b", game.StatusExpired, true)
	require.NoError(t, f.session.Start(context.Background()))

	_, ok := f.session.Room().Card("a")
	assert.True(t, ok)
	_, ok = f.session.Room().Card("b")
	assert.False(t, ok, "expired cards stay out of the room")
}

func TestSessionAutoMarksAndPersists(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	f.addCard(t, "a", game.StatusCurrent, true)
	require.NoError(t, f.session.Start(ctx))

	_, err := f.drawer.StartGame(ctx)
	require.NoError(t, err)
	f.call(t, 3, 18, 75)

	c, ok := f.session.Room().Card("a")
	require.True(t, ok)
	assert.Equal(t, game.StatusInPlay, c.Status)
	assert.ElementsMatch(t, []string{"2-0", "2-1"}, c.Marked.Keys())

	stored, err := f.repo.GetCard(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, game.StatusInPlay, stored.Status)
	assert.ElementsMatch(t, []string{"2-0", "2-1"}, stored.Marked.Keys())
}

func TestSessionManualToggle(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	f.addCard(t, "m", game.StatusCurrent, false)
	require.NoError(t, f.session.Start(ctx))
	_, err := f.drawer.StartGame(ctx)
	require.NoError(t, err)
	f.call(t, 3)

	_, err = f.session.Toggle("m", 0, 1)
	assert.Equal(t, "not_called", game.Reason(err))

	marked, err := f.session.Toggle("m", 2, 0)
	require.NoError(t, err)
	assert.True(t, marked)

	added, err := f.session.SetMode("m", true)
	require.NoError(t, err)
	assert.Equal(t, 0, added)

	stored, err := f.repo.GetCard(ctx, "m")
	require.NoError(t, err)
	assert.True(t, stored.AutoMode)
	assert.Equal(t, []string{"2-0"}, stored.Marked.Keys())
}

func TestGamePlaysThroughBothRounds(t *testing.T) {
	f := newFixture(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.addCard(t, "a", game.StatusCurrent, true)
	require.NoError(t, f.session.Start(ctx))
	v := NewVerifier(f.ch, f.repo, f.drawer)
	go v.Run(ctx)

	_, err := f.drawer.StartGame(ctx)
	require.NoError(t, err)
	f.call(t, 3, 18, 50, 70)

	st, err := f.session.Status("a")
	require.NoError(t, err)
	assert.True(t, st.Line, "the round 1 pattern is complete")

	claim, err := f.session.Claim("a")
	require.NoError(t, err)
	assert.Equal(t, game.ClaimPattern, claim.Type)

	_, err = f.session.Claim("a")
	assert.ErrorIs(t, err, game.ErrAlreadyClaimed)

	require.Eventually(t, func() bool {
		c, _ := f.session.Room().Card("a")
		round, _ := f.session.Room().Round()
		return c.Status == game.StatusInPlay && round == 2
	}, 2*time.Second, 5*time.Millisecond)

	claim, err = f.session.Claim("a")
	require.NoError(t, err)
	assert.Equal(t, game.ClaimLine, claim.Type)
	assert.Equal(t, 2, claim.Round)

	require.Eventually(t, func() bool {
		_, inRoom := f.session.Room().Card("a")
		return !inRoom && !f.drawer.State().Active
	}, 2*time.Second, 5*time.Millisecond)

	stored, err := f.repo.GetCard(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, game.StatusExpired, stored.Status, "expired cards leave the room once stored")

	claims, err := f.repo.ListClaims(ctx, 0)
	require.NoError(t, err)
	require.Len(t, claims, 2)
	for _, c := range claims {
		assert.True(t, c.Accepted)
	}
}

func TestVerifierRejections(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()
	v := NewVerifier(f.ch, f.repo, f.drawer)
	f.addCard(t, "x", game.StatusInPlay, false)

	claim := func(round int, called ...int) *game.WinClaim {
		return &game.WinClaim{CartonID: "x", Type: game.ClaimPattern, Round: round, CardNumbers: testGrid(), CalledNumbers: called}
	}

	res := v.Verify(ctx, "k0", claim(1, 3))
	assert.False(t, res.Accepted)
	assert.Equal(t, "no_game", res.Reason)

	_, err := f.drawer.StartGame(ctx)
	require.NoError(t, err)
	f.call(t, 3)

	res = v.Verify(ctx, "k1", claim(2, 3))
	assert.Equal(t, "wrong_round", res.Reason)

	res = v.Verify(ctx, "k2", claim(1, 3, 9))
	assert.Equal(t, "not_called", res.Reason)

	marks, err := game.MarksFromKeys([]string{"2-0"})
	require.NoError(t, err)
	partial := claim(1, 3)
	partial.MarkedCells = marks
	res = v.Verify(ctx, "k3", partial)
	assert.False(t, res.Accepted)
	assert.Equal(t, "no_win", res.Reason)

	round, _ := f.drawer.Round()
	assert.Equal(t, 1, round, "rejected claims keep the round")
	assert.False(t, f.drawer.State().Paused)
}

func TestVerifierChecksStoredCard(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	v := NewVerifier(f.ch, f.repo, f.drawer)
	f.addCard(t, "paid", game.StatusInPlay, true)
	f.addCard(t, "old", game.StatusExpired, true)

	_, err := f.drawer.StartGame(ctx)
	require.NoError(t, err)
	f.call(t, 3, 18, 50, 70)

	marks, err := game.MarksFromKeys([]string{"2-0", "2-1", "2-3", "2-4"})
	require.NoError(t, err)
	winning := func(id string, grid game.Grid) *game.WinClaim {
		return &game.WinClaim{
			CartonID:      id,
			Type:          game.ClaimPattern,
			Round:         1,
			CardNumbers:   grid,
			MarkedCells:   marks,
			CalledNumbers: []int{3, 18, 50, 70},
		}
	}

	res := v.Verify(ctx, "k0", winning("does-not-exist", testGrid()))
	assert.False(t, res.Accepted)
	assert.Equal(t, "unknown_card", res.Reason)

	res = v.Verify(ctx, "k1", winning("old", testGrid()))
	assert.Equal(t, "not_eligible", res.Reason)

	other := testGrid()
	other[0][0], other[2][0] = other[2][0], other[0][0]
	res = v.Verify(ctx, "k2", winning("paid", other))
	assert.Equal(t, "card_mismatch", res.Reason, "the claim's grid must be the stored one")

	assert.True(t, f.drawer.State().Active, "no rejected claim ends the game")

	res = v.Verify(ctx, "k3", winning("paid", testGrid()))
	assert.True(t, res.Accepted)
	assert.True(t, res.GameEnded)

	claims, err := f.repo.ListClaims(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, claims, 4)
}

func TestVerifierQueuesEveryClaim(t *testing.T) {
	f := newFixture(t, 2)
	v := NewVerifier(f.ch, f.repo, f.drawer)

	const n = 200
	keyed := make(map[string]*game.WinClaim, n)
	for i := 0; i < n; i++ {
		keyed[fmt.Sprintf("-%04d", i)] = &game.WinClaim{CartonID: "x", Round: 1}
	}
	raw, err := json.Marshal(keyed)
	require.NoError(t, err)

	v.onPending(raw)
	v.onPending(raw)
	assert.Equal(t, n, v.Pending(), "no claim is dropped and none is queued twice")

	first, ok := v.next()
	require.True(t, ok)
	assert.Equal(t, "-0000", first.key)
}
