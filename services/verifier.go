package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"github.com/bellapacxx/bingo-engine/game"
	"github.com/bellapacxx/bingo-engine/realtime"
	"github.com/bellapacxx/bingo-engine/repository"
	"github.com/bellapacxx/bingo-engine/utils/logger"
)

type pendingClaim struct {
	key   string
	claim *game.WinClaim
}

// Reasons for rejections that are not rule errors of the card itself.
const (
	ReasonNoGame       = "no_game"
	ReasonWrongRound   = "wrong_round"
	ReasonCardMismatch = "card_mismatch"
	ReasonStorage      = "storage_error"
)

// Verifier checks every claim pushed to pendingBingos against the stored card
// and the drawer's authoritative game, records it and publishes the verdict.
type Verifier struct {
	ch     realtime.Channel
	repo   repository.Repository
	drawer *Drawer

	mu      sync.Mutex
	seen    map[string]bool
	pending []pendingClaim
	wake    chan struct{}
}

func NewVerifier(ch realtime.Channel, repo repository.Repository, drawer *Drawer) *Verifier {
	return &Verifier{
		ch:     ch,
		repo:   repo,
		drawer: drawer,
		seen:   make(map[string]bool),
		wake:   make(chan struct{}, 1),
	}
}

// Run subscribes and verifies claims one at a time until ctx is done.
func (v *Verifier) Run(ctx context.Context) {
	unsub := v.ch.Subscribe(realtime.PathPendingBingos, v.onPending)
	defer unsub()

	for {
		select {
		case <-ctx.Done():
			return
		case <-v.wake:
			for {
				p, ok := v.next()
				if !ok {
					break
				}
				res := v.Verify(ctx, p.key, p.claim)
				if err := v.ch.Set(ctx, realtime.PathVerificationResult, res); err != nil {
					logger.Errorf("[Verifier] failed to publish result for %s: %v", p.key, err)
				}
			}
		}
	}
}

func (v *Verifier) next() (pendingClaim, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.pending) == 0 {
		return pendingClaim{}, false
	}
	p := v.pending[0]
	v.pending = v.pending[1:]
	return p, true
}

// Pending is the number of claims waiting for a verdict.
func (v *Verifier) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.pending)
}

// onPending runs inside the channel's notification, often while the claiming
// room is still dispatching, so it only queues. The queue is unbounded: a
// dropped claim would leave its card waiting for a verdict forever.
func (v *Verifier) onPending(raw json.RawMessage) {
	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keyed); err != nil || keyed == nil {
		return
	}
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	v.mu.Lock()
	queued := 0
	for _, k := range keys {
		if v.seen[k] {
			continue
		}
		v.seen[k] = true
		var claim game.WinClaim
		if err := json.Unmarshal(keyed[k], &claim); err != nil {
			logger.Errorf("[Verifier] malformed claim %s: %v", k, err)
			continue
		}
		v.pending = append(v.pending, pendingClaim{key: k, claim: &claim})
		queued++
	}
	v.mu.Unlock()

	if queued == 0 {
		return
	}
	v.drawer.Pause()
	select {
	case v.wake <- struct{}{}:
	default:
	}
}

// checkCard matches the claim against the stored card. The claim's own grid
// is never trusted.
func (v *Verifier) checkCard(ctx context.Context, claim *game.WinClaim) string {
	stored, err := v.repo.GetCard(ctx, claim.CartonID)
	if errors.Is(err, repository.ErrNotFound) {
		return game.ErrUnknownCard.Code
	}
	if err != nil {
		logger.Errorf("[Verifier] load card %s: %v", claim.CartonID, err)
		return ReasonStorage
	}
	if !stored.Status.Playable() && stored.Status != game.StatusPendingVerification {
		return game.ErrNotEligible.Code
	}
	if stored.Numbers != claim.CardNumbers {
		return ReasonCardMismatch
	}
	return ""
}

// Verify decides one claim and moves the game along.
func (v *Verifier) Verify(ctx context.Context, key string, claim *game.WinClaim) VerificationResult {
	res := VerificationResult{Key: key, CartonID: claim.CartonID, Type: claim.Type, Round: claim.Round}
	round, pattern := v.drawer.Round()

	switch {
	case !v.drawer.State().Active:
		res.Reason = ReasonNoGame
	case claim.Round != round:
		res.Reason = ReasonWrongRound
	default:
		if res.Reason = v.checkCard(ctx, claim); res.Reason != "" {
			break
		}
		if !v.drawer.Called(claim.CalledNumbers) {
			res.Reason = game.ErrNotCalled.Code
			break
		}
		if err := game.VerifyClaim(claim, pattern); err != nil {
			res.Reason = game.Reason(err)
			if res.Reason == "" {
				res.Reason = err.Error()
			}
			break
		}
		res.Accepted = true
	}

	if _, err := v.repo.SaveClaim(ctx, v.drawer.GameID(), claim, res.Accepted, res.Reason); err != nil {
		logger.Errorf("[Verifier] failed to save claim %s: %v", key, err)
	}

	if !res.Accepted {
		logger.Infof("[Verifier] card %s claim rejected: %s", claim.CartonID, res.Reason)
		v.drawer.Resume()
		return res
	}

	logger.Infof("[Verifier] card %s wins %s in round %d", claim.CartonID, claim.Type, claim.Round)
	ended, err := v.drawer.AdvanceRound(ctx)
	if err != nil {
		logger.Errorf("[Verifier] advance round: %v", err)
	}
	res.GameEnded = ended
	return res
}
