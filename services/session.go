package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/bellapacxx/bingo-engine/game"
	"github.com/bellapacxx/bingo-engine/realtime"
	"github.com/bellapacxx/bingo-engine/repository"
	"github.com/bellapacxx/bingo-engine/utils/logger"
)

// VerificationResult is published by the Verifier for every claim.
type VerificationResult struct {
	Key       string         `json:"key"`
	CartonID  string         `json:"cartonId"`
	Type      game.ClaimType `json:"type"`
	Round     int            `json:"round"`
	Accepted  bool           `json:"accepted"`
	Reason    string         `json:"reason,omitempty"`
	GameEnded bool           `json:"gameEnded"`
}

// Session keeps the server's cards in a game.Room synchronized with the channel.
type Session struct {
	ch        realtime.Channel
	repo      repository.Repository
	announcer *Announcer
	room      *game.Room

	mu     sync.Mutex
	unsubs []func()
}

func NewSession(ch realtime.Channel, repo repository.Repository, announcer *Announcer) *Session {
	s := &Session{ch: ch, repo: repo, announcer: announcer}
	s.room = game.NewRoom(s)
	return s
}

// Start loads the stored cards and subscribes to the game paths.
func (s *Session) Start(ctx context.Context) error {
	cards, err := s.repo.ListCards(ctx, "")
	if err != nil {
		return fmt.Errorf("load cards: %w", err)
	}
	for _, c := range cards {
		if c.Status == game.StatusExpired {
			continue
		}
		if err := s.room.AddCard(c); err != nil {
			logger.Errorf("[Session] skipping card %s: %v", c.ID, err)
		}
	}
	logger.Infof("[Session] loaded %d cards", len(s.room.Cards()))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubs = append(s.unsubs,
		s.ch.Subscribe(realtime.PathGameState, s.onGameState),
		s.ch.Subscribe(realtime.PathCalledNumbers, s.onCalledNumbers),
		s.ch.Subscribe(realtime.PathVerificationResult, s.onVerification),
	)
	return nil
}

func (s *Session) Stop() {
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()
	for _, u := range unsubs {
		u()
	}
}

func (s *Session) Room() *game.Room { return s.room }

func (s *Session) onGameState(raw json.RawMessage) {
	st, err := game.ParseGameState(raw)
	if err != nil {
		logger.Errorf("[Session] rejected game state: %v", err)
		return
	}
	s.room.HandleGameState(st)
	if st != nil && st.GameFinalized {
		s.dropExpired()
	}
}

// dropExpired removes retired cards from the room. Their final state is
// already stored by CardStatusChanged.
func (s *Session) dropExpired() {
	for _, c := range s.room.Cards() {
		if c.Status == game.StatusExpired {
			s.room.RemoveCard(c.ID)
		}
	}
}

func (s *Session) onCalledNumbers(raw json.RawMessage) {
	fresh, err := s.room.HandleCalledNumbers(raw)
	if err != nil {
		logger.Errorf("[Session] rejected called numbers: %v", err)
		return
	}
	if len(fresh) == 0 {
		return
	}
	logger.Debugf("[Session] new numbers %v", fresh)
	s.persistAll()
}

func (s *Session) onVerification(raw json.RawMessage) {
	var res *VerificationResult
	if err := json.Unmarshal(raw, &res); err != nil {
		logger.Errorf("[Session] invalid verification result: %v", err)
		return
	}
	if res == nil {
		return
	}
	if _, ok := s.room.Card(res.CartonID); !ok {
		return
	}
	if !res.GameEnded {
		s.room.ResolveClaim(res.CartonID)
	}
}

// AddCard registers a stored card with the room, e.g. once its payment is verified.
func (s *Session) AddCard(c *game.Card) error {
	if err := s.room.AddCard(c); err != nil {
		return err
	}
	s.persist(c.ID)
	return nil
}

func (s *Session) SetMode(id string, auto bool) (int, error) {
	added, err := s.room.SetMode(id, auto)
	if err != nil {
		return 0, err
	}
	s.persist(id)
	return added, nil
}

func (s *Session) Toggle(id string, row, col int) (bool, error) {
	marked, err := s.room.Toggle(id, row, col)
	if err != nil {
		return false, err
	}
	s.persist(id)
	return marked, nil
}

func (s *Session) Claim(id string) (*game.WinClaim, error) {
	return s.room.Claim(id)
}

func (s *Session) Status(id string) (game.WinStatus, error) {
	return s.room.Status(id)
}

func (s *Session) persist(id string) {
	c, ok := s.room.Card(id)
	if !ok {
		return
	}
	if err := s.repo.UpdateCard(context.Background(), c); err != nil {
		logger.Errorf("[Session] failed to save card %s: %v", id, err)
	}
}

func (s *Session) persistAll() {
	for _, c := range s.room.Cards() {
		if c.AutoMode && c.Status.Playable() {
			s.persist(c.ID)
		}
	}
}

// game.Listener

func (s *Session) NumberAnnounced(a game.Announcement) {
	if s.announcer != nil {
		s.announcer.Enqueue(a)
	}
}

func (s *Session) WinStatusChanged(id string, st game.WinStatus) {
	if st.Any() {
		logger.Infof("[Session] card %s can claim (fullCard=%t line=%t)", id, st.FullCard, st.Line)
	}
}

func (s *Session) CardStatusChanged(id string, st game.Status) {
	logger.Debugf("[Session] card %s is now %s", id, st)
	s.persist(id)
}

func (s *Session) ClaimEmitted(claim *game.WinClaim) {
	key, err := s.ch.Push(context.Background(), realtime.PathPendingBingos, claim)
	if err != nil {
		logger.Errorf("[Session] failed to send claim for card %s: %v", claim.CartonID, err)
		return
	}
	logger.Infof("[Session] card %s claimed %s in round %d (key=%s)", claim.CartonID, claim.Type, claim.Round, key)
}
