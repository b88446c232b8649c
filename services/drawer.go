package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"gorm.io/datatypes"

	"github.com/bellapacxx/bingo-engine/game"
	"github.com/bellapacxx/bingo-engine/models"
	"github.com/bellapacxx/bingo-engine/realtime"
	"github.com/bellapacxx/bingo-engine/repository"
	"github.com/bellapacxx/bingo-engine/utils/logger"
)

var (
	ErrGameActive   = errors.New("a game is already in progress")
	ErrNoActiveGame = errors.New("no game in progress")
)

// DrawerState is a copy of the caller-side game.
type DrawerState struct {
	GameID  uint          `json:"gameId"`
	Active  bool          `json:"active"`
	Paused  bool          `json:"paused"`
	Round   int           `json:"round"`
	Rounds  int           `json:"rounds"`
	Pattern *game.Pattern `json:"pattern"`
	Called  []int         `json:"calledNumbers"`
}

// Drawer is the caller side: it shuffles the 75 balls, publishes one per
// interval and moves the game through its rounds.
type Drawer struct {
	ch       realtime.Channel
	repo     repository.Repository
	interval time.Duration
	rounds   int
	patterns []*game.Pattern

	mu      sync.Mutex
	rnd     *rand.Rand
	current *models.Game
	active  bool
	paused  bool
	round   int
	pattern *game.Pattern
	called  []int
	stop    chan struct{}
}

func NewDrawer(ch realtime.Channel, repo repository.Repository, rnd *rand.Rand, interval time.Duration, rounds int, patterns []*game.Pattern) *Drawer {
	return &Drawer{
		ch:       ch,
		repo:     repo,
		rnd:      rnd,
		interval: interval,
		rounds:   rounds,
		patterns: patterns,
	}
}

func (d *Drawer) State() DrawerState {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := DrawerState{
		Active:  d.active,
		Paused:  d.paused,
		Round:   d.round,
		Rounds:  d.rounds,
		Pattern: d.pattern,
		Called:  append([]int{}, d.called...),
	}
	if d.current != nil {
		st.GameID = d.current.ID
	}
	return st
}

// pickPattern takes one from the catalog or generates one. Caller holds d.mu.
func (d *Drawer) pickPattern() *game.Pattern {
	if len(d.patterns) > 0 {
		return d.patterns[d.rnd.Intn(len(d.patterns))]
	}
	return game.RandomPattern(d.rnd, fmt.Sprintf("Random pattern %d", time.Now().Unix()))
}

func (d *Drawer) patternFor(round int) *game.Pattern {
	if round == game.PatternRound {
		return d.pickPattern()
	}
	return nil
}

func (d *Drawer) publishState(ctx context.Context, st game.GameState) error {
	if err := d.ch.Set(ctx, realtime.PathGameState, st); err != nil {
		return fmt.Errorf("publish game state: %w", err)
	}
	return nil
}

// StartGame clears the called numbers, announces round 1 and starts drawing.
func (d *Drawer) StartGame(ctx context.Context) (*game.GameState, error) {
	d.mu.Lock()
	if d.active {
		d.mu.Unlock()
		return nil, ErrGameActive
	}
	numbers := make([]int, game.MaxNumber)
	for i := range numbers {
		numbers[i] = i + 1
	}
	d.rnd.Shuffle(len(numbers), func(i, j int) { numbers[i], numbers[j] = numbers[j], numbers[i] })

	d.active = true
	d.paused = false
	d.round = 1
	d.pattern = d.patternFor(1)
	d.called = nil
	d.stop = make(chan struct{})
	stop := d.stop
	st := game.GameState{GameActive: true, CurrentRound: d.round, CurrentPattern: d.pattern}

	patternJSON, _ := json.Marshal(d.pattern)
	d.current = &models.Game{
		Status:        "in_progress",
		RoundNumber:   1,
		Pattern:       datatypes.JSON(patternJSON),
		CalledNumbers: datatypes.JSON([]byte("[]")),
		StartTime:     time.Now(),
	}
	g := *d.current
	d.mu.Unlock()

	if err := d.repo.SaveGame(ctx, &g); err != nil {
		logger.Errorf("[Drawer] failed to create game: %v", err)
	}
	d.mu.Lock()
	d.current.ID = g.ID
	d.mu.Unlock()

	if err := d.ch.Set(ctx, realtime.PathCalledNumbers, nil); err != nil {
		return nil, fmt.Errorf("reset called numbers: %w", err)
	}
	if err := d.ch.Set(ctx, realtime.PathPendingBingos, nil); err != nil {
		return nil, fmt.Errorf("reset claims: %w", err)
	}
	if err := d.ch.Set(ctx, realtime.PathVerificationResult, nil); err != nil {
		return nil, fmt.Errorf("reset verification: %w", err)
	}
	if err := d.publishState(ctx, st); err != nil {
		return nil, err
	}
	logger.Infof("[Drawer] game %d started, %d rounds", g.ID, d.rounds)

	go d.run(numbers, stop)
	return &st, nil
}

func (d *Drawer) run(numbers []int, stop <-chan struct{}) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[Drawer] draw loop panic: %v", r)
		}
	}()

	for i := 0; i < len(numbers); {
		select {
		case <-stop:
			logger.Infof("[Drawer] number draw stopped")
			return
		case <-time.After(d.interval):
			d.mu.Lock()
			paused := d.paused
			d.mu.Unlock()
			if paused {
				continue
			}
			if err := d.Call(context.Background(), numbers[i]); err != nil {
				if errors.Is(err, ErrNoActiveGame) {
					return
				}
				logger.Errorf("[Drawer] call %d: %v", numbers[i], err)
				continue
			}
			i++
		}
	}

	logger.Infof("[Drawer] all balls drawn")
	if err := d.Finish(context.Background()); err != nil && !errors.Is(err, ErrNoActiveGame) {
		logger.Errorf("[Drawer] finish: %v", err)
	}
}

// Call publishes one ball. Already called numbers are ignored.
func (d *Drawer) Call(ctx context.Context, n int) error {
	if _, err := game.LetterFor(n); err != nil {
		return err
	}
	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return ErrNoActiveGame
	}
	for _, c := range d.called {
		if c == n {
			d.mu.Unlock()
			return nil
		}
	}
	d.called = append(d.called, n)
	calledJSON, _ := json.Marshal(d.called)
	d.current.CalledNumbers = datatypes.JSON(calledJSON)
	g := *d.current
	d.mu.Unlock()

	if _, err := d.ch.Push(ctx, realtime.PathCalledNumbers, map[string]int{"number": n}); err != nil {
		return fmt.Errorf("push %d: %w", n, err)
	}
	if err := d.repo.SaveGame(ctx, &g); err != nil {
		logger.Errorf("[Drawer] failed to save game %d: %v", g.ID, err)
	}
	display, _ := game.Format(n)
	logger.Debugf("[Drawer] called %s", display)
	return nil
}

// Pause holds the draw while a claim is verified.
func (d *Drawer) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = true
}

func (d *Drawer) Resume() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.paused = false
}

// Called reports whether every number was drawn in the current game.
func (d *Drawer) Called(numbers []int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	drawn := make(map[int]bool, len(d.called))
	for _, c := range d.called {
		drawn[c] = true
	}
	for _, n := range numbers {
		if !drawn[n] {
			return false
		}
	}
	return true
}

// AdvanceRound moves to the next round, finishing the game after the last one.
func (d *Drawer) AdvanceRound(ctx context.Context) (ended bool, err error) {
	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return false, ErrNoActiveGame
	}
	if d.round >= d.rounds {
		d.mu.Unlock()
		return true, d.Finish(ctx)
	}
	d.round++
	d.pattern = d.patternFor(d.round)
	d.paused = false
	st := game.GameState{GameActive: true, CurrentRound: d.round, CurrentPattern: d.pattern}
	d.current.RoundNumber = d.round
	g := *d.current
	d.mu.Unlock()

	if err := d.repo.SaveGame(ctx, &g); err != nil {
		logger.Errorf("[Drawer] failed to save game %d: %v", g.ID, err)
	}
	logger.Infof("[Drawer] game %d round %d", g.ID, st.CurrentRound)
	return false, d.publishState(ctx, st)
}

// Finish stops drawing and retires the game.
func (d *Drawer) Finish(ctx context.Context) error {
	d.mu.Lock()
	if !d.active {
		d.mu.Unlock()
		return ErrNoActiveGame
	}
	d.active = false
	d.paused = false
	close(d.stop)
	now := time.Now()
	d.current.Status = "finished"
	d.current.EndTime = &now
	g := *d.current
	round := d.round
	d.mu.Unlock()

	if err := d.repo.SaveGame(ctx, &g); err != nil {
		logger.Errorf("[Drawer] failed to save game %d: %v", g.ID, err)
	}
	logger.Infof("[Drawer] game %d finished", g.ID)
	return d.publishState(ctx, game.GameState{CurrentRound: round, GameFinalized: true})
}

// Round returns the active round and its pattern.
func (d *Drawer) Round() (int, *game.Pattern) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.round, d.pattern
}

func (d *Drawer) GameID() uint {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.current == nil {
		return 0
	}
	return d.current.ID
}
