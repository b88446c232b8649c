package game

import (
	"fmt"
	"sync"
	"time"
)

// Listener receives room events in order. Callbacks run outside the room
// lock but must not feed called numbers back into the same room.
type Listener interface {
	NumberAnnounced(a Announcement)
	WinStatusChanged(cardID string, status WinStatus)
	CardStatusChanged(cardID string, status Status)
	ClaimEmitted(claim *WinClaim)
}

// NopListener ignores every event. Embed it to implement a subset.
type NopListener struct{}

func (NopListener) NumberAnnounced(Announcement)       {}
func (NopListener) WinStatusChanged(string, WinStatus) {}
func (NopListener) CardStatusChanged(string, Status)   {}
func (NopListener) ClaimEmitted(*WinClaim)             {}

// Room owns a player's cards and reconciles them with the called numbers and
// round published on the synchronization channel.
type Room struct {
	mu       sync.Mutex
	dispatch sync.Mutex

	cards    map[string]*Card
	order    []string
	wins     map[string]WinStatus
	claimed  map[string]int
	history  *History
	round    int
	pattern  *Pattern
	active   bool
	listener Listener
	now      func() time.Time
}

func NewRoom(listener Listener) *Room {
	if listener == nil {
		listener = NopListener{}
	}
	return &Room{
		cards:    make(map[string]*Card),
		wins:     make(map[string]WinStatus),
		claimed:  make(map[string]int),
		history:  NewHistory(),
		round:    1,
		listener: listener,
		now:      time.Now,
	}
}

type event func(Listener)

func (r *Room) emit(events []event) {
	for _, e := range events {
		e(r.listener)
	}
}

// AddCard registers a card, replacing one with the same id. An auto-mode card
// catches up with the known history.
func (r *Room) AddCard(card *Card) error {
	if err := card.Numbers.Validate(); err != nil {
		return fmt.Errorf("card %s: %w", card.ID, err)
	}
	r.dispatch.Lock()
	defer r.dispatch.Unlock()

	r.mu.Lock()
	c := card.Clone()
	if _, ok := r.cards[c.ID]; !ok {
		r.order = append(r.order, c.ID)
	}
	r.cards[c.ID] = c
	if c.Status.Playable() {
		ApplyCalledNumbers(c, r.history.Numbers())
	}
	events := r.reevaluate(c)
	r.mu.Unlock()

	r.emit(events)
	return nil
}

// RemoveCard drops a card from the room, e.g. once it has expired.
func (r *Room) RemoveCard(id string) {
	r.dispatch.Lock()
	defer r.dispatch.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cards[id]; !ok {
		return
	}
	delete(r.cards, id)
	delete(r.wins, id)
	delete(r.claimed, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Card returns a copy of the card.
func (r *Room) Card(id string) (*Card, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// Cards returns copies in insertion order.
func (r *Room) Cards() []*Card {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Card, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.cards[id].Clone())
	}
	return out
}

func (r *Room) CalledNumbers() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Numbers()
}

func (r *Room) Recent(k int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Last(k)
}

func (r *Room) Round() (int, *Pattern) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round, r.pattern
}

// reevaluate records the card's win status and returns an event when it changed.
func (r *Room) reevaluate(c *Card) []event {
	status, err := Evaluate(c, r.round, r.pattern)
	if err != nil {
		// patterns are validated before they reach the room
		status = WinStatus{FullCard: HasFullCard(c)}
	}
	if prev, ok := r.wins[c.ID]; ok && prev == status {
		return nil
	}
	r.wins[c.ID] = status
	id := c.ID
	return []event{func(l Listener) { l.WinStatusChanged(id, status) }}
}

// HandleCalledNumbers consumes a full-history snapshot from the channel. A
// null or empty snapshot resets the local history for the next game.
func (r *Room) HandleCalledNumbers(raw []byte) ([]int, error) {
	numbers, err := NormalizeCalled(raw)
	if err != nil {
		return nil, err
	}
	if len(numbers) == 0 {
		r.ResetHistory()
		return nil, nil
	}
	return r.Ingest(numbers)
}

func (r *Room) ResetHistory() {
	r.dispatch.Lock()
	defer r.dispatch.Unlock()

	r.mu.Lock()
	r.history.Reset()
	r.mu.Unlock()
}

// Ingest processes the genuinely new numbers of snapshot one at a time:
// append, auto-mark, re-evaluate, announce.
func (r *Room) Ingest(snapshot []int) ([]int, error) {
	r.dispatch.Lock()
	defer r.dispatch.Unlock()

	r.mu.Lock()
	fresh, err := r.history.Diff(snapshot)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	var events []event
	for _, n := range fresh {
		r.history.add(n)
		for _, id := range r.order {
			c := r.cards[id]
			if !c.Status.Playable() {
				continue
			}
			if ApplyCalledNumbers(c, []int{n}) > 0 {
				events = append(events, r.reevaluate(c)...)
			}
		}
		a, _ := Announce(n)
		events = append(events, func(l Listener) { l.NumberAnnounced(a) })
	}
	r.mu.Unlock()

	r.emit(events)
	return fresh, nil
}

// HandleGameState applies round, pattern and lifecycle changes.
func (r *Room) HandleGameState(st *GameState) {
	r.dispatch.Lock()
	defer r.dispatch.Unlock()

	r.mu.Lock()
	var events []event
	setStatus := func(c *Card, s Status) {
		c.Status = s
		id := c.ID
		events = append(events, func(l Listener) { l.CardStatusChanged(id, s) })
	}

	switch {
	case st == nil:
		r.active = false
	case st.GameFinalized:
		r.active = false
		for _, id := range r.order {
			if c := r.cards[id]; c.Status.Playable() || c.Status == StatusPendingVerification {
				setStatus(c, StatusExpired)
			}
		}
	default:
		started := !r.active && st.GameActive
		if started {
			r.claimed = make(map[string]int)
		}
		r.active = st.GameActive
		r.round = st.CurrentRound
		r.pattern = st.CurrentPattern
		for _, id := range r.order {
			c := r.cards[id]
			if started && c.Status == StatusCurrent {
				setStatus(c, StatusInPlay)
				ApplyCalledNumbers(c, r.history.Numbers())
			}
			events = append(events, r.reevaluate(c)...)
		}
	}
	r.mu.Unlock()

	r.emit(events)
}

// SetMode switches a card between manual and automatic marking. Switching to
// automatic marks every called number already on the card.
func (r *Room) SetMode(id string, auto bool) (int, error) {
	r.dispatch.Lock()
	defer r.dispatch.Unlock()

	r.mu.Lock()
	c, ok := r.cards[id]
	if !ok {
		r.mu.Unlock()
		return 0, ErrUnknownCard
	}
	if c.AutoMode == auto {
		r.mu.Unlock()
		return 0, nil
	}
	c.AutoMode = auto
	added := 0
	var events []event
	if auto && c.Status.Playable() {
		added = ApplyCalledNumbers(c, r.history.Numbers())
		events = r.reevaluate(c)
	}
	r.mu.Unlock()

	r.emit(events)
	return added, nil
}

// Toggle flips a manual mark and returns the cell's new state.
func (r *Room) Toggle(id string, row, col int) (bool, error) {
	r.dispatch.Lock()
	defer r.dispatch.Unlock()

	r.mu.Lock()
	c, ok := r.cards[id]
	if !ok {
		r.mu.Unlock()
		return false, ErrUnknownCard
	}
	if !c.Status.Playable() {
		r.mu.Unlock()
		return false, ErrNotEligible
	}
	marked, err := Toggle(c, Cell{Row: row, Col: col}, r.history)
	if err != nil {
		r.mu.Unlock()
		return false, err
	}
	events := r.reevaluate(c)
	r.mu.Unlock()

	r.emit(events)
	return marked, nil
}

// Status returns the current win status of a card.
func (r *Room) Status(id string) (WinStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.cards[id]
	if !ok {
		return WinStatus{}, ErrUnknownCard
	}
	return Evaluate(c, r.round, r.pattern)
}

// Claim emits a win claim for the card. A card claims at most once per round.
func (r *Room) Claim(id string) (*WinClaim, error) {
	r.dispatch.Lock()
	defer r.dispatch.Unlock()

	r.mu.Lock()
	c, ok := r.cards[id]
	if !ok {
		r.mu.Unlock()
		return nil, ErrUnknownCard
	}
	if round, ok := r.claimed[id]; ok && round == r.round {
		r.mu.Unlock()
		return nil, ErrAlreadyClaimed
	}
	claim, err := BuildClaim(c, r.round, r.pattern, r.history, r.now())
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.claimed[id] = r.round
	c.Status = StatusPendingVerification
	r.mu.Unlock()

	r.emit([]event{
		func(l Listener) { l.CardStatusChanged(id, StatusPendingVerification) },
		func(l Listener) { l.ClaimEmitted(claim) },
	})
	return claim, nil
}

// ResolveClaim returns a card awaiting verification to play.
func (r *Room) ResolveClaim(id string) {
	r.dispatch.Lock()
	defer r.dispatch.Unlock()

	r.mu.Lock()
	c, ok := r.cards[id]
	if !ok || c.Status != StatusPendingVerification {
		r.mu.Unlock()
		return
	}
	c.Status = StatusInPlay
	r.mu.Unlock()

	r.emit([]event{func(l Listener) { l.CardStatusChanged(id, StatusInPlay) }})
}
