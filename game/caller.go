package game

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

var letters = [...]string{"B", "I", "N", "G", "O"}

func checkNumber(n int) error {
	if n < MinNumber || n > MaxNumber {
		return fmt.Errorf("%d: %w", n, ErrNumberOutOfRange)
	}
	return nil
}

// LetterFor maps a ball to its column letter.
func LetterFor(n int) (string, error) {
	if err := checkNumber(n); err != nil {
		return "", err
	}
	return letters[(n-1)/15], nil
}

// Format returns the display form, e.g. "B7".
func Format(n int) (string, error) {
	l, err := LetterFor(n)
	if err != nil {
		return "", err
	}
	return l + strconv.Itoa(n), nil
}

// Announcement is the "number announced" event.
type Announcement struct {
	Letter string `json:"letter"`
	Number int    `json:"number"`
}

func Announce(n int) (Announcement, error) {
	l, err := LetterFor(n)
	if err != nil {
		return Announcement{}, err
	}
	return Announcement{Letter: l, Number: n}, nil
}

// History is the append-only local called-number sequence of one game.
type History struct {
	order []int
	seen  map[int]bool
}

func NewHistory(numbers ...int) *History {
	h := &History{seen: make(map[int]bool)}
	for _, n := range numbers {
		h.add(n)
	}
	return h
}

func (h *History) add(n int) bool {
	if h.seen[n] {
		return false
	}
	if h.seen == nil {
		h.seen = make(map[int]bool)
	}
	h.seen[n] = true
	h.order = append(h.order, n)
	return true
}

func (h *History) Contains(n int) bool { return h.seen[n] }

func (h *History) Len() int { return len(h.order) }

// Numbers returns a copy in call order.
func (h *History) Numbers() []int { return append([]int(nil), h.order...) }

// Last returns up to k most recent numbers, oldest first.
func (h *History) Last(k int) []int {
	if k > len(h.order) {
		k = len(h.order)
	}
	return append([]int(nil), h.order[len(h.order)-k:]...)
}

func (h *History) Reset() {
	h.order = nil
	h.seen = make(map[int]bool)
}

// Diff returns the numbers of snapshot not yet in h, in snapshot order, each
// once. h is not modified.
func (h *History) Diff(snapshot []int) ([]int, error) {
	var fresh []int
	pending := make(map[int]bool)
	for _, n := range snapshot {
		if err := checkNumber(n); err != nil {
			return nil, err
		}
		if h.seen[n] || pending[n] {
			continue
		}
		pending[n] = true
		fresh = append(fresh, n)
	}
	return fresh, nil
}

// Ingest appends the genuinely new numbers of an authoritative snapshot and
// returns them in order. Replayed or overlapping snapshots are absorbed.
func (h *History) Ingest(snapshot []int) ([]int, error) {
	fresh, err := h.Diff(snapshot)
	if err != nil {
		return nil, err
	}
	for _, n := range fresh {
		h.add(n)
	}
	return fresh, nil
}

type numberRecord struct {
	Number *int `json:"number"`
}

// NormalizeCalled accepts a JSON array of integers, an array of {"number": n}
// records, or an object of either keyed by push id (ordered by key). null
// yields an empty slice.
func NormalizeCalled(raw []byte) ([]int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []int{}, nil
	}
	var items []json.RawMessage
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
	case '{':
		var keyed map[string]json.RawMessage
		if err := json.Unmarshal(raw, &keyed); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		keys := make([]string, 0, len(keyed))
		for k := range keyed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			items = append(items, keyed[k])
		}
	default:
		return nil, fmt.Errorf("%w: unexpected %q", ErrInvalidSnapshot, raw[0])
	}

	out := make([]int, 0, len(items))
	for _, item := range items {
		n, err := decodeNumber(item)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func decodeNumber(item json.RawMessage) (int, error) {
	item = bytes.TrimSpace(item)
	if len(item) > 0 && item[0] == '{' {
		var rec numberRecord
		if err := json.Unmarshal(item, &rec); err != nil || rec.Number == nil {
			return 0, fmt.Errorf("%w: record %s", ErrInvalidSnapshot, item)
		}
		return *rec.Number, checkNumber(*rec.Number)
	}
	var n int
	if err := json.Unmarshal(item, &n); err != nil {
		return 0, fmt.Errorf("%w: item %s", ErrInvalidSnapshot, item)
	}
	return n, checkNumber(n)
}
