package game

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	Size = 5

	FreeRow = 2
	FreeCol = 2

	// Free is the sentinel stored in the center cell.
	Free = 0

	MinNumber = 1
	MaxNumber = 75
)

// Status is the card lifecycle tag.
type Status string

const (
	StatusPendingPayment      Status = "pending_payment"
	StatusCurrent             Status = "current"
	StatusInPlay              Status = "in_play"
	StatusPendingVerification Status = "pending_verification"
	StatusExpired             Status = "expired"
)

// Playable reports whether a card in this status takes marks and may claim.
func (s Status) Playable() bool {
	return s == StatusCurrent || s == StatusInPlay
}

// Cell is a (row, col) coordinate on a card.
type Cell struct {
	Row int
	Col int
}

func (c Cell) IsFree() bool { return c.Row == FreeRow && c.Col == FreeCol }

func (c Cell) Valid() bool {
	return c.Row >= 0 && c.Row < Size && c.Col >= 0 && c.Col < Size
}

// Key is the "row-col" form used on the wire.
func (c Cell) Key() string { return strconv.Itoa(c.Row) + "-" + strconv.Itoa(c.Col) }

func ParseCell(key string) (Cell, error) {
	r, c, ok := strings.Cut(key, "-")
	if !ok {
		return Cell{}, fmt.Errorf("cell %q: %w", key, ErrCellOutOfRange)
	}
	row, err1 := strconv.Atoi(r)
	col, err2 := strconv.Atoi(c)
	cell := Cell{Row: row, Col: col}
	if err1 != nil || err2 != nil || !cell.Valid() {
		return Cell{}, fmt.Errorf("cell %q: %w", key, ErrCellOutOfRange)
	}
	return cell, nil
}

// Grid holds card numbers indexed [row][col].
type Grid [Size][Size]int

// At returns the number at c. Free for the center.
func (g Grid) At(c Cell) int { return g[c.Row][c.Col] }

// Validate checks column ranges, per-column uniqueness and the free center.
func (g Grid) Validate() error {
	for col := 0; col < Size; col++ {
		lo, hi := ColumnRange(col)
		seen := make(map[int]bool, Size)
		for row := 0; row < Size; row++ {
			n := g[row][col]
			if row == FreeRow && col == FreeCol {
				if n != Free {
					return fmt.Errorf("center cell holds %d, want free", n)
				}
				continue
			}
			if n < lo || n > hi {
				return fmt.Errorf("cell %d-%d holds %d outside %d-%d: %w", row, col, n, lo, hi, ErrNumberOutOfRange)
			}
			if seen[n] {
				return fmt.Errorf("column %d repeats %d", col, n)
			}
			seen[n] = true
		}
	}
	return nil
}

// MarkSet is the set of marked non-free cells. The free cell is never stored.
type MarkSet map[Cell]struct{}

func (m MarkSet) Has(c Cell) bool {
	_, ok := m[c]
	return ok
}

// Satisfied is true for the free cell or a marked one.
func (m MarkSet) Satisfied(c Cell) bool { return c.IsFree() || m.Has(c) }

// Cells returns the marked cells in row-major order.
func (m MarkSet) Cells() []Cell {
	out := make([]Cell, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

func (m MarkSet) Keys() []string {
	cells := m.Cells()
	keys := make([]string, len(cells))
	for i, c := range cells {
		keys[i] = c.Key()
	}
	return keys
}

func (m MarkSet) Clone() MarkSet {
	out := make(MarkSet, len(m))
	for c := range m {
		out[c] = struct{}{}
	}
	return out
}

func (m MarkSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Keys())
}

func (m *MarkSet) UnmarshalJSON(b []byte) error {
	var keys []string
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	set, err := MarksFromKeys(keys)
	if err != nil {
		return err
	}
	*m = set
	return nil
}

// MarksFromKeys parses "row-col" keys. A free cell key is dropped.
func MarksFromKeys(keys []string) (MarkSet, error) {
	set := make(MarkSet, len(keys))
	for _, k := range keys {
		c, err := ParseCell(k)
		if err != nil {
			return nil, err
		}
		if c.IsFree() {
			continue
		}
		set[c] = struct{}{}
	}
	return set, nil
}

// Card is a player's 5x5 bingo card.
type Card struct {
	ID       string  `json:"id"`
	Code     string  `json:"code"`
	Numbers  Grid    `json:"numbers"`
	Marked   MarkSet `json:"marked"`
	AutoMode bool    `json:"autoMode"`
	Status   Status  `json:"status"`
}

// NewCard returns a card awaiting payment.
func NewCard(id, code string, numbers Grid) *Card {
	return &Card{
		ID:      id,
		Code:    code,
		Numbers: numbers,
		Marked:  make(MarkSet),
		Status:  StatusPendingPayment,
	}
}

func (c *Card) mark(cell Cell) bool {
	if cell.IsFree() || c.Marked.Has(cell) {
		return false
	}
	if c.Marked == nil {
		c.Marked = make(MarkSet)
	}
	c.Marked[cell] = struct{}{}
	return true
}

// Clone returns a deep copy.
func (c *Card) Clone() *Card {
	cp := *c
	cp.Marked = c.Marked.Clone()
	return &cp
}
