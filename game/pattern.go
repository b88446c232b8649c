package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

const (
	MinPatternCells = 12
	MaxPatternCells = 20

	// nonFreeCells is the full-card coverage a pattern must never reach.
	nonFreeCells = Size*Size - 1
)

// Pattern is a named set of cells that wins the pattern round.
type Pattern struct {
	Name      string `json:"name,omitempty"`
	Positions []Cell `json:"positions"`
}

// MarshalJSON writes a cell as [row, col].
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{c.Row, c.Col})
}

func (c *Cell) UnmarshalJSON(b []byte) error {
	var pair []int
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("cell %s: %w", b, ErrCellOutOfRange)
	}
	c.Row, c.Col = pair[0], pair[1]
	return nil
}

// ValidatePattern rejects patterns that can never be a distinct win: empty,
// out of range, duplicated, free-cell-only, or covering the full card.
func ValidatePattern(p *Pattern) error {
	if p == nil || len(p.Positions) == 0 {
		return fmt.Errorf("%w: no positions", ErrInvalidPattern)
	}
	seen := make(map[Cell]bool, len(p.Positions))
	counted := 0
	for _, c := range p.Positions {
		if !c.Valid() {
			return fmt.Errorf("%w: position %d-%d: %v", ErrInvalidPattern, c.Row, c.Col, ErrCellOutOfRange)
		}
		if seen[c] {
			return fmt.Errorf("%w: position %s repeated", ErrInvalidPattern, c.Key())
		}
		seen[c] = true
		if !c.IsFree() {
			counted++
		}
	}
	if counted == 0 {
		return fmt.Errorf("%w: only the free cell", ErrInvalidPattern)
	}
	if counted >= nonFreeCells {
		return fmt.Errorf("%w: covers the full card", ErrInvalidPattern)
	}
	return nil
}

// ParsePattern decodes {"positions": [[r,c], ...]}. null yields nil.
func ParsePattern(raw []byte) (*Pattern, error) {
	var p *Pattern
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	if p == nil {
		return nil, nil
	}
	if err := ValidatePattern(p); err != nil {
		return nil, err
	}
	return p, nil
}

// RandomPattern builds a demo pattern of 12 to 20 non-free cells. A pick is
// skipped while more than 2 chosen cells sit within Manhattan distance 1 of it,
// until 70% of the target size is placed.
func RandomPattern(rnd *rand.Rand, name string) *Pattern {
	size := MinPatternCells + rnd.Intn(MaxPatternCells-MinPatternCells+1)
	chosen := make([]Cell, 0, size)
	used := make(map[Cell]bool, size)

	for len(chosen) < size {
		relaxed := float64(len(chosen)) > float64(size)*0.7
		var spread, free []Cell
		for row := 0; row < Size; row++ {
			for col := 0; col < Size; col++ {
				c := Cell{Row: row, Col: col}
				if c.IsFree() || used[c] {
					continue
				}
				free = append(free, c)
				if relaxed || nearby(chosen, c) < 3 {
					spread = append(spread, c)
				}
			}
		}
		if len(spread) == 0 {
			spread = free
		}
		pick := spread[rnd.Intn(len(spread))]
		used[pick] = true
		chosen = append(chosen, pick)
	}
	return &Pattern{Name: name, Positions: chosen}
}

func nearby(cells []Cell, c Cell) int {
	count := 0
	for _, o := range cells {
		if abs(o.Row-c.Row)+abs(o.Col-c.Col) <= 1 {
			count++
		}
	}
	return count
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
