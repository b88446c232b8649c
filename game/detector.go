package game

import "fmt"

// PatternRound is the round played against the active pattern.
const PatternRound = 1

var traditionalLines = buildLines()

func buildLines() [][]Cell {
	lines := make([][]Cell, 0, 2*Size+2)
	for row := 0; row < Size; row++ {
		line := make([]Cell, Size)
		for col := range line {
			line[col] = Cell{Row: row, Col: col}
		}
		lines = append(lines, line)
	}
	for col := 0; col < Size; col++ {
		line := make([]Cell, Size)
		for row := range line {
			line[row] = Cell{Row: row, Col: col}
		}
		lines = append(lines, line)
	}
	diag1 := make([]Cell, Size)
	diag2 := make([]Cell, Size)
	for i := 0; i < Size; i++ {
		diag1[i] = Cell{Row: i, Col: i}
		diag2[i] = Cell{Row: i, Col: Size - 1 - i}
	}
	return append(lines, diag1, diag2)
}

// TraditionalLines returns the 5 rows, 5 columns and 2 diagonals.
func TraditionalLines() [][]Cell {
	out := make([][]Cell, len(traditionalLines))
	for i, l := range traditionalLines {
		out[i] = append([]Cell(nil), l...)
	}
	return out
}

func allSatisfied(marked MarkSet, cells []Cell) bool {
	for _, c := range cells {
		if !marked.Satisfied(c) {
			return false
		}
	}
	return true
}

// HasFullCard is true when all 24 non-free cells are marked.
func HasFullCard(card *Card) bool {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if !card.Marked.Satisfied(Cell{Row: row, Col: col}) {
				return false
			}
		}
	}
	return true
}

// MatchesPattern is true when every pattern position is the free cell or marked.
// A nil pattern never matches.
func MatchesPattern(card *Card, pattern *Pattern) (bool, error) {
	if pattern == nil {
		return false, nil
	}
	for _, c := range pattern.Positions {
		if !c.Valid() {
			return false, fmt.Errorf("pattern %q position %d-%d: %w", pattern.Name, c.Row, c.Col, ErrCellOutOfRange)
		}
	}
	return allSatisfied(card.Marked, pattern.Positions), nil
}

// HasLine applies the pattern rule in the pattern round and the
// row/column/diagonal rule in every other round.
func HasLine(card *Card, round int, pattern *Pattern) (bool, error) {
	if round == PatternRound {
		return MatchesPattern(card, pattern)
	}
	for _, line := range traditionalLines {
		if allSatisfied(card.Marked, line) {
			return true, nil
		}
	}
	return false, nil
}

// WinStatus reports both outcomes independently; FullCard outranks Line.
type WinStatus struct {
	FullCard bool `json:"fullCard"`
	Line     bool `json:"line"`
}

func (w WinStatus) Any() bool { return w.FullCard || w.Line }

func Evaluate(card *Card, round int, pattern *Pattern) (WinStatus, error) {
	line, err := HasLine(card, round, pattern)
	if err != nil {
		return WinStatus{}, err
	}
	return WinStatus{FullCard: HasFullCard(card), Line: line}, nil
}
