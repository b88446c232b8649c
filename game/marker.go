package game

import "fmt"

// ApplyCalledNumbers marks every cell whose number was called and returns how
// many marks were added. Manual-mode cards are left untouched. Re-running with
// the same numbers adds nothing.
func ApplyCalledNumbers(card *Card, called []int) int {
	if !card.AutoMode {
		return 0
	}
	added := 0
	for _, n := range called {
		added += markNumber(card, n)
	}
	return added
}

func markNumber(card *Card, n int) int {
	if n == Free {
		return 0
	}
	added := 0
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if card.Numbers[row][col] == n && card.mark(Cell{Row: row, Col: col}) {
				added++
			}
		}
	}
	return added
}

// Toggle flips a manual mark. It returns the new marked state of the cell.
func Toggle(card *Card, cell Cell, history *History) (bool, error) {
	if !cell.Valid() {
		return false, fmt.Errorf("toggle %d-%d: %w", cell.Row, cell.Col, ErrCellOutOfRange)
	}
	if card.AutoMode {
		return false, ErrAutoMode
	}
	if cell.IsFree() {
		return false, ErrFreeCell
	}
	if !history.Contains(card.Numbers.At(cell)) {
		return false, ErrNotCalled
	}
	if card.Marked.Has(cell) {
		delete(card.Marked, cell)
		return false, nil
	}
	card.mark(cell)
	return true, nil
}
