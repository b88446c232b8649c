package game

import "math/rand"

// ColumnRange returns the inclusive number range for column col (B, I, N, G, O).
func ColumnRange(col int) (lo, hi int) {
	lo = col*15 + 1
	return lo, lo + 14
}

// Generator draws card numbers from an injected random source.
type Generator struct {
	rnd *rand.Rand
}

func NewGenerator(rnd *rand.Rand) *Generator {
	return &Generator{rnd: rnd}
}

// Generate fills each column with distinct numbers from its range. The center is Free.
func (g *Generator) Generate() Grid {
	var grid Grid
	for col := 0; col < Size; col++ {
		lo, _ := ColumnRange(col)
		used := make(map[int]bool, Size)
		for row := 0; row < Size; row++ {
			if row == FreeRow && col == FreeCol {
				grid[row][col] = Free
				continue
			}
			n := lo + g.rnd.Intn(15)
			for used[n] {
				n = lo + g.rnd.Intn(15)
			}
			used[n] = true
			grid[row][col] = n
		}
	}
	return grid
}
