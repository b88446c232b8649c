package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bellapacxx/bingo-engine/game"
)

func TestLoadPatterns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name": "corners", "positions": [[0,0],[0,4],[4,0],[4,4]]},
		{"name": "cross", "positions": [[2,0],[2,1],[2,2],[2,3],[2,4],[0,2],[1,2],[3,2],[4,2]]}
	]`), 0o644))

	patterns, err := LoadPatterns(path)
	require.NoError(t, err)
	require.Len(t, patterns, 2)
	assert.Equal(t, "cross", patterns[1].Name)
}

func TestLoadPatternsRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "center", "positions": [[2,2]]}]`), 0o644))

	_, err := LoadPatterns(path)
	assert.ErrorIs(t, err, game.ErrInvalidPattern)

	_, err = LoadPatterns(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
