package services

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bellapacxx/bingo-engine/game"
	"github.com/bellapacxx/bingo-engine/utils/logger"
)

// LoadPatterns reads a JSON array of named patterns and validates each one.
func LoadPatterns(path string) ([]*game.Pattern, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var patterns []*game.Pattern
	if err := json.Unmarshal(data, &patterns); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	for i, p := range patterns {
		if err := game.ValidatePattern(p); err != nil {
			return nil, fmt.Errorf("pattern %d (%s): %w", i, p.Name, err)
		}
	}
	logger.Infof("[Init] Loaded %d patterns", len(patterns))
	return patterns, nil
}
