package game

import (
	"encoding/json"
	"fmt"
)

// GameState is the round information published by the caller side.
type GameState struct {
	GameActive     bool     `json:"gameActive"`
	CurrentRound   int      `json:"currentRound"`
	CurrentPattern *Pattern `json:"currentPattern"`
	GameFinalized  bool     `json:"gameFinalized"`
}

// ParseGameState decodes and validates a game state. null yields nil. A
// missing round is treated as round 1.
func ParseGameState(raw []byte) (*GameState, error) {
	var st *GameState
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("game state: %w", err)
	}
	if st == nil {
		return nil, nil
	}
	if st.CurrentRound == 0 {
		st.CurrentRound = 1
	}
	if st.CurrentRound < 0 {
		return nil, fmt.Errorf("game state: round %d", st.CurrentRound)
	}
	if st.CurrentPattern != nil {
		if err := ValidatePattern(st.CurrentPattern); err != nil {
			return nil, err
		}
	}
	return st, nil
}
