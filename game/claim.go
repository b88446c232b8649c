package game

import (
	"fmt"
	"time"
)

type ClaimType string

const (
	ClaimFullCard ClaimType = "FULL_CARD"
	ClaimPattern  ClaimType = "PATTERN"
	ClaimLine     ClaimType = "LINE"
)

// WinClaim is emitted once per successful claim.
type WinClaim struct {
	CartonID      string    `json:"cartonId"`
	Code          string    `json:"code,omitempty"`
	Type          ClaimType `json:"type"`
	Round         int       `json:"round"`
	CardNumbers   Grid      `json:"cardNumbers"`
	MarkedCells   MarkSet   `json:"markedCells"`
	CalledNumbers []int     `json:"calledNumbers"`
	ClaimedAt     time.Time `json:"claimedAt"`
}

func claimType(status WinStatus, round int) ClaimType {
	switch {
	case status.FullCard:
		return ClaimFullCard
	case round == PatternRound:
		return ClaimPattern
	default:
		return ClaimLine
	}
}

// BuildClaim snapshots a winning card. The card itself is not modified.
func BuildClaim(card *Card, round int, pattern *Pattern, history *History, now time.Time) (*WinClaim, error) {
	if !card.Status.Playable() {
		return nil, ErrNotEligible
	}
	status, err := Evaluate(card, round, pattern)
	if err != nil {
		return nil, err
	}
	if !status.Any() {
		return nil, ErrNoWin
	}
	return &WinClaim{
		CartonID:      card.ID,
		Code:          card.Code,
		Type:          claimType(status, round),
		Round:         round,
		CardNumbers:   card.Numbers,
		MarkedCells:   card.Marked.Clone(),
		CalledNumbers: history.Numbers(),
		ClaimedAt:     now,
	}, nil
}

// VerifyClaim re-checks a claim against its own called-number snapshot: every
// marked cell must hold a called number and the claimed win must hold.
func VerifyClaim(claim *WinClaim, pattern *Pattern) error {
	if err := claim.CardNumbers.Validate(); err != nil {
		return fmt.Errorf("claim %s: %w", claim.CartonID, err)
	}
	history := NewHistory()
	if _, err := history.Ingest(claim.CalledNumbers); err != nil {
		return fmt.Errorf("claim %s: %w", claim.CartonID, err)
	}
	for cell := range claim.MarkedCells {
		if !cell.Valid() {
			return fmt.Errorf("claim %s: %w", claim.CartonID, ErrCellOutOfRange)
		}
		if !history.Contains(claim.CardNumbers.At(cell)) {
			return fmt.Errorf("claim %s cell %s: %w", claim.CartonID, cell.Key(), ErrNotCalled)
		}
	}

	card := &Card{ID: claim.CartonID, Numbers: claim.CardNumbers, Marked: claim.MarkedCells}
	var ok bool
	switch claim.Type {
	case ClaimFullCard:
		ok = HasFullCard(card)
	case ClaimPattern:
		if claim.Round != PatternRound {
			return fmt.Errorf("claim %s: pattern claim in round %d: %w", claim.CartonID, claim.Round, ErrNoWin)
		}
		var err error
		if ok, err = MatchesPattern(card, pattern); err != nil {
			return err
		}
	case ClaimLine:
		var err error
		if ok, err = HasLine(card, claim.Round, pattern); err != nil {
			return err
		}
	default:
		return fmt.Errorf("claim %s: unknown type %q", claim.CartonID, claim.Type)
	}
	if !ok {
		return fmt.Errorf("claim %s: %w", claim.CartonID, ErrNoWin)
	}
	return nil
}
