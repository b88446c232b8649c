package game

import "errors"

// Invalid input. These are caller bugs or corrupt data and are never coerced.
var (
	ErrNumberOutOfRange = errors.New("number out of range 1-75")
	ErrCellOutOfRange   = errors.New("cell out of range 0-4")
	ErrInvalidPattern   = errors.New("invalid pattern")
	ErrInvalidSnapshot  = errors.New("invalid called numbers snapshot")
)

// RuleError is a rejected user action. Code is stable and meant for the UI layer.
type RuleError struct {
	Code string
	msg  string
}

func (e *RuleError) Error() string { return e.msg }

var (
	ErrAutoMode       = &RuleError{Code: "auto_mode", msg: "card is in automatic mode"}
	ErrFreeCell       = &RuleError{Code: "free_cell", msg: "free cell cannot be toggled"}
	ErrNotCalled      = &RuleError{Code: "not_called", msg: "number has not been called yet"}
	ErrNoWin          = &RuleError{Code: "no_win", msg: "card has neither a line nor a full card"}
	ErrNotEligible    = &RuleError{Code: "not_eligible", msg: "card is not in play"}
	ErrAlreadyClaimed = &RuleError{Code: "already_claimed", msg: "card already claimed this round"}
	ErrUnknownCard    = &RuleError{Code: "unknown_card", msg: "card not found"}
)

// Reason returns the rule code carried by err, or "" when err is not a rule rejection.
func Reason(err error) string {
	var re *RuleError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
