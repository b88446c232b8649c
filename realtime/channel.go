// Package realtime is the key-value push/subscribe channel that keeps players
// and the caller in sync.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
)

// Well-known paths.
const (
	PathGameState          = "gameState"
	PathCalledNumbers      = "calledNumbers"
	PathPendingBingos      = "pendingBingos"
	PathVerificationResult = "verificationResult"
	PathAnnouncements      = "announcements"
)

var ErrClosed = errors.New("realtime: channel closed")

// Callback receives the full value at a path, "null" when absent.
type Callback func(value json.RawMessage)

// Channel is a realtime document store. Subscribe fires once with the current
// value and again after every change. Push appends under a generated key that
// sorts in insertion order.
type Channel interface {
	Subscribe(path string, fn Callback) (unsubscribe func())
	Push(ctx context.Context, path string, value any) (string, error)
	Set(ctx context.Context, path string, value any) error
	Get(ctx context.Context, path string) (json.RawMessage, error)
}
