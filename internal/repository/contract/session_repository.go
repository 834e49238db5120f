package contract

import (
	"context"

	"ecomm-product-bot/pkg/store"
)

// SessionRepository stores per-session chat history. Implementations do not
// serialize callers; the session manager holds a per-session lock around
// Load and Append.
type SessionRepository interface {
	// Load returns the session's turns, or an empty session when it does not exist.
	Load(ctx context.Context, sessionID string) (*store.Session, error)
	// Append adds turns to the end of the history, creating the session when needed.
	Append(ctx context.Context, sessionID string, turns ...store.Turn) error
	Delete(ctx context.Context, sessionID string) error
}
