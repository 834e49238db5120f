package session

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"

	"ecomm-product-bot/internal/repository/contract"
	"ecomm-product-bot/pkg/failure"
	"ecomm-product-bot/pkg/store"
)

const lockStripes = 256

var ErrEmptySessionID = errors.New("session id is required")

// Manager serializes work per session id. Two calls for the same id never
// overlap; calls for different ids run in parallel unless their ids hash to
// the same stripe.
type Manager struct {
	repo  contract.SessionRepository
	locks [lockStripes]sync.Mutex
}

// NewManager creates a new session manager
func NewManager(repo contract.SessionRepository) *Manager {
	return &Manager{repo: repo}
}

func (m *Manager) lockFor(sessionID string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return &m.locks[h.Sum32()%lockStripes]
}

// Exchange runs fn with the session's current history while holding the
// session lock. When fn succeeds the returned turns are appended; when it
// fails the history is left untouched.
func (m *Manager) Exchange(ctx context.Context, sessionID string, fn func(history []store.Turn) ([]store.Turn, error)) error {
	if strings.TrimSpace(sessionID) == "" {
		return failure.Application("session.exchange", ErrEmptySessionID)
	}

	mu := m.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()

	s, err := m.repo.Load(ctx, sessionID)
	if err != nil {
		return err
	}

	turns, err := fn(s.Turns)
	if err != nil {
		return err
	}
	if len(turns) == 0 {
		return nil
	}
	return m.repo.Append(ctx, sessionID, turns...)
}

// History returns a snapshot of the session's turns.
func (m *Manager) History(ctx context.Context, sessionID string) ([]store.Turn, error) {
	s, err := m.repo.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.Turns, nil
}

func (m *Manager) Reset(ctx context.Context, sessionID string) error {
	mu := m.lockFor(sessionID)
	mu.Lock()
	defer mu.Unlock()
	return m.repo.Delete(ctx, sessionID)
}
