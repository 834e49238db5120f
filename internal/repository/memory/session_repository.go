package memory

import (
	"context"
	"sync"
	"time"

	"ecomm-product-bot/internal/repository/contract"
	"ecomm-product-bot/pkg/store"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	mu       sync.Mutex
	cache    *cache.Cache
	maxCount int
	maxTurns int
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository keeps sessions for ttl after their last write. When
// maxCount sessions exist, creating another evicts the one closest to expiry.
// Histories longer than maxTurns lose their oldest turns. Zero disables a cap.
func NewSessionRepository(ttl time.Duration, maxCount, maxTurns int) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	cleanup := ttl / 6
	if cleanup < time.Second {
		cleanup = time.Second
	}
	return &SessionRepository{
		cache:    cache.New(ttl, cleanup),
		maxCount: maxCount,
		maxTurns: maxTurns,
	}
}

func (r *SessionRepository) Load(ctx context.Context, sessionID string) (*store.Session, error) {
	if x, found := r.cache.Get(sessionID); found {
		s := x.(*store.Session)
		turns := make([]store.Turn, len(s.Turns))
		copy(turns, s.Turns)
		return &store.Session{ID: s.ID, Turns: turns}, nil
	}
	return &store.Session{ID: sessionID}, nil
}

func (r *SessionRepository) Append(ctx context.Context, sessionID string, turns ...store.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var session *store.Session
	if x, found := r.cache.Get(sessionID); found {
		session = x.(*store.Session)
	} else {
		r.evictIfFull()
		session = &store.Session{ID: sessionID}
	}

	merged := make([]store.Turn, 0, len(session.Turns)+len(turns))
	merged = append(merged, session.Turns...)
	merged = append(merged, turns...)
	if r.maxTurns > 0 && len(merged) > r.maxTurns {
		merged = merged[len(merged)-r.maxTurns:]
	}

	r.cache.Set(sessionID, &store.Session{ID: sessionID, Turns: merged}, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	r.cache.Delete(sessionID)
	return nil
}

func (r *SessionRepository) evictIfFull() {
	if r.maxCount <= 0 {
		return
	}
	r.cache.DeleteExpired()

	items := r.cache.Items()
	for len(items) >= r.maxCount {
		var (
			oldestKey string
			oldestExp int64
		)
		for k, item := range items {
			if oldestKey == "" || item.Expiration < oldestExp {
				oldestKey, oldestExp = k, item.Expiration
			}
		}
		r.cache.Delete(oldestKey)
		delete(items, oldestKey)
	}
}
