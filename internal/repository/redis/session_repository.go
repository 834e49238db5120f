package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ecomm-product-bot/internal/repository/contract"
	"ecomm-product-bot/pkg/failure"
	"ecomm-product-bot/pkg/store"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "session"

// SessionRepository keeps each history in a Redis list and tracks sessions in
// a sorted set scored by last write, which is trimmed to maxCount.
type SessionRepository struct {
	client   *redis.Client
	ttl      time.Duration
	maxCount int
	maxTurns int
	prefix   string
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(client *redis.Client, ttl time.Duration, maxCount, maxTurns int) *SessionRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRepository{
		client:   client,
		ttl:      ttl,
		maxCount: maxCount,
		maxTurns: maxTurns,
		prefix:   defaultPrefix,
	}
}

func (r *SessionRepository) historyKey(id string) string {
	return fmt.Sprintf("%s:%s:turns", r.prefix, id)
}

func (r *SessionRepository) indexKey() string {
	return r.prefix + ":index"
}

func (r *SessionRepository) Load(ctx context.Context, sessionID string) (*store.Session, error) {
	raw, err := r.client.LRange(ctx, r.historyKey(sessionID), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, failure.Transient("session.load", err)
	}

	turns, err := decodeTurns(raw)
	if err != nil {
		return nil, failure.Application("session.load", err)
	}
	return &store.Session{ID: sessionID, Turns: turns}, nil
}

func (r *SessionRepository) Append(ctx context.Context, sessionID string, turns ...store.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	values, err := encodeTurns(turns)
	if err != nil {
		return failure.Application("session.append", err)
	}

	key := r.historyKey(sessionID)
	now := time.Now()
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		if r.maxTurns > 0 {
			pipe.LTrim(ctx, key, int64(-r.maxTurns), -1)
		}
		pipe.Expire(ctx, key, r.ttl)
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: float64(now.UnixNano()), Member: sessionID})
		pipe.ZRemRangeByScore(ctx, r.indexKey(), "-inf", fmt.Sprintf("(%d", now.Add(-r.ttl).UnixNano()))
		return nil
	})
	if err != nil {
		return failure.Transient("session.append", err)
	}

	return r.evictOverflow(ctx)
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.historyKey(sessionID))
		pipe.ZRem(ctx, r.indexKey(), sessionID)
		return nil
	})
	if err != nil {
		return failure.Transient("session.delete", err)
	}
	return nil
}

// evictOverflow drops the least recently written sessions beyond maxCount.
func (r *SessionRepository) evictOverflow(ctx context.Context) error {
	if r.maxCount <= 0 {
		return nil
	}
	n, err := r.client.ZCard(ctx, r.indexKey()).Result()
	if err != nil {
		return failure.Transient("session.evict", err)
	}
	overflow := n - int64(r.maxCount)
	if overflow <= 0 {
		return nil
	}

	victims, err := r.client.ZPopMin(ctx, r.indexKey(), overflow).Result()
	if err != nil {
		return failure.Transient("session.evict", err)
	}
	keys := make([]string, len(victims))
	for i, v := range victims {
		keys[i] = r.historyKey(fmt.Sprint(v.Member))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return failure.Transient("session.evict", err)
	}
	return nil
}

func encodeTurns(turns []store.Turn) ([]interface{}, error) {
	values := make([]interface{}, len(turns))
	for i, t := range turns {
		b, err := json.Marshal(t)
		if err != nil {
			return nil, err
		}
		values[i] = string(b)
	}
	return values, nil
}

func decodeTurns(raw []string) ([]store.Turn, error) {
	turns := make([]store.Turn, 0, len(raw))
	for _, s := range raw {
		var t store.Turn
		if err := json.Unmarshal([]byte(s), &t); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}
