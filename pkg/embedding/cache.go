package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// QueryCache stores query embeddings so repeated questions skip the provider.
type QueryCache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, value []float32) error
}

type redisQueryCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisQueryCache(client *redis.Client, ttl time.Duration, prefix string) QueryCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if prefix == "" {
		prefix = "emb"
	}
	return &redisQueryCache{client: client, ttl: ttl, prefix: prefix}
}

func (c *redisQueryCache) key(k string) string {
	return fmt.Sprintf("%s:%s", c.prefix, k)
}

func (c *redisQueryCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out []float32
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (c *redisQueryCache) Set(ctx context.Context, key string, value []float32) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), data, c.ttl).Err()
}

// CachedProvider serves RETRIEVAL_QUERY embeddings from a cache. Document
// embeddings always go to the wrapped provider. Cache errors are ignored.
type CachedProvider struct {
	EmbeddingProvider
	cache QueryCache
}

func NewCachedProvider(inner EmbeddingProvider, cache QueryCache) *CachedProvider {
	return &CachedProvider{EmbeddingProvider: inner, cache: cache}
}

func (p *CachedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	if taskType != TaskRetrievalQuery {
		return p.EmbeddingProvider.Generate(ctx, text, taskType)
	}

	key := p.cacheKey(text)
	if values, ok, err := p.cache.Get(ctx, key); err == nil && ok {
		return NewEmbeddingResponse(values), nil
	}

	res, err := p.EmbeddingProvider.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	_ = p.cache.Set(ctx, key, res.Embedding.Values)
	return res, nil
}

func (p *CachedProvider) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return p.Name() + ":" + hex.EncodeToString(sum[:])
}
