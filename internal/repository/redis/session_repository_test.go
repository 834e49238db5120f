package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"ecomm-product-bot/pkg/store"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnCodec(t *testing.T) {
	in := []store.Turn{
		{Role: store.RoleUser, Content: "best \"bluetooth\" buds?"},
		{Role: store.RoleAssistant, Content: "boAt Airdopes"},
	}
	values, err := encodeTurns(in)
	require.NoError(t, err)

	raw := make([]string, len(values))
	for i, v := range values {
		raw[i] = v.(string)
	}
	out, err := decodeTurns(raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = decodeTurns([]string{"{not json"})
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	r := NewSessionRepository(nil, 0, 0, 0)
	assert.Equal(t, "session:abc:turns", r.historyKey("abc"))
	assert.Equal(t, "session:index", r.indexKey())
	assert.Equal(t, time.Hour, r.ttl)
}

// Runs against a live server when TEST_REDIS_URL is set.
func TestSessionRepositoryLive(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	defer client.Close()

	ctx := context.Background()
	r := NewSessionRepository(client, time.Minute, 2, 3)
	r.prefix = "test-" + uuid.NewString()
	defer client.Del(ctx, r.indexKey())

	for i := 0; i < 5; i++ {
		require.NoError(t, r.Append(ctx, "a", store.Turn{Role: store.RoleUser, Content: fmt.Sprint(i)}))
	}
	s, err := r.Load(ctx, "a")
	require.NoError(t, err)
	require.Len(t, s.Turns, 3)
	assert.Equal(t, "2", s.Turns[0].Content)

	require.NoError(t, r.Append(ctx, "b", store.Turn{Role: store.RoleUser, Content: "x"}))
	require.NoError(t, r.Append(ctx, "c", store.Turn{Role: store.RoleUser, Content: "x"}))

	s, err = r.Load(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, s.Turns)

	require.NoError(t, r.Delete(ctx, "b"))
	require.NoError(t, r.Delete(ctx, "c"))
}
