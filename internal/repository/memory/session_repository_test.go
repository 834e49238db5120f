package memory

import (
	"context"
	"testing"
	"time"

	"ecomm-product-bot/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func turn(role, content string) store.Turn {
	return store.Turn{Role: role, Content: content}
}

func TestLoadUnknownSessionIsEmpty(t *testing.T) {
	repo := NewSessionRepository(time.Hour, 0, 0)

	s, err := repo.Load(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", s.ID)
	assert.Empty(t, s.Turns)
	assert.Equal(t, 0, repo.cache.ItemCount())
}

func TestAppendKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(time.Hour, 0, 0)

	require.NoError(t, repo.Append(ctx, "abc", turn(store.RoleUser, "q1"), turn(store.RoleAssistant, "a1")))
	require.NoError(t, repo.Append(ctx, "abc", turn(store.RoleUser, "q2"), turn(store.RoleAssistant, "a2")))

	s, err := repo.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, []store.Turn{
		turn(store.RoleUser, "q1"), turn(store.RoleAssistant, "a1"),
		turn(store.RoleUser, "q2"), turn(store.RoleAssistant, "a2"),
	}, s.Turns)
}

func TestLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(time.Hour, 0, 0)
	require.NoError(t, repo.Append(ctx, "abc", turn(store.RoleUser, "q1")))

	s, _ := repo.Load(ctx, "abc")
	s.Turns[0].Content = "mutated"

	again, _ := repo.Load(ctx, "abc")
	assert.Equal(t, "q1", again.Turns[0].Content)
}

func TestTurnCapDropsOldest(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(time.Hour, 0, 3)

	for _, c := range []string{"1", "2", "3", "4", "5"} {
		require.NoError(t, repo.Append(ctx, "abc", turn(store.RoleUser, c)))
	}

	s, _ := repo.Load(ctx, "abc")
	require.Len(t, s.Turns, 3)
	assert.Equal(t, "3", s.Turns[0].Content)
	assert.Equal(t, "5", s.Turns[2].Content)
}

func TestSessionCapEvictsClosestToExpiry(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(time.Hour, 2, 0)

	require.NoError(t, repo.Append(ctx, "first", turn(store.RoleUser, "x")))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, repo.Append(ctx, "second", turn(store.RoleUser, "x")))
	time.Sleep(2 * time.Millisecond)
	// Touching "first" pushes its expiry past "second".
	require.NoError(t, repo.Append(ctx, "first", turn(store.RoleUser, "y")))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, repo.Append(ctx, "third", turn(store.RoleUser, "x")))

	assert.Equal(t, 2, repo.cache.ItemCount())
	s, _ := repo.Load(ctx, "second")
	assert.Empty(t, s.Turns)
	s, _ = repo.Load(ctx, "first")
	assert.Len(t, s.Turns, 2)
}

func TestSessionsExpire(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(20*time.Millisecond, 0, 0)
	require.NoError(t, repo.Append(ctx, "abc", turn(store.RoleUser, "q")))

	time.Sleep(40 * time.Millisecond)

	s, err := repo.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, s.Turns)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(time.Hour, 0, 0)
	require.NoError(t, repo.Append(ctx, "abc", turn(store.RoleUser, "q")))
	require.NoError(t, repo.Delete(ctx, "abc"))

	s, _ := repo.Load(ctx, "abc")
	assert.Empty(t, s.Turns)
}
