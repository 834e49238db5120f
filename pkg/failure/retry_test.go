package failure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(retries int) RetryPolicy {
	return RetryPolicy{MaxRetries: retries, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func TestRetryTransientThenSuccess(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), fastPolicy(3), func() (string, error) {
		calls++
		if calls < 3 {
			return "", Transient("llm", errors.New("503"))
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnPermanentKinds(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(5), func() (int, error) {
		calls++
		return 0, Remote("llm", errors.New("401 unauthorized"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, KindRemote, KindOf(err))
}

func TestRetryExhausted(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), fastPolicy(2), func() (int, error) {
		calls++
		return 0, Transient("llm", errors.New("timeout"))
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.True(t, IsTransient(err))
}
