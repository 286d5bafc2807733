package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		Multiplier:     1,
	}
}

func TestDoVal_SucceedsFirstTry(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), testConfig(3), "op", func(context.Context) (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, 1, calls)
}

func TestDoVal_RetriesTransient(t *testing.T) {
	calls := 0
	val, err := DoVal(context.Background(), testConfig(3), "op", func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", NewTransientError(eris.New("upstream hiccup"), 503)
		}
		return "done", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", val)
	assert.Equal(t, 3, calls)
}

func TestDoVal_PermanentErrorStopsImmediately(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), testConfig(3), "op", func(context.Context) (int, error) {
		calls++
		return 0, eris.New("bad request")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), testConfig(3), "op", func(context.Context) (int, error) {
		calls++
		return 0, NewTransientError(eris.New("still down"), 502)
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "still down")
}

func TestDoVal_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := DoVal(ctx, testConfig(3), "op", func(context.Context) (int, error) {
		calls++
		return 0, NewTransientError(eris.New("down"), 503)
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls, "no retries after cancellation")
}

func TestDoVal_ShouldRetryOverride(t *testing.T) {
	cfg := testConfig(3)
	cfg.ShouldRetry = func(err error) bool { return err.Error() == "again" }

	calls := 0
	_, err := DoVal(context.Background(), cfg, "op", func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, eris.New("again")
		}
		return 0, eris.New("stop")
	})
	require.Error(t, err)
	assert.Equal(t, "stop", err.Error())
	assert.Equal(t, 2, calls)
}

func TestDo_WrapsDoVal(t *testing.T) {
	calls := 0
	err := Do(context.Background(), testConfig(2), "op", func(context.Context) error {
		calls++
		if calls == 1 {
			return NewTransientError(eris.New("flaky"), 500)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestBackoff_CapsAtMax(t *testing.T) {
	cfg := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     250 * time.Millisecond,
		Multiplier:     2,
	}
	assert.Equal(t, 100*time.Millisecond, backoff(0, cfg))
	assert.Equal(t, 200*time.Millisecond, backoff(1, cfg))
	assert.Equal(t, 250*time.Millisecond, backoff(2, cfg))
	assert.Equal(t, 250*time.Millisecond, backoff(10, cfg))
}
