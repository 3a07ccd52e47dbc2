package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) Policy {
	return Policy{MaxAttempts: attempts, BaseDelay: time.Millisecond}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0

	err := Do(context.Background(), fastPolicy(3), func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesTransientErrors(t *testing.T) {
	calls := 0

	err := Do(context.Background(), fastPolicy(3), func(context.Context) error {
		calls++
		if calls < 3 {
			return Transient(errors.New("throttled"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_BudgetExhausted(t *testing.T) {
	calls := 0
	cause := errors.New("throttled")

	err := Do(context.Background(), fastPolicy(3), func(context.Context) error {
		calls++
		return Transient(cause)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, calls)
}

func TestDo_TerminalErrorNotRetried(t *testing.T) {
	calls := 0
	terminal := errors.New("bad request")

	err := Do(context.Background(), fastPolicy(5), func(context.Context) error {
		calls++
		return terminal
	})

	require.ErrorIs(t, err, terminal)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Do(ctx, Policy{MaxAttempts: 3, BaseDelay: time.Minute}, func(context.Context) error {
		calls++
		cancel()
		return Transient(errors.New("throttled"))
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0

	_ = Do(context.Background(), Policy{}, func(context.Context) error {
		calls++
		return Transient(errors.New("x"))
	})

	assert.Equal(t, 1, calls)
}

func TestIsTransient(t *testing.T) {
	base := errors.New("x")

	assert.False(t, IsTransient(base))
	assert.True(t, IsTransient(Transient(base)))
	assert.True(t, IsTransient(Transient(base)))
	assert.Nil(t, Transient(nil))

	// Wrapping preserves the underlying error for errors.Is.
	assert.ErrorIs(t, Transient(base), base)
}
