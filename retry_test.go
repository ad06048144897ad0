package liteworker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetry_StopsOnSuccess(t *testing.T) {
	calls := 0
	r := NewRetry(5, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return errors.New("try again")
		}
		return nil
	})

	retried, err := r.Do(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, retried)
	require.Equal(t, 2, calls)
}

func TestRetry_ReturnsLastError(t *testing.T) {
	calls := 0
	r := NewRetry(3, 0, func() error {
		calls++
		return errors.New("always broken")
	})

	retried, err := r.Do(context.Background())
	require.EqualError(t, err, "always broken")
	require.Equal(t, 2, retried)
	require.Equal(t, 3, calls)
}

func TestRetry_SuppressIsNotRetried(t *testing.T) {
	calls := 0
	r := NewRetry(3, 0, func() error {
		calls++
		return ErrSuppress
	})

	retried, err := r.Do(context.Background())
	require.ErrorIs(t, err, ErrSuppress)
	require.Equal(t, 0, retried)
	require.Equal(t, 1, calls)
}

func TestRetry_ContextCutsSleepShort(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	r := NewRetry(3, time.Hour, func() error {
		calls++
		cancel()
		return errors.New("try again")
	})

	start := time.Now()
	_, err := r.Do(ctx)
	require.Error(t, err)
	require.Equal(t, 1, calls)
	require.Less(t, time.Since(start), time.Second)
}
