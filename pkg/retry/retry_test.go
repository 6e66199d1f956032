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
	return Policy{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2,
	}
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(5), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	wantErr := errors.New("still down")

	err := Do(context.Background(), fastPolicy(3), func(ctx context.Context) error {
		calls++
		return wantErr
	})

	require.Error(t, err)
	assert.Equal(t, wantErr, err)
	assert.Equal(t, 3, calls)
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	calls := 0
	wantErr := errors.New("validation failed")

	err := Do(context.Background(), fastPolicy(5), func(ctx context.Context) error {
		calls++
		return Permanent(wantErr)
	})

	require.Error(t, err)
	assert.Equal(t, wantErr, err)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Do(ctx, Policy{MaxAttempts: 10, BaseDelay: 50 * time.Millisecond, Multiplier: 2}, func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPermanent_NilStaysNil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}

func TestIsPermanent(t *testing.T) {
	assert.True(t, IsPermanent(Permanent(errors.New("x"))))
	assert.False(t, IsPermanent(errors.New("x")))
}

func TestDo_ZeroPolicyRunsOnce(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{}, func(ctx context.Context) error {
		calls++
		return errors.New("boom")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
