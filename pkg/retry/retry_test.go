package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrier_Do_RetryableSucceeds(t *testing.T) {
	ctx := context.Background()
	r := New(
		WithMaxAttempts(3),
		WithInitialDelay(time.Millisecond),
		WithJitter(0),
	)

	attempts := 0
	err := r.Do(ctx, func(context.Context) error {
		attempts++
		if attempts < 2 {
			return Retryable(errors.New("connection refused"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRetrier_Do_PermanentNotRetried(t *testing.T) {
	ctx := context.Background()
	r := New(WithMaxAttempts(5), WithInitialDelay(time.Millisecond))

	base := errors.New("schema mismatch")
	attempts := 0
	err := r.Do(ctx, func(context.Context) error {
		attempts++
		return Permanent(base)
	})

	assert.Equal(t, base, err)
	assert.Equal(t, 1, attempts)
}

func TestRetrier_Do_ExhaustsAttempts(t *testing.T) {
	ctx := context.Background()
	r := New(
		WithMaxAttempts(3),
		WithInitialDelay(time.Millisecond),
		WithJitter(0),
	)

	base := errors.New("connection refused")
	attempts := 0
	err := r.Do(ctx, func(context.Context) error {
		attempts++
		return Retryable(base)
	})

	// После последней попытки возвращается исходная ошибка без обёртки.
	assert.Equal(t, base, err)
	assert.Equal(t, 3, attempts)
}

func TestRetrier_Do_NonRetryableReturnedAsIs(t *testing.T) {
	ctx := context.Background()
	r := New(WithMaxAttempts(3), WithInitialDelay(time.Millisecond))

	base := errors.New("plain failure")
	attempts := 0
	err := r.Do(ctx, func(context.Context) error {
		attempts++
		return base
	})

	assert.Equal(t, base, err)
	assert.Equal(t, 1, attempts)
}

func TestRetrier_Do_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := New(WithMaxAttempts(5), WithInitialDelay(50*time.Millisecond))

	attempts := 0
	err := r.Do(ctx, func(context.Context) error {
		attempts++
		cancel()
		return Retryable(errors.New("connection refused"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDatabaseRetrier_RecoversTransientPing(t *testing.T) {
	ctx := context.Background()

	// Профиль запуска: обрыв соединения на старте контейнера
	// переживается без падения процесса.
	attempts := 0
	err := DatabaseRetrier().Do(ctx, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return Retryable(errors.New("dial tcp: connection refused"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestCalculateDelay_CappedAtMax(t *testing.T) {
	r := New(
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(300*time.Millisecond),
		WithMultiplier(2.0),
		WithJitter(0),
	)

	assert.Equal(t, 100*time.Millisecond, r.calculateDelay(1))
	assert.Equal(t, 200*time.Millisecond, r.calculateDelay(2))
	assert.Equal(t, 300*time.Millisecond, r.calculateDelay(3))
	assert.Equal(t, 300*time.Millisecond, r.calculateDelay(10))
}
