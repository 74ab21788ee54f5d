package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_Success(t *testing.T) {
	called := 0
	err := Do(context.Background(), Config{MaxRetries: 3, InitialBackoff: time.Millisecond}, func() error {
		called++
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, called)
}

func TestDo_SuccessAfterRetries(t *testing.T) {
	called := 0
	err := Do(context.Background(), Config{MaxRetries: 5, InitialBackoff: time.Millisecond}, func() error {
		called++
		if called < 3 {
			return errors.New("not ready")
		}
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, called)
}

func TestDo_ExhaustedRetries(t *testing.T) {
	sentinel := errors.New("connection refused")
	called := 0
	err := Do(context.Background(), Config{MaxRetries: 3, InitialBackoff: time.Millisecond}, func() error {
		called++
		return sentinel
	}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "failed after 3 retries")
	assert.Equal(t, 3, called)
}

func TestDo_NonRetryable(t *testing.T) {
	called := 0
	err := Do(context.Background(), Config{MaxRetries: 5, InitialBackoff: time.Millisecond}, func() error {
		called++
		return errors.New("bad password")
	}, func(error) bool { return false })

	require.EqualError(t, err, "bad password")
	assert.Equal(t, 1, called)
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	called := 0
	err := Do(ctx, Config{MaxRetries: 5, InitialBackoff: time.Hour}, func() error {
		called++
		cancel()
		return errors.New("temporary")
	}, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, called)
}

func TestCalculateBackoff(t *testing.T) {
	cfg := Config{MaxRetries: 5, InitialBackoff: 100 * time.Millisecond, MaxBackoff: 300 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, calculateBackoff(cfg, 1))
	assert.Equal(t, 200*time.Millisecond, calculateBackoff(cfg, 2))
	assert.Equal(t, 300*time.Millisecond, calculateBackoff(cfg, 3))

	cfg.Jitter = 0.5
	assert.Greater(t, calculateBackoff(cfg, 2), 200*time.Millisecond)
}

func TestTransient(t *testing.T) {
	assert.False(t, Transient(nil))
	assert.False(t, Transient(context.Canceled))
	assert.True(t, Transient(context.DeadlineExceeded))
	assert.True(t, Transient(fmt.Errorf("dial: %w", syscall.ECONNREFUSED)))
	assert.True(t, Transient(&net.OpError{Op: "dial", Err: errors.New("no route")}))
	assert.False(t, Transient(errors.New("permission denied for table clockwork")))
}
