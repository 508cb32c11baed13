package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/AlibekovAA/linkmark/internal/common/errors"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold int32) (*CircuitBreaker, *fakeClock) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Threshold:  threshold,
		Timeout:    time.Second,
		ResetAfter: time.Minute,
	})
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb.now = clk.now
	return cb, clk
}

func fail(cb *CircuitBreaker) error {
	return cb.Call(context.Background(), func(context.Context) error { return errors.New("connection refused") })
}

func succeed(cb *CircuitBreaker) error {
	return cb.Call(context.Background(), func(context.Context) error { return nil })
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(2)

	require.Error(t, fail(cb))
	assert.Equal(t, StateClosed, cb.State())
	require.Error(t, fail(cb))
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Call(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, commonerrors.ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	cb, _ := newTestBreaker(1)

	for i := 0; i < 5; i++ {
		err := cb.Call(context.Background(), func(context.Context) error { return commonerrors.ErrNotFound })
		require.ErrorIs(t, err, commonerrors.ErrNotFound)
	}

	assert.False(t, cb.IsOpen())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb, _ := newTestBreaker(2)

	require.Error(t, fail(cb))
	require.NoError(t, succeed(cb))
	require.Error(t, fail(cb))

	assert.False(t, cb.IsOpen())
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	cb, clk := newTestBreaker(1)

	require.Error(t, fail(cb))
	require.True(t, cb.IsOpen())

	clk.advance(30 * time.Second)
	require.ErrorIs(t, succeed(cb), commonerrors.ErrCircuitOpen)

	clk.advance(31 * time.Second)
	require.Error(t, fail(cb))
	assert.Equal(t, StateOpen, cb.State(), "failed probe reopens")

	clk.advance(time.Minute)
	require.NoError(t, succeed(cb))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_SingleProbeWhileHalfOpen(t *testing.T) {
	cb, clk := newTestBreaker(1)
	require.Error(t, fail(cb))
	clk.advance(2 * time.Minute)

	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- cb.Call(context.Background(), func(context.Context) error {
			<-release
			return nil
		})
	}()

	require.Eventually(t, func() bool { return cb.State() == StateHalfOpen }, time.Second, time.Millisecond)
	require.ErrorIs(t, succeed(cb), commonerrors.ErrCircuitOpen)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, cb.State())
}
