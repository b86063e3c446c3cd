package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_OpensAtFailureThreshold(t *testing.T) {
	b := New("redis", WithFailureThreshold(3))
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "redis", b.Name())

	useFallback, change := b.RecordFailure()
	assert.False(t, useFallback)
	useFallback, _ = b.RecordFailure()
	assert.False(t, useFallback)

	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.True(t, change.Opened)
	assert.True(t, b.IsOpen())

	// Already open: further failures are fallback with no transition.
	useFallback, change = b.RecordFailure()
	assert.True(t, useFallback)
	assert.False(t, change.Opened)
}

func TestBreaker_ClosesAtSuccessThreshold(t *testing.T) {
	b := New("redis", WithFailureThreshold(1), WithSuccessThreshold(2))

	b.RecordFailure()
	assert.True(t, b.IsOpen())

	usePrimary, change := b.RecordSuccess()
	assert.False(t, usePrimary)
	assert.False(t, change.Closed)

	usePrimary, change = b.RecordSuccess()
	assert.True(t, usePrimary)
	assert.True(t, change.Closed)
	assert.False(t, b.IsOpen())
}

func TestBreaker_OutcomesResetOpposingCount(t *testing.T) {
	t.Run("success clears the failure streak", func(t *testing.T) {
		b := New("redis", WithFailureThreshold(2))
		b.RecordFailure()
		b.RecordSuccess()
		b.RecordFailure()
		assert.False(t, b.IsOpen(), "streak was broken")
		b.RecordFailure()
		assert.True(t, b.IsOpen())
	})

	t.Run("failure clears the success streak", func(t *testing.T) {
		b := New("redis", WithFailureThreshold(1), WithSuccessThreshold(2))
		b.RecordFailure()
		b.RecordSuccess()
		b.RecordFailure()
		b.RecordSuccess()
		assert.True(t, b.IsOpen(), "one success after the reset is not enough")
		b.RecordSuccess()
		assert.False(t, b.IsOpen())
	})
}

func TestBreaker_RetryIntervalAllowsProbes(t *testing.T) {
	b := New("redis", WithFailureThreshold(1), WithSuccessThreshold(1),
		WithRetryInterval(time.Millisecond))

	b.RecordFailure()
	assert.Equal(t, StateOpen, b.State())

	time.Sleep(5 * time.Millisecond)
	assert.False(t, b.IsOpen(), "retry window elapsed, probes allowed")
	assert.Equal(t, StateOpen, b.State(), "still open until a probe succeeds")

	b.RecordSuccess()
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_Reset(t *testing.T) {
	b := New("redis", WithFailureThreshold(1))
	b.RecordFailure()
	assert.True(t, b.IsOpen())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
}
