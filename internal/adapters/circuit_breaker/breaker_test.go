package circuit_breaker

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/flowrun/internal/domain"
)

func newTestBreaker(threshold int, cooldown time.Duration) (*Breaker, *time.Time) {
	now := time.Unix(1_700_000_000, 0)
	b := NewBreaker("test", domain.BreakerConfig{FailureThreshold: threshold, Cooldown: cooldown}, nil)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	for i := 0; i < 2; i++ {
		require.NoError(t, b.Allow())
		b.Record(false)
	}
	assert.Equal(t, StateClosed, b.State())

	require.NoError(t, b.Allow())
	b.Record(true)
	require.NoError(t, b.Allow())
	b.Record(false)
	assert.Equal(t, StateClosed, b.State(), "success resets the failure streak")

	for i := 0; i < 2; i++ {
		require.NoError(t, b.Allow())
		b.Record(false)
	}
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	b, now := newTestBreaker(1, time.Minute)

	require.NoError(t, b.Allow())
	b.Record(false)
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	*now = now.Add(time.Minute)
	require.NoError(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen, "only one probe at a time")

	b.Record(false)
	assert.Equal(t, StateOpen, b.State())

	*now = now.Add(time.Minute)
	require.NoError(t, b.Allow())
	b.Record(true)
	assert.Equal(t, StateClosed, b.State())

	m := b.Metrics()
	assert.Equal(t, int64(3), m.RequestsAllowed)
	assert.Equal(t, int64(2), m.RequestsRejected)
}

func TestBreaker_DisabledWithZeroThreshold(t *testing.T) {
	b, _ := newTestBreaker(0, time.Minute)

	for i := 0; i < 10; i++ {
		require.NoError(t, b.Allow())
		b.Record(false)
	}
	assert.Equal(t, StateClosed, b.State())
}

func TestSet_OneBreakerPerKey(t *testing.T) {
	s := NewSet(domain.BreakerConfig{FailureThreshold: 1}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Get("a.example")
		}()
	}
	wg.Wait()

	a := s.Get("a.example")
	require.NoError(t, a.Allow())
	a.Record(false)

	assert.Same(t, a, s.Get("a.example"))
	assert.Equal(t, StateClosed, s.Get("b.example").State())

	metrics := s.Metrics()
	assert.Len(t, metrics, 2)
	assert.Equal(t, StateOpen, metrics["a.example"].State)
}
