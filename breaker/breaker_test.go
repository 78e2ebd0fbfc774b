package breaker

import (
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerTripsAfterFailures(t *testing.T) {
	cb := New[int]("test-trip", Settings{MinRequests: 3, FailureRatio: 0.5, Timeout: time.Hour})
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		_, err := Execute(cb, "test", func() (int, error) { return 0, boom })
		require.ErrorIs(t, err, boom)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := Execute(cb, "test", func() (int, error) { return 1, nil })
	require.Error(t, err)
	assert.True(t, IsRejected(err))
}

func TestBreakerPassesResults(t *testing.T) {
	cb := New[string]("test-pass", Settings{})
	got, err := Execute(cb, "test", func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateString(gobreaker.StateClosed))
	assert.Equal(t, "half-open", StateString(gobreaker.StateHalfOpen))
	assert.Equal(t, "open", StateString(gobreaker.StateOpen))
}
