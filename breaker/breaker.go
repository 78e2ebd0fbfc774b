// Package breaker builds gobreaker circuit breakers that report their state
// to Prometheus and the structured log.
package breaker

import (
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/viant/cinematch/logging"
	"github.com/viant/cinematch/metrics"
)

// Settings tunes a breaker. Zero values take the defaults below.
type Settings struct {
	MinRequests  uint32        // requests in a window before tripping is considered (default 5)
	FailureRatio float64       // trip at or above this failure ratio (default 0.6)
	Interval     time.Duration // closed-state count reset (default 1m)
	Timeout      time.Duration // open to half-open delay (default 30s)
	MaxRequests  uint32        // probes allowed while half-open (default 1)
}

func (s Settings) withDefaults() Settings {
	if s.MinRequests == 0 {
		s.MinRequests = 5
	}
	if s.FailureRatio <= 0 {
		s.FailureRatio = 0.6
	}
	if s.Interval <= 0 {
		s.Interval = time.Minute
	}
	if s.Timeout <= 0 {
		s.Timeout = 30 * time.Second
	}
	if s.MaxRequests == 0 {
		s.MaxRequests = 1
	}
	return s
}

// New returns a breaker named name.
func New[T any](name string, s Settings) *gobreaker.CircuitBreaker[T] {
	s = s.withDefaults()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= s.FailureRatio {
				logging.Warn().Str("breaker", name).Uint32("failures", counts.TotalFailures).
					Float64("failure_ratio", ratio).Msg("opening circuit")
				return true
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", StateString(from)).
				Str("to", StateString(to)).Msg("circuit state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})
}

// Execute runs fn through cb and counts the outcome under service.
func Execute[T any](cb *gobreaker.CircuitBreaker[T], service string, fn func() (T, error)) (T, error) {
	result, err := cb.Execute(fn)
	switch {
	case err == nil:
		metrics.UpstreamRequests.WithLabelValues(service, "success").Inc()
	case IsRejected(err):
		metrics.UpstreamRequests.WithLabelValues(service, "rejected").Inc()
	default:
		metrics.UpstreamRequests.WithLabelValues(service, "failure").Inc()
	}
	return result, err
}

// IsRejected reports whether err came from an open or saturated breaker
// rather than from the wrapped call.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// StateString names a breaker state for logs.
func StateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
