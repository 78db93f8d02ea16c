// Package circuitbreaker wraps sony/gobreaker with the defaults used for
// outbound calls and logs every state change.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

type Settings struct {
	Name string
	// Consecutive failures that open the breaker.
	FailureThreshold uint32
	// How long the breaker stays open before letting a probe through.
	OpenTimeout time.Duration
	// IsSuccessful decides which errors count as failures. nil counts every error.
	IsSuccessful func(err error) bool
	Logger       *slog.Logger
}

func New[T any](s Settings) *gobreaker.CircuitBreaker[T] {
	if s.FailureThreshold == 0 {
		s.FailureThreshold = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	threshold := s.FailureThreshold

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: s.IsSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})
}
