package kafka

import (
	"time"

	"github.com/sony/gobreaker"

	metrics "github.com/ledgerbank/transfer-engine/internal/pkg/telemetry"
)

// Breaker states, as the values of the Prometheus circuit-breaker-state gauge.
const (
	stateClosed   = 0
	stateHalfOpen = 1
	stateOpen     = 2
)

// NewBreaker builds a gobreaker.CircuitBreaker tuned for the event
// publisher: half-open after 30s, trips after 5 consecutive failures.
func NewBreaker(name string) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitBreakerState(name, float64(stateFor(to)))
		},
	}
	return gobreaker.NewCircuitBreaker(settings)
}

func stateFor(s gobreaker.State) int {
	switch s {
	case gobreaker.StateOpen:
		return stateOpen
	case gobreaker.StateHalfOpen:
		return stateHalfOpen
	default:
		return stateClosed
	}
}
