package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// ErrProviderUnavailable is returned while the breaker is open
var ErrProviderUnavailable = errors.New("verification provider unavailable")

// BreakerSettings tunes the circuit breaker around a provider
type BreakerSettings struct {
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
	HalfOpenRequests    uint32
}

// BreakerVerifier stops calling a provider that keeps failing. Only transport
// errors count as failures; a rejected document is a normal answer.
type BreakerVerifier struct {
	next Verifier
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerVerifier wraps next in a circuit breaker
func NewBreakerVerifier(next Verifier, settings BreakerSettings, logger *logrus.Logger) *BreakerVerifier {
	if logger == nil {
		logger = logrus.New()
	}
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = 5
	}
	if settings.OpenTimeout == 0 {
		settings.OpenTimeout = 60 * time.Second
	}
	if settings.HalfOpenRequests == 0 {
		settings.HalfOpenRequests = 1
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "document-verifier",
		MaxRequests: settings.HalfOpenRequests,
		Interval:    30 * time.Second,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"circuit_breaker": name,
				"from":            from.String(),
				"to":              to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
	return &BreakerVerifier{next: next, cb: cb}
}

// Verify calls the wrapped provider unless the breaker is open
func (v *BreakerVerifier) Verify(ctx context.Context, req Request) (*Result, error) {
	out, err := v.cb.Execute(func() (interface{}, error) {
		return v.next.Verify(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return out.(*Result), nil
}

// State reports the breaker state, for readiness checks
func (v *BreakerVerifier) State() gobreaker.State {
	return v.cb.State()
}
