package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// State represents the state of a circuit breaker
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// halfOpenProbes is how many successful calls close a half-open breaker
const halfOpenProbes = 2

// CircuitBreaker stops calling a failing endpoint for a cool-down period.
// After maxFailures consecutive failures it opens; once resetTimeout has
// elapsed it lets probe calls through and closes again after enough succeed.
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	now          func() time.Time

	mu          sync.Mutex
	state       State
	failures    int
	probes      int
	openedAt    time.Time
	requests    int
	rejected    int
	lastFailure time.Time

	logger *logrus.Logger
}

func New(name string, maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return NewWithLogger(name, maxFailures, resetTimeout, nil)
}

func NewWithLogger(name string, maxFailures int, resetTimeout time.Duration, logger *logrus.Logger) *CircuitBreaker {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	return &CircuitBreaker{
		name:         name,
		maxFailures:  max(maxFailures, 1),
		resetTimeout: resetTimeout,
		now:          time.Now,
		state:        StateClosed,
		logger:       logger,
	}
}

// Execute runs fn unless the breaker is open. Context cancellation is not
// counted as an endpoint failure.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if !cb.allow() {
		return &CircuitBreakerError{Name: cb.name, State: StateOpen}
	}

	err := fn(ctx)
	switch {
	case err == nil:
		cb.onSuccess()
	case errors.Is(err, context.Canceled):
	default:
		cb.onFailure()
	}
	return err
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.advanceLocked()
	if cb.state == StateOpen {
		cb.rejected++
		return false
	}
	cb.requests++
	return true
}

// advanceLocked moves an open breaker to half-open once the cool-down has passed
func (cb *CircuitBreaker) advanceLocked() {
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.resetTimeout {
		cb.state = StateHalfOpen
		cb.probes = 0
		cb.logger.WithFields(logrus.Fields{
			"circuit_breaker": cb.name,
			"state":           StateHalfOpen.String(),
		}).Info("Circuit breaker transitioned to half-open")
	}
}

func (cb *CircuitBreaker) onSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.probes++
		if cb.probes >= halfOpenProbes {
			cb.state = StateClosed
			cb.failures = 0
			cb.logger.WithField("circuit_breaker", cb.name).Info("Circuit breaker closed after successful recovery")
		}
	case StateClosed:
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) onFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailure = cb.now()

	if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = StateOpen
		cb.openedAt = cb.lastFailure
		cb.logger.WithFields(logrus.Fields{
			"circuit_breaker": cb.name,
			"failures":        cb.failures,
			"state":           StateOpen.String(),
		}).Warn("Circuit breaker opened due to failures")
	}
}

func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.advanceLocked()
	return cb.state
}

// Stats is a snapshot of breaker counters, served by the metrics endpoint
type Stats struct {
	Name            string    `json:"name"`
	State           string    `json:"state"`
	Failures        int       `json:"failures"`
	Requests        int       `json:"requests"`
	Rejected        int       `json:"rejected"`
	LastFailureTime time.Time `json:"last_failure_time,omitzero"`
}

func (cb *CircuitBreaker) GetStats() Stats {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return Stats{
		Name:            cb.name,
		State:           cb.state.String(),
		Failures:        cb.failures,
		Requests:        cb.requests,
		Rejected:        cb.rejected,
		LastFailureTime: cb.lastFailure,
	}
}

// CircuitBreakerError is returned instead of calling an open endpoint
type CircuitBreakerError struct {
	Name  string
	State State
}

func (e *CircuitBreakerError) Error() string {
	return fmt.Sprintf("circuit breaker '%s' is %s", e.Name, e.State)
}

func IsCircuitBreakerError(err error) bool {
	var cbErr *CircuitBreakerError
	return errors.As(err, &cbErr)
}
