package resilience

import (
	"errors"
	"sync"
	"time"

	"intelligent-chatbot/backend/pkg/logger"
)

// ErrCircuitOpen is returned when the breaker is short-circuiting calls.
var ErrCircuitOpen = errors.New("circuit open")

// State represents the current state of a circuit breaker.
type State string

const (
	// StateClosed means requests are allowed to pass through.
	StateClosed State = "closed"
	// StateOpen means requests are being short-circuited.
	StateOpen State = "open"
	// StateHalfOpen means a limited number of test requests are allowed.
	StateHalfOpen State = "half-open"
)

// Config holds configuration for a circuit breaker.
type Config struct {
	Name             string
	FailureThreshold uint
	SuccessThreshold uint
	RetryTimeout     time.Duration
}

// DefaultConfig returns a default circuit breaker configuration.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		RetryTimeout:     60 * time.Second,
	}
}

// CircuitBreaker fails fast once a downstream dependency has failed
// repeatedly, then probes it again after RetryTimeout.
type CircuitBreaker struct {
	config Config
	log    *logger.Logger

	mu              sync.Mutex
	state           State
	failureCount    uint
	successCount    uint
	nextAttemptTime time.Time
}

// New creates a new circuit breaker.
func New(config Config, log *logger.Logger) *CircuitBreaker {
	return &CircuitBreaker{
		config: config,
		log:    log,
		state:  StateClosed,
	}
}

// Execute runs fn through the circuit breaker. When the circuit is open
// it returns ErrCircuitOpen without invoking fn.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.allowRequest() {
		cb.log.Warn("circuit breaker preventing request", "name", cb.config.Name)
		return ErrCircuitOpen
	}

	err := fn()
	if err != nil {
		cb.recordFailure(err)
		return err
	}

	cb.recordSuccess()
	return nil
}

// State returns the breaker's current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) allowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if time.Now().After(cb.nextAttemptTime) {
			cb.state = StateHalfOpen
			cb.successCount = 0
			return true
		}
		return false
	default:
		return true
	}
}

func (cb *CircuitBreaker) recordFailure(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	if cb.state == StateHalfOpen || cb.failureCount >= cb.config.FailureThreshold {
		if cb.state != StateOpen {
			cb.log.Warn("circuit breaker opened",
				"name", cb.config.Name,
				"failures", cb.failureCount,
				"error", err.Error(),
			)
		}
		cb.state = StateOpen
		cb.failureCount = 0
		cb.nextAttemptTime = time.Now().Add(cb.config.RetryTimeout)
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.config.SuccessThreshold {
			cb.state = StateClosed
			cb.failureCount = 0
			cb.log.Info("circuit breaker closed", "name", cb.config.Name)
		}
	case StateClosed:
		cb.failureCount = 0
	}
}
