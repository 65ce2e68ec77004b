package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests")
)

// State represents circuit breaker state
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Config holds breaker thresholds
type Config struct {
	MaxFailures  int           // consecutive failures that open the circuit; default 5
	ResetTimeout time.Duration // time spent open before a probe is let through; default 1m

	// OnStateChange, if set, is called after every transition with the lock released
	OnStateChange func(from, to State)

	now func() time.Time
}

// CircuitBreaker guards calls to an unreliable dependency
type CircuitBreaker struct {
	maxFailures   int
	resetTimeout  time.Duration
	onStateChange func(from, to State)
	now           func() time.Time

	mu              sync.Mutex
	state           State
	failures        int
	probeInFlight   bool
	openedAt        time.Time
	lastStateChange time.Time
}

// New creates a new circuit breaker
func New(cfg Config) *CircuitBreaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = time.Minute
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}

	return &CircuitBreaker{
		maxFailures:     cfg.MaxFailures,
		resetTimeout:    cfg.ResetTimeout,
		onStateChange:   cfg.OnStateChange,
		now:             cfg.now,
		state:           StateClosed,
		lastStateChange: cfg.now(),
	}
}

// abandonedError marks a failure caused by the caller, not the dependency
type abandonedError struct {
	err error
}

func (e abandonedError) Error() string { return e.err.Error() }
func (e abandonedError) Unwrap() error { return e.err }

// Abandoned wraps err so Call reports it without counting it as a failure.
// Use it when the caller gave up, e.g. its context was cancelled.
func Abandoned(err error) error {
	if err == nil {
		return nil
	}
	return abandonedError{err: err}
}

// Call executes fn unless the circuit is open. Errors from fn count as
// failures unless wrapped with Abandoned; ErrCircuitOpen and
// ErrTooManyRequests mean fn was not run.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}

	err := fn()

	var abandoned abandonedError
	if errors.As(err, &abandoned) {
		cb.release()
		return abandoned.err
	}

	cb.afterCall(err)
	return err
}

// release ends a call that says nothing about the dependency's health
func (cb *CircuitBreaker) release() {
	cb.mu.Lock()
	cb.probeInFlight = false
	cb.mu.Unlock()
}

func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.resetTimeout {
			cb.mu.Unlock()
			return ErrCircuitOpen
		}
		from := cb.setState(StateHalfOpen)
		cb.probeInFlight = true
		cb.mu.Unlock()
		cb.notify(from, StateHalfOpen)
		return nil

	case StateHalfOpen:
		// Only one probe at a time
		if cb.probeInFlight {
			cb.mu.Unlock()
			return ErrTooManyRequests
		}
		cb.probeInFlight = true
	}

	cb.mu.Unlock()
	return nil
}

func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()

	from := cb.state
	to := from

	if err != nil {
		cb.failures++
		switch cb.state {
		case StateClosed:
			if cb.failures >= cb.maxFailures {
				to = StateOpen
			}
		case StateHalfOpen:
			to = StateOpen
		}
	} else {
		cb.failures = 0
		if cb.state == StateHalfOpen {
			to = StateClosed
		}
	}

	cb.probeInFlight = false
	if to != from {
		cb.setState(to)
		if to == StateOpen {
			cb.openedAt = cb.now()
		}
	}
	cb.mu.Unlock()

	if to != from {
		cb.notify(from, to)
	}
}

// setState must be called with mu held; it returns the previous state
func (cb *CircuitBreaker) setState(to State) State {
	from := cb.state
	cb.state = to
	cb.lastStateChange = cb.now()
	if to == StateClosed {
		cb.failures = 0
	}
	return from
}

func (cb *CircuitBreaker) notify(from, to State) {
	if cb.onStateChange != nil {
		cb.onStateChange(from, to)
	}
}

// State returns current circuit breaker state
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Stats returns the current state and consecutive failure count
func (cb *CircuitBreaker) Stats() (state State, failures int) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state, cb.failures
}

// Reset resets the circuit breaker to closed state
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	from := cb.setState(StateClosed)
	cb.probeInFlight = false
	cb.mu.Unlock()

	if from != StateClosed {
		cb.notify(from, StateClosed)
	}
}
