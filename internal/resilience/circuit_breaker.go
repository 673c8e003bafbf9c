// Copyright (c) 2026 crashwatch authors
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package resilience provides the circuit breaker wrapping the fleet
// reporter's outbound Redis publish call, so a stalled downstream cannot back-pressure the detector's cooperative
// tick loop.
package resilience

import (
	"errors"
	"sync"
	"time"
)

// clock abstracts time operations for testability.
type clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// ErrOpen is returned by Call while the breaker is open.
var ErrOpen = errors.New("resilience: circuit breaker is open")

const (
	stateClosed   = "closed"
	stateOpen     = "open"
	stateHalfOpen = "half-open"
)

// CircuitBreaker is a minimal three-state breaker (closed/open/half-open).
// It opens after threshold consecutive failures and stays open for
// timeout, then allows one half-open trial.
type CircuitBreaker struct {
	mu        sync.Mutex
	name      string
	failures  int
	threshold int
	timeout   time.Duration
	state     string
	openedAt  time.Time
	clock     clock
	onTrip    func(name, reason string)
}

// Option configures a CircuitBreaker.
type Option func(*CircuitBreaker)

// WithClock injects a custom clock for testing.
func WithClock(c clock) Option {
	return func(cb *CircuitBreaker) { cb.clock = c }
}

// WithTripHook registers a callback invoked whenever the breaker opens,
// used to wire in Prometheus counters without this package depending on
// the metrics package.
func WithTripHook(fn func(name, reason string)) Option {
	return func(cb *CircuitBreaker) { cb.onTrip = fn }
}

// New creates a CircuitBreaker identified by name (used only in trip-hook
// callbacks, e.g. for metric labels).
func New(name string, threshold int, timeout time.Duration, opts ...Option) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 3
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cb := &CircuitBreaker{
		name:      name,
		threshold: threshold,
		timeout:   timeout,
		state:     stateClosed,
		clock:     realClock{},
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// Call executes fn respecting breaker state, recording failures and
// successes. Returns ErrOpen without invoking fn while the breaker is open
// and the timeout has not yet elapsed.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if cb == nil {
		return fn()
	}

	cb.mu.Lock()
	switch cb.state {
	case stateOpen:
		if cb.clock.Now().Sub(cb.openedAt) >= cb.timeout {
			cb.state = stateHalfOpen
		} else {
			cb.mu.Unlock()
			return ErrOpen
		}
	}
	cb.mu.Unlock()

	err := fn()
	if err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

func (cb *CircuitBreaker) recordFailure() {
	cb.mu.Lock()
	prev := cb.state
	cb.failures++
	if cb.state == stateHalfOpen || cb.failures >= cb.threshold {
		cb.state = stateOpen
		cb.openedAt = cb.clock.Now()
	}
	state := cb.state
	cb.mu.Unlock()

	if state == stateOpen && state != prev && cb.onTrip != nil {
		reason := "threshold_exceeded"
		if prev == stateHalfOpen {
			reason = "half_open_failure"
		}
		cb.onTrip(cb.name, reason)
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	cb.mu.Lock()
	cb.failures = 0
	cb.state = stateClosed
	cb.mu.Unlock()
}

// State returns the current state string, for diagnostics.
func (cb *CircuitBreaker) State() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}
