// Package resilience guards calls to flaky dependencies.
package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/obs"
)

// ErrOpenCircuit is returned when the breaker refuses a call.
var ErrOpenCircuit = errors.New("resilience: circuit breaker open")

// State is the breaker state.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Breaker opens after Threshold consecutive failures and admits a single probe once
// the cool-off has elapsed.
type Breaker struct {
	mu        sync.Mutex
	target    string
	threshold int
	coolOff   time.Duration
	state     State
	failures  int
	openedAt  time.Time
	probing   bool
	now       func() time.Time
	logger    zerolog.Logger
}

// NewBreaker builds a breaker for target. Non-positive values fall back to 5 failures and 10s.
func NewBreaker(target string, threshold int, coolOff time.Duration, logger zerolog.Logger) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if coolOff <= 0 {
		coolOff = 10 * time.Second
	}
	return &Breaker{target: target, threshold: threshold, coolOff: coolOff, now: time.Now, logger: logger}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow returns ErrOpenCircuit while open, or while a half-open probe is in flight.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case Open:
		if b.now().Sub(b.openedAt) < b.coolOff {
			return ErrOpenCircuit
		}
		b.transition(HalfOpen)
		b.probing = true
		return nil
	case HalfOpen:
		if b.probing {
			return ErrOpenCircuit
		}
		b.probing = true
	}
	return nil
}

// Success records a healthy call.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.probing = false
	if b.state != Closed {
		b.transition(Closed)
	}
}

// Release ends an admitted call whose outcome says nothing about the target's health,
// such as one abandoned by its caller. The state is left as is.
func (b *Breaker) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
}

// Failure records a failed call.
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.probing = false
	if b.state == HalfOpen {
		b.transition(Open)
		return
	}
	b.failures++
	if b.state == Closed && b.failures >= b.threshold {
		b.transition(Open)
	}
}

func (b *Breaker) transition(next State) {
	prev := b.state
	b.state = next
	switch next {
	case Open:
		b.openedAt = b.now()
	case Closed:
		b.openedAt = time.Time{}
	}
	b.failures = 0
	obs.ObserveBreakerTransition(b.target, prev.String(), next.String(), float64(next))
	b.logger.Warn().Str("target", b.target).Str("from_state", prev.String()).Str("to_state", next.String()).Msg("breaker_transition")
}
