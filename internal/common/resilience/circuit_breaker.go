package resilience

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	pgx "github.com/jackc/pgx/v4"

	commonerrors "github.com/AlibekovAA/linkmark/internal/common/errors"
	"github.com/AlibekovAA/linkmark/internal/common/logger"
	"github.com/AlibekovAA/linkmark/internal/observability/metrics"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// CircuitBreaker stops calling a failing dependency after Threshold
// consecutive failures. Once ResetAfter has elapsed a single probe call is let
// through; its outcome closes or reopens the circuit.
type CircuitBreaker struct {
	mu       sync.Mutex
	state    State
	failures int32
	openedAt time.Time
	probing  bool

	threshold  int32
	timeout    time.Duration
	resetAfter time.Duration
	name       string
	log        *logger.Logger
	now        func() time.Time
}

type CircuitBreakerConfig struct {
	Threshold  int32
	Timeout    time.Duration
	ResetAfter time.Duration
	Name       string
	Logger     *logger.Logger
}

func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.Threshold <= 0 {
		config.Threshold = 1
	}
	cb := &CircuitBreaker{
		threshold:  config.Threshold,
		timeout:    config.Timeout,
		resetAfter: config.ResetAfter,
		name:       config.Name,
		log:        config.Logger,
		now:        time.Now,
	}
	cb.publish()
	return cb
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) IsOpen() bool {
	return cb.State() == StateOpen
}

// Call runs fn under the breaker's timeout, or fails fast with ErrCircuitOpen.
func (cb *CircuitBreaker) Call(ctx context.Context, fn func(context.Context) error) error {
	if !cb.allow() {
		return commonerrors.ErrCircuitOpen
	}

	callCtx := ctx
	if cb.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cb.timeout)
		defer cancel()
	}

	err := fn(callCtx)
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.resetAfter {
			return false
		}
		cb.transition(StateHalfOpen)
		cb.probing = true
		return true
	default:
		if cb.probing {
			return false
		}
		cb.probing = true
		return true
	}
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	probe := cb.state == StateHalfOpen
	if probe {
		cb.probing = false
	}

	if err == nil || !countsAsFailure(err) {
		cb.failures = 0
		if probe {
			cb.transition(StateClosed)
		}
		return
	}

	cb.failures++
	if cb.name != "" {
		metrics.CircuitBreakerFailures.WithLabelValues(cb.name).Inc()
	}

	if probe || cb.failures >= cb.threshold {
		cb.openedAt = cb.now()
		cb.transition(StateOpen)
	}
}

// transition must be called with mu held.
func (cb *CircuitBreaker) transition(to State) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	if to == StateClosed {
		cb.failures = 0
	}
	cb.publish()
	if cb.log != nil {
		cb.log.Warnf("circuit breaker [%s]: %s -> %s", cb.name, from, to)
	}
}

func (cb *CircuitBreaker) publish() {
	if cb.name != "" {
		metrics.CircuitBreakerState.WithLabelValues(cb.name).Set(float64(cb.state))
	}
}

// countsAsFailure ignores outcomes that say nothing about the health of the
// dependency: missing rows, caller cancellation and client-side domain errors.
func countsAsFailure(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, context.Canceled) {
		return false
	}
	if domainErr, ok := commonerrors.AsDomainError(err); ok {
		return domainErr.HTTPStatus() >= http.StatusInternalServerError
	}
	return true
}
