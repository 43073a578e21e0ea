/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carverauto/hostsync/pkg/logger"
)

// CircuitBreakerState represents the current state of the circuit breaker
type CircuitBreakerState int

const (
	// StateClosed - fetches from the source are allowed
	StateClosed CircuitBreakerState = iota
	// StateOpen - fetches are rejected without calling the source
	StateOpen
	// StateHalfOpen - the source gets trial fetches to see if it recovered
	StateHalfOpen
)

// CircuitBreakerConfig holds configuration for the circuit breaker
type CircuitBreakerConfig struct {
	// FailureThreshold is the number of failed fetches before opening the circuit
	FailureThreshold int
	// SuccessThreshold is the number of trial successes needed to close it again
	SuccessThreshold int
	// Timeout is how long an open circuit waits before probing
	Timeout time.Duration
	// ResetTimeout forgets failures older than this while closed
	ResetTimeout time.Duration
}

// DefaultCircuitBreakerConfig returns the thresholds used for every source.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
		ResetTimeout:     60 * time.Second,
	}
}

// BreakerSnapshot is a point-in-time view of a breaker.
type BreakerSnapshot struct {
	Source      string    `json:"source"`
	State       string    `json:"state"`
	Failures    int       `json:"failures"`
	Successes   int       `json:"successes"`
	LastFailure time.Time `json:"last_failure"`
	LastReset   time.Time `json:"last_reset"`
}

// CircuitBreaker stops fetching a source that keeps failing and tries it
// again after Timeout.
type CircuitBreaker struct {
	config        CircuitBreakerConfig
	state         CircuitBreakerState
	failureCount  int
	successCount  int
	lastFailTime  time.Time
	lastResetTime time.Time
	mu            sync.RWMutex
	logger        logger.Logger
	source        string
	now           func() time.Time
}

// NewCircuitBreaker creates a closed breaker for the named source.
func NewCircuitBreaker(source string, config CircuitBreakerConfig, log logger.Logger) *CircuitBreaker {
	if log == nil {
		log = logger.Global()
	}

	return &CircuitBreaker{
		config:        config,
		state:         StateClosed,
		lastResetTime: time.Now(),
		logger:        log,
		source:        source,
		now:           time.Now,
	}
}

// Execute runs fn unless the circuit is open, and records its outcome.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if !cb.allowRequest(ctx) {
		recordRejection(ctx, cb.source)

		return fmt.Errorf("%w: %s", ErrCircuitOpen, cb.source)
	}

	err := fn()
	cb.recordResult(ctx, err)

	return err
}

func (cb *CircuitBreaker) allowRequest(ctx context.Context) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	now := cb.now()

	switch cb.state {
	case StateClosed:
		if now.Sub(cb.lastResetTime) >= cb.config.ResetTimeout {
			cb.failureCount = 0
			cb.lastResetTime = now
		}

		return true

	case StateOpen:
		if now.Sub(cb.lastFailTime) < cb.config.Timeout {
			return false
		}

		cb.successCount = 0
		cb.setState(ctx, StateHalfOpen, "Probing source after open timeout")

		return true

	case StateHalfOpen:
		return true

	default:
		return false
	}
}

func (cb *CircuitBreaker) recordResult(ctx context.Context, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.onFailure(ctx)
	} else {
		cb.onSuccess(ctx)
	}
}

func (cb *CircuitBreaker) onFailure(ctx context.Context) {
	cb.failureCount++
	cb.lastFailTime = cb.now()

	switch cb.state {
	case StateClosed:
		if cb.failureCount >= cb.config.FailureThreshold {
			cb.setState(ctx, StateOpen, "Source keeps failing, opening circuit")
		}
	case StateHalfOpen:
		cb.setState(ctx, StateOpen, "Trial fetch failed, reopening circuit")
	case StateOpen:
	}
}

func (cb *CircuitBreaker) onSuccess(ctx context.Context) {
	switch cb.state {
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount < cb.config.SuccessThreshold {
			return
		}

		cb.failureCount = 0
		cb.lastResetTime = cb.now()
		cb.setState(ctx, StateClosed, "Source recovered, closing circuit")
	case StateClosed:
		cb.failureCount = 0
		cb.lastResetTime = cb.now()
	case StateOpen:
	}
}

// setState must be called with mu held.
func (cb *CircuitBreaker) setState(ctx context.Context, to CircuitBreakerState, msg string) {
	from := cb.state
	cb.state = to

	ev := cb.logger.Info()
	if to == StateOpen {
		ev = cb.logger.Warn()
	}

	ev.Str("source", cb.source).
		Str("from", from.String()).
		Str("to", to.String()).
		Int("failure_count", cb.failureCount).
		Msg(msg)

	recordTransition(ctx, cb.source, to)
}

// GetState returns the current state of the circuit breaker
func (cb *CircuitBreaker) GetState() CircuitBreakerState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return cb.state
}

// Snapshot returns the breaker's counters for reporting.
func (cb *CircuitBreaker) Snapshot() BreakerSnapshot {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	return BreakerSnapshot{
		Source:      cb.source,
		State:       cb.state.String(),
		Failures:    cb.failureCount,
		Successes:   cb.successCount,
		LastFailure: cb.lastFailTime,
		LastReset:   cb.lastResetTime,
	}
}

func (s CircuitBreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}
