package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrAbandoned is returned by Await only for futures created with
	// surfacing enabled. By default abandoned futures never return.
	ErrAbandoned = errors.New("request abandoned")
	// ErrUpstreamFailed is the abandonment reason when a batch call fails.
	ErrUpstreamFailed = errors.New("upstream call failed")
	// ErrCleared is the abandonment reason for requests dropped by Clear.
	ErrCleared = errors.New("request queue cleared")
)

type State int

const (
	StatePending State = iota
	StateResolved
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolved:
		return "resolved"
	case StateAbandoned:
		return "abandoned"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Future is a one-shot completion. It moves from pending to exactly one of
// resolved or abandoned.
type Future[T any] struct {
	id      string
	surface bool

	mu       sync.Mutex
	state    State
	value    T
	reason   error
	resolved chan struct{}
	settled  chan struct{}
}

func newFuture[T any](surface bool) *Future[T] {
	return &Future[T]{
		id:       uuid.NewString(),
		surface:  surface,
		resolved: make(chan struct{}),
		settled:  make(chan struct{}),
	}
}

// Resolved returns a future that is already resolved with value.
func Resolved[T any](value T) *Future[T] {
	f := newFuture[T](false)
	f.resolve(value)
	return f
}

func (f *Future[T]) ID() string {
	return f.id
}

func (f *Future[T]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Reason is the abandonment cause, nil unless State is StateAbandoned.
func (f *Future[T]) Reason() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reason
}

// Value returns the resolved value without blocking. ok is false unless the
// future is resolved.
func (f *Future[T]) Value() (value T, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateResolved {
		return value, false
	}
	return f.value, true
}

// Settled is closed once the future reaches any terminal state.
func (f *Future[T]) Settled() <-chan struct{} {
	return f.settled
}

// Await blocks until the value is available or ctx ends. An abandoned future
// keeps Await blocked until ctx ends, unless surfacing was enabled in which
// case Await returns ErrAbandoned wrapping the reason.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	var zero T
	if f.surface {
		select {
		case <-f.settled:
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.state == StateAbandoned {
				return zero, fmt.Errorf("%w: %w", ErrAbandoned, f.reason)
			}
			return f.value, nil
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	select {
	case <-f.resolved:
		return f.value, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (f *Future[T]) resolve(value T) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StatePending {
		return false
	}
	f.state = StateResolved
	f.value = value
	close(f.resolved)
	close(f.settled)
	return true
}

func (f *Future[T]) abandon(reason error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StatePending {
		return false
	}
	f.state = StateAbandoned
	f.reason = reason
	close(f.settled)
	return true
}
