package resolver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/localscan/intel-gateway/app/utils/logger"
)

const DefaultRetryInterval = time.Second

type FetchFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

type SequentialConfig[K comparable, V any] struct {
	Name     string
	Interval time.Duration
	// Timeout bounds one upstream call; zero means no bound.
	Timeout          time.Duration
	Fetch            FetchFunc[K, V]
	SurfaceAbandoned bool
}

// RetryingSequentialResolver serves one queued request per tick. A failed
// request is appended to the tail of the queue and retried when it reaches the
// head again; there is no retry ceiling.
type RetryingSequentialResolver[K comparable, V any] struct {
	name     string
	interval time.Duration
	timeout  time.Duration
	fetch    FetchFunc[K, V]
	surface  bool
	metrics  *metrics

	mu    sync.Mutex
	queue []pendingRequest[K, V]

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRetryingSequentialResolver[K comparable, V any](cfg SequentialConfig[K, V]) (*RetryingSequentialResolver[K, V], error) {
	if cfg.Fetch == nil {
		return nil, fmt.Errorf("sequential resolver %q: fetch function is required", cfg.Name)
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}
	return &RetryingSequentialResolver[K, V]{
		name:     cfg.Name,
		interval: interval,
		timeout:  cfg.Timeout,
		fetch:    cfg.Fetch,
		surface:  cfg.SurfaceAbandoned,
		metrics:  newMetrics(cfg.Name),
	}, nil
}

func (r *RetryingSequentialResolver[K, V]) Schedule(key K) *Future[V] {
	future := newFuture[V](r.surface)
	r.mu.Lock()
	r.queue = append(r.queue, pendingRequest[K, V]{key: key, future: future})
	r.mu.Unlock()
	return future
}

// Start launches the worker. Calling Start on a running resolver is a no-op.
func (r *RetryingSequentialResolver[K, V]) Start(ctx context.Context) {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	if r.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.run(ctx, r.done)
	logger.GetLogger().WithFields(logrus.Fields{
		"resolver": r.name,
		"interval": r.interval.String(),
	}).Info("retry queue worker started")
}

// Stop halts the worker and waits for an in-flight call to return. Queued
// requests stay queued.
func (r *RetryingSequentialResolver[K, V]) Stop() {
	r.runMu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Clear drops every queued request. Their futures are abandoned with
// ErrCleared and callers are not woken unless surfacing is enabled.
func (r *RetryingSequentialResolver[K, V]) Clear() int {
	r.mu.Lock()
	dropped := r.queue
	r.queue = nil
	r.mu.Unlock()
	for _, p := range dropped {
		p.future.abandon(ErrCleared)
	}
	r.metrics.add(context.Background(), r.metrics.abandoned, len(dropped))
	return len(dropped)
}

func (r *RetryingSequentialResolver[K, V]) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

func (r *RetryingSequentialResolver[K, V]) Name() string {
	return r.name
}

func (r *RetryingSequentialResolver[K, V]) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

// tick services at most the head of the queue.
func (r *RetryingSequentialResolver[K, V]) tick(ctx context.Context) {
	r.mu.Lock()
	if len(r.queue) == 0 {
		r.mu.Unlock()
		return
	}
	req := r.queue[0]
	r.queue[0] = pendingRequest[K, V]{}
	r.queue = r.queue[1:]
	r.mu.Unlock()

	if req.future.State() != StatePending {
		return
	}

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	r.metrics.add(ctx, r.metrics.upstreamCalls, 1)
	value, err := r.fetch(callCtx, req.key)
	if err != nil {
		if ctx.Err() != nil {
			r.requeue(req, true)
			return
		}
		logger.GetLogger().WithFields(logrus.Fields{
			"resolver": r.name,
			"key":      req.key,
		}).Warnf("fetch failed, back to the end of the queue: %v", err)
		r.metrics.add(ctx, r.metrics.retries, 1)
		r.requeue(req, false)
		return
	}
	if req.future.resolve(value) {
		r.metrics.add(ctx, r.metrics.resolved, 1)
	}
}

// requeue puts req back at the tail, or at the head when the worker is
// stopping mid-call.
func (r *RetryingSequentialResolver[K, V]) requeue(req pendingRequest[K, V], head bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if head {
		r.queue = append([]pendingRequest[K, V]{req}, r.queue...)
		return
	}
	r.queue = append(r.queue, req)
}
