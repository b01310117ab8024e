package resolver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/localscan/intel-gateway/app/domain/common"
	"github.com/localscan/intel-gateway/app/infrastructure/cache"
	"github.com/localscan/intel-gateway/app/utils/functional"
	"github.com/localscan/intel-gateway/app/utils/logger"
)

const DefaultBatchDelay = 100 * time.Millisecond

// BatchFetchFunc resolves a set of distinct keys in one upstream call. Keys the
// upstream has no answer for are left out of the returned map.
type BatchFetchFunc[K comparable, V any] func(ctx context.Context, keys []K) (map[K]V, error)

// BatchCacheConfig lets a BatchResolver answer keys from a KeyValueCache
// before contacting the upstream and populate it afterwards.
type BatchCacheConfig[K comparable, V any] struct {
	Cache  cache.KeyValueCache
	Key    func(K) string
	Encode func(V) (string, error)
	Decode func(string) (V, error)
}

type BatchConfig[K comparable, V any] struct {
	Name  string
	Delay time.Duration
	// Timeout bounds one upstream call; zero means no bound.
	Timeout          time.Duration
	Fetch            BatchFetchFunc[K, V]
	Cache            *BatchCacheConfig[K, V]
	SurfaceAbandoned bool
	// MaxBatchSize caps the distinct keys per upstream call; a larger flush is
	// split into several calls. Zero means no cap.
	MaxBatchSize int
}

type pendingRequest[K comparable, V any] struct {
	key    K
	future *Future[V]
}

// BatchResolver coalesces keys scheduled within a sliding debounce window into
// a single upstream call.
type BatchResolver[K comparable, V any] struct {
	name    string
	delay   time.Duration
	timeout time.Duration
	maxKeys int
	fetch   BatchFetchFunc[K, V]
	cache   *BatchCacheConfig[K, V]
	surface bool
	metrics *metrics

	mu    sync.Mutex
	queue []pendingRequest[K, V]
	timer *time.Timer
}

func NewBatchResolver[K comparable, V any](cfg BatchConfig[K, V]) (*BatchResolver[K, V], error) {
	if cfg.Fetch == nil {
		return nil, fmt.Errorf("batch resolver %q: fetch function is required", cfg.Name)
	}
	if cfg.Cache != nil && (cfg.Cache.Cache == nil || cfg.Cache.Key == nil || cfg.Cache.Encode == nil || cfg.Cache.Decode == nil) {
		return nil, fmt.Errorf("batch resolver %q: cache config is incomplete", cfg.Name)
	}
	delay := cfg.Delay
	if delay <= 0 {
		delay = DefaultBatchDelay
	}
	return &BatchResolver[K, V]{
		name:    cfg.Name,
		delay:   delay,
		timeout: cfg.Timeout,
		maxKeys: cfg.MaxBatchSize,
		fetch:   cfg.Fetch,
		cache:   cfg.Cache,
		surface: cfg.SurfaceAbandoned,
		metrics: newMetrics(cfg.Name),
	}, nil
}

// Schedule queues key for the next flush and pushes the flush back by the
// debounce delay.
func (r *BatchResolver[K, V]) Schedule(key K) *Future[V] {
	future := newFuture[V](r.surface)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, pendingRequest[K, V]{key: key, future: future})
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.delay, r.onTimer)
	return future
}

// FlushNow flushes the current queue without waiting for the debounce window
// and returns once the resulting upstream call has finished.
func (r *BatchResolver[K, V]) FlushNow(ctx context.Context) {
	batch := r.capture()
	r.process(ctx, batch)
}

// Pending is the number of requests waiting for the next flush.
func (r *BatchResolver[K, V]) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

func (r *BatchResolver[K, V]) Name() string {
	return r.name
}

func (r *BatchResolver[K, V]) onTimer() {
	batch := r.capture()
	r.process(context.Background(), batch)
}

// capture drains the queue atomically. Requests scheduled afterwards belong
// to the next window.
func (r *BatchResolver[K, V]) capture() []pendingRequest[K, V] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	batch := r.queue
	r.queue = nil
	return batch
}

func (r *BatchResolver[K, V]) process(ctx context.Context, batch []pendingRequest[K, V]) {
	if len(batch) == 0 {
		return
	}
	r.metrics.add(ctx, r.metrics.flushes, 1)
	log := logger.GetLogger().WithFields(logrus.Fields{
		"resolver": r.name,
		"batch":    len(batch),
	})

	remaining := r.resolveFromCache(ctx, batch)
	if len(remaining) == 0 {
		log.Debug("batch answered from cache")
		return
	}

	keys := functional.Distinct(functional.Map(remaining, func(p pendingRequest[K, V]) K {
		return p.key
	}))
	byKey := make(map[K][]pendingRequest[K, V], len(keys))
	for _, p := range remaining {
		byKey[p.key] = append(byKey[p.key], p)
	}
	for _, chunk := range chunkKeys(keys, r.maxKeys) {
		r.fetchChunk(ctx, log, chunk, byKey)
	}
}

// fetchChunk performs one upstream call for keys and settles every request
// waiting on them.
func (r *BatchResolver[K, V]) fetchChunk(ctx context.Context, log *logrus.Entry, keys []K, byKey map[K][]pendingRequest[K, V]) {
	r.metrics.recordBatch(ctx, len(keys))
	r.metrics.add(ctx, r.metrics.upstreamCalls, 1)

	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	results, err := r.fetch(callCtx, keys)
	if err != nil {
		log.WithField("keys", len(keys)).Errorf("batch lookup failed, abandoning requests: %v", err)
		reason := fmt.Errorf("%w: %w", ErrUpstreamFailed, err)
		abandoned := 0
		for _, key := range keys {
			for _, p := range byKey[key] {
				p.future.abandon(reason)
				abandoned++
			}
		}
		r.metrics.add(ctx, r.metrics.abandoned, abandoned)
		return
	}

	var resolved, missed int
	for _, key := range keys {
		waiting := byKey[key]
		value, ok := results[key]
		if !ok {
			for _, p := range waiting {
				p.future.abandon(fmt.Errorf("%w: %v", common.ErrPartialMiss, key))
			}
			missed += len(waiting)
			continue
		}
		r.store(ctx, key, value)
		for _, p := range waiting {
			p.future.resolve(value)
		}
		resolved += len(waiting)
	}
	r.metrics.add(ctx, r.metrics.resolved, resolved)
	r.metrics.add(ctx, r.metrics.abandoned, missed)
	if missed > 0 {
		log.WithField("missed", missed).Warn("upstream returned no answer for some keys")
	}
}

func chunkKeys[K any](keys []K, size int) [][]K {
	if size <= 0 || len(keys) <= size {
		return [][]K{keys}
	}
	chunks := make([][]K, 0, (len(keys)+size-1)/size)
	for len(keys) > size {
		chunks = append(chunks, keys[:size:size])
		keys = keys[size:]
	}
	return append(chunks, keys)
}

func (r *BatchResolver[K, V]) resolveFromCache(ctx context.Context, batch []pendingRequest[K, V]) []pendingRequest[K, V] {
	if r.cache == nil {
		return batch
	}
	remaining := make([]pendingRequest[K, V], 0, len(batch))
	hits := 0
	for _, p := range batch {
		raw, ok := r.cache.Cache.Get(ctx, r.cache.Key(p.key))
		if !ok {
			remaining = append(remaining, p)
			continue
		}
		value, err := r.cache.Decode(raw)
		if err != nil {
			logger.GetLogger().WithField("resolver", r.name).Debugf("discarding undecodable cache entry: %v", err)
			remaining = append(remaining, p)
			continue
		}
		p.future.resolve(value)
		hits++
	}
	r.metrics.add(ctx, r.metrics.cacheHits, hits)
	return remaining
}

func (r *BatchResolver[K, V]) store(ctx context.Context, key K, value V) {
	if r.cache == nil {
		return
	}
	raw, err := r.cache.Encode(value)
	if err != nil {
		logger.GetLogger().WithField("resolver", r.name).Debugf("cannot encode value for cache: %v", err)
		return
	}
	r.cache.Cache.Set(ctx, r.cache.Key(key), raw)
}
