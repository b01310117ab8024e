package resolver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyStats struct {
	mu       sync.Mutex
	calls    []int64
	failures map[int64]int
}

func (f *flakyStats) fetch(_ context.Context, id int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	if f.failures[id] > 0 {
		f.failures[id]--
		return "", errors.New("bad status 503")
	}
	return fmt.Sprintf("stats-for-%d", id), nil
}

func (f *flakyStats) Calls() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.calls...)
}

func TestSequentialResolverRetriesAtTail(t *testing.T) {
	stats := &flakyStats{failures: map[int64]int{1: 1}}
	r, err := NewRetryingSequentialResolver(SequentialConfig[int64, string]{
		Name:     "stats",
		Interval: 10 * time.Millisecond,
		Fetch:    stats.fetch,
	})
	require.NoError(t, err)

	x := r.Schedule(1)
	y := r.Schedule(2)
	r.Start(context.Background())
	defer r.Stop()

	v, err := awaitWithin(t, x, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "stats-for-1", v)
	_, err = awaitWithin(t, y, 2*time.Second)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 1}, stats.Calls(), "the failed id must wait behind the other queued id")
}

func TestSequentialResolverOneRequestPerTick(t *testing.T) {
	stats := &flakyStats{}
	r, err := NewRetryingSequentialResolver(SequentialConfig[int64, string]{
		Name:     "stats",
		Interval: 100 * time.Millisecond,
		Fetch:    stats.fetch,
	})
	require.NoError(t, err)

	for id := int64(1); id <= 3; id++ {
		r.Schedule(id)
	}
	r.Start(context.Background())
	defer r.Stop()

	time.Sleep(150 * time.Millisecond)
	assert.Len(t, stats.Calls(), 1)
	assert.Equal(t, 2, r.Pending())
}

func TestSequentialResolverClearAbandons(t *testing.T) {
	stats := &flakyStats{}
	r, err := NewRetryingSequentialResolver(SequentialConfig[int64, string]{
		Name:     "stats",
		Interval: time.Hour,
		Fetch:    stats.fetch,
	})
	require.NoError(t, err)

	f := r.Schedule(7)
	assert.Equal(t, 1, r.Clear())
	assert.Equal(t, 0, r.Pending())
	assert.Equal(t, StateAbandoned, f.State())
	assert.ErrorIs(t, f.Reason(), ErrCleared)

	_, err = awaitWithin(t, f, 20*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "cleared futures are abandoned, not rejected")
}

func TestSequentialResolverStopKeepsQueue(t *testing.T) {
	stats := &flakyStats{}
	r, err := NewRetryingSequentialResolver(SequentialConfig[int64, string]{
		Name:     "stats",
		Interval: time.Hour,
		Fetch:    stats.fetch,
	})
	require.NoError(t, err)

	r.Start(context.Background())
	r.Start(context.Background())
	r.Schedule(1)
	r.Stop()
	r.Stop()
	assert.Equal(t, 1, r.Pending())
	assert.Empty(t, stats.Calls())
}

func TestFutureSettlesOnce(t *testing.T) {
	f := newFuture[int](false)
	assert.Equal(t, StatePending, f.State())
	assert.True(t, f.resolve(1))
	assert.False(t, f.abandon(ErrCleared))
	assert.False(t, f.resolve(2))

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.NotEmpty(t, f.ID())
	assert.Equal(t, "resolved", f.State().String())
}
