package cache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyBackend struct {
	mu        sync.Mutex
	values    map[string]string
	failSet   bool
	failGet   bool
	setCalls  int
	panicOnce bool
}

func newFlakyBackend() *flakyBackend {
	return &flakyBackend{values: make(map[string]string)}
}

func (f *flakyBackend) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet {
		return "", errors.New("storage exploded")
	}
	v, ok := f.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return v, nil
}

func (f *flakyBackend) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	if f.panicOnce {
		f.panicOnce = false
		panic("quota exceeded")
	}
	if f.failSet {
		return errors.New("quota exceeded")
	}
	f.values[key] = value
	return nil
}

func (f *flakyBackend) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return nil
}

func TestNewKeyValueCacheChecksBackendOnce(t *testing.T) {
	backend := newFlakyBackend()
	c := NewKeyValueCache(context.Background(), backend)
	require.True(t, c.Available())
	assert.Equal(t, 1, backend.setCalls)
	assert.NotContains(t, backend.values, sentinelKey)

	c.Set(context.Background(), IDKey("Alice"), "1")
	c.Set(context.Background(), IDKey("Bob"), "2")
	assert.Equal(t, 3, backend.setCalls)

	v, ok := c.Get(context.Background(), IDKey("Alice"))
	require.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestNewKeyValueCacheFallsBackToNoop(t *testing.T) {
	backend := newFlakyBackend()
	backend.failSet = true

	c := NewKeyValueCache(context.Background(), backend)
	assert.False(t, c.Available())
	assert.IsType(t, NoopCache{}, c)

	c.Set(context.Background(), "k", "v")
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
	assert.Equal(t, 1, backend.setCalls, "no-op cache must not touch the backend")
}

func TestNewKeyValueCacheRecoversFromPanickingBackend(t *testing.T) {
	backend := newFlakyBackend()
	backend.panicOnce = true

	c := NewKeyValueCache(context.Background(), backend)
	assert.False(t, c.Available())
}

func TestNilBackendIsNoop(t *testing.T) {
	c := NewKeyValueCache(context.Background(), nil)
	assert.False(t, c.Available())
}

func TestReadFailureIsAMiss(t *testing.T) {
	backend := newFlakyBackend()
	c := NewKeyValueCache(context.Background(), backend)
	c.Set(context.Background(), "k", "v")

	backend.failGet = true
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
}

func TestMemoryBackendEvicts(t *testing.T) {
	backend, err := NewMemoryBackend(2)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "a", "1"))
	require.NoError(t, backend.Set(ctx, "b", "2"))
	require.NoError(t, backend.Set(ctx, "c", "3"))

	_, err = backend.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.Equal(t, 2, backend.Len())
}

func TestKeysDoNotCollideAcrossKinds(t *testing.T) {
	keys := []string{
		IDKey("1"),
		AffiliationKey("1"),
		CorporationKey(1),
		AllianceKey(1),
		StatsKey(1),
	}
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		_, dup := seen[k]
		require.False(t, dup, "duplicate key %s", k)
		seen[k] = struct{}{}
	}
	assert.Equal(t, "id:Alice", IDKey("Alice"))
	assert.Equal(t, "stats-42", StatsKey(42))
}

func TestBuildUniversalOptions(t *testing.T) {
	opts, err := buildUniversalOptions("redis://:secret@cache-1:6379/2, cache-2:6379")
	require.NoError(t, err)
	assert.Equal(t, []string{"cache-1:6379", "cache-2:6379"}, opts.Addrs)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	_, err = buildUniversalOptions(" , ")
	assert.Error(t, err)
}
