package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteBackendPersistsAcrossSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	ctx := context.Background()

	first, err := OpenSQLiteBackend(path)
	require.NoError(t, err)
	kv := NewKeyValueCache(ctx, first)
	require.True(t, kv.Available())
	kv.Set(ctx, IDKey("Alice"), "90000001")
	kv.Set(ctx, StatsKey(90000001), `{"dangerRatio":80}`)
	kv.Set(ctx, IDKey("Alice"), "90000002")
	require.NoError(t, first.Close())

	second, err := OpenSQLiteBackend(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })
	reopened := NewKeyValueCache(ctx, second)

	v, ok := reopened.Get(ctx, IDKey("Alice"))
	require.True(t, ok)
	assert.Equal(t, "90000002", v, "last write wins")
	v, ok = reopened.Get(ctx, StatsKey(90000001))
	require.True(t, ok)
	assert.JSONEq(t, `{"dangerRatio":80}`, v)

	_, ok = reopened.Get(ctx, IDKey("Bob"))
	assert.False(t, ok)
	_, ok = reopened.Get(ctx, sentinelKey)
	assert.False(t, ok, "availability check leaves nothing behind")
}
