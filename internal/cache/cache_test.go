package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetThenGetRoundTrips(t *testing.T) {
	c := New(t.TempDir())
	require.NoError(t, c.Set("query", map[string]any{"q": "foo"}, "bar", time.Minute))

	e, src, ok := c.Get("query", map[string]any{"q": "foo"})
	require.True(t, ok)
	require.Equal(t, SourceMemory, src)
	require.JSONEq(t, `"bar"`, string(e.Value))
}

func TestGetMissReturnsFalse(t *testing.T) {
	c := New(t.TempDir())
	_, _, ok := c.Get("query", map[string]any{"q": "absent"})
	require.False(t, ok)
}

func TestExpiredEntryIsEvictedOnGet(t *testing.T) {
	c := New(t.TempDir())
	require.NoError(t, c.Set("query", map[string]any{"q": "foo"}, "bar", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, _, ok := c.Get("query", map[string]any{"q": "foo"})
	require.False(t, ok)
}

func TestTTLExactly60sIsNotPersistedButAboveIs(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)

	require.NoError(t, c.Set("query", map[string]any{"q": "short"}, "v", 60*time.Second))
	require.NoError(t, c.Set("query", map[string]any{"q": "long"}, "v", 61*time.Second))

	shortKey := Key("query", map[string]any{"q": "short"})
	longKey := Key("query", map[string]any{"q": "long"})

	require.NoFileExists(t, filepath.Join(dir, shortKey+".json"))
	require.FileExists(t, filepath.Join(dir, longKey+".json"))
}

func TestDiskHitRehydratesMemoryPreservingExpiry(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	require.NoError(t, c.Set("fileRead", map[string]any{"path": "/tmp/x"}, "content", 5*time.Minute))

	key := Key("fileRead", map[string]any{"path": "/tmp/x"})
	original, ok := c.mem[key]
	require.True(t, ok)
	originalExpiry := original.ExpiresAt

	// Force a disk-only rehydration path by clearing memory directly.
	c.mu.Lock()
	delete(c.mem, key)
	c.mu.Unlock()

	e, src, ok := c.Get("fileRead", map[string]any{"path": "/tmp/x"})
	require.True(t, ok)
	require.Equal(t, SourceDisk, src)
	require.WithinDuration(t, originalExpiry, e.ExpiresAt, time.Millisecond)
}

func TestInvalidateByPathAffectsDescendants(t *testing.T) {
	c := New(t.TempDir())
	require.NoError(t, c.Set("fileRead", map[string]any{"path": "/proj/src/a.go"}, "a", 5*time.Minute))
	require.NoError(t, c.Set("fileRead", map[string]any{"path": "/proj/src/sub/b.go"}, "b", 5*time.Minute))
	require.NoError(t, c.Set("fileRead", map[string]any{"path": "/other/c.go"}, "c", 5*time.Minute))

	count := c.Invalidate("", "/proj/src", "")
	require.Equal(t, 2, count)

	_, _, ok := c.Get("fileRead", map[string]any{"path": "/other/c.go"})
	require.True(t, ok)
}

func TestInvalidateIsIdempotent(t *testing.T) {
	c := New(t.TempDir())
	require.NoError(t, c.Set("fileRead", map[string]any{"path": "/a/b.go"}, "v", 5*time.Minute))

	first := c.Invalidate("", "/a", "")
	second := c.Invalidate("", "/a", "")
	require.Equal(t, 1, first)
	require.Equal(t, 0, second)
}

func TestCleanupExpiredRemovesCorruptedDiskFile(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	require.NoError(t, c.Set("query", map[string]any{"q": "x"}, "v", 5*time.Minute))

	key := Key("query", map[string]any{"q": "x"})
	corrupt(t, filepath.Join(dir, key+".json"))

	removed := c.CleanupExpired()
	require.GreaterOrEqual(t, removed, 1)
	require.NoFileExists(t, filepath.Join(dir, key+".json"))
}

func TestGetStatsReportsHitRate(t *testing.T) {
	c := New(t.TempDir())
	require.NoError(t, c.Set("query", map[string]any{"q": "x"}, "v", time.Minute))

	_, _, _ = c.Get("query", map[string]any{"q": "x"})
	_, _, _ = c.Get("query", map[string]any{"q": "absent"})

	stats := c.GetStats()
	require.Equal(t, int64(1), stats.Hits)
	require.Equal(t, int64(1), stats.Misses)
	require.InDelta(t, 0.5, stats.HitRate(), 0.001)
}

func TestClearResetsBothTiersAndCounters(t *testing.T) {
	c := New(t.TempDir())
	require.NoError(t, c.Set("query", map[string]any{"q": "x"}, "v", 5*time.Minute))
	_, _, _ = c.Get("query", map[string]any{"q": "x"})

	require.NoError(t, c.Clear())

	stats := c.GetStats()
	require.Zero(t, stats.Hits)
	require.Zero(t, stats.Misses)
	require.Zero(t, stats.MemorySize)
}

func TestKeyIsDeterministicAcrossMapOrdering(t *testing.T) {
	a := Key("query", map[string]any{"a": 1, "b": 2})
	b := Key("query", map[string]any{"b": 2, "a": 1})
	require.Equal(t, a, b)
}

func corrupt(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("{not valid json"), 0644))
}
