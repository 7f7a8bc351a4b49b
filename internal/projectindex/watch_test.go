package projectindex

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingInvalidator struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingInvalidator) Invalidate(entryType, matchPath, matchProject string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, matchProject)
	return 1
}

func (r *recordingInvalidator) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestWatcherInvalidatesOnFileWrite(t *testing.T) {
	dir := t.TempDir()
	inv := &recordingInvalidator{}

	w, err := NewWatcher(dir, "proj1", inv)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "summaries.json"), []byte(`{}`), 0o644))

	require.Eventually(t, func() bool {
		return inv.callCount() > 0
	}, time.Second, 10*time.Millisecond, "expected Invalidate to be called after a watched file write")

	inv.mu.Lock()
	defer inv.mu.Unlock()
	require.Equal(t, "proj1", inv.calls[0])
}

func TestWatcherCloseStopsTheLoop(t *testing.T) {
	dir := t.TempDir()
	inv := &recordingInvalidator{}

	w, err := NewWatcher(dir, "proj1", inv)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "summaries.json"), []byte(`{}`), 0o644))
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 0, inv.callCount())
}

func TestNewWatcherErrorsOnMissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "absent"), "proj1", &recordingInvalidator{})
	require.Error(t, err)
}
