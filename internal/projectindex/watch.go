package projectindex

import (
	"devgateway/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Invalidator is the subset of internal/cache.Cache the watcher needs —
// kept as an interface so this package doesn't import cache directly.
type Invalidator interface {
	Invalidate(entryType, matchPath, matchProject string) int
}

// Watcher observes a project memory directory and, on any write, create
// or remove event in it, invalidates the cache entries whose params carry
// that project id (smart_search results). Entries keyed without a project,
// such as smart_read's summary and function reads, are not invalidated and
// expire by TTL. This does not replace the reader's own re-read-on-access
// tolerance (§5) — it is an additional freshness improvement layered on
// top, since nothing else in the router consumes fsnotify's filesystem
// change events.
type Watcher struct {
	fsw        *fsnotify.Watcher
	cache      Invalidator
	projectID  string
	done       chan struct{}
}

// NewWatcher starts watching projectMemoryDir for the given project id,
// invalidating entries in cache tagged with that project whenever a file in
// that directory is written, created or removed.
func NewWatcher(projectMemoryDir, projectID string, cache Invalidator) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(projectMemoryDir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{fsw: fsw, cache: cache, projectID: projectID, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) != 0 {
				n := w.cache.Invalidate("", "", w.projectID)
				logging.CacheDebug("project %s index changed (%s), invalidated %d entries", w.projectID, event.Name, n)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Cache("project index watcher error for %s: %v", w.projectID, err)
		case <-w.done:
			return
		}
	}
}

// Close stops watching and releases the underlying inotify/kqueue handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
