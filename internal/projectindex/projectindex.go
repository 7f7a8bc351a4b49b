// Package projectindex provides reader-only access to the project index
// files an external watcher maintains (§4.6, §5, §6.2): summaries.json,
// functions.json, index.json, graph.json, roadmap.json. This process never
// writes these files — it tolerates concurrent updates by re-reading on
// every request rather than locking, grounded on the dirty-marker/
// stale-flag reconciliation idiom seen in the pack's cache-service example
// (watcher populates, reader tolerates staleness).
package projectindex

import (
	"encoding/json"
	"os"
	"path/filepath"

	"devgateway/internal/gwerr"
)

// Reader reads a single project's index files from its memory directory.
type Reader struct {
	dir string
}

// New returns a Reader rooted at a project's memory directory
// (MEMORY_ROOT/projects/<id>).
func New(projectMemoryDir string) *Reader {
	return &Reader{dir: projectMemoryDir}
}

// Exists reports whether this project's memory directory exists. It does
// not check whether any index file is present inside it.
func (r *Reader) Exists() bool {
	_, err := os.Stat(r.dir)
	return err == nil
}

// FileSummary is one entry of summaries.json.
type FileSummary struct {
	Path    string `json:"path"`
	Summary string `json:"summary"`
}

// Summaries returns the project's per-file summaries, keyed by path.
func (r *Reader) Summaries() (map[string]FileSummary, error) {
	var out map[string]FileSummary
	if err := r.readJSON("summaries.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FunctionEntry is one entry of functions.json.
type FunctionEntry struct {
	Name string `json:"name"`
	File string `json:"file"`
	Line int    `json:"line"`
}

// Functions returns the project's indexed function list.
func (r *Reader) Functions() ([]FunctionEntry, error) {
	var out []FunctionEntry
	if err := r.readJSON("functions.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FileList returns the project's indexed file list (index.json).
func (r *Reader) FileList() ([]string, error) {
	var out []string
	if err := r.readJSON("index.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DepGraph returns the project's dependency graph (graph.json), as a raw
// adjacency map since its shape is watcher-defined and opaque to this
// reader.
func (r *Reader) DepGraph() (map[string][]string, error) {
	var out map[string][]string
	if err := r.readJSON("graph.json", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Roadmap returns the project's roadmap document as raw JSON, since its
// shape is user/tool-authored and opaque to this reader.
func (r *Reader) Roadmap() (json.RawMessage, error) {
	data, err := os.ReadFile(filepath.Join(r.dir, "roadmap.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, gwerr.New(gwerr.NotFound, "roadmap.json not found")
		}
		return nil, gwerr.Wrap(gwerr.ParseError, "read roadmap.json", err)
	}
	return json.RawMessage(data), nil
}

// TriggerReindex touches the .reindex-trigger sentinel so the external
// watcher re-indexes this project (§4.6 smart_edit, §6.2).
func (r *Reader) TriggerReindex() error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return gwerr.Wrap(gwerr.SubprocessFailed, "create project memory dir", err)
	}
	path := filepath.Join(r.dir, ".reindex-trigger")
	return os.WriteFile(path, []byte{}, 0o644)
}

func (r *Reader) readJSON(name string, out any) error {
	data, err := os.ReadFile(filepath.Join(r.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return gwerr.New(gwerr.NotFound, name+" not found")
		}
		return gwerr.Wrap(gwerr.ParseError, "read "+name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return gwerr.Wrap(gwerr.ParseError, "parse "+name, err)
	}
	return nil
}
