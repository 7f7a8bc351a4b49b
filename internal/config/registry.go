package config

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"devgateway/internal/pathutil"
)

var projectIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,100}$`)

// Project is a single entry in the project registry (§3, §6.5).
type Project struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	DisplayName string `json:"displayName"`
	MemoryPath  string `json:"memoryPath,omitempty"`
}

// Valid reports whether the project's id satisfies the identifier grammar.
func (p Project) Valid() bool {
	return projectIDPattern.MatchString(p.ID)
}

// registryFile mirrors the on-disk shape of config.json's projects array.
type registryFile struct {
	Projects []Project `json:"projects"`
}

// Registry is the in-memory view of the project registry for a single
// load. Callers that need validation state must reload via LoadRegistry on
// every request — per §3, the registry is "never cached by the security
// layer (so new projects are picked up immediately)".
type Registry struct {
	Projects []Project
}

// LoadRegistry reads and parses the registry file at path. A missing file
// yields an empty registry, not an error — a fresh MEMORY_ROOT has none yet.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Registry{}, nil
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var rf registryFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &Registry{Projects: rf.Projects}, nil
}

// Find returns the project with the given id, or false if absent.
func (r *Registry) Find(id string) (Project, bool) {
	for _, p := range r.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// FindByPath returns the project whose path is an exact prefix of dir,
// preferring the longest match — used for working-directory auto-detection
// (§4.6 smart_read, §8.2).
func (r *Registry) FindByPath(dir string) (Project, bool) {
	var best Project
	found := false
	for _, p := range r.Projects {
		if pathutil.HasPrefix(dir, p.Path) {
			if !found || len(p.Path) > len(best.Path) {
				best = p
				found = true
			}
		}
	}
	return best, found
}
