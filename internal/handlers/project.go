package handlers

import (
	"devgateway/internal/config"
	"devgateway/internal/gwerr"
	"devgateway/internal/projectindex"
	"devgateway/internal/security"
)

// resolveProject finds the project named by explicitID, or, when empty,
// auto-detects one by matching the recorded client working directory
// against the registry (§4.6 smart_read, §8.2). The registry is reloaded
// fresh on every call so newly registered projects are picked up
// immediately (§3).
func (s *ServerContext) resolveProject(explicitID string) (config.Project, bool, error) {
	reg, err := config.LoadRegistry(s.Config.RegistryPath())
	if err != nil {
		return config.Project{}, false, gwerr.Wrap(gwerr.NotFound, "load project registry", err)
	}

	if explicitID != "" {
		if err := security.ValidateIdentifier(explicitID); err != nil {
			return config.Project{}, false, err
		}
		p, ok := reg.Find(explicitID)
		return p, ok, nil
	}

	if dir := s.WorkingDir(); dir != "" {
		p, ok := reg.FindByPath(dir)
		return p, ok, nil
	}

	return config.Project{}, false, nil
}

// projectIndexReader returns an index Reader rooted at the project's
// memory directory, preferring an explicit MemoryPath override.
func (s *ServerContext) projectIndexReader(p config.Project) *projectindex.Reader {
	dir := p.MemoryPath
	if dir == "" {
		dir = s.Config.ProjectMemoryPath(p.ID)
	}
	return projectindex.New(dir)
}
