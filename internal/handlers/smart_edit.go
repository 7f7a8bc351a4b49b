package handlers

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"devgateway/internal/config"
	"devgateway/internal/fsutil"
	"devgateway/internal/logging"
	"devgateway/internal/security"
	"devgateway/internal/tier"
)

// SmartEdit implements smart_edit(path, content, project?) (§4.6): the
// gateway's single validated write primitive. The result is never cached
// and never served from cache; every cache entry whose params "path" is the
// written path (or lies beneath it) is invalidated — entries keyed without
// a path, such as smart_search and smart_exec results, are left to expire —
// and a reindex sentinel is touched so the external watcher picks the file
// back up (§6.2).
func (s *ServerContext) SmartEdit(_ context.Context, args map[string]any) (any, error) {
	start := time.Now()

	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	content, err := stringArg(args, "content")
	if err != nil {
		return nil, err
	}

	resolved, err := s.Security.ValidateFilePath(path, security.OpWrite)
	if err != nil {
		return nil, err
	}

	if err := fsutil.Write(resolved, content, true); err != nil {
		return nil, fmt.Errorf("write %s: %w", resolved, err)
	}

	// Invalidation failures are non-fatal and never undo the write (§7).
	s.Cache.Invalidate("", resolved, "")

	proj, hasProject, _ := s.resolveProject(optionalString(args, "project"))
	if !hasProject {
		if reg, err := config.LoadRegistry(s.Config.RegistryPath()); err == nil {
			proj, hasProject = reg.FindByPath(filepath.Dir(resolved))
		}
	}
	if hasProject {
		if err := s.projectIndexReader(proj).TriggerReindex(); err != nil {
			logging.Handlers("non-fatal reindex-trigger failure for %s: %v", proj.ID, err)
		}
	}

	s.recordMetric("smart_edit", tier.T4, 0, 0, start, false)
	return fmt.Sprintf("wrote %d bytes to %s", len(content), resolved), nil
}
