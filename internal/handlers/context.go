// Package handlers implements the gateway's per-tool business logic (§4.6,
// C6): smart_read, smart_search, smart_exec, smart_edit, the memory_*
// family, project_query, gateway_metrics, and gateway_ask. Each handler
// consults the Security Validator, Classifier, TTL Cache, Subprocess
// Executor, Metrics Recorder, and Router, plus the external project-index
// reader and local-model HTTP client, to produce a result — one file per
// tool family, registered into a shared Registry.
package handlers

import (
	"sync"
	"time"

	"devgateway/internal/cache"
	"devgateway/internal/config"
	"devgateway/internal/httpmodel"
	"devgateway/internal/logging"
	"devgateway/internal/metrics"
	"devgateway/internal/router"
	"devgateway/internal/security"
	"devgateway/internal/tier"
)

// ServerContext is the explicit, non-global state every handler closes
// over (§9 "singleton state → explicit context"): no package-level
// globals, so multiple gateways could in principle run in one process
// (e.g. under test) without interfering.
type ServerContext struct {
	Config   *config.Config
	Cache    *cache.Cache
	Metrics  *metrics.Recorder
	Security *security.Validator
	Router   *router.Router
	Model    *httpmodel.Client

	mu         sync.RWMutex
	workingDir string
}

// NewServerContext wires the shared subsystems into one context.
func NewServerContext(cfg *config.Config, c *cache.Cache, m *metrics.Recorder, sec *security.Validator, rt *router.Router, model *httpmodel.Client) *ServerContext {
	return &ServerContext{Config: cfg, Cache: c, Metrics: m, Security: sec, Router: rt, Model: model}
}

// SetWorkingDir records the client's working directory, as optionally
// supplied on `initialize` (§4.8), for project auto-detection when a
// handler's `project` argument is omitted.
func (s *ServerContext) SetWorkingDir(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workingDir = dir
}

// WorkingDir returns the last-recorded client working directory, or "".
func (s *ServerContext) WorkingDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workingDir
}

// recordMetric records one completed request. Metrics persistence failures
// are non-fatal (§7 "Metrics persistence failures are non-fatal") — a
// handler's result is never held hostage by a metrics write error.
func (s *ServerContext) recordMetric(tool string, t tier.Tier, tokensUsed, tokensSaved int, start time.Time, cacheHit bool) {
	rec := metrics.Record{
		Tool:        tool,
		Route:       t.String(),
		TokensUsed:  tokensUsed,
		TokensSaved: tokensSaved,
		LatencyMs:   time.Since(start).Milliseconds(),
		CacheHit:    cacheHit,
		Timestamp:   time.Now(),
	}
	if err := s.Metrics.Record(rec); err != nil {
		logging.MetricsWarn("non-fatal metrics record failure for %s: %v", tool, err)
	}
}
