package handlers

import (
	"context"
	"time"

	"devgateway/internal/exec"
	"devgateway/internal/gwerr"
	"devgateway/internal/metrics"
	"devgateway/internal/security"
	"devgateway/internal/tier"
)

// memoryHelperTimeout bounds every memory_* helper invocation (§4.4 index
// tool default).
const memoryHelperTimeout = 30 * time.Second

// memorySpec describes one member of the memory_* family (§4.6): a helper
// executable name, whether it accepts a cross-project search (no specific
// project), and whether it requires a query argument in addition to project.
type memorySpec struct {
	helper       string
	requireQuery bool
	crossProject bool
}

var memorySpecs = map[string]memorySpec{
	"query":      {helper: "memory_query", requireQuery: true},
	"search":     {helper: "memory_search", requireQuery: true},
	"similar":    {helper: "memory_similar", requireQuery: true},
	"functions":  {helper: "memory_functions", requireQuery: false},
	"health":     {helper: "memory_health", requireQuery: false},
	"wireframe":  {helper: "memory_wireframe", requireQuery: false},
	"sessions":   {helper: "memory_sessions", requireQuery: false},
	"search_all": {helper: "memory_search_all", requireQuery: true, crossProject: true},
	"roadmap":    {helper: "memory_roadmap", requireQuery: false},
}

// MemoryHandler returns the ExecuteFunc for one member of the memory_*
// family — all validate a project id (unless cross-project), then invoke
// the corresponding helper script via the executor with explicit
// arguments, forwarding the result verbatim (§4.6).
func (s *ServerContext) MemoryHandler(name string) func(context.Context, map[string]any) (any, error) {
	spec, ok := memorySpecs[name]
	if !ok {
		panic("unknown memory_* handler: " + name)
	}

	return func(ctx context.Context, args map[string]any) (any, error) {
		start := time.Now()

		query := optionalString(args, "query")
		if spec.requireQuery {
			if query == "" {
				return nil, gwerr.New(gwerr.InvalidInput, "query is required")
			}
			if err := security.ValidateQuery(query); err != nil {
				return nil, err
			}
		}

		var projPath string
		if !spec.crossProject {
			projectID, err := stringArg(args, "project")
			if err != nil {
				return nil, err
			}
			proj, ok, err := s.resolveProject(projectID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, gwerr.New(gwerr.NotFound, "unknown project: "+projectID)
			}
			projPath = proj.Path
		}

		argv := []string{}
		if !spec.crossProject {
			argv = append(argv, projPath)
		}
		if query != "" {
			argv = append(argv, query)
		}

		result, err := exec.Run(ctx, exec.Request{
			Path:       s.Config.HelperPath(spec.helper),
			Args:       argv,
			WorkingDir: s.Config.Execution.WorkingDirectory,
			Timeout:    memoryHelperTimeout,
		})
		if err != nil {
			return nil, err
		}

		toolName := "memory_" + name
		s.recordMetric(toolName, tier.T1, 0, metrics.EstimateTokens(len(result.Stdout)), start, false)
		return result.Stdout, nil
	}
}
