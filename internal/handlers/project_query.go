package handlers

import (
	"context"
	"fmt"
	"time"

	"devgateway/internal/exec"
	"devgateway/internal/gwerr"
	"devgateway/internal/metrics"
	"devgateway/internal/security"
	"devgateway/internal/tier"
)

var validProjectQueryTypes = map[string]bool{
	"memory": true, "functions": true, "similar": true, "decisions": true, "patterns": true,
}

// ProjectQuery implements project_query(project, query, type) (§4.6): the
// cross-project variant of the memory_* family. When the working project
// (auto-detected from the recorded client directory) differs from the
// queried target, the response is prefixed with a `source → target`
// context marker.
func (s *ServerContext) ProjectQuery(ctx context.Context, args map[string]any) (any, error) {
	start := time.Now()

	projectID, err := stringArg(args, "project")
	if err != nil {
		return nil, err
	}
	query, err := stringArg(args, "query")
	if err != nil {
		return nil, err
	}
	if err := security.ValidateQuery(query); err != nil {
		return nil, err
	}
	queryType := optionalString(args, "type")
	if queryType == "" {
		queryType = "memory"
	}
	if !validProjectQueryTypes[queryType] {
		return nil, gwerr.New(gwerr.InvalidInput, "type must be one of memory, functions, similar, decisions, patterns")
	}

	target, ok, err := s.resolveProject(projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, gwerr.New(gwerr.NotFound, "unknown project: "+projectID)
	}

	result, err := exec.Run(ctx, exec.Request{
		Path:       s.Config.HelperPath("project_query"),
		Args:       []string{target.Path, query, queryType},
		WorkingDir: s.Config.Execution.WorkingDirectory,
		Timeout:    memoryHelperTimeout,
	})
	if err != nil {
		return nil, err
	}

	response := result.Stdout
	if source, hasSource, _ := s.resolveProject(""); hasSource && source.ID != target.ID {
		response = fmt.Sprintf("%s → %s\n%s", source.ID, target.ID, response)
	}

	s.recordMetric("project_query", tier.T1, 0, metrics.EstimateTokens(len(response)), start, false)
	return response, nil
}
