package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"devgateway/internal/exec"
	"devgateway/internal/fsutil"
	"devgateway/internal/metrics"
	"devgateway/internal/router"
	"devgateway/internal/security"
	"devgateway/internal/tier"
)

const defaultSearchLimit = 20
const maxSearchLimit = 200
const searchHelperTimeout = 30 * time.Second

var findFilePattern = regexp.MustCompile(`(?i)^find (the )?file (?:named |called )?(.+?)[\s?]*$`)

// SmartSearch implements smart_search(query, project?, limit?) (§4.6): it
// auto-detects the project, then picks between two collaborators. A
// resolved project is assumed to carry a memory index and delegates to
// the hybrid-search helper (§6.3, an external collaborator out of scope
// per §1) via the executor. With no project resolved there is no index to
// query, so smart_search walks the filesystem directly with fsutil's
// glob/grep instead of failing outright. Either way the response is
// cached under the `query` TTL; the whole payload is recorded as
// tokensSaved, on the theory that the alternative would be several
// individual file reads. The router's tier decision is still computed for
// metrics attribution even though it doesn't gate which collaborator runs.
func (s *ServerContext) SmartSearch(ctx context.Context, args map[string]any) (any, error) {
	start := time.Now()

	query, err := stringArg(args, "query")
	if err != nil {
		return nil, err
	}
	if err := security.ValidateQuery(query); err != nil {
		return nil, err
	}
	limit := security.ClampLimit(optionalInt(args, "limit", defaultSearchLimit), maxSearchLimit)

	proj, hasProject, _ := s.resolveProject(optionalString(args, "project"))
	cacheParams := map[string]any{"project": proj.ID, "query": query}

	if entry, _, ok := s.Cache.Get("query", cacheParams); ok {
		var payload string
		if err := json.Unmarshal(entry.Value, &payload); err == nil {
			s.recordMetric("smart_search", tier.T0, 0, metrics.EstimateTokens(len(payload)), start, true)
			return payload, nil
		}
	}

	// Cache already checked above; pass an empty cacheType so Decide
	// doesn't re-query it and double-count the miss.
	decision := s.Router.Decide(ctx, router.Request{
		Tool:            "smart_search",
		Query:           query,
		ProjectHasIndex: hasProject,
	}, "", nil)

	var payload string
	if hasProject {
		result, err := exec.Run(ctx, exec.Request{
			Path:       s.Config.HelperPath("search_hybrid"),
			Args:       []string{proj.Path, query, strconv.Itoa(limit)},
			WorkingDir: s.Config.Execution.WorkingDirectory,
			Timeout:    searchHelperTimeout,
		})
		if err != nil {
			return nil, err
		}
		payload = result.Stdout
	} else {
		payload, err = directSearch(s.Config.Execution.WorkingDirectory, query, limit)
		if err != nil {
			return nil, err
		}
	}

	if err := s.Cache.Set("query", cacheParams, payload, 0); err != nil {
		_ = err // cache persistence failures are non-fatal (§7)
	}
	s.recordMetric("smart_search", decision.Tier, 0, metrics.EstimateTokens(len(payload)), start, false)
	return payload, nil
}

// directSearch walks basePath without a memory index: a "find the file
// X" query resolves through fsutil.Glob against the filename, everything
// else is a content search through fsutil.Grep.
func directSearch(basePath, query string, limit int) (string, error) {
	if basePath == "" {
		basePath = "."
	}

	if m := findFilePattern.FindStringSubmatch(query); m != nil {
		matches, err := fsutil.Glob(basePath, "**/*"+strings.TrimSpace(m[2])+"*", limit)
		if err != nil {
			return "", err
		}
		if len(matches) == 0 {
			return "no files matched", nil
		}
		return strings.Join(matches, "\n"), nil
	}

	matches, err := fsutil.Grep(basePath, regexp.QuoteMeta(query), "", 1, limit, true)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "no matches found", nil
	}
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("%s:%d: %s", m.File, m.LineNumber, m.Line))
	}
	return strings.Join(lines, "\n"), nil
}
