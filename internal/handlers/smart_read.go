package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"devgateway/internal/config"
	"devgateway/internal/fsutil"
	"devgateway/internal/gwerr"
	"devgateway/internal/metrics"
	"devgateway/internal/security"
	"devgateway/internal/tier"
)

var validDetails = map[string]bool{"summary": true, "functions": true, "full": true}

// SmartRead implements smart_read(path, detail?, project?) (§4.6). It
// consults the cache first, then — for detail != full when a project
// index exists — synthesizes the result from the watcher-produced index
// rather than reading the file, falling back to a direct filesystem read
// otherwise.
func (s *ServerContext) SmartRead(_ context.Context, args map[string]any) (any, error) {
	start := time.Now()

	path, err := stringArg(args, "path")
	if err != nil {
		return nil, err
	}
	detail := optionalString(args, "detail")
	if detail == "" {
		detail = "full"
	}
	if !validDetails[detail] {
		return nil, gwerr.New(gwerr.InvalidInput, "detail must be one of summary, functions, full")
	}

	resolved, err := s.Security.ValidateFilePath(path, security.OpRead)
	if err != nil {
		return nil, err
	}

	cacheParams := map[string]any{"path": resolved, "detail": detail}
	if entry, _, ok := s.Cache.Get("fileRead", cacheParams); ok {
		var payload string
		if err := json.Unmarshal(entry.Value, &payload); err == nil {
			s.recordMetric("smart_read", tier.T0, 0, 0, start, true)
			return payload, nil
		}
	}

	proj, hasProject, _ := s.resolveProject(optionalString(args, "project"))

	payload, servedTier, tokensSaved, err := s.readViaIndexOrFile(resolved, detail, proj, hasProject)
	if err != nil {
		return nil, err
	}

	if err := s.Cache.Set("fileRead", cacheParams, payload, 0); err != nil {
		// Cache persistence failures are non-fatal (§7).
		_ = err
	}
	s.recordMetric("smart_read", servedTier, metrics.EstimateTokens(len(payload)), tokensSaved, start, false)
	return payload, nil
}

// readViaIndexOrFile tries the watcher's index first (for detail summary/
// functions, when the project has one), then falls back to a raw file
// read. Tokens-saved is estimated as max(0, fullSize-returnedSize) only
// when the index path actually served the request (§4.6).
func (s *ServerContext) readViaIndexOrFile(resolved, detail string, proj config.Project, hasProject bool) (string, tier.Tier, int, error) {
	if detail != "full" && hasProject {
		reader := s.projectIndexReader(proj)
		if reader.Exists() {
			switch detail {
			case "summary":
				if summaries, err := reader.Summaries(); err == nil {
					if entry, ok := summaries[resolved]; ok {
						payload := fmt.Sprintf("File: %s\n%s", resolved, entry.Summary)
						return payload, tier.T1, tokensSavedAgainstFile(resolved, payload), nil
					}
				}
			case "functions":
				if fns, err := reader.Functions(); err == nil {
					var b strings.Builder
					fmt.Fprintf(&b, "File: %s\n", resolved)
					matched := false
					for _, f := range fns {
						if f.File == resolved {
							matched = true
							fmt.Fprintf(&b, "%d: %s\n", f.Line, f.Name)
						}
					}
					if matched {
						payload := b.String()
						return payload, tier.T1, tokensSavedAgainstFile(resolved, payload), nil
					}
				}
			}
		}
	}

	res, err := fsutil.Read(resolved, 0, 0)
	if err != nil {
		return "", tier.T3, 0, gwerr.Wrap(gwerr.NotFound, "read "+resolved, err)
	}
	return fmt.Sprintf("File: %s\n%s", resolved, res.Content), tier.T3, 0, nil
}

// tokensSavedAgainstFile estimates the tokens saved by serving payload
// from the index instead of the full file (§4.6 "max(0, fullSize -
// returnedSize)"). A read failure means no baseline is available; treat
// it as zero savings rather than failing the whole request.
func tokensSavedAgainstFile(resolved, payload string) int {
	full, err := fsutil.Read(resolved, 0, 0)
	if err != nil {
		return 0
	}
	diff := len(full.Content) - len(payload)
	if diff <= 0 {
		return 0
	}
	return metrics.EstimateTokens(diff)
}
