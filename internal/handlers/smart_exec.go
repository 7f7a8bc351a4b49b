package handlers

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"devgateway/internal/cache"
	"devgateway/internal/exec"
	"devgateway/internal/logging"
	"devgateway/internal/metrics"
	"devgateway/internal/tier"
)

const shellTimeout = 30 * time.Second

// SmartExec implements smart_exec(command, cwd?, skipCache?) (§4.6). This
// is the gateway's sole shell escape hatch: commands run through
// `/bin/sh -c` after ValidateCommand rather than as an explicit argv,
// since an arbitrary user-supplied shell command cannot be decomposed into
// a fixed argv the way the index/model helpers can.
func (s *ServerContext) SmartExec(ctx context.Context, args map[string]any) (any, error) {
	start := time.Now()

	command, err := stringArg(args, "command")
	if err != nil {
		return nil, err
	}
	cwd := optionalString(args, "cwd")
	skipCache := optionalBool(args, "skipCache")

	check, err := s.Security.ValidateCommand(command)
	if err != nil {
		return nil, err
	}
	for _, w := range check.Warnings {
		logging.SecurityWarn("smart_exec: sensitive command pattern matched: %s", w)
	}

	entryType := classifyCommandType(command)
	cacheParams := map[string]any{"command": command, "cwd": cwd}

	if !skipCache {
		if entry, _, ok := s.Cache.Get(entryType, cacheParams); ok {
			var payload string
			if err := json.Unmarshal(entry.Value, &payload); err == nil {
				s.recordMetric("smart_exec", tier.T0, 0, 0, start, true)
				return payload, nil
			}
		}
	}

	result, err := exec.Run(ctx, exec.Request{
		Path:       "/bin/sh",
		Args:       []string{"-c", command},
		WorkingDir: cwd,
		Timeout:    shellTimeout,
	})
	if err != nil {
		return nil, err
	}

	if !skipCache {
		ttl := cache.DeriveTTL(entryType, command)
		if err := s.Cache.Set(entryType, cacheParams, result.Stdout, ttl); err != nil {
			_ = err // non-fatal (§7)
		}
	}
	s.recordMetric("smart_exec", tier.T3, 0, metrics.EstimateTokens(len(result.Stdout)), start, false)
	return result.Stdout, nil
}

// classifyCommandType maps a shell command to its TTL-table entry type
// (§3 "the command itself may override the type's TTL").
func classifyCommandType(command string) string {
	switch {
	case strings.Contains(command, "git status"):
		return "gitStatus"
	case strings.Contains(command, "npm list") || strings.Contains(command, "npm ls"):
		return "npmList"
	case strings.HasPrefix(strings.TrimSpace(command), "ls") || strings.Contains(command, "find "):
		return "fileList"
	default:
		return "other"
	}
}
