// Package security implements the gateway's path and command validation
// layer (§4.1). It neutralizes traversal, rejects secret-location reads,
// confines writes away from system directories, and flags (without
// blocking) suspicious shell commands before they reach internal/exec.
package security

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"devgateway/internal/config"
	"devgateway/internal/gwerr"
	"devgateway/internal/pathutil"
)

// Op distinguishes read from write path validation (§4.1).
type Op string

const (
	OpRead  Op = "read"
	OpWrite Op = "write"
)

// deniedPathSubstrings are obvious secret locations rejected regardless of
// allowed base paths.
var deniedPathSubstrings = []string{
	"/etc/passwd",
	"/etc/shadow",
	"/.ssh/",
	"/id_rsa",
	"/.env",
}

// systemDirs are rejected as write targets even when inside an allowed
// base path (§4.1).
var systemDirs = []string{"/bin", "/sbin", "/usr", "/System", "/Library"}

// Validator computes allowed base paths from the current configuration and
// project registry on every call — it is never cached, so newly registered
// projects are picked up immediately (§3, §4.1).
type Validator struct {
	cfg *config.Config
}

// New returns a Validator bound to cfg. cfg.MemoryRoot and the user's home
// directory are always allowed base paths, in addition to every registered
// project's path.
func New(cfg *config.Config) *Validator {
	return &Validator{cfg: cfg}
}

// allowedBasePaths returns {HOME, /tmp, MEMORY_ROOT} ∪ {registered project
// paths}, recomputed fresh from config.json on every call (§3 "the active
// set of allowed base paths").
func (v *Validator) allowedBasePaths() []string {
	bases := []string{"/tmp", v.cfg.MemoryRoot}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		bases = append(bases, home)
	}

	reg, err := config.LoadRegistry(v.cfg.RegistryPath())
	if err == nil {
		for _, p := range reg.Projects {
			bases = append(bases, p.Path)
		}
	}
	return bases
}

// ValidateFilePath resolves path to an absolute, normalized form and checks
// it against the denylist, the allowed-base-path set, and (for writes) the
// system-directory blocklist. Returns the resolved absolute path on
// success.
func (v *Validator) ValidateFilePath(path string, op Op) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", gwerr.New(gwerr.InvalidInput, "path must not be empty")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", gwerr.Wrap(gwerr.InvalidInput, "cannot resolve path", err)
	}
	resolved := filepath.Clean(abs)

	for _, denied := range deniedPathSubstrings {
		if strings.Contains(resolved, denied) {
			return "", gwerr.New(gwerr.PathDenied, "path targets a denied location: "+resolved)
		}
	}

	allowed := false
	for _, base := range v.allowedBasePaths() {
		if base == "" {
			continue
		}
		if pathutil.HasPrefix(resolved, filepath.Clean(base)) {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", gwerr.New(gwerr.PathDenied, "path is outside every allowed base path: "+resolved)
	}

	if op == OpWrite {
		for _, sysDir := range systemDirs {
			if pathutil.HasPrefix(resolved, sysDir) {
				return "", gwerr.New(gwerr.PathDenied, "writes to system directories are denied: "+resolved)
			}
		}
	}

	return resolved, nil
}

// deniedCommandPatterns are hard rejections — no subprocess is spawned if
// any matches (§4.1).
var deniedCommandPatterns = []*regexp.Regexp{
	regexp.MustCompile(`rm\s+-rf\s+/(\s|$)`),
	regexp.MustCompile(`\b(mkfs|fdisk|parted)\b`),
	regexp.MustCompile(`\bdd\b.*\bof=/dev/`),
	regexp.MustCompile(`(curl|wget)\b.*\|\s*(sh|bash)\b`),
	regexp.MustCompile(`>\s*/dev/(sd|nvme|hd)[a-z0-9]*`),
	regexp.MustCompile(`chmod\s+777\s+/(\s|$)`),
	regexp.MustCompile(`sudo\s+rm\b`),
	regexp.MustCompile(`:\(\)\s*\{\s*:\s*\|\s*:\s*&\s*\}\s*;`), // fork bomb
}

// sensitiveCommandPatterns trigger a non-blocking warning flag only.
var sensitiveCommandPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bsudo\b`),
	regexp.MustCompile(`\bsu\s+-`),
	regexp.MustCompile(`>\s*/etc/`),
	regexp.MustCompile(`\beval\b`),
	regexp.MustCompile(`\bexec\b`),
}

// CommandCheck is the outcome of ValidateCommand.
type CommandCheck struct {
	Warnings []string
}

// ValidateCommand rejects commands matching a denylisted destructive
// pattern and returns non-blocking warning flags for sensitive-but-allowed
// patterns (§4.1).
func (v *Validator) ValidateCommand(cmd string) (CommandCheck, error) {
	if strings.TrimSpace(cmd) == "" {
		return CommandCheck{}, gwerr.New(gwerr.InvalidInput, "command must not be empty")
	}

	for _, re := range deniedCommandPatterns {
		if re.MatchString(cmd) {
			return CommandCheck{}, gwerr.New(gwerr.CommandBlocked, "command matches a denied pattern")
		}
	}

	var check CommandCheck
	for _, re := range sensitiveCommandPatterns {
		if re.MatchString(cmd) {
			check.Warnings = append(check.Warnings, re.String())
		}
	}
	return check, nil
}

// ValidateIdentifier enforces the project-id grammar [A-Za-z0-9_-]{1,100}
// (§4.1, §3).
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,100}$`)

func ValidateIdentifier(id string) error {
	if !identifierPattern.MatchString(id) {
		return gwerr.New(gwerr.InvalidInput, "identifier must match [A-Za-z0-9_-]{1,100}: "+id)
	}
	return nil
}

// maxQueryLength is the hard cap on query string length (§4.1).
const maxQueryLength = 10_000

// ValidateQuery enforces non-empty, length-bounded query text.
func ValidateQuery(q string) error {
	if q == "" {
		return gwerr.New(gwerr.InvalidInput, "query must not be empty")
	}
	if len(q) > maxQueryLength {
		return gwerr.New(gwerr.InvalidInput, "query exceeds maximum length")
	}
	return nil
}

// ClampLimit bounds n to [1, max] (§4.1's "numeric limits are clamped").
func ClampLimit(n, max int) int {
	if n < 1 {
		return 1
	}
	if n > max {
		return max
	}
	return n
}
