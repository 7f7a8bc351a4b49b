// Package pathutil provides the separator-aware path-prefix test shared by
// the project registry, the security validator, and the TTL cache's path
// invalidation — all three need the same "is A equal to B or beneath it"
// semantics (§4.1, §4.3, §8).
package pathutil

import (
	"os"
	"path/filepath"
)

// HasPrefix reports whether resolved path p equals base, or is a
// descendant of base (base followed by a path separator). Naive
// strings.HasPrefix would wrongly match "/home/userA" against base
// "/home/user" (§8 boundary case); this function requires the separator.
func HasPrefix(p, base string) bool {
	p = filepath.Clean(p)
	base = filepath.Clean(base)
	if p == base {
		return true
	}
	sep := string(os.PathSeparator)
	if base == sep {
		return len(p) > 0 && p[0:1] == sep
	}
	return len(p) > len(base) && p[:len(base)] == base && p[len(base):len(base)+1] == sep
}
