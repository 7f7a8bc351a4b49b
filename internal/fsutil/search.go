package fsutil

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Glob finds files under basePath matching a shell-style pattern,
// supporting a single "**" segment for recursive matching. Backs
// smart_search's direct-filesystem fallback when no project index is
// available (§4.6).
func Glob(basePath, pattern string, maxResults int) ([]string, error) {
	if basePath == "" {
		basePath = "."
	}
	if maxResults <= 0 {
		maxResults = 100
	}

	var matches []string

	if strings.Contains(pattern, "**") {
		parts := strings.SplitN(pattern, "**", 2)
		prefix := strings.TrimSuffix(parts[0], "/")
		suffix := ""
		if len(parts) > 1 {
			suffix = strings.TrimPrefix(parts[1], "/")
		}

		searchPath := basePath
		if prefix != "" {
			searchPath = filepath.Join(basePath, prefix)
		}

		err := filepath.Walk(searchPath, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if len(matches) >= maxResults {
				return filepath.SkipAll
			}
			if info.IsDir() {
				return nil
			}
			if suffix == "" {
				rel, _ := filepath.Rel(basePath, p)
				matches = append(matches, rel)
				return nil
			}
			if ok, _ := filepath.Match(suffix, info.Name()); ok {
				rel, _ := filepath.Rel(basePath, p)
				matches = append(matches, rel)
				return nil
			}
			rel, _ := filepath.Rel(searchPath, p)
			if ok, _ := filepath.Match(suffix, rel); ok {
				full, _ := filepath.Rel(basePath, p)
				matches = append(matches, full)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", searchPath, err)
		}
		return matches, nil
	}

	globMatches, err := filepath.Glob(filepath.Join(basePath, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	for i, m := range globMatches {
		if i >= maxResults {
			break
		}
		rel, _ := filepath.Rel(basePath, m)
		matches = append(matches, rel)
	}
	return matches, nil
}

// GrepMatch is a single content match from Grep.
type GrepMatch struct {
	File       string
	LineNumber int
	Line       string
	Context    []string
}

// Grep searches file contents under path for a regular expression,
// optionally restricted to files matching filePattern. Backs smart_search's
// content-lookup branch (§4.6).
func Grep(path, pattern, filePattern string, contextLines, maxResults int, ignoreCase bool) ([]GrepMatch, error) {
	if path == "" {
		path = "."
	}
	if maxResults <= 0 {
		maxResults = 50
	}
	if ignoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	var files []string
	if info.IsDir() {
		err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				name := info.Name()
				if strings.HasPrefix(name, ".") || name == "node_modules" || name == "vendor" {
					return filepath.SkipDir
				}
				return nil
			}
			if filePattern != "" {
				if ok, _ := filepath.Match(filePattern, info.Name()); !ok {
					return nil
				}
			}
			files = append(files, p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	} else {
		files = []string{path}
	}

	var matches []GrepMatch
	for _, f := range files {
		if len(matches) >= maxResults {
			break
		}
		fileMatches, err := grepFile(f, re, contextLines, maxResults-len(matches))
		if err != nil {
			continue
		}
		matches = append(matches, fileMatches...)
	}
	return matches, nil
}

func grepFile(path string, re *regexp.Regexp, contextLines, maxMatches int) ([]GrepMatch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var matches []GrepMatch
	var window []string

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		window = append(window, line)

		if re.MatchString(line) {
			m := GrepMatch{File: path, LineNumber: lineNum, Line: strings.TrimSpace(line)}
			if contextLines > 0 {
				start := len(window) - contextLines - 1
				if start < 0 {
					start = 0
				}
				for i := start; i < len(window)-1; i++ {
					m.Context = append(m.Context, fmt.Sprintf("-%d: %s", len(window)-1-i, strings.TrimSpace(window[i])))
				}
			}
			matches = append(matches, m)
			if len(matches) >= maxMatches {
				break
			}
		}

		if contextLines > 0 && len(window) > contextLines+1 {
			window = window[1:]
		}
	}
	return matches, scanner.Err()
}
