// Package fsutil implements the filesystem-facing primitives behind
// smart_read and smart_edit (§4.6, §6.2) — plain functions, since the
// gateway's handlers package owns routing, caching, and validation and
// only needs raw reads/writes here.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadResult is the outcome of a Read call.
type ReadResult struct {
	Content    string
	TotalLines int
}

// Read returns the full contents of path, or the inclusive 1-indexed
// [startLine, endLine] slice when either bound is non-zero. A zero bound
// defaults to the corresponding end of the file.
func Read(path string, startLine, endLine int) (ReadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ReadResult{}, fmt.Errorf("read %s: %w", path, err)
	}

	lines := strings.Split(string(data), "\n")
	total := len(lines)

	if startLine == 0 && endLine == 0 {
		return ReadResult{Content: string(data), TotalLines: total}, nil
	}

	start := startLine
	if start <= 0 {
		start = 1
	}
	end := endLine
	if end <= 0 || end > total {
		end = total
	}
	start-- // to 0-indexed
	if start < 0 {
		start = 0
	}
	if start > end {
		return ReadResult{TotalLines: total}, nil
	}

	return ReadResult{Content: strings.Join(lines[start:end], "\n"), TotalLines: total}, nil
}

// Write replaces path's contents atomically (write-to-temp-then-rename),
// creating parent directories when createDirs is true. Used by smart_edit's
// whole-file write path per §6.2.
func Write(path, content string, createDirs bool) error {
	if createDirs {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create dirs for %s: %w", path, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file for %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename into place %s: %w", path, err)
	}
	return nil
}

// EditResult reports how many occurrences an Edit call replaced.
type EditResult struct {
	Replacements int
}

// Edit performs a search/replace over path's contents, writing the result
// atomically via Write. replaceAll controls whether every occurrence of
// oldText is replaced or only the first.
func Edit(path, oldText, newText string, replaceAll bool) (EditResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EditResult{}, fmt.Errorf("read %s: %w", path, err)
	}
	content := string(data)

	if !strings.Contains(content, oldText) {
		return EditResult{}, fmt.Errorf("old_text not found in %s", path)
	}

	var count int
	var updated string
	if replaceAll {
		count = strings.Count(content, oldText)
		updated = strings.ReplaceAll(content, oldText, newText)
	} else {
		count = 1
		updated = strings.Replace(content, oldText, newText, 1)
	}

	if err := Write(path, updated, false); err != nil {
		return EditResult{}, err
	}
	return EditResult{Replacements: count}, nil
}

// ListEntry is one entry returned by List.
type ListEntry struct {
	Name  string
	IsDir bool
}

// List returns the entries of a directory, optionally walking recursively
// and optionally skipping dot-prefixed entries.
func List(path string, recursive, includeHidden bool) ([]ListEntry, error) {
	if path == "" {
		path = "."
	}

	var entries []ListEntry

	if !recursive {
		dirEntries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read dir %s: %w", path, err)
		}
		for _, e := range dirEntries {
			if !includeHidden && strings.HasPrefix(e.Name(), ".") {
				continue
			}
			entries = append(entries, ListEntry{Name: e.Name(), IsDir: e.IsDir()})
		}
		return entries, nil
	}

	err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !includeHidden && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, _ := filepath.Rel(path, p)
		if rel == "." {
			return nil
		}
		entries = append(entries, ListEntry{Name: rel, IsDir: info.IsDir()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", path, err)
	}
	return entries, nil
}
