// Package extract turns one free-text assistant message plus a working
// directory into a deduplicated, classified set of file activity records.
//
// Extraction is regex-driven and best-effort by contract: the goal is a
// useful set of files with a deterministic precedence rule, not ground
// truth about what the agent touched. Each signal class is a typed matcher;
// their results are folded through a single merge step in which a write
// classification is never downgraded by a later read.
package extract

import (
	"path/filepath"
	"strings"

	"github.com/grovetools/codex-wakatime/pkg/profiling"
)

// File is one extracted activity record: an absolute normalized path and
// whether the message described a write to it.
type File struct {
	Path  string
	Write bool
}

// Options configures an Extractor.
type Options struct {
	// StrictExtensions narrows acceptance to the tracked extension set.
	// By default any non-empty extension of at most six characters is
	// accepted.
	StrictExtensions bool
}

// Extractor scans messages for file activity. It holds no mutable state;
// extraction is idempotent.
type Extractor struct {
	opts     Options
	matchers []matcher
}

// New creates an Extractor.
func New(opts Options) *Extractor {
	return &Extractor{
		opts:     opts,
		matchers: defaultMatchers(),
	}
}

// Extract returns the activity records found in message, in order of first
// detection: write-verb matches first, then the read-classified classes.
// Duplicate mentions of the same normalized path collapse into one record,
// with the write flag sticky toward true. An empty message yields an empty
// result.
func (e *Extractor) Extract(message, cwd string) []File {
	defer profiling.Start("extract.Extract").Stop()

	if strings.TrimSpace(message) == "" {
		return nil
	}

	kinds := make(map[string]Kind)
	var order []string

	for _, m := range e.matchers {
		for _, raw := range m.find(message) {
			candidate := cleanCandidate(raw)
			if !e.accept(candidate) {
				continue
			}
			path := normalize(candidate, cwd)
			if existing, ok := kinds[path]; ok {
				kinds[path] = existing.Merge(m.kind)
				continue
			}
			kinds[path] = m.kind
			order = append(order, path)
		}
	}

	if len(order) == 0 {
		return nil
	}
	files := make([]File, 0, len(order))
	for _, path := range order {
		files = append(files, File{Path: path, Write: kinds[path] == KindWrite})
	}
	return files
}

// Paths returns just the deduplicated normalized paths with no write/read
// distinction, for callers that only need presence.
func (e *Extractor) Paths(message, cwd string) []string {
	files := e.Extract(message, cwd)
	if len(files) == 0 {
		return nil
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	return paths
}

func (e *Extractor) accept(p string) bool {
	if !validPath(p) {
		return false
	}
	if e.opts.StrictExtensions && !IsTrackedExtension(p) {
		return false
	}
	return true
}

// validPath applies the acceptance rules every raw match must pass:
// non-empty, no URL scheme marker, none of the characters that cannot
// appear in a workable path, and a non-empty extension of at most six
// characters.
func validPath(p string) bool {
	if p == "" {
		return false
	}
	if strings.Contains(p, "://") {
		return false
	}
	if strings.ContainsAny(p, "<>|?*") {
		return false
	}
	ext := strings.TrimPrefix(filepath.Ext(p), ".")
	if ext == "" || len(ext) > 6 {
		return false
	}
	return true
}

// cleanCandidate strips wrapper characters and trailing sentence
// punctuation that the looser verb patterns can drag in from prose.
func cleanCandidate(raw string) string {
	p := strings.TrimSpace(raw)
	p = strings.Trim(p, "\x60'\"")
	p = strings.TrimRight(p, ".,;:!?)]}")
	return p
}

// normalize resolves a candidate to a clean absolute path: absolute input
// is canonicalized as-is, relative input is resolved against cwd.
func normalize(p, cwd string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(cwd, p)
}
