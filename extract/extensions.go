package extract

import (
	"path/filepath"
	"strings"
)

// trackedExtensions is the advisory set of extensions the plugin usually
// cares about. It is not applied as a filter unless StrictExtensions is
// set; unknown extensions are accepted by default to avoid false
// negatives on less common languages.
var trackedExtensions = map[string]bool{
	// code
	"go": true, "ts": true, "tsx": true, "js": true, "jsx": true,
	"mjs": true, "cjs": true, "py": true, "rb": true, "rs": true,
	"java": true, "kt": true, "kts": true, "scala": true, "groovy": true,
	"c": true, "h": true, "cc": true, "cpp": true, "cxx": true,
	"hpp": true, "cs": true, "fs": true, "php": true, "swift": true,
	"m": true, "mm": true, "dart": true, "lua": true, "r": true,
	"jl": true, "ex": true, "exs": true, "erl": true, "hs": true,
	"ml": true, "clj": true, "cljs": true, "elm": true, "nim": true,
	"zig": true, "sol": true, "vue": true, "svelte": true,
	// shell and build
	"sh": true, "bash": true, "zsh": true, "fish": true, "ps1": true,
	"bat": true, "cmd": true, "mk": true, "cmake": true, "gradle": true,
	// config and data
	"json": true, "yaml": true, "yml": true, "toml": true, "ini": true,
	"cfg": true, "conf": true, "env": true, "xml": true, "proto": true,
	"gql": true, "tf": true, "tfvars": true,
	"sql": true, "csv": true,
	// web and docs
	"html": true, "htm": true, "css": true, "scss": true, "sass": true,
	"less": true, "md": true, "mdx": true, "rst": true, "txt": true,
	"tex": true, "adoc": true,
}

// IsTrackedExtension reports whether the path's extension is in the
// advisory tracked set. Callers use it for hints and strict filtering,
// never as part of base validation.
func IsTrackedExtension(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	return trackedExtensions[ext]
}
