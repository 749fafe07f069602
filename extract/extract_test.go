package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractWriteAndReadClassification(t *testing.T) {
	e := New(Options{})

	message := "Created `src/a.ts`. Read `src/b.ts`. Modified src/a.ts again."
	files := e.Extract(message, "/p")

	assert.Equal(t, []File{
		{Path: "/p/src/a.ts", Write: true},
		{Path: "/p/src/b.ts", Write: false},
	}, files)
}

func TestExtractWriteWinsInEitherOrder(t *testing.T) {
	e := New(Options{})

	tests := []struct {
		name    string
		message string
	}{
		{"write then read", "Updated `pkg/server.go`, then read `pkg/server.go` to double-check."},
		{"read then write", "Read `pkg/server.go` first, then updated `pkg/server.go`."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := e.Extract(tt.message, "/w")
			assert.Equal(t, []File{{Path: "/w/pkg/server.go", Write: true}}, files)
		})
	}
}

func TestExtractVerbForms(t *testing.T) {
	e := New(Options{})

	tests := []struct {
		message string
		write   bool
	}{
		{"Created `a/one.go`", true},
		{"create `a/one.go`", true},
		{"Modified `a/one.go`", true},
		{"modify `a/one.go`", true},
		{"Updated `a/one.go`", true},
		{"Wrote `a/one.go`", true},
		{"write `a/one.go`", true},
		{"Edited `a/one.go`", true},
		{"Deleted `a/one.go`", true},
		{"DELETED `a/one.go`", true},
		{"Read `a/one.go`", false},
		{"List `a/one.go`", false},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			files := e.Extract(tt.message, "/p")
			assert.Equal(t, []File{{Path: "/p/a/one.go", Write: tt.write}}, files)
		})
	}
}

func TestExtractSignalClasses(t *testing.T) {
	e := New(Options{})

	tests := []struct {
		name    string
		message string
		want    []File
	}{
		{
			"fenced code block header",
			"Here is the change:\n```go:internal/server.go\nfunc main() {}\n```\n",
			[]File{{Path: "/p/internal/server.go", Write: false}},
		},
		{
			"single quoted path",
			"The value lives in 'config/app.yml' under settings.",
			[]File{{Path: "/p/config/app.yml", Write: false}},
		},
		{
			"double quoted path",
			"See \"docs/setup.md\" for details.",
			[]File{{Path: "/p/docs/setup.md", Write: false}},
		},
		{
			"bare backticked path",
			"The handler in `api/routes.py` covers that.",
			[]File{{Path: "/p/api/routes.py", Write: false}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.message, "/p"))
		})
	}
}

func TestExtractNormalization(t *testing.T) {
	e := New(Options{})

	tests := []struct {
		name    string
		message string
		cwd     string
		want    string
	}{
		{"absolute path kept", "Modified `/abs/path/main.go`", "/p", "/abs/path/main.go"},
		{"absolute path cleaned", "Modified `/abs//path/../main.go`", "/p", "/abs/main.go"},
		{"relative joined with cwd", "Modified `src/main.go`", "/home/u/proj", "/home/u/proj/src/main.go"},
		{"parent segments resolved", "Modified `../lib/util.go`", "/home/u/proj/src", "/home/u/proj/lib/util.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := e.Extract(tt.message, tt.cwd)
			assert.Equal(t, []File{{Path: tt.want, Write: true}}, files)
		})
	}
}

func TestExtractRejectsInvalidCandidates(t *testing.T) {
	e := New(Options{})

	tests := []struct {
		name    string
		message string
	}{
		{"bare url", "Check https://example.com/file.ts for reference."},
		{"backticked url", "Check `https://example.com/file.ts` for reference."},
		{"shell redirect chars", "Modified `out>err.log`"},
		{"pipe char", "Modified `a|b.ts`"},
		{"glob question mark", "Modified `file?.go`"},
		{"glob star", "Modified `src/*.go`"},
		{"no extension", "Updated `Makefile`"},
		{"extension too long", "Updated notes.abcdefg today"},
		{"verb with no path", "Updated the documentation accordingly."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, e.Extract(tt.message, "/p"))
		})
	}
}

func TestExtractTrailingPunctuation(t *testing.T) {
	e := New(Options{})

	files := e.Extract("Modified src/a.ts.", "/p")
	assert.Equal(t, []File{{Path: "/p/src/a.ts", Write: true}}, files)

	files = e.Extract("Finally updated lib/core.rb!", "/p")
	assert.Equal(t, []File{{Path: "/p/lib/core.rb", Write: true}}, files)
}

func TestExtractEmptyMessage(t *testing.T) {
	e := New(Options{})

	assert.Empty(t, e.Extract("", "/p"))
	assert.Empty(t, e.Extract("   \n\t", "/p"))
}

func TestExtractIdempotent(t *testing.T) {
	e := New(Options{})
	message := "Created `src/a.ts`. Read `src/b.ts`. Also touched 'src/c.py'."

	first := e.Extract(message, "/p")
	second := e.Extract(message, "/p")
	assert.Equal(t, first, second)
}

func TestPathsDeduplicates(t *testing.T) {
	e := New(Options{})

	message := "Read `src/a.ts`, modified `src/a.ts`, mentioned `src/b.ts`."
	paths := e.Paths(message, "/p")

	assert.Equal(t, []string{"/p/src/a.ts", "/p/src/b.ts"}, paths)
}

func TestStrictExtensions(t *testing.T) {
	permissive := New(Options{})
	strict := New(Options{StrictExtensions: true})

	message := "Updated `data/results.xyz`, then updated `src/main.go`."

	assert.Equal(t, []File{
		{Path: "/p/data/results.xyz", Write: true},
		{Path: "/p/src/main.go", Write: true},
	}, permissive.Extract(message, "/p"))

	assert.Equal(t, []File{
		{Path: "/p/src/main.go", Write: true},
	}, strict.Extract(message, "/p"))
}

func TestIsTrackedExtension(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"main.go", true},
		{"src/app.TSX", true},
		{"config/.env", true},
		{"notes.xyz", false},
		{"Makefile", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTrackedExtension(tt.path))
		})
	}
}

func TestKindMerge(t *testing.T) {
	assert.Equal(t, KindWrite, KindWrite.Merge(KindRead))
	assert.Equal(t, KindWrite, KindRead.Merge(KindWrite))
	assert.Equal(t, KindWrite, KindWrite.Merge(KindWrite))
	assert.Equal(t, KindRead, KindRead.Merge(KindRead))
}
