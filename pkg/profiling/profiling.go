// Package profiling times the stages of a hook invocation. The hook runs
// inside an agent turn, so the interesting question is where wall-clock
// time went; CPU and heap profiles are available for the harder cases.
package profiling

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Stopper ends a timed span, typically via defer.
type Stopper interface {
	Stop()
}

// span is one timed stage. Depth reflects how many spans were open when it
// started, which is enough to reconstruct the hierarchy for display.
type span struct {
	name  string
	depth int
	start time.Time
	took  time.Duration
}

func (s *span) Stop() {
	std.mu.Lock()
	defer std.mu.Unlock()

	s.took = time.Since(s.start)
	if std.depth > 0 {
		std.depth--
	}
}

type profiler struct {
	mu      sync.Mutex
	enabled bool
	began   time.Time
	depth   int
	spans   []*span
}

var std = &profiler{}

// Enable turns on span collection. Spans started before Enable are lost.
func Enable() {
	std.mu.Lock()
	defer std.mu.Unlock()

	if std.enabled {
		return
	}
	std.enabled = true
	std.began = time.Now()
}

// Start opens a timed span. When the profiler is disabled this costs one
// branch and allocates nothing.
func Start(name string) Stopper {
	if !std.enabled {
		return noopStopper{}
	}

	std.mu.Lock()
	defer std.mu.Unlock()

	s := &span{name: name, depth: std.depth, start: time.Now()}
	std.spans = append(std.spans, s)
	std.depth++
	return s
}

// Summarize writes the recorded spans in start order, indented by nesting
// depth, with each span's share of the total elapsed time.
func Summarize(w io.Writer) {
	std.mu.Lock()
	defer std.mu.Unlock()

	if !std.enabled || len(std.spans) == 0 {
		return
	}

	total := time.Since(std.began)
	fmt.Fprintln(w, "\n--- Timing ---")
	for _, s := range std.spans {
		share := 0.0
		if total > 0 {
			share = float64(s.took) / float64(total) * 100
		}
		indent := strings.Repeat("  ", s.depth)
		fmt.Fprintf(w, "%s- %s (%v, %.1f%%)\n", indent, s.name, s.took.Round(100*time.Microsecond), share)
	}
	fmt.Fprintln(w, "--------------")
}

type noopStopper struct{}

func (noopStopper) Stop() {}
