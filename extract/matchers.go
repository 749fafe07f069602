package extract

import "regexp"

// Kind classifies how a path was referenced in the message.
type Kind int

const (
	// KindRead marks a path that was mentioned, opened, or shown.
	KindRead Kind = iota
	// KindWrite marks a path the assistant reported changing.
	KindWrite
)

// Merge combines two classifications for the same path. Write is sticky:
// once a path has been seen in a write context it stays a write, no matter
// how often it is read elsewhere in the message.
func (k Kind) Merge(other Kind) Kind {
	if k == KindWrite || other == KindWrite {
		return KindWrite
	}
	return k
}

func (k Kind) String() string {
	if k == KindWrite {
		return "write"
	}
	return "read"
}

// matcher is one signal class: a pattern over the raw message yielding
// path candidates of a fixed classification. Matchers run in declaration
// order; the write-verb matcher runs first so its classification is laid
// down before any read signal can claim the same path.
type matcher struct {
	name string
	re   *regexp.Regexp
	kind Kind
}

// find returns the raw path candidates in message order. Each pattern
// captures the path in one of its groups; the first non-empty group wins.
func (m matcher) find(message string) []string {
	matches := m.re.FindAllStringSubmatch(message, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, sub := range matches {
		for _, group := range sub[1:] {
			if group != "" {
				out = append(out, group)
				break
			}
		}
	}
	return out
}

var (
	// Verb phrases: a write or read verb immediately followed by a path,
	// optionally backtick-wrapped. Only these two classes carry a
	// write/read classification.
	writeVerbRe = regexp.MustCompile("(?i)\\b(?:create[d]?|modif(?:y|ied)|update[d]?|write|wrote|edit(?:ed)?|delete[d]?)\\b:?[ \\t]+(?:\x60([^\x60\\s]+)\x60|(\\S+))")
	readVerbRe  = regexp.MustCompile("(?i)\\b(?:read|list)\\b:?[ \\t]+(?:\x60([^\x60\\s]+)\x60|(\\S+))")

	// Fenced code block opened with a language tag and an inline path,
	// e.g. ```go:internal/server.go
	fenceRe = regexp.MustCompile("(?m)^\x60{3}[A-Za-z0-9_+#.-]+:([^\\s\x60]+)[ \\t]*$")

	// Bare paths wrapped in single backticks or in quotes, constrained to
	// a short alphabetic extension so prose fragments don't qualify.
	backtickRe = regexp.MustCompile("\x60([^\x60\\s]+\\.[A-Za-z]{1,6})\x60")
	quoteRe    = regexp.MustCompile("['\"]([^'\"\\s]+\\.[A-Za-z]{1,6})['\"]")
)

// defaultMatchers returns the signal classes in precedence order: the
// write pass first, then the read-classified passes.
func defaultMatchers() []matcher {
	return []matcher{
		{name: "write-verb", re: writeVerbRe, kind: KindWrite},
		{name: "read-verb", re: readVerbRe, kind: KindRead},
		{name: "fence-header", re: fenceRe, kind: KindRead},
		{name: "backtick", re: backtickRe, kind: KindRead},
		{name: "quote", re: quoteRe, kind: KindRead},
	}
}
