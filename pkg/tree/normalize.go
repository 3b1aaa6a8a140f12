package tree

import (
	"fmt"
	"strings"
)

// Separator delimits path segments.
const Separator = "/"

// MalformedPathError reports an input entry that normalizes to nothing:
// empty, whitespace-only, separator-only, or with a blank segment.
type MalformedPathError struct {
	Index int    // position in the raw input
	Raw   string // entry as received
}

// Error implements the error interface.
func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("malformed path at index %d: %q", e.Index, e.Raw)
}

// Normalize canonicalizes raw path strings.
//
// Leading and trailing separators are stripped and repeated separators
// collapse, so "src//ui/" becomes "src/ui". Entries that are empty,
// whitespace-only, or contain a whitespace-only segment are dropped.
// Duplicates are removed keeping first-seen order. The result is never nil.
func Normalize(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		p, ok := NormalizePath(r)
		if !ok {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// NormalizeStrict is like [Normalize] but returns a [*MalformedPathError] for
// the first entry Normalize would have dropped.
func NormalizeStrict(raw []string) ([]string, error) {
	for i, r := range raw {
		if _, ok := NormalizePath(r); !ok {
			return nil, &MalformedPathError{Index: i, Raw: r}
		}
	}
	return Normalize(raw), nil
}

// NormalizePath normalizes a single path. It reports false when the entry
// carries no usable segments.
func NormalizePath(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}
	parts := strings.Split(raw, Separator)
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if strings.TrimSpace(p) == "" {
			return "", false
		}
		segs = append(segs, p)
	}
	if len(segs) == 0 {
		return "", false
	}
	return strings.Join(segs, Separator), true
}

// Parent returns the path with its last segment removed, or "" for a
// top-level path.
func Parent(path string) string {
	if i := strings.LastIndex(path, Separator); i >= 0 {
		return path[:i]
	}
	return ""
}

// Name returns the last segment of path.
func Name(path string) string {
	return path[strings.LastIndex(path, Separator)+1:]
}

// Depth returns the number of segments minus one.
func Depth(path string) int {
	return strings.Count(path, Separator)
}

// Ancestors returns every proper prefix of path, shortest first.
// "a/b/c" yields ["a", "a/b"].
func Ancestors(path string) []string {
	var out []string
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			out = append(out, path[:i])
		}
	}
	return out
}
