// Package dateformat renders timestamps into destination folder names using
// strftime-style patterns such as "%Y" or "%Y-%m-%d - Videos".
//
// Every pattern is evaluated against the full timestamp, so patterns never
// nest chronologically and a year may appear in several levels. Formatting
// never fails: unknown specifiers are copied through unchanged.
package dateformat

import (
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// supported lists the specifiers delegated to strftime. Anything else after a
// '%' is emitted literally.
var supported = map[byte]struct{}{
	'Y': {}, 'C': {}, 'y': {},
	'm': {}, 'd': {}, 'e': {}, 'j': {},
	'H': {}, 'I': {}, 'M': {}, 'S': {}, 'p': {},
	'a': {}, 'A': {}, 'b': {}, 'B': {}, 'h': {},
	'u': {}, 'w': {},
	'F': {}, 'D': {}, 'T': {},
}

// Render formats t once per pattern and returns one path segment per
// non-empty result, outermost first.
func Render(t time.Time, patterns []string) []string {
	segments := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		segment := sanitizeSegment(Format(t, pattern))
		if segment == "" {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}

// Format expands the supported specifiers in pattern against t.
func Format(t time.Time, pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern) + 8)
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '%' || i+1 >= len(pattern) {
			b.WriteByte(c)
			continue
		}
		next := pattern[i+1]
		i++
		if next == '%' {
			b.WriteByte('%')
			continue
		}
		if _, ok := supported[next]; ok {
			b.WriteString(strftime.Format("%"+string(next), t))
			continue
		}
		b.WriteByte('%')
		b.WriteByte(next)
	}
	return b.String()
}

// sanitizeSegment keeps a rendered pattern inside a single directory level:
// separators become '-', and "." / ".." are rejected.
func sanitizeSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	segment = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '-'
		}
		return r
	}, segment)
	if segment == "." || segment == ".." {
		return ""
	}
	return segment
}
