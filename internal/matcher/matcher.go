// Package matcher decides whether a source entry qualifies for a recipe.
package matcher

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"fileorganizer/internal/fsmeta"
	"fileorganizer/internal/recipe"
)

// SkipReason explains why a file was not acted on.
type SkipReason string

const (
	Hidden              SkipReason = "hidden"
	NotRegularFile      SkipReason = "not_regular_file"
	ExtensionNotAllowed SkipReason = "extension_not_allowed"
	AlreadyProcessed    SkipReason = "already_processed"
	SameFile            SkipReason = "same_file"
	Canceled            SkipReason = "canceled"
)

// Decision is the matcher's verdict for one entry.
type Decision struct {
	// Ignore is set for directories, which are neither matched nor reported.
	Ignore    bool
	Qualifies bool
	Reason    SkipReason
	// Timestamp is the comparison timestamp selected by the recipe's
	// date_comparator. It is set for regular files only.
	Timestamp time.Time
	Day       recipe.Date
}

// Options tune matching beyond the recipe itself.
type Options struct {
	Location   *time.Location
	SkipHidden bool
}

// Matcher applies one recipe's filters.
type Matcher struct {
	recipe     recipe.Recipe
	location   *time.Location
	skipHidden bool
	extensions map[string]struct{}
}

// New builds a matcher for r. Allowed extensions are case folded once.
func New(r recipe.Recipe, opts Options) *Matcher {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	m := &Matcher{recipe: r, location: loc, skipHidden: opts.SkipHidden}
	if len(r.AllowedExtensions) > 0 {
		m.extensions = make(map[string]struct{}, len(r.AllowedExtensions))
		for _, ext := range r.AllowedExtensions {
			ext = fold(strings.TrimPrefix(strings.TrimSpace(ext), "."))
			if ext != "" {
				m.extensions[ext] = struct{}{}
			}
		}
	}
	return m
}

// Qualifies evaluates meta against the recipe.
func (m *Matcher) Qualifies(meta fsmeta.Meta) Decision {
	if meta.IsDir() {
		return Decision{Ignore: true}
	}
	if !meta.IsRegular() {
		return Decision{Reason: NotRegularFile}
	}
	ts := Timestamp(meta, m.recipe.DateComparator)
	d := Decision{Timestamp: ts, Day: recipe.DayOf(ts, m.location)}
	if m.skipHidden && strings.HasPrefix(meta.Name, ".") {
		d.Reason = Hidden
		return d
	}
	if m.extensions != nil {
		ext, ok := Extension(meta.Name)
		if _, allowed := m.extensions[ext]; !ok || !allowed {
			d.Reason = ExtensionNotAllowed
			return d
		}
	}
	if last := m.recipe.LastRun; last != nil && !d.Day.After(*last) {
		d.Reason = AlreadyProcessed
		return d
	}
	d.Qualifies = true
	return d
}

// Qualifies is a one-shot form of New(r, ...).Qualifies(meta) with hidden
// files skipped.
func Qualifies(meta fsmeta.Meta, r recipe.Recipe, loc *time.Location) Decision {
	return New(r, Options{Location: loc, SkipHidden: true}).Qualifies(meta)
}

// Timestamp selects the comparison timestamp for a comparator. Creation time
// falls back to modification time when the filesystem does not record it.
func Timestamp(meta fsmeta.Meta, comparator recipe.DateComparator) time.Time {
	if comparator == recipe.CreationDate && meta.HasBirth {
		return meta.BirthTime
	}
	return meta.ModTime
}

// Extension returns the case-folded text after the last dot of name. Names
// without a dot, or ending in one, have no extension.
func Extension(name string) (string, bool) {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 || idx == len(name)-1 {
		return "", false
	}
	return fold(name[idx+1:]), true
}

func fold(s string) string {
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Fold().String(s)
}
