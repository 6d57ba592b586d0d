package engine

import (
	"time"

	"fileorganizer/internal/organizer"
)

// Report is the structured result of one RunAll call.
type Report struct {
	RunID    string
	DryRun   bool
	Started  time.Time
	Finished time.Time
	Recipes  []organizer.RecipeSummary
	// PersistErr is set when last_run values could not be written back.
	PersistErr error
}

// Totals sums counters across recipes.
type Totals struct {
	Recipes       int
	FailedRecipes int
	Moved         int
	Copied        int
	Skipped       int
	Failed        int
	Bytes         int64
}

// Totals aggregates the per-recipe summaries.
func (r Report) Totals() Totals {
	t := Totals{Recipes: len(r.Recipes)}
	for _, s := range r.Recipes {
		if s.Err != nil {
			t.FailedRecipes++
		}
		t.Moved += s.Moved
		t.Copied += s.Copied
		t.Skipped += s.Skipped
		t.Failed += s.Failed
		t.Bytes += s.Bytes
	}
	return t
}

// HasFailures reports whether any file, recipe or the write-back failed.
func (r Report) HasFailures() bool {
	if r.PersistErr != nil {
		return true
	}
	for _, s := range r.Recipes {
		if s.HasFailures() {
			return true
		}
	}
	return false
}

// Duration returns the wall time of the run.
func (r Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}
