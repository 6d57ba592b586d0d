package organizer

import (
	"time"

	"fileorganizer/internal/matcher"
	"fileorganizer/internal/recipe"
)

// Kind classifies what happened to one source entry.
type Kind string

const (
	Moved   Kind = "moved"
	Copied  Kind = "copied"
	Skipped Kind = "skipped"
	Failed  Kind = "failed"
)

// Outcome is the result for one source entry.
type Outcome struct {
	Kind        Kind
	Reason      matcher.SkipReason
	Source      string
	Destination string
	Timestamp   time.Time
	Day         recipe.Date
	Bytes       int64
	Err         error
	// Qualifying marks entries that passed the matcher. Only these affect
	// the next last_run.
	Qualifying bool
}

// Failure pairs a source path with the error that stopped it.
type Failure struct {
	Path string
	Err  error
}

// RecipeSummary aggregates one recipe run.
type RecipeSummary struct {
	Recipe          string
	DryRun          bool
	Moved           int
	Copied          int
	Skipped         int
	Failed          int
	Bytes           int64
	SkipsByReason   map[matcher.SkipReason]int
	Failures        []Failure
	Outcomes        []Outcome
	PreviousLastRun *recipe.Date
	NewLastRun      *recipe.Date
	// Err is set when the recipe could not run at all (for example its
	// source folder is missing). Per-file errors live in Failures.
	Err      error
	Started  time.Time
	Finished time.Time
}

// HasFailures reports whether the recipe or any of its files failed.
func (s RecipeSummary) HasFailures() bool {
	return s.Err != nil || s.Failed > 0
}

// LastRunChanged reports whether the run advanced the recipe's cutoff.
func (s RecipeSummary) LastRunChanged() bool {
	switch {
	case s.NewLastRun == nil:
		return false
	case s.PreviousLastRun == nil:
		return true
	default:
		return *s.NewLastRun != *s.PreviousLastRun
	}
}

func (s *RecipeSummary) add(o Outcome) {
	switch o.Kind {
	case Moved:
		s.Moved++
		s.Bytes += o.Bytes
	case Copied:
		s.Copied++
		s.Bytes += o.Bytes
	case Skipped:
		s.Skipped++
		if s.SkipsByReason == nil {
			s.SkipsByReason = make(map[matcher.SkipReason]int)
		}
		s.SkipsByReason[o.Reason]++
	case Failed:
		s.Failed++
		s.Failures = append(s.Failures, Failure{Path: o.Source, Err: o.Err})
	}
	s.Outcomes = append(s.Outcomes, o)
}
