package organizer

import (
	"fileorganizer/internal/matcher"
	"fileorganizer/internal/recipe"
)

// NextLastRun computes a recipe's cutoff after a run: the latest day among
// qualifying files the run processed, whether the action succeeded or
// failed. Files never scheduled because the run was canceled do not count.
// The cutoff never moves backwards and a run that processed nothing leaves it
// unchanged.
func NextLastRun(prior *recipe.Date, outcomes []Outcome) *recipe.Date {
	var (
		best recipe.Date
		seen bool
	)
	for _, o := range outcomes {
		if !o.Qualifying || o.Reason == matcher.Canceled {
			continue
		}
		if !seen || o.Day.After(best) {
			best = o.Day
			seen = true
		}
	}
	if !seen {
		return prior
	}
	if prior != nil && !best.After(*prior) {
		return prior
	}
	return &best
}
