package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"fileorganizer/internal/engine"
	"fileorganizer/internal/organizer"
	"fileorganizer/internal/recipe"
	"fileorganizer/internal/services"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type reportView struct {
	RunID        string       `json:"run_id"`
	DryRun       bool         `json:"dry_run"`
	Started      time.Time    `json:"started"`
	Finished     time.Time    `json:"finished"`
	Recipes      []recipeView `json:"recipes"`
	PersistError string       `json:"persist_error,omitempty"`
}

type recipeView struct {
	Name            string        `json:"name"`
	Moved           int           `json:"moved"`
	Copied          int           `json:"copied"`
	Skipped         int           `json:"skipped"`
	Failed          int           `json:"failed"`
	Bytes           int64         `json:"bytes"`
	PreviousLastRun string        `json:"previous_last_run,omitempty"`
	NewLastRun      string        `json:"new_last_run,omitempty"`
	Error           string        `json:"error,omitempty"`
	ErrorKind       string        `json:"error_kind,omitempty"`
	Outcomes        []outcomeView `json:"outcomes"`
}

type outcomeView struct {
	Result      string `json:"result"`
	Reason      string `json:"reason,omitempty"`
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	Day         string `json:"day,omitempty"`
	Bytes       int64  `json:"bytes,omitempty"`
	Error       string `json:"error,omitempty"`
	ErrorKind   string `json:"error_kind,omitempty"`
}

func newReportView(report engine.Report) reportView {
	view := reportView{
		RunID:    report.RunID,
		DryRun:   report.DryRun,
		Started:  report.Started,
		Finished: report.Finished,
		Recipes:  make([]recipeView, 0, len(report.Recipes)),
	}
	if report.PersistErr != nil {
		view.PersistError = report.PersistErr.Error()
	}
	for _, s := range report.Recipes {
		rv := recipeView{
			Name:            s.Recipe,
			Moved:           s.Moved,
			Copied:          s.Copied,
			Skipped:         s.Skipped,
			Failed:          s.Failed,
			Bytes:           s.Bytes,
			PreviousLastRun: dateString(s.PreviousLastRun),
			NewLastRun:      dateString(s.NewLastRun),
			Outcomes:        make([]outcomeView, 0, len(s.Outcomes)),
		}
		if s.Err != nil {
			rv.Error = s.Err.Error()
			rv.ErrorKind = services.Kind(s.Err)
		}
		for _, o := range s.Outcomes {
			rv.Outcomes = append(rv.Outcomes, newOutcomeView(o))
		}
		view.Recipes = append(view.Recipes, rv)
	}
	return view
}

func newOutcomeView(o organizer.Outcome) outcomeView {
	ov := outcomeView{
		Result:      string(o.Kind),
		Reason:      string(o.Reason),
		Source:      o.Source,
		Destination: o.Destination,
		Bytes:       o.Bytes,
	}
	if !o.Day.IsZero() {
		ov.Day = o.Day.String()
	}
	if o.Err != nil {
		ov.Error = o.Err.Error()
		ov.ErrorKind = services.Kind(o.Err)
	}
	return ov
}

func dateString(d *recipe.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
