package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"fileorganizer/internal/engine"
	"fileorganizer/internal/organizer"
	"fileorganizer/internal/recipe"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Result", statusError, "2 file(s) failed", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Result:", "[ERROR] 2 file(s) failed")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Result", statusOK, "done", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestRenderReport(t *testing.T) {
	prev, _ := recipe.ParseDate("2023-04-01")
	next, _ := recipe.ParseDate("2023-05-01")
	started := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	report := engine.Report{
		RunID:    "abc",
		Started:  started,
		Finished: started.Add(1500 * time.Millisecond),
		Recipes: []organizer.RecipeSummary{
			{
				Recipe:          "photos",
				Moved:           2,
				Failed:          1,
				Bytes:           2_000_000,
				PreviousLastRun: &prev,
				NewLastRun:      &next,
				Failures:        []organizer.Failure{{Path: "/in/x.jpg", Err: errors.New("permission denied")}},
			},
		},
	}
	out := renderReport(report, false)
	for _, want := range []string{
		"== Run abc ==",
		"photos",
		"2.0 MB",
		"2023-04-01 -> 2023-05-01",
		"/in/x.jpg: permission denied",
		"1 file(s) and 0 recipe(s) failed in 1.5s",
	} {
		requireContains(t, out, want)
	}
	if shouldColorize(&strings.Builder{}) {
		t.Fatal("non-file writers are never colorized")
	}
}

func TestRenderReportDryRun(t *testing.T) {
	report := engine.Report{
		RunID:   "dry",
		DryRun:  true,
		Recipes: []organizer.RecipeSummary{{Recipe: "docs", Copied: 3}},
	}
	out := renderReport(report, false)
	requireContains(t, out, "(dry run)")
	requireContains(t, out, "3 file(s) would be organized")
}
