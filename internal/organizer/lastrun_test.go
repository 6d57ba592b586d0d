package organizer_test

import (
	"testing"

	"fileorganizer/internal/matcher"
	"fileorganizer/internal/organizer"
	"fileorganizer/internal/recipe"
)

func day(t *testing.T, value string) recipe.Date {
	t.Helper()
	d, err := recipe.ParseDate(value)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", value, err)
	}
	return d
}

func TestNextLastRun(t *testing.T) {
	prior := day(t, "2023-04-01")
	ok := func(v string) organizer.Outcome {
		return organizer.Outcome{Kind: organizer.Moved, Day: day(t, v), Qualifying: true}
	}
	failed := func(v string) organizer.Outcome {
		return organizer.Outcome{Kind: organizer.Failed, Day: day(t, v), Qualifying: true}
	}
	canceled := func(v string) organizer.Outcome {
		return organizer.Outcome{Kind: organizer.Skipped, Reason: matcher.Canceled, Day: day(t, v), Qualifying: true}
	}
	sameFile := func(v string) organizer.Outcome {
		return organizer.Outcome{Kind: organizer.Skipped, Reason: matcher.SameFile, Day: day(t, v), Qualifying: true}
	}
	filtered := func(v string) organizer.Outcome {
		return organizer.Outcome{Kind: organizer.Skipped, Reason: matcher.ExtensionNotAllowed, Day: day(t, v)}
	}

	tests := []struct {
		name     string
		prior    *recipe.Date
		outcomes []organizer.Outcome
		want     string
	}{
		{"no outcomes keeps prior", &prior, nil, "2023-04-01"},
		{"no outcomes and no prior", nil, nil, ""},
		{"latest success wins", &prior, []organizer.Outcome{ok("2023-05-01"), ok("2023-05-03"), ok("2023-05-02")}, "2023-05-03"},
		{"non-qualifying ignored", &prior, []organizer.Outcome{ok("2023-05-01"), filtered("2023-06-01")}, "2023-05-01"},
		{"same file counts as success", nil, []organizer.Outcome{sameFile("2023-05-04")}, "2023-05-04"},
		{"failed files count as processed", &prior, []organizer.Outcome{ok("2023-05-01"), failed("2023-05-03")}, "2023-05-03"},
		{"failure before latest success", &prior, []organizer.Outcome{ok("2023-05-05"), failed("2023-05-03")}, "2023-05-05"},
		{"canceled files are ignored", nil, []organizer.Outcome{ok("2023-05-02"), canceled("2023-05-05")}, "2023-05-02"},
		{"only canceled keeps prior", &prior, []organizer.Outcome{canceled("2023-05-05")}, "2023-04-01"},
		{"only failures advance", &prior, []organizer.Outcome{failed("2023-05-05")}, "2023-05-05"},
		{"never moves backwards", &prior, []organizer.Outcome{ok("2023-03-01")}, "2023-04-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := organizer.NextLastRun(tt.prior, tt.outcomes)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("expected nil, got %s", got)
				}
				return
			}
			if got == nil || got.String() != tt.want {
				t.Fatalf("expected %s, got %v", tt.want, got)
			}
		})
	}
}
