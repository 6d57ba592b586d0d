package matcher_test

import (
	"io/fs"
	"testing"
	"time"

	"fileorganizer/internal/fsmeta"
	"fileorganizer/internal/matcher"
	"fileorganizer/internal/recipe"
)

func fileMeta(name string, mtime time.Time) fsmeta.Meta {
	return fsmeta.Meta{Path: "/src/" + name, Name: name, ModTime: mtime, BirthTime: mtime}
}

func mustDate(t *testing.T, value string) *recipe.Date {
	t.Helper()
	d, err := recipe.ParseDate(value)
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	return &d
}

func TestExtensionMatchingIsCaseInsensitive(t *testing.T) {
	r := recipe.Recipe{Name: "photos", AllowedExtensions: []string{"jpg"}}
	m := matcher.New(r, matcher.Options{})
	mtime := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)

	if d := m.Qualifies(fileMeta("photo.JPG", mtime)); !d.Qualifies {
		t.Fatalf("photo.JPG should qualify, got %+v", d)
	}
	upper := matcher.New(recipe.Recipe{Name: "photos", AllowedExtensions: []string{"JPG"}}, matcher.Options{})
	if d := upper.Qualifies(fileMeta("photo.jpg", mtime)); !d.Qualifies {
		t.Fatalf("photo.jpg should qualify against JPG, got %+v", d)
	}
}

func TestExtensionFiltering(t *testing.T) {
	mtime := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	limited := matcher.New(recipe.Recipe{AllowedExtensions: []string{"jpg", ".png"}}, matcher.Options{})
	open := matcher.New(recipe.Recipe{}, matcher.Options{})

	tests := []struct {
		name    string
		m       *matcher.Matcher
		file    string
		qualify bool
	}{
		{"allowed", limited, "a.png", true},
		{"last dot wins", limited, "a.png.jpg", true},
		{"not allowed", limited, "notes.txt", false},
		{"no extension", limited, "README", false},
		{"trailing dot", limited, "weird.", false},
		{"open list accepts anything", open, "notes.txt", true},
		{"open list accepts no extension", open, "README", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.m.Qualifies(fileMeta(tt.file, mtime))
			if d.Qualifies != tt.qualify {
				t.Fatalf("%s: qualifies=%v reason=%q", tt.file, d.Qualifies, d.Reason)
			}
			if !tt.qualify && d.Reason != matcher.ExtensionNotAllowed {
				t.Fatalf("expected ExtensionNotAllowed, got %q", d.Reason)
			}
		})
	}
}

func TestCutoffIsStrictlyAfterLastRun(t *testing.T) {
	r := recipe.Recipe{Name: "a", LastRun: mustDate(t, "2023-05-01")}
	m := matcher.New(r, matcher.Options{})

	sameDay := m.Qualifies(fileMeta("a.jpg", time.Date(2023, 5, 1, 23, 59, 0, 0, time.UTC)))
	if sameDay.Qualifies || sameDay.Reason != matcher.AlreadyProcessed {
		t.Fatalf("file on last_run day should be skipped, got %+v", sameDay)
	}
	nextDay := m.Qualifies(fileMeta("b.jpg", time.Date(2023, 5, 2, 0, 1, 0, 0, time.UTC)))
	if !nextDay.Qualifies {
		t.Fatalf("file after last_run should qualify, got %+v", nextDay)
	}
	if nextDay.Day.String() != "2023-05-02" {
		t.Fatalf("unexpected day %s", nextDay.Day)
	}
}

func TestCutoffUsesConfiguredLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	r := recipe.Recipe{Name: "a", LastRun: mustDate(t, "2023-05-01")}
	mtime := time.Date(2023, 5, 1, 20, 0, 0, 0, time.UTC)

	if d := matcher.New(r, matcher.Options{}).Qualifies(fileMeta("a.jpg", mtime)); d.Qualifies {
		t.Fatal("expected skip in UTC")
	}
	if d := matcher.New(r, matcher.Options{Location: tokyo}).Qualifies(fileMeta("a.jpg", mtime)); !d.Qualifies {
		t.Fatal("expected qualify in Tokyo where the day is 2023-05-02")
	}
}

func TestHiddenAndNonRegularEntries(t *testing.T) {
	mtime := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	r := recipe.Recipe{Name: "a"}

	if d := matcher.Qualifies(fileMeta(".DS_Store", mtime), r, nil); d.Reason != matcher.Hidden {
		t.Fatalf("expected hidden, got %+v", d)
	}
	if d := matcher.New(r, matcher.Options{SkipHidden: false}).Qualifies(fileMeta(".env", mtime)); !d.Qualifies {
		t.Fatalf("hidden files should qualify when not skipped, got %+v", d)
	}

	link := fileMeta("link.jpg", mtime)
	link.Mode = fs.ModeSymlink
	if d := matcher.Qualifies(link, r, nil); d.Reason != matcher.NotRegularFile {
		t.Fatalf("expected not regular, got %+v", d)
	}

	dir := fileMeta("sub", mtime)
	dir.Mode = fs.ModeDir
	if d := matcher.Qualifies(dir, r, nil); !d.Ignore {
		t.Fatalf("directories should be ignored, got %+v", d)
	}
}

func TestCreationDateComparator(t *testing.T) {
	mtime := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	birth := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	meta := fileMeta("a.jpg", mtime)
	meta.BirthTime = birth
	meta.HasBirth = true

	if got := matcher.Timestamp(meta, recipe.CreationDate); !got.Equal(birth) {
		t.Fatalf("expected birth time, got %v", got)
	}
	if got := matcher.Timestamp(meta, recipe.ModificationDate); !got.Equal(mtime) {
		t.Fatalf("expected mtime, got %v", got)
	}
	meta.HasBirth = false
	if got := matcher.Timestamp(meta, recipe.CreationDate); !got.Equal(mtime) {
		t.Fatalf("expected mtime fallback, got %v", got)
	}
}
