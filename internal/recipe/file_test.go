package recipe_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fileorganizer/internal/recipe"
)

func writeRecipeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recipes.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write recipes: %v", err)
	}
	return path
}

func TestSaveLastRunPreservesUnknownFieldsAndOrder(t *testing.T) {
	dir := t.TempDir()
	body := `[
  {"name": "docs", "comment": "keep me", "source_folder": "` + dir + `", "destination_folder": "` + dir + `", "allowed_extensions": ["PDF"], "extra": {"nested": [1, 2]}},
  {"name": "music", "source_folder": "` + dir + `", "destination_folder": "` + dir + `", "last_run": "2022-01-01", "tag": null}
]`
	path := writeRecipeFile(t, body)

	f, err := recipe.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	day, _ := recipe.ParseDate("2023-05-01")
	if err := f.SaveLastRun(map[string]recipe.Date{"docs": day}); err != nil {
		t.Fatalf("SaveLastRun: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var entries []map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("saved file is not valid JSON: %v", err)
	}
	if entries[0]["last_run"] != "2023-05-01" {
		t.Fatalf("last_run not written: %v", entries[0]["last_run"])
	}
	if entries[0]["comment"] != "keep me" || entries[0]["extra"] == nil {
		t.Fatalf("unknown fields dropped: %v", entries[0])
	}
	exts, _ := entries[0]["allowed_extensions"].([]any)
	if len(exts) != 1 || exts[0] != "PDF" {
		t.Fatalf("stored extensions rewritten: %v", exts)
	}
	if entries[1]["last_run"] != "2022-01-01" {
		t.Fatalf("unrelated entry changed: %v", entries[1])
	}
	if _, ok := entries[1]["tag"]; !ok {
		t.Fatal("null field dropped")
	}

	text := string(data)
	order := []string{`"name"`, `"comment"`, `"source_folder"`, `"destination_folder"`, `"allowed_extensions"`, `"extra"`, `"last_run"`}
	first := text[:strings.Index(text, `"music"`)]
	last := -1
	for _, key := range order {
		idx := strings.Index(first, key)
		if idx <= last {
			t.Fatalf("key %s out of order in:\n%s", key, first)
		}
		last = idx
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected mode preserved, got %v", info.Mode().Perm())
	}
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".*.tmp"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}

func TestSaveLastRunNoChangesLeavesFileUntouched(t *testing.T) {
	dir := t.TempDir()
	body := `[{"name":"a","source_folder":"` + dir + `","destination_folder":"` + dir + `","last_run":"2023-05-01"}]`
	path := writeRecipeFile(t, body)
	f, err := recipe.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	day, _ := recipe.ParseDate("2023-05-01")
	if err := f.SaveLastRun(map[string]recipe.Date{"a": day, "unknown": day}); err != nil {
		t.Fatalf("SaveLastRun: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != body {
		t.Fatalf("file rewritten without changes:\n%s", data)
	}
}

func TestSaveLastRunFailureKeepsOriginal(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	dir := t.TempDir()
	body := `[{"name":"a","source_folder":"` + dir + `","destination_folder":"` + dir + `"}]`
	recipeDir := t.TempDir()
	path := filepath.Join(recipeDir, "recipes.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := recipe.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := os.Chmod(recipeDir, 0o500); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(recipeDir, 0o755) })

	day, _ := recipe.ParseDate("2023-05-01")
	if err := f.SaveLastRun(map[string]recipe.Date{"a": day}); err == nil {
		t.Fatal("expected persistence error")
	}
	data, _ := os.ReadFile(path)
	if string(data) != body {
		t.Fatalf("original file modified:\n%s", data)
	}
}

func TestAcquireLockIsExclusive(t *testing.T) {
	lockDir := t.TempDir()
	recipes := filepath.Join(t.TempDir(), "recipes.json")

	first, err := recipe.AcquireLock(lockDir, recipes)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if _, err := recipe.AcquireLock(lockDir, recipes); err == nil {
		t.Fatal("expected second lock to fail while first is held")
	}
	if err := first.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	second, err := recipe.AcquireLock(lockDir, recipes)
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	_ = second.Release()
	if filepath.Dir(second.Path()) != lockDir {
		t.Fatalf("lock file outside lock dir: %s", second.Path())
	}
}
