package engine_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fileorganizer/internal/engine"
	"fileorganizer/internal/recipe"
	"fileorganizer/internal/services"
	"fileorganizer/internal/testsupport"
)

type recordingPersister struct {
	calls   int
	updates map[string]recipe.Date
	err     error
}

func (p *recordingPersister) SaveLastRun(updates map[string]recipe.Date) error {
	p.calls++
	p.updates = updates
	return p.err
}

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.New(engine.Options{Workers: 2, SkipHidden: true})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return eng
}

func photoRecipe(t *testing.T, name string) recipe.Recipe {
	t.Helper()
	src := t.TempDir()
	testsupport.WriteFileAt(t, filepath.Join(src, "a.jpg"), "a", testsupport.Day(2023, 5, 1))
	return recipe.Recipe{
		Name:              name,
		SourceFolder:      src,
		DestinationFolder: t.TempDir(),
		Subfolders:        []string{"%Y"},
		DateComparator:    recipe.ModificationDate,
	}
}

func TestRunAllRejectsDuplicateNamesBeforeTouchingFiles(t *testing.T) {
	first := photoRecipe(t, "dup")
	second := photoRecipe(t, "dup")
	persister := &recordingPersister{}

	_, err := newEngine(t).RunAll(context.Background(), []recipe.Recipe{first, second}, false, persister)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if len(testsupport.Tree(t, first.DestinationFolder)) != 0 || len(testsupport.Tree(t, second.DestinationFolder)) != 0 {
		t.Fatal("files were touched")
	}
	if persister.calls != 0 {
		t.Fatal("persister called")
	}
}

func TestRunAllIsolatesRecipeFailures(t *testing.T) {
	good := photoRecipe(t, "good")
	bad := photoRecipe(t, "bad")
	bad.SourceFolder = filepath.Join(t.TempDir(), "missing")
	persister := &recordingPersister{}

	report, err := newEngine(t).RunAll(context.Background(), []recipe.Recipe{bad, good}, false, persister)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if report.RunID == "" {
		t.Fatal("expected run id")
	}
	if len(report.Recipes) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(report.Recipes))
	}
	if !errors.Is(report.Recipes[0].Err, services.ErrValidation) {
		t.Fatalf("expected validation error for bad recipe, got %v", report.Recipes[0].Err)
	}
	if report.Recipes[1].Copied != 1 {
		t.Fatalf("good recipe did not run: %+v", report.Recipes[1])
	}
	if !report.HasFailures() {
		t.Fatal("report should carry the recipe failure")
	}
	if persister.calls != 1 || persister.updates["good"].String() != "2023-05-01" {
		t.Fatalf("unexpected persisted updates %v", persister.updates)
	}
	if _, ok := persister.updates["bad"]; ok {
		t.Fatal("failed recipe should not be persisted")
	}
	if totals := report.Totals(); totals.Copied != 1 || totals.FailedRecipes != 1 {
		t.Fatalf("unexpected totals %+v", totals)
	}
}

func TestRunAllDryRunDoesNotPersist(t *testing.T) {
	r := photoRecipe(t, "photos")
	persister := &recordingPersister{}

	report, err := newEngine(t).RunAll(context.Background(), []recipe.Recipe{r}, true, persister)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if persister.calls != 0 {
		t.Fatal("dry run persisted last_run")
	}
	if !report.DryRun || report.Recipes[0].Copied != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(testsupport.Tree(t, r.DestinationFolder)) != 0 {
		t.Fatal("dry run wrote files")
	}
}

func TestRunAllReportsPersistenceFailure(t *testing.T) {
	r := photoRecipe(t, "photos")
	persister := &recordingPersister{err: errors.New("disk full")}

	report, err := newEngine(t).RunAll(context.Background(), []recipe.Recipe{r}, false, persister)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if !errors.Is(report.PersistErr, services.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", report.PersistErr)
	}
	if !report.HasFailures() {
		t.Fatal("persistence failure should fail the report")
	}
	if report.Recipes[0].Copied != 1 {
		t.Fatal("file work should still be reported")
	}
}

func TestRunAllWritesBackRecipeFile(t *testing.T) {
	r := photoRecipe(t, "photos")
	path := filepath.Join(t.TempDir(), "recipes.json")
	testsupport.WriteRecipes(t, path, map[string]any{
		"name":               r.Name,
		"source_folder":      r.SourceFolder,
		"destination_folder": r.DestinationFolder,
		"subfolders":         r.Subfolders,
		"move_files":         true,
		"note":               "hand written",
	})

	file, err := recipe.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	eng := newEngine(t)
	report, err := eng.RunAll(context.Background(), file.Recipes(), false, file)
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if report.HasFailures() {
		t.Fatalf("unexpected failures: %+v", report)
	}

	reloaded, err := recipe.Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := reloaded.Recipes()[0].LastRun
	if got == nil || got.String() != "2023-05-01" {
		t.Fatalf("expected last_run 2023-05-01, got %v", got)
	}
	data, _ := os.ReadFile(path)
	if want := `"note": "hand written"`; !strings.Contains(string(data), want) {
		t.Fatalf("unknown field lost:\n%s", data)
	}

	second, err := eng.RunAll(context.Background(), reloaded.Recipes(), false, reloaded)
	if err != nil {
		t.Fatalf("second RunAll: %v", err)
	}
	if totals := second.Totals(); totals.Moved != 0 || totals.Failed != 0 {
		t.Fatalf("second run acted: %+v", totals)
	}
}

func TestRunAllSharedDestinationKeepsBothFiles(t *testing.T) {
	dst := t.TempDir()
	first := photoRecipe(t, "phone")
	second := photoRecipe(t, "camera")
	first.DestinationFolder = dst
	second.DestinationFolder = dst
	testsupport.WriteFileAt(t, filepath.Join(first.SourceFolder, "x.jpg"), "from phone", testsupport.Day(2023, 5, 2))
	testsupport.WriteFileAt(t, filepath.Join(second.SourceFolder, "x.jpg"), "from camera", testsupport.Day(2023, 5, 2))
	recipes := []recipe.Recipe{first, second}

	destinations := func(report engine.Report) []string {
		var out []string
		for _, s := range report.Recipes {
			for _, o := range s.Outcomes {
				if filepath.Base(o.Source) == "x.jpg" {
					rel, _ := filepath.Rel(dst, o.Destination)
					out = append(out, filepath.ToSlash(rel))
				}
			}
		}
		return out
	}

	eng := newEngine(t)
	dry, err := eng.RunAll(context.Background(), recipes, true, &recordingPersister{})
	if err != nil {
		t.Fatalf("dry RunAll: %v", err)
	}
	if len(testsupport.Tree(t, dst)) != 0 {
		t.Fatal("dry run touched the destination")
	}
	applied, err := eng.RunAll(context.Background(), recipes, false, &recordingPersister{})
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}

	want := []string{"2023/x.jpg", "2023/x-1.jpg"}
	if got := destinations(dry); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("dry run destinations %v, want %v", got, want)
	}
	if got := destinations(applied); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("real run destinations %v, want %v", got, want)
	}
	tree := testsupport.Tree(t, dst)
	if tree["2023/x.jpg"] != "from phone" || tree["2023/x-1.jpg"] != "from camera" {
		t.Fatalf("unexpected destination tree %v", tree)
	}
	for _, r := range recipes {
		if data, err := os.ReadFile(filepath.Join(r.SourceFolder, "x.jpg")); err != nil || len(data) == 0 {
			t.Fatalf("copy source missing in %s: %v", r.Name, err)
		}
	}
}
