package main

import (
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func TestCheckReportsRecipes(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeRecipes(t, env.recipe("photos", map[string]any{"allowed_extensions": []string{"jpg", "png"}}))

	out, _, err := runCLI(t, []string{"check", env.recipesPath}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Recipe photos")
	requireContains(t, out, "[OK]")
	requireContains(t, out, filepath.Join(env.destination, strconv.Itoa(time.Now().UTC().Year())))
	requireContains(t, out, "jpg, png; copy; no cutoff by ModificationDate")
}

func TestCheckFailsForMissingSource(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeRecipes(t, env.recipe("photos", map[string]any{"source_folder": filepath.Join(env.baseDir, "nope")}))

	out, _, err := runCLI(t, []string{"check", env.recipesPath}, env.configPath)
	if !errors.Is(err, errCheckFailed) {
		t.Fatalf("expected check failure, got %v", err)
	}
	requireContains(t, out, "does not exist")
}
