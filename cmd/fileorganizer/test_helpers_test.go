package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fileorganizer/internal/config"
	"fileorganizer/internal/testsupport"
)

type cliTestEnv struct {
	cfg         *config.Config
	configPath  string
	baseDir     string
	recipesPath string
	source      string
	destination string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:         cfg,
		configPath:  configPath,
		baseDir:     base,
		recipesPath: filepath.Join(base, "recipes.json"),
		source:      filepath.Join(base, "inbox"),
		destination: filepath.Join(base, "archive"),
	}
}

func (e *cliTestEnv) writeRecipes(t *testing.T, entries ...map[string]any) {
	t.Helper()
	if err := os.MkdirAll(e.source, 0o755); err != nil {
		t.Fatalf("mkdir source: %v", err)
	}
	testsupport.WriteRecipes(t, e.recipesPath, entries...)
}

func (e *cliTestEnv) recipe(name string, extra map[string]any) map[string]any {
	entry := map[string]any{
		"name":               name,
		"source_folder":      e.source,
		"destination_folder": e.destination,
		"subfolders":         []string{"%Y"},
	}
	for k, v := range extra {
		entry[k] = v
	}
	return entry
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nstate_dir = %q\nlog_dir = %q\n\n[logging]\nlevel = \"error\"\n\n[engine]\nworkers = %d\n\n[history]\nenabled = %t\n\n[metrics]\ntextfile = %q\n",
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.Engine.Workers,
		cfg.History.Enabled,
		cfg.Metrics.Textfile,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
