package preflight

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"fileorganizer/internal/config"
	"fileorganizer/internal/recipe"
	"fileorganizer/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that apply to the process as a whole.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{CheckWritableOrCreatable("State directory", cfg.Paths.StateDir)}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckWritableOrCreatable("Log directory", cfg.Paths.LogDir))
	}
	return results
}

// Recipe checks one recipe's folders. The source must be an existing,
// listable directory; removing files from it is checked per file by the
// move itself. The destination, when present, must be a writable directory.
func Recipe(r recipe.Recipe) []Result {
	return []Result{
		checkDirectory("Source folder", r.SourceFolder, unix.R_OK|unix.X_OK),
		CheckWritableOrCreatable("Destination folder", r.DestinationFolder),
	}
}

// RecipeError folds failed recipe checks into a single validation error, or
// returns nil when every check passed.
func RecipeError(r recipe.Recipe) error {
	var failed []string
	for _, result := range Recipe(r) {
		if !result.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", strings.ToLower(result.Name), result.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrValidation, "preflight", "check recipe "+r.Name, strings.Join(failed, "; "), nil)
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK)
}

// CheckWritableOrCreatable passes for a writable directory, or for a missing
// path that will be created on demand.
func CheckWritableOrCreatable(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	}
	return checkDirectory(name, path, unix.W_OK|unix.X_OK)
}

func checkDirectory(name, path string, mode uint32) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s ok)", path, accessLabel(mode))}
}

func accessLabel(mode uint32) string {
	switch {
	case mode&unix.R_OK != 0 && mode&unix.W_OK != 0:
		return "read/write"
	case mode&unix.W_OK != 0:
		return "write"
	default:
		return "read"
	}
}
