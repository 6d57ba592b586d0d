package recipe

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fileorganizer/internal/services"
)

// File is a loaded recipe file. Recipes are decoded from it once; only
// last_run values are written back.
type File struct {
	path    string
	mode    os.FileMode
	entries []*object
	recipes []Recipe
}

// Load reads and decodes the recipe file at path. Recipes are normalized but
// not checked for name uniqueness; see ValidateNames.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "recipes", "load", "recipe file not found: "+path, err)
		}
		return nil, services.Wrap(services.ErrConfiguration, "recipes", "load", "read recipe file", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "recipes", "load", "stat recipe file", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "recipes", "load", "decode "+path, err)
	}
	f.path = path
	f.mode = info.Mode().Perm()
	return f, nil
}

// Parse decodes recipe JSON without binding it to a path. Save is unavailable
// on the result.
func Parse(data []byte) (*File, error) {
	var entries []*object
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("recipe file must be a JSON array of objects: %w", err)
	}
	f := &File{entries: entries, recipes: make([]Recipe, 0, len(entries))}
	for i, entry := range entries {
		if entry == nil {
			return nil, fmt.Errorf("recipe #%d is null", i+1)
		}
		raw, err := entry.raw()
		if err != nil {
			return nil, err
		}
		var r Recipe
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("recipe #%d: %w", i+1, err)
		}
		if err := r.Normalize(); err != nil {
			return nil, fmt.Errorf("recipe #%d: %w", i+1, err)
		}
		f.recipes = append(f.recipes, r)
	}
	return f, nil
}

// Path returns the file the recipes were loaded from.
func (f *File) Path() string { return f.path }

// Recipes returns a copy of the decoded recipes in file order.
func (f *File) Recipes() []Recipe {
	out := make([]Recipe, len(f.recipes))
	copy(out, f.recipes)
	return out
}

// SaveLastRun writes the given last_run values back to the file, keyed by
// recipe name. Every other byte of meaning in each entry is preserved. The
// write is atomic: a failure leaves the previous file in place.
func (f *File) SaveLastRun(updates map[string]Date) error {
	if f.path == "" {
		return services.Wrap(services.ErrPersistence, "recipes", "save", "recipe file has no path", nil)
	}
	if len(updates) == 0 {
		return nil
	}
	changed := false
	for i := range f.recipes {
		date, ok := updates[f.recipes[i].Name]
		if !ok {
			continue
		}
		if prev := f.recipes[i].LastRun; prev != nil && *prev == date {
			continue
		}
		encoded, err := json.Marshal(date)
		if err != nil {
			return services.Wrap(services.ErrPersistence, "recipes", "save", "encode last_run", err)
		}
		f.entries[i].set("last_run", encoded)
		d := date
		f.recipes[i].LastRun = &d
		changed = true
	}
	if !changed {
		return nil
	}
	data, err := json.MarshalIndent(f.entries, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrPersistence, "recipes", "save", "encode recipe file", err)
	}
	data = append(data, '\n')
	if err := writeAtomic(f.path, data, f.mode); err != nil {
		return services.Wrap(services.ErrPersistence, "recipes", "save", "write "+f.path, err)
	}
	return nil
}

func writeAtomic(path string, data []byte, mode os.FileMode) (err error) {
	if mode == 0 {
		mode = 0o644
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
