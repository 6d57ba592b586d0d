package recipe

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"fileorganizer/internal/config"
	"fileorganizer/internal/services"
)

// DateComparator selects which filesystem timestamp drives a recipe.
type DateComparator string

const (
	ModificationDate DateComparator = "ModificationDate"
	CreationDate     DateComparator = "CreationDate"
)

// ParseDateComparator accepts the canonical names case-insensitively, with or
// without underscores. An empty value means ModificationDate.
func ParseDateComparator(value string) (DateComparator, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(value), "_", ""))
	switch key {
	case "", "modificationdate", "modified", "mtime":
		return ModificationDate, nil
	case "creationdate", "created", "birthtime":
		return CreationDate, nil
	default:
		return "", fmt.Errorf("date_comparator: unsupported value %q (use CreationDate or ModificationDate)", value)
	}
}

func (c *DateComparator) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ModificationDate
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date_comparator: %w", err)
	}
	parsed, err := ParseDateComparator(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Recipe is one declarative organization rule.
type Recipe struct {
	Name              string         `json:"name"`
	SourceFolder      string         `json:"source_folder"`
	DestinationFolder string         `json:"destination_folder"`
	Subfolders        []string       `json:"subfolders,omitempty"`
	AllowedExtensions []string       `json:"allowed_extensions,omitempty"`
	MoveFiles         bool           `json:"move_files"`
	LastRun           *Date          `json:"last_run,omitempty"`
	DateComparator    DateComparator `json:"date_comparator,omitempty"`
}

// UnmarshalJSON decodes a recipe and folds the legacy first_level_folder and
// second_level_folder keys into Subfolders when subfolders is absent.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type plain Recipe
	aux := struct {
		*plain
		FirstLevelFolder  *string `json:"first_level_folder"`
		SecondLevelFolder *string `json:"second_level_folder"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(r.Subfolders) == 0 {
		for _, legacy := range []*string{aux.FirstLevelFolder, aux.SecondLevelFolder} {
			if legacy != nil && strings.TrimSpace(*legacy) != "" {
				r.Subfolders = append(r.Subfolders, *legacy)
			}
		}
	}
	if r.DateComparator == "" {
		r.DateComparator = ModificationDate
	}
	return nil
}

// Normalize trims names, expands folder paths and strips leading dots from
// allowed extensions. It does not change the recipe file on disk.
func (r *Recipe) Normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return services.Wrap(services.ErrConfiguration, "recipes", "validate", "recipe name must not be empty", nil)
	}
	var err error
	if r.SourceFolder, err = expandFolder(r.SourceFolder); err != nil {
		return services.Wrap(services.ErrConfiguration, "recipes", "validate", fmt.Sprintf("%s: source_folder", r.Name), err)
	}
	if r.DestinationFolder, err = expandFolder(r.DestinationFolder); err != nil {
		return services.Wrap(services.ErrConfiguration, "recipes", "validate", fmt.Sprintf("%s: destination_folder", r.Name), err)
	}
	exts := make([]string, 0, len(r.AllowedExtensions))
	for _, ext := range r.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	r.AllowedExtensions = exts
	if r.DateComparator == "" {
		r.DateComparator = ModificationDate
	}
	return nil
}

func expandFolder(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("path must not be empty")
	}
	return config.ExpandPath(strings.TrimSpace(path))
}

// ValidateNames reports a configuration error when any two recipes share a
// name. It runs before any file is touched.
func ValidateNames(recipes []Recipe) error {
	seen := make(map[string]int, len(recipes))
	for i, r := range recipes {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return services.Wrap(services.ErrConfiguration, "recipes", "validate names", fmt.Sprintf("recipe #%d has an empty name", i+1), nil)
		}
		if first, dup := seen[name]; dup {
			return services.Wrap(
				services.ErrConfiguration,
				"recipes",
				"validate names",
				fmt.Sprintf("duplicate recipe name %q (entries #%d and #%d)", name, first+1, i+1),
				nil,
			)
		}
		seen[name] = i
	}
	return nil
}
