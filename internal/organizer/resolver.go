package organizer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"fileorganizer/internal/dateformat"
	"fileorganizer/internal/fileutil"
	"fileorganizer/internal/fsmeta"
	"fileorganizer/internal/recipe"
)

const maxCollisionAttempts = 10000

var errNoFreeName = errors.New("no free destination name")

// Reservations hands out destination paths for one engine run. Every recipe
// of the run resolves against the same set, so a dry run assigns the suffixes
// a real run would. Reservations are never persisted and a dry run never
// consumes a suffix on disk.
type Reservations struct {
	mu       sync.Mutex
	reserved map[string]struct{}
}

// NewReservations returns an empty reservation set.
func NewReservations() *Reservations {
	return &Reservations{reserved: make(map[string]struct{})}
}

// targetDir joins the rendered subfolder chain under the recipe's destination.
func targetDir(r recipe.Recipe, segments []string) string {
	return filepath.Join(append([]string{r.DestinationFolder}, segments...)...)
}

// Resolve returns the preferred destination for source before collision
// handling: the rendered subfolders under the destination root plus the
// original basename.
func Resolve(source string, r recipe.Recipe, ts time.Time) string {
	return filepath.Join(targetDir(r, dateformat.Render(ts, r.Subfolders)), filepath.Base(source))
}

// reserve picks the first free name for source inside dir. sameFile is true
// when source already sits at its own preferred destination.
func (r *Reservations) reserve(source fsmeta.Meta, dir string) (path string, sameFile bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	base := filepath.Base(source.Path)
	srcInfo, _ := os.Lstat(source.Path)
	for n := 0; n < maxCollisionAttempts; n++ {
		candidate := filepath.Join(dir, suffixedName(base, n))
		if _, taken := r.reserved[candidate]; taken {
			continue
		}
		info, statErr := os.Lstat(candidate)
		switch {
		case statErr == nil:
			if n == 0 && srcInfo != nil && os.SameFile(srcInfo, info) {
				return candidate, true, nil
			}
			continue
		case !errors.Is(statErr, os.ErrNotExist) && !isNotDir(statErr):
			return "", false, fmt.Errorf("inspect %s: %w", candidate, statErr)
		}
		r.reserved[candidate] = struct{}{}
		return candidate, false, nil
	}
	return "", false, fmt.Errorf("%s in %s: %w", base, dir, errNoFreeName)
}

// claim atomically creates the reserved path. If an outside writer took the
// name since planning, the next free suffix is reserved and claimed instead.
func (r *Reservations) claim(source fsmeta.Meta, path string) (string, error) {
	dir := filepath.Dir(path)
	for attempt := 0; attempt < maxCollisionAttempts; attempt++ {
		err := fileutil.Claim(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", err
		}
		next, same, err := r.reserve(source, dir)
		if err != nil {
			return "", err
		}
		if same {
			return "", fmt.Errorf("claim %s: destination became the source", path)
		}
		path = next
	}
	return "", fmt.Errorf("claim in %s: %w", dir, errNoFreeName)
}

// suffixedName inserts -n before the extension of name. n == 0 returns name.
func suffixedName(name string, n int) string {
	if n == 0 {
		return name
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if stem == "" {
		stem, ext = name, ""
	}
	return fmt.Sprintf("%s-%d%s", stem, n, ext)
}

// isNotDir reports ENOTDIR, which means some parent of the candidate is a
// regular file. The later mkdir surfaces that as a per-file failure.
func isNotDir(err error) bool {
	return errors.Is(err, syscall.ENOTDIR)
}
