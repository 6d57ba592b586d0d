package recipe

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"fileorganizer/internal/services"
)

// Lock is an advisory lock held for the duration of one run over a recipe
// file.
type Lock struct {
	lock *flock.Flock
	path string
}

// AcquireLock takes a non-blocking exclusive lock for recipePath. The lock file
// lives under lockDir, never next to the recipe file, so a run leaves the
// recipe's folders untouched.
func AcquireLock(lockDir, recipePath string) (*Lock, error) {
	abs, err := filepath.Abs(recipePath)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "recipes", "lock", "resolve recipe path", err)
	}
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "recipes", "lock", "create lock directory", err)
	}
	sum := sha256.Sum256([]byte(abs))
	lockPath := filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock")

	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "recipes", "lock", "acquire lock", err)
	}
	if !ok {
		return nil, services.Wrap(
			services.ErrConfiguration,
			"recipes",
			"lock",
			fmt.Sprintf("another fileorganizer run is using %s", abs),
			nil,
		)
	}
	return &Lock{lock: lock, path: lockPath}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release drops the lock. It is safe to call on a nil Lock.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
