package organizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"fileorganizer/internal/fileutil"
	"fileorganizer/internal/fsmeta"
	"fileorganizer/internal/logging"
	"fileorganizer/internal/services"
)

// task is one planned file: where it comes from and where it goes.
type task struct {
	source      fsmeta.Meta
	destination string
	outcome     Outcome
}

// dirCache remembers destination directories already created so hot
// subfolders are not re-created for every file.
type dirCache struct {
	cache *lru.Cache[string, struct{}]
}

func newDirCache(size int) (*dirCache, error) {
	if size <= 0 {
		size = defaultDirCacheSize
	}
	cache, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, err
	}
	return &dirCache{cache: cache}, nil
}

func (d *dirCache) ensure(dir string) error {
	if d.cache.Contains(dir) {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	d.cache.Add(dir, struct{}{})
	return nil
}

// execute performs a planned task. It never returns an error: every failure
// becomes a Failed outcome and the source is left in place.
func (r *Runner) execute(ctx context.Context, res *Reservations, t task, move, dryRun bool) Outcome {
	out := t.outcome
	out.Destination = t.destination
	kind := Copied
	if move {
		kind = Moved
	}
	if dryRun {
		out.Kind = kind
		out.Bytes = t.source.Size
		return out
	}

	logger := logging.WithContext(ctx, r.logger)
	fail := func(op, msg string, err error) Outcome {
		marker := services.ErrTransient
		if errors.Is(err, os.ErrNotExist) {
			marker = services.ErrNotFound
		}
		out.Kind = Failed
		out.Err = services.Wrap(marker, "organizing", op, msg, err)
		logging.WarnWithContext(logger, "file action failed", "file_failed",
			logging.String("source", out.Source),
			logging.String("destination", out.Destination),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions and free space at the destination"),
			logging.String(logging.FieldImpact, "file left in source folder"),
		)
		return out
	}

	dir := filepath.Dir(t.destination)
	if err := r.dirs.ensure(dir); err != nil {
		return fail("create destination dir", "Failed to create destination directory", err)
	}
	claimed, err := res.claim(t.source, t.destination)
	if err != nil {
		return fail("claim destination", "Failed to claim destination path", err)
	}
	out.Destination = claimed

	if move {
		written, err := moveFile(logger, t.source.Path, claimed)
		if err != nil {
			return fail("move file", "Failed to move file", err)
		}
		out.Bytes = written
	} else {
		written, err := fileutil.CopyFileVerified(t.source.Path, claimed)
		if err != nil {
			_ = os.Remove(claimed)
			return fail("copy file", "Failed to copy file", err)
		}
		out.Bytes = written
	}
	out.Kind = kind
	logger.Debug(
		"file organized",
		logging.String("action", string(kind)),
		logging.String("source", out.Source),
		logging.String("destination", claimed),
		logging.Int64("bytes", out.Bytes),
	)
	return out
}

// moveFile renames source onto the claimed target, falling back to a verified
// copy followed by removal of the source for cross-device moves. On any error
// the claim is removed and the source is untouched.
func moveFile(logger *slog.Logger, source, target string) (int64, error) {
	info, err := os.Lstat(source)
	if err != nil {
		_ = os.Remove(target)
		return 0, err
	}
	renameErr := os.Rename(source, target)
	if renameErr == nil {
		return info.Size(), nil
	}
	if !fileutil.IsCrossDevice(renameErr) {
		_ = os.Remove(target)
		return 0, renameErr
	}
	logger.Debug("cross-device move, copying", logging.String("source", source), logging.String("destination", target))
	written, err := fileutil.CopyFileVerified(source, target)
	if err != nil {
		_ = os.Remove(target)
		return 0, fmt.Errorf("cross-device copy: %w", err)
	}
	if err := os.Remove(source); err != nil {
		_ = os.Remove(target)
		return 0, fmt.Errorf("remove source after copy: %w", err)
	}
	return written, nil
}
