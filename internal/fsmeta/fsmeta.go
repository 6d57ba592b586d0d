// Package fsmeta reads the timestamps recipes compare against.
package fsmeta

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Meta describes one directory entry as seen by the organizer.
type Meta struct {
	Path      string
	Name      string
	Mode      fs.FileMode
	Size      int64
	ModTime   time.Time
	BirthTime time.Time
	// HasBirth is false when the filesystem or platform does not record a
	// creation time. BirthTime then equals ModTime.
	HasBirth bool
}

// IsRegular reports whether the entry is a plain file. Symlinks are not
// followed, so a link to a file is not regular.
func (m Meta) IsRegular() bool { return m.Mode.IsRegular() }

func (m Meta) IsDir() bool { return m.Mode.IsDir() }

// Stat probes path without following symlinks.
func Stat(path string) (Meta, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return Meta{}, err
	}
	meta := Meta{
		Path:      path,
		Name:      filepath.Base(path),
		Mode:      info.Mode(),
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		BirthTime: info.ModTime(),
	}
	if birth, ok := birthTime(path); ok {
		meta.BirthTime = birth
		meta.HasBirth = true
	}
	return meta, nil
}

// List returns a snapshot of the non-recursive entries of dir, probed with
// Stat. Entries that vanish between listing and probing are left out.
func List(dir string) ([]Meta, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	metas := make([]Meta, 0, len(entries))
	for _, entry := range entries {
		meta, err := Stat(filepath.Join(dir, entry.Name()))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		metas = append(metas, meta)
	}
	return metas, nil
}
