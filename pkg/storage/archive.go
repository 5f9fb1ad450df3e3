package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Archive keeps generated attendance sheets on disk so signed download links
// stay valid after the request that produced them.
type Archive struct {
	dir string
}

// NewArchive ensures the directory exists and returns a handle.
func NewArchive(dir string) (*Archive, error) {
	if dir == "" {
		dir = "./exports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &Archive{dir: dir}, nil
}

// Save writes a sheet under the archive directory and returns its stored name.
func (a *Archive) Save(name string, data []byte) (string, error) {
	path := a.resolve(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write sheet %s: %w", name, err)
	}
	return name, nil
}

// Open returns a read-only handle for a stored sheet.
func (a *Archive) Open(name string) (*os.File, error) {
	file, err := os.Open(a.resolve(name))
	if err != nil {
		return nil, fmt.Errorf("open sheet %s: %w", name, err)
	}
	return file, nil
}

// CleanupOlderThan removes sheets older than ttl and reports how many were
// deleted.
func (a *Archive) CleanupOlderThan(ttl time.Duration) (int, error) {
	cutoff := time.Now().Add(-ttl)
	removed := 0
	err := filepath.WalkDir(a.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("cleanup sheets: %w", err)
	}
	return removed, nil
}

func (a *Archive) resolve(name string) string {
	return filepath.Join(a.dir, filepath.Base(name))
}
