// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package similarity

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store persists a Cache. Save must make the new mapping visible only once
// it is complete.
type Store interface {
	// Location names the store in log and error messages.
	Location() string

	// Exists reports whether a previously saved cache is available.
	Exists(ctx context.Context) (bool, error)

	// Load reads the saved cache. A store whose contents cannot be parsed
	// returns an error wrapping ErrCacheCorrupt.
	Load(ctx context.Context) (*Cache, error)

	// Save replaces the stored cache with c.
	Save(ctx context.Context, c *Cache) error
}

// FileStore keeps the cache as a line-oriented text file.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Location returns the file path.
func (s *FileStore) Location() string { return s.Path }

// Exists reports whether the cache file is present.
func (s *FileStore) Exists(ctx context.Context) (bool, error) {
	_, err := os.Stat(s.Path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("checking similarity cache %s: %w", s.Path, err)
}

// Load parses the cache file.
func (s *FileStore) Load(ctx context.Context) (*Cache, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening similarity cache: %w", err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return c, nil
}

// Save writes the cache to a temporary file next to Path, then renames it
// into place.
func (s *FileStore) Save(ctx context.Context, c *Cache) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := Encode(tmp, c); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp cache file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("renaming temp cache file: %w", err)
	}
	return nil
}
