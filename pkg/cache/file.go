package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileCache keeps each diagram as a plain file named after its key. Entries
// older than maxAge are misses and are removed on read or by [FileCache.Prune].
type FileCache struct {
	dir    string
	maxAge time.Duration
}

// NewFileCache creates a cache rooted at dir, creating it if needed. A
// maxAge of zero keeps entries forever.
func NewFileCache(dir string, maxAge time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileCache{dir: dir, maxAge: maxAge}, nil
}

// path maps format:digest to dir/format/dd/digest.format.
func (c *FileCache) path(key string) (string, error) {
	format, digest, err := splitKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.dir, format, digest[:2], digest[2:]+"."+format), nil
}

func (c *FileCache) expired(info fs.FileInfo) bool {
	return c.maxAge > 0 && time.Since(info.ModTime()) > c.maxAge
}

func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path, err := c.path(key)
	if err != nil {
		return nil, false, err
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("stat cache entry: %w", err)
	}
	if c.expired(info) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read cache entry: %w", err)
	}
	return data, true, nil
}

// Put writes data through a temporary file so that readers never see a
// partial diagram.
func (c *FileCache) Put(ctx context.Context, key string, data []byte) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create cache entry: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache entry: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

func (c *FileCache) Delete(ctx context.Context, key string) error {
	path, err := c.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Prune removes every expired entry and returns how many were removed.
func (c *FileCache) Prune(ctx context.Context) (int, error) {
	return c.remove(ctx, c.expired)
}

// Clear removes every entry.
func (c *FileCache) Clear(ctx context.Context) (int, error) {
	return c.remove(ctx, func(fs.FileInfo) bool { return true })
}

func (c *FileCache) remove(ctx context.Context, match func(fs.FileInfo) bool) (int, error) {
	removed := 0
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if match(info) {
			if err := os.Remove(path); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// Dir returns the cache root.
func (c *FileCache) Dir() string { return c.dir }

func (c *FileCache) Close() error { return nil }

var _ Cache = (*FileCache)(nil)
