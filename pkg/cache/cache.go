// Package cache stores rendered diagrams so that unchanged layouts are not
// laid out by Graphviz again.
//
// Keys are derived from the render input with [Key] and carry the output
// format, so a cached entry is the diagram file itself:
//
//	<dir>/svg/3f/a2c1....svg
//
// Two implementations are provided:
//   - [FileCache]: one file per diagram, expired by modification time
//   - [Disabled]: stores nothing, for --no-cache
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
)

// ErrBadKey is returned for keys not built by [Key].
var ErrBadKey = errors.New("malformed cache key")

// Cache is a byte store keyed by [Key].
type Cache interface {
	// Get returns the diagram for key. A missing or expired entry is a
	// miss, not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key builds a cache key of the form format:sha256(parts...).
func Key(format string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return format + ":" + hex.EncodeToString(sum[:])
}

// splitKey returns the format and digest of a key built by [Key].
func splitKey(key string) (format, digest string, err error) {
	format, digest, ok := strings.Cut(key, ":")
	if !ok || format == "" || len(digest) != sha256.Size*2 || strings.ContainsAny(format, `/\.`) {
		return "", "", ErrBadKey
	}
	return format, digest, nil
}

// GetOrCompute returns the cached value for key, calling compute and
// storing its result on a miss. Cache failures are not fatal: a failed read
// recomputes and a failed write still returns the computed value.
func GetOrCompute(ctx context.Context, c Cache, key string, compute func() ([]byte, error)) (data []byte, hit bool, err error) {
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		return data, true, nil
	}
	data, err = compute()
	if err != nil {
		return nil, false, err
	}
	_ = c.Put(ctx, key, data)
	return data, false, nil
}

// Disabled never stores anything. It backs --no-cache.
var Disabled Cache = disabled{}

type disabled struct{}

func (disabled) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (disabled) Put(context.Context, string, []byte) error         { return nil }
func (disabled) Delete(context.Context, string) error              { return nil }
func (disabled) Close() error                                      { return nil }
