// Package store persists layout snapshots for debugging and introspection.
//
// A snapshot is an opaque JSON document (the window manager state) saved
// under a human-readable name. Every save gets a fresh UUID, so the same name
// may be saved many times; lookups by name resolve to the newest record.
//
// # Backends
//
//   - [FileStore]: one JSON file per record under a directory
//   - [SQLiteStore]: a single SQLite database (pure Go driver)
//   - [RedisStore]: hashes plus a sorted index in Redis
//   - [MongoStore]: one document per record in a MongoDB collection
//
// [Open] picks a backend from a [Config] and wraps it so every save and
// load is reported through the observability hooks.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	serrors "github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/observability"
)

// ErrNotFound is returned by Load and Delete when no record matches the
// given ID or name.
var ErrNotFound = errors.New("snapshot not found")

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Record is one saved snapshot. List leaves Data empty.
type Record struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Store saves and retrieves snapshot records. Load and Delete accept either
// a record ID or a name.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (Record, error)
	Load(ctx context.Context, ref string) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, ref string) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend   string `toml:"backend" json:"backend"`
	Path      string `toml:"path" json:"path"`
	RedisAddr string `toml:"redis_addr" json:"redis_addr"`
	MongoURI  string `toml:"mongo_uri" json:"mongo_uri"`
	MongoDB   string `toml:"mongo_db" json:"mongo_db"`
}

// Open creates the store cfg describes. An empty backend means the file
// store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	backend := cfg.Backend
	if backend == "" {
		backend = BackendFile
	}
	switch backend {
	case BackendFile:
		s, err = NewFileStore(cfg.Path)
	case BackendSQLite:
		s, err = NewSQLiteStore(cfg.Path)
	case BackendRedis:
		s, err = NewRedisStore(ctx, cfg.RedisAddr)
	case BackendMongo:
		s, err = NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB)
	default:
		return nil, serrors.New(serrors.ErrCodeInvalidConfig, "unknown store backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return &instrumented{backend: backend, Store: s}, nil
}

// newRecord validates name and stamps a new record.
func newRecord(name string, data []byte) (Record, error) {
	if err := serrors.ValidateName(name); err != nil {
		return Record{}, err
	}
	if !json.Valid(data) {
		return Record{}, serrors.New(serrors.ErrCodeInvalidInput, "snapshot %q is not valid JSON", name)
	}
	return Record{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Data:      json.RawMessage(data),
	}, nil
}

func notFound(ref string) error {
	return serrors.Wrap(serrors.ErrCodeSnapshotNotFound, ErrNotFound, "no snapshot matches %q", ref)
}

// =============================================================================
// Instrumentation
// =============================================================================

type instrumented struct {
	backend string
	Store
}

func (s *instrumented) Save(ctx context.Context, name string, data []byte) (Record, error) {
	rec, err := s.Store.Save(ctx, name, data)
	observability.Store().OnSave(ctx, s.backend, name, len(data), err)
	return rec, err
}

func (s *instrumented) Load(ctx context.Context, ref string) (Record, error) {
	start := time.Now()
	rec, err := s.Store.Load(ctx, ref)
	observability.Store().OnLoad(ctx, s.backend, ref, time.Since(start), err)
	return rec, err
}

// Unwrap returns the backend behind the instrumentation.
func (s *instrumented) Unwrap() Store { return s.Store }
