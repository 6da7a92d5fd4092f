package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	data       BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS snapshots_name ON snapshots(name, created_at);
`

// SQLiteStore keeps records in a single SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path.
// If path is empty, defaults to ~/.config/stacktile/stacktile.db
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		path = filepath.Join(home, ".config", "stacktile", "stacktile.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, name string, data []byte) (Record, error) {
	rec, err := newRecord(name, data)
	if err != nil {
		return Record{}, err
	}
	ts := rec.CreatedAt.UnixNano()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots(id, name, created_at, data) VALUES(?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = ?, created_at = ?, data = ?`,
		rec.ID, rec.Name, ts, []byte(rec.Data), rec.Name, ts, []byte(rec.Data))
	if err != nil {
		return Record{}, fmt.Errorf("insert snapshot: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) Load(ctx context.Context, ref string) (Record, error) {
	var (
		rec  Record
		ts   int64
		data []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, data FROM snapshots
		 WHERE id = ? OR name = ?
		 ORDER BY id = ? DESC, created_at DESC
		 LIMIT 1`, ref, ref, ref).Scan(&rec.ID, &rec.Name, &ts, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, notFound(ref)
	}
	if err != nil {
		return Record{}, fmt.Errorf("query snapshot: %w", err)
	}
	rec.CreatedAt = time.Unix(0, ts).UTC()
	rec.Data = data
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM snapshots ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec Record
			ts  int64
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &ts); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		rec.CreatedAt = time.Unix(0, ts).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, ref string) error {
	rec, err := s.Load(ctx, ref)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, rec.ID); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)
