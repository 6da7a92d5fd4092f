package store

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// FileStore keeps each record as a JSON file named after its ID.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-backed store.
// If baseDir is empty, defaults to ~/.config/stacktile/snapshots/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".config", "stacktile", "snapshots")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) recordPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Save(ctx context.Context, name string, data []byte) (Record, error) {
	rec, err := newRecord(name, data)
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return Record{}, fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(s.recordPath(rec.ID), raw, 0o600); err != nil {
		return Record{}, fmt.Errorf("write snapshot file: %w", err)
	}
	return rec, nil
}

func (s *FileStore) Load(ctx context.Context, ref string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(ref)
}

func (s *FileStore) load(ref string) (Record, error) {
	if filepath.Base(ref) == ref {
		rec, err := s.readFile(s.recordPath(ref))
		if err == nil {
			return rec, nil
		}
		if !os.IsNotExist(err) {
			return Record{}, err
		}
	}
	all, err := s.readAll()
	if err != nil {
		return Record{}, err
	}
	for _, rec := range all {
		if rec.Name == ref {
			return rec, nil
		}
	}
	return Record{}, notFound(ref)
}

func (s *FileStore) List(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for i := range all {
		all[i].Data = nil
	}
	return all, nil
}

func (s *FileStore) Delete(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(s.recordPath(rec.ID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove snapshot file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the directory holding the snapshot files.
func (s *FileStore) Path() string {
	return s.baseDir
}

func (s *FileStore) readFile(path string) (Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("parse snapshot %s: %w", filepath.Base(path), err)
	}
	return rec, nil
}

// readAll returns every readable record, newest first. Unparseable files
// are skipped.
func (s *FileStore) readAll() ([]Record, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}
	var out []Record
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		rec, err := s.readFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	slices.SortFunc(out, byNewest)
	return out, nil
}

var _ Store = (*FileStore)(nil)

// byNewest orders records newest first, breaking ties by ID.
func byNewest(a, b Record) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
