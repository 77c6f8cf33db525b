// Package store persists the conference database: one flat JSON file
// mapping "ACRONYM_YEAR" keys to deadline records. Writes are atomic
// (temp file + rename) and mutations run under an advisory file lock
// so a manual edit and a tracking run cannot interleave.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"conftrack/internal/record"
)

// Store is a whole-file JSON database of deadline records.
type Store struct {
	path   string
	lock   *flock.Flock
	logger *zap.Logger
}

// New creates a store backed by the JSON file at path. The file does
// not need to exist yet.
func New(path string, logger *zap.Logger) *Store {
	return &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger,
	}
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the full database. A missing file is an empty database.
// A corrupt file is also treated as empty, loudly: losing one file of
// re-scrapable data beats wedging every tracking run.
func (s *Store) Load() (map[string]record.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]record.Record{}, nil
		}
		return nil, fmt.Errorf("failed to read database %s: %w", s.path, err)
	}

	db := map[string]record.Record{}
	if err := json.Unmarshal(data, &db); err != nil {
		s.logger.Warn("database file is corrupt, starting from empty",
			zap.String("path", s.path),
			zap.Error(err))
		return map[string]record.Record{}, nil
	}
	return db, nil
}

// Save writes the full database atomically.
func (s *Store) Save(db map[string]record.Record) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal database: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write database: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace database: %w", err)
	}
	return nil
}

// Update runs fn over the database with the advisory lock held across
// the whole read-mutate-write. fn may mutate db freely; returning an
// error abandons the write.
func (s *Store) Update(fn func(db map[string]record.Record) error) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock database: %w", err)
	}
	defer s.lock.Unlock()

	db, err := s.Load()
	if err != nil {
		return err
	}
	if err := fn(db); err != nil {
		return err
	}
	return s.Save(db)
}

// Upsert stores rec under key, replacing any previous record whole.
func (s *Store) Upsert(key string, rec record.Record) error {
	return s.Update(func(db map[string]record.Record) error {
		db[key] = rec
		return nil
	})
}

// Get returns a single record.
func (s *Store) Get(key string) (record.Record, bool, error) {
	db, err := s.Load()
	if err != nil {
		return record.Record{}, false, err
	}
	rec, ok := db[key]
	return rec, ok, nil
}

// Delete removes a record, reporting whether it existed.
func (s *Store) Delete(key string) (bool, error) {
	existed := false
	err := s.Update(func(db map[string]record.Record) error {
		_, existed = db[key]
		delete(db, key)
		return nil
	})
	return existed, err
}

// SyncFromCSV makes the store agree with a CSV snapshot of manual
// entries: every row is force-upserted, then manual records missing
// from the CSV are removed. AI-extracted records are never touched by
// the removal pass; the CSV is only authoritative for human entries.
func (s *Store) SyncFromCSV(rows map[string]record.Record) (added, removed int, err error) {
	err = s.Update(func(db map[string]record.Record) error {
		for key, rec := range rows {
			if _, ok := db[key]; !ok {
				added++
			}
			db[key] = rec
		}
		for key, rec := range db {
			if _, inCSV := rows[key]; inCSV {
				continue
			}
			if rec.IsManual() {
				s.logger.Info("removing manual record absent from CSV",
					zap.String("key", key))
				delete(db, key)
				removed++
			}
		}
		return nil
	})
	return added, removed, err
}
