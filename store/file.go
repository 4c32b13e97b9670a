package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/etnz/finasync"
	zlog "github.com/rs/zerolog/log"
)

// FileStore persists findings in a JSON file:
//
//	{
//	  "expenses": "Total: $500.00",
//	  "investments": "Total: $2,000.00",
//	  "last_updated": "2025-03-01 10:04:05"
//	}
//
// Every Put reads the whole file, modifies it and rewrites it entirely. There
// is no file locking, concurrent writers from other processes can lose
// updates.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path. The file is created
// on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Put(_ context.Context, category finasync.Category, summary string) error {
	if err := validate(category); err != nil {
		return err
	}
	content, err := s.load()
	if err != nil {
		return err
	}
	content[string(category)] = summary
	content[finasync.LastUpdatedKey] = clock().Format(finasync.TimeLayout)

	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode cache: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write cache file %q: %w", s.path, err)
	}
	zlog.Debug().Str("file", s.path).Str("category", string(category)).Msg("cache updated")
	return nil
}

func (s *FileStore) GetAll(context.Context) (finasync.Snapshot, error) {
	snap := finasync.NewSnapshot()
	content, err := s.load()
	if err != nil {
		return snap, err
	}
	for k, v := range content {
		if k == finasync.LastUpdatedKey {
			t, err := time.ParseInLocation(finasync.TimeLayout, v, time.Local)
			if err != nil {
				zlog.Warn().Str("file", s.path).Str("last_updated", v).Msg("ignoring invalid timestamp")
				continue
			}
			snap.LastUpdated = t
			continue
		}
		snap.Summaries[finasync.Category(k)] = v
	}
	return snap, nil
}

// load reads the file content, a missing file is an empty cache.
func (s *FileStore) load() (map[string]string, error) {
	content := make(map[string]string)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return content, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read cache file %q: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return content, nil
	}
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("format error %q: %w", s.path, err)
	}
	return content, nil
}

func (s *FileStore) Close() error { return nil }
