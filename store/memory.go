package store

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/etnz/finasync"
)

// MemoryStore keeps findings in process memory. They are lost at exit.
type MemoryStore struct {
	mu          sync.Mutex
	summaries   map[finasync.Category]string
	lastUpdated time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{summaries: make(map[finasync.Category]string)}
}

func (s *MemoryStore) Put(_ context.Context, category finasync.Category, summary string) error {
	if err := validate(category); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[category] = summary
	s.lastUpdated = clock()
	return nil
}

func (s *MemoryStore) GetAll(context.Context) (finasync.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := finasync.NewSnapshot()
	maps.Copy(snap.Summaries, s.summaries)
	snap.LastUpdated = s.lastUpdated
	return snap, nil
}

func (s *MemoryStore) Close() error { return nil }
