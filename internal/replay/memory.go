package replay

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Create(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[rec.TableID]; ok {
		return ErrExists
	}
	rec.Players = slices.Clone(rec.Players)
	rec.Turns = slices.Clone(rec.Turns)
	s.records[rec.TableID] = &rec
	return nil
}

func (s *MemoryStore) Append(_ context.Context, tableID string, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[tableID]
	if !ok {
		return ErrNotFound
	}
	rec.Turns = append(rec.Turns, turn)
	return nil
}

func (s *MemoryStore) Load(_ context.Context, tableID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[tableID]
	if !ok {
		return Record{}, ErrNotFound
	}
	out := *rec
	out.Players = slices.Clone(rec.Players)
	out.Turns = slices.Clone(rec.Turns)
	return out, nil
}
