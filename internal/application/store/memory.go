package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"cardeval/internal/application"
	"cardeval/pkg/platform/sentinel"
)

// InMemoryStore keeps records in a map. Used for local development and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]application.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[uuid.UUID]application.Record)}
}

func (s *InMemoryStore) Save(_ context.Context, record *application.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; exists {
		return sentinel.ErrConflict
	}
	s.records[record.ID] = *record
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*application.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &record, nil
}
