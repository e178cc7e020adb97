package presence

import (
	"context"
	"sync"

	"rollcall/pkg/domain"
)

// InMemoryStore keeps live presence in a mutex-guarded map. It intentionally
// favors clarity over performance.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[domain.Username]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[domain.Username]Record)}
}

func (s *InMemoryStore) Put(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Username] = record
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, username domain.Username) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, username)
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, username domain.Username) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if rec, ok := s.records[username]; ok {
		return rec, nil
	}
	return Record{}, ErrNotFound
}
