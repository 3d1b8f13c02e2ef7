package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/ums-portal/internal/errors"
)

// InMemoryStore keeps sessions in process memory. Sessions are lost on restart.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Record
	now      func() time.Time
}

var _ Store = (*InMemoryStore)(nil)

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]Record),
		now:      time.Now,
	}
}

func (s *InMemoryStore) Get(_ context.Context, key string) (Record, error) {
	if key == "" {
		return Record{}, fmt.Errorf("key is required")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.sessions[key]
	if !ok || record.Expired(s.now()) {
		return Record{}, apperrors.ErrSessionNotFound
	}
	return record, nil
}

func (s *InMemoryStore) Upsert(_ context.Context, key string, record Record) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[key] = record
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, key)
	return nil
}

func (s *InMemoryStore) DeleteExpired(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for key, record := range s.sessions {
		if record.Expired(before) {
			delete(s.sessions, key)
			deleted++
		}
	}
	return deleted, nil
}

// Len is the number of stored records, expired ones included.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
