package dabs

import (
	"context"
	"sync"
)

// MemoryStore держит записи в памяти. Для тестов и STORE_DRIVER=memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if raw, ok := s.data[userID]; ok {
		if rec := decodeOrNil("memory", userID, raw); rec != nil {
			return rec, nil
		}
	}

	rec := NewRecord()
	raw, err := rec.Encode()
	if err != nil {
		return nil, err
	}
	s.data[userID] = raw
	return rec, nil
}

func (s *MemoryStore) Put(_ context.Context, userID string, rec *Record) error {
	raw, err := rec.Encode()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[userID] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) All(_ context.Context) (map[string]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*Record, len(s.data))
	for id, raw := range s.data {
		if rec := decodeOrNil("memory", id, raw); rec != nil {
			out[id] = rec
		}
	}
	return out, nil
}

// PutRaw кладёт сырые байты. Нужен тестам битых записей.
func (s *MemoryStore) PutRaw(userID string, raw []byte) {
	s.mu.Lock()
	s.data[userID] = raw
	s.mu.Unlock()
}
