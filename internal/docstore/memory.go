package docstore

import (
	"context"
	"sync"
)

type memoryDoc struct {
	data    []byte
	version int64
}

// MemoryStore is an in-process Store used by tests and the seed tool.
type MemoryStore struct {
	mu   sync.Mutex
	docs map[string]memoryDoc

	// FailNextSave forces the next Save to return the given error, leaving
	// the stored document untouched. Test hook for persistence-failure paths.
	FailNextSave error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]memoryDoc)}
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[key]
	if !ok {
		return nil, 0, nil
	}

	cp := make([]byte, len(doc.data))
	copy(cp, doc.data)
	return cp, doc.version, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, data []byte, expectedVersion int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailNextSave != nil {
		err := s.FailNextSave
		s.FailNextSave = nil
		return 0, err
	}

	current := s.docs[key].version
	if current != expectedVersion {
		return 0, ErrVersionConflict
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	s.docs[key] = memoryDoc{data: cp, version: current + 1}
	return current + 1, nil
}
