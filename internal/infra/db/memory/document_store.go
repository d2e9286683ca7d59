package memory

import (
	"context"
	"fmt"
	"sync"
)

// DocumentStore keeps rendered documents in memory, standing in for object
// storage on local runs.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string][]byte)}
}

func (s *DocumentStore) Put(_ context.Context, key string, document []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = append([]byte(nil), document...)
	return "memory://" + key, nil
}

func (s *DocumentStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[key]
	if !ok {
		return nil, fmt.Errorf("document not found: %s", key)
	}
	return append([]byte(nil), doc...), nil
}
