package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/Rrens/sitepublish/internal/domain"
)

type collection struct {
	order []string
	docs  map[string][]byte
}

// Store is an in-process domain.DocumentStore used for tests and local development
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewStore creates an empty memory store
func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

// Get retrieves a document, returning (nil, nil) when it does not exist
func (s *Store) Get(ctx context.Context, coll, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[coll]
	if !ok {
		return nil, nil
	}
	data, ok := c.docs[id]
	if !ok {
		return nil, nil
	}
	return &domain.Document{ID: id, Data: clone(data)}, nil
}

// Set writes a document. With merge, top-level fields of payload replace those of the stored document.
func (s *Store) Set(ctx context.Context, coll, id string, payload []byte, merge bool) error {
	if err := domain.ValidatePayload(payload); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[coll]
	if !ok {
		c = &collection{docs: make(map[string][]byte)}
		s.collections[coll] = c
	}

	existing, exists := c.docs[id]
	if merge && exists {
		merged, err := domain.MergePayload(existing, payload)
		if err != nil {
			return err
		}
		payload = merged
	}

	if !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = clone(payload)
	return nil
}

// Update merges patch into an existing document
func (s *Store) Update(ctx context.Context, coll, id string, patch []byte) (bool, error) {
	if err := domain.ValidatePayload(patch); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[coll]
	if !ok {
		return false, nil
	}
	existing, ok := c.docs[id]
	if !ok {
		return false, nil
	}

	merged, err := domain.MergePayload(existing, patch)
	if err != nil {
		return false, err
	}
	c.docs[id] = merged
	return true, nil
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *Store) Delete(ctx context.Context, coll, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[coll]
	if !ok {
		return nil
	}
	if _, ok := c.docs[id]; !ok {
		return nil
	}
	delete(c.docs, id)
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns the documents of a collection matching every filter, in insertion order
func (s *Store) List(ctx context.Context, coll string, filters ...domain.Filter) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[coll]
	if !ok {
		return nil, nil
	}

	var docs []domain.Document
	for _, id := range c.order {
		data := c.docs[id]
		if len(filters) > 0 {
			var fields map[string]any
			if err := json.Unmarshal(data, &fields); err != nil {
				continue
			}
			if !domain.Matches(fields, filters) {
				continue
			}
		}
		docs = append(docs, domain.Document{ID: id, Data: clone(data)})
	}
	return docs, nil
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
