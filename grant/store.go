package grant

import (
	"sort"
	"sync"

	"github.com/jmgilman/go/scopedfs/errors"
)

// Store persists grants keyed by tree URI. Get and Delete report
// CodeNotFound for unknown URIs. Implementations must be safe for
// concurrent use.
type Store interface {
	Put(g Grant) error
	Get(uri string) (Grant, error)
	List() ([]Grant, error)
	Delete(uri string) error
	Close() error
}

// MemoryStore is a Store that lives for the process lifetime.
type MemoryStore struct {
	mu     sync.RWMutex
	grants map[string]Grant
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{grants: make(map[string]Grant)}
}

// Put implements Store.
func (s *MemoryStore) Put(g Grant) error {
	if g.URI == "" {
		return errors.New(errors.CodeInvalidInput, "grant has no URI")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[g.URI] = g
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(uri string) (Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.grants[uri]
	if !ok {
		return Grant{}, errors.WithContext(errors.New(errors.CodeNotFound, "no grant for URI"), "uri", uri)
	}
	return g, nil
}

// List implements Store. Grants are ordered by URI.
func (s *MemoryStore) List() ([]Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Grant, 0, len(s.grants))
	for _, g := range s.grants {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.grants[uri]; !ok {
		return errors.WithContext(errors.New(errors.CodeNotFound, "no grant for URI"), "uri", uri)
	}
	delete(s.grants, uri)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	return nil
}
