package report

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUStore is an in-memory LRU cache that delegates to a backing Store on miss.
type LRUStore struct {
	cache *lru.Cache[string, *RunResult]
	back  Store
}

// NewLRUStore creates an LRU cache holding up to size results in front of
// back. Sizes below 1 are raised to 1.
func NewLRUStore(size int, back Store) *LRUStore {
	if size < 1 {
		size = 1
	}
	cache, _ := lru.New[string, *RunResult](size) // only fails for size <= 0
	return &LRUStore{cache: cache, back: back}
}

// Save caches the result and writes it through to the backing store.
func (s *LRUStore) Save(result *RunResult) error {
	s.cache.Add(result.ID, result)
	return s.back.Save(result)
}

// Load serves from the cache, falling back to the backing store and
// promoting what it finds.
func (s *LRUStore) Load(runID string) (*RunResult, error) {
	if r, ok := s.cache.Get(runID); ok {
		return r, nil
	}
	r, err := s.back.Load(runID)
	if err != nil {
		return nil, err
	}
	s.cache.Add(runID, r)
	return r, nil
}

// Len returns the number of cached results.
func (s *LRUStore) Len() int {
	return s.cache.Len()
}
