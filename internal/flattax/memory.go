package flattax

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process rule store. Lookups observe the latest Put.
type MemoryStore struct {
	mu    sync.RWMutex
	rules map[int64]Rule
	reads map[int64]int
}

// NewMemoryStore returns a store seeded with rules.
func NewMemoryStore(rules ...Rule) *MemoryStore {
	s := &MemoryStore{rules: make(map[int64]Rule, len(rules)), reads: map[int64]int{}}
	for _, r := range rules {
		s.rules[r.ID] = r
	}
	return s
}

// Put inserts or replaces a rule.
func (s *MemoryStore) Put(r Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[r.ID] = r
}

// Delete removes a rule.
func (s *MemoryStore) Delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rules, id)
}

// Reads reports how many lookups hit id.
func (s *MemoryStore) Reads(id int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads[id]
}

// Lookup implements Provider.
func (s *MemoryStore) Lookup(ctx context.Context, id int64) (Rule, error) {
	if err := ctx.Err(); err != nil {
		return Rule{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads[id]++
	r, ok := s.rules[id]
	if !ok {
		return Rule{}, fmt.Errorf("%w: id %d", ErrRuleNotFound, id)
	}
	if err := validate(r); err != nil {
		return Rule{}, fmt.Errorf("%w: id %d", err, id)
	}
	return r, nil
}
