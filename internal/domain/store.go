package domain

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// InMemoryStore is the unified store: canonical records indexed by ID,
// grouped per provider so a refresh can swap one provider's subset
// atomically. Readers always see the last published snapshot; a refresh in
// flight never exposes a half-written set.
type InMemoryStore struct {
	mu          sync.RWMutex
	byProvider  map[string]map[string]PricingRecord
	lastRefresh time.Time
}

// NewInMemoryStore creates an empty unified store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		mu:         sync.RWMutex{},
		byProvider: make(map[string]map[string]PricingRecord),
	}
}

// ReplaceProvider swaps one provider's entire subset. Records from a prior
// refresh that are absent from the new set are dropped. Duplicate IDs within
// the batch keep the first occurrence.
func (s *InMemoryStore) ReplaceProvider(providerName string, records []PricingRecord) {
	// Build the replacement map outside the lock, then publish.
	next := make(map[string]PricingRecord, len(records))
	for _, rec := range records {
		if _, exists := next[rec.ID]; exists {
			continue
		}
		next[rec.ID] = rec
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byProvider[providerName] = next
	s.lastRefresh = time.Now()
}

// All returns a snapshot of every record across all providers.
func (s *InMemoryStore) All() []PricingRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PricingRecord, 0, s.countLocked())
	for _, subset := range s.byProvider {
		for _, rec := range subset {
			out = append(out, rec)
		}
	}
	return out
}

// Get returns the record with the given ID or ErrNotFound.
func (s *InMemoryStore) Get(id string) (PricingRecord, error) {
	providerName, _, ok := strings.Cut(id, ":")
	if !ok {
		return PricingRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if subset, exists := s.byProvider[providerName]; exists {
		if rec, found := subset[id]; found {
			return rec, nil
		}
	}
	return PricingRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Count returns the total number of records.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLocked()
}

// CountByProvider returns the current record count per provider name.
func (s *InMemoryStore) CountByProvider() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int, len(s.byProvider))
	for name, subset := range s.byProvider {
		counts[name] = len(subset)
	}
	return counts
}

// LastRefresh returns the time of the most recent subset swap, or a zero
// time if nothing has been committed yet.
func (s *InMemoryStore) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}

func (s *InMemoryStore) countLocked() int {
	total := 0
	for _, subset := range s.byProvider {
		total += len(subset)
	}
	return total
}
