package cache

import (
	"iter"
	"sync"
	"sync/atomic"
)

// Store is a generic keyed store with create-or-reuse semantics and no
// eviction. Entries live until they are explicitly deleted or the store is
// cleared, which makes Store suitable as the owning arena for long-lived
// GPU resources.
//
// Iteration order is insertion order. Store is safe for concurrent use,
// although the rendering core only touches it from one goroutine.
// Store must not be copied after creation (has mutex).
type Store[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]V
	order   []K

	// Statistics (atomic for lock-free reads)
	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates an empty store.
func New[K comparable, V any]() *Store[K, V] {
	return &Store[K, V]{
		entries: make(map[K]V),
	}
}

// Get retrieves a value by key.
// Returns (value, true) if found, (zero, false) otherwise.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	v, ok := s.entries[key]
	s.mu.Unlock()

	if ok {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
	return v, ok
}

// GetOrCreate returns the stored value for key, or calls create and stores
// its result. The created flag reports whether create ran.
//
// create is called under lock so that two callers never build the same
// entry twice. If create fails, nothing is stored and the error is returned.
func (s *Store[K, V]) GetOrCreate(key K, create func() (V, error)) (v V, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[key]; ok {
		s.hits.Add(1)
		return existing, false, nil
	}
	s.misses.Add(1)

	v, err = create()
	if err != nil {
		var zero V
		return zero, false, err
	}
	s.entries[key] = v
	s.order = append(s.order, key)
	return v, true, nil
}

// Replace stores value under key and returns the previous value, if any.
// A replaced key keeps its original position in iteration order.
func (s *Store[K, V]) Replace(key K, value V) (old V, replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, replaced = s.entries[key]
	s.entries[key] = value
	if !replaced {
		s.order = append(s.order, key)
	}
	return old, replaced
}

// Delete removes an entry and returns its value.
func (s *Store[K, V]) Delete(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries[key]
	if !ok {
		return v, false
	}
	delete(s.entries, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return v, true
}

// Clear removes all entries. Statistics are kept.
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[K]V)
	s.order = nil
}

// Len returns the number of entries.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// All iterates over a snapshot of the entries in insertion order.
// Mutating the store during iteration is allowed and does not affect the
// snapshot being iterated.
func (s *Store[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		s.mu.Lock()
		keys := make([]K, len(s.order))
		copy(keys, s.order)
		values := make([]V, len(keys))
		for i, k := range keys {
			values[i] = s.entries[k]
		}
		s.mu.Unlock()

		for i, k := range keys {
			if !yield(k, values[i]) {
				return
			}
		}
	}
}

// Stats returns store statistics.
func (s *Store[K, V]) Stats() Stats {
	hits := s.hits.Load()
	misses := s.misses.Load()

	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	return Stats{
		Len:     s.Len(),
		Hits:    hits,
		Misses:  misses,
		HitRate: rate,
	}
}

// Stats contains store statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Hits counts lookups that found an entry.
	Hits uint64
	// Misses counts lookups that found nothing, including lookups that
	// went on to create the entry.
	Misses uint64
	// HitRate is Hits / (Hits + Misses), 0 when nothing was looked up.
	HitRate float64
}
