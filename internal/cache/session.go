// Package cache memoizes per-run lookups keyed by the ordered name tuple
// they were made for.
package cache

import (
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"
)

// Key identifies an ordered tuple of names.
type Key uint64

// KeyOf hashes the names in order. A separator byte keeps ("ab", "c") and
// ("a", "bc") apart.
func KeyOf(names ...string) Key {
	d := xxhash.New()
	for _, n := range names {
		d.WriteString(n)
		d.Write([]byte{0})
	}
	return Key(d.Sum64())
}

// Session is an unbounded in-memory cache that lives as long as the process.
// It is safe for concurrent use.
type Session[V any] struct {
	mu      sync.RWMutex
	entries map[Key]V
	group   singleflight.Group
}

// NewSession creates an empty session cache.
func NewSession[V any]() *Session[V] {
	return &Session[V]{entries: make(map[Key]V)}
}

// Get returns the value stored for names.
func (s *Session[V]) Get(names ...string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[KeyOf(names...)]
	return v, ok
}

// Put stores v for names, replacing any previous value.
func (s *Session[V]) Put(v V, names ...string) {
	s.mu.Lock()
	s.entries[KeyOf(names...)] = v
	s.mu.Unlock()
}

// GetOrCompute returns the cached value for names or computes it. The value is
// stored only when compute reports it as complete; an incomplete value goes
// to the caller that computed it and nowhere else. Concurrent misses for the
// same names share one computation, and a caller that joined an incomplete
// one computes again on its own. The returned bool is false only for the
// caller that ran compute.
func (s *Session[V]) GetOrCompute(compute func() (V, bool), names ...string) (V, bool) {
	key := KeyOf(names...)
	flight := strconv.FormatUint(uint64(key), 16)

	for {
		s.mu.RLock()
		v, ok := s.entries[key]
		s.mu.RUnlock()
		if ok {
			return v, true
		}

		computed := false
		res, _, _ := s.group.Do(flight, func() (any, error) {
			s.mu.RLock()
			v, ok := s.entries[key]
			s.mu.RUnlock()
			if ok {
				return entry[V]{v: v, stored: true}, nil
			}

			computed = true
			v, complete := compute()
			if complete {
				s.mu.Lock()
				s.entries[key] = v
				s.mu.Unlock()
			}
			return entry[V]{v: v, stored: complete}, nil
		})

		if e := res.(entry[V]); e.stored || computed {
			return e.v, !computed
		}
	}
}

type entry[V any] struct {
	v      V
	stored bool
}

// Len returns the number of cached entries.
func (s *Session[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
