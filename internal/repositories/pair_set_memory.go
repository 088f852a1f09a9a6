package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type pairKey struct {
	left, right string
}

// MemoryPairSet is an in-memory implementation of PairSet.
type MemoryPairSet struct {
	pairs map[pairKey]int // insertion sequence
	seq   int
	mu    sync.RWMutex
}

// NewMemoryPairSet creates a new instance of MemoryPairSet.
func NewMemoryPairSet() *MemoryPairSet {
	return &MemoryPairSet{
		pairs: make(map[pairKey]int),
	}
}

// Add inserts the pair; the check and the insert happen under one lock.
func (s *MemoryPairSet) Add(_ context.Context, left, right string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{left, right}
	if _, ok := s.pairs[key]; ok {
		return fmt.Errorf("pair (%s, %s): %w", left, right, ErrDuplicate)
	}
	s.seq++
	s.pairs[key] = s.seq
	return nil
}

// Remove deletes the pair.
func (s *MemoryPairSet) Remove(_ context.Context, left, right string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{left, right}
	if _, ok := s.pairs[key]; !ok {
		return fmt.Errorf("pair (%s, %s): %w", left, right, ErrNotFound)
	}
	delete(s.pairs, key)
	return nil
}

// Exists reports whether the pair is present.
func (s *MemoryPairSet) Exists(_ context.Context, left, right string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.pairs[pairKey{left, right}]
	return ok, nil
}

// Contains returns the subset of rights paired with left.
func (s *MemoryPairSet) Contains(_ context.Context, left string, rights []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make(map[string]bool, len(rights))
	for _, right := range rights {
		if _, ok := s.pairs[pairKey{left, right}]; ok {
			found[right] = true
		}
	}
	return found, nil
}

// Rights lists the right keys paired with left in insertion order.
func (s *MemoryPairSet) Rights(_ context.Context, left string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type entry struct {
		right string
		seq   int
	}
	var entries []entry
	for key, seq := range s.pairs {
		if key.left == left {
			entries = append(entries, entry{key.right, seq})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	rights := make([]string, 0, len(entries))
	for _, e := range entries {
		rights = append(rights, e.right)
	}
	return rights, nil
}
