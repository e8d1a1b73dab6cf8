// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package node

import "sort"

// Store is the sparse key→node map (spec.md §4.5): O(1) membership via
// the map, ordered iteration and ordered range queries via a sorted
// key index kept alongside it. Key is the node key used by the
// enclosing index (spec.md §3: a Morton code or tetree index, paired
// with its level since a bare code does not disambiguate level on its
// own), ordered by less so that range queries correspond to spatial
// locality.
//
// Store holds no lock of its own; the enclosing spatial index's
// read/write lock guards every call (spec.md §5).
type Store[Key comparable, Id comparable] struct {
	nodes  map[Key]*Node[Id]
	sorted []Key // kept sorted ascending by less; rebuilt lazily after churn
	dirty  bool
	less   func(a, b Key) bool
	pool   *Pool[Id]
}

// NewStore returns an empty Store backed by pool for node recycling
// and ordered by less. A nil pool disables recycling.
func NewStore[Key comparable, Id comparable](pool *Pool[Id], less func(a, b Key) bool) *Store[Key, Id] {
	return &Store[Key, Id]{nodes: make(map[Key]*Node[Id]), pool: pool, less: less}
}

// Get returns the node at key, or nil if the cell is empty.
func (s *Store[Key, Id]) Get(key Key) *Node[Id] {
	return s.nodes[key]
}

// GetOrCreate returns the node at key, allocating (from the pool) and
// registering one if absent.
func (s *Store[Key, Id]) GetOrCreate(key Key) *Node[Id] {
	if n, ok := s.nodes[key]; ok {
		return n
	}
	n := s.pool.Get()
	s.nodes[key] = n
	s.sorted = append(s.sorted, key)
	s.dirty = true
	return n
}

// Delete removes the node at key (if present) and returns it to the
// pool. Callers are responsible for detaching it from its parent's
// children_mask first. sorted is kept consistent with nodes immediately
// (not just marked dirty), so a subsequent Keys/Range/All never yields a
// deleted key.
func (s *Store[Key, Id]) Delete(key Key) {
	n, ok := s.nodes[key]
	if !ok {
		return
	}
	delete(s.nodes, key)
	s.pool.Put(n)

	s.ensureSorted()
	i := sort.Search(len(s.sorted), func(i int) bool { return !s.less(s.sorted[i], key) })
	if i < len(s.sorted) && s.sorted[i] == key {
		s.sorted = append(s.sorted[:i], s.sorted[i+1:]...)
	}
}

// Len returns the number of live (non-empty-cell) keys.
func (s *Store[Key, Id]) Len() int { return len(s.nodes) }

// Contains reports whether key has a live node.
func (s *Store[Key, Id]) Contains(key Key) bool {
	_, ok := s.nodes[key]
	return ok
}

func (s *Store[Key, Id]) ensureSorted() {
	if !s.dirty {
		return
	}
	sort.Slice(s.sorted, func(i, j int) bool { return s.less(s.sorted[i], s.sorted[j]) })
	s.dirty = false
}

// Keys returns every live key in ascending order.
func (s *Store[Key, Id]) Keys() []Key {
	s.ensureSorted()
	out := make([]Key, len(s.sorted))
	copy(out, s.sorted)
	return out
}

// Range calls fn for every live key k with lo <= k <= hi (per less), in
// ascending order, stopping early if fn returns false. This backs the
// query engine's bounded/bounding enumeration (spec.md §4.6, §4.7).
func (s *Store[Key, Id]) Range(lo, hi Key, fn func(key Key, n *Node[Id]) bool) {
	s.ensureSorted()
	i := sort.Search(len(s.sorted), func(i int) bool { return !s.less(s.sorted[i], lo) })
	for ; i < len(s.sorted); i++ {
		k := s.sorted[i]
		if s.less(hi, k) {
			return
		}
		if !fn(k, s.nodes[k]) {
			return
		}
	}
}

// All calls fn for every live key, in ascending order, stopping early
// if fn returns false.
func (s *Store[Key, Id]) All(fn func(key Key, n *Node[Id]) bool) {
	s.ensureSorted()
	for _, k := range s.sorted {
		if !fn(k, s.nodes[k]) {
			return
		}
	}
}

// Compact drops any stale entries from the sorted index whose backing
// node was deleted out of band. Delete already keeps sorted and nodes
// consistent, so this is a cheap no-op safety net; kept for parity
// with the bitset/sparse packages' Compact convention.
func (s *Store[Key, Id]) Compact() {
	if !s.dirty {
		return
	}
	kept := s.sorted[:0]
	for _, k := range s.sorted {
		if _, ok := s.nodes[k]; ok {
			kept = append(kept, k)
		}
	}
	s.sorted = kept
	s.dirty = true
	s.ensureSorted()
}
