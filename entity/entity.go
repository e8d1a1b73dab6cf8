// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package entity is the shared entity manager used by both Octree and
// Tetree (spec.md §3, §6): the authoritative record of what an id's
// content is, where it is positioned, and which tree nodes currently
// hold a reference to it. The spatial trees themselves only ever store
// ids; all entity state lives here so multi-location ("spanning")
// entities have one place to be created, updated, and torn down.
//
// Loc is left as a type parameter so the same store backs both Octree
// node keys (morton code + level) and Tetree node keys (tetree index +
// level) without this package depending on either encoding.
package entity

import (
	"sync"

	"github.com/kgaiser/spatialidx/geom"
	"github.com/kgaiser/spatialidx/spatialerr"
)

// Store is the concurrency-safe entity table. The zero value is not
// usable; construct with New.
type Store[Id comparable, Content any, Loc comparable] struct {
	mu      sync.RWMutex
	records map[Id]*record[Content, Loc]
}

type record[Content any, Loc comparable] struct {
	content   Content
	position  geom.Vec3
	bounds    geom.Aabb
	hasBounds bool
	locations map[Loc]struct{}
}

// New returns an empty Store.
func New[Id comparable, Content any, Loc comparable]() *Store[Id, Content, Loc] {
	return &Store[Id, Content, Loc]{records: make(map[Id]*record[Content, Loc])}
}

// CreateOrUpdate inserts a new entity at id, or updates its content and
// position if id already exists. Existing locations are preserved on
// update; callers that relocate an entity must add/remove locations
// explicitly so the owning node(s) stay in sync.
func (s *Store[Id, Content, Loc]) CreateOrUpdate(id Id, content Content, pos geom.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		r = &record[Content, Loc]{locations: make(map[Loc]struct{})}
		s.records[id] = r
	}
	r.content = content
	r.position = pos
	r.hasBounds = false
}

// CreateOrUpdateBounds is CreateOrUpdate for an entity whose extent is
// a volume rather than a single point (spec.md's spanning entities).
func (s *Store[Id, Content, Loc]) CreateOrUpdateBounds(id Id, content Content, bounds geom.Aabb) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		r = &record[Content, Loc]{locations: make(map[Loc]struct{})}
		s.records[id] = r
	}
	r.content = content
	r.bounds = bounds
	r.hasBounds = true
	r.position = bounds.Center()
}

// Remove deletes id and all of its location references. It reports
// whether id existed.
func (s *Store[Id, Content, Loc]) Remove(id Id) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return false
	}
	delete(s.records, id)
	return true
}

// AddLocation records that node loc now holds a reference to id.
func (s *Store[Id, Content, Loc]) AddLocation(id Id, loc Loc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return spatialerr.New("AddLocation", spatialerr.UnknownEntity, "entity not found")
	}
	r.locations[loc] = struct{}{}
	return nil
}

// RemoveLocation drops loc from id's location set. It reports whether
// loc was present.
func (s *Store[Id, Content, Loc]) RemoveLocation(id Id, loc Loc) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return false, spatialerr.New("RemoveLocation", spatialerr.UnknownEntity, "entity not found")
	}
	if _, present := r.locations[loc]; !present {
		return false, nil
	}
	delete(r.locations, loc)
	return true, nil
}

// ClearLocations drops every recorded location for id, leaving the
// entity's content and position untouched. Used when an entity is
// about to be fully re-inserted (e.g. after a bounds change that
// requires re-subdivision).
func (s *Store[Id, Content, Loc]) ClearLocations(id Id) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return spatialerr.New("ClearLocations", spatialerr.UnknownEntity, "entity not found")
	}
	clear(r.locations)
	return nil
}

// Locations returns a snapshot of the node keys currently holding id.
func (s *Store[Id, Content, Loc]) Locations(id Id) ([]Loc, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, spatialerr.New("Locations", spatialerr.UnknownEntity, "entity not found")
	}
	out := make([]Loc, 0, len(r.locations))
	for loc := range r.locations {
		out = append(out, loc)
	}
	return out, nil
}

// SpanCount returns the number of nodes currently holding id.
func (s *Store[Id, Content, Loc]) SpanCount(id Id) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return 0, spatialerr.New("SpanCount", spatialerr.UnknownEntity, "entity not found")
	}
	return len(r.locations), nil
}

// GetPosition returns id's representative point (the insertion point,
// or a volumetric entity's bounds center).
func (s *Store[Id, Content, Loc]) GetPosition(id Id) (geom.Vec3, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return geom.Vec3{}, spatialerr.New("GetPosition", spatialerr.UnknownEntity, "entity not found")
	}
	return r.position, nil
}

// GetBounds returns id's bounding volume and whether one was recorded.
func (s *Store[Id, Content, Loc]) GetBounds(id Id) (geom.Aabb, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return geom.Aabb{}, false, spatialerr.New("GetBounds", spatialerr.UnknownEntity, "entity not found")
	}
	return r.bounds, r.hasBounds, nil
}

// GetContent returns id's stored content.
func (s *Store[Id, Content, Loc]) GetContent(id Id) (Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		var zero Content
		return zero, spatialerr.New("GetContent", spatialerr.UnknownEntity, "entity not found")
	}
	return r.content, nil
}

// Contains reports whether id is currently tracked.
func (s *Store[Id, Content, Loc]) Contains(id Id) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[id]
	return ok
}

// Len returns the number of tracked entities.
func (s *Store[Id, Content, Loc]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// AllPositions calls fn for every tracked entity's id and position, in
// unspecified order. fn must not call back into the Store.
func (s *Store[Id, Content, Loc]) AllPositions(fn func(id Id, pos geom.Vec3)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, r := range s.records {
		fn(id, r.position)
	}
}
