// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package node

import "testing"

func TestAddEntitySignalsSplit(t *testing.T) {
	n := NewNode[uint64]()

	if split := n.AddEntity(1, 2); split {
		t.Fatal("1 entity should not exceed max of 2")
	}
	if split := n.AddEntity(2, 2); split {
		t.Fatal("2 entities should not exceed max of 2")
	}
	if split := n.AddEntity(3, 2); !split {
		t.Fatal("3 entities should exceed max of 2")
	}
	if n.EntityCount() != 3 {
		t.Errorf("EntityCount = %d, want 3", n.EntityCount())
	}
}

func TestRemoveEntity(t *testing.T) {
	n := NewNode[uint64]()
	n.AddEntity(1, 10)
	n.AddEntity(2, 10)
	n.AddEntity(3, 10)

	if !n.RemoveEntity(2) {
		t.Fatal("expected RemoveEntity(2) to report removed")
	}
	if n.RemoveEntity(2) {
		t.Fatal("expected second RemoveEntity(2) to report absent")
	}
	if n.EntityCount() != 2 {
		t.Fatalf("EntityCount = %d, want 2", n.EntityCount())
	}

	remaining := map[uint64]bool{}
	for _, id := range n.EntityIDs() {
		remaining[id] = true
	}
	if !remaining[1] || !remaining[3] {
		t.Errorf("expected ids {1,3} remaining, got %v", n.EntityIDs())
	}
}

func TestIsEmptyRequiresNoEntitiesAndNoChildren(t *testing.T) {
	n := NewNode[uint64]()
	if !n.IsEmpty() {
		t.Fatal("fresh node should be empty")
	}

	n.SetChildBit(3)
	if n.IsEmpty() {
		t.Fatal("node with a child bit set is not empty")
	}
	n.ClearChildBit(3)
	if !n.IsEmpty() {
		t.Fatal("node should be empty again after clearing its only child bit")
	}

	n.AddEntity(1, 10)
	if n.IsEmpty() {
		t.Fatal("node with an entity is not empty")
	}
}

func TestPoolRecyclesAndCapsSize(t *testing.T) {
	p := NewPool[uint64](1)

	a := p.Get()
	a.AddEntity(1, 10)
	p.Put(a)

	b := p.Get()
	if b.EntityCount() != 0 {
		t.Fatal("node returned from pool must be reset")
	}
	p.Put(b)

	live, total := p.Stats()
	if live != 0 {
		t.Errorf("live = %d, want 0 after matched Get/Put", live)
	}
	if total == 0 {
		t.Error("expected at least one allocation tracked")
	}

	c, d := p.Get(), p.Get()
	p.Put(c)
	p.Put(d)
	if got := p.pooledCount.Load(); got != 1 {
		t.Errorf("pooledCount = %d, want 1 (maxSize)", got)
	}
}

func uint64Less(a, b uint64) bool { return a < b }

func TestStoreGetOrCreateAndRange(t *testing.T) {
	s := NewStore[uint64, uint64](NewPool[uint64](16), uint64Less)

	for _, k := range []uint64{50, 10, 30, 20, 40} {
		n := s.GetOrCreate(k)
		n.AddEntity(k, 100)
	}
	if s.Len() != 5 {
		t.Fatalf("Len = %d, want 5", s.Len())
	}

	keys := s.Keys()
	want := []uint64{10, 20, 30, 40, 50}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("Keys() = %v, want %v", keys, want)
		}
	}

	var seen []uint64
	s.Range(20, 40, func(key uint64, n *Node[uint64]) bool {
		seen = append(seen, key)
		return true
	})
	wantRange := []uint64{20, 30, 40}
	if len(seen) != len(wantRange) {
		t.Fatalf("Range(20,40) = %v, want %v", seen, wantRange)
	}
	for i, k := range wantRange {
		if seen[i] != k {
			t.Fatalf("Range(20,40) = %v, want %v", seen, wantRange)
		}
	}
}

func TestStoreDeleteRemovesKey(t *testing.T) {
	s := NewStore[uint64, uint64](NewPool[uint64](16), uint64Less)
	s.GetOrCreate(5)
	s.Delete(5)
	if s.Contains(5) {
		t.Fatal("expected key 5 to be gone after Delete")
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
}

// TestStoreDeleteDropsFromSortedIndex guards against a deleted key
// lingering in the sorted slice: Keys/Range/All must never surface a
// key whose node was removed.
func TestStoreDeleteDropsFromSortedIndex(t *testing.T) {
	s := NewStore[uint64, uint64](NewPool[uint64](16), uint64Less)
	for _, k := range []uint64{10, 20, 30} {
		s.GetOrCreate(k)
	}
	s.Delete(20)

	keys := s.Keys()
	want := []uint64{10, 30}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("Keys() = %v, want %v", keys, want)
		}
	}

	var seen []uint64
	s.All(func(key uint64, n *Node[uint64]) bool {
		seen = append(seen, key)
		if n == nil {
			t.Fatalf("All yielded deleted key %d with nil node", key)
		}
		return true
	})
	if len(seen) != 2 {
		t.Fatalf("All() visited %v, want two live keys", seen)
	}
}

// TestStoreDeleteThenRecreateDoesNotDuplicate guards against
// GetOrCreate re-appending a key the sorted index already dropped on
// Delete, which would otherwise surface the same cell twice from Keys.
func TestStoreDeleteThenRecreateDoesNotDuplicate(t *testing.T) {
	s := NewStore[uint64, uint64](NewPool[uint64](16), uint64Less)
	s.GetOrCreate(7)
	s.Delete(7)
	s.GetOrCreate(7)

	keys := s.Keys()
	if len(keys) != 1 || keys[0] != 7 {
		t.Fatalf("Keys() = %v, want [7]", keys)
	}
}
