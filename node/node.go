// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package node implements the spatial index's node store (spec.md
// §4.5): a sparse key→node map with O(1) membership, ordered
// iteration, and ordered range queries over the key space, plus the
// node object itself and its optional recycling pool.
//
// Package node holds no locks of its own; every exported method
// assumes the caller already holds the enclosing index's read or
// write lock (spec.md §4.4, §5), the same contract the entity store
// follows.
package node

import "github.com/kgaiser/spatialidx/internal/sparse"

// Node is one sparse-tree cell: the entity ids currently stored at
// this key, and a popcount-compressed presence array over its (up to
// 8) children. Both Octree and Tetree branch 8-wide, so one Node type
// serves both.
type Node[Id comparable] struct {
	entityIDs []Id
	present   map[Id]int // id -> index into entityIDs, for O(1) removal
	children  sparse.Array[struct{}]
}

// NewNode returns an empty node, typically obtained from a Pool rather
// than constructed directly on a hot insert path.
func NewNode[Id comparable]() *Node[Id] {
	return &Node[Id]{present: make(map[Id]int)}
}

// AddEntity adds id to the node, reporting true iff the entity count
// now exceeds maxEntitiesPerNode (the subdivision-candidate signal of
// spec.md §4.5/§4.6). Adding an id already present is a no-op.
func (n *Node[Id]) AddEntity(id Id, maxEntitiesPerNode uint32) bool {
	if _, ok := n.present[id]; ok {
		return uint32(len(n.entityIDs)) > maxEntitiesPerNode
	}
	n.present[id] = len(n.entityIDs)
	n.entityIDs = append(n.entityIDs, id)
	return uint32(len(n.entityIDs)) > maxEntitiesPerNode
}

// RemoveEntity removes id, reporting whether it was present. The
// remaining ids keep their insertion order; the ids after the removed
// one shift down a slot, so removal is O(entity count).
func (n *Node[Id]) RemoveEntity(id Id) bool {
	i, ok := n.present[id]
	if !ok {
		return false
	}
	copy(n.entityIDs[i:], n.entityIDs[i+1:])
	n.entityIDs = n.entityIDs[:len(n.entityIDs)-1]
	for j := i; j < len(n.entityIDs); j++ {
		n.present[n.entityIDs[j]] = j
	}
	delete(n.present, id)
	return true
}

// Clear empties the node's entity list but preserves its children_mask.
func (n *Node[Id]) Clear() {
	n.entityIDs = n.entityIDs[:0]
	for k := range n.present {
		delete(n.present, k)
	}
}

// reset returns the node to its zero state, including children_mask,
// for reuse from a Pool.
func (n *Node[Id]) reset() {
	n.Clear()
	n.children = sparse.Array[struct{}]{}
}

// EntityCount returns the number of entities stored directly at this node.
func (n *Node[Id]) EntityCount() int { return len(n.entityIDs) }

// EntityIDs returns the node's entity ids. The slice is owned by the
// node; callers must not retain it across a mutating call.
func (n *Node[Id]) EntityIDs() []Id { return n.entityIDs }

// IsEmpty reports whether the node has no entities and no children
// (spec.md §4.1's emptiness invariant: "a node is empty iff entity_ids
// is empty AND children_mask == 0").
func (n *Node[Id]) IsEmpty() bool { return len(n.entityIDs) == 0 && n.children.Len() == 0 }

// ChildrenMask returns the bitmask of existing children (bit i set iff
// child octant/local-index i exists in the node store), derived from
// the underlying popcount-compressed presence array.
func (n *Node[Id]) ChildrenMask() uint8 {
	var mask uint8
	for _, i := range n.children.All() {
		mask |= 1 << i
	}
	return mask
}

// SetChildBit records that child i now exists.
func (n *Node[Id]) SetChildBit(i uint8) { n.children.InsertAt(uint(i), struct{}{}) }

// ClearChildBit records that child i no longer exists.
func (n *Node[Id]) ClearChildBit(i uint8) { n.children.DeleteAt(uint(i)) }

// HasChild reports whether child i exists.
func (n *Node[Id]) HasChild(i uint8) bool { return n.children.Test(uint(i)) }
