// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package query implements the spatial-index query engines (spec.md
// §4.7): k-nearest-neighbor, bounded-by/bounding ranged enumeration,
// ray traversal, sphere/plane/AABB/frustum queries, and batch query.
// Every entry point runs its traversal inside a single
// index.View.WithReadLock call so the returned slice is fully
// materialized before the lock is released, per spec.md §5.
package query

import (
	"container/heap"
	"sort"

	"github.com/kgaiser/spatialidx/geom"
	"github.com/kgaiser/spatialidx/index"
)

// Cell is one (key, entity-ids) pair returned by ranged queries.
type Cell struct {
	Key       index.Key
	EntityIDs []uint64
}

// KNearest returns up to k entity ids sorted by ascending distance to
// pos, each within maxDistance, using the priority-queue expansion
// algorithm of spec.md §4.7: seed from the cell containing pos (or
// every live cell, as a fallback), expand to neighbor cells while the
// heap is under-full or the nearest point of the frontier could still
// beat the current worst kept distance.
func KNearest[Content any](ix *index.Index[Content], pos geom.Vec3, k int, maxDistance float32) ([]uint64, error) {
	if k <= 0 {
		return nil, nil
	}

	var result []uint64
	var outerErr error

	ix.WithReadLock(func(v *index.View[Content]) {
		seed, err := v.KeyForPoint(pos, v.MaxDepth())
		if err != nil {
			outerErr = err
			return
		}

		queue := []index.Key{seed}
		if v.NodeAt(seed) == nil {
			queue = v.AllKeys() // fallback: cell not yet populated
		}

		visited := make(map[index.Key]bool)
		idSeen := make(map[uint64]bool)
		h := &maxHeap{}
		heap.Init(h)

		for len(queue) > 0 {
			key := queue[0]
			queue = queue[1:]
			if visited[key] {
				continue
			}
			visited[key] = true

			n := v.NodeAt(key)
			if n != nil {
				for _, id := range n.EntityIDs() {
					if idSeen[id] {
						continue
					}
					idSeen[id] = true
					entPos, err := v.Position(id)
					if err != nil {
						continue
					}
					d := pos.DistanceTo(entPos)
					if d > maxDistance {
						continue
					}
					heap.Push(h, heapItem{id: id, dist: d})
					for h.Len() > k {
						heap.Pop(h)
					}
				}
			}

			worst := float32(-1)
			if h.Len() == k {
				worst = (*h)[0].dist
			}
			cellAabb, err := v.CellAabb(key)
			if err != nil {
				continue
			}
			nearest := nearestPointOnAabb(cellAabb, pos)
			if h.Len() < k || pos.DistanceTo(nearest) < worst {
				var neighbors []index.Key
				if v.Kind() == index.TetreeKind {
					neighbors = v.FaceNeighbors4(key)
				} else {
					neighbors = v.Neighbors6(key)
				}
				for _, nb := range neighbors {
					if !visited[nb] {
						queue = append(queue, nb)
					}
				}
			}
		}

		items := make([]heapItem, len(*h))
		copy(items, *h)
		sort.Slice(items, func(i, j int) bool { return items[i].dist < items[j].dist })
		result = make([]uint64, len(items))
		for i, it := range items {
			result[i] = it.id
		}
	})

	return result, outerErr
}

func nearestPointOnAabb(a geom.Aabb, p geom.Vec3) geom.Vec3 {
	return geom.Vec3{
		X: clamp(p.X, a.Min.X, a.Max.X),
		Y: clamp(p.Y, a.Min.Y, a.Max.Y),
		Z: clamp(p.Z, a.Min.Z, a.Max.Z),
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type heapItem struct {
	id   uint64
	dist float32
}

// maxHeap keeps the worst (largest) distance at the top, so KNearest
// can pop it once the heap exceeds size k.
type maxHeap []heapItem

func (h maxHeap) Len() int            { return len(h) }
func (h maxHeap) Less(i, j int) bool  { return h[i].dist > h[j].dist }
func (h maxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x any)         { *h = append(*h, x.(heapItem)) }
func (h *maxHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// BoundedBy returns every live cell whose cube/tet is fully contained
// in bounds.
func BoundedBy[Content any](ix *index.Index[Content], bounds geom.Aabb) []Cell {
	return rangedScan(ix, func(cellAabb geom.Aabb) bool {
		return bounds.Contains(cellAabb)
	})
}

// Bounding returns every live cell whose cube/tet intersects bounds.
func Bounding[Content any](ix *index.Index[Content], bounds geom.Aabb) []Cell {
	return rangedScan(ix, func(cellAabb geom.Aabb) bool {
		return bounds.Intersects(cellAabb)
	})
}

// Enclosing returns the smallest live cell whose cube/tet fully
// contains volume, or ok=false if none does.
func Enclosing[Content any](ix *index.Index[Content], volume geom.Aabb) (cell Cell, ok bool) {
	var best *Cell
	var bestVolume float32

	ix.WithReadLock(func(v *index.View[Content]) {
		for _, key := range v.AllKeys() {
			cellAabb, err := v.CellAabb(key)
			if err != nil || !cellAabb.Contains(volume) {
				continue
			}
			extent := cellAabb.Max.Sub(cellAabb.Min)
			vol := extent.X * extent.Y * extent.Z
			if best == nil || vol < bestVolume {
				n := v.NodeAt(key)
				c := Cell{Key: key}
				if n != nil {
					c.EntityIDs = append([]uint64(nil), n.EntityIDs()...)
				}
				best = &c
				bestVolume = vol
			}
		}
	})

	if best == nil {
		return Cell{}, false
	}
	return *best, true
}

// rangedScan enumerates every live cell, testing each cell's AABB with
// predicate. This is a conservative but always-correct realization of
// spec.md §4.7's "derive a key range, then filter by the precise
// geometric predicate": the derivation step is AllKeys() (the node
// store is already sparse, so a full scan of live keys costs no more
// than the live cell count).
func rangedScan[Content any](ix *index.Index[Content], predicate func(geom.Aabb) bool) []Cell {
	var cells []Cell
	ix.WithReadLock(func(v *index.View[Content]) {
		for _, key := range v.AllKeys() {
			cellAabb, err := v.CellAabb(key)
			if err != nil {
				continue
			}
			if !predicate(cellAabb) {
				continue
			}
			n := v.NodeAt(key)
			c := Cell{Key: key}
			if n != nil {
				c.EntityIDs = append([]uint64(nil), n.EntityIDs()...)
			}
			cells = append(cells, c)
		}
	})
	return cells
}
