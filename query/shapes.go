// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package query

import (
	"sort"

	"github.com/kgaiser/spatialidx/geom"
	"github.com/kgaiser/spatialidx/index"
)

// RayHit is one cell intersected by a ray traversal, with the
// parametric distance along the ray at which the cell's cube/tet was
// entered, used to sort hits nearest-first.
type RayHit struct {
	Cell Cell
	T    float32
}

// Ray returns every live cell the ray intersects, nearest-first
// (spec.md §4.7). For a Tetree index the precise per-tet intersection
// (geom.RayTet) narrows the conservative cube-AABB test; for an Octree
// index the cube AABB test is already exact.
func Ray[Content any](ix *index.Index[Content], ray geom.Ray) []RayHit {
	var hits []RayHit
	ix.WithReadLock(func(v *index.View[Content]) {
		for _, key := range v.AllKeys() {
			cellAabb, err := v.CellAabb(key)
			if err != nil {
				continue
			}
			t, _, hit := geom.RayAabb(ray, cellAabb)
			if !hit {
				continue
			}
			if v.Kind() == index.TetreeKind {
				tet, err := v.CellTet(key)
				if err != nil {
					continue
				}
				tt, ok := geom.RayTet(ray, tet.Vertices())
				if !ok {
					continue
				}
				t = tt
			}
			hits = append(hits, RayHit{Cell: cellOf(v, key), T: t})
		}
	})
	sort.Slice(hits, func(i, j int) bool { return hits[i].T < hits[j].T })
	return hits
}

// Sphere returns every live cell classified intersecting or fully
// inside the given sphere (spec.md §4.7; completely_outside cells are
// dropped).
func Sphere[Content any](ix *index.Index[Content], sphere geom.Sphere) []Cell {
	var cells []Cell
	ix.WithReadLock(func(v *index.View[Content]) {
		for _, key := range v.AllKeys() {
			if v.Kind() == index.TetreeKind {
				tet, err := v.CellTet(key)
				if err != nil {
					continue
				}
				if geom.SphereTet(sphere, tet.Vertices()) == geom.CompletelyOutside {
					continue
				}
			} else {
				cellAabb, err := v.CellAabb(key)
				if err != nil {
					continue
				}
				if !aabbSphereIntersects(cellAabb, sphere) {
					continue
				}
			}
			cells = append(cells, cellOf(v, key))
		}
	})
	return cells
}

func aabbSphereIntersects(a geom.Aabb, s geom.Sphere) bool {
	nearest := nearestPointOnAabb(a, s.Center)
	return s.Center.DistanceTo(nearest) <= s.Radius
}

// Plane returns every live cell intersecting or on the positive side
// of plane (spec.md §4.7).
func Plane[Content any](ix *index.Index[Content], plane geom.Plane) []Cell {
	var cells []Cell
	ix.WithReadLock(func(v *index.View[Content]) {
		for _, key := range v.AllKeys() {
			cellAabb, err := v.CellAabb(key)
			if err != nil {
				continue
			}
			if geom.PlaneAabb(plane, cellAabb) == geom.Outside {
				continue
			}
			cells = append(cells, cellOf(v, key))
		}
	})
	return cells
}

// Frustum returns every live cell inside or intersecting frustum.
func Frustum[Content any](ix *index.Index[Content], frustum geom.Frustum) []Cell {
	var cells []Cell
	ix.WithReadLock(func(v *index.View[Content]) {
		for _, key := range v.AllKeys() {
			cellAabb, err := v.CellAabb(key)
			if err != nil {
				continue
			}
			if geom.FrustumAabb(frustum, cellAabb) == geom.Outside {
				continue
			}
			cells = append(cells, cellOf(v, key))
		}
	})
	return cells
}

// Containment returns every entity id whose position lies within
// bounds (a simple point-in-volume scan over the entities of every live
// cell).
func Containment[Content any](ix *index.Index[Content], bounds geom.Aabb) []uint64 {
	var ids []uint64
	ix.WithReadLock(func(v *index.View[Content]) {
		for _, key := range v.AllKeys() {
			n := v.NodeAt(key)
			if n == nil {
				continue
			}
			for _, id := range n.EntityIDs() {
				pos, err := v.Position(id)
				if err != nil {
					continue
				}
				if bounds.ContainsPoint(pos) {
					ids = append(ids, id)
				}
			}
		}
	})
	return ids
}

// BatchBounding runs Bounding independently for every volume in
// volumes, returning a result slice in the same order.
func BatchBounding[Content any](ix *index.Index[Content], volumes []geom.Aabb) [][]Cell {
	out := make([][]Cell, len(volumes))
	for i, vol := range volumes {
		out[i] = Bounding(ix, vol)
	}
	return out
}

func cellOf[Content any](v *index.View[Content], key index.Key) Cell {
	n := v.NodeAt(key)
	c := Cell{Key: key}
	if n != nil {
		c.EntityIDs = append([]uint64(nil), n.EntityIDs()...)
	}
	return c
}
