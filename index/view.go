// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package index

import (
	"github.com/kgaiser/spatialidx/geom"
	"github.com/kgaiser/spatialidx/internal/morton"
	"github.com/kgaiser/spatialidx/internal/tetree"
	"github.com/kgaiser/spatialidx/node"
	"github.com/kgaiser/spatialidx/spatialerr"
)

// View grants the query package read access to an Index's internals
// for the duration of a single WithReadLock call. Every accessor must
// be called, and every result fully consumed or copied, before the
// callback returns: nothing obtained from a View may be retained past
// it (spec.md §5's "materialize before releasing the lock").
type View[Content any] struct {
	ix *Index[Content]
}

// WithReadLock runs fn with a View over ix, holding the read lock for
// fn's entire duration.
func (ix *Index[Content]) WithReadLock(fn func(v *View[Content])) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	fn(&View[Content]{ix: ix})
}

// Kind returns which key algebra the index uses.
func (v *View[Content]) Kind() Kind { return v.ix.kind }

// MaxDepth returns the index's configured max depth.
func (v *View[Content]) MaxDepth() uint8 { return v.ix.cfg.MaxDepth }

// NodeAt returns the node at key, or nil if the cell is empty.
func (v *View[Content]) NodeAt(key Key) *node.Node[uint64] { return v.ix.nodes.Get(key) }

// AllKeys returns every live key, ascending.
func (v *View[Content]) AllKeys() []Key { return v.ix.nodes.Keys() }

// RangeKeys calls fn for every live key k with lo <= k <= hi.
func (v *View[Content]) RangeKeys(lo, hi Key, fn func(Key, *node.Node[uint64]) bool) {
	v.ix.nodes.Range(lo, hi, fn)
}

// KeyForPoint computes the key of the cell at level containing pos,
// without requiring the cell to exist.
func (v *View[Content]) KeyForPoint(pos geom.Vec3, level uint8) (Key, error) {
	return v.ix.keyForPoint(pos, level)
}

// Position returns id's representative position.
func (v *View[Content]) Position(id uint64) (geom.Vec3, error) { return v.ix.entities.GetPosition(id) }

// Content returns id's stored content.
func (v *View[Content]) Content(id uint64) (Content, error) { return v.ix.entities.GetContent(id) }

// Bounds returns id's bounding volume, if any.
func (v *View[Content]) Bounds(id uint64) (geom.Aabb, bool, error) { return v.ix.entities.GetBounds(id) }

// CellAabb returns the AABB of the cube/tet cell addressed by key.
func (v *View[Content]) CellAabb(key Key) (geom.Aabb, error) {
	if v.ix.kind == TetreeKind {
		tet, err := tetree.TetOf(key.Code, key.Level)
		if err != nil {
			return geom.Aabb{}, err
		}
		return tetAabb(tet), nil
	}
	x, y, z := morton.Decode(key.Code)
	size := float32(morton.CellSize(key.Level))
	min := geom.Vec3{X: float32(x), Y: float32(y), Z: float32(z)}
	max := geom.Vec3{X: float32(x) + size, Y: float32(y) + size, Z: float32(z) + size}
	return geom.Aabb{Min: min, Max: max}, nil
}

// CellTet returns the precise tetrahedron for a Tetree cell key; it is
// an error to call this on an Octree index.
func (v *View[Content]) CellTet(key Key) (geom.Tet, error) {
	if v.ix.kind != TetreeKind {
		return geom.Tet{}, spatialerr.New("CellTet", spatialerr.InvalidConfig, "not a tetree index")
	}
	t, err := tetree.TetOf(key.Code, key.Level)
	if err != nil {
		return geom.Tet{}, err
	}
	return geom.Tet{X: t.X, Y: t.Y, Z: t.Z, Level: t.Level, Type: t.Type}, nil
}

// tetAabb is the conservative bounding box of a tetree cell: the
// enclosing cube, since every one of the 6 canonical tets is contained
// within its cube (a cheap, always-valid over-approximation used for
// key-range derivation; precise containment still uses geom.PointInTet
// on the reconstructed tet).
func tetAabb(t tetree.Tet) geom.Aabb {
	size := float32(morton.CellSize(t.Level))
	min := geom.Vec3{X: float32(t.X), Y: float32(t.Y), Z: float32(t.Z)}
	max := min.Add(geom.Vec3{X: size, Y: size, Z: size})
	return geom.Aabb{Min: min, Max: max}
}

// Neighbors6 returns the 6 axis-aligned same-level neighbor keys of an
// Octree cell (spec.md §4.7's k-NN expansion hook), skipping any that
// would fall outside the addressable coordinate range.
func (v *View[Content]) Neighbors6(key Key) []Key {
	if v.ix.kind == TetreeKind {
		return nil
	}
	x, y, z := morton.Decode(key.Code)
	size := morton.CellSize(key.Level)
	var out []Key
	deltas := [6][3]int64{
		{int64(size), 0, 0}, {-int64(size), 0, 0},
		{0, int64(size), 0}, {0, -int64(size), 0},
		{0, 0, int64(size)}, {0, 0, -int64(size)},
	}
	for _, d := range deltas {
		nx, ny, nz := int64(x)+d[0], int64(y)+d[1], int64(z)+d[2]
		if nx < 0 || ny < 0 || nz < 0 || nx >= morton.MaxCoord || ny >= morton.MaxCoord || nz >= morton.MaxCoord {
			continue
		}
		code, err := morton.Encode(uint32(nx), uint32(ny), uint32(nz))
		if err != nil {
			continue
		}
		out = append(out, Key{Code: code, Level: key.Level})
	}
	return out
}

// FaceNeighbors4 returns the up-to-4 face-neighbor keys of a Tetree
// cell (spec.md §4.7's k-NN expansion hook for Tetree).
func (v *View[Content]) FaceNeighbors4(key Key) []Key {
	if v.ix.kind != TetreeKind {
		return nil
	}
	tet, err := tetree.TetOf(key.Code, key.Level)
	if err != nil {
		return nil
	}
	var out []Key
	for face := uint8(0); face < 4; face++ {
		_, nb, err := tetree.FaceNeighbor(tet, face)
		if err != nil {
			continue
		}
		out = append(out, Key{Code: tetree.Index(nb), Level: nb.Level})
	}
	return out
}
