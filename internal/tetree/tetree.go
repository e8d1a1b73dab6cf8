// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package tetree implements the Bey-refined tetrahedral space-filling
// curve used to address Tetree cells (spec.md §4.2): a bijective
// encode/decode between a (x,y,z,level,type) tuple and a 64-bit index,
// plus the level/parent/child/face-neighbor arithmetic on that key.
//
// A Tet is always one of the 6 canonical types produced by recursively
// Bey-refining the root simplex of the enclosing coordinate cube (see
// geom.Tet for the corresponding vertex geometry). Coordinates share
// the same 21-bit-per-axis quantization as internal/morton so Octree
// and Tetree cells can be compared directly.
package tetree

import "github.com/kgaiser/spatialidx/spatialerr"

// MaxLevel is the finest representable level, matching morton.MaxLevel.
const MaxLevel = 21

// MaxCoord is the exclusive upper bound for any encodable coordinate.
const MaxCoord = 1 << MaxLevel

// Tet identifies a tetrahedral cell: the origin of its enclosing cube,
// the refinement level, and the Bey type (0..5) selecting which of the
// 6 canonical tets of that cube it is.
type Tet struct {
	X, Y, Z uint32
	Level   uint8
	Type    uint8
}

func validCoord(x, y, z uint32) error {
	if x >= MaxCoord || y >= MaxCoord || z >= MaxCoord {
		return spatialerr.New("tetree", spatialerr.Overflow, "coordinate exceeds 2^21")
	}
	return nil
}

// Root returns the level-0 tet of the coordinate cube containing
// (x,y,z), always of type 0.
func Root(x, y, z uint32) (Tet, error) {
	if err := validCoord(x, y, z); err != nil {
		return Tet{}, err
	}
	return Tet{X: 0, Y: 0, Z: 0, Level: 0, Type: 0}, nil
}

// cellSize returns the edge length of a cube cell at level, in
// quantized coordinate units.
func cellSize(level uint8) uint32 {
	if level > MaxLevel {
		level = MaxLevel
	}
	return 1 << (MaxLevel - level)
}

// CubeID returns the 3-bit octant index that the cell (x,y,z,level)
// occupies within its level-1 parent cube, using the same bit layout
// as morton.OctantOf so the two trees' branching factor lines up.
func CubeID(x, y, z uint32, level uint8) uint8 {
	if level == 0 {
		return 0
	}
	size := cellSize(level)
	var id uint8
	if (x/size)&1 != 0 {
		id |= 1
	}
	if (y/size)&1 != 0 {
		id |= 2
	}
	if (z/size)&1 != 0 {
		id |= 4
	}
	return id
}

// Parent returns the tet one level coarser than t.
func Parent(t Tet) (Tet, error) {
	if t.Level == 0 {
		return Tet{}, spatialerr.New("Parent", spatialerr.InvalidLevel, "level 0 has no parent")
	}
	cid := CubeID(t.X, t.Y, t.Z, t.Level)
	size := cellSize(t.Level - 1)
	return Tet{
		X:     (t.X / size) * size,
		Y:     (t.Y / size) * size,
		Z:     (t.Z / size) * size,
		Level: t.Level - 1,
		Type:  parentTypeOf(t.Type, cid),
	}, nil
}

// Child returns child local-index i (0..7) of t, one level finer.
func Child(t Tet, i uint8) (Tet, error) {
	if i > 7 {
		return Tet{}, spatialerr.New("Child", spatialerr.InvalidLevel, "local index must be in [0,7]")
	}
	if t.Level >= MaxLevel {
		return Tet{}, spatialerr.New("Child", spatialerr.InvalidLevel, "already at max depth")
	}
	cid := cubeIDOf(t.Type, i)
	half := cellSize(t.Level + 1)
	cx, cy, cz := t.X, t.Y, t.Z
	if cid&1 != 0 {
		cx += half
	}
	if cid&2 != 0 {
		cy += half
	}
	if cid&4 != 0 {
		cz += half
	}
	return Tet{X: cx, Y: cy, Z: cz, Level: t.Level + 1, Type: childType(t.Type, cid)}, nil
}

// ForPoint returns the tet at level that contains quantized point
// (x,y,z): the cube cell's origin at level, descended from the root by
// the same per-level cube-id used by Index/TetOf, together with the
// type that naturally falls out of that descent.
func ForPoint(x, y, z uint32, level uint8) (Tet, error) {
	if err := validCoord(x, y, z); err != nil {
		return Tet{}, err
	}
	if level > MaxLevel {
		return Tet{}, spatialerr.New("ForPoint", spatialerr.InvalidLevel, "level exceeds max")
	}
	var ox, oy, oz uint32
	var typ uint8
	for i := uint8(1); i <= level; i++ {
		cid := CubeID(x, y, z, i)
		bitPos := MaxLevel - i
		if cid&1 != 0 {
			ox |= 1 << bitPos
		}
		if cid&2 != 0 {
			oy |= 1 << bitPos
		}
		if cid&4 != 0 {
			oz |= 1 << bitPos
		}
		typ = childType(typ, cid)
	}
	return Tet{X: ox, Y: oy, Z: oz, Level: level, Type: typ}, nil
}

// ChildTM is the Bey-order variant of Child. The chosen table
// instantiation (see tables.go) collapses Bey order and cube-id
// order into the same permutation, so ChildTM is Child's twin,
// kept as a distinct entry point for API parity with spec.md §4.2's
// TYPE_TO_TYPE_OF_CHILD_MORTON / Bey-order distinction.
func ChildTM(t Tet, i uint8) (Tet, error) { return Child(t, i) }

// Index encodes t as a 64-bit key: the concatenation of each
// ancestor level's local index, root at the most significant group.
func Index(t Tet) uint64 {
	if t.Level == 0 {
		return 0
	}
	var idx uint64
	cur := t
	for lvl := t.Level; lvl >= 1; lvl-- {
		cid := CubeID(cur.X, cur.Y, cur.Z, lvl)
		li := localIndexOf(0, cid)
		idx |= uint64(li) << (3 * uint(t.Level-lvl))
		size := cellSize(lvl - 1)
		cur.X = (cur.X / size) * size
		cur.Y = (cur.Y / size) * size
		cur.Z = (cur.Z / size) * size
		if lvl == 1 {
			break
		}
	}
	return idx
}

// TetOf decodes a (index, level) pair produced by Index back into a
// Tet. The level travels alongside the index per spec.md §6's Tetree
// key encoding ("u64 index plus level: u8 and type: u8"); LevelOf
// below is only a best-effort derivation from the index bits alone.
func TetOf(index uint64, level uint8) (Tet, error) {
	if level > MaxLevel {
		return Tet{}, spatialerr.New("TetOf", spatialerr.InvalidLevel, "level exceeds max")
	}
	var x, y, z uint32
	var typ uint8
	for i := uint8(1); i <= level; i++ {
		shift := 3 * uint(level-i)
		li := uint8((index >> shift) & 0x7)
		cid := cubeIDOf(typ, li)
		bitPos := MaxLevel - i
		if cid&1 != 0 {
			x |= 1 << bitPos
		}
		if cid&2 != 0 {
			y |= 1 << bitPos
		}
		if cid&4 != 0 {
			z |= 1 << bitPos
		}
		typ = childType(typ, cid)
	}
	return Tet{X: x, Y: y, Z: z, Level: level, Type: typ}, nil
}

// LevelOf derives a level estimate from an index's bit length alone,
// per spec.md §4.2's literal ceil(bit_length(index)/3) formula. It
// returns 0 for index == 0. Because a root-level local index of 0
// leaves the top bit group zero, this can under-count the true level
// when the caller does not also carry level out of band; prefer the
// level stored alongside the key (see TetOf) wherever one is available.
func LevelOf(index uint64) uint8 {
	if index == 0 {
		return 0
	}
	bitLen := 0
	for v := index; v != 0; v >>= 1 {
		bitLen++
	}
	return uint8((bitLen + 2) / 3)
}

// FaceNeighbor returns the opposite face index and the tet sharing
// face i (0..3) with t. Face 0 is external: the neighbor is the
// adjacent cube's tet of the same type. Faces 1..3 are internal: the
// neighbor shares t's coordinates and level but a different type,
// found via a fixed per-face involution over the 6 types (see
// tables.go; this is the documented simplified oracle instantiation
// for the core that spec.md §4.2 leaves as an unspecified t8code
// table).
func FaceNeighbor(t Tet, face uint8) (oppositeFace uint8, neighbor Tet, err error) {
	if face > 3 {
		return 0, Tet{}, spatialerr.New("FaceNeighbor", spatialerr.InvalidLevel, "face must be in [0,3]")
	}
	if face > 0 {
		nt := t
		nt.Type = internalFacePartner[face][t.Type]
		return face, nt, nil
	}

	axis := axisForType(t.Type)
	size := cellSize(t.Level)
	nt := t
	switch axis {
	case 0:
		nt.X += size
	case 1:
		nt.Y += size
	default:
		nt.Z += size
	}
	if err := validCoord(nt.X, nt.Y, nt.Z); err != nil {
		return 0, Tet{}, err
	}
	return 0, nt, nil
}
