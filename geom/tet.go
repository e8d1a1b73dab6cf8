// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package geom

// MaxLevel is the finest level representable by the 21-bit-per-axis
// Morton code and by the Tetree coordinate accumulator.
const MaxLevel = 21

// CellSize returns the edge length, in quantized integer coordinate
// units, of a cube/tet cell at level.
func CellSize(level uint8) uint32 {
	if level > MaxLevel {
		level = MaxLevel
	}
	return 1 << (MaxLevel - level)
}

// tetCornerTable maps each of the 6 Bey-refinement tet types to the four
// cube-corner indices (corner = xBit | yBit<<1 | zBit<<2) spanning that
// tet. This is the canonical Freudenthal/Kuhn cube tetrahedralization:
// each type corresponds to one of the 6 orderings of the unit axes that
// walk the cube's main diagonal from corner 0 to corner 7 one Hamming
// step at a time. Type 0 is the root tet.
var tetCornerTable = [6][4]uint8{
	{0, 1, 3, 7}, // x, then y, then z
	{0, 1, 5, 7}, // x, then z, then y
	{0, 2, 3, 7}, // y, then x, then z
	{0, 2, 6, 7}, // y, then z, then x
	{0, 4, 5, 7}, // z, then x, then y
	{0, 4, 6, 7}, // z, then y, then x
}

// cubeCornerOffset returns the corner of a unit cube for corner index i.
func cubeCornerOffset(i uint8) Vec3 {
	return Vec3{
		X: float32(i & 1),
		Y: float32((i >> 1) & 1),
		Z: float32((i >> 2) & 1),
	}
}

// Vertices reconstructs the four world-space vertices of t. Coordinates
// are the raw quantized (x,y,z) anchor of the cube plus the corner
// offsets from [tetCornerTable], scaled by the cell's extent at t.Level.
func (t Tet) Vertices() [4]Vec3 {
	size := float32(CellSize(t.Level))
	origin := Vec3{X: float32(t.X), Y: float32(t.Y), Z: float32(t.Z)}

	corners := tetCornerTable[t.Type%6]
	var verts [4]Vec3
	for i, c := range corners {
		verts[i] = origin.Add(cubeCornerOffset(c).Scale(size))
	}
	return verts
}

// Aabb returns the bounding box of the tet's cube cell (the tet's own
// AABB coincides with its enclosing cube's, since all 6 types share the
// same 8 cube corners as their vertex pool).
func (t Tet) Aabb() Aabb {
	size := float32(CellSize(t.Level))
	origin := Vec3{X: float32(t.X), Y: float32(t.Y), Z: float32(t.Z)}
	return Aabb{Min: origin, Max: origin.Add(Vec3{size, size, size})}
}

// tetFaces returns the four triangular faces of t as vertex index
// triples into Vertices(); face f is the one opposite vertex f. The
// winding gives outward normals for types 0, 3 and 4 and inward normals
// for types 1, 2 and 5; facePlane corrects the orientation.
var tetFaces = [4][3]int{
	{1, 2, 3},
	{0, 3, 2},
	{0, 1, 3},
	{0, 2, 1},
}

// facePlane returns the outward-facing plane of face f of t.
func facePlane(verts [4]Vec3, f int) (Plane, bool) {
	idx := tetFaces[f]
	p, err := NewPlaneFromPoints(verts[idx[0]], verts[idx[1]], verts[idx[2]])
	if err != nil {
		return Plane{}, false
	}
	if p.SignedDistance(verts[f]) > 0 {
		p = Plane{A: -p.A, B: -p.B, C: -p.C, D: -p.D}
	}
	return p, true
}

// PointInTet reports whether p lies within (or on the boundary of) the
// tetrahedron with the given vertices, tested via four plane-side
// orientations with a consistent winding: inside iff every face plane
// has p on its interior (non-positive signed distance) side.
func PointInTet(p Vec3, verts [4]Vec3) bool {
	for f := 0; f < 4; f++ {
		plane, ok := facePlane(verts, f)
		if !ok {
			return false
		}
		if plane.SignedDistance(p) > Eps {
			return false
		}
	}
	return true
}

// RayTet intersects r against the four triangular faces of the
// tetrahedron with the given vertices, keeping the smallest positive
// hit parameter t.
func RayTet(r Ray, verts [4]Vec3) (t float32, hit bool) {
	best := r.MaxDist
	found := false

	for _, f := range tetFaces {
		ht, _, _, ok := RayTriangle(r, verts[f[0]], verts[f[1]], verts[f[2]])
		if ok && ht <= best {
			best = ht
			found = true
		}
	}

	return best, found
}

// TetClassification is the result of classifying a sphere against a
// tetrahedron.
type TetClassification int

const (
	// CompletelyOutside means the minimum distance from the sphere
	// center to the tet body exceeds the radius.
	CompletelyOutside TetClassification = iota
	// CompletelyInside means all four tet vertices lie inside the
	// sphere.
	CompletelyInside
	// TetIntersecting means neither of the above holds.
	TetIntersecting
)

// SphereTet classifies s against the tetrahedron with the given
// vertices.
func SphereTet(s Sphere, verts [4]Vec3) TetClassification {
	allInside := true
	for _, v := range verts {
		if v.DistanceTo(s.Center) > s.Radius {
			allInside = false
			break
		}
	}
	if allInside {
		return CompletelyInside
	}

	d := distancePointToTet(s.Center, verts)
	if d > s.Radius {
		return CompletelyOutside
	}
	return TetIntersecting
}

// distancePointToTet returns the minimum distance from p to the closed
// tetrahedral body (0 if p is inside).
func distancePointToTet(p Vec3, verts [4]Vec3) float32 {
	if PointInTet(p, verts) {
		return 0
	}

	best := float32(-1)
	for _, f := range tetFaces {
		d := distancePointToTriangle(p, verts[f[0]], verts[f[1]], verts[f[2]])
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

// distancePointToTriangle returns the distance from p to the closest
// point on triangle (a,b,c), clamping the projection to the triangle.
func distancePointToTriangle(p, a, b, c Vec3) float32 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return p.DistanceTo(a)
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return p.DistanceTo(b)
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return p.DistanceTo(a.Add(ab.Scale(v)))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return p.DistanceTo(c)
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return p.DistanceTo(a.Add(ac.Scale(w)))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return p.DistanceTo(b.Add(c.Sub(b).Scale(w)))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	closest := a.Add(ab.Scale(v)).Add(ac.Scale(w))
	return p.DistanceTo(closest)
}
