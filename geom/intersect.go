// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package geom

// Side classifies a shape's position relative to a plane or frustum.
type Side int

const (
	// Outside means the shape lies entirely on the negative side.
	Outside Side = iota
	// Inside means the shape lies entirely on the positive side.
	Inside
	// Straddling means the shape crosses the boundary.
	Straddling
)

// PlaneAabb classifies box against plane using the positive/negative
// vertex trick: pick, per axis, the vertex farthest along the plane
// normal (the "positive" vertex) and the one farthest against it (the
// "negative" vertex); the box straddles the plane iff the two vertices
// have signed distances of different sign (or either is exactly zero).
func PlaneAabb(p Plane, box Aabb) Side {
	pos, neg := positiveNegativeVertex(p, box)

	dPos := p.SignedDistance(pos)
	dNeg := p.SignedDistance(neg)

	switch {
	case dNeg > Eps:
		return Inside
	case dPos < -Eps:
		return Outside
	default:
		return Straddling
	}
}

func positiveNegativeVertex(p Plane, box Aabb) (pos, neg Vec3) {
	pos, neg = box.Min, box.Max

	if p.A >= 0 {
		pos.X, neg.X = box.Max.X, box.Min.X
	}
	if p.B >= 0 {
		pos.Y, neg.Y = box.Max.Y, box.Min.Y
	}
	if p.C >= 0 {
		pos.Z, neg.Z = box.Max.Z, box.Min.Z
	}
	return pos, neg
}

// RayAabb implements the slab method: returns the entry/exit parameters
// tmin/tmax of the ray's intersection with box, and whether any
// intersection within [0, r.MaxDist] exists.
func RayAabb(r Ray, box Aabb) (tmin, tmax float32, hit bool) {
	tmin, tmax = 0, r.MaxDist

	axisMin := [3]float32{box.Min.X, box.Min.Y, box.Min.Z}
	axisMax := [3]float32{box.Max.X, box.Max.Y, box.Max.Z}
	origin := [3]float32{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float32{r.Direction.X, r.Direction.Y, r.Direction.Z}

	for i := 0; i < 3; i++ {
		if dir[i] > -Eps && dir[i] < Eps {
			// ray parallel to slab; no hit unless origin is within slab
			if origin[i] < axisMin[i] || origin[i] > axisMax[i] {
				return 0, 0, false
			}
			continue
		}

		invD := 1 / dir[i]
		t1 := (axisMin[i] - origin[i]) * invD
		t2 := (axisMax[i] - origin[i]) * invD
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
		if tmin > tmax {
			return 0, 0, false
		}
	}

	return tmin, tmax, true
}

// RayTriangle implements the Möller–Trumbore ray-triangle intersection
// test. It returns the hit parameter t and the barycentric coordinates
// (u,v), rejecting parallel rays (|a| < Eps), out-of-range barycentrics,
// and hits at or before the ray origin (t <= Eps).
func RayTriangle(r Ray, v0, v1, v2 Vec3) (t, u, v float32, hit bool) {
	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)

	pvec := r.Direction.Cross(edge2)
	a := edge1.Dot(pvec)
	if a > -Eps && a < Eps {
		return 0, 0, 0, false // parallel
	}

	f := 1 / a
	tvec := r.Origin.Sub(v0)
	u = f * tvec.Dot(pvec)
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	qvec := tvec.Cross(edge1)
	v = f * r.Direction.Dot(qvec)
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = f * edge2.Dot(qvec)
	if t <= Eps || t > r.MaxDist {
		return 0, 0, 0, false
	}

	return t, u, v, true
}

// FrustumAabb classifies box against the six frustum planes: outside if
// any plane fully rejects it, inside if every plane fully accepts it,
// straddling otherwise.
func FrustumAabb(f Frustum, box Aabb) Side {
	result := Inside
	for _, p := range f.Planes {
		switch PlaneAabb(p, box) {
		case Outside:
			return Outside
		case Straddling:
			result = Straddling
		}
	}
	return result
}
