// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package geom implements the geometric primitives shared by the Octree
// and Tetree spatial indexes: points, vectors, axis-aligned bounding
// boxes, cubes, spheres, rays, planes, frustums and tetrahedra, together
// with the intersection and containment tests the query engines need.
//
// All arithmetic is IEEE-754 binary32 (f32); a single tolerance, [Eps],
// governs ray-triangle parallelism and boundary membership tests.
package geom

import "math"

// Eps is the global tolerance for ray-triangle parallelism and boundary
// membership tests.
const Eps float32 = 1e-6

// Vec3 is a 3D point or vector of finite, non-negative-by-convention f32
// coordinates. Negative coordinates are a caller error at every public
// entry point that accepts positions (see [Valid]).
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v-o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v scaled by s.
func (v Vec3) Scale(s float32) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float32 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// Length returns the Euclidean norm of v.
func (v Vec3) Length() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// DistanceTo returns the Euclidean distance between v and o.
func (v Vec3) DistanceTo(o Vec3) float32 {
	return v.Sub(o).Length()
}

// Normalize returns v scaled to unit length, or false if v is the zero
// vector (within [Eps]).
func (v Vec3) Normalize() (Vec3, bool) {
	l := v.Length()
	if l < Eps {
		return Vec3{}, false
	}
	return v.Scale(1 / l), true
}

// Min returns the component-wise minimum of v and o.
func (v Vec3) Min(o Vec3) Vec3 {
	return Vec3{min(v.X, o.X), min(v.Y, o.Y), min(v.Z, o.Z)}
}

// Max returns the component-wise maximum of v and o.
func (v Vec3) Max(o Vec3) Vec3 {
	return Vec3{max(v.X, o.X), max(v.Y, o.Y), max(v.Z, o.Z)}
}

// Valid reports whether every component of v is finite and non-negative.
// Every public operation that accepts a position must reject negative,
// NaN or infinite coordinates at the boundary.
func (v Vec3) Valid() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z) &&
		v.X >= 0 && v.Y >= 0 && v.Z >= 0
}

func isFinite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
