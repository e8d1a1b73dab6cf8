// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package geom

import "github.com/kgaiser/spatialidx/spatialerr"

// Aabb is an axis-aligned bounding box with Min < Max elementwise.
type Aabb struct {
	Min, Max Vec3
}

// NewAabb validates and builds an Aabb from min/max corners.
func NewAabb(min, max Vec3) (Aabb, error) {
	if !min.Valid() || !max.Valid() {
		return Aabb{}, spatialerr.New("NewAabb", spatialerr.InvalidCoordinate, "min/max must be finite and non-negative")
	}
	if min.X >= max.X || min.Y >= max.Y || min.Z >= max.Z {
		return Aabb{}, spatialerr.New("NewAabb", spatialerr.InvalidVolume, "min must be strictly less than max elementwise")
	}
	return Aabb{Min: min, Max: max}, nil
}

// ContainsPoint reports whether p lies within the closed box.
func (a Aabb) ContainsPoint(p Vec3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y &&
		p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

// Intersects reports whether a and o share at least one point.
func (a Aabb) Intersects(o Aabb) bool {
	return a.Min.X <= o.Max.X && a.Max.X >= o.Min.X &&
		a.Min.Y <= o.Max.Y && a.Max.Y >= o.Min.Y &&
		a.Min.Z <= o.Max.Z && a.Max.Z >= o.Min.Z
}

// Center returns the midpoint of the box.
func (a Aabb) Center() Vec3 {
	return a.Min.Add(a.Max).Scale(0.5)
}

// Contains reports whether o is fully contained within a.
func (a Aabb) Contains(o Aabb) bool {
	return o.Min.X >= a.Min.X && o.Max.X <= a.Max.X &&
		o.Min.Y >= a.Min.Y && o.Max.Y <= a.Max.Y &&
		o.Min.Z >= a.Min.Z && o.Max.Z <= a.Max.Z
}

// Cube is an axis-aligned cube: a cell of the Octree.
type Cube struct {
	Origin Vec3
	Extent float32
}

// NewCube validates and builds a Cube.
func NewCube(origin Vec3, extent float32) (Cube, error) {
	if !origin.Valid() {
		return Cube{}, spatialerr.New("NewCube", spatialerr.InvalidCoordinate, "origin must be finite and non-negative")
	}
	if extent <= 0 {
		return Cube{}, spatialerr.New("NewCube", spatialerr.InvalidVolume, "extent must be > 0")
	}
	return Cube{Origin: origin, Extent: extent}, nil
}

// Aabb returns the cube expressed as an Aabb.
func (c Cube) Aabb() Aabb {
	return Aabb{Min: c.Origin, Max: c.Origin.Add(Vec3{c.Extent, c.Extent, c.Extent})}
}

// ContainsPoint reports whether p lies within the closed cube.
func (c Cube) ContainsPoint(p Vec3) bool { return c.Aabb().ContainsPoint(p) }

// Sphere is a sphere with positive radius.
type Sphere struct {
	Center Vec3
	Radius float32
}

// NewSphere validates and builds a Sphere.
func NewSphere(center Vec3, radius float32) (Sphere, error) {
	if !center.Valid() {
		return Sphere{}, spatialerr.New("NewSphere", spatialerr.InvalidCoordinate, "center must be finite and non-negative")
	}
	if radius <= 0 {
		return Sphere{}, spatialerr.New("NewSphere", spatialerr.InvalidConfig, "radius must be > 0")
	}
	return Sphere{Center: center, Radius: radius}, nil
}

// Ray is a half-line with a normalized direction and a positive,
// possibly infinite, maximum travel distance.
type Ray struct {
	Origin    Vec3
	Direction Vec3 // normalized
	MaxDist   float32
}

// NewRay validates origin/direction/maxDist and normalizes direction.
func NewRay(origin, direction Vec3, maxDist float32) (Ray, error) {
	if !origin.Valid() {
		return Ray{}, spatialerr.New("NewRay", spatialerr.InvalidCoordinate, "origin must be finite and non-negative")
	}
	dir, ok := direction.Normalize()
	if !ok {
		return Ray{}, spatialerr.New("NewRay", spatialerr.InvalidVolume, "direction must not be the zero vector")
	}
	if maxDist <= 0 {
		return Ray{}, spatialerr.New("NewRay", spatialerr.InvalidVolume, "maxDist must be > 0")
	}
	return Ray{Origin: origin, Direction: dir, MaxDist: maxDist}, nil
}

// At returns the point at parameter t along the ray.
func (r Ray) At(t float32) Vec3 { return r.Origin.Add(r.Direction.Scale(t)) }

// Plane is a plane in Hessian normal form: a*x + b*y + c*z + d == 0, with
// (a,b,c) a unit normal.
type Plane struct {
	A, B, C, D float32
}

// NewPlaneFromPoints builds the plane through three non-collinear points.
func NewPlaneFromPoints(p0, p1, p2 Vec3) (Plane, error) {
	n := p1.Sub(p0).Cross(p2.Sub(p0))
	unit, ok := n.Normalize()
	if !ok {
		return Plane{}, spatialerr.New("NewPlaneFromPoints", spatialerr.InvalidVolume, "points must not be collinear")
	}
	d := -unit.Dot(p0)
	return Plane{A: unit.X, B: unit.Y, C: unit.Z, D: d}, nil
}

// SignedDistance returns the signed distance from p to the plane.
func (p Plane) SignedDistance(v Vec3) float32 {
	return p.A*v.X + p.B*v.Y + p.C*v.Z + p.D
}

// Frustum is six half-space planes, inward-facing.
type Frustum struct {
	Planes [6]Plane
}

// Tet is a tetrahedron of the Tetree SFC: the cube-aligned origin vertex
// (x,y,z), a level, and a Bey-refinement type in [0,5].
type Tet struct {
	X, Y, Z uint32
	Level   uint8
	Type    uint8
}
