// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package geom

import "testing"

func TestAabbContainsIntersects(t *testing.T) {
	a, err := NewAabb(Vec3{0, 0, 0}, Vec3{10, 10, 10})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewAabb(Vec3{5, 5, 5}, Vec3{8, 8, 8})
	if err != nil {
		t.Fatal(err)
	}

	if !a.Contains(b) {
		t.Error("expected a to contain b")
	}
	if !a.Intersects(b) {
		t.Error("expected a to intersect b")
	}

	c, _ := NewAabb(Vec3{20, 20, 20}, Vec3{30, 30, 30})
	if a.Intersects(c) {
		t.Error("expected a and c to not intersect")
	}
}

func TestNewAabbRejectsDegenerate(t *testing.T) {
	if _, err := NewAabb(Vec3{5, 5, 5}, Vec3{1, 1, 1}); err == nil {
		t.Error("expected error for max <= min")
	}
	if _, err := NewAabb(Vec3{-1, 0, 0}, Vec3{1, 1, 1}); err == nil {
		t.Error("expected error for negative coordinate")
	}
}

func TestRayAabbSlab(t *testing.T) {
	box, _ := NewAabb(Vec3{0, 0, 0}, Vec3{10, 10, 10})

	r, err := NewRay(Vec3{0, 5, 5}, Vec3{1, 0, 0}, 100)
	if err != nil {
		t.Fatal(err)
	}
	tmin, _, hit := RayAabb(r, box)
	if !hit {
		t.Fatal("expected hit")
	}
	if tmin < -Eps || tmin > Eps {
		t.Errorf("expected tmin ~ 0, got %v", tmin)
	}

	r2, _ := NewRay(Vec3{50, 50, 50}, Vec3{1, 0, 0}, 100)
	if _, _, hit := RayAabb(r2, box); hit {
		t.Error("expected miss")
	}
}

func TestNewRayRejectsNegativeOrigin(t *testing.T) {
	// S5: ray from (-1, 5, 5) is rejected at construction.
	if _, err := NewRay(Vec3{-1, 5, 5}, Vec3{1, 0, 0}, 100); err == nil {
		t.Error("expected InvalidCoordinate for negative origin")
	}
}

func TestRayTriangleMollerTrumbore(t *testing.T) {
	v0 := Vec3{0, 0, 0}
	v1 := Vec3{1, 0, 0}
	v2 := Vec3{0, 1, 0}

	r, _ := NewRay(Vec3{0.1, 0.1, 5}, Vec3{0, 0, -1}, 100)
	tHit, u, v, hit := RayTriangle(r, v0, v1, v2)
	if !hit {
		t.Fatal("expected hit")
	}
	if tHit < 4.9 || tHit > 5.1 {
		t.Errorf("unexpected t: %v", tHit)
	}
	if u < 0 || v < 0 || u+v > 1 {
		t.Errorf("invalid barycentrics u=%v v=%v", u, v)
	}

	rMiss, _ := NewRay(Vec3{5, 5, 5}, Vec3{0, 0, -1}, 100)
	if _, _, _, hit := RayTriangle(rMiss, v0, v1, v2); hit {
		t.Error("expected miss outside triangle")
	}
}

func TestTetVerticesAndPointInTet(t *testing.T) {
	tet := Tet{X: 0, Y: 0, Z: 0, Level: 0, Type: 0}
	verts := tet.Vertices()

	centroid := verts[0].Add(verts[1]).Add(verts[2]).Add(verts[3]).Scale(0.25)
	if !PointInTet(centroid, verts) {
		t.Error("expected centroid to be inside tet")
	}

	far := Vec3{1e7, 1e7, 1e7}
	if PointInTet(far, verts) {
		t.Error("expected far point to be outside tet")
	}
}

func TestSphereTetClassification(t *testing.T) {
	tet := Tet{X: 0, Y: 0, Z: 0, Level: 10, Type: 0}
	verts := tet.Vertices()
	centroid := verts[0].Add(verts[1]).Add(verts[2]).Add(verts[3]).Scale(0.25)

	size := float32(CellSize(10))
	big, _ := NewSphere(centroid, size*10)
	if SphereTet(big, verts) != CompletelyInside {
		t.Error("expected big sphere to fully contain tet")
	}

	far, _ := NewSphere(Vec3{1e6, 1e6, 1e6}, 1)
	if SphereTet(far, verts) != CompletelyOutside {
		t.Error("expected far sphere to be completely outside")
	}
}

func TestPlaneAabbPositiveNegativeVertex(t *testing.T) {
	box, _ := NewAabb(Vec3{0, 0, 0}, Vec3{10, 10, 10})

	// plane x = 5, normal pointing +x
	p := Plane{A: 1, B: 0, C: 0, D: -5}
	if PlaneAabb(p, box) != Straddling {
		t.Error("expected straddling plane at x=5 through [0,10]")
	}

	pOut := Plane{A: 1, B: 0, C: 0, D: -50}
	if PlaneAabb(pOut, box) != Outside {
		t.Error("expected box fully outside plane at x=50")
	}
}

func TestFrustumAabb(t *testing.T) {
	box, _ := NewAabb(Vec3{0, 0, 0}, Vec3{10, 10, 10})

	// Frustum formed by 6 planes each far outside box -> inside.
	inward := func(axis Vec3, offset float32) Plane {
		return Plane{A: axis.X, B: axis.Y, C: axis.Z, D: offset}
	}
	f := Frustum{Planes: [6]Plane{
		inward(Vec3{1, 0, 0}, 100),
		inward(Vec3{-1, 0, 0}, 100),
		inward(Vec3{0, 1, 0}, 100),
		inward(Vec3{0, -1, 0}, 100),
		inward(Vec3{0, 0, 1}, 100),
		inward(Vec3{0, 0, -1}, 100),
	}}
	if FrustumAabb(f, box) != Inside {
		t.Error("expected box fully inside generous frustum")
	}
}
