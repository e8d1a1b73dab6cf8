// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package entity

import (
	"testing"

	"github.com/kgaiser/spatialidx/geom"
)

func TestCreateGetRemove(t *testing.T) {
	s := New[uint64, string, uint64]()

	s.CreateOrUpdate(1, "alpha", geom.Vec3{X: 1, Y: 2, Z: 3})
	if !s.Contains(1) {
		t.Fatal("expected entity 1 to exist")
	}

	content, err := s.GetContent(1)
	if err != nil || content != "alpha" {
		t.Fatalf("GetContent = %q, %v", content, err)
	}

	pos, err := s.GetPosition(1)
	if err != nil || pos != (geom.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("GetPosition = %v, %v", pos, err)
	}

	if !s.Remove(1) {
		t.Fatal("expected Remove to report existed")
	}
	if s.Remove(1) {
		t.Fatal("expected second Remove to report absent")
	}
	if s.Contains(1) {
		t.Fatal("entity 1 should no longer exist")
	}
}

func TestLocationsAndSpanCount(t *testing.T) {
	s := New[uint64, string, uint64]()
	s.CreateOrUpdate(1, "x", geom.Vec3{})

	if err := s.AddLocation(1, 100); err != nil {
		t.Fatal(err)
	}
	if err := s.AddLocation(1, 200); err != nil {
		t.Fatal(err)
	}
	if err := s.AddLocation(1, 100); err != nil { // idempotent
		t.Fatal(err)
	}

	n, err := s.SpanCount(1)
	if err != nil || n != 2 {
		t.Fatalf("SpanCount = %d, %v; want 2", n, err)
	}

	removed, err := s.RemoveLocation(1, 100)
	if err != nil || !removed {
		t.Fatalf("RemoveLocation = %v, %v", removed, err)
	}
	n, _ = s.SpanCount(1)
	if n != 1 {
		t.Fatalf("SpanCount after remove = %d, want 1", n)
	}

	if err := s.ClearLocations(1); err != nil {
		t.Fatal(err)
	}
	n, _ = s.SpanCount(1)
	if n != 0 {
		t.Fatalf("SpanCount after clear = %d, want 0", n)
	}
}

func TestBoundsEntityCenterIsPosition(t *testing.T) {
	s := New[uint64, string, uint64]()
	bounds, err := geom.NewAabb(geom.Vec3{X: 0, Y: 0, Z: 0}, geom.Vec3{X: 2, Y: 2, Z: 2})
	if err != nil {
		t.Fatal(err)
	}
	s.CreateOrUpdateBounds(1, "wide", bounds)

	got, hasBounds, err := s.GetBounds(1)
	if err != nil || !hasBounds || got != bounds {
		t.Fatalf("GetBounds = %v, %v, %v", got, hasBounds, err)
	}

	pos, err := s.GetPosition(1)
	if err != nil || pos != (geom.Vec3{X: 1, Y: 1, Z: 1}) {
		t.Fatalf("GetPosition = %v, want center (1,1,1)", pos)
	}
}

func TestUnknownEntityErrors(t *testing.T) {
	s := New[uint64, string, uint64]()
	if _, err := s.GetContent(99); err == nil {
		t.Error("expected error for unknown entity")
	}
	if err := s.AddLocation(99, 1); err == nil {
		t.Error("expected error for unknown entity")
	}
}

func TestAllPositionsVisitsEveryEntity(t *testing.T) {
	s := New[uint64, string, uint64]()
	s.CreateOrUpdate(1, "a", geom.Vec3{X: 1})
	s.CreateOrUpdate(2, "b", geom.Vec3{X: 2})

	seen := map[uint64]float32{}
	s.AllPositions(func(id uint64, pos geom.Vec3) {
		seen[id] = pos.X
	})
	if len(seen) != 2 || seen[1] != 1 || seen[2] != 2 {
		t.Errorf("AllPositions visited %v", seen)
	}
}
