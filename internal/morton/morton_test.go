// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package morton

import (
	"math/rand"
	"testing"
)

// TestEncodeDecodeRoundTrip is property P1: decode(encode(p)) == p for
// all p in [0, 2^21)^3.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	cases := [][3]uint32{
		{0, 0, 0},
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
		{5, 9, 1},
		{MaxCoord - 1, MaxCoord - 1, MaxCoord - 1},
	}
	for i := 0; i < 1000; i++ {
		cases = append(cases, [3]uint32{
			uint32(rng.Intn(MaxCoord)),
			uint32(rng.Intn(MaxCoord)),
			uint32(rng.Intn(MaxCoord)),
		})
	}

	for _, c := range cases {
		code, err := Encode(c[0], c[1], c[2])
		if err != nil {
			t.Fatalf("Encode(%v) error: %v", c, err)
		}
		x, y, z := Decode(code)
		if x != c[0] || y != c[1] || z != c[2] {
			t.Errorf("Decode(Encode(%v)) = (%d,%d,%d)", c, x, y, z)
		}
	}
}

func TestEncodeRejectsOverflow(t *testing.T) {
	if _, err := Encode(MaxCoord, 0, 0); err == nil {
		t.Error("expected Overflow error for x >= 2^21")
	}
}

func TestBitInterleaveOrder(t *testing.T) {
	// bit 0 of the code must be bit 0 of x; bit 1, bit 0 of y; bit 2,
	// bit 0 of z (per spec.md §4.1).
	code, err := Encode(1, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if code != 1 {
		t.Errorf("Encode(1,0,0) = %#x, want 0x1", code)
	}

	code, err = Encode(0, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if code != 2 {
		t.Errorf("Encode(0,1,0) = %#x, want 0x2", code)
	}

	code, err = Encode(0, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if code != 4 {
		t.Errorf("Encode(0,0,1) = %#x, want 0x4", code)
	}
}

// TestDescendantLocality is property P3: all descendants of a cell at
// level l form a single contiguous key range [k*8^(MAX-l), (k+1)*8^(MAX-l)).
func TestDescendantLocality(t *testing.T) {
	const level = 19 // two finer levels -> 8^2 = 64 descendant leaf cells
	x, y, z := 3*CellSize(level), 3*CellSize(level), 3*CellSize(level)

	parentCode, err := Encode(x, y, z)
	if err != nil {
		t.Fatal(err)
	}

	finest := CellSize(MaxLevel) // 1
	descendants := make([]uint64, 0, 64)
	step := finest
	for dx := uint32(0); dx < CellSize(level); dx += step {
		for dy := uint32(0); dy < CellSize(level); dy += step {
			for dz := uint32(0); dz < CellSize(level); dz += step {
				code, err := Encode(x+dx, y+dy, z+dz)
				if err != nil {
					t.Fatal(err)
				}
				descendants = append(descendants, code)
			}
		}
	}
	_ = finest

	lo, hi := descendants[0], descendants[0]
	for _, c := range descendants {
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
	}

	levelsBelow := uint(MaxLevel - level)
	rangeSize := uint64(1)
	for i := uint(0); i < 3*levelsBelow; i++ {
		rangeSize *= 2
	}
	if hi-lo >= rangeSize {
		t.Errorf("descendant codes span %#x, exceeds contiguous range size %#x", hi-lo, rangeSize)
	}
	if parentCode < lo || parentCode > hi {
		t.Errorf("parent origin %#x not within descendant range [%#x,%#x]", parentCode, lo, hi)
	}
}

func TestParentChildInverse(t *testing.T) {
	x, y, z := uint32(100), uint32(100), uint32(100)
	const level = 10

	origin := CellOrigin(x, level)
	_ = origin

	px, py, pz, plevel, err := ParentOf(CellOrigin(x, level), CellOrigin(y, level), CellOrigin(z, level), level)
	if err != nil {
		t.Fatal(err)
	}
	if plevel != level-1 {
		t.Errorf("plevel = %d, want %d", plevel, level-1)
	}

	oct := OctantOf(CellOrigin(x, level), CellOrigin(y, level), CellOrigin(z, level), level)
	cx, cy, cz, clevel, err := ChildOrigin(px, py, pz, plevel, oct)
	if err != nil {
		t.Fatal(err)
	}
	if clevel != level {
		t.Errorf("clevel = %d, want %d", clevel, level)
	}
	if cx != CellOrigin(x, level) || cy != CellOrigin(y, level) || cz != CellOrigin(z, level) {
		t.Errorf("child-of-parent origin mismatch: got (%d,%d,%d)", cx, cy, cz)
	}
}
