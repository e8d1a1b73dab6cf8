// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package bitset

import "testing"

func TestSetClearTest(t *testing.T) {
	var b BitSet

	b.Set(3)
	b.Set(130)

	if !b.Test(3) || !b.Test(130) {
		t.Fatal("expected bits 3 and 130 set")
	}
	if b.Test(4) {
		t.Fatal("expected bit 4 clear")
	}

	b.Clear(3)
	if b.Test(3) {
		t.Fatal("expected bit 3 cleared")
	}
}

func TestRank0AndNextSet(t *testing.T) {
	var b BitSet
	for _, i := range []uint{1, 5, 9, 64, 200} {
		b.Set(i)
	}

	if got := b.Rank0(5); got != 1 {
		t.Errorf("Rank0(5) = %d, want 1", got)
	}
	if got := b.Rank0(9); got != 2 {
		t.Errorf("Rank0(9) = %d, want 2", got)
	}

	next, ok := b.NextSet(2)
	if !ok || next != 5 {
		t.Errorf("NextSet(2) = %d, %v; want 5, true", next, ok)
	}

	all := b.All()
	want := []uint{1, 5, 9, 64, 200}
	if len(all) != len(want) {
		t.Fatalf("All() = %v, want %v", all, want)
	}
	for i, v := range want {
		if all[i] != v {
			t.Errorf("All()[%d] = %d, want %d", i, all[i], v)
		}
	}
}

func TestCompact(t *testing.T) {
	var b BitSet
	b.Set(500)
	b.Clear(500)
	b.Compact()
	if len(b) != 0 {
		t.Errorf("expected Compact to shrink to empty, got len %d", len(b))
	}
}
