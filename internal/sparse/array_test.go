// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package sparse

import "testing"

func TestNewArray(t *testing.T) {
	a := new(Array[int])
	if c := a.Len(); c != 0 {
		t.Errorf("Len, expected 0, got %d", c)
	}
}

func TestSparseArrayInsertDelete(t *testing.T) {
	a := new(Array[int])

	for i := range 1000 {
		a.InsertAt(uint(i), i)
		a.InsertAt(uint(i), i) // overwrite, no growth
	}
	if c := a.Len(); c != 1000 {
		t.Errorf("Len, expected 1000, got %d", c)
	}

	for i := range 500 {
		if _, ok := a.DeleteAt(uint(i)); !ok {
			t.Fatalf("expected DeleteAt(%d) to report exists", i)
		}
		if _, ok := a.DeleteAt(uint(i)); ok {
			t.Fatalf("expected second DeleteAt(%d) to report absent", i)
		}
	}
	if c := a.Len(); c != 500 {
		t.Errorf("Len, expected 500, got %d", c)
	}

	for i := 500; i < 1000; i++ {
		v, ok := a.Get(uint(i))
		if !ok || v != i {
			t.Errorf("Get(%d) = %d, %v; want %d, true", i, v, ok, i)
		}
	}
}

func TestArrayUpdateAt(t *testing.T) {
	a := new(Array[int])

	a.UpdateAt(5, func(old int, ok bool) int {
		if ok {
			t.Fatal("expected not present")
		}
		return 42
	})

	newVal, wasPresent := a.UpdateAt(5, func(old int, ok bool) int {
		if !ok || old != 42 {
			t.Fatalf("expected old=42, got %d, %v", old, ok)
		}
		return old + 1
	})
	if !wasPresent || newVal != 43 {
		t.Errorf("got %d, %v; want 43, true", newVal, wasPresent)
	}
}

func TestArrayCopyIsIndependent(t *testing.T) {
	a := new(Array[int])
	a.InsertAt(1, 10)
	a.InsertAt(2, 20)

	b := a.Copy()
	b.InsertAt(3, 30)

	if a.Len() != 2 {
		t.Errorf("original array mutated by copy: len=%d", a.Len())
	}
	if b.Len() != 3 {
		t.Errorf("copy not updated: len=%d", b.Len())
	}
}
