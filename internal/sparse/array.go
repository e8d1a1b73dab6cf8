// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package sparse implements a generic sparse array with popcount
// compression, adapted from gaissmai/bart's internal/sparse package.
// It backs the node store's per-node child array (C4, §4.5).
package sparse

import "github.com/kgaiser/spatialidx/internal/bitset"

// Array is a sparse array with popcount compression and payload T: a
// bitset marking which indexes are present, and a parallel slice
// holding only the present values in index order.
type Array[T any] struct {
	bits  bitset.BitSet
	Items []T
}

// Get returns the value at i, if present.
func (s *Array[T]) Get(i uint) (value T, ok bool) {
	if s.bits.Test(i) {
		return s.Items[s.bits.Rank0(i)], true
	}
	return value, false
}

// MustGet returns the value at i. Only valid after a successful Test;
// otherwise behavior is undefined.
func (s *Array[T]) MustGet(i uint) T {
	return s.Items[s.bits.Rank0(i)]
}

// Test reports whether i is present.
func (s *Array[T]) Test(i uint) bool { return s.bits.Test(i) }

// Len returns the number of items in the array.
func (s *Array[T]) Len() int { return len(s.Items) }

// All returns the set indexes in ascending order.
func (s *Array[T]) All() []uint { return s.bits.All() }

// UpdateAt sets the value at i via callback cb(old, wasPresent) and
// returns the new value and whether i was already present.
func (s *Array[T]) UpdateAt(i uint, cb func(T, bool) T) (newValue T, wasPresent bool) {
	var rank0 int
	var oldValue T

	if wasPresent = s.bits.Test(i); wasPresent {
		rank0 = s.bits.Rank0(i)
		oldValue = s.Items[rank0]
	}

	newValue = cb(oldValue, wasPresent)

	if wasPresent {
		s.Items[rank0] = newValue
		return newValue, wasPresent
	}

	s.bits.Set(i)
	rank0 = s.bits.Rank0(i)
	s.insertItem(rank0, newValue)

	return newValue, wasPresent
}

// InsertAt inserts value at i, overwriting any existing value; reports
// whether i was already present.
func (s *Array[T]) InsertAt(i uint, value T) (exists bool) {
	if s.Len() != 0 && s.bits.Test(i) {
		s.Items[s.bits.Rank0(i)] = value
		return true
	}

	s.bits.Set(i)
	s.insertItem(s.bits.Rank0(i), value)

	return false
}

// DeleteAt removes the value at i, if present.
func (s *Array[T]) DeleteAt(i uint) (value T, exists bool) {
	if s.Len() == 0 || !s.bits.Test(i) {
		return value, false
	}

	rank0 := s.bits.Rank0(i)
	value = s.Items[rank0]

	s.deleteItem(rank0)
	s.bits.Clear(i)

	return value, true
}

// Copy returns a shallow copy of the array (elements copied by
// assignment, not deep-cloned).
func (s *Array[T]) Copy() *Array[T] {
	if s == nil {
		return nil
	}
	return &Array[T]{
		bits:  s.bits.Clone(),
		Items: append(s.Items[:0:0], s.Items...),
	}
}

func (s *Array[T]) insertItem(i int, item T) {
	if len(s.Items) < cap(s.Items) {
		s.Items = s.Items[:len(s.Items)+1]
	} else {
		var zero T
		s.Items = append(s.Items, zero)
	}
	copy(s.Items[i+1:], s.Items[i:])
	s.Items[i] = item
}

func (s *Array[T]) deleteItem(i int) {
	var zero T
	nl := len(s.Items) - 1
	copy(s.Items[i:], s.Items[i+1:])
	s.Items[nl] = zero
	s.Items = s.Items[:nl]
}
