// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package idgen provides the pluggable entity-id generators referenced
// by spec.md §6's Config.IDGenerator: a default monotonic, lock-free
// generator and an optional UUID-backed one for callers who need
// globally unique ids across independent index instances.
package idgen

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator allocates new entity ids. Implementations must be safe for
// concurrent use: Next is called from Index insert paths under the
// index's write lock, and callers may also call it directly without
// holding any lock.
type Generator interface {
	Next() uint64
}

// Monotonic is the default Generator: a process-local atomic counter
// starting at 1 (0 is reserved as the zero-value sentinel for "no id").
type Monotonic struct {
	counter atomic.Uint64
}

// NewMonotonic returns a ready-to-use Monotonic generator.
func NewMonotonic() *Monotonic {
	return &Monotonic{}
}

// Next returns the next id in sequence.
func (m *Monotonic) Next() uint64 {
	return m.counter.Add(1)
}

// UUID generates ids by folding the first 8 bytes of a fresh random
// UUID into a uint64.
// Use this generator when entities inserted by independent index
// instances must never collide, e.g. across a sharded deployment; the
// monotonic generator only guarantees uniqueness within one process.
type UUID struct{}

// NewUUID returns a ready-to-use UUID-backed generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Next returns the first 8 bytes of a freshly generated random UUID,
// read big-endian.
func (UUID) Next() uint64 {
	id := uuid.New()
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(id[i])
	}
	return v
}
