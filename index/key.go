// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package index is the shared spatial-index abstraction (spec.md §4.6):
// composition of the entity store (entity) and node store (node) behind
// a single reader-writer lock, parametric over which key algebra
// (Octree/Morton or Tetree) computes cell addresses from positions.
package index

import (
	"github.com/kgaiser/spatialidx/internal/morton"
	"github.com/kgaiser/spatialidx/internal/tetree"
)

// Kind selects which of the two interchangeable decompositions an
// Index instance uses (spec.md §1). An index is sealed to one kind for
// its lifetime; the two keys are never compared or mixed, per the
// explicit non-goal against cross-tree heterogeneous keys.
type Kind int

const (
	// OctreeKind addresses cells by 3D Morton code.
	OctreeKind Kind = iota
	// TetreeKind addresses cells by tetrahedral SFC index.
	TetreeKind
)

func (k Kind) String() string {
	if k == TetreeKind {
		return "tetree"
	}
	return "octree"
}

// Key is a node's address: a tree-specific code (Morton code or
// tetree index) paired with its level, since neither code alone
// disambiguates level (spec.md §3's "top bits encode level, or level
// is carried alongside" — this implementation carries it alongside
// for both trees).
type Key struct {
	Code  uint64
	Level uint8
}

// lessKey orders keys first by level, then by code, so Range queries
// scan contiguous same-level regions without interleaving other
// levels' cells.
func lessKey(a, b Key) bool {
	if a.Level != b.Level {
		return a.Level < b.Level
	}
	return a.Code < b.Code
}

// cellSize returns the edge length of a cube cell at level, in the
// same quantized coordinate units used by both morton and tetree.
func cellSize(level uint8) uint32 { return morton.CellSize(level) }

// octreeKeyForPoint computes the Octree key of the cell at level
// containing quantized point (x,y,z).
func octreeKeyForPoint(x, y, z uint32, level uint8) (Key, error) {
	ox := morton.CellOrigin(x, level)
	oy := morton.CellOrigin(y, level)
	oz := morton.CellOrigin(z, level)
	code, err := morton.Encode(ox, oy, oz)
	if err != nil {
		return Key{}, err
	}
	return Key{Code: code, Level: level}, nil
}

// tetreeKeyForPoint computes the Tetree key of the cell at level
// containing quantized point (x,y,z).
func tetreeKeyForPoint(x, y, z uint32, level uint8) (Key, error) {
	tet, err := tetree.ForPoint(x, y, z, level)
	if err != nil {
		return Key{}, err
	}
	return Key{Code: tetree.Index(tet), Level: level}, nil
}
