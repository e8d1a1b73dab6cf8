// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package node

import (
	"sync"
	"sync/atomic"
)

// Pool is a type-safe wrapper around sync.Pool specialized for
// *Node[Id], recycling node objects across the add/remove churn that
// subdivision and spanning produce (spec.md §4.5).
//
// Unlike a bare sync.Pool, Pool enforces the configured maximum size:
// once pooledCount reaches maxSize, further Put calls drop the node
// instead of retaining it, per spec.md §4.5's "beyond that, excess
// nodes are dropped".
type Pool[Id comparable] struct {
	sync.Pool

	maxSize int64

	totalAllocated atomic.Int64
	currentLive    atomic.Int64
	pooledCount    atomic.Int64
}

// NewPool returns a Pool that never holds more than maxSize idle nodes.
// A maxSize of 0 disables pooling: Get always allocates and Put always
// discards.
func NewPool[Id comparable](maxSize int) *Pool[Id] {
	p := &Pool[Id]{maxSize: int64(maxSize)}
	p.New = func() any {
		p.totalAllocated.Add(1)
		return NewNode[Id]()
	}
	return p
}

// Get retrieves a *Node[Id] from the pool, or allocates one if empty.
// If p is nil, a fresh node is returned without tracking.
func (p *Pool[Id]) Get() *Node[Id] {
	if p == nil {
		return NewNode[Id]()
	}
	p.currentLive.Add(1)
	if p.pooledCount.Add(-1) < 0 {
		// underflowed past zero: this Get allocated fresh rather than
		// reusing an idle node (or sync.Pool's GC eviction ran ahead of
		// our bookkeeping); clamp back to zero.
		p.pooledCount.Store(0)
	}
	n := p.Pool.Get().(*Node[Id])
	if n.present == nil {
		n.present = make(map[Id]int)
	}
	return n
}

// Put returns n to the pool for reuse, resetting its state first. If p
// is nil or the pool is already at maxSize, n is discarded.
func (p *Pool[Id]) Put(n *Node[Id]) {
	if p == nil {
		return
	}
	p.currentLive.Add(-1)

	n.reset()

	if p.maxSize <= 0 || p.pooledCount.Load() >= p.maxSize {
		return // excess node dropped, per spec.md §4.5
	}
	p.pooledCount.Add(1)
	p.Pool.Put(n)
}

// Stats returns the number of currently checked-out nodes and the
// total number of *Node[Id] objects ever allocated by this pool.
func (p *Pool[Id]) Stats() (live int64, total int64) {
	if p == nil {
		return 0, 0
	}
	return p.currentLive.Load(), p.totalAllocated.Load()
}
