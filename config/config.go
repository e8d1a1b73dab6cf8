// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package config holds the immutable, per-instance configuration for a
// spatial index (spec.md §6): subdivision thresholds, spanning policy,
// bulk-layer tunables, node-pool sizing, and the pluggable id
// generator. A Config is built once via New and functional Options,
// then shared read-only by every Octree/Tetree instance constructed
// from it.
package config

import (
	"github.com/kgaiser/spatialidx/idgen"
	"github.com/kgaiser/spatialidx/spatialerr"
)

// SpanningPolicy selects whether bounded entities are stored in every
// cell their bounds intersect, or only at their insertion cell.
type SpanningPolicy int

const (
	// SpanningNone stores every entity at a single cell, ignoring bounds.
	SpanningNone SpanningPolicy = iota
	// SpanningBoundsRequired spans an entity across every intersecting
	// cell, but only when it carries an explicit bounds.
	SpanningBoundsRequired
)

// Config is immutable once built; every field is read-only after New
// returns.
type Config struct {
	MaxEntitiesPerNode uint32
	MaxDepth           uint8
	SpanningPolicy     SpanningPolicy
	IDGenerator        idgen.Generator

	// Bulk / deferred-subdivision tunables (spec.md §7).
	DeferSubdivision   bool
	MaxDeferredNodes   uint32
	BulkRegionCount    int
	BulkPhaseTimeoutMs int64

	// Node-pool tunables (spec.md §5).
	PoolInitialSize  int
	PoolMaxSize      int
	PoolGrowthFactor float64
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithMaxEntitiesPerNode overrides the default subdivision threshold
// (default 10). Must be > 0.
func WithMaxEntitiesPerNode(n uint32) Option {
	return func(c *Config) { c.MaxEntitiesPerNode = n }
}

// WithMaxDepth overrides the default max depth (default 21, the finest
// representable Morton/Tetree level). Must be ≤ 21.
func WithMaxDepth(depth uint8) Option {
	return func(c *Config) { c.MaxDepth = depth }
}

// WithSpanningPolicy overrides the default spanning policy (default
// SpanningNone).
func WithSpanningPolicy(p SpanningPolicy) Option {
	return func(c *Config) { c.SpanningPolicy = p }
}

// WithIDGenerator overrides the default monotonic id generator.
func WithIDGenerator(g idgen.Generator) Option {
	return func(c *Config) { c.IDGenerator = g }
}

// WithDeferSubdivision enables the bulk layer's deferred-subdivision
// discipline (spec.md §4.8 phase 3-4): oversized cells are recorded as
// subdivision candidates instead of being split inline during insert,
// then processed by the bulk finalize phase, largest entity_count
// first, up to MaxDeferredNodes. The setting applies to every insert
// into an index built with this Config, including direct
// Index.Insert/Update calls; their candidates stay queued until
// Index.SubdivideDeferred runs.
func WithDeferSubdivision(enabled bool) Option {
	return func(c *Config) { c.DeferSubdivision = enabled }
}

// WithMaxDeferredNodes bounds how many subdivision candidates a bulk
// operation's finalize phase will process, largest entity_count first;
// remainder are left oversized.
func WithMaxDeferredNodes(n uint32) Option {
	return func(c *Config) { c.MaxDeferredNodes = n }
}

// WithBulkRegionCount sets how many goroutines a bulk
// insert/remove/update call runs at once (spec.md §7). The spatial
// regions themselves are fixed at 64 per axis.
func WithBulkRegionCount(n int) Option {
	return func(c *Config) { c.BulkRegionCount = n }
}

// WithBulkPhaseTimeout bounds each bulk phase's context deadline, in
// milliseconds. Zero means no deadline.
func WithBulkPhaseTimeout(ms int64) Option {
	return func(c *Config) { c.BulkPhaseTimeoutMs = ms }
}

// WithNodePool overrides the node pool's initial size, max size, and
// growth factor (spec.md §5: "an optional pool recycles node objects
// across add/remove churn").
func WithNodePool(initialSize, maxSize int, growthFactor float64) Option {
	return func(c *Config) {
		c.PoolInitialSize = initialSize
		c.PoolMaxSize = maxSize
		c.PoolGrowthFactor = growthFactor
	}
}

// New builds a Config from defaults plus the given options, and
// validates the result.
func New(opts ...Option) (Config, error) {
	c := Config{
		MaxEntitiesPerNode: 10,
		MaxDepth:           21,
		SpanningPolicy:     SpanningNone,
		IDGenerator:        idgen.NewMonotonic(),
		MaxDeferredNodes:   1 << 20,
		BulkRegionCount:    8,
		BulkPhaseTimeoutMs: 0,
		PoolInitialSize:    64,
		PoolMaxSize:        4096,
		PoolGrowthFactor:   2.0,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if c.MaxEntitiesPerNode == 0 {
		return spatialerr.New("config.New", spatialerr.InvalidConfig, "max_entities_per_node must be > 0")
	}
	if c.MaxDepth > 21 {
		return spatialerr.New("config.New", spatialerr.InvalidConfig, "max_depth must be <= 21")
	}
	if c.IDGenerator == nil {
		return spatialerr.New("config.New", spatialerr.InvalidConfig, "id_generator must not be nil")
	}
	if c.BulkRegionCount <= 0 {
		return spatialerr.New("config.New", spatialerr.InvalidConfig, "bulk region count must be > 0")
	}
	if c.PoolMaxSize < 0 || c.PoolInitialSize < 0 {
		return spatialerr.New("config.New", spatialerr.InvalidConfig, "pool sizes must be >= 0")
	}
	if c.PoolMaxSize > 0 && c.PoolInitialSize > c.PoolMaxSize {
		return spatialerr.New("config.New", spatialerr.InvalidConfig, "pool initial_size must be <= max_size")
	}
	return nil
}
