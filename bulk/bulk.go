// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package bulk implements the region-partitioned bulk insertion layer
// (spec.md §4.8, C7): a bulk call runs four phases — preprocess,
// partition, region-parallel insert, and finalize — over parallel
// arrays of positions and contents, using golang.org/x/sync/errgroup
// for the preprocess fan-out, plain goroutines and a sync.WaitGroup for
// the insert fan-out, and a per-phase context.Context timeout for
// cancellation.
package bulk

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kgaiser/spatialidx/config"
	"github.com/kgaiser/spatialidx/geom"
	"github.com/kgaiser/spatialidx/index"
	"github.com/kgaiser/spatialidx/internal/morton"
	"github.com/kgaiser/spatialidx/spatialerr"
)

// regionBits is the per-axis width of a bulk region address (spec.md
// §4.8: "6 bits per axis = 64^3 regions").
const regionBits = 6

// region is a coarse spatial bucket used only to partition the insert
// phase's goroutines; it has no bearing on the index's own key algebra.
type region uint32

func regionOf(x, y, z uint32) region {
	const shift = morton.MaxLevel - regionBits
	rx := region(x >> shift)
	ry := region(y >> shift)
	rz := region(z >> shift)
	return rx<<(2*regionBits) | ry<<regionBits | rz
}

// Result reports the outcome of a bulk call. IDs and Errors are
// parallel to the request's input slices: IDs[i] is 0 and Errors[i] is
// non-nil for any entity that failed validation (spec.md §5's "per-
// entity validation failures are collected ... and do not abort the
// bulk call").
type Result struct {
	IDs        []uint64
	Errors     []error
	Timings    map[string]time.Duration
	Entities   int // count of entities successfully inserted
	Nodes      int // live node count after finalize
	Subdivided int // cells subdivided during finalize (only nonzero with DeferSubdivision)
}

type preprocessed struct {
	idx    int
	pos    geom.Vec3
	region region
	sortBy uint64
	err    error
}

// Insert runs the four-phase bulk insertion of positions[i]/contents[i]
// at level, honoring cfg's BulkRegionCount (preprocess/insert fan-out
// width) and BulkPhaseTimeoutMs (per-phase deadline). On a phase
// timeout, that phase's outstanding work aborts and every
// already-inserted entity remains indexed (spec.md §5).
func Insert[Content any](ctx context.Context, ix *index.Index[Content], cfg config.Config, positions []geom.Vec3, contents []Content, level uint8) (*Result, error) {
	if len(positions) != len(contents) {
		return nil, spatialerr.New("bulk.Insert", spatialerr.InvalidConfig, "positions and contents must have equal length")
	}

	res := &Result{
		IDs:     make([]uint64, len(positions)),
		Errors:  make([]error, len(positions)),
		Timings: make(map[string]time.Duration),
	}
	workers := cfg.BulkRegionCount
	if workers <= 0 {
		workers = 1
	}

	items := preprocess(ctx, cfg, positions, workers, res)
	buckets := partition(items)
	insertByRegion(ctx, cfg, ix, buckets, contents, level, workers, res)
	finalize(ix, cfg, res)

	return res, nil
}

// preprocess computes each entity's region bucket and a Morton sort key
// in parallel (spec.md §4.8 phase 1). Entities with an invalid position
// are recorded as per-entity errors and excluded from the insert phase.
func preprocess(ctx context.Context, cfg config.Config, positions []geom.Vec3, workers int, res *Result) []preprocessed {
	start := time.Now()
	defer func() { res.Timings["preprocess"] = time.Since(start) }()

	phaseCtx, cancel := withPhaseTimeout(ctx, cfg)
	defer cancel()

	out := make([]preprocessed, len(positions))
	g, gctx := errgroup.WithContext(phaseCtx)
	chunks := chunkIndices(len(positions), workers)

	for _, c := range chunks {
		c := c
		g.Go(func() error {
			for i := c.lo; i < c.hi; i++ {
				select {
				case <-gctx.Done():
					out[i] = preprocessed{idx: i, err: gctx.Err()}
					continue
				default:
				}
				out[i] = quantizeOne(i, positions[i])
			}
			return nil
		})
	}
	_ = g.Wait() // per-entity errors are carried in out, not surfaced here

	for i, p := range out {
		if p.err != nil {
			res.Errors[i] = p.err
		}
	}
	return out
}

func quantizeOne(idx int, pos geom.Vec3) preprocessed {
	if !pos.Valid() || pos.X >= float32(morton.MaxCoord) || pos.Y >= float32(morton.MaxCoord) || pos.Z >= float32(morton.MaxCoord) {
		return preprocessed{idx: idx, pos: pos, err: spatialerr.New("bulk.Insert", spatialerr.InvalidCoordinate, "position must be finite, non-negative and addressable")}
	}
	x, y, z := uint32(pos.X), uint32(pos.Y), uint32(pos.Z)
	code, err := morton.Encode(x, y, z)
	if err != nil {
		return preprocessed{idx: idx, pos: pos, err: err}
	}
	return preprocessed{idx: idx, pos: pos, region: regionOf(x, y, z), sortBy: code}
}

// partition groups the preprocessed, error-free entities by region
// (spec.md §4.8 phase 2), each bucket sorted by Morton key for cache
// locality on the subsequent insert phase.
func partition(items []preprocessed) map[region][]preprocessed {
	buckets := make(map[region][]preprocessed)
	for _, p := range items {
		if p.err != nil {
			continue
		}
		buckets[p.region] = append(buckets[p.region], p)
	}
	for r := range buckets {
		b := buckets[r]
		sort.Slice(b, func(i, j int) bool { return b[i].sortBy < b[j].sortBy })
	}
	return buckets
}

// insertByRegion runs one goroutine per region bucket (spec.md §4.8
// phase 3). Every external call to ix still goes through its own
// read-write lock: the index does not (yet) expose region-scoped
// locks finer than the global one, so regions give the phase its
// errgroup/fan-out shape and its independent failure domain, while
// the actual mutation still serializes on ix's single RWMutex.
func insertByRegion[Content any](ctx context.Context, cfg config.Config, ix *index.Index[Content], buckets map[region][]preprocessed, contents []Content, level uint8, workers int, res *Result) {
	start := time.Now()
	defer func() { res.Timings["insert"] = time.Since(start) }()

	phaseCtx, cancel := withPhaseTimeout(ctx, cfg)
	defer cancel()

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for _, bucket := range buckets {
		bucket := bucket
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			for _, p := range bucket {
				select {
				case <-phaseCtx.Done():
					res.Errors[p.idx] = phaseCtx.Err()
					continue
				default:
				}
				id, err := ix.Insert(p.pos, level, contents[p.idx])
				if err != nil {
					res.Errors[p.idx] = err
					continue
				}
				res.IDs[p.idx] = id
			}
		}()
	}
	wg.Wait()
}

// finalize processes any subdivision candidates recorded while
// cfg.DeferSubdivision was set, largest entity_count first, up to
// cfg.MaxDeferredNodes (spec.md §4.8 phase 4), then records the
// index's post-bulk entity/node counts. With DeferSubdivision unset,
// the index already split every oversized cell inline during Insert,
// so SubdivideDeferred is a no-op and this is a pure reporting step.
func finalize[Content any](ix *index.Index[Content], cfg config.Config, res *Result) {
	start := time.Now()
	defer func() { res.Timings["finalize"] = time.Since(start) }()
	if cfg.DeferSubdivision {
		res.Subdivided = ix.SubdivideDeferred(cfg.MaxDeferredNodes)
	}
	res.Entities, res.Nodes = ix.Stats()
}

func withPhaseTimeout(ctx context.Context, cfg config.Config) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.BulkPhaseTimeoutMs <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(cfg.BulkPhaseTimeoutMs)*time.Millisecond)
}

type indexRange struct{ lo, hi int }

func chunkIndices(n, workers int) []indexRange {
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	if workers == 0 {
		return nil
	}
	size := (n + workers - 1) / workers
	var out []indexRange
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		out = append(out, indexRange{lo: lo, hi: hi})
	}
	return out
}
