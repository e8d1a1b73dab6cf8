// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package bulk

import (
	"context"
	"sync"
	"time"

	"github.com/kgaiser/spatialidx/config"
	"github.com/kgaiser/spatialidx/geom"
	"github.com/kgaiser/spatialidx/index"
)

// RemoveResult reports which ids were actually live and removed.
type RemoveResult struct {
	Removed []bool
	Timings map[string]time.Duration
}

// Remove deletes every id in ids, fanned out across cfg.BulkRegionCount
// goroutines (spec.md §4.8: "bulk remove ... follow the same
// partitioning discipline"). Unlike Insert, removal has no spatial key
// to partition by until the entity is looked up, so ids are simply
// striped across workers.
func Remove[Content any](ctx context.Context, ix *index.Index[Content], cfg config.Config, ids []uint64) *RemoveResult {
	start := time.Now()
	res := &RemoveResult{Removed: make([]bool, len(ids)), Timings: make(map[string]time.Duration)}

	workers := cfg.BulkRegionCount
	if workers <= 0 {
		workers = 1
	}
	phaseCtx, cancel := withPhaseTimeout(ctx, cfg)
	defer cancel()

	var wg sync.WaitGroup
	for _, c := range chunkIndices(len(ids), workers) {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := c.lo; i < c.hi; i++ {
				select {
				case <-phaseCtx.Done():
					return
				default:
				}
				res.Removed[i] = ix.Remove(ids[i])
			}
		}()
	}
	wg.Wait()

	res.Timings["remove"] = time.Since(start)
	return res
}

// UpdateRequest is one entity's relocation target for Update.
type UpdateRequest struct {
	ID       uint64
	Position geom.Vec3
	Level    uint8
}

// UpdateResult reports per-request errors, parallel to the input slice.
type UpdateResult struct {
	Errors  []error
	Timings map[string]time.Duration
}

// Update relocates every request, fanned out the same way as Remove.
// Per spec.md §4.8, "update is remove-then-insert"; here it reuses
// index.Index.Update directly, which already performs that
// remove-then-insert sequence under a single write-lock acquisition
// per entity.
func Update[Content any](ctx context.Context, ix *index.Index[Content], cfg config.Config, reqs []UpdateRequest) *UpdateResult {
	start := time.Now()
	res := &UpdateResult{Errors: make([]error, len(reqs)), Timings: make(map[string]time.Duration)}

	workers := cfg.BulkRegionCount
	if workers <= 0 {
		workers = 1
	}
	phaseCtx, cancel := withPhaseTimeout(ctx, cfg)
	defer cancel()

	var wg sync.WaitGroup
	for _, c := range chunkIndices(len(reqs), workers) {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := c.lo; i < c.hi; i++ {
				select {
				case <-phaseCtx.Done():
					res.Errors[i] = phaseCtx.Err()
					continue
				default:
				}
				r := reqs[i]
				res.Errors[i] = ix.Update(r.ID, r.Position, r.Level)
			}
		}()
	}
	wg.Wait()

	res.Timings["update"] = time.Since(start)
	return res
}
