// Copyright (c) 2025 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package index

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/kgaiser/spatialidx/config"
	"github.com/kgaiser/spatialidx/entity"
	"github.com/kgaiser/spatialidx/geom"
	"github.com/kgaiser/spatialidx/internal/morton"
	"github.com/kgaiser/spatialidx/internal/tetree"
	"github.com/kgaiser/spatialidx/node"
	"github.com/kgaiser/spatialidx/spatialerr"
)

// Index is the shared spatial-index abstraction (spec.md §4.6): a
// single reader-writer lock guarding an entity store and a node store,
// sealed to one Kind of key algebra for its lifetime.
//
// Index is safe for concurrent use. Every read operation materializes
// its result before releasing the read lock; no lazy sequence escapes
// the lock (spec.md §5).
type Index[Content any] struct {
	mu  sync.RWMutex
	cfg config.Config
	kind Kind
	log *zap.Logger

	entities *entity.Store[uint64, Content, Key]
	nodes    *node.Store[Key, uint64]
	pool     *node.Pool[uint64]

	// deferred holds oversized cells recorded instead of split inline,
	// when cfg.DeferSubdivision is set (spec.md §4.8 phase 3-4). Drained
	// by SubdivideDeferred.
	deferred map[Key]struct{}
}

// New builds an empty Index of the given kind.
func New[Content any](kind Kind, cfg config.Config, log *zap.Logger) *Index[Content] {
	if log == nil {
		log = zap.NewNop()
	}
	pool := node.NewPool[uint64](cfg.PoolMaxSize)
	return &Index[Content]{
		cfg:      cfg,
		kind:     kind,
		log:      log,
		entities: entity.New[uint64, Content, Key](),
		nodes:    node.NewStore[Key, uint64](pool, lessKey),
		pool:     pool,
	}
}

// Kind returns which key algebra this index uses.
func (ix *Index[Content]) Kind() Kind { return ix.kind }

// Config returns the index's immutable configuration.
func (ix *Index[Content]) Config() config.Config { return ix.cfg }

func quantize(pos geom.Vec3) (x, y, z uint32, err error) {
	if !pos.Valid() {
		return 0, 0, 0, spatialerr.New("quantize", spatialerr.InvalidCoordinate, "position must be finite and non-negative")
	}
	if pos.X >= float32(morton.MaxCoord) || pos.Y >= float32(morton.MaxCoord) || pos.Z >= float32(morton.MaxCoord) {
		return 0, 0, 0, spatialerr.New("quantize", spatialerr.InvalidCoordinate, "position exceeds addressable range")
	}
	return uint32(pos.X), uint32(pos.Y), uint32(pos.Z), nil
}

func (ix *Index[Content]) keyForPoint(pos geom.Vec3, level uint8) (Key, error) {
	if level > ix.cfg.MaxDepth {
		return Key{}, spatialerr.New("keyForPoint", spatialerr.InvalidLevel, "level exceeds max_depth")
	}
	x, y, z, err := quantize(pos)
	if err != nil {
		return Key{}, err
	}
	if ix.kind == TetreeKind {
		return tetreeKeyForPoint(x, y, z, level)
	}
	return octreeKeyForPoint(x, y, z, level)
}

// keysForBounds returns every key at level whose cell intersects
// bounds, for spanning insertion (spec.md §4.6's "inserts into all
// cells intersecting bounds at level").
func (ix *Index[Content]) keysForBounds(bounds geom.Aabb, level uint8) ([]Key, error) {
	minX, minY, minZ, err := quantize(bounds.Min)
	if err != nil {
		return nil, err
	}
	maxX, maxY, maxZ, err := quantize(bounds.Max)
	if err != nil {
		return nil, err
	}
	size := morton.CellSize(level)

	var keys []Key
	for x := morton.CellOrigin(minX, level); x <= maxX; x += size {
		for y := morton.CellOrigin(minY, level); y <= maxY; y += size {
			for z := morton.CellOrigin(minZ, level); z <= maxZ; z += size {
				var k Key
				var err error
				if ix.kind == TetreeKind {
					k, err = tetreeKeyForPoint(x, y, z, level)
				} else {
					k, err = octreeKeyForPoint(x, y, z, level)
				}
				if err != nil {
					return nil, err
				}
				keys = append(keys, k)
			}
		}
	}
	return keys, nil
}

// Insert generates a new id, stores content at position at level, and
// returns the id (spec.md §4.6).
func (ix *Index[Content]) Insert(pos geom.Vec3, level uint8, content Content) (uint64, error) {
	key, err := ix.keyForPoint(pos, level)
	if err != nil {
		return 0, err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	id := ix.cfg.IDGenerator.Next()
	ix.entities.CreateOrUpdate(id, content, pos)
	ix.addToCell(id, key)
	return id, nil
}

// InsertWithBounds inserts id (which must not already be live) at
// position/level, spanning every cell intersecting bounds when the
// configured SpanningPolicy and a non-nil bounds both allow it.
func (ix *Index[Content]) InsertWithBounds(id uint64, pos geom.Vec3, level uint8, content Content, bounds *geom.Aabb) error {
	key, err := ix.keyForPoint(pos, level)
	if err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.entities.Contains(id) {
		return spatialerr.New("InsertWithBounds", spatialerr.DuplicateEntity, "id already live")
	}

	if bounds != nil {
		ix.entities.CreateOrUpdateBounds(id, content, *bounds)
	} else {
		ix.entities.CreateOrUpdate(id, content, pos)
	}

	if bounds != nil && ix.cfg.SpanningPolicy == config.SpanningBoundsRequired {
		keys, err := ix.keysForBounds(*bounds, level)
		if err != nil {
			return err
		}
		for _, k := range keys {
			ix.addToCell(id, k)
		}
		return nil
	}

	ix.addToCell(id, key)
	return nil
}

// addToCell registers id at key in both the node store and the
// entity's location set. If the cell exceeds max_entities_per_node it
// is subdivided immediately (spec.md §4.6's "live mode" choice), or,
// with cfg.DeferSubdivision set, recorded in ix.deferred for
// SubdivideDeferred. Must be called with the write lock held.
func (ix *Index[Content]) addToCell(id uint64, key Key) {
	n := ix.nodes.GetOrCreate(key)
	shouldSplit := n.AddEntity(id, ix.cfg.MaxEntitiesPerNode)
	_ = ix.entities.AddLocation(id, key)

	if !shouldSplit || key.Level >= ix.cfg.MaxDepth {
		return
	}

	if ix.cfg.DeferSubdivision {
		if ix.deferred == nil {
			ix.deferred = make(map[Key]struct{})
		}
		ix.deferred[key] = struct{}{}
		return
	}

	ix.subdivide(key, n)
}

// SubdivideDeferred processes cells recorded as subdivision candidates
// while cfg.DeferSubdivision was set (spec.md §4.8 phase 4), largest
// entity_count first, up to maxNodes of them; remaining candidates are
// left oversized and stay queued for a later call. Must be called
// without holding any lock ix already guards internally. Returns the
// number of cells subdivided.
func (ix *Index[Content]) SubdivideDeferred(maxNodes uint32) int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if len(ix.deferred) == 0 {
		return 0
	}

	keys := make([]Key, 0, len(ix.deferred))
	for k := range ix.deferred {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return ix.entityCountAt(keys[i]) > ix.entityCountAt(keys[j])
	})

	processed := 0
	for _, k := range keys {
		if uint32(processed) >= maxNodes {
			break
		}
		delete(ix.deferred, k)
		n := ix.nodes.Get(k)
		if n == nil {
			continue
		}
		ix.subdivide(k, n)
		processed++
	}
	return processed
}

func (ix *Index[Content]) entityCountAt(key Key) int {
	n := ix.nodes.Get(key)
	if n == nil {
		return 0
	}
	return n.EntityCount()
}

// subdivide partitions a node's entities into its 8 children at the
// next-finer level and clears the parent (spec.md §4.6). Must be
// called with the write lock held.
func (ix *Index[Content]) subdivide(key Key, n *node.Node[uint64]) {
	ids := append([]uint64(nil), n.EntityIDs()...)
	for _, id := range ids {
		pos, err := ix.entities.GetPosition(id)
		if err != nil {
			continue
		}
		x, y, z, err := quantize(pos)
		if err != nil {
			continue
		}
		childLevel := key.Level + 1
		var childKey Key
		if ix.kind == TetreeKind {
			childKey, err = tetreeKeyForPoint(x, y, z, childLevel)
		} else {
			childKey, err = octreeKeyForPoint(x, y, z, childLevel)
		}
		if err != nil {
			continue
		}

		n.RemoveEntity(id)
		if removed, _ := ix.entities.RemoveLocation(id, key); !removed {
			continue
		}

		child := ix.nodes.GetOrCreate(childKey)
		childShouldSplit := child.AddEntity(id, ix.cfg.MaxEntitiesPerNode)
		_ = ix.entities.AddLocation(id, childKey)
		ix.setChildPresence(key, childKey, true)

		if childShouldSplit && childKey.Level < ix.cfg.MaxDepth {
			ix.subdivide(childKey, child)
		}
	}
}

// setChildPresence flips parent's children_mask bit for the branch
// leading to child. Both trees branch 8-wide, keyed by the same
// cube-id local index, so one formula serves both kinds.
func (ix *Index[Content]) setChildPresence(parent, child Key, present bool) {
	p := ix.nodes.Get(parent)
	if p == nil {
		return
	}
	cid := ix.localIndexBetween(parent, child)
	if present {
		p.SetChildBit(cid)
	} else {
		p.ClearChildBit(cid)
	}
}

func (ix *Index[Content]) localIndexBetween(parent, child Key) uint8 {
	if ix.kind == TetreeKind {
		tet, err := tetree.TetOf(child.Code, child.Level)
		if err != nil {
			return 0
		}
		return tetree.CubeID(tet.X, tet.Y, tet.Z, child.Level)
	}
	x, y, z := morton.Decode(child.Code)
	return morton.OctantOf(x, y, z, child.Level)
}

// Remove deletes id from every location it occupies and prunes any
// cell left empty and childless.
func (ix *Index[Content]) Remove(id uint64) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if !ix.entities.Contains(id) {
		return false
	}
	locs, _ := ix.entities.Locations(id)
	for _, key := range locs {
		ix.removeFromCell(id, key)
	}
	ix.entities.Remove(id)
	return true
}

// removeFromCell must be called with the write lock held.
func (ix *Index[Content]) removeFromCell(id uint64, key Key) {
	n := ix.nodes.Get(key)
	if n == nil {
		return
	}
	n.RemoveEntity(id)
	if n.IsEmpty() {
		ix.nodes.Delete(key)
	}
}

// Update atomically relocates id to newPosition at level.
func (ix *Index[Content]) Update(id uint64, newPos geom.Vec3, level uint8) error {
	key, err := ix.keyForPoint(newPos, level)
	if err != nil {
		return err
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if !ix.entities.Contains(id) {
		return spatialerr.New("Update", spatialerr.UnknownEntity, "entity not found")
	}

	locs, _ := ix.entities.Locations(id)
	for _, oldKey := range locs {
		ix.removeFromCell(id, oldKey)
		_, _ = ix.entities.RemoveLocation(id, oldKey)
	}

	content, _ := ix.entities.GetContent(id)
	ix.entities.CreateOrUpdate(id, content, newPos)
	ix.addToCell(id, key)
	return nil
}

// GetEntity returns id's content.
func (ix *Index[Content]) GetEntity(id uint64) (Content, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.entities.GetContent(id)
}

// GetPosition returns id's representative position.
func (ix *Index[Content]) GetPosition(id uint64) (geom.Vec3, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.entities.GetPosition(id)
}

// GetBounds returns id's bounding volume, if any.
func (ix *Index[Content]) GetBounds(id uint64) (geom.Aabb, bool, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.entities.GetBounds(id)
}

// Contains reports whether id is currently live.
func (ix *Index[Content]) Contains(id uint64) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.entities.Contains(id)
}

// Lookup returns the ids stored at the specific cell containing
// position at level, in insertion order.
func (ix *Index[Content]) Lookup(pos geom.Vec3, level uint8) ([]uint64, error) {
	key, err := ix.keyForPoint(pos, level)
	if err != nil {
		return nil, err
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	n := ix.nodes.Get(key)
	if n == nil {
		return nil, nil
	}
	return append([]uint64(nil), n.EntityIDs()...), nil
}

// Stats returns the number of live entities and live (non-empty) nodes.
func (ix *Index[Content]) Stats() (entityCount, nodeCount int) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.entities.Len(), ix.nodes.Len()
}
