package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/StoreStation/voxelengine/internal/chunkstore"
	"github.com/StoreStation/voxelengine/internal/voxel"
	"github.com/StoreStation/voxelengine/internal/workerpool"
)

// ErrStageFailed names the stage-failure condition. The pipeline does not
// return or store it: a chunk that exhausts its retries is marked with
// chunk.MarkFailed, and chunk.FailedStage() reports the stage's name.
var ErrStageFailed = errors.New("pipeline: stage failed")

// Config bounds one Pipeline's per-tick behavior.
type Config struct {
	MaxChunksPerTick int
	MaxRetries       int
}

// Pipeline sequences every registered Stage over a Store's chunks, one
// tick at a time, honoring the neighbor-radius "stair" promotion rule
// and a max_chunks_per_tick cap. Built assuming exactly the last two
// stages are the built-in Light and Mesh stages, per spec.md 4.5's list
// of terminal stages.
type Pipeline struct {
	store  *chunkstore.Store
	stages []Stage
	pool   *workerpool.Pool
	cfg    Config

	mu         sync.Mutex
	stageIndex map[voxel.Vec2]int
	retries    map[voxel.Vec2]int

	// OnFailed, if set, is called once a chunk is marked StatusFailed,
	// letting the composition root tear down any client interest in a
	// coordinate the pipeline gave up on (spec.md 7's StageFailed->Unload
	// contract).
	OnFailed func(voxel.Vec2)
}

// New builds a Pipeline running generate, then userStages (Soil, Water,
// Tree, ...) in order, then the built-in Light and Mesh stages.
func New(store *chunkstore.Store, pool *workerpool.Pool, cfg Config, generate Stage, userStages []Stage, light, mesh Stage) *Pipeline {
	stages := make([]Stage, 0, 3+len(userStages))
	stages = append(stages, generate)
	stages = append(stages, userStages...)
	stages = append(stages, light, mesh)

	return &Pipeline{
		store:      store,
		stages:     stages,
		pool:       pool,
		cfg:        cfg,
		stageIndex: make(map[voxel.Vec2]int),
		retries:    make(map[voxel.Vec2]int),
	}
}

func (p *Pipeline) lightIndex() int { return len(p.stages) - 2 }
func (p *Pipeline) meshIndex() int  { return len(p.stages) - 1 }

func (p *Pipeline) statusFor(idx int) voxel.Status {
	switch {
	case idx <= 0:
		return voxel.StatusEmpty
	case idx <= p.lightIndex():
		return voxel.StatusGenerating
	case idx == p.meshIndex():
		return voxel.StatusMeshing
	default:
		return voxel.StatusReady
	}
}

func (p *Pipeline) completedIndex(coord voxel.Vec2) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stageIndex[coord]
}

// Tick runs one scheduling pass: for each stage index in order, collects
// every chunk whose completed count equals that index and whose
// neighbor-radius barrier is satisfied, then dispatches up to
// MaxChunksPerTick of them (lowest coordinate first, by X then Z, for
// determinism) to the worker pool in parallel.
func (p *Pipeline) Tick(ctx context.Context, coords []voxel.Vec2) {
	budget := p.cfg.MaxChunksPerTick
	if budget <= 0 {
		budget = len(coords)
	}

	sort.Slice(coords, func(i, j int) bool {
		if coords[i].X != coords[j].X {
			return coords[i].X < coords[j].X
		}
		return coords[i].Z < coords[j].Z
	})

	for stageIdx := range p.stages {
		if budget <= 0 {
			return
		}
		ready := p.frontier(coords, stageIdx)
		if len(ready) > budget {
			ready = ready[:budget]
		}
		if len(ready) == 0 {
			continue
		}
		budget -= len(ready)
		p.runStage(ctx, stageIdx, ready)
	}
}

// frontier returns the chunk coordinates that have completed exactly
// stageIdx stages and whose neighbor_radius(stageIdx) barrier is clear.
func (p *Pipeline) frontier(coords []voxel.Vec2, stageIdx int) []voxel.Vec2 {
	stage := p.stages[stageIdx]
	radius := stage.NeighborRadius()

	var out []voxel.Vec2
	for _, c := range coords {
		c := c
		p.mu.Lock()
		idx, retried := p.stageIndex[c], p.retries[c]
		p.mu.Unlock()
		if idx != stageIdx {
			continue
		}
		chunk := p.store.Get(c)
		if chunk == nil || chunk.Status() == voxel.StatusFailed {
			continue
		}
		if retried > p.cfg.MaxRetries {
			continue
		}
		if !p.neighborsReady(c, radius, stageIdx) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (p *Pipeline) neighborsReady(center voxel.Vec2, radius int32, stageIdx int) bool {
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			if dx == 0 && dz == 0 {
				continue
			}
			coord := voxel.Vec2{X: center.X + dx, Z: center.Z + dz}
			nc := p.store.Get(coord)
			if nc == nil {
				return false
			}
			if p.completedIndex(coord) < stageIdx {
				return false
			}
		}
	}
	return true
}

func (p *Pipeline) runStage(ctx context.Context, stageIdx int, coords []voxel.Vec2) {
	stage := p.stages[stageIdx]
	needs := stage.Needs()

	_ = workerpool.Run(ctx, p.pool, coords, func(ctx context.Context, coord voxel.Vec2) error {
		p.processOne(ctx, stage, stageIdx, coord, needs)
		return nil
	})
}

func (p *Pipeline) processOne(ctx context.Context, stage Stage, stageIdx int, coord voxel.Vec2, needs Needs) {
	chunk := p.store.Get(coord)
	if chunk == nil {
		return
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				p.recordFailure(coord, chunk, stage, fmt.Errorf("panic: %v", r))
			}
		}()

		opts := needs.options(true, p.statusFor(stageIdx))
		space, err := p.store.MakeSpaceFunc(coord, stage.NeighborRadius(), opts, func(c *voxel.Chunk) bool {
			return p.completedIndex(c.Coord) >= stageIdx
		})
		if err != nil {
			// Neighbor not ready yet: leave stageIndex unchanged, retry
			// next tick once the frontier check passes again.
			return
		}

		if err := stage.Process(ctx, chunk, space); err != nil {
			p.recordFailure(coord, chunk, stage, err)
			return
		}

		for _, bu := range space.ExtraBlockUpdates() {
			p.applyExtra(bu)
		}

		p.advance(coord, stageIdx+1)
	}()
}

func (p *Pipeline) applyExtra(bu chunkstore.BlockUpdate) {
	dims := p.store.Dimensions()
	cc := dims.WorldToChunk(bu.Pos)
	c := p.store.Get(cc)
	if c == nil {
		return
	}
	local := dims.WorldToLocal(bu.Pos)
	c.SetRaw(local.X, local.Y, local.Z, bu.Value)
}

func (p *Pipeline) advance(coord voxel.Vec2, newIdx int) {
	p.mu.Lock()
	p.stageIndex[coord] = newIdx
	p.retries[coord] = 0
	p.mu.Unlock()

	if chunk := p.store.Get(coord); chunk != nil {
		chunk.SetStatus(p.statusFor(newIdx))
	}
}

func (p *Pipeline) recordFailure(coord voxel.Vec2, chunk *voxel.Chunk, stage Stage, err error) {
	retries := chunk.Retries()
	p.mu.Lock()
	p.retries[coord] = retries
	p.mu.Unlock()

	if retries > p.cfg.MaxRetries {
		chunk.MarkFailed(stage.Name())
		log.Printf("[pipeline] chunk %v failed stage %s after %d retries: %v", coord, stage.Name(), retries, err)
		if p.OnFailed != nil {
			p.OnFailed(coord)
		}
		return
	}
	log.Printf("[pipeline] chunk %v stage %s error (retry %d): %v", coord, stage.Name(), retries, err)
}

// Dirty returns the chunk to the Meshing stage while leaving its stored
// voxels intact, per spec.md 4.5's dirty-propagation rule (c): the
// chunk's stageIndex rewinds to the Mesh stage index so only re-meshing
// reruns, not regeneration.
func (p *Pipeline) Dirty(coord voxel.Vec2) {
	chunk := p.store.Get(coord)
	if chunk == nil {
		return
	}
	p.mu.Lock()
	if p.stageIndex[coord] > p.meshIndex() {
		p.stageIndex[coord] = p.meshIndex()
	}
	p.mu.Unlock()
	chunk.SetStatus(voxel.StatusMeshing)
}

// StatusOf returns the chunk's pipeline-derived status, for callers that
// only have a coordinate.
func (p *Pipeline) StatusOf(coord voxel.Vec2) voxel.Status {
	return p.statusFor(p.completedIndex(coord))
}
