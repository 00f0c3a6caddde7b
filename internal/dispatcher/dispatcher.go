// Package dispatcher's tick loop is the engine's single authority: every
// system below runs in the same fixed order, once per tick, with no
// accumulated debt when a tick overruns its budget — the next tick
// simply starts late rather than running twice, grounded on the
// teacher's pkg/server.Start ticker loop and spec.md 5's ordered-phase
// requirement.
package dispatcher

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/StoreStation/voxelengine/internal/entity"
	"github.com/StoreStation/voxelengine/internal/persist"
	"github.com/StoreStation/voxelengine/internal/physics"
	"github.com/StoreStation/voxelengine/internal/router"
	"github.com/StoreStation/voxelengine/internal/voxel"
	"github.com/StoreStation/voxelengine/internal/wire"
)

// Dispatcher owns the World and drives its tick loop.
type Dispatcher struct {
	World *World
}

// New wraps w in a Dispatcher ready to Run.
func New(w *World) *Dispatcher {
	return &Dispatcher{World: w}
}

// Run starts the transport's HTTP listener in the background and then
// blocks, ticking at Config.TickInterval until ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- d.World.Transport.Start(d.World.Config.ListenAddr, d.World.Config.WSPath)
	}()

	ticker := time.NewTicker(d.World.Config.TickInterval)
	defer ticker.Stop()

	var tickCount uint64
	for {
		select {
		case <-ctx.Done():
			d.World.Transport.Stop()
			return ctx.Err()
		case err := <-errCh:
			return err
		case <-ticker.C:
			start := time.Now()
			d.Tick(ctx, tickCount)
			tickCount++
			if elapsed := time.Since(start); elapsed > d.World.Config.TickInterval {
				log.Printf("[dispatcher] tick %d overran budget: %v", tickCount, elapsed)
			}
		}
	}
}

// Tick runs one pass of every system in a fixed order: chunk requests
// (inbox) -> pipelining, with meshing folded in since the mesh stage is
// the pipeline's last stage -> ready detection -> router promotion ->
// chunk sending -> physics -> entity metadata broadcast -> cleanup.
// There is no separate stats pass; stats.json is written from cleanup.
func (d *Dispatcher) Tick(ctx context.Context, tick uint64) {
	w := d.World

	w.drainInbox()
	coords := w.tickPipeline(ctx)
	newlyReady := w.detectReady(coords)
	for _, coord := range newlyReady {
		w.Hub.BroadcastChunkReady(coord)
	}

	w.promoteRouters()
	w.sendChunks()

	w.stepPhysics()
	w.broadcastEntities(tick)

	w.cleanup(tick)
}

// drainInbox processes every packet the transport layer queued since
// the previous tick, non-blocking once the channel is empty.
func (w *World) drainInbox() {
	for {
		select {
		case in := <-w.Transport.Inbox:
			w.handleInbound(in)
		default:
			return
		}
	}
}

// tickPipeline runs the pipeline over every live chunk coordinate and
// returns that coordinate set (reused by detectReady and sendChunks so
// each is computed once per tick).
func (w *World) tickPipeline(ctx context.Context) []voxel.Vec2 {
	var coords []voxel.Vec2
	w.Store.Range(func(c voxel.Vec2, _ *voxel.Chunk) { coords = append(coords, c) })
	w.Pipeline.Tick(ctx, coords)
	return coords
}

// detectReady returns the subset of coords whose chunk just reached
// Ready this tick (readyChunks tracks what was already known Ready as
// of the previous tick, so this reports only the transition).
func (w *World) detectReady(coords []voxel.Vec2) []voxel.Vec2 {
	var fresh []voxel.Vec2
	seen := make(map[voxel.Vec2]struct{}, len(coords))
	for _, c := range coords {
		seen[c] = struct{}{}
		chunk := w.Store.Get(c)
		if chunk == nil || chunk.Status() != voxel.StatusReady {
			continue
		}
		w.mu.Lock()
		_, known := w.readyChunks[c]
		if !known {
			w.readyChunks[c] = struct{}{}
		}
		w.mu.Unlock()
		if !known {
			fresh = append(fresh, c)
			if w.Save != nil {
				if err := w.Save.SaveChunk(chunk); err != nil {
					log.Printf("[world] save chunk %v: %v", c, err)
				}
			}
		}
	}

	w.mu.Lock()
	for c := range w.readyChunks {
		if _, ok := seen[c]; !ok {
			delete(w.readyChunks, c)
		}
	}
	w.mu.Unlock()
	return fresh
}

// promoteRouters advances each connected client's pending chunk queue
// into waiting, submitting each newly-waited coordinate to the store so
// the pipeline picks it up next tick.
func (w *World) promoteRouters() {
	budget := w.Config.MaxChunksPerTick
	w.Hub.Each(func(_ uuid.UUID, r *router.Router) {
		r.Promote(budget, func(c voxel.Vec2) {
			if _, err := w.Store.GetOrCreate(c); err != nil {
				return
			}
		})
	})
}

// sendChunks flushes each client's router outbox (newly-loaded chunks)
// and unload queue as LOAD/UNLOAD packets.
func (w *World) sendChunks() {
	sent := 0
	w.Hub.Each(func(id uuid.UUID, r *router.Router) {
		for _, msg := range r.DrainOutbox() {
			if sent >= w.Config.MaxResponsePerTick {
				return
			}
			chunk := w.Store.Get(msg.Coord)
			if chunk == nil {
				continue
			}
			levels := allSubChunkLevels(w.Config.SubChunks)
			payload := wire.EncodeLoadChunk(msg.Coord, chunk, levels)
			w.Transport.Send(id, wire.Packet{Type: wire.Load, Payload: payload})
			sent++
		}
		if unloads := r.DrainUnloads(); len(unloads) > 0 {
			w.Transport.Send(id, wire.Packet{Type: wire.Unload, Payload: wire.EncodeUnload(unloads)})
			sent += len(unloads)
		}
	})
}

func allSubChunkLevels(subChunks int32) []int32 {
	out := make([]int32, subChunks)
	for i := range out {
		out[i] = int32(i)
	}
	return out
}

// stepPhysics advances every connected client's rigid body by one tick
// and resolves inter-body collisions, using the registry's Passable
// flag as the voxel-solidity predicate.
func (w *World) stepPhysics() {
	w.mu.Lock()
	bodies := make([]*physics.RigidBody, 0, len(w.bodies))
	ids := make([]uuid.UUID, 0, len(w.bodies))
	for id, b := range w.bodies {
		bodies = append(bodies, b)
		ids = append(ids, id)
	}
	w.mu.Unlock()

	dt := float32(w.Config.TickInterval.Seconds())
	solid := w.solidAt()
	fluid := w.fluidAt()
	for i, b := range bodies {
		physics.Step(b, dt, solid, fluid)
		if e := w.Entities.Get(ids[i]); e != nil {
			e.Transform.Position = b.Position()
			e.Metadata.OnGround = b.Resting.Y < 0
		}
	}

	physics.ResolveRepulsion(bodies, physics.Config{CollisionRepulsion: w.Config.CollisionRepulsion})
}

func (w *World) solidAt() physics.SolidAt {
	dims := w.Config.Dimensions()
	return func(x, y, z int32) bool {
		coord := dims.WorldToChunk(voxel.Vec3{X: x, Y: y, Z: z})
		chunk := w.Store.Get(coord)
		if chunk == nil {
			return false
		}
		local := dims.WorldToLocal(voxel.Vec3{X: x, Y: y, Z: z})
		id := chunk.GetVoxel(local.X, local.Y, local.Z)
		desc := w.Registry.BlockByID(id)
		return desc != nil && !desc.Passable
	}
}

func (w *World) fluidAt() physics.FluidAt {
	dims := w.Config.Dimensions()
	return func(x, y, z int32) bool {
		coord := dims.WorldToChunk(voxel.Vec3{X: x, Y: y, Z: z})
		chunk := w.Store.Get(coord)
		if chunk == nil {
			return false
		}
		local := dims.WorldToLocal(voxel.Vec3{X: x, Y: y, Z: z})
		id := chunk.GetVoxel(local.X, local.Y, local.Z)
		desc := w.Registry.BlockByID(id)
		return desc != nil && desc.Fluid
	}
}

// broadcastEntities diffs the entity registry against last tick's known
// set and broadcasts create/update/remove events, plus a full metadata
// snapshot every StatsSyncInterval ticks so a client that missed a delta
// (or just joined) still converges on the true state.
func (w *World) broadcastEntities(tick uint64) {
	updates := w.Book.Diff(w.Entities)
	if int(tick)%w.Config.StatsSyncInterval == 0 {
		updates = append(updates, entity.Snapshot(w.Entities)...)
	}
	if len(updates) == 0 {
		return
	}
	data, err := entity.MarshalUpdates(updates)
	if err != nil {
		return
	}
	w.Transport.Broadcast(wire.Packet{Type: wire.Entity, Payload: data})
}

// cleanup evicts least-recently-used chunks once more than 4096 are
// live, sparing those within 3*PreloadRadius of one connected client's
// center (the origin when no client is connected); chunks near other
// clients are not spared. It also periodically persists world-level
// stats.
func (w *World) cleanup(tick uint64) {
	w.mu.Lock()
	var anyCenter voxel.Vec2
	for _, cs := range w.clients {
		anyCenter = cs.center
		break
	}
	w.mu.Unlock()

	w.Store.EvictBeyond(4096, anyCenter, w.Config.PreloadRadius*3, func(c *voxel.Chunk) {
		w.Hub.BroadcastUnload(c.Coord)
		if w.Save != nil {
			if err := w.Save.SaveChunk(c); err != nil {
				log.Printf("[world] save evicted chunk %v: %v", c.Coord, err)
			}
		}
	})

	if w.Save != nil && int(tick)%w.Config.StatsSyncInterval == 0 {
		st := persist.Stats{
			Seed:          w.Config.Seed,
			TotalChunks:   w.Store.Len(),
			TotalEntities: w.Entities.Len(),
			TicksElapsed:  tick,
		}
		if err := w.Save.SaveStats(st); err != nil {
			log.Printf("[world] save stats: %v", err)
		}
	}
}
