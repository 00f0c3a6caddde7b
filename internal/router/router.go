// Package router implements the per-client chunk interest tracker: three
// queues (pending, waiting, loaded), of which pending is kept sorted by
// distance to the client's current chunk, grounded on spec.md 4.6 and generalized from
// the teacher's per-player view-distance bookkeeping in
// pkg/server/player.go.
package router

import (
	"sort"
	"sync"

	"github.com/StoreStation/voxelengine/internal/voxel"
)

// ChunkMessage is queued for delivery once a requested chunk reaches
// Ready; the dispatcher's chunk-sending system drains these per client.
type ChunkMessage struct {
	Coord voxel.Vec2
}

// Router tracks one client's three chunk queues: pending is a slice
// sorted nearest-first, waiting and loaded are unordered sets.
type Router struct {
	mu      sync.Mutex
	center  voxel.Vec2
	pending []voxel.Vec2
	waiting map[voxel.Vec2]struct{}
	loaded  map[voxel.Vec2]struct{}
	outbox  []ChunkMessage
	unloads []voxel.Vec2
}

// New returns an empty Router centered at center.
func New(center voxel.Vec2) *Router {
	return &Router{
		center:  center,
		waiting: make(map[voxel.Vec2]struct{}),
		loaded:  make(map[voxel.Vec2]struct{}),
	}
}

// Append pushes coord onto pending if it is not already known in any of
// the three queues.
func (r *Router) Append(coord voxel.Vec2) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.known(coord) {
		return
	}
	r.pending = append(r.pending, coord)
	r.sortPending()
}

func (r *Router) known(coord voxel.Vec2) bool {
	if _, ok := r.waiting[coord]; ok {
		return true
	}
	if _, ok := r.loaded[coord]; ok {
		return true
	}
	for _, p := range r.pending {
		if p == coord {
			return true
		}
	}
	return false
}

func (r *Router) sortPending() {
	sort.Slice(r.pending, func(i, j int) bool {
		return voxel.ChunkDistanceSq(r.pending[i], r.center) < voxel.ChunkDistanceSq(r.pending[j], r.center)
	})
}

// SetCenter updates the client's current chunk and re-sorts pending,
// per spec.md 4.6's "re-sort on chunk-border crossings".
func (r *Router) SetCenter(center voxel.Vec2) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if center == r.center {
		return
	}
	r.center = center
	r.sortPending()
}

// Promote moves up to budget chunks from pending into waiting, calling
// submit(coord) for each (the caller's job is to enqueue the coordinate
// into the pipeline's request set).
func (r *Router) Promote(budget int, submit func(voxel.Vec2)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := budget
	if n > len(r.pending) {
		n = len(r.pending)
	}
	for i := 0; i < n; i++ {
		coord := r.pending[i]
		r.waiting[coord] = struct{}{}
		submit(coord)
	}
	r.pending = r.pending[n:]
}

// OnChunkReady moves coord from waiting to loaded and queues a
// ChunkMessage, if this router's client was waiting on it.
func (r *Router) OnChunkReady(coord voxel.Vec2) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.waiting[coord]; !ok {
		return
	}
	delete(r.waiting, coord)
	r.loaded[coord] = struct{}{}
	r.outbox = append(r.outbox, ChunkMessage{Coord: coord})
}

// Unload drops coord from all three queues and records an unload
// notification.
func (r *Router) Unload(coord voxel.Vec2) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.waiting, coord)
	delete(r.loaded, coord)
	for i, p := range r.pending {
		if p == coord {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			break
		}
	}
	r.unloads = append(r.unloads, coord)
}

// DrainOutbox returns and clears the queued ChunkMessages ready to send.
func (r *Router) DrainOutbox() []ChunkMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.outbox
	r.outbox = nil
	return out
}

// DrainUnloads returns and clears the queued Unload notifications.
func (r *Router) DrainUnloads() []voxel.Vec2 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.unloads
	r.unloads = nil
	return out
}

// IsLoaded reports whether coord has already been sent to this client.
func (r *Router) IsLoaded(coord voxel.Vec2) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.loaded[coord]
	return ok
}

// PendingLen, WaitingLen and LoadedLen report queue sizes, mainly for
// tests and stats reporting.
func (r *Router) PendingLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

func (r *Router) WaitingLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.waiting)
}

func (r *Router) LoadedLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.loaded)
}
