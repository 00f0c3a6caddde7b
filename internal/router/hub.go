package router

import (
	"sync"

	"github.com/google/uuid"

	"github.com/StoreStation/voxelengine/internal/voxel"
)

// Hub owns every connected client's Router, and fans a single
// on_chunk_ready event out to whichever clients were waiting on it.
type Hub struct {
	mu      sync.RWMutex
	routers map[uuid.UUID]*Router
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{routers: make(map[uuid.UUID]*Router)}
}

// Add registers a new client's Router, centered on center.
func (h *Hub) Add(id uuid.UUID, center voxel.Vec2) *Router {
	r := New(center)
	h.mu.Lock()
	h.routers[id] = r
	h.mu.Unlock()
	return r
}

// Remove drops a client's Router, per the cancellation contract: a
// disconnect atomically removes the client from the router.
func (h *Hub) Remove(id uuid.UUID) {
	h.mu.Lock()
	delete(h.routers, id)
	h.mu.Unlock()
}

// Get returns the Router for id, or nil.
func (h *Hub) Get(id uuid.UUID) *Router {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.routers[id]
}

// BroadcastChunkReady notifies every client's Router that coord has
// reached Ready.
func (h *Hub) BroadcastChunkReady(coord voxel.Vec2) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range h.routers {
		r.OnChunkReady(coord)
	}
}

// BroadcastUnload notifies every client's Router that coord should be
// dropped, used when a chunk is evicted or marked StageFailed.
func (h *Hub) BroadcastUnload(coord voxel.Vec2) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range h.routers {
		r.Unload(coord)
	}
}

// Each calls fn for every registered client id and Router.
func (h *Hub) Each(fn func(uuid.UUID, *Router)) {
	h.mu.RLock()
	snapshot := make(map[uuid.UUID]*Router, len(h.routers))
	for k, v := range h.routers {
		snapshot[k] = v
	}
	h.mu.RUnlock()
	for k, v := range snapshot {
		fn(k, v)
	}
}
