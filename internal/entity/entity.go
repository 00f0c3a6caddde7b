// Package entity is a small ECS-lite registry: entities carry a fixed
// set of typed components (Transform, Metadata) rather than a generic
// dictionary, per the engine's "typed tagged union, not a map"
// requirement. Grounded on original_source's
// server/world/sys/entity_meta.rs (per-entity component snapshot
// assembled into a metadata blob) and
// server/world/systems/entity/bookkeeping.rs (create/remove diffing
// across ticks), generalized from specs' ECS storage to direct fields.
package entity

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Transform is an entity's position and facing.
type Transform struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
}

// MetaKind tags which typed fields of Metadata are populated,
// implementing the "tagged union, not a generic dictionary" shape.
type MetaKind uint8

const (
	MetaKindNone MetaKind = iota
	MetaKindPlayer
	MetaKindItem
	MetaKindCustom
)

// Metadata is an entity's wire-serialized state. Known kinds use their
// typed fields; Extra is the escape hatch for fields no typed kind
// covers yet, matching original_source's Metadata{component, value} list
// collapsed into one JSON-friendly struct per entity.
type Metadata struct {
	Kind MetaKind `json:"kind"`

	// MetaKindPlayer
	Health   float32 `json:"health,omitempty"`
	OnGround bool    `json:"onGround,omitempty"`

	// MetaKindItem
	ItemID uint32 `json:"itemId,omitempty"`
	Count  uint8  `json:"count,omitempty"`

	Extra map[string]any `json:"extra,omitempty"`
}

// Entity is one ECS-lite record: a stable UUID, a type tag, a
// Transform, and typed Metadata.
type Entity struct {
	ID       uuid.UUID
	Type     string
	Transform Transform
	Metadata Metadata
}

// Registry owns every live entity, keyed by id. Guarded by a mutex since
// Spawn/Despawn run on the transport layer's per-connection goroutines
// while All/Get are read from the dispatcher's tick loop.
type Registry struct {
	mu       sync.Mutex
	entities map[uuid.UUID]*Entity
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entities: make(map[uuid.UUID]*Entity)}
}

// Spawn creates and registers a new entity of the given type.
func (r *Registry) Spawn(etype string) *Entity {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := &Entity{ID: uuid.New(), Type: etype}
	r.entities[e.ID] = e
	return e
}

// SpawnWithID creates and registers a new entity keyed by a
// caller-supplied id, used when an entity's lifetime must track an
// external identity (a connected client's session id).
func (r *Registry) SpawnWithID(id uuid.UUID, etype string) *Entity {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := &Entity{ID: id, Type: etype}
	r.entities[id] = e
	return e
}

// Despawn removes an entity by id, a no-op if it does not exist.
func (r *Registry) Despawn(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entities, id)
}

// Get returns the entity for id, or nil.
func (r *Registry) Get(id uuid.UUID) *Entity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entities[id]
}

// All returns every live entity. The returned slice is a fresh copy of
// the pointer set, safe to range over while the registry is mutated.
func (r *Registry) All() []*Entity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Entity, 0, len(r.entities))
	for _, e := range r.entities {
		out = append(out, e)
	}
	return out
}

// Len reports the number of live entities.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entities)
}
