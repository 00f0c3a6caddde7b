// Package chunkstore maps chunk coordinates to chunks and assembles the
// neighborhood "space" views the light engine and mesher work over,
// grounded on original_source/crates/voxelize/src/chunks/space.rs.
package chunkstore

import (
	"container/list"
	"sync"

	"github.com/StoreStation/voxelengine/internal/voxel"
)

// ErrOutOfBounds is returned when a coordinate falls outside the
// store's configured min/max chunk bounds.
type ErrOutOfBounds struct {
	Coord voxel.Vec2
}

func (e ErrOutOfBounds) Error() string { return "chunkstore: coordinate out of bounds" }

// Bounds is the inclusive world bound in chunk coordinates.
type Bounds struct {
	Min, Max voxel.Vec2
}

func (b Bounds) Contains(c voxel.Vec2) bool {
	return c.X >= b.Min.X && c.X <= b.Max.X && c.Z >= b.Min.Z && c.Z <= b.Max.Z
}

// Store is the single authoritative mapping from chunk coordinate to
// chunk. At most one chunk exists per coordinate and chunk identity is
// stable for its lifetime: GetOrCreate always returns the same *Chunk
// for a given coordinate until it is evicted.
type Store struct {
	dims   voxel.Dimensions
	bounds Bounds

	mu      sync.Mutex
	chunks  map[voxel.Vec2]*Chunk
	lru     *list.List
	lruElem map[voxel.Vec2]*list.Element
}

// Chunk is the store's map entry for a voxel.Chunk; LRU order is kept
// separately in Store.lru and Store.lruElem.
type Chunk struct {
	*voxel.Chunk
}

// New creates an empty store over the given dimensions and world bounds.
func New(dims voxel.Dimensions, bounds Bounds) *Store {
	return &Store{
		dims:    dims,
		bounds:  bounds,
		chunks:  make(map[voxel.Vec2]*Chunk),
		lru:     list.New(),
		lruElem: make(map[voxel.Vec2]*list.Element),
	}
}

// Get returns the chunk at coord, or nil if it does not exist yet.
func (s *Store) Get(coord voxel.Vec2) *voxel.Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chunks[coord]
	if !ok {
		return nil
	}
	s.touch(coord)
	return c.Chunk
}

// GetOrCreate lazily creates the chunk at coord if it is within bounds.
// Chunks are created in the Empty status; the pipeline advances them.
func (s *Store) GetOrCreate(coord voxel.Vec2) (*voxel.Chunk, error) {
	if !s.bounds.Contains(coord) {
		return nil, ErrOutOfBounds{Coord: coord}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.chunks[coord]; ok {
		s.touch(coord)
		return c.Chunk, nil
	}
	nc := voxel.NewChunk(coord, s.dims)
	s.chunks[coord] = &Chunk{Chunk: nc}
	s.touch(coord)
	return nc, nil
}

func (s *Store) touch(coord voxel.Vec2) {
	if e, ok := s.lruElem[coord]; ok {
		s.lru.MoveToFront(e)
		return
	}
	s.lruElem[coord] = s.lru.PushFront(coord)
}

// EvictBeyond evicts all chunks whose LRU position is beyond keep most
// recently touched entries, except those within protect of center,
// implementing the "LRU beyond a preload+interest radius" lifecycle
// rule. A callback is invoked with each evicted chunk so the caller can
// flush it to persistence first.
func (s *Store) EvictBeyond(keep int, center voxel.Vec2, protect int32, onEvict func(*voxel.Chunk)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lru.Len() <= keep {
		return
	}
	for e := s.lru.Back(); e != nil && s.lru.Len() > keep; {
		coord := e.Value.(voxel.Vec2)
		prev := e.Prev()
		if voxel.ChunkDistanceSq(coord, center) <= int64(protect)*int64(protect) {
			e = prev
			continue
		}
		c := s.chunks[coord]
		delete(s.chunks, coord)
		delete(s.lruElem, coord)
		s.lru.Remove(e)
		if onEvict != nil && c != nil {
			onEvict(c.Chunk)
		}
		e = prev
	}
}

// Dimensions returns the store's chunk dimensions.
func (s *Store) Dimensions() voxel.Dimensions { return s.dims }

// Bounds returns the store's configured world bounds.
func (s *Store) Bounds() Bounds { return s.bounds }

// Len returns the number of live chunks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks)
}

// Range calls fn for every live chunk. fn must not mutate the store.
func (s *Store) Range(fn func(voxel.Vec2, *voxel.Chunk)) {
	s.mu.Lock()
	snapshot := make(map[voxel.Vec2]*voxel.Chunk, len(s.chunks))
	for k, v := range s.chunks {
		snapshot[k] = v.Chunk
	}
	s.mu.Unlock()
	for k, v := range snapshot {
		fn(k, v)
	}
}
