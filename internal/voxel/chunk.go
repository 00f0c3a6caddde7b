package voxel

import (
	"sync"

	"github.com/StoreStation/voxelengine/internal/geom"
)

// Status is a chunk's position in the Empty -> Generating -> Meshing ->
// Ready pipeline. The only backwards transition is Ready -> Meshing,
// triggered by a voxel edit.
type Status uint8

const (
	StatusEmpty Status = iota
	StatusGenerating
	StatusMeshing
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusEmpty:
		return "empty"
	case StatusGenerating:
		return "generating"
	case StatusMeshing:
		return "meshing"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// AtLeast reports whether s is equal to or later in the pipeline than
// other. StatusFailed never satisfies AtLeast against a non-failed
// stage, since a failed chunk has stopped progressing.
func (s Status) AtLeast(other Status) bool {
	if s == StatusFailed || other == StatusFailed {
		return s == other
	}
	return s >= other
}

// Chunk is a fixed-size voxel/light/height column: ChunkSize x
// MaxHeight x ChunkSize voxels, split into SubChunks vertical slabs for
// mesh caching.
type Chunk struct {
	dims  Dimensions
	Coord Vec2

	mu         sync.RWMutex
	voxels     []Voxel
	lights     []Light
	maxHeight  []int32 // per (x,z) column, length ChunkSize*ChunkSize
	status     Status
	failedName string // set when status == StatusFailed
	retries    int

	dirtySubChunks map[int32]struct{}
	meshes         map[int32]map[geom.MaterialKey]*geom.Geometry
}

// NewChunk allocates an empty chunk at coord for the given dimensions.
func NewChunk(coord Vec2, dims Dimensions) *Chunk {
	n := dims.ChunkSize * dims.MaxHeight * dims.ChunkSize
	return &Chunk{
		dims:           dims,
		Coord:          coord,
		voxels:         make([]Voxel, n),
		lights:         make([]Light, n),
		maxHeight:      make([]int32, dims.ChunkSize*dims.ChunkSize),
		status:         StatusEmpty,
		dirtySubChunks: make(map[int32]struct{}),
		meshes:         make(map[int32]map[geom.MaterialKey]*geom.Geometry),
	}
}

func (c *Chunk) inBounds(x, y, z int32) bool {
	return x >= 0 && x < c.dims.ChunkSize &&
		z >= 0 && z < c.dims.ChunkSize &&
		c.dims.InHeightBounds(y)
}

func (c *Chunk) index(x, y, z int32) int {
	return int((y*c.dims.ChunkSize+z)*c.dims.ChunkSize + x)
}

func (c *Chunk) columnIndex(x, z int32) int {
	return int(z*c.dims.ChunkSize + x)
}

// GetRaw returns the raw packed voxel word at local (x,y,z), preserving
// stage and rotation bits. Out-of-range coordinates return 0.
func (c *Chunk) GetRaw(x, y, z int32) Voxel {
	if !c.inBounds(x, y, z) {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.voxels[c.index(x, y, z)]
}

// SetRaw writes the raw packed voxel word at local (x,y,z). Out-of-range
// coordinates are a no-op returning false.
func (c *Chunk) SetRaw(x, y, z int32, v Voxel) bool {
	if !c.inBounds(x, y, z) {
		return false
	}
	c.mu.Lock()
	c.voxels[c.index(x, y, z)] = v
	c.mu.Unlock()
	c.MarkSubChunkDirty(c.dims.SubChunkLevel(y))
	return true
}

// GetVoxel returns just the block id at local (x,y,z).
func (c *Chunk) GetVoxel(x, y, z int32) uint32 {
	return ExtractID(c.GetRaw(x, y, z))
}

// SetVoxel replaces the block id at local (x,y,z), preserving any
// rotation/stage bits already present.
func (c *Chunk) SetVoxel(x, y, z int32, id uint32) bool {
	if !c.inBounds(x, y, z) {
		return false
	}
	c.mu.Lock()
	idx := c.index(x, y, z)
	c.voxels[idx] = InsertID(c.voxels[idx], id)
	c.mu.Unlock()
	c.MarkSubChunkDirty(c.dims.SubChunkLevel(y))
	return true
}

// GetLight returns the raw packed light word at local (x,y,z).
func (c *Chunk) GetLight(x, y, z int32) Light {
	if !c.inBounds(x, y, z) {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lights[c.index(x, y, z)]
}

// SetLight writes the raw packed light word at local (x,y,z).
func (c *Chunk) SetLight(x, y, z int32, l Light) bool {
	if !c.inBounds(x, y, z) {
		return false
	}
	c.mu.Lock()
	c.lights[c.index(x, y, z)] = l
	c.mu.Unlock()
	return true
}

// GetSunlight returns the sunlight channel at local (x,y,z).
func (c *Chunk) GetSunlight(x, y, z int32) uint8 {
	return c.GetLight(x, y, z).ExtractSunlight()
}

// SetSunlight writes the sunlight channel at local (x,y,z).
func (c *Chunk) SetSunlight(x, y, z int32, level uint8) bool {
	if !c.inBounds(x, y, z) {
		return false
	}
	c.mu.Lock()
	idx := c.index(x, y, z)
	c.lights[idx] = c.lights[idx].InsertSunlight(level)
	c.mu.Unlock()
	return true
}

// GetTorchlight returns the given channel (Red/Green/Blue) at local
// (x,y,z).
func (c *Chunk) GetTorchlight(color LightColor, x, y, z int32) uint8 {
	return c.GetLight(x, y, z).Extract(color)
}

// SetTorchlight writes the given channel (Red/Green/Blue) at local
// (x,y,z).
func (c *Chunk) SetTorchlight(color LightColor, x, y, z int32, level uint8) bool {
	if !c.inBounds(x, y, z) {
		return false
	}
	c.mu.Lock()
	idx := c.index(x, y, z)
	c.lights[idx] = c.lights[idx].Insert(color, level)
	c.mu.Unlock()
	return true
}

// GetMaxHeight returns the cached max-height of column (x,z).
func (c *Chunk) GetMaxHeight(x, z int32) int32 {
	if x < 0 || x >= c.dims.ChunkSize || z < 0 || z >= c.dims.ChunkSize {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxHeight[c.columnIndex(x, z)]
}

// SetMaxHeight sets the cached max-height of column (x,z).
func (c *Chunk) SetMaxHeight(x, z, height int32) {
	if x < 0 || x >= c.dims.ChunkSize || z < 0 || z >= c.dims.ChunkSize {
		return
	}
	c.mu.Lock()
	c.maxHeight[c.columnIndex(x, z)] = height
	c.mu.Unlock()
}

// MarkSubChunkDirty records that the sub-chunk at level needs remeshing.
// Any mutation to a chunk's voxels calls this.
func (c *Chunk) MarkSubChunkDirty(level int32) {
	c.mu.Lock()
	c.dirtySubChunks[level] = struct{}{}
	c.mu.Unlock()
}

// DirtySubChunks returns (and does not clear) the set of dirty
// sub-chunk levels.
func (c *Chunk) DirtySubChunks() []int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]int32, 0, len(c.dirtySubChunks))
	for lvl := range c.dirtySubChunks {
		out = append(out, lvl)
	}
	return out
}

// ClearSubChunkDirty clears the dirty bit for level; the mesher calls
// this once it has cached a fresh mesh for that level.
func (c *Chunk) ClearSubChunkDirty(level int32) {
	c.mu.Lock()
	delete(c.dirtySubChunks, level)
	c.mu.Unlock()
}

// SetMeshes replaces the cached per-material geometries for sub-chunk
// level.
func (c *Chunk) SetMeshes(level int32, materials map[geom.MaterialKey]*geom.Geometry) {
	c.mu.Lock()
	c.meshes[level] = materials
	c.mu.Unlock()
}

// Meshes returns the cached per-material geometries for sub-chunk level.
func (c *Chunk) Meshes(level int32) map[geom.MaterialKey]*geom.Geometry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.meshes[level]
}

// HasAnyMesh reports whether sub-chunk level has at least one cached
// material geometry.
func (c *Chunk) HasAnyMesh(level int32) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.meshes[level]
	return ok && len(m) > 0
}

// Status returns the chunk's current pipeline stage.
func (c *Chunk) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// SetStatus transitions the chunk to status. Callers are responsible
// for only calling this when the promotion rule is satisfied; Chunk
// itself does not enforce the stair invariant, since that requires
// looking at neighbors (the pipeline's job).
func (c *Chunk) SetStatus(status Status) {
	c.mu.Lock()
	c.status = status
	c.mu.Unlock()
}

// MarkFailed transitions the chunk to StatusFailed, recording which
// stage failed.
func (c *Chunk) MarkFailed(stageName string) {
	c.mu.Lock()
	c.status = StatusFailed
	c.failedName = stageName
	c.mu.Unlock()
}

// FailedStage returns the name of the stage that failed, if any.
func (c *Chunk) FailedStage() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.failedName
}

// Retries returns and increments the chunk's retry counter, used by the
// pipeline to bound StageFailed retries.
func (c *Chunk) Retries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retries++
	return c.retries
}

// Dimensions returns the chunk's dimensions.
func (c *Chunk) Dimensions() Dimensions {
	return c.dims
}

// SnapshotVoxels returns a copy of the full voxel array, used when
// serializing a LOAD packet or a save-file blob.
func (c *Chunk) SnapshotVoxels() []Voxel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Voxel, len(c.voxels))
	copy(out, c.voxels)
	return out
}

// SnapshotLights returns a copy of the full light array.
func (c *Chunk) SnapshotLights() []Light {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Light, len(c.lights))
	copy(out, c.lights)
	return out
}

// SnapshotHeights returns a copy of the per-column max-height array.
func (c *Chunk) SnapshotHeights() []int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]int32, len(c.maxHeight))
	copy(out, c.maxHeight)
	return out
}

// RestoreFrom overwrites the chunk's voxel/light/height arrays in place,
// used when loading a persisted chunk blob.
func (c *Chunk) RestoreFrom(voxels []Voxel, lights []Light, heights []int32) {
	c.mu.Lock()
	copy(c.voxels, voxels)
	copy(c.lights, lights)
	copy(c.maxHeight, heights)
	c.mu.Unlock()
}
