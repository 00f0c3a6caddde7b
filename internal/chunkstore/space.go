package chunkstore

import (
	"errors"

	"github.com/StoreStation/voxelengine/internal/voxel"
)

// ErrNeighborNotReady is returned by MakeSpace when it is asked to build
// a strict space but a chunk within the requested radius has not yet
// reached the required stage.
var ErrNeighborNotReady = errors.New("chunkstore: neighbor not ready")

// SpaceOptions configures a Space build.
type SpaceOptions struct {
	// Strict requires every chunk in the radius to be present and at
	// or beyond RequiredStage; otherwise MakeSpace fails with
	// ErrNeighborNotReady. Non-strict spaces substitute zero for
	// absent neighbors and hold present ones whatever their stage.
	Strict        bool
	RequiredStage voxel.Status

	// Needs selects which data this space must serve; an unset need
	// causes reads through it to return zero even if the underlying
	// chunk has the data, matching "unavailable needs cause requests
	// through them to return zero."
	NeedVoxels  bool
	NeedLights  bool
	NeedHeights bool
}

// BlockUpdate is a voxel write observed outside a space's center chunk,
// which the caller must re-dispatch to the owning chunk's own pipeline
// job, mirroring space.rs's extra_block_updates.
type BlockUpdate struct {
	Pos   voxel.Vec3
	Value voxel.Voxel
}

// Space is a read-through window over a chunk and its neighbors within
// radius, the unit of work for light propagation and meshing.
type Space struct {
	dims    voxel.Dimensions
	center  voxel.Vec2
	radius  int32
	opts    SpaceOptions
	chunks  map[voxel.Vec2]*voxel.Chunk
	extra   []BlockUpdate
}

// MakeSpace builds a Space centered on center covering radius chunks in
// every direction. It fails with ErrNeighborNotReady if opts.Strict and
// any chunk in range is missing or under the required stage.
func (s *Store) MakeSpace(center voxel.Vec2, radius int32, opts SpaceOptions) (*Space, error) {
	return s.MakeSpaceFunc(center, radius, opts, func(c *voxel.Chunk) bool {
		return c.Status().AtLeast(opts.RequiredStage)
	})
}

// MakeSpaceFunc builds a Space like MakeSpace, but uses ready in place of
// the chunk's coarse Status to decide whether a neighbor satisfies a
// strict space's readiness requirement. This lets callers (the pipeline)
// gate on a finer-grained progress marker than the four-value Status
// enum exposes, e.g. "has this chunk completed stage index k".
func (s *Store) MakeSpaceFunc(center voxel.Vec2, radius int32, opts SpaceOptions, ready func(*voxel.Chunk) bool) (*Space, error) {
	chunks := make(map[voxel.Vec2]*voxel.Chunk)
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			coord := voxel.Vec2{X: center.X + dx, Z: center.Z + dz}
			c := s.Get(coord)
			if c == nil {
				if opts.Strict {
					return nil, ErrNeighborNotReady
				}
				continue
			}
			if opts.Strict && !ready(c) {
				return nil, ErrNeighborNotReady
			}
			chunks[coord] = c
		}
	}
	return &Space{
		dims:   s.dims,
		center: center,
		radius: radius,
		opts:   opts,
		chunks: chunks,
	}, nil
}

// Center returns the space's center chunk coordinate.
func (s *Space) Center() voxel.Vec2 { return s.center }

// Radius returns the space's neighbor radius in chunks.
func (s *Space) Radius() int32 { return s.radius }

// Dimensions returns the chunk dimensions shared by every chunk in the
// space.
func (s *Space) Dimensions() voxel.Dimensions { return s.dims }

// Chunk returns the chunk at cc if it is within the space, else nil.
func (s *Space) Chunk(cc voxel.Vec2) *voxel.Chunk {
	return s.chunks[cc]
}

// Contains reports whether world coordinate v falls within a chunk this
// space holds.
func (s *Space) Contains(v voxel.Vec3) bool {
	cc := s.dims.WorldToChunk(v)
	_, ok := s.chunks[cc]
	return ok
}

func (s *Space) locate(v voxel.Vec3) (*voxel.Chunk, voxel.Vec3) {
	cc := s.dims.WorldToChunk(v)
	c, ok := s.chunks[cc]
	if !ok {
		return nil, voxel.Vec3{}
	}
	return c, s.dims.WorldToLocal(v)
}

// GetRawVoxel returns the raw voxel word at world coordinate v, or 0 if
// out of the space or NeedVoxels is unset.
func (s *Space) GetRawVoxel(v voxel.Vec3) voxel.Voxel {
	if !s.opts.NeedVoxels {
		return 0
	}
	c, local := s.locate(v)
	if c == nil {
		return 0
	}
	return c.GetRaw(local.X, local.Y, local.Z)
}

// SetRawVoxel writes the raw voxel word at world coordinate v. Writes
// outside the center chunk are recorded as extra block updates for the
// caller to re-dispatch, matching space.rs's behavior when
// chunk_coords != self.center.
func (s *Space) SetRawVoxel(v voxel.Vec3, val voxel.Voxel) bool {
	c, local := s.locate(v)
	if c == nil {
		return false
	}
	cc := s.dims.WorldToChunk(v)
	if cc != s.center {
		s.extra = append(s.extra, BlockUpdate{Pos: v, Value: val})
	}
	return c.SetRaw(local.X, local.Y, local.Z, val)
}

// GetRawLight returns the raw light word at world coordinate v, or 0 if
// out of the space or NeedLights is unset.
func (s *Space) GetRawLight(v voxel.Vec3) voxel.Light {
	if !s.opts.NeedLights {
		return 0
	}
	c, local := s.locate(v)
	if c == nil {
		return 0
	}
	return c.GetLight(local.X, local.Y, local.Z)
}

// SetRawLight writes the raw light word at world coordinate v.
func (s *Space) SetRawLight(v voxel.Vec3, l voxel.Light) bool {
	c, local := s.locate(v)
	if c == nil {
		return false
	}
	return c.SetLight(local.X, local.Y, local.Z, l)
}

// GetMaxHeight returns the column max-height at world (x,z), or 0 if
// out of the space or NeedHeights is unset.
func (s *Space) GetMaxHeight(x, z int32) int32 {
	if !s.opts.NeedHeights {
		return 0
	}
	c, local := s.locate(voxel.Vec3{X: x, Y: 0, Z: z})
	if c == nil {
		return 0
	}
	return c.GetMaxHeight(local.X, local.Z)
}

// SetMaxHeight writes the column max-height at world (x,z).
func (s *Space) SetMaxHeight(x, z, height int32) {
	c, local := s.locate(voxel.Vec3{X: x, Y: 0, Z: z})
	if c == nil {
		return
	}
	c.SetMaxHeight(local.X, local.Z, height)
}

// ExtraBlockUpdates drains the list of voxel writes observed outside the
// space's center chunk.
func (s *Space) ExtraBlockUpdates() []BlockUpdate {
	out := s.extra
	s.extra = nil
	return out
}
