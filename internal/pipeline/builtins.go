package pipeline

import (
	"context"
	"math"

	"github.com/StoreStation/voxelengine/internal/chunkstore"
	"github.com/StoreStation/voxelengine/internal/light"
	"github.com/StoreStation/voxelengine/internal/mesher"
	"github.com/StoreStation/voxelengine/internal/registry"
	"github.com/StoreStation/voxelengine/internal/voxel"
	"github.com/StoreStation/voxelengine/internal/worldgen"
)

// GenerateStage carves each chunk's initial terrain from a density field
// and records each column's max_height, grounded on
// original_source/server/world/generators/terrain.rs combined with the
// teacher's pkg/world.Generator column-scan shape.
type GenerateStage struct {
	Terrain  *worldgen.Terrain
	Registry *registry.Registry
	StoneID  uint32
}

func (s *GenerateStage) Name() string           { return "Generate" }
func (s *GenerateStage) NeighborRadius() int32   { return 0 }
func (s *GenerateStage) Needs() Needs            { return Needs{Voxels: true, Heights: true} }

func (s *GenerateStage) Process(ctx context.Context, chunk *voxel.Chunk, space *chunkstore.Space) error {
	dims := chunk.Dimensions()
	base := voxel.Vec3{X: chunk.Coord.X * dims.ChunkSize, Y: 0, Z: chunk.Coord.Z * dims.ChunkSize}

	for lx := int32(0); lx < dims.ChunkSize; lx++ {
		for lz := int32(0); lz < dims.ChunkSize; lz++ {
			wx, wz := base.X+lx, base.Z+lz
			top := int32(-1)
			for wy := dims.MaxHeight - 1; wy >= 0; wy-- {
				if s.Terrain.DensityAt(wx, wy, wz) > 0 {
					chunk.SetVoxel(lx, wy, lz, s.StoneID)
					if top < 0 {
						top = wy
					}
				}
			}
			chunk.SetMaxHeight(lx, lz, top+1)
		}
	}
	return nil
}

// LightStage runs the light engine's full propagation over one chunk's
// column, matching spec.md 4.5's "runs the light engine over the
// chunk's full column using a radius-1 space".
type LightStage struct {
	Engine *light.Engine
}

func (s *LightStage) Name() string         { return "Light" }
func (s *LightStage) NeighborRadius() int32 { return 1 }
func (s *LightStage) Needs() Needs          { return Needs{Voxels: true, Lights: true, Heights: true} }

func (s *LightStage) Process(ctx context.Context, chunk *voxel.Chunk, space *chunkstore.Space) error {
	dims := chunk.Dimensions()
	min := voxel.Vec3{X: chunk.Coord.X * dims.ChunkSize, Y: 0, Z: chunk.Coord.Z * dims.ChunkSize}
	shape := voxel.Vec3{X: dims.ChunkSize, Y: dims.MaxHeight, Z: dims.ChunkSize}
	return s.Engine.Propagate(space, min, shape)
}

// MeshStage runs the mesher over every dirty sub-chunk, using a radius
// wide enough that AO/light sampling never reads outside the space, per
// spec.md 4.5's ceil(max_light_level/chunk_size)+1 rule.
type MeshStage struct {
	Mesher        *mesher.Mesher
	MaxLightLevel uint8
	ChunkSize     int32

	// OnRemeshed, if set, is called with the sub-chunk levels this Process
	// call just rebuilt, letting a dirty-edit remesh (as opposed to a
	// fresh chunk's first mesh) drive an UPDATE broadcast.
	OnRemeshed func(coord voxel.Vec2, levels []int32)
}

func (s *MeshStage) Name() string { return "Mesh" }

func (s *MeshStage) NeighborRadius() int32 {
	return MeshRadiusForLightLevel(s.MaxLightLevel, s.ChunkSize)
}

func (s *MeshStage) Needs() Needs { return Needs{Voxels: true, Lights: true, Heights: true} }

func (s *MeshStage) Process(ctx context.Context, chunk *voxel.Chunk, space *chunkstore.Space) error {
	dims := chunk.Dimensions()
	base := voxel.Vec3{X: chunk.Coord.X * dims.ChunkSize, Y: 0, Z: chunk.Coord.Z * dims.ChunkSize}
	subHeight := dims.SubChunkHeight()

	levels := chunk.DirtySubChunks()
	for _, level := range levels {
		min := voxel.Vec3{X: base.X, Y: level * subHeight, Z: base.Z}
		max := voxel.Vec3{X: base.X + dims.ChunkSize, Y: min.Y + subHeight, Z: base.Z + dims.ChunkSize}
		materials := s.Mesher.MeshRegion(space, min, max)
		chunk.SetMeshes(level, materials)
		chunk.ClearSubChunkDirty(level)
	}
	if s.OnRemeshed != nil && len(levels) > 0 {
		s.OnRemeshed(chunk.Coord, levels)
	}
	return nil
}

// MeshRadiusForLightLevel implements spec.md 4.5's
// ceil(max_light_level / chunk_size) + 1 mesh-stage neighbor radius.
func MeshRadiusForLightLevel(maxLightLevel uint8, chunkSize int32) int32 {
	return int32(math.Ceil(float64(maxLightLevel)/float64(chunkSize))) + 1
}

// SoilStage layers grass/dirt/stone/snow onto the terrain Generate left
// behind, grounded on original_source's water.rs layering logic (the
// snow/stone/grass selection by height and noise threshold), split out
// from water placement into its own reusable reference stage.
type SoilStage struct {
	Registry                 *registry.Registry
	GrassID, DirtID, StoneID, SnowID uint32
	SnowHeight, StoneHeight   int32
}

func (s *SoilStage) Name() string         { return "Soil" }
func (s *SoilStage) NeighborRadius() int32 { return 0 }
func (s *SoilStage) Needs() Needs          { return Needs{Voxels: true, Heights: true} }

func (s *SoilStage) Process(ctx context.Context, chunk *voxel.Chunk, space *chunkstore.Space) error {
	dims := chunk.Dimensions()
	for lx := int32(0); lx < dims.ChunkSize; lx++ {
		for lz := int32(0); lz < dims.ChunkSize; lz++ {
			height := chunk.GetMaxHeight(lx, lz)
			top := height - 1
			if top < 0 {
				continue
			}
			switch {
			case top >= s.SnowHeight:
				chunk.SetVoxel(lx, top, lz, s.SnowID)
			case top >= s.StoneHeight:
				chunk.SetVoxel(lx, top, lz, s.StoneID)
			default:
				chunk.SetVoxel(lx, top, lz, s.GrassID)
			}
			for k := int32(1); k <= 2 && top-k >= 0; k++ {
				chunk.SetVoxel(lx, top-k, lz, s.DirtID)
			}
		}
	}
	return nil
}

// WaterStage floods every air voxel below WaterLevel, grounded verbatim
// on water.rs's "is_air && vy < water_level -> Water" rule, and tops
// submerged columns with sand.
type WaterStage struct {
	Registry            *registry.Registry
	WaterID, SandID uint32
	WaterLevel      int32
}

func (s *WaterStage) Name() string         { return "Water" }
func (s *WaterStage) NeighborRadius() int32 { return 0 }
func (s *WaterStage) Needs() Needs          { return Needs{Voxels: true, Heights: true} }

func (s *WaterStage) Process(ctx context.Context, chunk *voxel.Chunk, space *chunkstore.Space) error {
	dims := chunk.Dimensions()
	for lx := int32(0); lx < dims.ChunkSize; lx++ {
		for lz := int32(0); lz < dims.ChunkSize; lz++ {
			height := chunk.GetMaxHeight(lx, lz)
			if height < s.WaterLevel {
				chunk.SetVoxel(lx, height, lz, s.SandID)
			}
			for vy := int32(0); vy < s.WaterLevel; vy++ {
				if chunk.GetVoxel(lx, vy, lz) == 0 {
					chunk.SetVoxel(lx, vy, lz, s.WaterID)
				}
			}
		}
	}
	return nil
}

// TreeStage places a trunk-and-canopy tree on grass columns that pass a
// two-axis noise threshold, grounded on tree.rs's Worley-noise placement
// test (ported to the engine's own Noise source rather than pulling in
// a second noise crate).
type TreeStage struct {
	Noise             *worldgen.Noise
	Registry          *registry.Registry
	WoodID, LeavesID  uint32
	GrassID           uint32
	TrunkHeight       int32
	CanopyRadius      int32
}

func (s *TreeStage) Name() string         { return "Tree" }
func (s *TreeStage) NeighborRadius() int32 { return 2 }
func (s *TreeStage) Needs() Needs          { return Needs{Voxels: true, Heights: true} }

func (s *TreeStage) Process(ctx context.Context, chunk *voxel.Chunk, space *chunkstore.Space) error {
	dims := chunk.Dimensions()
	base := voxel.Vec3{X: chunk.Coord.X * dims.ChunkSize, Y: 0, Z: chunk.Coord.Z * dims.ChunkSize}

	for lx := int32(0); lx < dims.ChunkSize; lx++ {
		for lz := int32(0); lz < dims.ChunkSize; lz++ {
			if chunk.GetVoxel(lx, chunk.GetMaxHeight(lx, lz)-1, lz) != s.GrassID {
				continue
			}
			wx, wz := base.X+lx, base.Z+lz
			if s.Noise.Noise2D(float64(wx), float64(wz)) <= 0.9 || s.Noise.Noise2D(float64(wz), float64(wx)) <= 0.95 {
				continue
			}

			height := chunk.GetMaxHeight(lx, lz)
			for i := int32(0); i < s.TrunkHeight; i++ {
				space.SetRawVoxel(voxel.Vec3{X: wx, Y: height + i, Z: wz}, voxel.InsertID(0, s.WoodID))
			}
			for i := -s.CanopyRadius; i <= s.CanopyRadius; i++ {
				for j := -s.CanopyRadius; j <= s.CanopyRadius; j++ {
					pos := voxel.Vec3{X: wx + i, Y: height + s.TrunkHeight - 1, Z: wz + j}
					space.SetRawVoxel(pos, voxel.InsertID(0, s.LeavesID))
				}
			}
		}
	}
	return nil
}
