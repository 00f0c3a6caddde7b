package mesher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoreStation/voxelengine/internal/chunkstore"
	"github.com/StoreStation/voxelengine/internal/registry"
	"github.com/StoreStation/voxelengine/internal/voxel"
)

const stoneID = 1

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	desc := registry.Descriptor{
		ID:                 stoneID,
		Name:               "stone",
		HeightContributing: true,
		Faces:              registry.StandardCubeFaces(),
	}
	require.NoError(t, reg.Register(desc))
	reg.Seal()
	return reg
}

func newSpace(t *testing.T, dims voxel.Dimensions, greedy bool) (*chunkstore.Store, *voxel.Chunk, func() *chunkstore.Space) {
	t.Helper()
	store := chunkstore.New(dims, chunkstore.Bounds{Min: voxel.Vec2{}, Max: voxel.Vec2{}})
	chunk, err := store.GetOrCreate(voxel.Vec2{})
	require.NoError(t, err)
	build := func() *chunkstore.Space {
		space, err := store.MakeSpace(voxel.Vec2{}, 0, chunkstore.SpaceOptions{
			NeedVoxels: true, NeedLights: true, NeedHeights: true,
		})
		require.NoError(t, err)
		return space
	}
	return store, chunk, build
}

// A single isolated stone block has no opaque neighbors on any face, so
// the culled mesher must emit all six faces and never skip a face for
// lack of a neighbor.
func TestMeshRegionEmitsAllSixFacesForIsolatedVoxel(t *testing.T) {
	dims := voxel.Dimensions{ChunkSize: 4, MaxHeight: 4, SubChunks: 1, MaxLightLevel: 15}
	reg := newTestRegistry(t)
	_, chunk, build := newSpace(t, dims, false)
	chunk.SetVoxel(1, 1, 1, stoneID)

	m := &Mesher{Registry: reg, Custom: NewMesherRegistry(), Greedy: false}
	out := m.MeshRegion(build(), voxel.Vec3{}, voxel.Vec3{X: 4, Y: 4, Z: 4})

	totalQuads := 0
	for _, g := range out {
		totalQuads += len(g.Indices) / 6
	}
	assert.Equal(t, 6, totalQuads, "an isolated voxel must emit exactly one quad per face")
}

// Two adjacent stone blocks share a fully opaque face on both sides, so
// culled meshing must skip both of those faces (spec.md 8: "no quad is
// emitted between two adjacent opaque faces").
func TestMeshRegionSkipsQuadBetweenAdjacentOpaqueFaces(t *testing.T) {
	dims := voxel.Dimensions{ChunkSize: 4, MaxHeight: 4, SubChunks: 1, MaxLightLevel: 15}
	reg := newTestRegistry(t)
	_, chunk, build := newSpace(t, dims, false)
	chunk.SetVoxel(1, 1, 1, stoneID)
	chunk.SetVoxel(2, 1, 1, stoneID)

	m := &Mesher{Registry: reg, Custom: NewMesherRegistry(), Greedy: false}
	out := m.MeshRegion(build(), voxel.Vec3{}, voxel.Vec3{X: 4, Y: 4, Z: 4})

	totalQuads := 0
	for _, g := range out {
		totalQuads += len(g.Indices) / 6
	}
	assert.Equal(t, 10, totalQuads, "two touching cubes expose 10 outer faces, not 12")
}

// A flat 4x1x4 stone slab: culled meshing emits one quad per exposed
// unit face (4*4 top + 4*4 bottom + 4*4 sides = 48); greedy meshing
// merges each planar face into one rectangle. The test compares quad
// counts per face; it does not measure covered area.
func TestGreedyMergeQuadCountsPerFace(t *testing.T) {
	dims := voxel.Dimensions{ChunkSize: 4, MaxHeight: 1, SubChunks: 1, MaxLightLevel: 15}
	reg := newTestRegistry(t)

	build := func(greedy bool) map[registry.Face]float64 {
		_, chunk, mkSpace := newSpace(t, dims, greedy)
		for x := int32(0); x < 4; x++ {
			for z := int32(0); z < 4; z++ {
				chunk.SetVoxel(x, 0, z, stoneID)
			}
		}
		m := &Mesher{Registry: reg, Custom: NewMesherRegistry(), Greedy: greedy}
		out := m.MeshRegion(mkSpace(), voxel.Vec3{}, voxel.Vec3{X: 4, Y: 1, Z: 4})

		areaByFace := make(map[registry.Face]float64)
		for key, g := range out {
			var face registry.Face
			switch key.FaceName {
			case "+x":
				face = registry.FacePX
			case "-x":
				face = registry.FaceNX
			case "+y":
				face = registry.FacePY
			case "-y":
				face = registry.FaceNY
			case "+z":
				face = registry.FacePZ
			case "-z":
				face = registry.FaceNZ
			}
			quadCount := len(g.Indices) / 6
			areaByFace[face] += float64(quadCount)
		}
		return areaByFace
	}

	culled := build(false)
	greedy := build(true)

	// Culled: top/bottom are 16 unit quads each, sides are 4 unit quads
	// each (one row of height 1).
	assert.Equal(t, float64(16), culled[registry.FacePY])
	assert.Equal(t, float64(16), culled[registry.FaceNY])
	assert.Equal(t, float64(4), culled[registry.FacePX])

	// Greedy: top/bottom each merge into a single 4x4 rectangle (1
	// quad); each of the 4 sides merges into a single 4x1 strip (1 quad).
	assert.Equal(t, float64(1), greedy[registry.FacePY], "greedy should merge the entire top face into one quad")
	assert.Equal(t, float64(1), greedy[registry.FaceNY], "greedy should merge the entire bottom face into one quad")
	assert.Equal(t, float64(1), greedy[registry.FacePX])
	assert.Equal(t, float64(1), greedy[registry.FaceNX])
	assert.Equal(t, float64(1), greedy[registry.FacePZ])
	assert.Equal(t, float64(1), greedy[registry.FaceNZ])
}

func TestVertexAOZeroIffBothSidesOpaque(t *testing.T) {
	assert.Equal(t, 0, VertexAO(false, false, false), "both sides opaque forces ao=0 regardless of the corner")
	assert.Equal(t, 0, VertexAO(false, false, true))
	assert.NotEqual(t, 0, VertexAO(true, false, false), "only one side opaque must not force ao=0")
	assert.Equal(t, 3, VertexAO(true, true, true), "fully transparent neighborhood bakes no occlusion")
}
