package light

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoreStation/voxelengine/internal/chunkstore"
	"github.com/StoreStation/voxelengine/internal/registry"
	"github.com/StoreStation/voxelengine/internal/voxel"
)

const (
	testStoneID = 1
	testTorchID = 2
)

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	opaque := [6]bool{}
	transparent := [6]bool{true, true, true, true, true, true}

	require.NoError(t, reg.Register(registry.Descriptor{ID: testStoneID, Name: "stone", Transparency: opaque}))
	require.NoError(t, reg.Register(registry.Descriptor{
		ID: testTorchID, Name: "torch", Transparency: transparent, Passable: true, EmitRed: 14,
	}))
	reg.Seal()
	return reg
}

func newTestSpace(t *testing.T, dims voxel.Dimensions) (*chunkstore.Store, *voxel.Chunk) {
	t.Helper()
	store := chunkstore.New(dims, chunkstore.Bounds{Min: voxel.Vec2{}, Max: voxel.Vec2{}})
	chunk, err := store.GetOrCreate(voxel.Vec2{})
	require.NoError(t, err)
	return store, chunk
}

func makeSpace(t *testing.T, store *chunkstore.Store) *chunkstore.Space {
	t.Helper()
	space, err := store.MakeSpace(voxel.Vec2{}, 0, chunkstore.SpaceOptions{
		NeedVoxels: true, NeedLights: true, NeedHeights: true,
	})
	require.NoError(t, err)
	return space
}

// A 16x16 stone ceiling at y=10 with a single air hole at (8,10,8) lets
// sunlight descend undimmed straight down the shaft, while the cavity
// beneath the ceiling only receives light by spreading sideways from
// that one entry point, losing one level per lateral step.
func TestPropagateSunlightDescendsThroughHole(t *testing.T) {
	dims := voxel.Dimensions{ChunkSize: 16, MaxHeight: 20, SubChunks: 1, MaxLightLevel: 15}
	reg := newTestRegistry(t)
	store, chunk := newTestSpace(t, dims)

	for x := int32(0); x < 16; x++ {
		for z := int32(0); z < 16; z++ {
			if x == 8 && z == 8 {
				continue
			}
			chunk.SetVoxel(x, 10, z, testStoneID)
			chunk.SetMaxHeight(x, z, 11)
		}
	}
	chunk.SetMaxHeight(8, 8, 0)

	space := makeSpace(t, store)
	eng := NewEngine(reg)
	require.NoError(t, eng.Propagate(space, voxel.Vec3{}, voxel.Vec3{X: 16, Y: 20, Z: 16}))

	sun := func(x, y, z int32) uint8 {
		return space.GetRawLight(voxel.Vec3{X: x, Y: y, Z: z}).ExtractSunlight()
	}

	assert.Equal(t, uint8(15), sun(0, 15, 0), "open sky above the ceiling stays at max level")
	assert.Equal(t, uint8(15), sun(8, 9, 8), "the shaft carries full level straight down through the hole")
	assert.Equal(t, uint8(14), sun(7, 9, 8))
	assert.Equal(t, uint8(14), sun(9, 9, 8))
	assert.Equal(t, uint8(14), sun(8, 9, 7))
	assert.Equal(t, uint8(14), sun(8, 9, 9))
	assert.Equal(t, uint8(13), sun(6, 9, 8), "two lateral steps from the shaft")
	assert.Equal(t, uint8(13), sun(8, 9, 6))
	assert.Equal(t, uint8(0), sun(0, 9, 0), "too far from the single entry point to receive any light")
}

// An isolated red torch decays by exactly one level per step in open
// space, reaching zero at a distance equal to its emitted level.
func TestPropagateRedTorchCorridor(t *testing.T) {
	dims := voxel.Dimensions{ChunkSize: 16, MaxHeight: 16, SubChunks: 1, MaxLightLevel: 15}
	reg := newTestRegistry(t)
	store, chunk := newTestSpace(t, dims)
	chunk.SetVoxel(0, 0, 0, testTorchID)

	space := makeSpace(t, store)
	eng := NewEngine(reg)
	require.NoError(t, eng.Propagate(space, voxel.Vec3{}, voxel.Vec3{X: 16, Y: 16, Z: 16}))

	red := func(x, y, z int32) uint8 {
		return space.GetRawLight(voxel.Vec3{X: x, Y: y, Z: z}).Extract(voxel.Red)
	}

	assert.Equal(t, uint8(14), red(0, 0, 0))
	assert.Equal(t, uint8(13), red(1, 0, 0))
	assert.Equal(t, uint8(0), red(14, 0, 0))
	assert.Equal(t, uint8(0), red(0, 14, 0), "vertical steps decay like any other direction for torchlight")
}

// A stone block directly between the torch and a target voxel fully
// occludes it, even though unblocked neighbors one step away still
// receive light. Every cell off the direct path is itself stone, so
// there is no detour around the occluder.
func TestPropagateTorchOcclusion(t *testing.T) {
	dims := voxel.Dimensions{ChunkSize: 4, MaxHeight: 4, SubChunks: 1, MaxLightLevel: 15}
	reg := newTestRegistry(t)
	store, chunk := newTestSpace(t, dims)

	for x := int32(0); x < 3; x++ {
		for y := int32(0); y < 2; y++ {
			for z := int32(0); z < 2; z++ {
				chunk.SetVoxel(x, y, z, testStoneID)
			}
		}
	}
	chunk.SetVoxel(0, 0, 0, testTorchID)
	chunk.SetVoxel(2, 0, 0, 0)
	chunk.SetVoxel(0, 1, 0, 0)
	chunk.SetVoxel(0, 0, 1, 0)

	space := makeSpace(t, store)
	eng := NewEngine(reg)
	require.NoError(t, eng.Propagate(space, voxel.Vec3{}, voxel.Vec3{X: 3, Y: 2, Z: 2}))

	red := func(x, y, z int32) uint8 {
		return space.GetRawLight(voxel.Vec3{X: x, Y: y, Z: z}).Extract(voxel.Red)
	}

	assert.Equal(t, uint8(14), red(0, 0, 0))
	assert.Equal(t, uint8(13), red(0, 1, 0))
	assert.Equal(t, uint8(13), red(0, 0, 1))
	assert.Equal(t, uint8(0), red(2, 0, 0), "the stone block at (1,0,0) occludes the only direct path, and every detour is walled off too")
}

func TestUnfloodRemovesSingleSourceLight(t *testing.T) {
	dims := voxel.Dimensions{ChunkSize: 16, MaxHeight: 16, SubChunks: 1, MaxLightLevel: 15}
	reg := newTestRegistry(t)
	store, chunk := newTestSpace(t, dims)
	chunk.SetVoxel(0, 0, 0, testTorchID)

	space := makeSpace(t, store)
	eng := NewEngine(reg)
	require.NoError(t, eng.Propagate(space, voxel.Vec3{}, voxel.Vec3{X: 16, Y: 16, Z: 16}))

	red := func(x, y, z int32) uint8 {
		return space.GetRawLight(voxel.Vec3{X: x, Y: y, Z: z}).Extract(voxel.Red)
	}
	require.Equal(t, uint8(13), red(1, 0, 0))

	region := Region{Min: voxel.Vec3{}, Max: voxel.Vec3{X: 16, Y: 16, Z: 16}}
	eng.Unflood(space, voxel.Red, []Node{{Pos: voxel.Vec3{}, Level: 14}}, region)

	assert.Equal(t, uint8(0), red(0, 0, 0))
	assert.Equal(t, uint8(0), red(1, 0, 0))
	assert.Equal(t, uint8(0), red(14, 0, 0))
}

// Two torches sit near opposite ends of a corridor; simultaneously
// removing both is fed through Unflood in forward and reversed source
// order. Per spec.md 9's open question on simultaneous border updates,
// the result must be identical either way.
func TestLightBorderOrderingInvariant(t *testing.T) {
	dims := voxel.Dimensions{ChunkSize: 16, MaxHeight: 16, SubChunks: 1, MaxLightLevel: 15}
	reg := newTestRegistry(t)

	build := func(order []voxel.Vec3) []uint8 {
		store, chunk := newTestSpace(t, dims)
		chunk.SetVoxel(0, 0, 0, testTorchID)
		chunk.SetVoxel(10, 0, 0, testTorchID)
		space := makeSpace(t, store)
		eng := NewEngine(reg)
		region := Region{Min: voxel.Vec3{}, Max: voxel.Vec3{X: 16, Y: 16, Z: 16}}
		require.NoError(t, eng.Propagate(space, voxel.Vec3{}, voxel.Vec3{X: 16, Y: 16, Z: 16}))

		var sources []Node
		for _, pos := range order {
			sources = append(sources, Node{Pos: pos, Level: space.GetRawLight(pos).Extract(voxel.Red)})
		}
		eng.Unflood(space, voxel.Red, sources, region)

		out := make([]uint8, 0, 16*16*16)
		for x := int32(0); x < 16; x++ {
			for y := int32(0); y < 16; y++ {
				for z := int32(0); z < 16; z++ {
					out = append(out, space.GetRawLight(voxel.Vec3{X: x, Y: y, Z: z}).Extract(voxel.Red))
				}
			}
		}
		return out
	}

	a := []voxel.Vec3{{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0}}
	b := []voxel.Vec3{{X: 10, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 0}}

	assert.Equal(t, build(a), build(b), "unflooding the same sources in reversed order must produce a byte-identical light field")
}

func TestRegionContains(t *testing.T) {
	r := Region{Min: voxel.Vec3{X: 1, Y: 1, Z: 1}, Max: voxel.Vec3{X: 3, Y: 3, Z: 3}}
	assert.True(t, r.Contains(voxel.Vec3{X: 1, Y: 1, Z: 1}))
	assert.True(t, r.Contains(voxel.Vec3{X: 2, Y: 2, Z: 2}))
	assert.False(t, r.Contains(voxel.Vec3{X: 3, Y: 1, Z: 1}), "Max is exclusive")
	assert.False(t, r.Contains(voxel.Vec3{X: 0, Y: 1, Z: 1}))
}
