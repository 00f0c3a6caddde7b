package chunkstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StoreStation/voxelengine/internal/voxel"
)

func testDims() voxel.Dimensions {
	return voxel.Dimensions{ChunkSize: 4, MaxHeight: 4, SubChunks: 1, MaxLightLevel: 15}
}

func TestGetOrCreateIsStableAndBounded(t *testing.T) {
	store := New(testDims(), Bounds{Min: voxel.Vec2{X: -1, Z: -1}, Max: voxel.Vec2{X: 1, Z: 1}})

	c1, err := store.GetOrCreate(voxel.Vec2{})
	require.NoError(t, err)
	c2, err := store.GetOrCreate(voxel.Vec2{})
	require.NoError(t, err)
	assert.Same(t, c1, c2, "chunk identity must be stable for repeat GetOrCreate calls")

	_, err = store.GetOrCreate(voxel.Vec2{X: 5, Z: 5})
	assert.Error(t, err, "coordinates outside the configured bounds must fail")
}

// A strict space fails to build when a neighbor within radius is
// missing; a non-strict space silently substitutes zero instead.
func TestMakeSpaceStrictFailsOnMissingNeighbor(t *testing.T) {
	store := New(testDims(), Bounds{Min: voxel.Vec2{X: -5, Z: -5}, Max: voxel.Vec2{X: 5, Z: 5}})
	_, err := store.GetOrCreate(voxel.Vec2{})
	require.NoError(t, err)

	_, err = store.MakeSpace(voxel.Vec2{}, 1, SpaceOptions{Strict: true, NeedVoxels: true})
	assert.ErrorIs(t, err, ErrNeighborNotReady)

	space, err := store.MakeSpace(voxel.Vec2{}, 1, SpaceOptions{Strict: false, NeedVoxels: true})
	require.NoError(t, err)
	assert.Equal(t, voxel.Voxel(0), space.GetRawVoxel(voxel.Vec3{X: 10, Y: 0, Z: 10}), "a non-strict space returns zero for voxels outside any held chunk")
}

// A Space built without NeedLights must return zero from GetRawLight
// even when the underlying chunk holds real light data, matching
// "unavailable needs cause requests through them to return zero."
func TestSpaceUnsetNeedReturnsZero(t *testing.T) {
	store := New(testDims(), Bounds{Min: voxel.Vec2{}, Max: voxel.Vec2{}})
	chunk, err := store.GetOrCreate(voxel.Vec2{})
	require.NoError(t, err)
	chunk.SetSunlight(1, 1, 1, 12)

	space, err := store.MakeSpace(voxel.Vec2{}, 0, SpaceOptions{Strict: true, NeedVoxels: true})
	require.NoError(t, err)

	assert.Equal(t, uint8(0), space.GetRawLight(voxel.Vec3{X: 1, Y: 1, Z: 1}).ExtractSunlight(), "lights were not requested, so reads through the space must be zero")
}

// Writing a voxel outside the space's center chunk must be recorded as
// an extra block update for the caller to re-dispatch.
func TestSpaceSetRawVoxelOutsideCenterRecordsExtraUpdate(t *testing.T) {
	store := New(testDims(), Bounds{Min: voxel.Vec2{X: -2, Z: -2}, Max: voxel.Vec2{X: 2, Z: 2}})
	_, err := store.GetOrCreate(voxel.Vec2{})
	require.NoError(t, err)
	_, err = store.GetOrCreate(voxel.Vec2{X: 1, Z: 0})
	require.NoError(t, err)

	space, err := store.MakeSpace(voxel.Vec2{}, 1, SpaceOptions{Strict: false, NeedVoxels: true})
	require.NoError(t, err)

	assert.Empty(t, space.ExtraBlockUpdates())
	ok := space.SetRawVoxel(voxel.Vec3{X: 4, Y: 0, Z: 0}, voxel.InsertID(0, 7))
	assert.True(t, ok)

	extra := space.ExtraBlockUpdates()
	require.Len(t, extra, 1)
	assert.Equal(t, voxel.Vec3{X: 4, Y: 0, Z: 0}, extra[0].Pos)
	assert.Empty(t, space.ExtraBlockUpdates(), "ExtraBlockUpdates must drain, not just peek")
}

func TestEvictBeyondProtectsInterestRadius(t *testing.T) {
	store := New(testDims(), Bounds{Min: voxel.Vec2{X: -10, Z: -10}, Max: voxel.Vec2{X: 10, Z: 10}})
	for x := int32(0); x < 5; x++ {
		_, err := store.GetOrCreate(voxel.Vec2{X: x, Z: 0})
		require.NoError(t, err)
	}
	require.Equal(t, 5, store.Len())

	store.EvictBeyond(0, voxel.Vec2{X: 0, Z: 0}, 1, nil)

	assert.NotNil(t, store.Get(voxel.Vec2{X: 0, Z: 0}), "chunks within the protected radius must survive eviction")
	assert.Nil(t, store.Get(voxel.Vec2{X: 4, Z: 0}), "chunks outside the protected radius must be evicted")
}
