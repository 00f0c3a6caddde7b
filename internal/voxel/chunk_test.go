package voxel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusAtLeastOrdering(t *testing.T) {
	assert.True(t, StatusReady.AtLeast(StatusGenerating))
	assert.True(t, StatusReady.AtLeast(StatusReady))
	assert.False(t, StatusGenerating.AtLeast(StatusReady))
}

func TestStatusAtLeastFailedNeverSatisfiesOthers(t *testing.T) {
	assert.False(t, StatusFailed.AtLeast(StatusEmpty))
	assert.False(t, StatusEmpty.AtLeast(StatusFailed))
	assert.True(t, StatusFailed.AtLeast(StatusFailed))
}

func TestChunkSetGetVoxelPreservesRotationBits(t *testing.T) {
	c := NewChunk(Vec2{}, testDims())
	c.SetRaw(1, 2, 3, InsertRotation(InsertID(0, 5), RotationPX))

	assert.Equal(t, uint32(5), c.GetVoxel(1, 2, 3))

	c.SetVoxel(1, 2, 3, 9)
	assert.Equal(t, uint32(9), c.GetVoxel(1, 2, 3))
	assert.Equal(t, RotationPX, ExtractRotation(c.GetRaw(1, 2, 3)), "SetVoxel must not disturb rotation bits")
}

func TestChunkOutOfBoundsIsNoOp(t *testing.T) {
	c := NewChunk(Vec2{}, testDims())
	assert.False(t, c.SetVoxel(-1, 0, 0, 1))
	assert.Equal(t, uint32(0), c.GetVoxel(-1, 0, 0))
	assert.False(t, c.SetVoxel(0, 0, 16, 1))
}

func TestChunkLightChannelsRoundTrip(t *testing.T) {
	c := NewChunk(Vec2{}, testDims())
	c.SetSunlight(2, 2, 2, 15)
	c.SetTorchlight(Red, 2, 2, 2, 8)

	assert.Equal(t, uint8(15), c.GetSunlight(2, 2, 2))
	assert.Equal(t, uint8(8), c.GetTorchlight(Red, 2, 2, 2))
	assert.Equal(t, uint8(0), c.GetTorchlight(Green, 2, 2, 2))
}

func TestChunkDirtySubChunkTracking(t *testing.T) {
	c := NewChunk(Vec2{}, testDims())
	assert.Empty(t, c.DirtySubChunks())

	c.SetVoxel(0, 70, 0, 1)
	dirty := c.DirtySubChunks()
	assert.Contains(t, dirty, c.Dimensions().SubChunkLevel(70))

	c.ClearSubChunkDirty(c.Dimensions().SubChunkLevel(70))
	assert.Empty(t, c.DirtySubChunks())
}

func TestChunkSnapshotAndRestoreRoundTrip(t *testing.T) {
	c := NewChunk(Vec2{}, testDims())
	c.SetVoxel(0, 0, 0, 7)
	c.SetSunlight(0, 0, 0, 12)
	c.SetMaxHeight(0, 0, 64)

	voxels, lights, heights := c.SnapshotVoxels(), c.SnapshotLights(), c.SnapshotHeights()

	fresh := NewChunk(Vec2{}, testDims())
	fresh.RestoreFrom(voxels, lights, heights)

	assert.Equal(t, uint32(7), fresh.GetVoxel(0, 0, 0))
	assert.Equal(t, uint8(12), fresh.GetSunlight(0, 0, 0))
	assert.Equal(t, int32(64), fresh.GetMaxHeight(0, 0))
}

func TestChunkMarkFailedRecordsStageName(t *testing.T) {
	c := NewChunk(Vec2{}, testDims())
	c.MarkFailed("light")
	assert.Equal(t, StatusFailed, c.Status())
	assert.Equal(t, "light", c.FailedStage())
}

func TestChunkRetriesIncrements(t *testing.T) {
	c := NewChunk(Vec2{}, testDims())
	assert.Equal(t, 1, c.Retries())
	assert.Equal(t, 2, c.Retries())
}
