package voxel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testDims() Dimensions {
	return Dimensions{ChunkSize: 16, MaxHeight: 256, SubChunks: 4, MaxLightLevel: 15}
}

func TestWorldToChunkFloorsNegativeCoords(t *testing.T) {
	d := testDims()
	cases := []struct {
		in   Vec3
		want Vec2
	}{
		{Vec3{X: 0, Z: 0}, Vec2{X: 0, Z: 0}},
		{Vec3{X: 15, Z: 15}, Vec2{X: 0, Z: 0}},
		{Vec3{X: 16, Z: 16}, Vec2{X: 1, Z: 1}},
		{Vec3{X: -1, Z: -1}, Vec2{X: -1, Z: -1}},
		{Vec3{X: -16, Z: -16}, Vec2{X: -1, Z: -1}},
		{Vec3{X: -17, Z: -17}, Vec2{X: -2, Z: -2}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, d.WorldToChunk(c.in), "input %v", c.in)
	}
}

func TestWorldToLocalStaysInChunkBounds(t *testing.T) {
	d := testDims()
	cases := []struct {
		in   Vec3
		want Vec3
	}{
		{Vec3{X: 0, Y: 5, Z: 0}, Vec3{X: 0, Y: 5, Z: 0}},
		{Vec3{X: 17, Y: 5, Z: 31}, Vec3{X: 1, Y: 5, Z: 15}},
		{Vec3{X: -1, Y: 5, Z: -17}, Vec3{X: 15, Y: 5, Z: 15}},
	}
	for _, c := range cases {
		got := d.WorldToLocal(c.in)
		assert.Equal(t, c.want, got, "input %v", c.in)
		assert.GreaterOrEqual(t, got.X, int32(0))
		assert.Less(t, got.X, d.ChunkSize)
		assert.GreaterOrEqual(t, got.Z, int32(0))
		assert.Less(t, got.Z, d.ChunkSize)
	}
}

func TestSubChunkLevel(t *testing.T) {
	d := testDims()
	assert.Equal(t, int32(0), d.SubChunkLevel(0))
	assert.Equal(t, int32(0), d.SubChunkLevel(63))
	assert.Equal(t, int32(1), d.SubChunkLevel(64))
	assert.Equal(t, int32(3), d.SubChunkLevel(255))
}

func TestInHeightBounds(t *testing.T) {
	d := testDims()
	assert.True(t, d.InHeightBounds(0))
	assert.True(t, d.InHeightBounds(255))
	assert.False(t, d.InHeightBounds(256))
	assert.False(t, d.InHeightBounds(-1))
}

func TestChunkDistanceSq(t *testing.T) {
	assert.Equal(t, int64(0), ChunkDistanceSq(Vec2{X: 3, Z: 3}, Vec2{X: 3, Z: 3}))
	assert.Equal(t, int64(25), ChunkDistanceSq(Vec2{X: 0, Z: 0}, Vec2{X: 3, Z: 4}))
}
