package voxel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoxelIDRoundTrip(t *testing.T) {
	for _, id := range []uint32{0, 1, 42, 0xFFFF} {
		v := InsertID(0, id)
		assert.Equal(t, id, ExtractID(v))
	}
}

func TestVoxelIDMasksOverflow(t *testing.T) {
	v := InsertID(0, 0x1FFFF)
	assert.Equal(t, uint32(0xFFFF), ExtractID(v))
}

func TestVoxelRotationRoundTrip(t *testing.T) {
	for _, face := range []RotationFace{RotationPY, RotationNY, RotationPX, RotationNX, RotationPZ, RotationNZ} {
		v := InsertRotation(0, face)
		assert.Equal(t, face, ExtractRotation(v))
	}
}

func TestVoxelYRotationRoundTrip(t *testing.T) {
	for seg := uint32(0); seg < YRotSegments; seg++ {
		v := InsertYRotation(0, seg)
		assert.Equal(t, seg, ExtractYRotation(v))
	}
}

func TestVoxelStageRoundTrip(t *testing.T) {
	for stage := uint32(0); stage <= 15; stage++ {
		v, err := InsertStage(0, stage)
		require.NoError(t, err)
		assert.Equal(t, stage, ExtractStage(v))
	}
}

func TestVoxelStageOutOfRange(t *testing.T) {
	_, err := InsertStage(0, 16)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestVoxelFieldsAreIndependent(t *testing.T) {
	v := InsertID(0, 7)
	v = InsertRotation(v, RotationPX)
	v = InsertYRotation(v, 9)
	v, err := InsertStage(v, 3)
	require.NoError(t, err)

	assert.Equal(t, uint32(7), ExtractID(v))
	assert.Equal(t, RotationPX, ExtractRotation(v))
	assert.Equal(t, uint32(9), ExtractYRotation(v))
	assert.Equal(t, uint32(3), ExtractStage(v))

	v = InsertID(v, 99)
	assert.Equal(t, uint32(99), ExtractID(v))
	assert.Equal(t, RotationPX, ExtractRotation(v), "changing id must not disturb rotation")
	assert.Equal(t, uint32(9), ExtractYRotation(v), "changing id must not disturb yaw")
	assert.Equal(t, uint32(3), ExtractStage(v), "changing id must not disturb stage")
}

func TestIsAir(t *testing.T) {
	assert.True(t, IsAir(0))
	assert.True(t, IsAir(InsertRotation(0, RotationPX)))
	assert.False(t, IsAir(InsertID(0, 1)))
}

func TestLightChannelRoundTrip(t *testing.T) {
	for _, c := range []LightColor{Sunlight, Red, Green, Blue} {
		for level := uint8(0); level <= 15; level++ {
			l := Light(0).Insert(c, level)
			assert.Equal(t, level, l.Extract(c))
		}
	}
}

func TestLightChannelsAreIndependent(t *testing.T) {
	l := Light(0).InsertSunlight(15).InsertRed(8).InsertGreen(4).InsertBlue(2)

	sun, red, green, blue := l.ExtractAll()
	assert.Equal(t, uint8(15), sun)
	assert.Equal(t, uint8(8), red)
	assert.Equal(t, uint8(4), green)
	assert.Equal(t, uint8(2), blue)

	l = l.InsertRed(0)
	sun, red, green, blue = l.ExtractAll()
	assert.Equal(t, uint8(15), sun, "clearing red must not disturb sunlight")
	assert.Equal(t, uint8(0), red)
	assert.Equal(t, uint8(4), green, "clearing red must not disturb green")
	assert.Equal(t, uint8(2), blue, "clearing red must not disturb blue")
}

func TestLightInsertMasksOverflow(t *testing.T) {
	l := Light(0).InsertSunlight(0xFF)
	assert.Equal(t, uint8(0xF), l.ExtractSunlight())
}

func TestLightColorString(t *testing.T) {
	assert.Equal(t, "sunlight", Sunlight.String())
	assert.Equal(t, "red", Red.String())
	assert.Equal(t, "green", Green.String())
	assert.Equal(t, "blue", Blue.String())
}
