package wire

import (
	"bytes"
	"encoding/binary"

	"github.com/StoreStation/voxelengine/internal/voxel"
)

// VoxelChange is one (position, new raw value) pair inside an UPDATE
// packet's delta list.
type VoxelChange struct {
	Pos   voxel.Vec3
	Value voxel.Voxel
}

// EncodeUpdate serializes an UPDATE packet payload: the list of voxel
// changes applied this tick, followed by which chunk/sub-chunk levels
// were re-meshed as a result, per spec.md 6's "delta: list of
// (voxel, new_value) changes plus re-meshed sub-chunks".
func EncodeUpdate(changes []VoxelChange, remeshed map[voxel.Vec2][]int32) []byte {
	var buf bytes.Buffer

	WriteVarInt(&buf, int32(len(changes)))
	for _, c := range changes {
		binary.Write(&buf, binary.BigEndian, c.Pos.X)
		binary.Write(&buf, binary.BigEndian, c.Pos.Y)
		binary.Write(&buf, binary.BigEndian, c.Pos.Z)
		binary.Write(&buf, binary.BigEndian, uint32(c.Value))
	}

	WriteVarInt(&buf, int32(len(remeshed)))
	for coord, levels := range remeshed {
		binary.Write(&buf, binary.BigEndian, coord.X)
		binary.Write(&buf, binary.BigEndian, coord.Z)
		WriteVarInt(&buf, int32(len(levels)))
		for _, level := range levels {
			binary.Write(&buf, binary.BigEndian, level)
		}
	}
	return buf.Bytes()
}
