package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/StoreStation/voxelengine/internal/voxel"
)

// EncodeUnload serializes a batch of chunk coordinates a client should
// drop, matching spec.md 4.6's "emit an Unload message" and 7's "its
// interested clients receive an Unload for that coord".
func EncodeUnload(coords []voxel.Vec2) []byte {
	var buf bytes.Buffer
	WriteVarInt(&buf, int32(len(coords)))
	for _, c := range coords {
		binary.Write(&buf, binary.BigEndian, c.X)
		binary.Write(&buf, binary.BigEndian, c.Z)
	}
	return buf.Bytes()
}

// DecodeUnload parses a payload produced by EncodeUnload.
func DecodeUnload(data []byte) ([]voxel.Vec2, error) {
	r := bytes.NewReader(data)
	n, _, err := ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("wire: read unload count: %w", err)
	}
	out := make([]voxel.Vec2, n)
	for i := range out {
		if err := binary.Read(r, binary.BigEndian, &out[i].X); err != nil {
			return nil, fmt.Errorf("wire: read unload %d x: %w", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &out[i].Z); err != nil {
			return nil, fmt.Errorf("wire: read unload %d z: %w", i, err)
		}
	}
	return out, nil
}
