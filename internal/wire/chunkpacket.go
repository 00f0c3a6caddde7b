package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/StoreStation/voxelengine/internal/geom"
	"github.com/StoreStation/voxelengine/internal/voxel"
)

// chunkSource is the minimal read surface EncodeLoadChunk needs, kept
// narrow so this package does not import chunkstore (which itself
// imports voxel, and would otherwise risk a cycle with anything that
// later wants wire to describe a Space).
type chunkSource interface {
	SnapshotVoxels() []voxel.Voxel
	SnapshotLights() []voxel.Light
	SnapshotHeights() []int32
	Meshes(level int32) map[geom.MaterialKey]*geom.Geometry
}

// EncodeLoadChunk serializes one chunk's voxels, lights, heights and
// every cached per-sub-chunk mesh into a LOAD packet payload, matching
// spec.md 6's "batch of fully-ready chunks with voxels+lights+
// per-sub-chunk meshes". Levels are the sub-chunk indices to include
// (normally every level 0..SubChunks-1, not just the dirty ones, since
// a fresh LOAD must carry the whole column).
func EncodeLoadChunk(coord voxel.Vec2, c chunkSource, levels []int32) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, coord.X)
	binary.Write(&buf, binary.BigEndian, coord.Z)

	writeVoxels(&buf, c.SnapshotVoxels())
	writeLights(&buf, c.SnapshotLights())
	writeHeights(&buf, c.SnapshotHeights())

	WriteVarInt(&buf, int32(len(levels)))
	for _, level := range levels {
		binary.Write(&buf, binary.BigEndian, level)
		writeMeshes(&buf, c.Meshes(level))
	}
	return buf.Bytes()
}

func writeVoxels(buf *bytes.Buffer, voxels []voxel.Voxel) {
	WriteVarInt(buf, int32(len(voxels)))
	for _, v := range voxels {
		binary.Write(buf, binary.BigEndian, uint32(v))
	}
}

func writeLights(buf *bytes.Buffer, lights []voxel.Light) {
	WriteVarInt(buf, int32(len(lights)))
	for _, l := range lights {
		binary.Write(buf, binary.BigEndian, uint32(l))
	}
}

func writeHeights(buf *bytes.Buffer, heights []int32) {
	WriteVarInt(buf, int32(len(heights)))
	for _, h := range heights {
		binary.Write(buf, binary.BigEndian, h)
	}
}

func writeMeshes(buf *bytes.Buffer, materials map[geom.MaterialKey]*geom.Geometry) {
	WriteVarInt(buf, int32(len(materials)))
	for key, g := range materials {
		binary.Write(buf, binary.BigEndian, key.BlockID)
		writeString(buf, key.FaceName)
		writeFloat32s(buf, g.Positions)
		writeFloat32s(buf, g.UVs)
		WriteVarInt(buf, int32(len(g.Indices)))
		for _, idx := range g.Indices {
			binary.Write(buf, binary.BigEndian, idx)
		}
		WriteVarInt(buf, int32(len(g.Lights)))
		for _, l := range g.Lights {
			binary.Write(buf, binary.BigEndian, l)
		}
		buf.WriteByte(byte(len(g.AOs)))
		buf.Write(g.AOs)
	}
}

func writeString(buf *bytes.Buffer, s string) {
	WriteVarInt(buf, int32(len(s)))
	buf.WriteString(s)
}

func writeFloat32s(buf *bytes.Buffer, vals []float32) {
	WriteVarInt(buf, int32(len(vals)))
	for _, f := range vals {
		binary.Write(buf, binary.BigEndian, f)
	}
}

// DecodedChunk is the client-side view of a LOAD payload, used in tests
// to round-trip what EncodeLoadChunk produced.
type DecodedChunk struct {
	Coord   voxel.Vec2
	Voxels  []voxel.Voxel
	Lights  []voxel.Light
	Heights []int32
	Meshes  map[int32]map[geom.MaterialKey]*geom.Geometry
}

// DecodeLoadChunk parses a payload produced by EncodeLoadChunk.
func DecodeLoadChunk(data []byte) (*DecodedChunk, error) {
	r := bytes.NewReader(data)
	var out DecodedChunk

	if err := binary.Read(r, binary.BigEndian, &out.Coord.X); err != nil {
		return nil, fmt.Errorf("wire: read coord.x: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &out.Coord.Z); err != nil {
		return nil, fmt.Errorf("wire: read coord.z: %w", err)
	}

	var err error
	if out.Voxels, err = readVoxels(r); err != nil {
		return nil, err
	}
	if out.Lights, err = readLights(r); err != nil {
		return nil, err
	}
	if out.Heights, err = readHeights(r); err != nil {
		return nil, err
	}

	levelCount, _, err := ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("wire: read level count: %w", err)
	}
	out.Meshes = make(map[int32]map[geom.MaterialKey]*geom.Geometry, levelCount)
	for i := int32(0); i < levelCount; i++ {
		var level int32
		if err := binary.Read(r, binary.BigEndian, &level); err != nil {
			return nil, fmt.Errorf("wire: read level: %w", err)
		}
		materials, err := readMeshes(r)
		if err != nil {
			return nil, err
		}
		out.Meshes[level] = materials
	}
	return &out, nil
}

func readVoxels(r io.Reader) ([]voxel.Voxel, error) {
	n, _, err := ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("wire: read voxel count: %w", err)
	}
	out := make([]voxel.Voxel, n)
	for i := range out {
		var w uint32
		if err := binary.Read(r, binary.BigEndian, &w); err != nil {
			return nil, fmt.Errorf("wire: read voxel %d: %w", i, err)
		}
		out[i] = voxel.Voxel(w)
	}
	return out, nil
}

func readLights(r io.Reader) ([]voxel.Light, error) {
	n, _, err := ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("wire: read light count: %w", err)
	}
	out := make([]voxel.Light, n)
	for i := range out {
		var w uint32
		if err := binary.Read(r, binary.BigEndian, &w); err != nil {
			return nil, fmt.Errorf("wire: read light %d: %w", i, err)
		}
		out[i] = voxel.Light(w)
	}
	return out, nil
}

func readHeights(r io.Reader) ([]int32, error) {
	n, _, err := ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("wire: read height count: %w", err)
	}
	out := make([]int32, n)
	for i := range out {
		if err := binary.Read(r, binary.BigEndian, &out[i]); err != nil {
			return nil, fmt.Errorf("wire: read height %d: %w", i, err)
		}
	}
	return out, nil
}

func readMeshes(r io.Reader) (map[geom.MaterialKey]*geom.Geometry, error) {
	n, _, err := ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("wire: read material count: %w", err)
	}
	out := make(map[geom.MaterialKey]*geom.Geometry, n)
	for i := int32(0); i < n; i++ {
		var blockID uint32
		if err := binary.Read(r, binary.BigEndian, &blockID); err != nil {
			return nil, fmt.Errorf("wire: read block id: %w", err)
		}
		faceName, err := readString(r)
		if err != nil {
			return nil, err
		}
		positions, err := readFloat32s(r)
		if err != nil {
			return nil, err
		}
		uvs, err := readFloat32s(r)
		if err != nil {
			return nil, err
		}
		idxCount, _, err := ReadVarInt(r)
		if err != nil {
			return nil, fmt.Errorf("wire: read index count: %w", err)
		}
		indices := make([]uint32, idxCount)
		for j := range indices {
			if err := binary.Read(r, binary.BigEndian, &indices[j]); err != nil {
				return nil, fmt.Errorf("wire: read index %d: %w", j, err)
			}
		}
		lightCount, _, err := ReadVarInt(r)
		if err != nil {
			return nil, fmt.Errorf("wire: read vertex light count: %w", err)
		}
		lights := make([]uint32, lightCount)
		for j := range lights {
			if err := binary.Read(r, binary.BigEndian, &lights[j]); err != nil {
				return nil, fmt.Errorf("wire: read vertex light %d: %w", j, err)
			}
		}
		aoLen := make([]byte, 1)
		if _, err := io.ReadFull(r, aoLen); err != nil {
			return nil, fmt.Errorf("wire: read ao length: %w", err)
		}
		aos := make([]byte, aoLen[0])
		if _, err := io.ReadFull(r, aos); err != nil {
			return nil, fmt.Errorf("wire: read aos: %w", err)
		}

		key := geom.MaterialKey{BlockID: blockID, FaceName: faceName}
		out[key] = &geom.Geometry{
			Key:       key,
			Positions: positions,
			UVs:       uvs,
			Indices:   indices,
			Lights:    lights,
			AOs:       aos,
		}
	}
	return out, nil
}

func readString(r io.Reader) (string, error) {
	n, _, err := ReadVarInt(r)
	if err != nil {
		return "", fmt.Errorf("wire: read string length: %w", err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("wire: read string: %w", err)
	}
	return string(buf), nil
}

func readFloat32s(r io.Reader) ([]float32, error) {
	n, _, err := ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("wire: read float count: %w", err)
	}
	out := make([]float32, n)
	for i := range out {
		if err := binary.Read(r, binary.BigEndian, &out[i]); err != nil {
			return nil, fmt.Errorf("wire: read float %d: %w", i, err)
		}
	}
	return out, nil
}
