// Package persist implements the on-disk save_dir layout: one binary
// blob per chunk, one JSON document per entity, and a single stats.json
// summary. The chunk blob envelope (magic, version, compression byte,
// varint length) is grounded on oriumgames-pile's format/io.go Read/Write
// pair, adapted to this engine's own voxel/light/height arrays rather
// than Pile's paletted section format.
package persist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/StoreStation/voxelengine/internal/voxel"
	"github.com/StoreStation/voxelengine/internal/wire"
)

// chunkMagic is the 4-byte ASCII tag identifying a chunk blob, this
// engine's equivalent of Pile's MagicNumber.
const chunkMagic = "VXCH"

// ChunkFormatVersion is the current chunk blob format version.
const ChunkFormatVersion = 1

const (
	compressionNone = 0
	compressionZstd = 1
)

// compressThreshold mirrors Pile's "only compress if it helps and the
// payload is non-trivial" rule.
const compressThreshold = 1024

// EncodeChunk serializes a chunk's voxel, light, and height-map arrays
// into a version-tagged, optionally zstd-compressed blob.
func EncodeChunk(c *voxel.Chunk) ([]byte, error) {
	voxels := c.SnapshotVoxels()
	lights := c.SnapshotLights()
	heights := c.SnapshotHeights()

	var body bytes.Buffer
	wire.WriteVarInt(&body, int32(len(voxels)))
	for _, v := range voxels {
		binary.Write(&body, binary.BigEndian, uint32(v))
	}
	wire.WriteVarInt(&body, int32(len(lights)))
	for _, l := range lights {
		binary.Write(&body, binary.BigEndian, uint32(l))
	}
	wire.WriteVarInt(&body, int32(len(heights)))
	for _, h := range heights {
		binary.Write(&body, binary.BigEndian, h)
	}

	data := body.Bytes()
	compression := byte(compressionNone)
	payload := data

	if len(data) > compressThreshold {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err == nil {
			compressed := enc.EncodeAll(data, make([]byte, 0, len(data)))
			enc.Close()
			if len(compressed) < len(data) {
				compression = compressionZstd
				payload = compressed
			}
		}
	}

	var out bytes.Buffer
	out.WriteString(chunkMagic)
	binary.Write(&out, binary.BigEndian, int16(ChunkFormatVersion))
	out.WriteByte(compression)
	wire.WriteVarInt(&out, int32(len(payload)))
	out.Write(payload)
	return out.Bytes(), nil
}

// DecodeChunk restores a chunk's voxel/light/height arrays from a blob
// produced by EncodeChunk, in place on c.
func DecodeChunk(data []byte, c *voxel.Chunk) error {
	r := bytes.NewReader(data)

	magic := make([]byte, len(chunkMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return fmt.Errorf("persist: read magic: %w", err)
	}
	if string(magic) != chunkMagic {
		return fmt.Errorf("persist: bad chunk magic %q", magic)
	}

	var version int16
	if err := binary.Read(r, binary.BigEndian, &version); err != nil {
		return fmt.Errorf("persist: read version: %w", err)
	}
	if version > ChunkFormatVersion {
		return fmt.Errorf("persist: unsupported chunk version %d", version)
	}

	compression, err := r.ReadByte()
	if err != nil {
		return fmt.Errorf("persist: read compression byte: %w", err)
	}

	length, _, err := wire.ReadVarInt(r)
	if err != nil || length < 0 {
		return fmt.Errorf("persist: read payload length: %w", err)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return fmt.Errorf("persist: read payload: %w", err)
	}

	bodyReader := io.Reader(bytes.NewReader(payload))
	if compression == compressionZstd {
		dec, err := zstd.NewReader(bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("persist: zstd reader: %w", err)
		}
		defer dec.Close()
		bodyReader = dec
	} else if compression != compressionNone {
		return fmt.Errorf("persist: unknown compression byte %d", compression)
	}

	body := bodyReader

	voxelCount, _, err := wire.ReadVarInt(body)
	if err != nil {
		return fmt.Errorf("persist: read voxel count: %w", err)
	}
	voxels := make([]voxel.Voxel, voxelCount)
	for i := range voxels {
		var w uint32
		if err := binary.Read(body, binary.BigEndian, &w); err != nil {
			return fmt.Errorf("persist: read voxel %d: %w", i, err)
		}
		voxels[i] = voxel.Voxel(w)
	}

	lightCount, _, err := wire.ReadVarInt(body)
	if err != nil {
		return fmt.Errorf("persist: read light count: %w", err)
	}
	lights := make([]voxel.Light, lightCount)
	for i := range lights {
		var w uint32
		if err := binary.Read(body, binary.BigEndian, &w); err != nil {
			return fmt.Errorf("persist: read light %d: %w", i, err)
		}
		lights[i] = voxel.Light(w)
	}

	heightCount, _, err := wire.ReadVarInt(body)
	if err != nil {
		return fmt.Errorf("persist: read height count: %w", err)
	}
	heights := make([]int32, heightCount)
	for i := range heights {
		if err := binary.Read(body, binary.BigEndian, &heights[i]); err != nil {
			return fmt.Errorf("persist: read height %d: %w", i, err)
		}
	}

	c.RestoreFrom(voxels, lights, heights)
	return nil
}
