package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"github.com/StoreStation/voxelengine/internal/registry"
)

// InitConfig is the subset of config.Config a client needs to interpret
// every later LOAD/UPDATE packet correctly: world shape, light ceiling
// and the ambient clock, matching spec.md 6's "carries world id, config,
// registry snapshot".
type InitConfig struct {
	ChunkSize         int32
	MaxHeight         int32
	SubChunks         int32
	MaxLightLevel     uint8
	WaterLevel        int32
	TickIntervalMicro int64
	Seed              int64
}

const (
	initFlagPassable   = 1 << 0
	initFlagFluid      = 1 << 1
	initFlagSeeThrough = 1 << 2
	initFlagHeightCont = 1 << 3
)

// EncodeInit serializes the world id, config and every registered block
// descriptor into an INIT packet payload, sent once to each client right
// after it connects.
func EncodeInit(worldID uuid.UUID, cfg InitConfig, blocks []registry.Descriptor) []byte {
	var buf bytes.Buffer

	idBytes, _ := worldID.MarshalBinary()
	buf.Write(idBytes)

	binary.Write(&buf, binary.BigEndian, cfg.ChunkSize)
	binary.Write(&buf, binary.BigEndian, cfg.MaxHeight)
	binary.Write(&buf, binary.BigEndian, cfg.SubChunks)
	buf.WriteByte(cfg.MaxLightLevel)
	binary.Write(&buf, binary.BigEndian, cfg.WaterLevel)
	binary.Write(&buf, binary.BigEndian, cfg.TickIntervalMicro)
	binary.Write(&buf, binary.BigEndian, cfg.Seed)

	WriteVarInt(&buf, int32(len(blocks)))
	for _, d := range blocks {
		binary.Write(&buf, binary.BigEndian, d.ID)
		writeString(&buf, d.Name)
		buf.WriteByte(d.EmitRed)
		buf.WriteByte(d.EmitGreen)
		buf.WriteByte(d.EmitBlue)

		var flags byte
		if d.Passable {
			flags |= initFlagPassable
		}
		if d.Fluid {
			flags |= initFlagFluid
		}
		if d.SeeThrough {
			flags |= initFlagSeeThrough
		}
		if d.HeightContributing {
			flags |= initFlagHeightCont
		}
		buf.WriteByte(flags)

		var transparency byte
		for i, t := range d.Transparency {
			if t {
				transparency |= 1 << uint(i)
			}
		}
		buf.WriteByte(transparency)
	}

	return buf.Bytes()
}

// InitDescriptor is the client-side view of one registry entry carried
// in an INIT payload.
type InitDescriptor struct {
	ID                           uint32
	Name                         string
	EmitRed, EmitGreen, EmitBlue uint8
	Passable, Fluid, SeeThrough  bool
	HeightContributing           bool
	Transparency                 [6]bool
}

// DecodedInit is the client-side view of a full INIT payload.
type DecodedInit struct {
	WorldID  uuid.UUID
	Config   InitConfig
	Registry []InitDescriptor
}

// DecodeInit parses a payload produced by EncodeInit.
func DecodeInit(data []byte) (*DecodedInit, error) {
	if len(data) < 16 {
		return nil, fmt.Errorf("wire: init payload too short for world id")
	}
	var out DecodedInit
	if err := out.WorldID.UnmarshalBinary(data[:16]); err != nil {
		return nil, fmt.Errorf("wire: read world id: %w", err)
	}
	r := bytes.NewReader(data[16:])

	if err := binary.Read(r, binary.BigEndian, &out.Config.ChunkSize); err != nil {
		return nil, fmt.Errorf("wire: read chunk size: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &out.Config.MaxHeight); err != nil {
		return nil, fmt.Errorf("wire: read max height: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &out.Config.SubChunks); err != nil {
		return nil, fmt.Errorf("wire: read sub chunks: %w", err)
	}
	lvl := make([]byte, 1)
	if _, err := r.Read(lvl); err != nil {
		return nil, fmt.Errorf("wire: read max light level: %w", err)
	}
	out.Config.MaxLightLevel = lvl[0]
	if err := binary.Read(r, binary.BigEndian, &out.Config.WaterLevel); err != nil {
		return nil, fmt.Errorf("wire: read water level: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &out.Config.TickIntervalMicro); err != nil {
		return nil, fmt.Errorf("wire: read tick interval: %w", err)
	}
	if err := binary.Read(r, binary.BigEndian, &out.Config.Seed); err != nil {
		return nil, fmt.Errorf("wire: read seed: %w", err)
	}

	count, _, err := ReadVarInt(r)
	if err != nil {
		return nil, fmt.Errorf("wire: read registry count: %w", err)
	}
	out.Registry = make([]InitDescriptor, count)
	for i := range out.Registry {
		d := &out.Registry[i]
		if err := binary.Read(r, binary.BigEndian, &d.ID); err != nil {
			return nil, fmt.Errorf("wire: read block %d id: %w", i, err)
		}
		if d.Name, err = readString(r); err != nil {
			return nil, err
		}
		rgb := make([]byte, 3)
		if _, err := r.Read(rgb); err != nil {
			return nil, fmt.Errorf("wire: read block %d light: %w", i, err)
		}
		d.EmitRed, d.EmitGreen, d.EmitBlue = rgb[0], rgb[1], rgb[2]

		flagByte := make([]byte, 1)
		if _, err := r.Read(flagByte); err != nil {
			return nil, fmt.Errorf("wire: read block %d flags: %w", i, err)
		}
		d.Passable = flagByte[0]&initFlagPassable != 0
		d.Fluid = flagByte[0]&initFlagFluid != 0
		d.SeeThrough = flagByte[0]&initFlagSeeThrough != 0
		d.HeightContributing = flagByte[0]&initFlagHeightCont != 0

		transByte := make([]byte, 1)
		if _, err := r.Read(transByte); err != nil {
			return nil, fmt.Errorf("wire: read block %d transparency: %w", i, err)
		}
		for f := range d.Transparency {
			d.Transparency[f] = transByte[0]&(1<<uint(f)) != 0
		}
	}

	return &out, nil
}
