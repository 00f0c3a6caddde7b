// Package config holds the world's construction-time options, grounded
// on spec.md 6's configuration table and the teacher's pkg/server.Config
// pattern of a plain struct with a functional-defaults constructor,
// overridden by CLI flags in cmd/voxelserver.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/StoreStation/voxelengine/internal/voxel"
)

// ErrConfig wraps every validation failure; Config errors are fatal at
// startup, matching spec.md 7's Config error kind.
var ErrConfig = errors.New("config: invalid configuration")

// Config carries every option spec.md 6's table names.
type Config struct {
	// World shape.
	ChunkSize     int32
	MaxHeight     int32
	SubChunks     int32
	MaxLightLevel uint8
	MinChunk      voxel.Vec2
	MaxChunk      voxel.Vec2

	// Preload.
	Preload       bool
	PreloadRadius int32

	// Per-tick work caps.
	MaxChunksPerTick   int
	MaxResponsePerTick int
	MaxSavesPerTick    int

	// Persistence.
	SaveInterval  int
	SaveEntities  bool
	Saving        bool
	SaveDir       string

	// World semantics.
	CollisionRepulsion float32
	WaterLevel         int32
	TimePerDay         time.Duration
	DefaultTime        time.Duration

	// Networking / authority.
	PositionToleranceSq float32
	StatsSyncInterval   int

	// Ambient.
	Seed        int64
	TickInterval time.Duration
	ListenAddr  string
	WSPath      string

	MaxRetries int
}

// DefaultConfig returns the engine's baseline configuration: a 16x256x16
// chunk (4 sub-chunks of 64), level-15 light, a 32-chunk-radius bounded
// world, one tick every 16ms, no persistence.
func DefaultConfig() Config {
	return Config{
		ChunkSize:     16,
		MaxHeight:     256,
		SubChunks:     4,
		MaxLightLevel: 15,
		MinChunk:      voxel.Vec2{X: -32, Z: -32},
		MaxChunk:      voxel.Vec2{X: 32, Z: 32},

		Preload:       true,
		PreloadRadius: 4,

		MaxChunksPerTick:   16,
		MaxResponsePerTick: 16,
		MaxSavesPerTick:    4,

		SaveInterval: 300,
		SaveEntities: true,
		Saving:       false,
		SaveDir:      "world",

		CollisionRepulsion: 0.6,
		WaterLevel:         48,
		TimePerDay:         20 * time.Minute,
		DefaultTime:        8 * time.Minute,

		PositionToleranceSq: 1.0,
		StatsSyncInterval:   200,

		TickInterval: 16 * time.Millisecond,
		ListenAddr:   ":9000",
		WSPath:       "/ws",

		MaxRetries: 3,
	}
}

// Dimensions projects the chunk-shape fields onto a voxel.Dimensions,
// the value every coordinate transform in the engine needs.
func (c Config) Dimensions() voxel.Dimensions {
	return voxel.Dimensions{
		ChunkSize:     c.ChunkSize,
		MaxHeight:     c.MaxHeight,
		SubChunks:     c.SubChunks,
		MaxLightLevel: c.MaxLightLevel,
	}
}

// Validate checks the invariants spec.md 6/7 require at startup: power
// of two chunk size, max_height divisible by sub_chunks, sane bounds and
// light level. A failure here is fatal at startup, never recoverable.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 || c.ChunkSize&(c.ChunkSize-1) != 0 {
		return fmt.Errorf("%w: chunk_size %d is not a power of two", ErrConfig, c.ChunkSize)
	}
	if c.SubChunks <= 0 {
		return fmt.Errorf("%w: sub_chunks must be positive", ErrConfig)
	}
	if c.MaxHeight <= 0 || c.MaxHeight%c.SubChunks != 0 {
		return fmt.Errorf("%w: max_height %d not divisible by sub_chunks %d", ErrConfig, c.MaxHeight, c.SubChunks)
	}
	if c.MaxLightLevel > 15 {
		return fmt.Errorf("%w: max_light_level %d exceeds 15", ErrConfig, c.MaxLightLevel)
	}
	if c.MinChunk.X > c.MaxChunk.X || c.MinChunk.Z > c.MaxChunk.Z {
		return fmt.Errorf("%w: min_chunk %v exceeds max_chunk %v", ErrConfig, c.MinChunk, c.MaxChunk)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("%w: tick_interval must be positive", ErrConfig)
	}
	return nil
}
