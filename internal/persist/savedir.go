package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/StoreStation/voxelengine/internal/voxel"
)

// SaveDir manages an on-disk world save: chunks/<cx>_<cz>.bin (or
// chunks/<cx>|<cz>.bin on non-Windows, since '|' is not a valid Windows
// filename character), entities/<uuid>.json, and stats.json.
type SaveDir struct {
	root string
}

// Open returns a SaveDir rooted at dir, creating chunks/ and entities/
// subdirectories if they do not already exist.
func Open(dir string) (*SaveDir, error) {
	sd := &SaveDir{root: dir}
	for _, sub := range []string{"chunks", "entities"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("persist: create %s: %w", sub, err)
		}
	}
	return sd, nil
}

// chunkFileName picks the separator: Windows forbids '|' in filenames,
// so chunk coordinates join with '_' there and '|' everywhere else (the
// unambiguous separator, since chunk coordinates can be negative and
// '_' alone cannot distinguish "-1_2" meaning (-1,2) from a coordinate
// that happened to contain an underscore).
func chunkFileName(coord voxel.Vec2) string {
	if runtime.GOOS == "windows" {
		return fmt.Sprintf("%d_%d.bin", coord.X, coord.Z)
	}
	return fmt.Sprintf("%d|%d.bin", coord.X, coord.Z)
}

func (s *SaveDir) chunkPath(coord voxel.Vec2) string {
	return filepath.Join(s.root, "chunks", chunkFileName(coord))
}

func (s *SaveDir) entityPath(id string) string {
	return filepath.Join(s.root, "entities", id+".json")
}

func (s *SaveDir) statsPath() string {
	return filepath.Join(s.root, "stats.json")
}

// SaveChunk writes c's current contents to its chunk file.
func (s *SaveDir) SaveChunk(c *voxel.Chunk) error {
	data, err := EncodeChunk(c)
	if err != nil {
		return err
	}
	return os.WriteFile(s.chunkPath(c.Coord), data, 0o644)
}

// LoadChunk restores a persisted chunk's contents into c, reporting
// false (no error) if no save file exists for c.Coord.
func (s *SaveDir) LoadChunk(coord voxel.Vec2, c *voxel.Chunk) (bool, error) {
	data, err := os.ReadFile(s.chunkPath(coord))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("persist: read chunk %v: %w", coord, err)
	}
	if err := DecodeChunk(data, c); err != nil {
		return false, fmt.Errorf("persist: decode chunk %v: %w", coord, err)
	}
	return true, nil
}

// HasChunk reports whether a save file exists for coord, without
// loading it.
func (s *SaveDir) HasChunk(coord voxel.Vec2) bool {
	_, err := os.Stat(s.chunkPath(coord))
	return err == nil
}

// SaveEntity writes v, JSON-encoded, to entities/<id>.json.
func (s *SaveDir) SaveEntity(id string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("persist: marshal entity %s: %w", id, err)
	}
	return os.WriteFile(s.entityPath(id), data, 0o644)
}

// LoadEntity decodes entities/<id>.json into v, reporting false if the
// file does not exist.
func (s *SaveDir) LoadEntity(id string, v any) (bool, error) {
	data, err := os.ReadFile(s.entityPath(id))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("persist: read entity %s: %w", id, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("persist: unmarshal entity %s: %w", id, err)
	}
	return true, nil
}

// DeleteEntity removes a persisted entity's file, a no-op if it does
// not exist.
func (s *SaveDir) DeleteEntity(id string) error {
	err := os.Remove(s.entityPath(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("persist: delete entity %s: %w", id, err)
	}
	return nil
}

// ListEntityIDs returns the ids of every persisted entity.
func (s *SaveDir) ListEntityIDs() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, "entities"))
	if err != nil {
		return nil, fmt.Errorf("persist: list entities: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ids = append(ids, name[:len(name)-len(filepath.Ext(name))])
	}
	return ids, nil
}

// Stats is the persisted world-level summary written to stats.json.
type Stats struct {
	Seed         int64 `json:"seed"`
	TotalChunks  int   `json:"total_chunks"`
	TotalEntities int  `json:"total_entities"`
	TicksElapsed uint64 `json:"ticks_elapsed"`
}

// SaveStats writes st to stats.json.
func (s *SaveDir) SaveStats(st Stats) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("persist: marshal stats: %w", err)
	}
	return os.WriteFile(s.statsPath(), data, 0o644)
}

// LoadStats reads stats.json, returning the zero value if it does not
// yet exist (a brand-new save directory).
func (s *SaveDir) LoadStats() (Stats, error) {
	var st Stats
	data, err := os.ReadFile(s.statsPath())
	if os.IsNotExist(err) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("persist: read stats: %w", err)
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("persist: unmarshal stats: %w", err)
	}
	return st, nil
}
