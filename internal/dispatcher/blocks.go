package dispatcher

import "github.com/StoreStation/voxelengine/internal/registry"

// BlockIDs names the handful of built-in blocks the reference Generate/
// Soil/Water/Tree stages (internal/pipeline/builtins.go) and the default
// physics SolidAt predicate rely on. A real deployment registers its own
// catalog; these are the engine's out-of-the-box set, grounded on
// original_source/examples/server/main.rs's block registration list.
type BlockIDs struct {
	Stone, Dirt, Grass, Snow, Sand, Water, Wood, Leaves uint32
}

// RegisterDefaultBlocks populates reg with the engine's built-in block
// catalog and returns their assigned ids. Leaves is see-through and
// meshed with the cross-quad BlockMesher; Water is a fluid and passable;
// everything else is a fully opaque, height-contributing solid cube.
func RegisterDefaultBlocks(reg *registry.Registry) (BlockIDs, error) {
	faces := registry.StandardCubeFaces()
	opaque := [6]bool{false, false, false, false, false, false}
	transparent := [6]bool{true, true, true, true, true, true}

	solid := func(id uint32, name string) registry.Descriptor {
		return registry.Descriptor{
			ID:                 id,
			Name:               name,
			Transparency:       opaque,
			HeightContributing: true,
			Faces:              faces,
			AABBs:              [][6]float32{{0, 0, 0, 1, 1, 1}},
		}
	}

	ids := BlockIDs{
		Stone: 1, Dirt: 2, Grass: 3, Snow: 4, Sand: 5,
		Water: 6, Wood: 7, Leaves: 8,
	}

	blocks := []registry.Descriptor{
		solid(ids.Stone, "stone"),
		solid(ids.Dirt, "dirt"),
		solid(ids.Grass, "grass"),
		solid(ids.Snow, "snow"),
		solid(ids.Sand, "sand"),
		{
			ID:           ids.Water,
			Name:         "water",
			Transparency: transparent,
			Passable:     true,
			Fluid:        true,
			SeeThrough:   true,
			Faces:        faces,
		},
		solid(ids.Wood, "wood"),
		{
			ID:           ids.Leaves,
			Name:         "leaves",
			Transparency: transparent,
			SeeThrough:   true,
			CustomMesher: "cross",
		},
	}

	for _, b := range blocks {
		if err := reg.Register(b); err != nil {
			return BlockIDs{}, err
		}
	}
	return ids, nil
}
