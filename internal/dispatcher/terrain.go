package dispatcher

import "github.com/StoreStation/voxelengine/internal/worldgen"

// buildTerrain assembles the engine's default terrain field: a single
// low-frequency layer biasing density toward solid near sea level and
// hollowing out above it, grounded on
// original_source/server/world/generators/terrain.rs's default
// SeededTerrain setup (one continental layer, bias tapering with
// height).
func buildTerrain(seed int64) *worldgen.Terrain {
	layer := worldgen.NewTerrainLayer(0.8).
		AddBiasPoint(-1, 0.5).
		AddBiasPoint(0, 1).
		AddBiasPoint(1, 1.4).
		AddOffsetPoint(-1, -0.2).
		AddOffsetPoint(0, 0).
		AddOffsetPoint(1, 0.3)

	return worldgen.NewTerrain(seed).AddLayer(layer)
}

// buildTreeNoise returns the Noise source TreeStage samples for its
// two-axis placement test, seeded one step away from the terrain noise
// so tree placement doesn't correlate with terrain shape.
func buildTreeNoise(seed int64) *worldgen.Noise {
	return worldgen.NewNoise(seed ^ 0x5bd1e995)
}
