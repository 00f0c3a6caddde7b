package mesher

import (
	"github.com/StoreStation/voxelengine/internal/chunkstore"
	"github.com/StoreStation/voxelengine/internal/geom"
	"github.com/StoreStation/voxelengine/internal/registry"
	"github.com/StoreStation/voxelengine/internal/voxel"
)

// BlockMesher is a pluggable per-block meshing strategy, for blocks whose
// geometry the default culled/greedy face pass cannot express (foliage
// cross-quads, fluids, custom models). A BlockMesher bypasses occlusion
// culling and greedy merging entirely: it is handed one voxel and
// returns whatever geometry it wants appended as-is.
type BlockMesher interface {
	Mesh(reg *registry.Registry, space *chunkstore.Space, pos voxel.Vec3, desc *registry.Descriptor) []geom.Geometry
}

// MesherRegistry maps a block's Descriptor.CustomMesher name to the
// BlockMesher that handles it.
type MesherRegistry struct {
	byName map[string]BlockMesher
}

// NewMesherRegistry returns a registry pre-populated with the engine's
// built-in custom meshers.
func NewMesherRegistry() *MesherRegistry {
	r := &MesherRegistry{byName: make(map[string]BlockMesher)}
	r.Register("cross", CrossMesher{})
	return r
}

// Register adds or replaces the BlockMesher for name.
func (r *MesherRegistry) Register(name string, m BlockMesher) {
	r.byName[name] = m
}

// Lookup returns the BlockMesher registered for name, or nil.
func (r *MesherRegistry) Lookup(name string) BlockMesher {
	if name == "" {
		return nil
	}
	return r.byName[name]
}

// CrossMesher renders a block as two crossed, double-sided quads spanning
// the full voxel diagonally, the standard technique for grass, flowers
// and other foliage that should not cull against neighbors and has no
// meaningful face orientation. It is self-lit from its own voxel cell and
// always reports the unoccluded AO value 3 on every corner (plants do
// not shadow their own corners).
type CrossMesher struct{}

func (CrossMesher) Mesh(reg *registry.Registry, space *chunkstore.Space, pos voxel.Vec3, desc *registry.Descriptor) []geom.Geometry {
	l := space.GetRawLight(pos)
	lightWord := geom.PackLight(l.ExtractSunlight(), l.ExtractRed(), l.ExtractGreen(), l.ExtractBlue())
	lights := [4]uint32{lightWord, lightWord, lightWord, lightWord}
	fullAO := [4]uint8{3, 3, 3, 3}
	uvs := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	x, y, z := float32(pos.X), float32(pos.Y), float32(pos.Z)
	key := geom.MaterialKey{BlockID: desc.ID, FaceName: "cross"}
	g := &geom.Geometry{Key: key}

	// Two diagonal planes through the voxel's vertical axis, each
	// wound so both faces are visible without backface culling
	// disabled elsewhere: emit the quad twice, once per winding.
	diag1 := [4][3]float32{
		{x, y, z}, {x + 1, y, z + 1}, {x + 1, y + 1, z + 1}, {x, y + 1, z},
	}
	diag2 := [4][3]float32{
		{x + 1, y, z}, {x, y, z + 1}, {x, y + 1, z + 1}, {x + 1, y + 1, z},
	}

	g.AddQuad(diag1, uvs, lights, fullAO)
	g.AddQuad(reverseQuad(diag1), uvs, lights, fullAO)
	g.AddQuad(diag2, uvs, lights, fullAO)
	g.AddQuad(reverseQuad(diag2), uvs, lights, fullAO)

	return []geom.Geometry{*g}
}

func reverseQuad(p [4][3]float32) [4][3]float32 {
	return [4][3]float32{p[3], p[2], p[1], p[0]}
}
