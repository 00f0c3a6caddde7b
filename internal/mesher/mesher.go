// Package mesher turns a chunk's voxels into GPU-ready geometry: a
// culled face pass with baked ambient occlusion and averaged vertex
// light, an optional greedy merge of axis-aligned faces, and a pluggable
// per-block mesher escape hatch for non-cube geometry. Grounded on
// original_source/crates/voxelize/src/mesher/{culler,greedy,mod}.rs.
package mesher

import (
	"github.com/StoreStation/voxelengine/internal/chunkstore"
	"github.com/StoreStation/voxelengine/internal/geom"
	"github.com/StoreStation/voxelengine/internal/registry"
	"github.com/StoreStation/voxelengine/internal/voxel"
)

var allFaces = [6]registry.Face{
	registry.FacePX, registry.FaceNX,
	registry.FacePY, registry.FaceNY,
	registry.FacePZ, registry.FaceNZ,
}

// Mesher bakes one sub-chunk region of a Space into per-material
// geometry. It is stateless besides its registries, so one Mesher is
// shared across every worker in the pipeline's mesh stage.
type Mesher struct {
	Registry *registry.Registry
	Custom   *MesherRegistry
	Greedy   bool

	// Atlas remaps each emitted corner's unit-square UV into a shared
	// atlas texture's sub-rectangle. Nil means every block still samples
	// its own full texture, the pre-atlas default.
	Atlas *registry.TextureAtlas
}

// New returns a Mesher bound to reg, with the default custom-mesher
// registry and greedy merging enabled.
func New(reg *registry.Registry) *Mesher {
	return &Mesher{Registry: reg, Custom: NewMesherRegistry(), Greedy: true}
}

// MeshRegion meshes every voxel in [min, max) from space, returning one
// Geometry per MaterialKey. Space must have been built with NeedVoxels
// and NeedLights set, and a radius of at least 1 so face culling and AO
// can see one voxel past the region's border.
func (m *Mesher) MeshRegion(space *chunkstore.Space, min, max voxel.Vec3) map[geom.MaterialKey]*geom.Geometry {
	var quads []quad
	customOut := make(map[geom.MaterialKey]*geom.Geometry)

	for x := min.X; x < max.X; x++ {
		for y := min.Y; y < max.Y; y++ {
			for z := min.Z; z < max.Z; z++ {
				pos := voxel.Vec3{X: x, Y: y, Z: z}
				id := voxel.ExtractID(space.GetRawVoxel(pos))
				if id == 0 {
					continue
				}
				desc := m.Registry.BlockByID(id)
				if desc == nil {
					continue
				}

				if desc.CustomMesher != "" {
					if bm := m.Custom.Lookup(desc.CustomMesher); bm != nil {
						for _, g := range bm.Mesh(m.Registry, space, pos, desc) {
							merged, ok := customOut[g.Key]
							if !ok {
								gc := g
								customOut[g.Key] = &gc
								continue
							}
							appendGeometry(merged, g)
						}
						continue
					}
				}

				for _, f := range allFaces {
					if q, ok := buildFaceQuad(m.Registry, m.Atlas, space, pos, f); ok {
						quads = append(quads, q)
					}
				}
			}
		}
	}

	if m.Greedy {
		quads = greedyMerge(quads)
	}

	out := customOut
	for _, q := range quads {
		g, ok := out[q.key]
		if !ok {
			g = &geom.Geometry{Key: q.key}
			out[q.key] = g
		}
		g.AddQuad(q.corners, q.uvs, q.light, aoBytes(q.ao))
	}

	return out
}

func aoBytes(ao [4]int) [4]uint8 {
	return [4]uint8{uint8(ao[0]), uint8(ao[1]), uint8(ao[2]), uint8(ao[3])}
}

// appendGeometry concatenates src's vertex streams onto dst, offsetting
// indices by dst's current vertex count.
func appendGeometry(dst *geom.Geometry, src geom.Geometry) {
	base := uint32(len(dst.Positions) / 3)
	dst.Positions = append(dst.Positions, src.Positions...)
	dst.UVs = append(dst.UVs, src.UVs...)
	dst.Lights = append(dst.Lights, src.Lights...)
	dst.AOs = append(dst.AOs, src.AOs...)
	for _, idx := range src.Indices {
		dst.Indices = append(dst.Indices, idx+base)
	}
}
