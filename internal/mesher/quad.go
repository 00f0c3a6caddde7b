package mesher

import (
	"github.com/StoreStation/voxelengine/internal/chunkstore"
	"github.com/StoreStation/voxelengine/internal/geom"
	"github.com/StoreStation/voxelengine/internal/registry"
	"github.com/StoreStation/voxelengine/internal/voxel"
)

// quad is one emitted face, kept in an intermediate form so the greedy
// pass can compare and merge adjacent quads before baking final vertex
// data.
type quad struct {
	key     geom.MaterialKey
	face    registry.Face
	pos     voxel.Vec3 // voxel this face belongs to
	corners [4][3]float32
	uvs     [4][2]float32
	ao      [4]int
	light   [4]uint32

	// axisAligned is true when the source voxel has no rotation (primary
	// face +Y, yaw 0), the only case the greedy pass merges.
	axisAligned bool
}

// faceTangents returns the (u, v) axes spanning face f's plane, matching
// the corner layout baked into registry.StandardCubeFaces.
func faceTangents(f registry.Face) (u, v [3]int32) {
	switch f {
	case registry.FacePX, registry.FaceNX:
		return [3]int32{0, 0, 1}, [3]int32{0, 1, 0}
	case registry.FacePY, registry.FaceNY:
		return [3]int32{1, 0, 0}, [3]int32{0, 0, 1}
	default: // PZ, NZ
		return [3]int32{1, 0, 0}, [3]int32{0, 1, 0}
	}
}

func addVec(a voxel.Vec3, b [3]int32) voxel.Vec3 {
	return voxel.Vec3{X: a.X + b[0], Y: a.Y + b[1], Z: a.Z + b[2]}
}

func scale(v [3]int32, s int32) [3]int32 {
	return [3]int32{v[0] * s, v[1] * s, v[2] * s}
}

// averageLight averages sunlight and each torchlight channel across the
// given neighbor voxels, skipping opaque ones, and packs the result.
// If every neighbor is opaque the face's own adjacent voxel's light is
// used so a vertex is never left unlit.
func averageLight(reg *registry.Registry, space *chunkstore.Space, faceNeighbor voxel.Vec3, positions []voxel.Vec3) uint32 {
	var sumSun, sumR, sumG, sumB, n uint32
	consider := func(p voxel.Vec3) {
		id := voxel.ExtractID(space.GetRawVoxel(p))
		desc := reg.BlockByID(id)
		if desc != nil && !desc.SeeThrough && !desc.Passable && allOpaque(desc) {
			return
		}
		l := space.GetRawLight(p)
		sumSun += uint32(l.ExtractSunlight())
		sumR += uint32(l.ExtractRed())
		sumG += uint32(l.ExtractGreen())
		sumB += uint32(l.ExtractBlue())
		n++
	}
	for _, p := range positions {
		consider(p)
	}
	consider(faceNeighbor)

	if n == 0 {
		l := space.GetRawLight(faceNeighbor)
		return geom.PackLight(l.ExtractSunlight(), l.ExtractRed(), l.ExtractGreen(), l.ExtractBlue())
	}
	return geom.PackLight(uint8(sumSun/n), uint8(sumR/n), uint8(sumG/n), uint8(sumB/n))
}

func allOpaque(d *registry.Descriptor) bool {
	for _, t := range d.Transparency {
		if t {
			return false
		}
	}
	return true
}

// buildFaceQuad emits the quad for voxel pos's face f, or ok=false if
// the face is occluded by its neighbor. atlas may be nil, in which case
// corners keep their raw unit-square UV.
func buildFaceQuad(reg *registry.Registry, atlas *registry.TextureAtlas, space *chunkstore.Space, pos voxel.Vec3, f registry.Face) (quad, bool) {
	id := voxel.ExtractID(space.GetRawVoxel(pos))
	desc := reg.BlockByID(id)
	if desc == nil || id == 0 {
		return quad{}, false
	}

	dx, dy, dz := f.Delta()
	neighborPos := voxel.Vec3{X: pos.X + dx, Y: pos.Y + dy, Z: pos.Z + dz}
	neighborID := voxel.ExtractID(space.GetRawVoxel(neighborPos))
	neighborDesc := reg.BlockByID(neighborID)

	// No quad between two adjacent opaque faces: skip unless the
	// neighbor's facing face is transparent.
	if neighborDesc != nil && !neighborDesc.Transparency[f.Opposite()] {
		return quad{}, false
	}

	rotation := voxel.ExtractRotation(space.GetRawVoxel(pos))
	yaw := voxel.ExtractYRotation(space.GetRawVoxel(pos))
	templateFace := TemplateFace(f, rotation)
	tmpl := desc.Faces[templateFace]
	xform := Transform(rotation, yaw)

	uAxis, vAxis := faceTangents(f)

	var q quad
	q.face = f
	q.pos = pos
	q.key = geom.MaterialKey{BlockID: id, FaceName: f.String()}
	q.axisAligned = rotation == voxel.RotationPY && yaw == 0

	for i, c := range tmpl.Corners {
		rotated := TransformCorner(xform, c.Pos)
		q.corners[i] = [3]float32{
			float32(pos.X) + rotated[0],
			float32(pos.Y) + rotated[1],
			float32(pos.Z) + rotated[2],
		}
		q.uvs[i] = c.UV
		if atlas != nil {
			q.uvs[i] = atlas.Remap(id, f, c.UV)
		}

		cu, cv := cornerUV(i)
		su := int32(1)
		if cu == 0 {
			su = -1
		}
		sv := int32(1)
		if cv == 0 {
			sv = -1
		}
		uOff := scale(uAxis, su)
		vOff := scale(vAxis, sv)

		side1 := addVec(neighborPos, uOff)
		side2 := addVec(neighborPos, vOff)
		corner := addVec(addVec(neighborPos, uOff), vOff)

		side1Transparent := isTransparentAt(reg, space, side1)
		side2Transparent := isTransparentAt(reg, space, side2)
		cornerTransparent := isTransparentAt(reg, space, corner)

		q.ao[i] = VertexAO(side1Transparent, side2Transparent, cornerTransparent)
		q.light[i] = averageLight(reg, space, neighborPos, []voxel.Vec3{side1, side2, corner})
	}

	return q, true
}

func isTransparentAt(reg *registry.Registry, space *chunkstore.Space, p voxel.Vec3) bool {
	id := voxel.ExtractID(space.GetRawVoxel(p))
	desc := reg.BlockByID(id)
	if desc == nil {
		return true
	}
	return !allOpaque(desc)
}

// cornerUV returns which (u,v) in {0,1} a corner index corresponds to,
// matching registry.StandardCubeFaces's corner ordering: (0,0),(1,0),
// (1,1),(0,1).
func cornerUV(i int) (cu, cv int) {
	switch i {
	case 0:
		return 0, 0
	case 1:
		return 1, 0
	case 2:
		return 1, 1
	default:
		return 0, 1
	}
}
