package mesher

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/StoreStation/voxelengine/internal/registry"
	"github.com/StoreStation/voxelengine/internal/voxel"
)

// faceNormal returns the outward unit normal for a registry.Face.
func faceNormal(f registry.Face) mgl32.Vec3 {
	dx, dy, dz := f.Delta()
	return mgl32.Vec3{float32(dx), float32(dy), float32(dz)}
}

// primaryMatrix returns the rotation that carries the template's "up"
// face (+Y) onto the voxel's primary rotation face, one of the six cube
// symmetries enumerated by voxel.RotationFace.
func primaryMatrix(rot voxel.RotationFace) mgl32.Mat4 {
	switch rot {
	case voxel.RotationPY:
		return mgl32.Ident4()
	case voxel.RotationNY:
		return mgl32.HomogRotate3DX(math.Pi)
	case voxel.RotationPX:
		return mgl32.HomogRotate3DZ(-math.Pi / 2)
	case voxel.RotationNX:
		return mgl32.HomogRotate3DZ(math.Pi / 2)
	case voxel.RotationPZ:
		return mgl32.HomogRotate3DX(math.Pi / 2)
	case voxel.RotationNZ:
		return mgl32.HomogRotate3DX(-math.Pi / 2)
	default:
		return mgl32.Ident4()
	}
}

// Transform returns the full corner transform for a voxel rotated by
// rot and yawSegment (one of voxel.YRotSegments evenly spaced turns
// about the vertical axis), pivoted around the voxel's center.
func Transform(rot voxel.RotationFace, yawSegment uint32) mgl32.Mat4 {
	yawAngle := float32(yawSegment) * (2 * math.Pi / float32(voxel.YRotSegments))
	yaw := mgl32.HomogRotate3DY(yawAngle)
	toCenter := mgl32.Translate3D(-0.5, -0.5, -0.5)
	fromCenter := mgl32.Translate3D(0.5, 0.5, 0.5)
	return fromCenter.Mul4(yaw).Mul4(primaryMatrix(rot)).Mul4(toCenter)
}

// TemplateFace returns which canonical (unrotated) face template should
// be sampled so that, after Transform is applied, its geometry ends up
// facing world direction f. This is the inverse face permutation induced
// by the primary rotation: e.g. a block rotated so +X is "up" samples
// its template +Y face to render the world +X face.
func TemplateFace(f registry.Face, rot voxel.RotationFace) registry.Face {
	n := faceNormal(f)
	inv := primaryMatrix(rot).Inv()
	local := inv.Mul4x1(mgl32.Vec4{n.X(), n.Y(), n.Z(), 0})
	return nearestFace(mgl32.Vec3{local.X(), local.Y(), local.Z()})
}

func nearestFace(v mgl32.Vec3) registry.Face {
	best := registry.FacePX
	bestDot := float32(-2)
	for _, f := range [6]registry.Face{registry.FacePX, registry.FaceNX, registry.FacePY, registry.FaceNY, registry.FacePZ, registry.FaceNZ} {
		d := v.Dot(faceNormal(f))
		if d > bestDot {
			bestDot = d
			best = f
		}
	}
	return best
}

// TransformCorner applies m to a template corner position, given in
// block-local [0,1]^3 space, returning the rotated block-local position.
func TransformCorner(m mgl32.Mat4, pos [3]float32) [3]float32 {
	v := m.Mul4x1(mgl32.Vec4{pos[0], pos[1], pos[2], 1})
	return [3]float32{v.X(), v.Y(), v.Z()}
}
