// Package physics steps rigid bodies against the voxel terrain and
// against each other, grounded on original_source's
// server/libs/physics/rigidbody.rs, server/utils/aabb.rs, and
// server/world/systems/physics.rs (ported from rapier3d's impulse-based
// solver to a simpler swept-AABB resolver, since the retrieval pack
// carries no rigid-body physics engine; mgl32 supplies the vector math
// rapier3d's Isometry/vector types provided in the original).
package physics

import "github.com/go-gl/mathgl/mgl32"

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min, Max mgl32.Vec3
}

// NewAABB builds an AABB from a registry block-local box (minX,minY,
// minZ,maxX,maxY,maxZ) translated to world position.
func NewAABB(local [6]float32, pos mgl32.Vec3) AABB {
	return AABB{
		Min: mgl32.Vec3{pos[0] + local[0], pos[1] + local[1], pos[2] + local[2]},
		Max: mgl32.Vec3{pos[0] + local[3], pos[1] + local[4], pos[2] + local[5]},
	}
}

func (b AABB) Width() float32 { return b.Max[0] - b.Min[0] }
func (b AABB) Height() float32 { return b.Max[1] - b.Min[1] }
func (b AABB) Depth() float32 { return b.Max[2] - b.Min[2] }

// Translate returns b shifted by d.
func (b AABB) Translate(d mgl32.Vec3) AABB {
	return AABB{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// SetPosition returns an AABB with the same extents as b, repositioned
// so Min == pos.
func (b AABB) SetPosition(pos mgl32.Vec3) AABB {
	size := b.Max.Sub(b.Min)
	return AABB{Min: pos, Max: pos.Add(size)}
}

// Intersects reports whether two AABBs overlap on all three axes.
func (b AABB) Intersects(o AABB) bool {
	return b.Min[0] < o.Max[0] && b.Max[0] > o.Min[0] &&
		b.Min[1] < o.Max[1] && b.Max[1] > o.Min[1] &&
		b.Min[2] < o.Max[2] && b.Max[2] > o.Min[2]
}

// Center returns the AABB's midpoint.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}
