package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Gravity is the world's downward acceleration, blocks/s^2.
const Gravity float32 = -24

const epsilon float32 = 1e-4

// SolidAt reports whether the voxel at (x,y,z) blocks movement; the
// world layer supplies this from the registry's Passable flag.
type SolidAt func(x, y, z int32) bool

// FluidAt reports whether the voxel at (x,y,z) is a fluid, used to
// apply fluid drag instead of air drag.
type FluidAt func(x, y, z int32) bool

// Config carries the tunables spec.md's configuration table exposes.
type Config struct {
	CollisionRepulsion float32
}

// Step advances body by dt seconds: integrates forces/impulses into
// velocity, then sweeps the AABB through solid terrain one axis at a
// time so a body sliding into a wall on one axis keeps moving freely on
// the others, the standard swept-AABB voxel collision shape (grounded
// on rigidbody.rs's RigidBody.iterate_body, generalized from its
// noa/voxel-physics-engine-derived per-axis sweep).
func Step(b *RigidBody, dt float32, solid SolidAt, fluid FluidAt) {
	drag := b.airDrag
	b.InFluid = fluidAtAABB(b.AABB, fluid)
	if b.InFluid {
		drag = b.fluidDrag
	}

	accel := mgl32.Vec3{0, Gravity * b.GravityMultiplier, 0}
	accel = accel.Add(b.Forces.Mul(1 / b.Mass))

	b.Velocity = b.Velocity.Add(accel.Mul(dt))
	b.Velocity = b.Velocity.Add(b.Impulses.Mul(1 / b.Mass))
	b.Forces = mgl32.Vec3{}
	b.Impulses = mgl32.Vec3{}

	if drag >= 0 {
		b.Velocity = b.Velocity.Mul(float32(math.Pow(float64(1+drag), float64(dt))))
	}

	delta := b.Velocity.Mul(dt)
	b.Resting = Resting{}

	b.AABB, b.Velocity, b.Resting = sweep(b.AABB, delta, b.Velocity, solid, b.AutoStep)

	if b.Resting.Y != 0 && b.SleepFrameCount > 0 {
		b.SleepFrameCount--
	}
}

// sweep moves aabb by delta one axis at a time (y, then x, then z,
// matching the original's vertical-first resolution), zeroing velocity
// and recording Resting on any axis that hits solid terrain. autoStep is
// accepted but not acted on: no step-up onto a ledge is attempted.
func sweep(aabb AABB, delta, velocity mgl32.Vec3, solid SolidAt, autoStep bool) (AABB, mgl32.Vec3, Resting) {
	var resting Resting

	aabb, velocity[1], resting.Y = sweepAxis(aabb, 1, delta[1], velocity[1], solid)
	aabb, velocity[0], resting.X = sweepAxis(aabb, 0, delta[0], velocity[0], solid)
	aabb, velocity[2], resting.Z = sweepAxis(aabb, 2, delta[2], velocity[2], solid)

	return aabb, velocity, resting
}

// sweepAxis moves aabb by delta along axis (0=x,1=y,2=z), stopping at
// the first solid voxel boundary it would otherwise penetrate.
func sweepAxis(aabb AABB, axis int, delta, vel float32, solid SolidAt) (AABB, float32, int8) {
	if delta == 0 {
		return aabb, vel, 0
	}

	moved := aabb.Translate(axisVec(axis, delta))
	if !overlapsSolid(moved, solid) {
		return moved, vel, 0
	}

	// binary search the largest fraction of delta that does not collide
	lo, hi := float32(0), delta
	for i := 0; i < 24; i++ {
		mid := (lo + hi) / 2
		test := aabb.Translate(axisVec(axis, mid))
		if overlapsSolid(test, solid) {
			hi = mid
		} else {
			lo = mid
		}
	}

	resting := int8(1)
	if delta < 0 {
		resting = -1
	}
	nudge := lo
	if delta < 0 {
		nudge += epsilon
	} else {
		nudge -= epsilon
	}
	if (delta < 0 && nudge > lo) || (delta > 0 && nudge < 0) {
		nudge = lo
	}
	return aabb.Translate(axisVec(axis, nudge)), 0, resting
}

func axisVec(axis int, v float32) mgl32.Vec3 {
	var d mgl32.Vec3
	d[axis] = v
	return d
}

// overlapsSolid reports whether any solid voxel AABB overlaps b.
func overlapsSolid(b AABB, solid SolidAt) bool {
	minX, maxX := int32(math.Floor(float64(b.Min[0]))), int32(math.Ceil(float64(b.Max[0])))
	minY, maxY := int32(math.Floor(float64(b.Min[1]))), int32(math.Ceil(float64(b.Max[1])))
	minZ, maxZ := int32(math.Floor(float64(b.Min[2]))), int32(math.Ceil(float64(b.Max[2])))

	for x := minX; x < maxX; x++ {
		for y := minY; y < maxY; y++ {
			for z := minZ; z < maxZ; z++ {
				if !solid(x, y, z) {
					continue
				}
				voxelBox := AABB{
					Min: mgl32.Vec3{float32(x), float32(y), float32(z)},
					Max: mgl32.Vec3{float32(x) + 1, float32(y) + 1, float32(z) + 1},
				}
				if b.Intersects(voxelBox) {
					return true
				}
			}
		}
	}
	return false
}

func fluidAtAABB(b AABB, fluid FluidAt) bool {
	if fluid == nil {
		return false
	}
	cx, cy, cz := b.Center()[0], b.Center()[1], b.Center()[2]
	return fluid(int32(math.Floor(float64(cx))), int32(math.Floor(float64(cy))), int32(math.Floor(float64(cz))))
}

// ResolveRepulsion applies the collision_repulsion push-apart impulse
// between every pair of overlapping bodies, grounded verbatim on
// physics.rs's post-step "push bodies away from one another" pass
// (ported from a per-pair rapier3d impulse to a direct RigidBody one,
// since there is no rapier3d binding in the retrieval pack).
func ResolveRepulsion(bodies []*RigidBody, cfg Config) {
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			a, b := bodies[i], bodies[j]
			if !a.AABB.Intersects(b.AABB) {
				continue
			}
			d := b.AABB.Center().Sub(a.AABB.Center())
			length := d.Len()
			if length <= epsilon {
				continue
			}
			d = d.Mul(1 / length)
			push := d.Mul(cfg.CollisionRepulsion)
			push = clampVec(push, 3.0)
			a.ApplyImpulse(-push[0], -push[1], -push[2])
			b.ApplyImpulse(push[0], push[1], push[2])
		}
	}
}

func clampVec(v mgl32.Vec3, max float32) mgl32.Vec3 {
	for i := range v {
		if v[i] > max {
			v[i] = max
		}
		if v[i] < -max {
			v[i] = -max
		}
	}
	return v
}
