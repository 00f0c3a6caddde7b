package physics

import "github.com/go-gl/mathgl/mgl32"

// Resting marks, per axis, whether the body's last step ended touching
// terrain in the negative (-1), positive (+1), or neither (0) direction,
// mirroring rigidbody.rs's resting: Vec3<i32>.
type Resting struct {
	X, Y, Z int8
}

// RigidBody is one physics-simulated entity: an AABB that gravity,
// drag, and collision against voxel terrain act on every tick.
type RigidBody struct {
	AABB AABB

	Mass               float32
	Friction           float32
	Restitution        float32
	GravityMultiplier  float32
	AutoStep           bool

	Velocity mgl32.Vec3
	Forces   mgl32.Vec3
	Impulses mgl32.Vec3
	Resting  Resting

	InFluid      bool
	RatioInFluid float32

	airDrag   float32
	fluidDrag float32

	SleepFrameCount uint32
}

// NewRigidBody builds a body around aabb with the teacher/original's
// default drag coefficients.
func NewRigidBody(aabb AABB) *RigidBody {
	return &RigidBody{
		AABB:              aabb,
		Mass:              1,
		Friction:          0,
		Restitution:       0,
		GravityMultiplier: 1,
		airDrag:           -1,
		fluidDrag:         -1,
		SleepFrameCount:   10,
	}
}

// Position returns the body's current world-space minimum corner.
func (b *RigidBody) Position() mgl32.Vec3 {
	return b.AABB.Min
}

// ApplyImpulse adds an instantaneous velocity change, used for the
// collision-repulsion push-apart pass.
func (b *RigidBody) ApplyImpulse(dx, dy, dz float32) {
	b.Impulses = b.Impulses.Add(mgl32.Vec3{dx, dy, dz})
}

// ApplyForce accumulates a continuous force for the next Step.
func (b *RigidBody) ApplyForce(dx, dy, dz float32) {
	b.Forces = b.Forces.Add(mgl32.Vec3{dx, dy, dz})
}
