package physics

import (
	"math"

	"github.com/akmonengine/feather/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Handle identifies a body within a World. Handles are never reused.
type Handle int

// Kind classifies bodies in the bowl scene.
type Kind uint8

const (
	KindDie Kind = iota
	KindFloor
	KindWall
)

func (k Kind) String() string {
	switch k {
	case KindDie:
		return "die"
	case KindFloor:
		return "floor"
	case KindWall:
		return "wall"
	default:
		return "unknown"
	}
}

// Body is a simulated rigid body: a die or one of the static bowl planes.
type Body struct {
	handle Handle
	kind   Kind
	rb     *actor.RigidBody
}

// Handle returns the body's identity.
func (b *Body) Handle() Handle { return b.handle }

// Kind returns what the body represents.
func (b *Body) Kind() Kind { return b.kind }

// RigidBody exposes the underlying simulation body.
func (b *Body) RigidBody() *actor.RigidBody { return b.rb }

// Static reports whether the body is fixed in place.
func (b *Body) Static() bool {
	return b.rb == nil || b.rb.BodyType == actor.BodyTypeStatic
}

// Asleep reports whether the solver has put the body to rest.
func (b *Body) Asleep() bool { return b.rb != nil && b.rb.IsSleeping }

// Position returns the center of mass in world space.
func (b *Body) Position() mgl64.Vec3 { return b.rb.Transform.Position }

// Rotation returns the orientation.
func (b *Body) Rotation() mgl64.Quat { return b.rb.Transform.Rotation }

// LinearVelocity returns the linear velocity.
func (b *Body) LinearVelocity() mgl64.Vec3 { return b.rb.Velocity }

// AngularVelocity returns the angular velocity.
func (b *Body) AngularVelocity() mgl64.Vec3 { return b.rb.AngularVelocity }

// SetVelocity overrides both velocities and wakes the body.
func (b *Body) SetVelocity(linear, angular mgl64.Vec3) {
	if b.Static() {
		return
	}
	b.rb.Velocity = linear
	b.rb.AngularVelocity = angular
	b.rb.WakeUp()
}

// Teleport moves the body and clears its motion.
func (b *Body) Teleport(position mgl64.Vec3, rotation mgl64.Quat) {
	if b.Static() {
		return
	}
	place(b.rb, position, rotation)
	b.rb.Velocity = mgl64.Vec3{}
	b.rb.AngularVelocity = mgl64.Vec3{}
	b.rb.WakeUp()
}

// plane returns the half-space of a bowl body.
func (b *Body) plane() (*actor.Plane, bool) {
	if b.rb == nil {
		return nil, false
	}
	p, ok := b.rb.Shape.(*actor.Plane)
	return p, ok
}

// validTransform reports whether the body has a usable pose.
func (b *Body) validTransform() bool {
	if b == nil || b.rb == nil {
		return false
	}
	p := b.rb.Transform.Position
	q := b.rb.Transform.Rotation
	for _, f := range [...]float64{p.X(), p.Y(), p.Z(), q.W, q.V.X(), q.V.Y(), q.V.Z()} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// place sets a pose the solver can use straight away.
func place(rb *actor.RigidBody, position mgl64.Vec3, rotation mgl64.Quat) {
	if rotation.Len() < 1e-9 {
		rotation = mgl64.QuatIdent()
	}
	rotation = rotation.Normalize()
	rb.Transform.Position = position
	rb.Transform.Rotation = rotation
	rb.Transform.InverseRotation = rotation.Inverse()
	rb.PreviousTransform = rb.Transform
	rb.Shape.ComputeAABB(rb.Transform)
}
