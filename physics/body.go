// Package physics is the Chipmunk2D side of the monowheel: the space, the
// vehicle rig, level geometry, and the sensors that read contacts back.
// Coordinates are meters with y pointing up.
package physics

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Body is the handle motor and crash code use to read and push a rigid
// body. Angles are radians, counter-clockwise positive.
type Body interface {
	Position() cp.Vector
	Velocity() cp.Vector
	SetVelocity(v cp.Vector)
	AngularVelocity() float64
	SetAngularVelocity(w float64)
	Angle() float64
	SetAngle(a float64)
	Mass() float64
	ApplyImpulse(j cp.Vector)
	ApplyAngularImpulse(j float64)
}

// RigidBody adapts a *cp.Body to Body.
type RigidBody struct {
	name string
	body *cp.Body
}

func NewRigidBody(name string, body *cp.Body) *RigidBody {
	rb := &RigidBody{name: name, body: body}
	body.UserData = rb
	return rb
}

func (b *RigidBody) Name() string { return b.name }
func (b *RigidBody) CP() *cp.Body { return b.body }
func (b *RigidBody) String() string { return b.name }
func (b *RigidBody) Mass() float64 { return b.body.Mass() }
func (b *RigidBody) Angle() float64 { return b.body.Angle() }
func (b *RigidBody) SetAngle(a float64) { b.body.SetAngle(a) }

func (b *RigidBody) Position() cp.Vector { return b.body.Position() }

func (b *RigidBody) Velocity() cp.Vector { return b.body.Velocity() }

func (b *RigidBody) SetVelocity(v cp.Vector) {
	b.body.SetVelocityVector(v)
}

func (b *RigidBody) AngularVelocity() float64 { return b.body.AngularVelocity() }

func (b *RigidBody) SetAngularVelocity(w float64) {
	b.body.SetAngularVelocity(w)
}

// LocalToWorld converts a point in body space to world space.
func (b *RigidBody) LocalToWorld(p cp.Vector) cp.Vector {
	return b.body.LocalToWorld(p)
}

func (b *RigidBody) ApplyImpulse(j cp.Vector) {
	b.body.ApplyImpulseAtWorldPoint(j, b.body.Position())
}

// ApplyAngularImpulse changes angular velocity by j divided by the body's
// moment of inertia.
func (b *RigidBody) ApplyAngularImpulse(j float64) {
	moment := b.body.Moment()
	if moment <= 0 || math.IsInf(moment, 0) {
		return
	}
	b.body.SetAngularVelocity(b.body.AngularVelocity() + j/moment)
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 { return deg * math.Pi / 180 }

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 { return rad * 180 / math.Pi }
