package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/monowheel/event"
)

// CollisionInfo describes a contact between a rig part and an obstacle.
// Normal is the obstacle surface normal, pointing at the part.
type CollisionInfo struct {
	Part              Body
	Obstacle          *Obstacle
	ContactPosition   cp.Vector
	TranslateVelocity cp.Vector
	Normal            cp.Vector
	AngularVelocity   float64
	AlwaysCrash       bool
}

// CollisionDetector tracks one part's velocity from its motion between
// steps and reports obstacle contacts.
type CollisionDetector struct {
	body        *RigidBody
	enabled     bool
	alwaysCrash bool

	prevPosition cp.Vector
	prevAngle    float64
	velocity     cp.Vector
	angular      float64
	primed       bool

	kinematicVelocity cp.Vector

	Enter event.Signal[CollisionInfo]
	Exit  event.Signal[CollisionInfo]
}

func NewCollisionDetector(body *RigidBody, alwaysCrash bool) *CollisionDetector {
	return &CollisionDetector{body: body, enabled: true, alwaysCrash: alwaysCrash}
}

func (d *CollisionDetector) Body() *RigidBody { return d.body }

func (d *CollisionDetector) EnableCrashCollisionDetection() { d.enabled = true }
func (d *CollisionDetector) DisableCrashCollisionDetection() { d.enabled = false }
func (d *CollisionDetector) Enabled() bool { return d.enabled }

// TrackedVelocity is the velocity measured over the last step.
func (d *CollisionDetector) TrackedVelocity() cp.Vector { return d.velocity }

// LastKinematicVelocity is the velocity last written after a crash.
func (d *CollisionDetector) LastKinematicVelocity() cp.Vector { return d.kinematicVelocity }

// Track measures velocity from the position change over dt.
func (d *CollisionDetector) Track(dt float64) {
	pos := d.body.Position()
	angle := d.body.Angle()
	if d.primed && dt > 0 {
		d.velocity = pos.Sub(d.prevPosition).Mult(1 / dt)
		d.angular = (angle - d.prevAngle) / dt
	}
	d.prevPosition = pos
	d.prevAngle = angle
	d.primed = true
}

func (d *CollisionDetector) info(obstacle *Obstacle, point, normal cp.Vector) CollisionInfo {
	always := d.alwaysCrash
	if obstacle != nil && obstacle.AlwaysCrash {
		always = true
	}
	return CollisionInfo{
		Part:              d.body,
		Obstacle:          obstacle,
		ContactPosition:   point,
		TranslateVelocity: d.velocity,
		Normal:            normal,
		AngularVelocity:   d.angular,
		AlwaysCrash:       always,
	}
}

func (d *CollisionDetector) enter(obstacle *Obstacle, point, normal cp.Vector) {
	if !d.enabled {
		return
	}
	d.Enter.Emit(d.info(obstacle, point, normal))
}

func (d *CollisionDetector) exit(obstacle *Obstacle) {
	if !d.enabled {
		return
	}
	d.Exit.Emit(d.info(obstacle, cp.Vector{}, cp.Vector{}))
}

// UpdatePhysicVelocitiesFromKinematicReflect mirrors the normalized root
// velocity about normal. The part that was hit keeps 0.8 of the reflection,
// every other part gets -0.3 of it.
func (d *CollisionDetector) UpdatePhysicVelocitiesFromKinematicReflect(hit Body, root, normal cp.Vector) {
	modifier := -0.3
	if hit != nil && hit == Body(d.body) {
		modifier = 0.8
	}
	n := normalized(root)
	mirror := n.Sub(normal.Mult(2 * n.Dot(normal)))
	d.kinematicVelocity = mirror.Mult(modifier)
	d.body.SetVelocity(d.kinematicVelocity)
}

// UpdatePhysicVelocitiesFromKinematic scales root onto the part: -0.3 for
// the part that was hit, 0.8 for the rest.
func (d *CollisionDetector) UpdatePhysicVelocitiesFromKinematic(hit Body, root cp.Vector) {
	modifier := 0.8
	if hit != nil && hit == Body(d.body) {
		modifier = -0.3
	}
	d.kinematicVelocity = root.Mult(modifier)
	d.body.SetVelocity(d.kinematicVelocity)
}

func normalized(v cp.Vector) cp.Vector {
	l := v.Length()
	if l < 1e-9 {
		return cp.Vector{}
	}
	return v.Mult(1 / l)
}
