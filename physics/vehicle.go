package physics

import (
	"errors"
	"fmt"
	"log"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/monowheel/prefabs"
)

var ErrInvalidVehicle = errors.New("invalid vehicle")

// VehicleConfig is everything needed to assemble a rig.
type VehicleConfig struct {
	Body     prefabs.VehicleBodySpec
	Rider    prefabs.RiderBodySpec
	Sensors  prefabs.SensorsSpec
	Distance prefabs.GroundDistanceSpec

	// Size scales the wheel radius, DamperStrength the suspension spring.
	Size           float64
	DamperStrength float64
	// RelativeSize and RelativeDamperStrength place the gear within its
	// bounds for the ground distance calculator.
	RelativeSize           float64
	RelativeDamperStrength float64
}

// Vehicle is the monowheel rig: a wheel pivoting on a damper, a base riding
// the damper on a sprung groove, and a rider linked to the base.
type Vehicle struct {
	Wheel  *Part
	Damper *Part
	Base   *Part
	Torso  *Part
	Head   *Part

	Motor       *WheelMotor
	WheelGround *GroundChecker
	BaseGround  *GroundChecker
	Stop        *StopChecker
	Distance    *GroundDistance

	cfg         VehicleConfig
	radius      float64
	springRest  float64
	stiffness   float64
	springA     cp.Vector
	springB     cp.Vector
	constraints []*cp.Constraint
	links       []*cp.Constraint
	limbLimits  []*cp.Constraint

	space       *cp.Space
	linked      bool
	limbsLocked bool
}

// NewVehicle lays out the rig around cfg.Body.Spawn, the wheel center.
// Bodies are not simulated until the vehicle is added to a World.
func NewVehicle(cfg VehicleConfig) (*Vehicle, error) {
	b := cfg.Body
	if b.WheelRadius <= 0 || b.WheelMass <= 0 || b.BaseMass <= 0 || b.DamperMass <= 0 {
		return nil, fmt.Errorf("physics: %w: wheel radius and masses must be positive", ErrInvalidVehicle)
	}
	if cfg.Size <= 0 {
		cfg.Size = 1
	}
	if cfg.DamperStrength <= 0 {
		cfg.DamperStrength = 1
	}

	v := &Vehicle{cfg: cfg, radius: b.WheelRadius * cfg.Size}
	center := cp.Vector{X: b.Spawn.X, Y: b.Spawn.Y}

	wheel := cp.NewBody(b.WheelMass, cp.MomentForCircle(b.WheelMass, 0, v.radius, cp.Vector{}))
	wheel.SetPosition(center)
	v.Wheel = newPart("wheel", wheel, false, false)
	v.Wheel.addShape(cp.NewCircle(wheel, v.radius, cp.Vector{}), b.WheelFriction)

	damper := cp.NewBody(b.DamperMass, cp.MomentForBox(b.DamperMass, b.DamperWidth, b.DamperHeight))
	damper.SetPosition(center)
	v.Damper = newPart("damper", damper, false, true)
	v.Damper.addShape(cp.NewBox(damper, b.DamperWidth, b.DamperHeight, 0), 0.6)

	baseCenter := center.Add(cp.Vector{Y: b.DamperHeight/2 + b.SuspensionTravel + b.BaseHeight/2})
	base := cp.NewBody(b.BaseMass, cp.MomentForBox(b.BaseMass, b.BaseWidth, b.BaseHeight))
	base.SetPosition(baseCenter)
	v.Base = newPart("base", base, false, true)
	v.Base.addShape(cp.NewBox(base, b.BaseWidth, b.BaseHeight, 0), 0.6)

	r := cfg.Rider
	torsoCenter := baseCenter.Add(cp.Vector{Y: b.BaseHeight/2 + r.TorsoHeight/2})
	torso := cp.NewBody(r.TorsoMass, cp.MomentForBox(r.TorsoMass, r.TorsoWidth, r.TorsoHeight))
	torso.SetPosition(torsoCenter)
	v.Torso = newPart("torso", torso, false, true)
	v.Torso.addShape(cp.NewBox(torso, r.TorsoWidth, r.TorsoHeight, 0), 0.6)

	headCenter := torsoCenter.Add(cp.Vector{Y: r.TorsoHeight/2 + r.HeadRadius})
	head := cp.NewBody(r.HeadMass, cp.MomentForCircle(r.HeadMass, 0, r.HeadRadius, cp.Vector{}))
	head.SetPosition(headCenter)
	v.Head = newPart("head", head, true, true)
	v.Head.addShape(cp.NewCircle(head, r.HeadRadius, cp.Vector{}), 0.6)

	v.springA = cp.Vector{Y: b.DamperHeight / 2}
	v.springB = cp.Vector{Y: -b.BaseHeight / 2}
	v.springRest = 2 * b.SuspensionTravel
	v.stiffness = b.SpringStiffness * cfg.DamperStrength

	v.constraints = []*cp.Constraint{
		cp.NewPivotJoint(wheel, damper, center),
		cp.NewGrooveJoint(damper, base, v.springA, v.springA.Add(cp.Vector{Y: v.springRest}), v.springB),
		cp.NewDampedSpring(damper, base, v.springA, v.springB, v.springRest, v.stiffness, b.SpringDamping),
		cp.NewPivotJoint(torso, head, torsoCenter.Add(cp.Vector{Y: r.TorsoHeight / 2})),
	}
	v.links = []*cp.Constraint{
		cp.NewPivotJoint(base, torso, baseCenter.Add(cp.Vector{Y: b.BaseHeight / 2})),
		cp.NewRotaryLimitJoint(base, torso, 0, 0),
	}
	v.limbLimits = []*cp.Constraint{
		cp.NewRotaryLimitJoint(torso, head, -r.LimbSwing, r.LimbSwing),
	}

	v.Motor = NewWheelMotor(v.Wheel.Body, v.Damper.Body, b.MotorMaxForce)
	v.WheelGround = NewGroundChecker("wheel", cfg.Sensors.GroundNormalMinY)
	v.BaseGround = NewGroundChecker("base", cfg.Sensors.GroundNormalMinY)
	v.BaseGround.DisableAverageNormal()
	v.Stop = NewStopChecker(v.Base.Body, v.Wheel.Body, cfg.Sensors.StopVelocity, cfg.Sensors.StopAngularVelocity, cfg.Sensors.StopDuration)

	d := cfg.Distance
	probe := func(p prefabs.VectorSpec) *DistanceProbe {
		return NewDistanceProbe(v.Base.Body, cp.Vector{X: p.X, Y: p.Y}, d.RayLength+b.DamperHeight+b.SuspensionTravel+v.radius, d.RequestInterval)
	}
	feet := []*DistanceProbe{probe(d.FootRear), probe(d.FootMiddle), probe(d.FootFront)}
	v.Distance = NewGroundDistance(d, probe(d.ZeroPoint), feet, v.SuspensionReaction, cfg.RelativeSize, cfg.RelativeDamperStrength)

	return v, nil
}

func (v *Vehicle) build(space *cp.Space) {
	if v.space != nil {
		panic("physics vehicle: already added to a space")
	}
	v.space = space
	for _, p := range v.Parts() {
		space.AddBody(p.Body.CP())
		for _, s := range p.shapes {
			space.AddShape(s)
		}
	}
	for _, c := range v.constraints {
		space.AddConstraint(c)
	}
	v.EnableTransformLinks()
	v.lockLimbs()
}

// Parts lists every part, wheel first.
func (v *Vehicle) Parts() []*Part {
	return []*Part{v.Wheel, v.Damper, v.Base, v.Torso, v.Head}
}

// Detectors lists the collision detectors of the rig.
func (v *Vehicle) Detectors() []*CollisionDetector {
	var out []*CollisionDetector
	for _, p := range v.Parts() {
		if p.Collisions != nil {
			out = append(out, p.Collisions)
		}
	}
	return out
}

// Radius is the scaled wheel radius.
func (v *Vehicle) Radius() float64 { return v.radius }

// Velocity is the wheel's linear velocity.
func (v *Vehicle) Velocity() cp.Vector { return v.Wheel.Body.Velocity() }

func (v *Vehicle) IsLinked() bool { return v.linked }

// EnableTransformLinks pins the rider to the base.
func (v *Vehicle) EnableTransformLinks() {
	if v.linked || v.space == nil {
		return
	}
	for _, c := range v.links {
		v.space.AddConstraint(c)
	}
	v.linked = true
}

// DisableTransformLinks frees the rider from the base.
func (v *Vehicle) DisableTransformLinks() {
	if !v.linked || v.space == nil {
		return
	}
	for _, c := range v.links {
		v.space.RemoveConstraint(c)
	}
	v.linked = false
	log.Printf("Vehicle: transform links disabled")
}

func (v *Vehicle) lockLimbs() {
	if v.limbsLocked {
		return
	}
	for _, c := range v.limbLimits {
		v.space.AddConstraint(c)
	}
	v.limbsLocked = true
}

func (v *Vehicle) unlockLimbs() {
	if !v.limbsLocked || v.space == nil {
		return
	}
	for _, c := range v.limbLimits {
		v.space.RemoveConstraint(c)
	}
	v.limbsLocked = false
}

func (v *Vehicle) EnableMonoSystemCollisionDetection() {
	for _, d := range v.Detectors() {
		d.EnableCrashCollisionDetection()
	}
}

func (v *Vehicle) DisableMonoSystemCollisionDetection() {
	for _, d := range v.Detectors() {
		d.DisableCrashCollisionDetection()
	}
}

// SuspensionReaction is the vertical force of the suspension spring in the
// damper's frame.
func (v *Vehicle) SuspensionReaction() float64 {
	a := v.Damper.Body.LocalToWorld(v.springA)
	b := v.Base.Body.LocalToWorld(v.springB)
	return v.stiffness * (v.springRest - b.Sub(a).Length())
}

// FootStepHeightRelative reads the ground distance calculator.
func (v *Vehicle) FootStepHeightRelative() float64 {
	return v.Distance.FootStepHeightRelative()
}

func (v *Vehicle) beforeStep(dt float64) {
	v.Motor.apply(dt)
}

func (v *Vehicle) afterStep(dt float64) {
	v.WheelGround.Sense(v.Wheel.Body.CP())
	v.BaseGround.Sense(v.Base.Body.CP())
	for _, d := range v.Detectors() {
		d.Track(dt)
	}
	v.Stop.Update(dt)
	v.Distance.update(v.space, dt)
}
