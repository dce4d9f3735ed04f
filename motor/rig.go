// Package motor is the monowheel's drive model. It turns input direction,
// jump requests and ground contacts into wheel speed, body tilt, jump
// phases and overheat, and is the only gameplay code that pushes the
// vehicle bodies.
package motor

import "github.com/milk9111/monowheel/physics"

// WheelDrive is the hinge motor between wheel and damper, in degrees per
// second.
type WheelDrive interface {
	Speed() float64
	SetSpeed(degPerSecond float64)
}

type StopSensor interface {
	IsStopped() bool
}

type FootStepSensor interface {
	FootStepHeightRelative() float64
}

// Links toggles the rider's attachment to the vehicle and the vehicle's
// crash collision reporting.
type Links interface {
	EnableTransformLinks()
	DisableTransformLinks()
	EnableMonoSystemCollisionDetection()
	DisableMonoSystemCollisionDetection()
}

// Rig is the set of bodies and sensors the motor drives.
type Rig struct {
	Base   physics.Body
	Wheel  physics.Body
	Damper physics.Body

	Drive       WheelDrive
	WheelGround physics.GroundSensor
	BaseGround  physics.GroundSensor
	Stop        StopSensor
	FootStep    FootStepSensor
	Links       Links
}

func (r *Rig) validate() error {
	switch {
	case r == nil:
		return ErrMissingWheel
	case r.Base == nil || r.Wheel == nil || r.Damper == nil:
		return ErrMissingWheel
	case r.Drive == nil || r.WheelGround == nil || r.BaseGround == nil:
		return ErrMissingWheel
	case r.Stop == nil || r.Links == nil:
		return ErrMissingWheel
	}
	return nil
}

// VehicleRig adapts an assembled physics vehicle.
func VehicleRig(v *physics.Vehicle) *Rig {
	if v == nil {
		return nil
	}
	return &Rig{
		Base:        v.Base.Body,
		Wheel:       v.Wheel.Body,
		Damper:      v.Damper.Body,
		Drive:       v.Motor,
		WheelGround: v.WheelGround,
		BaseGround:  v.BaseGround,
		Stop:        v.Stop,
		FootStep:    v,
		Links:       v,
	}
}
