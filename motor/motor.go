package motor

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/monowheel/common"
	"github.com/milk9111/monowheel/event"
	"github.com/milk9111/monowheel/params"
	"github.com/milk9111/monowheel/physics"
	"github.com/milk9111/monowheel/prefabs"
)

var (
	ErrMissingWheel      = errors.New("wheel rig is required")
	ErrMissingParameters = errors.New("player parameters are required")
)

const (
	Epsilon                  = 1e-4
	AccelerateMultiplier     = 100.0
	MaxAnimatorTilt          = 45.0
	MinimalRelativeJumpPower = 0.25
	MaximalRelativeJumpPower = 20.0
	OverheatMultiplier       = 100.0
	StabilizePower           = 1.8e-5
	crashPitchFactor         = 1.5
	dumpFactor               = 0.1
)

type JumpDirection int

const (
	JumpForward JumpDirection = iota
	JumpBackward
)

func (d JumpDirection) String() string {
	if d == JumpBackward {
		return "backward"
	}
	return "forward"
}

// Motor is the drive model of one monowheel. Speeds are wheel angular
// speeds in degrees per second, tilts are degrees.
type Motor struct {
	gear   prefabs.GearSpec
	params *params.Parameters
	rig    *Rig
	events event.Scope

	active    bool
	stabilize bool
	crashed   bool
	lastStep  uint64
	stepped   bool
	time      float64

	faceDirection       int
	horizontalDirection float64
	maxWheelSpeed       float64
	desiredSpeed        float64
	currentTiltSpeed    float64
	dumpIterations      int

	betweenJumpsUnlockTime float64
	jumpingStartTime       float64
	jumpingStartHeight     float64
	baseVelocityPrevious   cp.Vector
	jumpStartFlag          bool
	jumpPeakFlag           bool
	isJumping              bool

	saltoActive bool
	saltoAngle  float64
	saltoBase   float64

	animatedGround physics.Body

	tilt                  float64
	relativeTilt          float64
	relativePower         float64
	relativeTiltSigned    float64
	relativeFeetTilt      float64
	relativeCharacterTilt float64
	desiredRelativeSpeed  float64

	modifiedTiltAccelerate float64
	modifiedTiltDecelerate float64

	maxModifiedForwardSpeed          float64
	maxModifiedBackwardSpeed         float64
	currentMotorForwardRelative      float64
	currentMotorBackwardRelative     float64
	currentMotorRelativeSpeed        float64
	currentMotorAbsoluteSpeed        float64
	currentMotorAccelerate           float64
	modifiedForwardAccelerateFactor  float64
	modifiedBackwardAccelerateFactor float64
	modifiedDecelerateFactor         float64

	overheatPercent float64

	JumpStart            event.Signal[JumpDirection]
	JumpEnd              event.Trigger
	JumpPeak             event.Signal[float64]
	FaceDirectionChanged event.Signal[int]
}

func New(gear prefabs.GearSpec, p *params.Parameters) (*Motor, error) {
	if p == nil {
		return nil, fmt.Errorf("motor: %w", ErrMissingParameters)
	}
	return &Motor{
		gear:          gear,
		params:        p,
		stabilize:     true,
		faceDirection: 1,
		maxWheelSpeed: gear.MaxForwardWheelSpeed,
	}, nil
}

// OnChangeWheelHandle binds the motor to a rig. A nil or incomplete rig is
// a wiring error.
func (m *Motor) OnChangeWheelHandle(rig *Rig) error {
	if err := rig.validate(); err != nil {
		return fmt.Errorf("motor: %w", err)
	}
	m.rig = rig
	return nil
}

// OnChangeReady activates the motor and its ground subscriptions.
func (m *Motor) OnChangeReady() {
	if m.rig == nil {
		panic(fmt.Errorf("motor: ready before wheel handle: %w", ErrMissingWheel))
	}
	m.active = true
	m.enableEvents()

	mul := m.params.VelocityAccelerateMultiplier()
	m.maxModifiedForwardSpeed = m.gear.MaxForwardWheelSpeed * m.params.MaxForwardVelocityMultiplier()
	m.maxModifiedBackwardSpeed = m.gear.MaxBackwardWheelSpeed * m.params.MaxBackwardVelocityMultiplier()
	m.modifiedForwardAccelerateFactor = m.gear.WheelForwardAccelerateFactor * mul * AccelerateMultiplier
	m.modifiedBackwardAccelerateFactor = m.gear.WheelBackwardAccelerateFactor * mul * AccelerateMultiplier
	m.modifiedDecelerateFactor = m.gear.WheelDecelerateFactor * AccelerateMultiplier
}

// OnChangePreparing suspends the motor.
func (m *Motor) OnChangePreparing() {
	m.active = false
	m.disableEvents()
}

func (m *Motor) enableEvents() {
	if m.events.Active() {
		return
	}
	log.Printf("Motor: enable")
	m.events.Open()
	event.OnFire(&m.events, &m.rig.BaseGround.Edges().On, m.onBaseGroundOn)
	event.OnFire(&m.events, &m.rig.BaseGround.Edges().Off, m.onBaseGroundOff)
	event.On(&m.events, &m.rig.WheelGround.Edges().AnimatedOn, m.onWheelAnimatedGroundOn)
	event.OnFire(&m.events, &m.rig.WheelGround.Edges().AnimatedOff, m.onWheelAnimatedGroundOff)
}

func (m *Motor) disableEvents() {
	if !m.events.Active() {
		return
	}
	log.Printf("Motor: disable")
	m.events.Close()
}

// Update advances frame time: the cooldown between jumps decays here.
func (m *Motor) Update(dt float64) {
	if !m.active {
		return
	}
	m.betweenJumpsUnlockTime = common.Clamp(m.betweenJumpsUnlockTime-dt, 0, m.gear.JumpingDelay)
}

// FixedStep runs one physics step of the motor. A repeated call with the
// same step index is ignored.
func (m *Motor) FixedStep(step uint64, dt float64) {
	if !m.active {
		return
	}
	if m.stepped && step == m.lastStep {
		return
	}
	m.stepped = true
	m.lastStep = step
	m.time += dt

	m.updateOverheat()
	m.updateGearState(dt)

	if m.dumpIterations > 0 && !m.crashed {
		m.dumpVelocities()
	}

	if m.saltoActive {
		m.applySaltoRotation()
	} else if m.stabilize {
		m.stabilizeBody()
	}

	m.jumpHandle()
}

func sameSign(a, b float64) bool {
	return common.Sign(a) == common.Sign(b)
}

func (m *Motor) updateGearState(dt float64) {
	overheatModifier := common.Clamp(1-m.overheatPercent/100, 0, 2)
	relative := math.Abs(m.currentMotorRelativeSpeed)
	face := float64(m.faceDirection)

	var accelerate float64
	if !common.Approximately(m.horizontalDirection, 0) {
		m.maxModifiedForwardSpeed = m.gear.MaxForwardWheelSpeed * m.params.MaxForwardVelocityMultiplier()
		m.maxModifiedBackwardSpeed = m.gear.MaxBackwardWheelSpeed * m.params.MaxBackwardVelocityMultiplier()

		forward := sameSign(face, m.horizontalDirection)
		m.maxWheelSpeed = m.maxModifiedBackwardSpeed
		if forward {
			m.maxWheelSpeed = m.maxModifiedForwardSpeed
		}

		mul := m.params.VelocityAccelerateMultiplier() * overheatModifier * AccelerateMultiplier
		m.modifiedForwardAccelerateFactor = m.gear.WheelForwardAccelerateFactor * mul
		m.modifiedBackwardAccelerateFactor = m.gear.WheelBackwardAccelerateFactor * mul
		m.modifiedDecelerateFactor = m.gear.WheelDecelerateFactor * AccelerateMultiplier

		accelerate = m.modifiedBackwardAccelerateFactor * m.gear.WheelBackwardAccelerateFromSpeed.Evaluate(relative)
		if forward {
			accelerate = m.modifiedForwardAccelerateFactor * m.gear.WheelForwardAccelerateFromSpeed.Evaluate(relative)
		}
		if !sameSign(m.currentMotorRelativeSpeed, m.horizontalDirection) {
			accelerate = m.modifiedDecelerateFactor * m.gear.WheelDecelerateFromSpeed.Evaluate(relative)
		}
	} else {
		m.modifiedDecelerateFactor = m.gear.WheelDecelerateFactor * AccelerateMultiplier
		accelerate = m.modifiedDecelerateFactor * m.gear.WheelDecelerateFromSpeed.Evaluate(relative)
	}

	m.desiredSpeed = m.maxWheelSpeed * m.horizontalDirection
	if m.crashed {
		m.desiredSpeed = 0
		accelerate = m.modifiedDecelerateFactor
	}

	m.currentMotorAccelerate, m.currentMotorAbsoluteSpeed = approach(m.currentMotorAbsoluteSpeed, m.desiredSpeed, accelerate, dt)
	m.rig.Drive.SetSpeed(m.currentMotorAbsoluteSpeed)

	m.currentMotorForwardRelative = safeDiv(m.currentMotorAbsoluteSpeed, m.maxModifiedForwardSpeed)
	m.currentMotorBackwardRelative = safeDiv(m.currentMotorAbsoluteSpeed, m.maxModifiedBackwardSpeed)
	m.currentMotorRelativeSpeed = m.currentMotorBackwardRelative
	if sameSign(face, m.horizontalDirection) {
		m.currentMotorRelativeSpeed = m.currentMotorForwardRelative
	}

	m.modifiedTiltAccelerate = m.gear.TiltAccelerateFactor * m.params.TiltAccelerateMultiplier() * AccelerateMultiplier
	m.modifiedTiltDecelerate = m.gear.TiltDecelerateFactor * AccelerateMultiplier
	tiltAccelerate := m.modifiedTiltAccelerate
	if m.desiredSpeed == 0 {
		tiltAccelerate = m.modifiedTiltDecelerate
	}
	_, m.currentTiltSpeed = approach(m.currentTiltSpeed, m.desiredSpeed, tiltAccelerate, dt)

	m.relativePower = m.gear.TiltFromSpeed.Evaluate(safeDiv(math.Abs(m.currentTiltSpeed), m.maxWheelSpeed))
}

// approach moves current toward desired by rate*dt and snaps onto desired
// when the remaining delta changes sign. It returns the signed rate used
// and the new value.
func approach(current, desired, rate, dt float64) (float64, float64) {
	before := desired - current
	signed := common.Sign(before) * rate
	current += signed * dt
	after := desired - current
	if math.Abs(common.Sign(before)-common.Sign(after)) > Epsilon {
		current = desired
	}
	return signed, current
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// SetDirection sets the input direction, clamped to [-1, 1].
func (m *Motor) SetDirection(direction float64) {
	m.horizontalDirection = common.Clamp(direction, -1, 1)
}

func (m *Motor) jump(relativePower float64) {
	relativePower = common.Clamp(relativePower, MinimalRelativeJumpPower, MaximalRelativeJumpPower)
	if !m.CanJump() {
		return
	}
	m.initJump()

	face := float64(m.faceDirection)
	factor := m.gear.ForwardJumpForceFactor
	direction := JumpForward
	if common.Approximately(m.horizontalDirection, 0) {
		if !sameSign(m.currentMotorAbsoluteSpeed, face) {
			factor = m.gear.BackwardJumpForceFactor
			if !common.Approximately(m.currentMotorAbsoluteSpeed, 0) {
				direction = JumpBackward
			}
		}
	} else if !sameSign(m.currentMotorAccelerate, face) {
		factor = m.gear.BackwardJumpForceFactor
		direction = JumpBackward
	}

	force := factor * (m.rig.Wheel.Mass() + m.rig.Base.Mass())
	m.rig.Base.ApplyImpulse(cp.Vector{X: 0, Y: force * relativePower})

	m.JumpStart.Emit(direction)
	log.Printf("Motor: jump start power=%.3f accelerate=%.1f factor=%.2f direction=%s",
		relativePower, m.currentMotorAccelerate, factor, direction)
}

// HeightJump jumps toward targetHeight meters.
func (m *Motor) HeightJump(targetHeight float64) {
	base := m.BaseJumpHeight()
	if base <= 0 {
		return
	}
	relativeHeight := targetHeight * m.params.JumpHeightMultiplier() / base
	m.jump(math.Sqrt(math.Max(relativeHeight, 0)))
}

// PowerJump jumps with a relative power; 1 reaches the base jump height.
func (m *Motor) PowerJump(relativePower float64) {
	m.jump(relativePower * math.Sqrt(m.params.JumpHeightMultiplier()))
}

func (m *Motor) initJump() {
	m.baseVelocityPrevious = m.rig.Base.Velocity()
	m.jumpStartFlag = true
	m.jumpPeakFlag = false
	m.isJumping = true
	m.jumpingStartTime = m.time
	m.jumpingStartHeight = m.rig.Base.Position().Y
}

func (m *Motor) jumpHandle() {
	current := m.rig.Base.Velocity()
	turned := m.baseVelocityPrevious.Y > 0 && current.Y < 0
	m.baseVelocityPrevious = current

	if m.isJumping && m.jumpStartFlag && turned {
		m.jumpStartFlag = false
		m.jumpPeakFlag = true
		m.JumpPeak.Emit(m.rig.Base.Position().Y - m.jumpingStartHeight)
		return
	}

	if m.isJumping && m.jumpPeakFlag && m.rig.WheelGround.IsGrounded() {
		m.isJumping = false
		m.jumpPeakFlag = false
		m.jumpingStartTime = 0
		m.betweenJumpsUnlockTime = m.gear.JumpingDelay
		event.Fire(&m.JumpEnd)
	}
}

func (m *Motor) stabilizeBody() {
	stabilizedTilt := m.stabilizedTilt(m.currentTiltSpeed)
	rad := physics.Deg2Rad(stabilizedTilt)

	// Rotating up by the tilt gives (-sin, cos); its cross with up has
	// z = sin(tilt).
	axisZ := math.Sin(rad)
	m.tilt = math.Abs(stabilizedTilt) * common.Sign(axisZ) * -1

	torque := math.Abs(axisZ)*common.Sign(axisZ) - physics.Rad2Deg(m.rig.Base.AngularVelocity())
	torque *= StabilizePower
	m.rig.Base.ApplyAngularImpulse(torque * m.rig.Base.Mass())

	m.rig.Base.SetAngle(physics.Deg2Rad(-m.tilt))
	m.rig.Damper.SetAngle(physics.Deg2Rad(m.tilt))
	m.rig.Damper.SetAngularVelocity(0)
}

func (m *Motor) stabilizedTilt(speed float64) float64 {
	moveDirection := common.Sign(speed)
	moveSpeed := math.Abs(speed)
	face := float64(m.faceDirection)

	m.relativeTilt = m.gear.TiltFromSpeed.Evaluate(safeDiv(moveSpeed, m.maxWheelSpeed))
	m.relativeTiltSigned = moveDirection * face * m.relativeTilt
	m.desiredRelativeSpeed = moveDirection * face * safeDiv(moveSpeed, m.gear.MaxForwardWheelSpeed)

	maxTilt := m.gear.BackwardMaxTiltAngle
	if face == moveDirection {
		maxTilt = m.gear.ForwardMaxTiltAngle
	}
	tilt := maxTilt * m.relativeTilt * moveDirection * -1

	sign := common.Sign(m.desiredRelativeSpeed)
	m.relativeFeetTilt = sign * math.Abs(tilt/MaxAnimatorTilt)
	m.relativeCharacterTilt = sign * math.Abs(safeDiv(tilt, maxTilt))
	return tilt
}

// DumpVelocities arms the settle routine: for the next iterations steps the
// lateral velocity of base and damper and the wheel motor speed are cut to
// a tenth. The Stop state arms it; once crashed the dump never runs.
func (m *Motor) DumpVelocities() {
	m.dumpIterations = m.gear.VelocityDumpIterations
}

func (m *Motor) dumpVelocities() {
	m.dumpIterations--
	if m.dumpIterations < 0 {
		m.dumpIterations = 0
	}
	for _, b := range []physics.Body{m.rig.Base, m.rig.Damper} {
		v := b.Velocity()
		v.X *= dumpFactor
		b.SetVelocity(v)
	}
	m.rig.Drive.SetSpeed(m.rig.Drive.Speed() * dumpFactor)
}

func (m *Motor) ToggleFlipDirection() {
	if m.faceDirection == 1 {
		m.faceDirection = -1
	} else {
		m.faceDirection = 1
	}
	m.FaceDirectionChanged.Emit(m.faceDirection)
}

func (m *Motor) EnableTransformLinks() { m.rig.Links.EnableTransformLinks() }
func (m *Motor) DisableTransformLinks() { m.rig.Links.DisableTransformLinks() }

func (m *Motor) EnableMonoSystemCollisionDetection() {
	m.rig.Links.EnableMonoSystemCollisionDetection()
}

func (m *Motor) DisableMonoSystemCollisionDetection() {
	m.rig.Links.DisableMonoSystemCollisionDetection()
}

// Crash stops the drive for good: desired speed drops to zero, the body is
// pitched and the rider is unlinked.
func (m *Motor) Crash() {
	if m.crashed {
		return
	}
	m.crashed = true
	m.stabilize = false
	m.saltoActive = false
	m.doCrashPitch()
	m.SetDirection(0)
	m.DisableTransformLinks()
	log.Printf("Motor: crashed")
}

func (m *Motor) doCrashPitch() {
	power := -crashPitchFactor * (m.rig.Wheel.Mass() + m.rig.Base.Mass()) * m.horizontalDirection
	m.rig.Base.ApplyAngularImpulse(power)
}

func (m *Motor) onBaseGroundOn() {
	if m.crashed {
		return
	}
	if !m.rig.WheelGround.IsGrounded() {
		m.stabilize = false
	}
}

func (m *Motor) onBaseGroundOff() {
	if m.crashed {
		return
	}
	m.stabilize = true
}

func (m *Motor) onWheelAnimatedGroundOn(b physics.Body) {
	if m.crashed {
		return
	}
	m.animatedGround = b
}

func (m *Motor) onWheelAnimatedGroundOff() {
	if m.crashed {
		return
	}
	m.animatedGround = nil
}

func (m *Motor) updateOverheat() {
	normal, ok := m.rig.WheelGround.AverageNormal()
	if !ok {
		return
	}
	// Input pushes along -x when moving right.
	input := -m.horizontalDirection

	m.overheatPercent = 0
	if common.Approximately(input, 0) || common.Approximately(normal.X, 0) {
		return
	}
	dot := input * normal.X
	if math.IsNaN(dot) {
		dot = 0
	}
	percent := dot * OverheatMultiplier * m.params.OverloadSpeedMultiplier()
	percent += dot * dot * OverheatMultiplier * m.params.OverloadAngleMultiplier()
	m.overheatPercent = common.Clamp(percent, 0, 100)
}

// FootStepHeightRelative reads the rig's foot step sensor, 0 without one.
func (m *Motor) FootStepHeightRelative() float64 {
	if m.rig == nil || m.rig.FootStep == nil {
		return 0
	}
	return m.rig.FootStep.FootStepHeightRelative()
}
