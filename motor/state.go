package motor

import (
	"github.com/milk9111/monowheel/params"
	"github.com/milk9111/monowheel/physics"
)

func (m *Motor) IsActive() bool { return m.active }
func (m *Motor) IsCrashed() bool { return m.crashed }

func (m *Motor) IsStabilizeActive() bool { return m.stabilize }

func (m *Motor) SetStabilizeActive(active bool) {
	if m.crashed && active {
		return
	}
	m.stabilize = active
}

func (m *Motor) FaceDirection() int { return m.faceDirection }

func (m *Motor) HorizontalDirection() float64 { return m.horizontalDirection }

// CanJump holds on the ground, outside a jump, once the cooldown has run
// out.
func (m *Motor) CanJump() bool {
	return m.rig != nil && m.rig.WheelGround.IsGrounded() && !m.isJumping && m.betweenJumpsUnlockTime < Epsilon
}

// CanSalto holds in a jump once BeforeSaltoLockTime has passed since launch.
func (m *Motor) CanSalto() bool {
	return m.isJumping && m.time-m.jumpingStartTime > m.gear.BeforeSaltoLockTime
}

func (m *Motor) IsJumping() bool { return m.isJumping }

func (m *Motor) IsStopped() bool {
	return m.rig != nil && m.rig.Stop.IsStopped()
}

func (m *Motor) BaseJumpHeight() float64 {
	return m.gear.BaseJumpHeight * m.params.JumpHeightMultiplier()
}

func (m *Motor) BetweenJumpsUnlockTime() float64 { return m.betweenJumpsUnlockTime }

func (m *Motor) Tilt() float64 { return m.tilt }
func (m *Motor) RelativeTilt() float64 { return m.relativeTilt }
func (m *Motor) RelativePower() float64 { return m.relativePower }
func (m *Motor) RelativeTiltSigned() float64 { return m.relativeTiltSigned }
func (m *Motor) RelativeFeetTilt() float64 { return m.relativeFeetTilt }
func (m *Motor) RelativeCharacterTilt() float64 { return m.relativeCharacterTilt }
func (m *Motor) DesiredRelativeSpeed() float64 { return m.desiredRelativeSpeed }
func (m *Motor) DesiredSpeed() float64 { return m.desiredSpeed }
func (m *Motor) CurrentTiltSpeed() float64 { return m.currentTiltSpeed }

func (m *Motor) ModifiedTiltAccelerate() float64 { return m.modifiedTiltAccelerate }
func (m *Motor) ModifiedTiltDecelerate() float64 { return m.modifiedTiltDecelerate }

func (m *Motor) MaxModifiedForwardSpeed() float64 { return m.maxModifiedForwardSpeed }
func (m *Motor) MaxModifiedBackwardSpeed() float64 { return m.maxModifiedBackwardSpeed }

func (m *Motor) CurrentMotorForwardRelativeSpeed() float64 {
	return m.currentMotorForwardRelative
}

func (m *Motor) CurrentMotorBackwardRelativeSpeed() float64 {
	return m.currentMotorBackwardRelative
}

func (m *Motor) CurrentMotorRelativeSpeed() float64 { return m.currentMotorRelativeSpeed }
func (m *Motor) CurrentMotorAbsoluteSpeed() float64 { return m.currentMotorAbsoluteSpeed }
func (m *Motor) CurrentMotorAccelerate() float64 { return m.currentMotorAccelerate }

func (m *Motor) ModifiedMotorForwardAccelerateFactor() float64 {
	return m.modifiedForwardAccelerateFactor
}

func (m *Motor) ModifiedMotorBackwardAccelerateFactor() float64 {
	return m.modifiedBackwardAccelerateFactor
}

func (m *Motor) ModifiedMotorDecelerateFactor() float64 { return m.modifiedDecelerateFactor }

func (m *Motor) OverheatPercent() float64 { return m.overheatPercent }

// AnimatedGround is the moving ground under the wheel, or nil.
func (m *Motor) AnimatedGround() physics.Body { return m.animatedGround }

// Rig returns the bound rig, nil before OnChangeWheelHandle.
func (m *Motor) Rig() *Rig { return m.rig }

// BeginSaltoRotation hands the base and damper orientation to the salto:
// stabilization is suspended and SetSaltoRotation drives the angle from the
// current base orientation.
func (m *Motor) BeginSaltoRotation() {
	if m.crashed || m.rig == nil {
		return
	}
	m.saltoActive = true
	m.saltoAngle = 0
	m.saltoBase = m.rig.Base.Angle()
	m.stabilize = false
}

// SetSaltoRotation sets the salto angle in radians relative to where the
// rotation began.
func (m *Motor) SetSaltoRotation(angle float64) { m.saltoAngle = angle }

// EndSaltoRotation releases the bodies; stabilization stays off until
// SetStabilizeActive.
func (m *Motor) EndSaltoRotation() { m.saltoActive = false }

func (m *Motor) IsSaltoRotating() bool { return m.saltoActive }

func (m *Motor) applySaltoRotation() {
	angle := m.saltoBase + m.saltoAngle
	m.rig.Base.SetAngle(angle)
	m.rig.Base.SetAngularVelocity(0)
	m.rig.Damper.SetAngle(angle)
	m.rig.Damper.SetAngularVelocity(0)
}

func (m *Motor) Parameters() *params.Parameters { return m.params }
