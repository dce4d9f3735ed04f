package physics

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
)

func TestWheelMotorClampsImpulse(t *testing.T) {
	wheel := NewRigidBody("wheel", cp.NewBody(1, 2))
	chassis := NewRigidBody("damper", cp.NewBody(1, 2))

	m := NewWheelMotor(wheel, chassis, 10)
	m.SetSpeed(360)

	// Effective moment is 1, target relative speed is -2*pi.
	j := m.impulse(0.01)
	assert.InDelta(t, -0.1, j, 1e-9)

	m.maxForce = 1e6
	j = m.impulse(0.01)
	assert.InDelta(t, -Deg2Rad(360), j, 1e-9)

	m.apply(0.01)
	assert.InDelta(t, -Deg2Rad(360), wheel.AngularVelocity()-chassis.AngularVelocity(), 1e-9)

	m.Disable()
	m.SetSpeed(0)
	m.apply(0.01)
	assert.InDelta(t, -Deg2Rad(360), wheel.AngularVelocity()-chassis.AngularVelocity(), 1e-9)
}

func TestStopChecker(t *testing.T) {
	body := newTestBody("base")
	wheel := newTestBody("wheel")
	s := NewStopChecker(body, wheel, 0.1, 0.1, 0.3)

	body.SetVelocity(cp.Vector{X: 1})
	s.Update(0.2)
	if s.IsStopped() {
		t.Fatalf("moving body reported stopped")
	}

	body.SetVelocity(cp.Vector{})
	s.Update(0.2)
	if s.IsStopped() {
		t.Fatalf("stopped before the duration elapsed")
	}
	s.Update(0.2)
	if !s.IsStopped() {
		t.Fatalf("expected stopped after the duration")
	}

	wheel.SetAngularVelocity(1)
	s.Update(0.01)
	if s.IsStopped() {
		t.Fatalf("spinning wheel must reset the stop")
	}
}
