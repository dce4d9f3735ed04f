package physics

import "github.com/jakecoffman/cp"

// Part is one rigid piece of the rig. Shapes of a part carry the part as
// UserData so contact callbacks can find it.
type Part struct {
	Name       string
	Body       *RigidBody
	Collisions *CollisionDetector
	shapes     []*cp.Shape
}

func newPart(name string, body *cp.Body, alwaysCrash, detect bool) *Part {
	p := &Part{Name: name, Body: NewRigidBody(name, body)}
	if detect {
		p.Collisions = NewCollisionDetector(p.Body, alwaysCrash)
	}
	return p
}

func (p *Part) addShape(shape *cp.Shape, friction float64) {
	shape.SetFriction(friction)
	shape.SetCollisionType(collisionTypePart)
	shape.SetFilter(vehicleFilter)
	shape.UserData = p
	p.shapes = append(p.shapes, shape)
}

func (p *Part) Shapes() []*cp.Shape { return p.shapes }

// WheelMotor drives the wheel's angular velocity relative to the chassis
// toward a target speed, limited by a maximum torque. Speeds are in degrees
// per second; positive speed rolls the wheel toward +x.
type WheelMotor struct {
	wheel    *RigidBody
	chassis  *RigidBody
	speed    float64
	maxForce float64
	enabled  bool
}

func NewWheelMotor(wheel, chassis *RigidBody, maxForce float64) *WheelMotor {
	return &WheelMotor{wheel: wheel, chassis: chassis, maxForce: maxForce, enabled: true}
}

func (m *WheelMotor) Speed() float64 { return m.speed }

func (m *WheelMotor) SetSpeed(degPerSecond float64) { m.speed = degPerSecond }

func (m *WheelMotor) Enable() { m.enabled = true }
func (m *WheelMotor) Disable() { m.enabled = false }

// impulse is the angular impulse applied to the wheel for one step; the
// chassis receives the opposite.
func (m *WheelMotor) impulse(dt float64) float64 {
	wheelMoment := m.wheel.CP().Moment()
	chassisMoment := m.chassis.CP().Moment()
	if wheelMoment <= 0 || chassisMoment <= 0 {
		return 0
	}
	effective := 1 / (1/wheelMoment + 1/chassisMoment)

	relative := m.wheel.AngularVelocity() - m.chassis.AngularVelocity()
	target := -Deg2Rad(m.speed)
	j := (target - relative) * effective

	limit := m.maxForce * dt
	switch {
	case j > limit:
		j = limit
	case j < -limit:
		j = -limit
	}
	return j
}

func (m *WheelMotor) apply(dt float64) {
	if !m.enabled {
		return
	}
	j := m.impulse(dt)
	m.wheel.ApplyAngularImpulse(j)
	m.chassis.ApplyAngularImpulse(-j)
}

// StopChecker reports a body as stopped once its linear and wheel angular
// speeds stay under thresholds for a duration.
type StopChecker struct {
	body     Body
	wheel    Body
	velocity float64
	angular  float64
	duration float64

	still   float64
	stopped bool
}

func NewStopChecker(body, wheel Body, velocity, angular, duration float64) *StopChecker {
	return &StopChecker{body: body, wheel: wheel, velocity: velocity, angular: angular, duration: duration}
}

func (s *StopChecker) IsStopped() bool { return s != nil && s.stopped }

func (s *StopChecker) Update(dt float64) {
	slow := s.body.Velocity().Length() < s.velocity
	if s.wheel != nil {
		w := s.wheel.AngularVelocity()
		slow = slow && w < s.angular && w > -s.angular
	}
	if slow {
		s.still += dt
	} else {
		s.still = 0
	}
	s.stopped = s.still >= s.duration
}
