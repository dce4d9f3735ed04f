// Package physicstest provides in-memory stand-ins for the physics sensors
// and bodies so gameplay code can be stepped without a Chipmunk space.
package physicstest

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/monowheel/event"
	"github.com/milk9111/monowheel/physics"
)

// Body is a point mass with explicit state. Impulses change velocity
// immediately; nothing integrates position unless Integrate is called.
type Body struct {
	Name     string
	Pos      cp.Vector
	Vel      cp.Vector
	Rotation float64
	Spin     float64
	BodyMass float64
	Moment   float64

	Impulses        []cp.Vector
	AngularImpulses []float64
}

func NewBody(name string, mass float64) *Body {
	return &Body{Name: name, BodyMass: mass, Moment: mass}
}

func (b *Body) String() string { return b.Name }
func (b *Body) Position() cp.Vector { return b.Pos }
func (b *Body) Velocity() cp.Vector { return b.Vel }
func (b *Body) SetVelocity(v cp.Vector) { b.Vel = v }
func (b *Body) AngularVelocity() float64 { return b.Spin }
func (b *Body) SetAngularVelocity(w float64) { b.Spin = w }
func (b *Body) Angle() float64 { return b.Rotation }
func (b *Body) SetAngle(a float64) { b.Rotation = a }
func (b *Body) Mass() float64 { return b.BodyMass }

func (b *Body) ApplyImpulse(j cp.Vector) {
	b.Impulses = append(b.Impulses, j)
	b.Vel = b.Vel.Add(j.Mult(1 / b.BodyMass))
}

func (b *Body) ApplyAngularImpulse(j float64) {
	b.AngularImpulses = append(b.AngularImpulses, j)
	b.Spin += j / b.Moment
}

// Integrate moves the body by its velocity over dt.
func (b *Body) Integrate(dt float64) {
	b.Pos = b.Pos.Add(b.Vel.Mult(dt))
	b.Rotation += b.Spin * dt
}

// Ground is a scripted ground sensor. Set raises the matching edge.
type Ground struct {
	Grounded  bool
	Normal    cp.Vector
	Averaging bool
	edges     physics.GroundEdges
}

func NewGround(grounded bool) *Ground {
	return &Ground{Grounded: grounded, Normal: cp.Vector{Y: 1}, Averaging: true}
}

func (g *Ground) IsGrounded() bool { return g.Grounded }

func (g *Ground) AverageNormal() (cp.Vector, bool) {
	return g.Normal, g.Averaging
}

func (g *Ground) Edges() *physics.GroundEdges { return &g.edges }

func (g *Ground) Set(grounded bool) {
	if grounded == g.Grounded {
		return
	}
	g.Grounded = grounded
	if grounded {
		event.Fire(&g.edges.On)
	} else {
		event.Fire(&g.edges.Off)
	}
}

// Drive records the wheel motor speed.
type Drive struct {
	Value float64
}

func (d *Drive) Speed() float64 { return d.Value }
func (d *Drive) SetSpeed(speed float64) { d.Value = speed }

type Stop struct {
	Stopped bool
}

func (s *Stop) IsStopped() bool { return s.Stopped }

type FootStep struct {
	Height float64
}

func (f *FootStep) FootStepHeightRelative() float64 { return f.Height }

// Links records link and collision toggles.
type Links struct {
	Linked    bool
	Detecting bool
}

func NewLinks() *Links {
	return &Links{Linked: true, Detecting: true}
}

func (l *Links) EnableTransformLinks() { l.Linked = true }
func (l *Links) DisableTransformLinks() { l.Linked = false }
func (l *Links) EnableMonoSystemCollisionDetection() { l.Detecting = true }
func (l *Links) DisableMonoSystemCollisionDetection() { l.Detecting = false }
