package physics

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/monowheel/event"
	"github.com/milk9111/monowheel/prefabs"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Obstacle is a solid box the rig can crash into.
type Obstacle struct {
	Box         cp.BB
	AlwaysCrash bool
	shape       *cp.Shape
}

// CrashArea is a sensor volume that forces a crash on entry.
type CrashArea struct {
	Box     cp.BB
	Entered event.Signal[*Part]
	shape   *cp.Shape
}

func (a *CrashArea) enter(part *Part) {
	a.Entered.Emit(part)
}

// Platform is animated ground: a kinematic box that travels to an offset
// and back.
type Platform struct {
	Body   *RigidBody
	Width  float64
	Height float64

	origin   cp.Vector
	travel   cp.Vector
	tween    *gween.Tween
	outbound bool
	progress float32
}

func newPlatform(spec prefabs.PlatformSpec) *Platform {
	duration := spec.Duration
	if duration <= 0 {
		duration = 1
	}
	return &Platform{
		Width:    spec.Width,
		Height:   spec.Height,
		origin:   cp.Vector{X: spec.X, Y: spec.Y},
		travel:   cp.Vector{X: spec.Travel.X, Y: spec.Travel.Y},
		tween:    gween.New(0, 1, float32(duration), ease.InOutCubic),
		outbound: true,
	}
}

// update drives the kinematic body toward the tweened position so contacts
// see a real velocity.
func (p *Platform) update(dt float64) {
	value, done := p.tween.Update(float32(dt))
	if !p.outbound {
		value = 1 - value
	}
	if done {
		p.tween.Reset()
		p.outbound = !p.outbound
	}
	p.progress = value

	target := p.origin.Add(p.travel.Mult(float64(value)))
	body := p.Body.CP()
	body.SetVelocityVector(target.Sub(body.Position()).Mult(1 / dt))
}

// Progress is the platform's position along its travel in [0, 1].
func (p *Platform) Progress() float64 { return float64(p.progress) }

// Level is static ground, obstacles, crash areas and moving platforms.
type Level struct {
	Name       string
	Friction   float64
	Ground     []cp.Vector
	Obstacles  []*Obstacle
	CrashAreas []*CrashArea
	Platforms  []*Platform
}

func NewLevel(spec *prefabs.LevelSpec) *Level {
	l := &Level{Name: spec.Name, Friction: spec.Friction}
	for _, p := range spec.Ground {
		l.Ground = append(l.Ground, cp.Vector{X: p.X, Y: p.Y})
	}
	for _, o := range spec.Obstacles {
		l.Obstacles = append(l.Obstacles, &Obstacle{Box: boxBB(o.BoxSpec), AlwaysCrash: o.AlwaysCrash})
	}
	for _, a := range spec.CrashAreas {
		l.CrashAreas = append(l.CrashAreas, &CrashArea{Box: boxBB(a)})
	}
	for _, p := range spec.Platforms {
		l.Platforms = append(l.Platforms, newPlatform(p))
	}
	return l
}

// boxBB converts a box centered on (X, Y).
func boxBB(b prefabs.BoxSpec) cp.BB {
	return cp.BB{L: b.X - b.Width/2, B: b.Y - b.Height/2, R: b.X + b.Width/2, T: b.Y + b.Height/2}
}

func (l *Level) build(space *cp.Space) {
	static := space.StaticBody
	for i := 1; i < len(l.Ground); i++ {
		seg := cp.NewSegment(static, l.Ground[i-1], l.Ground[i], 0.05)
		seg.SetFriction(l.Friction)
		seg.SetCollisionType(collisionTypeGround)
		seg.SetFilter(groundFilter)
		seg.UserData = &Surface{}
		space.AddShape(seg)
	}

	for _, o := range l.Obstacles {
		shape := cp.NewBox2(static, o.Box, 0)
		shape.SetFriction(l.Friction)
		shape.SetCollisionType(collisionTypeObstacle)
		shape.SetFilter(obstacleFilter)
		shape.UserData = o
		space.AddShape(shape)
		o.shape = shape
	}

	for _, a := range l.CrashAreas {
		shape := cp.NewBox2(static, a.Box, 0)
		shape.SetSensor(true)
		shape.SetCollisionType(collisionTypeCrashArea)
		shape.SetFilter(areaFilter)
		shape.UserData = a
		space.AddShape(shape)
		a.shape = shape
	}

	for i, p := range l.Platforms {
		body := cp.NewKinematicBody()
		body.SetPosition(p.origin)
		space.AddBody(body)
		p.Body = NewRigidBody(fmt.Sprintf("platform%d", i), body)

		shape := cp.NewBox(body, p.Width, p.Height, 0)
		shape.SetFriction(l.Friction)
		shape.SetCollisionType(collisionTypeGround)
		shape.SetFilter(groundFilter)
		shape.UserData = &Surface{Animated: true, Body: p.Body}
		space.AddShape(shape)
	}
}

func (l *Level) update(dt float64) {
	for _, p := range l.Platforms {
		p.update(dt)
	}
}
