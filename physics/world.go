package physics

import (
	"log"

	"github.com/jakecoffman/cp"
)

const (
	collisionTypeGround cp.CollisionType = iota + 1
	collisionTypeObstacle
	collisionTypeCrashArea
	collisionTypePart
)

const (
	categoryGround uint = 1 << iota
	categoryVehicle
	categoryObstacle
	categoryArea
	categoryProbe
)

const (
	noGroup       uint = 0
	allCategories uint = ^uint(0)
	// vehicleGroup keeps the rig's own shapes from colliding with each
	// other.
	vehicleGroup uint = 1
)

var (
	groundFilter   = cp.NewShapeFilter(noGroup, categoryGround, allCategories)
	obstacleFilter = cp.NewShapeFilter(noGroup, categoryObstacle, allCategories)
	areaFilter     = cp.NewShapeFilter(noGroup, categoryArea, categoryVehicle)
	vehicleFilter  = cp.NewShapeFilter(vehicleGroup, categoryVehicle, categoryGround|categoryObstacle|categoryArea)
	probeFilter    = cp.NewShapeFilter(noGroup, categoryProbe, categoryGround)
)

// World owns the Chipmunk space and everything stepped with it.
type World struct {
	space    *cp.Space
	level    *Level
	vehicles []*Vehicle
	elapsed  float64
}

func NewWorld(gravity float64) *World {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: gravity})

	w := &World{space: space}
	w.ensureHandlers()
	return w
}

func (w *World) Space() *cp.Space {
	if w == nil {
		return nil
	}
	return w.space
}

func (w *World) Level() *Level { return w.level }

// Elapsed is the simulated time in seconds.
func (w *World) Elapsed() float64 { return w.elapsed }

func (w *World) ensureHandlers() {
	obstacles := w.space.NewCollisionHandler(collisionTypePart, collisionTypeObstacle)
	obstacles.UserData = w
	obstacles.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		a, b := arb.Shapes()
		part, ok := a.UserData.(*Part)
		if !ok || part.Collisions == nil {
			return true
		}
		obstacle, _ := b.UserData.(*Obstacle)

		point := part.Body.Position()
		if set := arb.ContactPointSet(); set.Count > 0 {
			point = set.Points[0].PointB
		}
		// Arbiter normal points from the part into the obstacle.
		part.Collisions.enter(obstacle, point, arb.Normal().Neg())
		return true
	}
	obstacles.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
		a, b := arb.Shapes()
		part, ok := a.UserData.(*Part)
		if !ok || part.Collisions == nil {
			return
		}
		obstacle, _ := b.UserData.(*Obstacle)
		part.Collisions.exit(obstacle)
	}

	areas := w.space.NewCollisionHandler(collisionTypePart, collisionTypeCrashArea)
	areas.UserData = w
	areas.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		a, b := arb.Shapes()
		part, ok := a.UserData.(*Part)
		if !ok {
			return false
		}
		if area, ok := b.UserData.(*CrashArea); ok {
			area.enter(part)
		}
		return false
	}
}

// SetLevel builds level geometry into the space. A world holds one level.
func (w *World) SetLevel(level *Level) {
	if w.level != nil {
		panic("physics world: level already set")
	}
	level.build(w.space)
	w.level = level
	log.Printf("PhysicsWorld: level %q built with %d obstacles", level.Name, len(level.Obstacles))
}

// AddVehicle puts a vehicle's bodies, shapes and joints into the space.
func (w *World) AddVehicle(v *Vehicle) {
	v.build(w.space)
	w.vehicles = append(w.vehicles, v)
}

// Step advances the simulation by dt. Contacts raised during the step are
// delivered through the detectors' signals before Step returns, and every
// sensor is refreshed afterwards.
func (w *World) Step(dt float64) {
	if w == nil || dt <= 0 {
		return
	}

	if w.level != nil {
		w.level.update(dt)
	}
	for _, v := range w.vehicles {
		v.beforeStep(dt)
	}

	w.space.Step(dt)
	w.elapsed += dt

	for _, v := range w.vehicles {
		v.afterStep(dt)
	}
}
