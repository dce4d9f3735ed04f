package physics

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/monowheel/event"
)

// GroundSensor is what the motor and crash detector read from a ground
// checker.
type GroundSensor interface {
	IsGrounded() bool
	// AverageNormal returns the mean surface normal of the current ground
	// contacts. ok is false when averaging is disabled.
	AverageNormal() (n cp.Vector, ok bool)
	Edges() *GroundEdges
}

// GroundEdges are raised when a checker's grounded state changes.
type GroundEdges struct {
	On          event.Trigger
	Off         event.Trigger
	AnimatedOn  event.Signal[Body]
	AnimatedOff event.Trigger
}

// Surface is attached as UserData to every ground shape.
type Surface struct {
	// Animated marks ground carried by a kinematic body.
	Animated bool
	Body     *RigidBody
}

// GroundChecker senses ground contacts of one body from its arbiters after
// every step.
type GroundChecker struct {
	name       string
	minNormalY float64
	averaging  bool

	grounded bool
	normal   cp.Vector
	count    int
	animated *RigidBody

	edges GroundEdges
}

func NewGroundChecker(name string, minNormalY float64) *GroundChecker {
	return &GroundChecker{name: name, minNormalY: minNormalY, averaging: true}
}

func (g *GroundChecker) Name() string { return g.name }

func (g *GroundChecker) IsGrounded() bool {
	return g != nil && g.grounded
}

func (g *GroundChecker) Edges() *GroundEdges { return &g.edges }

func (g *GroundChecker) EnableAverageNormal() { g.averaging = true }
func (g *GroundChecker) DisableAverageNormal() { g.averaging = false }

func (g *GroundChecker) AverageNormal() (cp.Vector, bool) {
	if !g.averaging {
		return cp.Vector{}, false
	}
	if g.count == 0 {
		return cp.Vector{}, true
	}
	return g.normal.Mult(1 / float64(g.count)), true
}

// ContactCount is the number of ground contacts seen in the last step.
func (g *GroundChecker) ContactCount() int { return g.count }

// AnimatedGround is the kinematic ground body under the checker, if any.
func (g *GroundChecker) AnimatedGround() *RigidBody { return g.animated }

// Sense rebuilds the contact state from body's arbiters and raises edges.
func (g *GroundChecker) Sense(body *cp.Body) {
	var sum cp.Vector
	count := 0
	var animated *RigidBody

	body.EachArbiter(func(arb *cp.Arbiter) {
		_, other := arb.Shapes()
		surface, ok := other.UserData.(*Surface)
		if !ok {
			return
		}
		// The arbiter normal points from body into the ground.
		n := arb.Normal().Neg()
		if n.Y < g.minNormalY {
			return
		}
		sum = sum.Add(n)
		count++
		if surface.Animated {
			animated = surface.Body
		}
	})

	g.apply(sum, count, animated)
}

func (g *GroundChecker) apply(sum cp.Vector, count int, animated *RigidBody) {
	g.normal = sum
	g.count = count

	grounded := count > 0
	if grounded != g.grounded {
		g.grounded = grounded
		if grounded {
			event.Fire(&g.edges.On)
		} else {
			event.Fire(&g.edges.Off)
		}
	}

	if animated != g.animated {
		prev := g.animated
		g.animated = animated
		if prev != nil {
			event.Fire(&g.edges.AnimatedOff)
		}
		if animated != nil {
			g.edges.AnimatedOn.Emit(animated)
		}
	}
}
