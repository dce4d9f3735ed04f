package physics

import (
	"log"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/monowheel/common"
	"github.com/milk9111/monowheel/prefabs"
)

const (
	// DefaultSuspensionReaction is the spring force of the suspension at
	// rest on flat ground.
	DefaultSuspensionReaction = 68.6
	// DefaultStableBetweenFeetDistance seeds the calculator before the
	// first probe hit.
	DefaultStableBetweenFeetDistance = 0.112941
	suspensionReactionMultiplier     = 0.001
)

// DistanceProbe casts a ray straight down from a point fixed on a body and
// remembers the distance to the ground it hits.
type DistanceProbe struct {
	body     *RigidBody
	offset   cp.Vector
	length   float64
	interval float64
	accurate bool
	enabled  bool

	elapsed float64

	LastDistance             float64
	LastProjectionPoint      cp.Vector
	IsGroundDetected         bool
	IsAnimatedGroundDetected bool
}

func NewDistanceProbe(body *RigidBody, offset cp.Vector, length, interval float64) *DistanceProbe {
	return &DistanceProbe{body: body, offset: offset, length: length, interval: interval, enabled: true}
}

func (p *DistanceProbe) EnableAccuracyCalculation() { p.accurate = true }
func (p *DistanceProbe) DisableAccuracyCalculation() { p.accurate = false }

func (p *DistanceProbe) Enable() {
	p.enabled = true
	p.elapsed = 0
}

func (p *DistanceProbe) Disable() { p.enabled = false }

// Update queries the space every interval, or every call while accuracy
// calculation is enabled.
func (p *DistanceProbe) Update(space *cp.Space, dt float64) {
	if !p.enabled {
		return
	}
	p.elapsed += dt
	if p.elapsed < p.interval && !p.accurate {
		return
	}
	p.elapsed = 0
	p.IsGroundDetected = p.query(space)
}

func (p *DistanceProbe) query(space *cp.Space) bool {
	p.IsAnimatedGroundDetected = false

	start := p.body.LocalToWorld(p.offset)
	end := start.Add(cp.Vector{X: 0, Y: -p.length})
	hit := space.SegmentQueryFirst(start, end, 0, probeFilter)
	if hit.Shape == nil {
		return false
	}
	surface, ok := hit.Shape.UserData.(*Surface)
	if !ok {
		return false
	}
	p.IsAnimatedGroundDetected = surface.Animated
	p.LastProjectionPoint = hit.Point
	p.LastDistance = start.Y - hit.Point.Y
	return true
}

// GroundDistance turns the foot probes into the rider's relative foot step
// height.
type GroundDistance struct {
	zero  *DistanceProbe
	feet  []*DistanceProbe
	react func() float64

	useReactionOffset  bool
	feetMultiplier     float64
	reactionMultiplier float64

	lastRelative float64
	lastStable   float64
}

// NewGroundDistance builds the calculator. relativeSize and relativeStrength
// place the current gear between its bounds; reaction reports the current
// suspension spring force and may be nil.
func NewGroundDistance(spec prefabs.GroundDistanceSpec, zero *DistanceProbe, feet []*DistanceProbe, reaction func() float64, relativeSize, relativeStrength float64) *GroundDistance {
	feetBounds := spec.FeetAverageDistanceMultiplierBounds
	reactBounds := spec.SuspensionDamperReactionBounds
	g := &GroundDistance{
		zero:               zero,
		feet:               feet,
		react:              reaction,
		useReactionOffset:  spec.UseReactionOffset,
		feetMultiplier:     feetBounds.Min + (feetBounds.Max-feetBounds.Min)*relativeSize,
		reactionMultiplier: reactBounds.Max - (reactBounds.Max-reactBounds.Min)*relativeStrength,
		lastStable:         DefaultStableBetweenFeetDistance,
	}
	if spec.AccuracyCalculation {
		g.EnableAccuracyCalculation()
	}
	return g
}

func (g *GroundDistance) probes() []*DistanceProbe {
	all := make([]*DistanceProbe, 0, len(g.feet)+1)
	if g.zero != nil {
		all = append(all, g.zero)
	}
	return append(all, g.feet...)
}

func (g *GroundDistance) EnableAccuracyCalculation() {
	for _, p := range g.probes() {
		p.EnableAccuracyCalculation()
	}
}

func (g *GroundDistance) DisableAccuracyCalculation() {
	for _, p := range g.probes() {
		p.DisableAccuracyCalculation()
	}
}

func (g *GroundDistance) EnableDistanceProviders() {
	for _, p := range g.probes() {
		p.Enable()
	}
}

func (g *GroundDistance) DisableDistanceProviders() {
	for _, p := range g.probes() {
		p.Disable()
	}
}

func (g *GroundDistance) update(space *cp.Space, dt float64) {
	for _, p := range g.probes() {
		p.Update(space, dt)
	}
}

// GroundedFootPoints counts foot probes that currently see ground.
func (g *GroundDistance) GroundedFootPoints() int {
	count := 0
	for _, p := range g.feet {
		if p.IsGroundDetected {
			count++
		}
	}
	return count
}

// FootAverageDistance averages the last distance of every foot probe. ok is
// false when there are no foot probes.
func (g *GroundDistance) FootAverageDistance() (avg float64, ok bool) {
	if len(g.feet) == 0 {
		log.Printf("GroundDistance: no distance providers configured")
		return 0, false
	}
	sum := 0.0
	for _, p := range g.feet {
		sum += p.LastDistance
	}
	return sum / float64(len(g.feet)), true
}

// BetweenFeetDistance is the gap between the zero point and the feet.
func (g *GroundDistance) BetweenFeetDistance() (float64, bool) {
	avg, ok := g.FootAverageDistance()
	if !ok || g.zero == nil {
		return 0, false
	}
	d := g.zero.LastDistance - avg
	if d < 0 {
		d = -d
	}
	return d, true
}

// FootStepHeightRelative is the feet height in [0, 1], corrected by the
// suspension reaction. Over animated ground the last stable distance is
// used. Without probes the previous value is returned.
func (g *GroundDistance) FootStepHeightRelative() float64 {
	reaction := 0.0
	if g.useReactionOffset && g.react != nil {
		reaction = g.react() - DefaultSuspensionReaction
	}

	avg, ok := g.FootAverageDistance()
	if !ok {
		return g.lastRelative
	}

	animated := g.zero != nil && g.zero.IsAnimatedGroundDetected
	if !animated {
		g.lastStable = avg
	}
	distance := avg
	if animated {
		distance = g.lastStable
	}
	g.lastRelative = common.Clamp01(distance*g.feetMultiplier - reaction*suspensionReactionMultiplier*g.reactionMultiplier)
	return g.lastRelative
}
