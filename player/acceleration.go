package player

import (
	"github.com/milk9111/monowheel/common"
	"github.com/milk9111/monowheel/physics"
)

// AccelerationProvider measures the vertical acceleration of a body,
// normalized against max and clamped to [-1, 1].
type AccelerationProvider struct {
	body physics.Body
	max  float64

	previous     float64
	primed       bool
	acceleration float64
}

func NewAccelerationProvider(body physics.Body, max float64) *AccelerationProvider {
	return &AccelerationProvider{body: body, max: max}
}

func (a *AccelerationProvider) Acceleration() float64 { return a.acceleration }

func (a *AccelerationProvider) Update(dt float64) {
	if a == nil || a.body == nil {
		return
	}
	vy := a.body.Velocity().Y
	if a.primed && dt > 0 && a.max > 0 {
		a.acceleration = common.Clamp((vy-a.previous)/dt/a.max, -1, 1)
	}
	a.previous = vy
	a.primed = true
}
