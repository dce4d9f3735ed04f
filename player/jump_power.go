package player

import (
	"github.com/milk9111/monowheel/common"
	"github.com/milk9111/monowheel/event"
	"github.com/milk9111/monowheel/prefabs"
)

// JumpPower charges while the jump button is held and drains afterwards.
type JumpPower struct {
	spec prefabs.JumpSpec

	power      float64
	active     bool
	increasing bool

	// PreparingEnded fires when a draining charge reaches zero.
	PreparingEnded event.Trigger
}

func NewJumpPower(spec prefabs.JumpSpec) *JumpPower {
	return &JumpPower{spec: spec}
}

func (j *JumpPower) IsActive() bool { return j.active }
func (j *JumpPower) IsIncreasing() bool { return j.active && j.increasing }

// RelativePower is the charge in [0, 1].
func (j *JumpPower) RelativePower() float64 { return j.power }

// Init starts a new charge from the initial power.
func (j *JumpPower) Init() {
	j.power = common.Clamp01(j.spec.InitialPower)
	j.active = true
	j.increasing = true
}

func (j *JumpPower) SetIncrease() { j.increasing = true }
func (j *JumpPower) SetDecrease() { j.increasing = false }

func (j *JumpPower) DoUpdate(dt float64) {
	if !j.active {
		return
	}
	if j.increasing {
		j.power = common.Clamp01(j.power + j.spec.IncreaseSpeed*dt)
		return
	}
	j.power -= j.spec.DecreaseSpeed * dt
	if j.power > 0 {
		return
	}
	j.power = 0
	j.active = false
	event.Fire(&j.PreparingEnded)
}
