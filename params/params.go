// Package params turns wheel gear parameters and character modifiers into
// the multipliers applied to motor and crash tuning.
package params

import (
	"errors"
	"fmt"
)

var ErrMissingWheel = errors.New("params: wheel gear parameters are required")

// Gear is the tunable hardware of a wheel.
type Gear struct {
	Power          float64
	Size           float64
	Weight         float64
	TorqueMoment   float64
	DamperStrength float64
}

func (g Gear) valid() bool {
	return g.Power > 0 && g.Size > 0 && g.Weight > 0 && g.TorqueMoment > 0 && g.DamperStrength > 0
}

type Range struct {
	Min, Max float64
}

type Bounds struct {
	Power          Range
	Size           Range
	Weight         Range
	DamperStrength Range
}

// Modifiers are the rider's skill multipliers; 1 is neutral.
type Modifiers struct {
	TiltAccelerate   float64
	MaxForwardSpeed  float64
	MaxBackwardSpeed float64
	JumpHeight       float64
	Stability        float64
	SaltoSpeed       float64
}

func NeutralModifiers() Modifiers {
	return Modifiers{
		TiltAccelerate:   1,
		MaxForwardSpeed:  1,
		MaxBackwardSpeed: 1,
		JumpHeight:       1,
		Stability:        1,
		SaltoSpeed:       1,
	}
}

// Parameters scales tuning by the difference between the reference wheel
// and the wheel currently mounted.
type Parameters struct {
	base      Gear
	current   Gear
	bounds    Bounds
	modifiers Modifiers
}

func New(base Gear, bounds Bounds, modifiers Modifiers) (*Parameters, error) {
	if !base.valid() {
		return nil, fmt.Errorf("params: base gear: %w", ErrMissingWheel)
	}
	if modifiers.Stability <= 0 {
		return nil, fmt.Errorf("params: stability modifier must be positive, got %v", modifiers.Stability)
	}
	return &Parameters{base: base, current: base, bounds: bounds, modifiers: modifiers}, nil
}

// SetWheel mounts a new wheel. It panics on a zero gear: a missing wheel
// at this point is a wiring bug.
func (p *Parameters) SetWheel(g Gear) {
	if !g.valid() {
		panic(ErrMissingWheel)
	}
	p.current = g
}

func (p *Parameters) SetModifiers(m Modifiers) {
	p.modifiers = m
}

func (p *Parameters) Base() Gear { return p.base }
func (p *Parameters) Current() Gear { return p.current }
func (p *Parameters) Bounds() Bounds { return p.bounds }
func (p *Parameters) Modifiers() Modifiers { return p.modifiers }

func (p *Parameters) Size() float64 { return p.current.Size }
func (p *Parameters) DamperStrength() float64 { return p.current.DamperStrength }

func (p *Parameters) VelocityAccelerateMultiplier() float64 {
	return p.base.Weight / p.current.Weight * p.current.TorqueMoment / p.base.TorqueMoment
}

func (p *Parameters) TiltAccelerateMultiplier() float64 {
	return p.modifiers.TiltAccelerate
}

func (p *Parameters) MaxForwardVelocityMultiplier() float64 {
	return p.current.Power / p.base.Power * p.modifiers.MaxForwardSpeed
}

func (p *Parameters) MaxBackwardVelocityMultiplier() float64 {
	return p.current.Power / p.base.Power * p.modifiers.MaxBackwardSpeed
}

func (p *Parameters) JumpHeightMultiplier() float64 {
	return p.base.Weight / p.current.Weight * p.modifiers.JumpHeight
}

func (p *Parameters) MinFallHeightMultiplier() float64 {
	return p.base.DamperStrength / p.current.DamperStrength * p.modifiers.Stability
}

func (p *Parameters) MaxFallHeightMultiplier() float64 {
	return p.base.DamperStrength / p.current.DamperStrength * p.modifiers.Stability
}

func (p *Parameters) OverloadSpeedMultiplier() float64 {
	return 1 / p.modifiers.Stability
}

func (p *Parameters) OverloadAngleMultiplier() float64 {
	m := p.base.TorqueMoment / p.current.TorqueMoment
	return m * m
}

func (p *Parameters) SaltoSpeedMultiplier() float64 {
	return p.modifiers.SaltoSpeed
}

// RelativeSize places the current wheel size within its bounds, 0 at the
// smallest wheel and 1 at the largest.
func (p *Parameters) RelativeSize() float64 {
	return relative(p.bounds.Size, p.current.Size)
}

// RelativeDamperStrength places the current damper within its bounds.
func (p *Parameters) RelativeDamperStrength() float64 {
	return relative(p.bounds.DamperStrength, p.current.DamperStrength)
}

func relative(r Range, v float64) float64 {
	if r.Max == r.Min {
		return 0
	}
	return (v - r.Min) / (r.Max - r.Min)
}
