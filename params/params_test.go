package params

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitGear() Gear {
	return Gear{Power: 1, Size: 1, Weight: 1, TorqueMoment: 1, DamperStrength: 1}
}

func TestMultipliers(t *testing.T) {
	mods := NeutralModifiers()
	mods.Stability = 2
	mods.JumpHeight = 1.5
	mods.MaxForwardSpeed = 1.2

	p, err := New(unitGear(), Bounds{Size: Range{Min: 0.5, Max: 1.5}}, mods)
	require.NoError(t, err)

	p.SetWheel(Gear{Power: 2, Size: 1.25, Weight: 2, TorqueMoment: 0.5, DamperStrength: 4})

	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"velocity_accelerate", p.VelocityAccelerateMultiplier(), 0.25},
		{"tilt_accelerate", p.TiltAccelerateMultiplier(), 1},
		{"max_forward", p.MaxForwardVelocityMultiplier(), 2.4},
		{"max_backward", p.MaxBackwardVelocityMultiplier(), 2},
		{"jump_height", p.JumpHeightMultiplier(), 0.75},
		{"min_fall", p.MinFallHeightMultiplier(), 0.5},
		{"max_fall", p.MaxFallHeightMultiplier(), 0.5},
		{"overload_speed", p.OverloadSpeedMultiplier(), 0.5},
		{"overload_angle", p.OverloadAngleMultiplier(), 4},
		{"salto", p.SaltoSpeedMultiplier(), 1},
		{"relative_size", p.RelativeSize(), 0.75},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.InDelta(t, c.want, c.got, 1e-9)
		})
	}
}

func TestWiringErrors(t *testing.T) {
	_, err := New(Gear{}, Bounds{}, NeutralModifiers())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingWheel))

	_, err = New(unitGear(), Bounds{}, Modifiers{})
	require.Error(t, err)

	p, err := New(unitGear(), Bounds{}, NeutralModifiers())
	require.NoError(t, err)
	assert.Panics(t, func() { p.SetWheel(Gear{}) })
}
