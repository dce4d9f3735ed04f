package motor

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/monowheel/params"
	"github.com/milk9111/monowheel/physics/physicstest"
	"github.com/milk9111/monowheel/prefabs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt = 0.02

type testRig struct {
	*Rig
	base, wheel, damper *physicstest.Body
	wheelGround         *physicstest.Ground
	baseGround          *physicstest.Ground
	drive               *physicstest.Drive
	stop                *physicstest.Stop
	links               *physicstest.Links
}

func newTestRig() *testRig {
	r := &testRig{
		base:        physicstest.NewBody("base", 14),
		wheel:       physicstest.NewBody("wheel", 8),
		damper:      physicstest.NewBody("damper", 4),
		wheelGround: physicstest.NewGround(true),
		baseGround:  physicstest.NewGround(false),
		drive:       &physicstest.Drive{},
		stop:        &physicstest.Stop{},
		links:       physicstest.NewLinks(),
	}
	r.Rig = &Rig{
		Base:        r.base,
		Wheel:       r.wheel,
		Damper:      r.damper,
		Drive:       r.drive,
		WheelGround: r.wheelGround,
		BaseGround:  r.baseGround,
		Stop:        r.stop,
		FootStep:    &physicstest.FootStep{Height: 0.4},
		Links:       r.links,
	}
	return r
}

func newTestMotor(t *testing.T) (*Motor, *testRig) {
	t.Helper()
	gear, err := prefabs.LoadGearSpec()
	require.NoError(t, err)
	unit := params.Gear{Power: 1, Size: 1, Weight: 1, TorqueMoment: 1, DamperStrength: 1}
	p, err := params.New(unit, params.Bounds{}, params.NeutralModifiers())
	require.NoError(t, err)

	m, err := New(*gear, p)
	require.NoError(t, err)
	rig := newTestRig()
	require.NoError(t, m.OnChangeWheelHandle(rig.Rig))
	m.OnChangeReady()
	return m, rig
}

func TestWiringErrors(t *testing.T) {
	_, err := New(prefabs.GearSpec{}, nil)
	assert.ErrorIs(t, err, ErrMissingParameters)

	m, _ := newTestMotor(t)
	assert.ErrorIs(t, m.OnChangeWheelHandle(nil), ErrMissingWheel)
	assert.ErrorIs(t, m.OnChangeWheelHandle(&Rig{}), ErrMissingWheel)
}

func TestApproachSnapsToDesired(t *testing.T) {
	cases := []struct {
		name             string
		current, desired float64
		rate             float64
	}{
		{"tiny_positive_delta", 899.999, 900, 1e5},
		{"tiny_negative_delta", -449.999, -450, 1e5},
		{"crossing_zero", 10, 0, 1e6},
		{"already_there", 300, 300, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, got := approach(tc.current, tc.desired, tc.rate, dt)
			if got != tc.desired {
				t.Fatalf("expected exact snap to %v, got %v", tc.desired, got)
			}
		})
	}

	signed, got := approach(0, 100, 50, dt)
	assert.Equal(t, 50.0, signed)
	assert.InDelta(t, 1, got, 1e-12)
}

func TestSpeedApproachesMaxMonotonically(t *testing.T) {
	m, rig := newTestMotor(t)
	m.SetDirection(1)

	prev := m.CurrentMotorAbsoluteSpeed()
	for i := uint64(1); i <= 300; i++ {
		m.FixedStep(i, dt)
		cur := m.CurrentMotorAbsoluteSpeed()
		if cur < prev {
			t.Fatalf("speed decreased at step %d: %v -> %v", i, prev, cur)
		}
		if cur > m.MaxModifiedForwardSpeed() {
			t.Fatalf("speed overshot max at step %d: %v", i, cur)
		}
		prev = cur
	}
	assert.Equal(t, m.MaxModifiedForwardSpeed(), m.CurrentMotorAbsoluteSpeed())
	assert.Equal(t, m.CurrentMotorAbsoluteSpeed(), rig.drive.Value)
	assert.InDelta(t, 1, m.CurrentMotorRelativeSpeed(), 1e-9)
	assert.Greater(t, m.RelativeTilt(), 0.0)
	assert.Less(t, rig.base.Rotation, 0.0, "moving right leans the base clockwise")
}

func TestFixedStepIgnoresRepeatedIndex(t *testing.T) {
	m, _ := newTestMotor(t)
	m.SetDirection(1)

	m.FixedStep(1, dt)
	once := m.CurrentMotorAbsoluteSpeed()
	m.FixedStep(1, dt)
	assert.Equal(t, once, m.CurrentMotorAbsoluteSpeed())

	m.FixedStep(2, dt)
	assert.Greater(t, m.CurrentMotorAbsoluteSpeed(), once)
}

func TestSetDirectionClamps(t *testing.T) {
	m, _ := newTestMotor(t)
	m.SetDirection(5)
	assert.Equal(t, 1.0, m.HorizontalDirection())
	m.SetDirection(-3)
	assert.Equal(t, -1.0, m.HorizontalDirection())
}

func TestJumpPhasesAndCooldown(t *testing.T) {
	m, rig := newTestMotor(t)

	var starts []JumpDirection
	var peaks []float64
	ends := 0
	m.JumpStart.Subscribe(func(d JumpDirection) { starts = append(starts, d) })
	m.JumpPeak.Subscribe(func(h float64) { peaks = append(peaks, h) })
	m.JumpEnd.Subscribe(func(struct{}) { ends++ })

	require.True(t, m.CanJump())
	m.PowerJump(1)
	require.Len(t, starts, 1)
	assert.Equal(t, JumpForward, starts[0])
	assert.False(t, m.CanJump(), "jumping must block another jump")
	assert.Greater(t, rig.base.Vel.Y, 0.0)

	m.PowerJump(1)
	assert.Len(t, starts, 1, "second jump while airborne is ignored")

	step := uint64(0)
	next := func() {
		step++
		m.FixedStep(step, dt)
		m.Update(dt)
	}

	rig.wheelGround.Set(false)
	rig.base.Pos.Y = 0.5
	next()
	assert.Empty(t, peaks)

	rig.base.Vel.Y = -1
	next()
	require.Len(t, peaks, 1)
	assert.InDelta(t, 0.5, peaks[0], 1e-9)

	next()
	assert.Equal(t, 0, ends, "no landing while airborne")

	rig.wheelGround.Set(true)
	next()
	next()
	next()
	assert.Equal(t, 1, ends, "JumpEnd fires exactly once")

	m.betweenJumpsUnlockTime = m.gear.JumpingDelay
	assert.False(t, m.CanJump(), "cooldown blocks jump spam")
	m.Update(m.gear.JumpingDelay / 2)
	assert.False(t, m.CanJump())
	m.Update(m.gear.JumpingDelay)
	assert.True(t, m.CanJump())
	assert.Equal(t, 0.0, m.BetweenJumpsUnlockTime())
}

func TestJumpPowerIsClamped(t *testing.T) {
	m, rig := newTestMotor(t)
	m.PowerJump(0)

	require.Len(t, rig.base.Impulses, 1)
	want := m.gear.ForwardJumpForceFactor * (rig.wheel.BodyMass + rig.base.BodyMass) * MinimalRelativeJumpPower
	assert.InDelta(t, want, rig.base.Impulses[0].Y, 1e-9)
}

func TestBackwardJumpWhenBraking(t *testing.T) {
	m, _ := newTestMotor(t)
	m.SetDirection(-1)
	m.FixedStep(1, dt)

	var got []JumpDirection
	m.JumpStart.Subscribe(func(d JumpDirection) { got = append(got, d) })
	m.PowerJump(1)
	require.Len(t, got, 1)
	assert.Equal(t, JumpBackward, got[0])
}

func TestCanSaltoAfterLockTime(t *testing.T) {
	m, rig := newTestMotor(t)
	m.PowerJump(1)
	rig.wheelGround.Set(false)

	assert.False(t, m.CanSalto())
	step := uint64(0)
	for m.time < m.gear.BeforeSaltoLockTime+dt {
		step++
		m.FixedStep(step, dt)
	}
	assert.True(t, m.CanSalto())
}

func TestCrash(t *testing.T) {
	m, rig := newTestMotor(t)
	m.SetDirection(1)
	for i := uint64(1); i <= 20; i++ {
		m.FixedStep(i, dt)
	}
	require.Greater(t, m.CurrentMotorAbsoluteSpeed(), 0.0)
	rig.base.AngularImpulses = nil

	m.Crash()
	m.Crash()

	assert.True(t, m.IsCrashed())
	assert.False(t, m.IsStabilizeActive())
	assert.False(t, rig.links.Linked)
	assert.Equal(t, 0.0, m.HorizontalDirection())
	require.Len(t, rig.base.AngularImpulses, 1, "crash pitch applied once")
	assert.InDelta(t, -1.5*(8+14), rig.base.AngularImpulses[0], 1e-9)

	m.SetStabilizeActive(true)
	assert.False(t, m.IsStabilizeActive(), "stabilization stays off after a crash")

	for i := uint64(21); i <= 200; i++ {
		m.FixedStep(i, dt)
	}
	assert.Equal(t, 0.0, m.DesiredSpeed())
	assert.Equal(t, 0.0, m.CurrentMotorAbsoluteSpeed())
}

func TestOverheatPercent(t *testing.T) {
	cases := []struct {
		name      string
		direction float64
		normal    cp.Vector
		want      float64
	}{
		{"uphill", 1, cp.Vector{X: -0.5, Y: 0.866}, 75},
		{"steep_clamped", 1, cp.Vector{X: -0.9, Y: 0.43}, 100},
		{"downhill_clamped", 1, cp.Vector{X: 0.5, Y: 0.866}, 0},
		{"flat", 1, cp.Vector{Y: 1}, 0},
		{"no_input", 0, cp.Vector{X: -0.5, Y: 0.866}, 0},
	}
	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m, rig := newTestMotor(t)
			rig.wheelGround.Normal = tc.normal
			m.SetDirection(tc.direction)
			m.FixedStep(uint64(i+1), dt)
			assert.InDelta(t, tc.want, m.OverheatPercent(), 1e-9)
		})
	}
}

func TestBaseGroundTogglesStabilization(t *testing.T) {
	m, rig := newTestMotor(t)
	rig.wheelGround.Set(false)

	rig.baseGround.Set(true)
	assert.False(t, m.IsStabilizeActive())
	rig.baseGround.Set(false)
	assert.True(t, m.IsStabilizeActive())

	m.OnChangePreparing()
	rig.baseGround.Set(true)
	assert.True(t, m.IsStabilizeActive(), "suspended motor ignores ground edges")
}

func TestVelocityDump(t *testing.T) {
	m, rig := newTestMotor(t)
	rig.base.Vel = cp.Vector{X: 10, Y: 1}
	rig.damper.Vel = cp.Vector{X: -10}

	m.DumpVelocities()
	m.FixedStep(1, dt)

	assert.InDelta(t, 1, rig.base.Vel.X, 1e-9)
	assert.InDelta(t, 1, rig.base.Vel.Y, 1e-9)
	assert.InDelta(t, -1, rig.damper.Vel.X, 1e-9)
	assert.Equal(t, m.gear.VelocityDumpIterations-1, m.dumpIterations)
}

func TestVelocityDumpSkippedAfterCrash(t *testing.T) {
	m, rig := newTestMotor(t)
	rig.base.Vel = cp.Vector{X: 10}

	m.Crash()
	m.DumpVelocities()
	m.FixedStep(1, dt)

	assert.InDelta(t, 10, rig.base.Vel.X, 1e-9)
	assert.Equal(t, m.gear.VelocityDumpIterations, m.dumpIterations)
}

func TestToggleFlipDirection(t *testing.T) {
	m, _ := newTestMotor(t)
	var got []int
	m.FaceDirectionChanged.Subscribe(func(d int) { got = append(got, d) })
	m.ToggleFlipDirection()
	m.ToggleFlipDirection()
	assert.Equal(t, []int{-1, 1}, got)
}
