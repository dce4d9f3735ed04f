package player

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/monowheel/anim"
	"github.com/milk9111/monowheel/crash"
	"github.com/milk9111/monowheel/event"
	"github.com/milk9111/monowheel/physics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControllerStartsInMove(t *testing.T) {
	h := newHarness(t)
	assert.True(t, h.ctrl.IsActive())
	assert.Equal(t, StateMove, h.ctrl.CurrentState())
	assert.Equal(t, anim.HashMove, h.anim.Main.ActiveState())
	assert.InDelta(t, 0.5, h.anim.Main.Float(anim.ParamRelativeWheelSize), 1e-9)
	assert.Len(t, h.ctrl.States(), 12)
}

func TestInitValidatesDeps(t *testing.T) {
	err := NewController().Init(Deps{})
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestRideRightAcceleratesAndStaysInMove(t *testing.T) {
	h := newHarness(t)
	h.input.Current.MoveRight = true

	prev := h.motor.CurrentMotorAbsoluteSpeed()
	for i := 0; i < 200; i++ {
		h.tick()
		cur := h.motor.CurrentMotorAbsoluteSpeed()
		if cur < prev {
			t.Fatalf("speed decreased at tick %d: %v -> %v", i, prev, cur)
		}
		prev = cur
		if h.ctrl.CurrentState() != StateMove {
			t.Fatalf("left Move at tick %d for %s", i, h.ctrl.CurrentState())
		}
	}
	assert.Equal(t, h.motor.MaxModifiedForwardSpeed(), h.motor.CurrentMotorAbsoluteSpeed())
	assert.Greater(t, h.anim.Main.Float(anim.ParamRelativeSpeed), 0.0)
	assert.Equal(t, []string{"Move"}, h.states)
}

func TestAlwaysCrashCollisionReachesCrashState(t *testing.T) {
	cases := []struct {
		name  string
		setup func(h *harness)
		from  string
	}{
		{"from_move", func(h *harness) { h.ticks(10) }, "Move"},
		{"from_flip", func(h *harness) {
			h.ticks(10)
			h.input.Current = Input{MoveRight: true, Flip: true}
			h.tick()
		}, "Flip"},
		{"from_sit", func(h *harness) {
			h.ticks(10)
			h.input.Current = Input{MoveRight: true, Sit: true}
			h.tick()
		}, "Sit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			tc.setup(h)
			require.Equal(t, tc.from, h.ctrl.CurrentStateName())

			h.wheel.Vel = cp.Vector{X: 4}
			h.torso.Enter.Emit(physics.CollisionInfo{
				Part:              h.torso.Body(),
				TranslateVelocity: cp.Vector{X: 9},
				Normal:            cp.Vector{X: -1},
				AlwaysCrash:       true,
			})
			h.tick()

			assert.Equal(t, crash.ObstacleCollision, h.detector.CrashState())
			assert.Equal(t, StateCrash, h.ctrl.CurrentState())
			assert.False(t, h.ctrl.Machine().TransitionsEnabled())
			assert.True(t, h.motor.IsCrashed())
			assert.True(t, h.ragdoll.enabled)
			assert.Equal(t, 1, h.ragdoll.inits)
			assert.InDelta(t, 3, h.ragdoll.velocity.X, 1e-9)
			assert.Equal(t, []physics.Body{h.torso.Body()}, h.ragdoll.collided)

			h.input.Current = Input{MoveRight: true, Jump: true}
			h.ticks(20)
			assert.Equal(t, StateCrash, h.ctrl.CurrentState())
		})
	}
}

func TestCrashCannotBeLeft(t *testing.T) {
	h := newHarness(t)
	h.ctrl.DebugCrash()
	require.Equal(t, "Crash", h.ctrl.CurrentStateName())

	assert.PanicsWithValue(t, ErrIllegalCrashExit, func() {
		h.ctrl.Machine().SetState(h.ctrl.States()[0])
	})
}

func TestJumpFromMoveLandsOnce(t *testing.T) {
	h := newHarness(t)
	ends := 0
	h.motor.JumpEnd.Subscribe(func(struct{}) { ends++ })

	h.ticks(10)
	h.input.Current.Jump = true
	h.tick()
	require.Equal(t, StateMoveToJumpPreparing, h.ctrl.CurrentState())
	assert.Equal(t, anim.HashJumpPreparing, h.anim.Main.ActiveState())

	h.ticks(10)
	assert.Greater(t, h.anim.Main.Float(anim.ParamJumpPreparingPower), 0.0)

	h.input.Current.Jump = false
	h.tick()
	require.Equal(t, StateJumping, h.ctrl.CurrentState())
	assert.Greater(t, h.base.Vel.Y, 0.0)
	assert.False(t, h.motor.CanJump())

	h.tickUntil(200, func() bool { return h.ctrl.CurrentState() == StateMove })
	h.ticks(20)

	assert.Equal(t, 1, ends)
	assert.Equal(t, []string{"Move", "MoveToJumpPreparing", "Jumping", "Move"}, h.states)
	assert.Equal(t, crash.None, h.detector.CrashState())
}

func TestChargeDrainsWhenJumpIsLost(t *testing.T) {
	h := newHarness(t)
	h.ticks(10)
	h.input.Current.Jump = true
	h.ticks(5)
	require.Equal(t, StateMoveToJumpPreparing, h.ctrl.CurrentState())

	// Rolling off an edge takes the jump away.
	h.base.Pos.Y = 1
	h.wheelGround.Set(false)
	h.tick()
	require.Equal(t, StateJumpPreparingToMove, h.ctrl.CurrentState())

	h.tickUntil(100, func() bool { return h.ctrl.CurrentState() == StateMove })
	assert.False(t, h.ctrl.ctx.jump.IsActive())
}

func TestSaltoDuringJump(t *testing.T) {
	h := newHarness(t)
	ends := 0
	h.motor.JumpEnd.Subscribe(func(struct{}) { ends++ })

	h.ticks(10)
	h.input.Current.Jump = true
	h.ticks(30)
	h.input.Current.Jump = false
	h.tick()
	require.Equal(t, StateJumping, h.ctrl.CurrentState())

	h.tickUntil(50, h.motor.CanSalto)
	h.input.Current.SaltoPressed = true
	h.tick()
	require.Equal(t, StateSalto, h.ctrl.CurrentState())
	assert.True(t, h.motor.IsSaltoRotating())

	h.tickUntil(100, func() bool { return h.ctrl.CurrentState() == StateJumping })
	assert.False(t, h.motor.IsSaltoRotating())
	assert.True(t, h.motor.IsStabilizeActive())
	assert.True(t, h.ctrl.jumping.SaltoLocked())
	assert.InDelta(t, 1, h.anim.Main.Float(anim.ParamSaltoPreparingPower), 1e-6)

	h.input.Current.SaltoPressed = true
	h.tick()
	assert.Equal(t, StateJumping, h.ctrl.CurrentState(), "salto is locked until landing")

	h.tickUntil(200, func() bool { return h.ctrl.CurrentState() == StateMove })
	assert.Equal(t, 1, ends)
	assert.Equal(t, []string{"Move", "MoveToJumpPreparing", "Jumping", "Salto", "Jumping", "Move"}, h.states)
}

func TestStopCycle(t *testing.T) {
	h := newHarness(t)
	h.ticks(10)

	h.stop.Stopped = true
	h.tick()
	require.Equal(t, StatePreparingStopWithTimer, h.ctrl.CurrentState())

	h.tickUntil(100, func() bool { return h.ctrl.CurrentState() == StateStop })
	assert.Equal(t, anim.HashStop, h.anim.Main.ActiveState())
	assert.InDelta(t, 0.5, h.anim.Feet.Float(anim.ParamRelativeWheelSize), 1e-9)

	h.ticks(10)
	h.stop.Stopped = false
	h.input.Current.MoveRight = true
	h.tick()
	require.Equal(t, StateRaisingFootAfterStop, h.ctrl.CurrentState())

	h.tickUntil(100, func() bool { return h.ctrl.CurrentState() == StateMove })
	assert.Equal(t, []string{
		"Move", "PreparingStopWithTimer", "RaisingFootBeforeStop", "Stop", "RaisingFootAfterStop", "Move",
	}, h.states)
}

func TestInputResumesBeforeStopDelay(t *testing.T) {
	h := newHarness(t)
	h.ticks(10)
	h.stop.Stopped = true
	h.tick()
	require.Equal(t, StatePreparingStopWithTimer, h.ctrl.CurrentState())

	h.input.Current.MoveLeft = true
	h.tick()
	assert.Equal(t, StateMove, h.ctrl.CurrentState())
}

func TestFlipTogglesFaceDirection(t *testing.T) {
	h := newHarness(t)
	h.ticks(10)
	h.input.Current = Input{MoveRight: true, Flip: true}
	h.tick()
	require.Equal(t, StateFlip, h.ctrl.CurrentState())

	h.input.Current = Input{MoveRight: true}
	h.tickUntil(50, func() bool { return h.ctrl.CurrentState() == StateMove })
	assert.Equal(t, -1, h.motor.FaceDirection())
}

func TestSitUntilReleased(t *testing.T) {
	h := newHarness(t)
	h.ticks(10)
	h.input.Current = Input{MoveRight: true, Sit: true}
	h.tick()
	require.Equal(t, StateSit, h.ctrl.CurrentState())

	h.ticks(5)
	assert.Equal(t, StateSit, h.ctrl.CurrentState())

	h.input.Current = Input{MoveRight: true}
	h.tick()
	assert.Equal(t, StateMove, h.ctrl.CurrentState())
}

func TestStateHooksFire(t *testing.T) {
	h := newHarness(t)
	var entered, exited int
	var scope event.Scope
	scope.Open()
	defer scope.Close()
	event.OnFire(&scope, &h.ctrl.sit.Entered, func() { entered++ })
	event.OnFire(&scope, &h.ctrl.sit.Exited, func() { exited++ })

	h.ticks(10)
	h.input.Current = Input{MoveRight: true, Sit: true}
	h.ticks(3)
	h.input.Current = Input{}
	h.ticks(3)

	assert.Equal(t, 1, entered)
	assert.Equal(t, 1, exited)
}

func TestPauseAndResumeKeepsState(t *testing.T) {
	h := newHarness(t)
	h.ticks(10)
	h.input.Current = Input{MoveRight: true, Sit: true}
	h.tick()
	require.Equal(t, StateSit, h.ctrl.CurrentState())

	h.life.Preparing()
	assert.False(t, h.ctrl.IsActive())
	h.input.Current = Input{}
	h.ticks(5)
	assert.Equal(t, StateSit, h.ctrl.CurrentState())

	h.life.Ready()
	assert.True(t, h.ctrl.IsActive())
	assert.Equal(t, StateSit, h.ctrl.CurrentState())
	h.tick()
	assert.Equal(t, StateMove, h.ctrl.CurrentState())
}

func TestResumeEntersSavedStateAgain(t *testing.T) {
	h := newHarness(t)
	h.ticks(10)
	h.input.Current = Input{MoveRight: true, Sit: true}
	h.tick()
	require.Equal(t, StateSit, h.ctrl.CurrentState())

	var entered, exited int
	var scope event.Scope
	scope.Open()
	defer scope.Close()
	event.OnFire(&scope, &h.ctrl.sit.Entered, func() { entered++ })
	event.OnFire(&scope, &h.ctrl.sit.Exited, func() { exited++ })

	h.life.Preparing()
	h.life.Ready()
	assert.Equal(t, 1, entered)
	assert.Zero(t, exited)
	assert.Equal(t, StateSit, h.ctrl.CurrentState())
}

func TestResumeInCrashKeepsRagdoll(t *testing.T) {
	h := newHarness(t)
	h.ticks(10)
	h.ctrl.DebugCrash()
	require.Equal(t, 1, h.ragdoll.inits)

	h.life.Preparing()
	h.life.Ready()
	assert.Equal(t, StateCrash, h.ctrl.CurrentState())
	assert.Equal(t, 1, h.ragdoll.inits)
	assert.False(t, h.ctrl.Machine().TransitionsEnabled())
}

func TestReadyBeforeInit(t *testing.T) {
	h := newHarness(t)

	c := NewController()
	c.OnChangeCharacterHandle(&CharacterHandle{Animation: anim.NewController(anim.DefaultSettings())})
	c.OnChangeReady()
	assert.False(t, c.IsActive())

	require.NoError(t, c.Init(h.ctrl.deps))
	assert.True(t, c.IsActive())
	assert.Equal(t, StateMove, c.CurrentState())
}

func TestLifecyclePanicsOnNilHandles(t *testing.T) {
	var l Lifecycle
	assert.PanicsWithValue(t, ErrNilWheel, func() { l.ChangeWheel(nil) })
	assert.PanicsWithValue(t, ErrNilCharacter, func() { l.ChangeCharacter(&CharacterHandle{}) })
}
