package player

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/monowheel/anim"
	"github.com/milk9111/monowheel/crash"
	"github.com/milk9111/monowheel/fsm"
	"github.com/milk9111/monowheel/motor"
	"github.com/milk9111/monowheel/params"
	"github.com/milk9111/monowheel/physics"
	"github.com/milk9111/monowheel/physics/physicstest"
	"github.com/milk9111/monowheel/prefabs"
	"github.com/milk9111/monowheel/timer"
	"github.com/stretchr/testify/require"
)

const (
	dt      = 0.02
	gravity = 9.81
)

type steadyRand float64

func (r steadyRand) Float64() float64 { return float64(r) }

type fakeRagdoll struct {
	velocity cp.Vector
	collided []physics.Body
	inits    int
	enabled  bool
}

func (r *fakeRagdoll) Init(v cp.Vector, collided []physics.Body) {
	r.velocity = v
	r.collided = collided
	r.inits++
}

func (r *fakeRagdoll) Enable() { r.enabled = true }

// harness is a rider on flat ground with point-mass bodies. Base and wheel
// share a position and fall under gravity once launched.
type harness struct {
	t *testing.T

	ctrl     *Controller
	motor    *motor.Motor
	detector *crash.Detector
	anim     *anim.Controller
	input    *HeldInput
	ragdoll  *fakeRagdoll
	life     *Lifecycle

	base, wheel, damper     *physicstest.Body
	wheelGround, baseGround *physicstest.Ground
	stop                    *physicstest.Stop
	torso                   *physics.CollisionDetector

	step   uint64
	states []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gear, err := prefabs.LoadGearSpec()
	require.NoError(t, err)
	crashSpec, err := prefabs.LoadCrashDetectorSpec()
	require.NoError(t, err)
	jumpSpec, err := prefabs.LoadJumpSpec()
	require.NoError(t, err)
	saltoSpec, err := prefabs.LoadSaltoSpec()
	require.NoError(t, err)
	timers, err := prefabs.LoadTimersSpec()
	require.NoError(t, err)

	unit := params.Gear{Power: 1, Size: 1, Weight: 1, TorqueMoment: 1, DamperStrength: 1}
	p, err := params.New(unit, params.Bounds{}, params.NeutralModifiers())
	require.NoError(t, err)

	h := &harness{
		t:           t,
		anim:        anim.NewController(anim.DefaultSettings()),
		input:       &HeldInput{},
		ragdoll:     &fakeRagdoll{},
		life:        &Lifecycle{},
		base:        physicstest.NewBody("base", 14),
		wheel:       physicstest.NewBody("wheel", 8),
		damper:      physicstest.NewBody("damper", 4),
		wheelGround: physicstest.NewGround(true),
		baseGround:  physicstest.NewGround(false),
		stop:        &physicstest.Stop{},
		torso:       physics.NewCollisionDetector(physics.NewRigidBody("torso", cp.NewBody(1, 1)), false),
	}

	h.motor, err = motor.New(*gear, p)
	require.NoError(t, err)
	h.detector, err = crash.New(*crashSpec, h.motor, timer.NewDangerousCollisions(timers.DangerousCollisionsDelay), steadyRand(0.99))
	require.NoError(t, err)

	h.ctrl = NewController()
	require.NoError(t, h.ctrl.Init(Deps{
		Input:        h.input,
		Motor:        h.motor,
		Detector:     h.detector,
		BeforeStop:   timer.NewBeforeStop(timers.BeforeStopDelay),
		JumpPower:    NewJumpPower(*jumpSpec),
		Movement:     NewMovement(h.motor),
		Salto:        NewSaltoTracker(*saltoSpec, h.motor),
		Acceleration: NewAccelerationProvider(h.base, 50),
	}))
	h.ctrl.StateChanged.Subscribe(func(id fsm.StateID) { h.states = append(h.states, string(id)) })

	h.life.Register(MotorHandler{Motor: h.motor})
	h.life.Register(DetectorHandler{Detector: h.detector})
	h.life.Register(h.ctrl)

	h.life.ChangeWheel(&WheelHandle{
		Rig: &motor.Rig{
			Base:        h.base,
			Wheel:       h.wheel,
			Damper:      h.damper,
			Drive:       &physicstest.Drive{},
			WheelGround: h.wheelGround,
			BaseGround:  h.baseGround,
			Stop:        h.stop,
			FootStep:    &physicstest.FootStep{Height: 0.5},
			Links:       physicstest.NewLinks(),
		},
		Crash: crash.WheelHandle{Wheel: h.wheel, Ground: h.wheelGround},
	})
	h.life.ChangeCharacter(&CharacterHandle{
		Animation: h.anim,
		Ragdoll:   h.ragdoll,
		Colliders: []*physics.CollisionDetector{h.torso},
	})
	h.life.Ready()
	return h
}

// tick runs one fixed step in simulation order.
func (h *harness) tick() {
	h.step++
	h.detector.FixedStep(h.step, dt)
	h.ctrl.Tick(dt)
	h.motor.FixedStep(h.step, dt)
	h.motor.Update(dt)
	h.integrate()
	h.anim.Update(dt)
}

func (h *harness) ticks(n int) {
	for i := 0; i < n; i++ {
		h.tick()
	}
}

// tickUntil ticks until cond holds, failing after limit ticks.
func (h *harness) tickUntil(limit int, cond func() bool) {
	h.t.Helper()
	for i := 0; i < limit; i++ {
		if cond() {
			return
		}
		h.tick()
	}
	if !cond() {
		h.t.Fatalf("condition not reached after %d ticks, state %s, history %v", limit, h.ctrl.CurrentStateName(), h.states)
	}
}

func (h *harness) integrate() {
	if h.base.Pos.Y > 0 || h.base.Vel.Y > 0 {
		h.base.Vel.Y -= gravity * dt
	}
	h.base.Integrate(dt)
	if h.base.Pos.Y <= 0 {
		h.base.Pos.Y = 0
		if h.base.Vel.Y < 0 {
			h.base.Vel.Y = 0
		}
	}
	h.wheel.Pos = h.base.Pos
	h.wheel.Vel = h.base.Vel
	h.wheelGround.Set(h.base.Pos.Y <= 0)
}
