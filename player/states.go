package player

import (
	"errors"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/monowheel/anim"
	"github.com/milk9111/monowheel/crash"
	"github.com/milk9111/monowheel/event"
	"github.com/milk9111/monowheel/fsm"
	"github.com/milk9111/monowheel/motor"
	"github.com/milk9111/monowheel/physics"
	"github.com/milk9111/monowheel/timer"
)

// ErrIllegalCrashExit is raised when something tries to leave the crash
// state. A crashed rider only comes back through a full reload.
var ErrIllegalCrashExit = errors.New("player: cannot leave the crash state, reload the level")

const crashVelocityFactor = 0.75

const (
	StateMove                   fsm.StateID = "Move"
	StateStop                   fsm.StateID = "Stop"
	StatePreparingStopWithTimer fsm.StateID = "PreparingStopWithTimer"
	StateRaisingFootBeforeStop  fsm.StateID = "RaisingFootBeforeStop"
	StateRaisingFootAfterStop   fsm.StateID = "RaisingFootAfterStop"
	StateMoveToJumpPreparing    fsm.StateID = "MoveToJumpPreparing"
	StateJumpPreparingToMove    fsm.StateID = "JumpPreparingToMove"
	StateJumping                fsm.StateID = "Jumping"
	StateSit                    fsm.StateID = "Sit"
	StateFlip                   fsm.StateID = "Flip"
	StateSalto                  fsm.StateID = "Salto"
	StateCrash                  fsm.StateID = "Crash"
)

// Ragdoll takes over the rider's body after a crash.
type Ragdoll interface {
	Init(velocity cp.Vector, collided []physics.Body)
	Enable()
}

// stateContext is shared by every state of one controller.
type stateContext struct {
	input Input
	dt    float64

	anim         *anim.Controller
	ragdoll      Ragdoll
	motor        *motor.Motor
	detector     *crash.Detector
	beforeStop   *timer.Delay
	jump         *JumpPower
	movement     *Movement
	salto        *SaltoTracker
	acceleration *AccelerationProvider
}

func (c *stateContext) pushMoveParams() {
	c.anim.Main.SetFloat(anim.ParamRelativeSpeed, c.motor.RelativeCharacterTilt())
	c.anim.Main.SetFloat(anim.ParamVerticalRelativeAcceleration, c.acceleration.Acceleration())
	c.anim.Feet.SetFloat(anim.ParamRelativeTilt, c.motor.RelativeFeetTilt())
}

func (c *stateContext) pushWheelSize(feet bool) {
	h := c.motor.FootStepHeightRelative()
	c.anim.Main.SetFloat(anim.ParamRelativeWheelSize, h)
	if feet {
		c.anim.Feet.SetFloat(anim.ParamRelativeWheelSize, h)
	}
}

func (c *stateContext) pushJumpPower() {
	c.anim.Main.SetFloat(anim.ParamJumpPreparingPower, c.jump.RelativePower())
}

// hooks are the observer events every state raises.
type hooks struct {
	Entered event.Trigger
	Exited  event.Trigger
}

type moveState struct {
	hooks
	ctx *stateContext
}

type stopState struct {
	hooks
	ctx *stateContext
}

type preparingStopWithTimerState struct {
	hooks
	ctx *stateContext
}

type raisingFootBeforeStopState struct {
	hooks
	ctx *stateContext
}

type raisingFootAfterStopState struct {
	hooks
	ctx *stateContext
}

type moveToJumpPreparingState struct {
	hooks
	ctx *stateContext
}

type jumpPreparingToMoveState struct {
	hooks
	ctx *stateContext
}

type jumpingState struct {
	hooks
	ctx    *stateContext
	events event.Scope

	active      bool
	jumpEnded   bool
	saltoLocked bool
}

type sitState struct {
	hooks
	ctx *stateContext
}

type flipState struct {
	hooks
	ctx *stateContext
}

type saltoState struct {
	hooks
	ctx    *stateContext
	events event.Scope
}

type crashState struct {
	hooks
	ctx *stateContext
}

func (s *moveState) ID() fsm.StateID { return StateMove }
func (s *moveState) Hash() anim.Hash { return anim.HashMove }
func (s *moveState) OnEnter() {
	s.ctx.anim.SetMainAnimatorState(s.Hash())
	s.ctx.pushWheelSize(false)
	event.Fire(&s.Entered)
}
func (s *moveState) OnExit() { event.Fire(&s.Exited) }
func (s *moveState) Tick() {
	s.ctx.pushMoveParams()
	s.ctx.movement.DoUpdate(s.ctx.input)
	s.ctx.jump.DoUpdate(s.ctx.dt)
}

func (s *stopState) ID() fsm.StateID { return StateStop }
func (s *stopState) Hash() anim.Hash { return anim.HashStop }
func (s *stopState) OnEnter() {
	s.ctx.anim.SetMainAnimatorState(s.Hash())
	s.ctx.pushWheelSize(true)
	s.ctx.motor.DumpVelocities()
	event.Fire(&s.Entered)
}
func (s *stopState) OnExit() { event.Fire(&s.Exited) }
func (s *stopState) Tick() { s.ctx.pushWheelSize(true) }

// preparingStopWithTimerState has no animator flag: it waits out the stop
// delay while the move loop keeps playing.
func (s *preparingStopWithTimerState) ID() fsm.StateID { return StatePreparingStopWithTimer }
func (s *preparingStopWithTimerState) Hash() anim.Hash { return anim.HashNone }
func (s *preparingStopWithTimerState) OnEnter() {
	s.ctx.beforeStop.EnableStopTimer()
	event.Fire(&s.Entered)
}
func (s *preparingStopWithTimerState) OnExit() {
	s.ctx.beforeStop.DisableStopTimer()
	event.Fire(&s.Exited)
}
func (s *preparingStopWithTimerState) Tick() {
	s.ctx.beforeStop.UpdateTimer(s.ctx.dt)
	s.ctx.jump.DoUpdate(s.ctx.dt)
	s.ctx.anim.Main.SetFloat(anim.ParamVerticalRelativeAcceleration, s.ctx.acceleration.Acceleration())
}

func (s *raisingFootBeforeStopState) ID() fsm.StateID { return StateRaisingFootBeforeStop }
func (s *raisingFootBeforeStopState) Hash() anim.Hash { return anim.HashRaisingFootBeforeStop }
func (s *raisingFootBeforeStopState) OnEnter() {
	s.ctx.anim.RaiseFootBeforeStop.ResetReady()
	s.ctx.anim.SetMainAnimatorState(s.Hash())
	s.ctx.pushWheelSize(true)
	event.Fire(&s.Entered)
}
func (s *raisingFootBeforeStopState) OnExit() {
	s.ctx.anim.RaiseFootBeforeStop.ResetReady()
	event.Fire(&s.Exited)
}
func (s *raisingFootBeforeStopState) Tick() {}

func (s *raisingFootAfterStopState) ID() fsm.StateID { return StateRaisingFootAfterStop }
func (s *raisingFootAfterStopState) Hash() anim.Hash { return anim.HashRaisingFootAfterStop }
func (s *raisingFootAfterStopState) OnEnter() {
	s.ctx.anim.RaiseFootAfterStop.ResetReady()
	s.ctx.anim.SetMainAnimatorState(s.Hash())
	event.Fire(&s.Entered)
}
func (s *raisingFootAfterStopState) OnExit() {
	s.ctx.anim.RaiseFootAfterStop.ResetReady()
	event.Fire(&s.Exited)
}
func (s *raisingFootAfterStopState) Tick() {}

func (s *moveToJumpPreparingState) ID() fsm.StateID { return StateMoveToJumpPreparing }
func (s *moveToJumpPreparingState) Hash() anim.Hash { return anim.HashJumpPreparing }
func (s *moveToJumpPreparingState) OnEnter() {
	s.ctx.anim.SetMainAnimatorState(s.Hash())
	if !s.ctx.jump.IsActive() {
		s.ctx.jump.Init()
	}
	s.ctx.jump.SetIncrease()
	event.Fire(&s.Entered)
}
func (s *moveToJumpPreparingState) OnExit() { event.Fire(&s.Exited) }
func (s *moveToJumpPreparingState) Tick() {
	s.ctx.pushMoveParams()
	s.ctx.movement.DoUpdate(s.ctx.input)
	s.ctx.jump.DoUpdate(s.ctx.dt)
	s.ctx.pushJumpPower()
}

// jumpPreparingToMoveState drains a charge that lost its chance to jump,
// for example after rolling off an edge.
func (s *jumpPreparingToMoveState) ID() fsm.StateID { return StateJumpPreparingToMove }
func (s *jumpPreparingToMoveState) Hash() anim.Hash { return anim.HashMove }
func (s *jumpPreparingToMoveState) OnEnter() {
	s.ctx.anim.SetMainAnimatorState(s.Hash())
	s.ctx.jump.SetDecrease()
	event.Fire(&s.Entered)
}
func (s *jumpPreparingToMoveState) OnExit() { event.Fire(&s.Exited) }
func (s *jumpPreparingToMoveState) Tick() {
	s.ctx.pushMoveParams()
	s.ctx.movement.DoUpdate(s.ctx.input)
	s.ctx.jump.DoUpdate(s.ctx.dt)
	s.ctx.pushJumpPower()
}

func (s *jumpingState) ID() fsm.StateID { return StateJumping }
func (s *jumpingState) Hash() anim.Hash { return anim.HashMove }

// OnEnter launches the jump, unless the state is re-entered after a salto
// in the same flight.
func (s *jumpingState) OnEnter() {
	s.ctx.anim.SetMainAnimatorState(s.Hash())

	if !s.ctx.salto.IsSuccessfully() {
		s.ctx.jump.SetDecrease()
		s.ctx.motor.PowerJump(s.ctx.jump.RelativePower())
	} else {
		s.saltoLocked = !s.ctx.salto.AllowTurnIfButtonPressedAgain()
		s.ctx.salto.ResetParent()
		s.ctx.motor.SetStabilizeActive(true)
	}

	s.jumpEnded = false
	s.active = true

	s.events.Open()
	event.OnFire(&s.events, &s.ctx.motor.JumpEnd, s.onJumpEnd)
	event.Fire(&s.Entered)
}

func (s *jumpingState) OnExit() {
	s.jumpEnded = false
	s.active = false
	s.ctx.salto.SuccessfullyReset()
	s.events.Close()
	event.Fire(&s.Exited)
}

func (s *jumpingState) Tick() {
	s.ctx.movement.DoUpdate(s.ctx.input)
	s.ctx.jump.DoUpdate(s.ctx.dt)
	s.ctx.pushJumpPower()
	s.ctx.pushMoveParams()
}

func (s *jumpingState) onJumpEnd() {
	s.jumpEnded = true
	s.saltoLocked = false
}

func (s *jumpingState) IsJumpingEnded() bool { return s.jumpEnded }
func (s *jumpingState) SaltoLocked() bool { return s.saltoLocked }

func (s *sitState) ID() fsm.StateID { return StateSit }
func (s *sitState) Hash() anim.Hash { return anim.HashSit }
func (s *sitState) OnEnter() {
	s.ctx.anim.SetMainAnimatorState(s.Hash())
	event.Fire(&s.Entered)
}
func (s *sitState) OnExit() { event.Fire(&s.Exited) }
func (s *sitState) Tick() {
	s.ctx.movement.DoUpdate(s.ctx.input)
	s.ctx.jump.DoUpdate(s.ctx.dt)
	s.ctx.anim.Main.SetFloat(anim.ParamRelativeSpeed, s.ctx.motor.RelativeCharacterTilt())
	s.ctx.anim.Feet.SetFloat(anim.ParamRelativeTilt, s.ctx.motor.RelativeFeetTilt())
}

func (s *flipState) ID() fsm.StateID { return StateFlip }
func (s *flipState) Hash() anim.Hash { return anim.HashFlip }
func (s *flipState) OnEnter() {
	s.ctx.anim.Flip.ResetReady()
	s.ctx.anim.SetMainAnimatorState(s.Hash())
	event.Fire(&s.Entered)
}
func (s *flipState) OnExit() { event.Fire(&s.Exited) }
func (s *flipState) Tick() {}

func (s *saltoState) ID() fsm.StateID { return StateSalto }
func (s *saltoState) Hash() anim.Hash { return anim.HashSalto }
func (s *saltoState) OnEnter() {
	s.ctx.anim.SetMainAnimatorState(s.Hash())
	s.events.Close()
	s.events.Open()
	event.On(&s.events, &s.ctx.salto.RelativeOffsetChanged, func(v float64) {
		s.ctx.anim.Main.SetFloat(anim.ParamSaltoPreparingPower, v)
	})
	s.ctx.salto.DoSalto()
	event.Fire(&s.Entered)
}
func (s *saltoState) OnExit() {
	s.events.Close()
	s.ctx.salto.ResetActive()
	event.Fire(&s.Exited)
}
func (s *saltoState) Tick() {
	s.ctx.movement.DoUpdate(s.ctx.input)
	s.ctx.jump.DoUpdate(s.ctx.dt)
	s.ctx.salto.Update(s.ctx.dt)
}

// crashState hands the rider to the ragdoll. It has no animator flag and
// can never be left.
func (s *crashState) ID() fsm.StateID { return StateCrash }
func (s *crashState) Hash() anim.Hash { return anim.HashNone }
func (s *crashState) OnEnter() {
	velocity := s.ctx.motor.Rig().Wheel.Velocity().Mult(crashVelocityFactor)
	// Entering again on resume keeps the ragdoll already in flight.
	if s.ctx.ragdoll != nil && !s.ctx.motor.IsCrashed() {
		s.ctx.ragdoll.Init(velocity, s.ctx.detector.LastCollidedBodies())
		s.ctx.ragdoll.Enable()
	}
	s.ctx.motor.Crash()
	event.Fire(&s.Entered)
}
func (s *crashState) OnExit() { panic(ErrIllegalCrashExit) }
func (s *crashState) Tick() {
	s.ctx.movement.DoUpdate(s.ctx.input)
	s.ctx.jump.DoUpdate(s.ctx.dt)
}
