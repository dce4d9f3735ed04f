package player

import (
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/monowheel/crash"
	"github.com/milk9111/monowheel/event"
	"github.com/milk9111/monowheel/fsm"
	"github.com/milk9111/monowheel/motor"
	"github.com/milk9111/monowheel/timer"
)

var ErrNotInitialized = errors.New("player: controller is not initialized")

// Deps are the collaborators the states drive.
type Deps struct {
	Input        InputSource
	Motor        *motor.Motor
	Detector     *crash.Detector
	BeforeStop   *timer.Delay
	JumpPower    *JumpPower
	Movement     *Movement
	Salto        *SaltoTracker
	Acceleration *AccelerationProvider
}

func (d Deps) validate() error {
	switch {
	case d.Input == nil:
		return fmt.Errorf("%w: missing input", ErrNotInitialized)
	case d.Motor == nil:
		return fmt.Errorf("%w: missing motor", ErrNotInitialized)
	case d.Detector == nil:
		return fmt.Errorf("%w: missing crash detector", ErrNotInitialized)
	case d.BeforeStop == nil:
		return fmt.Errorf("%w: missing before stop timer", ErrNotInitialized)
	case d.JumpPower == nil || d.Movement == nil || d.Salto == nil || d.Acceleration == nil:
		return fmt.Errorf("%w: missing helper controller", ErrNotInitialized)
	}
	return nil
}

// Controller owns the gameplay state machine. It is set up once the
// character handle and the ready signal have both arrived, in either order.
type Controller struct {
	machine *fsm.Machine
	deps    Deps
	ctx     *stateContext
	events  event.Scope

	initialized bool
	readyWait   bool

	move                   *moveState
	stop                   *stopState
	preparingStopWithTimer *preparingStopWithTimerState
	raisingFootBeforeStop  *raisingFootBeforeStopState
	raisingFootAfterStop   *raisingFootAfterStopState
	moveToJumpPreparing    *moveToJumpPreparingState
	jumpPreparingToMove    *jumpPreparingToMoveState
	jumping                *jumpingState
	sit                    *sitState
	flip                   *flipState
	salto                  *saltoState
	crash                  *crashState

	// StateChanged is emitted after every switch with the new state's ID.
	StateChanged event.Signal[fsm.StateID]
}

func NewController() *Controller {
	m := fsm.New()
	m.Stop()
	return &Controller{machine: m, ctx: &stateContext{}}
}

// Init binds the collaborators. Only the first call has an effect.
func (c *Controller) Init(d Deps) error {
	if c.initialized {
		return nil
	}
	if err := d.validate(); err != nil {
		return err
	}
	c.initialized = true
	c.deps = d

	c.ctx.motor = d.Motor
	c.ctx.detector = d.Detector
	c.ctx.beforeStop = d.BeforeStop
	c.ctx.jump = d.JumpPower
	c.ctx.movement = d.Movement
	c.ctx.salto = d.Salto
	c.ctx.acceleration = d.Acceleration

	if c.readyWait {
		c.readyWait = false
		c.setupStateMachine()
		c.Start()
	}
	return nil
}

func (c *Controller) OnChangeWheelHandle(*WheelHandle) {}

func (c *Controller) OnChangeCharacterHandle(h *CharacterHandle) {
	c.ctx.anim = h.Animation
	c.ctx.ragdoll = h.Ragdoll
}

func (c *Controller) OnChangeReady() {
	if !c.initialized {
		c.readyWait = true
		return
	}
	c.setupStateMachine()
	c.Start()
}

func (c *Controller) OnChangePreparing() {
	c.machine.SaveState()
	c.machine.Stop()
}

func (c *Controller) Start() { c.machine.Start() }
func (c *Controller) Stop() { c.machine.Stop() }
func (c *Controller) EnableTransitions() { c.machine.EnableTransitions() }
func (c *Controller) DisableTransitions() { c.machine.DisableTransitions() }

func (c *Controller) IsActive() bool { return c.machine.IsActive() }
func (c *Controller) CurrentStateName() string { return c.machine.CurrentStateName() }

// CurrentState returns the current state ID, or "" before setup.
func (c *Controller) CurrentState() fsm.StateID {
	if s := c.machine.Current(); s != nil {
		return s.ID()
	}
	return ""
}

// Machine exposes the underlying state machine for inspection.
func (c *Controller) Machine() *fsm.Machine { return c.machine }

// DebugCrash forces the crash state.
func (c *Controller) DebugCrash() {
	if c.crash == nil {
		return
	}
	c.setState(c.crash)
}

// Input is the snapshot taken by the last Tick.
func (c *Controller) Input() Input { return c.ctx.input }

// IsJumpingEnded reports whether the current jump has landed.
func (c *Controller) IsJumpingEnded() bool { return c.jumping != nil && c.jumping.IsJumpingEnded() }

// Tick polls input, evaluates transitions and ticks the current state.
func (c *Controller) Tick(dt float64) {
	if !c.machine.IsActive() {
		return
	}
	c.ctx.input = c.deps.Input.Poll()
	c.ctx.dt = dt
	c.deps.Acceleration.Update(dt)

	before := c.machine.Current()
	c.machine.Tick()
	if after := c.machine.Current(); after != before && after != nil {
		c.StateChanged.Emit(after.ID())
	}
}

func (c *Controller) setState(s fsm.State) {
	before := c.machine.Current()
	c.machine.SetState(s)
	if s != before && s != nil {
		c.StateChanged.Emit(s.ID())
	}
}

// setupStateMachine builds the states once, registers the transitions and
// then either enters Move on first setup or restores the state saved by
// OnChangePreparing.
func (c *Controller) setupStateMachine() {
	if c.ctx.anim == nil {
		panic(fmt.Errorf("player: setup without character handle: %w", ErrNotInitialized))
	}
	log.Printf("PlayerController: setup state machine")

	resume := c.machine.Saved() != nil
	if c.move == nil {
		c.setupStates()
	}
	c.setupTransitions()

	if resume {
		c.machine.LoadState()
		return
	}
	c.setState(c.move)
}

func (c *Controller) setupStates() {
	ctx := c.ctx
	c.move = &moveState{ctx: ctx}
	c.stop = &stopState{ctx: ctx}
	c.preparingStopWithTimer = &preparingStopWithTimerState{ctx: ctx}
	c.raisingFootBeforeStop = &raisingFootBeforeStopState{ctx: ctx}
	c.raisingFootAfterStop = &raisingFootAfterStopState{ctx: ctx}
	c.moveToJumpPreparing = &moveToJumpPreparingState{ctx: ctx}
	c.jumpPreparingToMove = &jumpPreparingToMoveState{ctx: ctx}
	c.jumping = &jumpingState{ctx: ctx}
	c.sit = &sitState{ctx: ctx}
	c.flip = &flipState{ctx: ctx}
	c.salto = &saltoState{ctx: ctx}
	c.crash = &crashState{ctx: ctx}

	ctx.anim.Flip.Operation = ctx.motor.ToggleFlipDirection

	c.events.Open()
	event.OnFire(&c.events, &c.crash.Entered, func() {
		c.machine.DisableTransitions()
		log.Printf("PlayerController: crashed (%s), transitions disabled", c.deps.Detector.CrashState())
	})
}

func (c *Controller) setupTransitions() {
	m := c.machine
	m.ClearTransitions()

	m.AddAnyTransition(c.crash, c.anyToCrash)

	m.AddTransition(c.move, c.preparingStopWithTimer, c.moveToPreparingStopWithTimer)
	m.AddTransition(c.preparingStopWithTimer, c.raisingFootBeforeStop, c.preparingStopWithTimerToRaisingFootBeforeStop)
	m.AddTransition(c.preparingStopWithTimer, c.move, c.preparingStopWithTimerToMove)
	m.AddTransition(c.raisingFootBeforeStop, c.stop, c.raisingFootBeforeStopToStop)
	m.AddTransition(c.stop, c.raisingFootAfterStop, c.stopToRaisingFootAfterStop)
	m.AddTransition(c.raisingFootAfterStop, c.move, c.raisingFootAfterStopToMove)

	m.AddTransition(c.move, c.moveToJumpPreparing, c.moveToMoveToJumpPreparing)
	m.AddTransition(c.moveToJumpPreparing, c.jumping, c.jumpReleased)
	m.AddTransition(c.moveToJumpPreparing, c.jumpPreparingToMove, c.jumpNotAllowed)
	m.AddTransition(c.jumpPreparingToMove, c.moveToJumpPreparing, c.jumpAllowed)
	m.AddTransition(c.jumpPreparingToMove, c.jumping, c.jumpReleased)
	m.AddTransition(c.jumpPreparingToMove, c.move, c.jumpPreparingToMoveToMove)
	m.AddTransition(c.jumping, c.move, c.jumpingToMove)

	m.AddTransition(c.move, c.sit, c.moveToSit)
	m.AddTransition(c.sit, c.move, c.sitToMove)

	m.AddTransition(c.move, c.flip, c.moveToFlip)
	m.AddTransition(c.flip, c.move, c.flipToMove)

	m.AddTransition(c.jumping, c.salto, c.jumpingToSalto)
	m.AddTransition(c.salto, c.jumping, c.saltoToJumping)
}

func (c *Controller) anyToCrash() bool {
	return c.deps.Detector.CrashState() != crash.None
}

func (c *Controller) moveToPreparingStopWithTimer() bool {
	return !c.ctx.input.Moving() && c.ctx.motor.IsStopped() && c.ctx.anim.IsMoveAnimatorState()
}

func (c *Controller) preparingStopWithTimerToRaisingFootBeforeStop() bool {
	return !c.ctx.beforeStop.IsActive()
}

func (c *Controller) preparingStopWithTimerToMove() bool {
	return c.ctx.input.Moving() || !c.ctx.motor.IsStopped()
}

func (c *Controller) raisingFootBeforeStopToStop() bool {
	return c.ctx.anim.RaiseFootBeforeStop.IsReady()
}

func (c *Controller) stopToRaisingFootAfterStop() bool {
	return (c.ctx.input.Moving() || !c.ctx.motor.IsStopped()) && c.ctx.anim.IsStopDependsFromWheelSize()
}

func (c *Controller) raisingFootAfterStopToMove() bool {
	return c.ctx.anim.RaiseFootAfterStop.IsReady()
}

func (c *Controller) moveToMoveToJumpPreparing() bool {
	return c.ctx.input.Jump && c.ctx.motor.CanJump() && c.ctx.anim.IsMoveAnimatorState()
}

func (c *Controller) jumpReleased() bool {
	return !c.ctx.input.Jump && c.ctx.motor.CanJump()
}

func (c *Controller) jumpNotAllowed() bool { return !c.ctx.motor.CanJump() }
func (c *Controller) jumpAllowed() bool { return c.ctx.motor.CanJump() }

func (c *Controller) jumpPreparingToMoveToMove() bool { return !c.ctx.jump.IsActive() }

func (c *Controller) jumpingToMove() bool { return c.jumping.IsJumpingEnded() }

func (c *Controller) moveToSit() bool {
	return c.ctx.input.Lateral() && c.ctx.input.Sit && c.ctx.anim.IsMoveAnimatorState()
}

func (c *Controller) sitToMove() bool {
	return !c.ctx.input.Sit || c.ctx.motor.IsStopped()
}

func (c *Controller) moveToFlip() bool {
	return c.ctx.input.Lateral() && c.ctx.input.Flip && c.ctx.anim.IsMoveAnimatorState()
}

func (c *Controller) flipToMove() bool { return c.ctx.anim.Flip.IsReady() }

func (c *Controller) jumpingToSalto() bool {
	return c.ctx.input.SaltoPressed && c.ctx.motor.CanSalto() && !c.jumping.SaltoLocked()
}

func (c *Controller) saltoToJumping() bool { return c.ctx.salto.IsSuccessfully() }

// States lists every state in registration order.
func (c *Controller) States() []fsm.State {
	if c.move == nil {
		return nil
	}
	return []fsm.State{
		c.move, c.stop, c.preparingStopWithTimer, c.raisingFootBeforeStop, c.raisingFootAfterStop,
		c.moveToJumpPreparing, c.jumpPreparingToMove, c.jumping, c.sit, c.flip, c.salto, c.crash,
	}
}
