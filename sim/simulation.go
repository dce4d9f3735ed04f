// Package sim assembles a playable monowheel: physics world and level,
// vehicle, motor, crash detector and the player controller, stepped at a
// fixed rate.
package sim

import (
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/monowheel/anim"
	"github.com/milk9111/monowheel/crash"
	"github.com/milk9111/monowheel/fsm"
	"github.com/milk9111/monowheel/motor"
	"github.com/milk9111/monowheel/params"
	"github.com/milk9111/monowheel/physics"
	"github.com/milk9111/monowheel/player"
	"github.com/milk9111/monowheel/timer"
)

var ErrMissingSpec = errors.New("missing spec")

// maxStepsPerAdvance bounds catch-up after a long frame.
const maxStepsPerAdvance = 5

type Options struct {
	Input player.InputSource
	// Rand drives crash rolls. Nil uses a time seeded source.
	Rand crash.Rand
}

// Simulation owns one rider on one level.
type Simulation struct {
	Specs *Specs

	World   *physics.World
	Level   *physics.Level
	Vehicle *physics.Vehicle
	Ragdoll *physics.Ragdoll

	Params     *params.Parameters
	Motor      *motor.Motor
	Detector   *crash.Detector
	Anim       *anim.Controller
	Controller *player.Controller
	Lifecycle  *player.Lifecycle

	scheduler   *Scheduler
	dt          float64
	step        uint64
	accumulator float64
}

// Status is a snapshot for logs and the HUD.
type Status struct {
	Step      uint64
	Time      float64
	State     string
	Position  cp.Vector
	Velocity  cp.Vector
	Speed     float64
	Tilt      float64
	Overheat  float64
	Warning   crash.WarningType
	Crash     crash.CrashType
	Grounded  bool
	Face      int
	Suspended bool
}

func New(specs *Specs, opts Options) (*Simulation, error) {
	if err := specs.validate(); err != nil {
		return nil, err
	}
	if opts.Input == nil {
		return nil, fmt.Errorf("sim: %w", player.ErrNotInitialized)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(rand.Int63()))
	}

	p, err := specs.parameters()
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	vehicle, err := physics.NewVehicle(specs.vehicleConfig(p))
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	m, err := motor.New(*specs.Gear, p)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	detector, err := crash.New(*specs.Crash, m, timer.NewDangerousCollisions(specs.Timers.DangerousCollisionsDelay), opts.Rand)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}

	s := &Simulation{
		Specs:      specs,
		World:      physics.NewWorld(specs.Level.Gravity),
		Level:      physics.NewLevel(specs.Level),
		Vehicle:    vehicle,
		Ragdoll:    physics.NewRagdoll(vehicle),
		Params:     p,
		Motor:      m,
		Detector:   detector,
		Anim:       anim.NewController(specs.animationSettings()),
		Controller: player.NewController(),
		Lifecycle:  &player.Lifecycle{},
		dt:         specs.Level.FixedTimeStep,
	}
	s.World.SetLevel(s.Level)
	s.World.AddVehicle(vehicle)

	err = s.Controller.Init(player.Deps{
		Input:        opts.Input,
		Motor:        m,
		Detector:     detector,
		BeforeStop:   timer.NewBeforeStop(specs.Timers.BeforeStopDelay),
		JumpPower:    player.NewJumpPower(*specs.Jump),
		Movement:     player.NewMovement(m),
		Salto:        player.NewSaltoTracker(*specs.Salto, m),
		Acceleration: player.NewAccelerationProvider(vehicle.Base.Body, specs.Wheel.Sensors.MaxAcceleration),
	})
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	s.Controller.StateChanged.Subscribe(func(id fsm.StateID) {
		log.Printf("Simulation: step %d state %s", s.step, id)
	})
	detector.CrashStateChanged.Subscribe(func(c crash.CrashType) {
		if c != crash.None {
			log.Printf("Simulation: step %d crash %s", s.step, c)
		}
	})

	s.scheduler = NewScheduler(
		detector,
		StageFunc(func(_ uint64, dt float64) { s.Controller.Tick(dt) }),
		m,
		StageFunc(func(_ uint64, dt float64) { s.World.Step(dt) }),
		StageFunc(func(_ uint64, dt float64) { s.Anim.Update(dt) }),
	)

	s.Lifecycle.Register(player.MotorHandler{Motor: m})
	s.Lifecycle.Register(player.DetectorHandler{Detector: detector})
	s.Lifecycle.Register(s.Controller)
	s.Lifecycle.ChangeWheel(&player.WheelHandle{
		Rig: motor.VehicleRig(vehicle),
		Crash: crash.WheelHandle{
			Wheel:     vehicle.Wheel.Body,
			Base:      vehicle.Base.Body,
			Ground:    vehicle.WheelGround,
			Colliders: partColliders(vehicle.Wheel, vehicle.Damper, vehicle.Base),
			Areas:     s.Level.CrashAreas,
		},
	})
	s.Lifecycle.ChangeCharacter(&player.CharacterHandle{
		Animation: s.Anim,
		Ragdoll:   s.Ragdoll,
		Colliders: partColliders(vehicle.Torso, vehicle.Head),
	})
	s.Lifecycle.Ready()

	log.Printf("Simulation: level %q ready, dt=%.3f", specs.Level.Name, s.dt)
	return s, nil
}

func partColliders(parts ...*physics.Part) []*physics.CollisionDetector {
	var out []*physics.CollisionDetector
	for _, p := range parts {
		if p.Collisions != nil {
			out = append(out, p.Collisions)
		}
	}
	return out
}

// FixedTimeStep is the length of one Step in seconds.
func (s *Simulation) FixedTimeStep() float64 { return s.dt }

func (s *Simulation) Steps() uint64 { return s.step }

// Step runs one fixed step: detector, controller, motor, physics, then
// animation.
func (s *Simulation) Step() {
	s.step++
	s.scheduler.FixedStep(s.step, s.dt)
}

// Advance runs as many fixed steps as frame seconds cover, then the
// motor's frame update. It returns the number of steps run. Nothing moves
// while suspended.
func (s *Simulation) Advance(frame float64) int {
	if s.Suspended() {
		return 0
	}
	s.accumulator += frame
	steps := 0
	for s.accumulator >= s.dt && steps < maxStepsPerAdvance {
		s.Step()
		s.accumulator -= s.dt
		steps++
	}
	if steps == maxStepsPerAdvance {
		s.accumulator = 0
	}
	s.Motor.Update(frame)
	return steps
}

// Suspend pauses the rider; the state machine remembers its state.
func (s *Simulation) Suspend() {
	if s.Suspended() {
		return
	}
	s.Lifecycle.Preparing()
}

// Resume continues after Suspend from the remembered state.
func (s *Simulation) Resume() {
	if !s.Suspended() {
		return
	}
	s.Lifecycle.Ready()
}

func (s *Simulation) Suspended() bool { return !s.Lifecycle.IsReady() }

func (s *Simulation) Status() Status {
	wheel := s.Vehicle.Wheel.Body
	return Status{
		Step:      s.step,
		Time:      s.World.Elapsed(),
		State:     s.Controller.CurrentStateName(),
		Position:  wheel.Position(),
		Velocity:  wheel.Velocity(),
		Speed:     s.Motor.CurrentMotorAbsoluteSpeed(),
		Tilt:      s.Motor.Tilt(),
		Overheat:  s.Motor.OverheatPercent(),
		Warning:   s.Detector.WarningState(),
		Crash:     s.Detector.CrashState(),
		Grounded:  s.Vehicle.WheelGround.IsGrounded(),
		Face:      s.Motor.FaceDirection(),
		Suspended: s.Suspended(),
	}
}

func (st Status) String() string {
	return fmt.Sprintf("t=%.2f state=%s x=%.2f y=%.2f vx=%.2f speed=%.0f overheat=%.0f warning=%s crash=%s",
		st.Time, st.State, st.Position.X, st.Position.Y, st.Velocity.X, st.Speed, st.Overheat, st.Warning, st.Crash)
}
