package crash

import (
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/monowheel/common"
	"github.com/milk9111/monowheel/event"
	"github.com/milk9111/monowheel/motor"
	"github.com/milk9111/monowheel/physics"
	"github.com/milk9111/monowheel/prefabs"
	"github.com/milk9111/monowheel/timer"
)

var (
	ErrMissingMotor = errors.New("motor is required")
	ErrMissingWheel = errors.New("wheel handle is required")
	ErrMissingTimer = errors.New("dangerous collisions timer is required")
)

const (
	overheatBaseFactor    = 0.33
	overheatCharacterLift = 1.25
)

// WheelHandle is the wheel side of the rig as the detector sees it.
type WheelHandle struct {
	Wheel     physics.Body
	Base      physics.Body // kicked back after an overheat crash
	Ground    physics.GroundSensor
	Colliders []*physics.CollisionDetector
	Areas     []*physics.CrashArea
}

type contact struct {
	enter bool
	info  physics.CollisionInfo
}

// Detector classifies contacts, falls, overheat and crash areas into a
// single latched CrashState.
type Detector struct {
	spec  prefabs.CrashDetectorSpec
	motor *motor.Motor
	timer *timer.Delay
	rnd   Rand

	wheel              WheelHandle
	characterColliders []*physics.CollisionDetector

	events      event.Scope
	initialized bool
	active      bool
	lastStep    uint64
	stepped     bool

	heightDetecting    bool
	collisionDetecting bool
	overheatDetecting  bool
	footMissDetecting  bool
	areaDetecting      bool
	grounded           bool
	jumping            bool
	awaitingNonTouch   bool

	startFall   cp.Vector
	endFall     cp.Vector
	fallHeight  float64
	warningTime float64

	fallProbability      float64
	collisionProbability float64

	// contacts is refilled by the collision callbacks and drained at the
	// start of every FixedStep; nothing keeps a reference past the step.
	contacts     []contact
	collided     []physics.CollisionInfo
	lastCollided []physics.CollisionInfo
	dangerous    []physics.Body

	crashState   CrashType
	warningState WarningType

	WarningStateChanged  event.Signal[WarningType]
	CrashStateChanged    event.Signal[CrashType]
	OverheatValueChanged event.Signal[float64]
	DangerousTouched     event.Signal[TouchDirection]
	DangerousNonTouched  event.Trigger
}

// New builds a detector. rnd may be nil, in which case a time-seeded
// source is used.
func New(spec prefabs.CrashDetectorSpec, m *motor.Motor, t *timer.Delay, rnd Rand) (*Detector, error) {
	if m == nil {
		return nil, fmt.Errorf("crash: %w", ErrMissingMotor)
	}
	if t == nil {
		return nil, fmt.Errorf("crash: %w", ErrMissingTimer)
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Detector{spec: spec, motor: m, timer: t, rnd: rnd, initialized: true}, nil
}

func (d *Detector) CrashState() CrashType { return d.crashState }
func (d *Detector) WarningState() WarningType { return d.warningState }
func (d *Detector) IsActive() bool { return d.active }

// LastCollidedParts are the contacts recorded since detection began.
func (d *Detector) LastCollidedParts() []physics.CollisionInfo { return d.lastCollided }

// LastCollidedBodies lists the bodies of LastCollidedParts.
func (d *Detector) LastCollidedBodies() []physics.Body {
	out := make([]physics.Body, 0, len(d.lastCollided))
	for _, info := range d.lastCollided {
		out = append(out, info.Part)
	}
	return out
}

func (d *Detector) FallCrashProbability() float64 { return d.fallProbability }
func (d *Detector) CollisionCrashProbability() float64 { return d.collisionProbability }
func (d *Detector) WarningTimer() float64 { return d.warningTime }

func (d *Detector) ModifiedOverheatSpeed() float64 {
	return (1 + d.motor.OverheatPercent()/100) * d.spec.OverheatIncreasingSpeed
}

func (d *Detector) ModifiedMinHeight() float64 {
	return d.spec.MinHeight * d.motor.Parameters().MinFallHeightMultiplier()
}

func (d *Detector) ModifiedMaxHeight() float64 {
	return d.spec.MaxHeight * d.motor.Parameters().MaxFallHeightMultiplier()
}

func (d *Detector) OnChangeWheelHandle(w WheelHandle) error {
	if w.Wheel == nil || w.Ground == nil {
		return fmt.Errorf("crash: %w", ErrMissingWheel)
	}
	d.wheel = w
	return nil
}

func (d *Detector) OnChangeCharacterHandle(colliders []*physics.CollisionDetector) {
	d.characterColliders = colliders
}

func (d *Detector) OnChangeReady() { d.Enable() }

func (d *Detector) OnChangePreparing() { d.Disable() }

// Enable subscribes to the rig and motor and starts every detector except
// height, which starts with the first airborne edge.
func (d *Detector) Enable() {
	if d.wheel.Wheel == nil {
		panic(fmt.Errorf("crash: enable before wheel handle: %w", ErrMissingWheel))
	}
	d.active = true
	d.grounded = d.wheel.Ground.IsGrounded()
	d.subscribe()
	d.beginDetection()
}

func (d *Detector) Disable() {
	d.endDetection()
	d.events.Close()
	d.active = false
	log.Printf("CrashDetector: disable")
}

// EnableDetection restarts detection including height tracking.
func (d *Detector) EnableDetection() {
	d.active = true
	d.beginDetection()
	d.beginHeightCrashDetect()
}

func (d *Detector) DisableDetection() {
	d.active = false
	d.endDetection()
	d.endHeightCrashDetect()
}

func (d *Detector) subscribe() {
	if d.events.Active() {
		return
	}
	log.Printf("CrashDetector: enable events")
	d.events.Open()

	for _, c := range d.colliders() {
		event.On(&d.events, &c.Enter, d.queueEnter)
		event.On(&d.events, &c.Exit, d.queueExit)
	}
	for _, a := range d.wheel.Areas {
		event.On(&d.events, &a.Entered, func(*physics.Part) { d.crashAreaEnter() })
	}

	event.On(&d.events, &d.motor.JumpStart, func(motor.JumpDirection) { d.jumping = true })
	event.On(&d.events, &d.motor.JumpPeak, func(float64) { d.startFall = d.wheel.Wheel.Position() })
	event.OnFire(&d.events, &d.motor.JumpEnd, func() {
		d.jumping = false
		d.endFall = d.wheel.Wheel.Position()
	})
	event.OnFire(&d.events, &d.timer.End, d.onTimerEnd)
}

func (d *Detector) colliders() []*physics.CollisionDetector {
	out := make([]*physics.CollisionDetector, 0, len(d.characterColliders)+len(d.wheel.Colliders))
	out = append(out, d.characterColliders...)
	return append(out, d.wheel.Colliders...)
}

func (d *Detector) beginDetection() {
	if d.crashState == None {
		d.reset()
	}
	d.collisionDetecting = true
	d.overheatDetecting = true
	d.footMissDetecting = true
	d.areaDetecting = true
}

func (d *Detector) endDetection() {
	d.collisionDetecting = false
	d.overheatDetecting = false
	d.footMissDetecting = false
	d.areaDetecting = false
}

func (d *Detector) reset() {
	d.crashState = None
	d.warningState = WarningNone
	d.CrashStateChanged.Emit(d.crashState)
	d.WarningStateChanged.Emit(d.warningState)

	d.startFall = cp.Vector{}
	d.endFall = cp.Vector{}
	d.heightDetecting = false
	d.lastCollided = d.lastCollided[:0]
	d.contacts = d.contacts[:0]
	d.collided = d.collided[:0]
	d.dangerous = d.dangerous[:0]
}

func (d *Detector) queueEnter(info physics.CollisionInfo) {
	if d.crashState != None {
		return
	}
	d.contacts = append(d.contacts, contact{enter: true, info: info})
}

func (d *Detector) queueExit(info physics.CollisionInfo) {
	if d.crashState != None {
		return
	}
	d.contacts = append(d.contacts, contact{enter: false, info: info})
}

// FixedStep evaluates one step: queued contacts, overheat, the dangerous
// touch debounce, then ground edges for height falls. Nothing runs once a
// crash is latched. A repeated call with the same step index is ignored.
func (d *Detector) FixedStep(step uint64, dt float64) {
	if d.crashState != None || !d.active {
		return
	}
	if d.stepped && step == d.lastStep {
		return
	}
	d.stepped = true
	d.lastStep = step

	phases := []func(){
		d.drainContacts,
		d.checkCollidedData,
		func() { d.updatePowerOverheatDetection(dt) },
		func() { d.timer.UpdateTimer(dt) },
		d.updateGroundEdge,
		d.updateFootMissDetection,
	}
	for _, phase := range phases {
		if d.crashState != None {
			return
		}
		phase()
	}
}

func (d *Detector) drainContacts() {
	for _, c := range d.contacts {
		if d.crashState != None {
			break
		}
		if c.enter {
			d.onCollisionEnter(c.info)
		} else {
			d.onCollisionExit(c.info)
		}
	}
	d.contacts = d.contacts[:0]
}

func (d *Detector) onCollisionEnter(info physics.CollisionInfo) {
	d.collided = append(d.collided, info)

	p := 1.0
	if !info.AlwaysCrash {
		p = (info.TranslateVelocity.Length() - d.spec.MinVelocity) / (d.spec.MaxVelocity - d.spec.MinVelocity)
	}
	d.collisionProbability = common.Clamp01(p)

	roll := d.rnd.Float64()
	grounded := d.wheel.Ground.IsGrounded()
	log.Printf("CrashDetector: collision enter part=%v velocity=%.2f normal=(%.2f, %.2f) grounded=%v p=%.2f roll=%.2f",
		info.Part, info.TranslateVelocity.Length(), info.Normal.X, info.Normal.Y, grounded, d.collisionProbability, roll)

	if roll < d.collisionProbability || !grounded {
		d.collisionCrashHandle()
		return
	}

	direction := TouchLeft
	if info.Normal.X < 0 {
		direction = TouchRight
	}
	if containsBody(d.dangerous, info.Part) {
		return
	}
	d.dangerous = append(d.dangerous, info.Part)
	if len(d.dangerous) > 1 {
		return
	}
	if d.awaitingNonTouch {
		// touched again before the debounce ran out
		d.awaitingNonTouch = false
		d.timer.DisableStopTimer()
		return
	}
	d.DangerousTouched.Emit(direction)
}

func (d *Detector) onCollisionExit(info physics.CollisionInfo) {
	i := indexOfBody(d.dangerous, info.Part)
	if i < 0 {
		return
	}
	d.dangerous = append(d.dangerous[:i], d.dangerous[i+1:]...)
	if len(d.dangerous) == 0 {
		d.awaitingNonTouch = true
		d.timer.EnableStopTimer()
	}
}

func (d *Detector) onTimerEnd() {
	if !d.awaitingNonTouch || d.crashState != None {
		return
	}
	d.awaitingNonTouch = false
	event.Fire(&d.DangerousNonTouched)
}

// checkCollidedData records this step's contacts. Contacts that left no
// dangerous touch behind, such as a hit that also separated within the
// step, count as a crash.
func (d *Detector) checkCollidedData() {
	if len(d.collided) == 0 {
		return
	}
	d.flushCollided()
	if len(d.dangerous) == 0 {
		d.collisionCrashHandle()
	}
}

func (d *Detector) flushCollided() {
	d.lastCollided = append(d.lastCollided, d.collided...)
	d.collided = d.collided[:0]
}

func (d *Detector) updateGroundEdge() {
	grounded := d.wheel.Ground.IsGrounded()
	if grounded == d.grounded {
		return
	}
	d.grounded = grounded
	if !grounded {
		d.beginHeightCrashDetect()
	} else {
		d.endHeightCrashDetect()
	}
}

func (d *Detector) beginHeightCrashDetect() {
	if d.heightDetecting {
		return
	}
	d.heightDetecting = true
	d.fallHeight = 0
	d.startFall = d.wheel.Wheel.Position()
}

func (d *Detector) endHeightCrashDetect() {
	if !d.heightDetecting {
		return
	}
	d.endFall = d.wheel.Wheel.Position()
	d.fallHeight = d.startFall.Y - d.endFall.Y

	minHeight, maxHeight := d.ModifiedMinHeight(), d.ModifiedMaxHeight()
	p := 0.0
	if maxHeight > minHeight {
		p = (d.fallHeight - minHeight) / (maxHeight - minHeight)
	}
	d.fallProbability = common.Clamp01(p)

	if d.rnd.Float64() < d.fallProbability {
		d.heightCrashHandle()
	}
	d.heightDetecting = false
}

func (d *Detector) FallHeight() float64 { return d.fallHeight }

func (d *Detector) heightCrashHandle() {
	if !d.heightDetecting || d.crashState != None {
		return
	}
	log.Printf("CrashDetector: height crash, fall %.2fm", d.fallHeight)
	d.crashState = BigHeightFall
	d.lastCollided = d.lastCollided[:0]
	d.CrashStateChanged.Emit(d.crashState)
}

func (d *Detector) collisionCrashHandle() {
	if !d.collisionDetecting || d.crashState != None {
		return
	}
	log.Printf("CrashDetector: obstacle collision crash")
	d.flushCollided()
	d.crashState = ObstacleCollision
	d.CrashStateChanged.Emit(d.crashState)
	d.updateVelocitiesAfterCollisionCrash()
}

func (d *Detector) updateVelocitiesAfterCollisionCrash() {
	for _, info := range d.lastCollided {
		for _, c := range d.colliders() {
			c.UpdatePhysicVelocitiesFromKinematicReflect(info.Part, info.TranslateVelocity, info.Normal)
		}
	}
}

func (d *Detector) updatePowerOverheatDetection(dt float64) {
	if !d.overheatDetecting {
		return
	}
	first := d.spec.FirstWarningDuration
	second := d.spec.SecondWarningDuration
	stored := d.warningState

	if d.motor.RelativePower() >= d.spec.ThresholdOfRelativePower {
		d.warningTime += d.ModifiedOverheatSpeed() * dt
		d.OverheatValueChanged.Emit(common.Clamp(d.warningTime, 0, first) / first)

		switch {
		case stored == WarningNone && d.warningTime >= first:
			d.setWarning(WarningFirst)
		case stored == WarningFirst && d.warningTime >= first+second:
			d.setWarning(WarningSecond)
		case stored == WarningSecond && d.warningTime >= first+second*2:
			d.setWarning(WarningNone)
			d.overheatCrashHandle()
		}
		return
	}

	d.warningTime = common.Clamp(d.warningTime-d.spec.OverheatDecreasingSpeed*dt, 0, first)
	d.OverheatValueChanged.Emit(d.warningTime / first)
	if stored != WarningNone {
		d.setWarning(WarningNone)
	}
}

func (d *Detector) setWarning(w WarningType) {
	d.warningState = w
	d.WarningStateChanged.Emit(w)
	log.Printf("CrashDetector: warning %s", w)
}

func (d *Detector) overheatCrashHandle() {
	if !d.overheatDetecting || d.crashState != None {
		return
	}
	log.Printf("CrashDetector: overheat crash")
	d.crashState = OverHeat
	d.CrashStateChanged.Emit(d.crashState)
	d.overheatDetecting = false
	d.updateVelocitiesAfterOverheatCrash()
}

func (d *Detector) updateVelocitiesAfterOverheatCrash() {
	kick := float64(d.motor.FaceDirection()) * d.motor.CurrentMotorForwardRelativeSpeed()
	character := cp.Vector{X: kick * d.spec.CrashCharacterVelocityFactor, Y: overheatCharacterLift}
	base := cp.Vector{X: -kick * d.spec.CrashBaseVelocityFactor * overheatBaseFactor}

	for _, c := range d.characterColliders {
		c.UpdatePhysicVelocitiesFromKinematic(nil, character)
	}
	for _, c := range d.wheel.Colliders {
		switch c.Body() {
		case d.wheel.Wheel:
			c.UpdatePhysicVelocitiesFromKinematic(nil, cp.Vector{})
		case d.wheel.Base:
			c.UpdatePhysicVelocitiesFromKinematic(nil, base)
		}
	}
}

// updateFootMissDetection is reserved: no foot miss rule is defined yet.
func (d *Detector) updateFootMissDetection() {}

func (d *Detector) crashAreaEnter() {
	if !d.areaDetecting || d.crashState != None {
		return
	}
	log.Printf("CrashDetector: crash area entered")
	d.crashState = CrashAreaEnter
	d.CrashStateChanged.Emit(d.crashState)

	v := d.wheel.Wheel.Velocity()
	for _, c := range d.colliders() {
		c.UpdatePhysicVelocitiesFromKinematic(nil, v)
	}
}

// ForceCrash latches a crash of the given type without side effects on
// the bodies.
func (d *Detector) ForceCrash(t CrashType) {
	if d.crashState != None || t == None {
		return
	}
	d.crashState = t
	d.CrashStateChanged.Emit(t)
}

func containsBody(bodies []physics.Body, b physics.Body) bool {
	return indexOfBody(bodies, b) >= 0
}

func indexOfBody(bodies []physics.Body, b physics.Body) int {
	for i, cur := range bodies {
		if cur == b {
			return i
		}
	}
	return -1
}
