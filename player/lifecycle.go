package player

import (
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/monowheel/anim"
	"github.com/milk9111/monowheel/crash"
	"github.com/milk9111/monowheel/motor"
	"github.com/milk9111/monowheel/physics"
)

var (
	ErrNilWheel     = errors.New("player: nil wheel handle")
	ErrNilCharacter = errors.New("player: nil character handle")
)

// WheelHandle is the vehicle side of a spawned rider.
type WheelHandle struct {
	Rig   *motor.Rig
	Crash crash.WheelHandle
}

// CharacterHandle is the rider side of a spawned rider.
type CharacterHandle struct {
	Animation *anim.Controller
	Ragdoll   Ragdoll
	Colliders []*physics.CollisionDetector
}

// DataHandler receives the spawn handshake: wheel, then character, then
// ready. Preparing suspends a handler until the next ready.
type DataHandler interface {
	OnChangeWheelHandle(w *WheelHandle)
	OnChangeCharacterHandle(c *CharacterHandle)
	OnChangeReady()
	OnChangePreparing()
}

// Lifecycle broadcasts the handshake to its handlers in registration order.
type Lifecycle struct {
	handlers []DataHandler
	ready    bool
}

func (l *Lifecycle) Register(h DataHandler) {
	l.handlers = append(l.handlers, h)
}

func (l *Lifecycle) IsReady() bool { return l.ready }

func (l *Lifecycle) ChangeWheel(w *WheelHandle) {
	if w == nil || w.Rig == nil {
		panic(ErrNilWheel)
	}
	for _, h := range l.handlers {
		h.OnChangeWheelHandle(w)
	}
}

func (l *Lifecycle) ChangeCharacter(c *CharacterHandle) {
	if c == nil || c.Animation == nil {
		panic(ErrNilCharacter)
	}
	for _, h := range l.handlers {
		h.OnChangeCharacterHandle(c)
	}
}

func (l *Lifecycle) Ready() {
	l.ready = true
	for _, h := range l.handlers {
		h.OnChangeReady()
	}
	log.Printf("Lifecycle: ready, %d handlers", len(l.handlers))
}

func (l *Lifecycle) Preparing() {
	l.ready = false
	for _, h := range l.handlers {
		h.OnChangePreparing()
	}
	log.Printf("Lifecycle: preparing")
}

// MotorHandler adapts a motor to the handshake.
type MotorHandler struct {
	Motor *motor.Motor
}

func (h MotorHandler) OnChangeWheelHandle(w *WheelHandle) {
	if err := h.Motor.OnChangeWheelHandle(w.Rig); err != nil {
		panic(fmt.Errorf("player: %w", err))
	}
}

func (h MotorHandler) OnChangeCharacterHandle(*CharacterHandle) {}
func (h MotorHandler) OnChangeReady() { h.Motor.OnChangeReady() }
func (h MotorHandler) OnChangePreparing() { h.Motor.OnChangePreparing() }

// DetectorHandler adapts a crash detector to the handshake.
type DetectorHandler struct {
	Detector *crash.Detector
}

func (h DetectorHandler) OnChangeWheelHandle(w *WheelHandle) {
	if err := h.Detector.OnChangeWheelHandle(w.Crash); err != nil {
		panic(fmt.Errorf("player: %w", err))
	}
}

func (h DetectorHandler) OnChangeCharacterHandle(c *CharacterHandle) {
	h.Detector.OnChangeCharacterHandle(c.Colliders)
}

func (h DetectorHandler) OnChangeReady() { h.Detector.OnChangeReady() }
func (h DetectorHandler) OnChangePreparing() { h.Detector.OnChangePreparing() }
