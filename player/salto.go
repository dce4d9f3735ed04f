package player

import (
	"log"
	"math"

	"github.com/milk9111/monowheel/event"
	"github.com/milk9111/monowheel/motor"
	"github.com/milk9111/monowheel/prefabs"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// SaltoTracker turns the rider through a full rotation while airborne.
// The rotation runs forward relative to the face direction.
type SaltoTracker struct {
	spec  prefabs.SaltoSpec
	motor *motor.Motor

	tween        *gween.Tween
	direction    float64
	active       bool
	successfully bool

	RelativeOffsetChanged event.Signal[float64]
}

func NewSaltoTracker(spec prefabs.SaltoSpec, m *motor.Motor) *SaltoTracker {
	return &SaltoTracker{spec: spec, motor: m}
}

func (s *SaltoTracker) IsActive() bool { return s.active }
func (s *SaltoTracker) IsSuccessfully() bool { return s.successfully }

func (s *SaltoTracker) AllowTurnIfButtonPressedAgain() bool {
	return s.spec.AllowTurnIfButtonPressedAgain
}

// DoSalto starts a rotation. Its length is shortened by the salto speed
// multiplier.
func (s *SaltoTracker) DoSalto() {
	duration := s.spec.Duration
	if mul := s.motor.Parameters().SaltoSpeedMultiplier(); mul > 0 {
		duration /= mul
	}
	s.tween = gween.New(0, 1, float32(duration), ease.InOutQuad)
	s.direction = -float64(s.motor.FaceDirection())
	s.active = true
	s.successfully = false
	s.motor.BeginSaltoRotation()
	log.Printf("SaltoTracker: salto started, %.2fs", duration)
}

func (s *SaltoTracker) Update(dt float64) {
	if !s.active {
		return
	}
	v, finished := s.tween.Update(float32(dt))
	s.motor.SetSaltoRotation(s.direction * 2 * math.Pi * float64(v))
	s.RelativeOffsetChanged.Emit(float64(v))
	if !finished {
		return
	}
	s.active = false
	s.successfully = true
	s.motor.EndSaltoRotation()
	log.Printf("SaltoTracker: salto completed")
}

// ResetActive abandons a rotation in progress.
func (s *SaltoTracker) ResetActive() {
	if !s.active {
		return
	}
	s.active = false
	s.motor.EndSaltoRotation()
}

// ResetParent hands the bodies back to the motor after a rotation.
func (s *SaltoTracker) ResetParent() {
	s.motor.EndSaltoRotation()
}

func (s *SaltoTracker) SuccessfullyReset() { s.successfully = false }
