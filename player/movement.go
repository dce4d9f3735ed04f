package player

import "github.com/milk9111/monowheel/motor"

// Movement forwards lateral input to the motor.
type Movement struct {
	motor *motor.Motor
}

func NewMovement(m *motor.Motor) *Movement {
	return &Movement{motor: m}
}

func (mv *Movement) DoUpdate(in Input) {
	mv.motor.SetDirection(in.MoveX())
}
