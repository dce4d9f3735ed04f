// Package anim is the animation sink driven by the player state machine:
// two layered animators holding mutually exclusive state flags and float
// parameters, plus clip playback that raises animation events.
package anim

// Hash identifies an animator state.
type Hash int

// HashNone marks states that have no animator flag of their own.
const HashNone Hash = -1

const (
	HashSit Hash = iota + 1
	HashStop
	HashMove
	HashFlip
	HashSalto
	HashRaisingFootBeforeStop
	HashRaisingFootAfterStop
	HashRaisingFootBeforeJump
	HashRaisingFootBeforeSit
	HashJumpPreparing

	// Base layer states reported back by the main animator.
	HashMovingBody
	HashMovingFeet
	HashStopDependsFromWheelSize
)

// stateHashes are the flags cleared when another state is selected.
var stateHashes = []Hash{
	HashSit,
	HashStop,
	HashMove,
	HashFlip,
	HashSalto,
	HashRaisingFootBeforeStop,
	HashRaisingFootAfterStop,
	HashRaisingFootBeforeJump,
	HashRaisingFootBeforeSit,
	HashJumpPreparing,
}

var hashNames = map[Hash]string{
	HashNone:                     "None",
	HashSit:                      "Sit",
	HashStop:                     "Stop",
	HashMove:                     "Move",
	HashFlip:                     "Flip",
	HashSalto:                    "Salto",
	HashRaisingFootBeforeStop:    "RaisingFootBeforeStop",
	HashRaisingFootAfterStop:     "RaisingFootAfterStop",
	HashRaisingFootBeforeJump:    "RaisingFootBeforeJump",
	HashRaisingFootBeforeSit:     "RaisingFootBeforeSit",
	HashJumpPreparing:            "JumpPreparing",
	HashMovingBody:               "Moving_Body",
	HashMovingFeet:               "Moving_Feet",
	HashStopDependsFromWheelSize: "Stop_DependsFromWheelSize",
}

func (h Hash) String() string {
	if name, ok := hashNames[h]; ok {
		return name
	}
	return "Unknown"
}

// HashByName resolves a clip or state name used in configuration.
func HashByName(name string) (Hash, bool) {
	for h, n := range hashNames {
		if n == name {
			return h, true
		}
	}
	return HashNone, false
}

// Param names a float animator parameter.
type Param string

const (
	ParamRelativeSpeed                Param = "RelativeSpeed"
	ParamRelativeNormalizedSpeed      Param = "RelativeNormalizedSpeed"
	ParamRelativeTilt                 Param = "RelativeTilt"
	ParamVerticalRelativeAcceleration Param = "VerticalRelativeAcceleration"
	ParamJumpPreparingPower           Param = "JumpPreparingPower"
	ParamSaltoPreparingPower          Param = "SaltoPreparingPower"
	ParamRelativeWheelSize            Param = "RelativeWheelSize"
	ParamSaltoRotateRelative          Param = "SaltoRotateRelative"
)
