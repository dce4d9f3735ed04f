// Package crash decides when the rider falls off: hard landings, obstacle
// hits, sustained overheat and designer-placed crash areas.
package crash

type CrashType int

const (
	None CrashType = iota
	BigHeightFall
	ObstacleCollision
	OverHeat
	FootMiss
	CrashAreaEnter
)

var crashTypeNames = [...]string{"None", "BigHeightFall", "ObstacleCollision", "OverHeat", "FootMiss", "CrashAreaEnter"}

func (c CrashType) String() string {
	if c < 0 || int(c) >= len(crashTypeNames) {
		return "Unknown"
	}
	return crashTypeNames[c]
}

type WarningType int

const (
	WarningNone WarningType = iota
	WarningFirst
	WarningSecond
)

func (w WarningType) String() string {
	switch w {
	case WarningFirst:
		return "First"
	case WarningSecond:
		return "Second"
	}
	return "None"
}

// TouchDirection is the side of the rig a dangerous contact came from.
type TouchDirection int

const (
	TouchLeft TouchDirection = iota
	TouchRight
)

func (d TouchDirection) String() string {
	if d == TouchRight {
		return "Right"
	}
	return "Left"
}

// Rand is the random source used to roll crash probabilities.
type Rand interface {
	Float64() float64
}
