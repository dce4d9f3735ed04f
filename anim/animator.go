package anim

// Animator is one animation layer: named boolean state flags and float
// parameters. It is write-mostly; readers are the viewer and tests.
type Animator struct {
	name   string
	bools  map[Hash]bool
	floats map[Param]float64
}

func NewAnimator(name string) *Animator {
	return &Animator{
		name:   name,
		bools:  make(map[Hash]bool),
		floats: make(map[Param]float64),
	}
}

func (a *Animator) Name() string {
	if a == nil {
		return ""
	}
	return a.name
}

func (a *Animator) SetBool(h Hash, v bool) {
	if a == nil {
		return
	}
	a.bools[h] = v
}

func (a *Animator) Bool(h Hash) bool {
	if a == nil {
		return false
	}
	return a.bools[h]
}

func (a *Animator) SetFloat(p Param, v float64) {
	if a == nil {
		return
	}
	a.floats[p] = v
}

func (a *Animator) Float(p Param) float64 {
	if a == nil {
		return 0
	}
	return a.floats[p]
}

// ActiveState returns the single state flag currently set, or HashNone.
func (a *Animator) ActiveState() Hash {
	if a == nil {
		return HashNone
	}
	for _, h := range stateHashes {
		if a.bools[h] {
			return h
		}
	}
	return HashNone
}
