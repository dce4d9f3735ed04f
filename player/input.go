// Package player drives the rider: input, the helper controllers that turn
// input into motor commands, the gameplay states and the state machine
// wiring between them.
package player

// Input is one tick's snapshot of the controls. Level fields hold while a
// button is down; Pressed fields hold only on the tick it went down.
type Input struct {
	MoveLeft  bool
	MoveRight bool
	Jump      bool
	Sit       bool
	Flip      bool

	JumpPressed  bool
	SitPressed   bool
	SaltoPressed bool
}

// MoveX is the lateral input in [-1, 1].
func (in Input) MoveX() float64 {
	x := 0.0
	if in.MoveLeft {
		x--
	}
	if in.MoveRight {
		x++
	}
	return x
}

func (in Input) Lateral() bool { return in.MoveLeft || in.MoveRight }

// Moving reports any input that keeps the rider from stopping.
func (in Input) Moving() bool { return in.Lateral() || in.Jump }

// InputSource is polled once per tick. A press shorter than a tick may be
// missed.
type InputSource interface {
	Poll() Input
}

// InputFunc adapts a function to InputSource.
type InputFunc func() Input

func (f InputFunc) Poll() Input { return f() }

// HeldInput reports the same levels until they are changed. Jump and sit
// edges are derived from the previous poll; edges set by hand last one poll.
type HeldInput struct {
	Current Input
	last    Input
}

func (h *HeldInput) Poll() Input {
	in := h.Current
	in.JumpPressed = in.JumpPressed || (in.Jump && !h.last.Jump)
	in.SitPressed = in.SitPressed || (in.Sit && !h.last.Sit)
	h.last = h.Current
	h.Current.JumpPressed, h.Current.SitPressed, h.Current.SaltoPressed = false, false, false
	return in
}
