package anim

import "github.com/milk9111/monowheel/event"

// EventHandler receives an animation event raised at a fixed point of a
// clip. States poll IsReady to learn that the event happened.
type EventHandler struct {
	name string

	// Operation runs first whenever the event fires.
	Operation func()
	// Fired is emitted after the handler becomes ready.
	Fired event.Trigger

	callback func()
	ready    bool
}

func NewEventHandler(name string) *EventHandler {
	return &EventHandler{name: name}
}

func (h *EventHandler) Name() string { return h.name }

func (h *EventHandler) IsReady() bool {
	return h != nil && h.ready
}

func (h *EventHandler) ResetReady() {
	if h == nil {
		return
	}
	h.ready = false
}

// OnNext registers a callback invoked once, on the next Fire.
func (h *EventHandler) OnNext(fn func()) {
	if h == nil {
		return
	}
	h.callback = fn
}

// Fire raises the event.
func (h *EventHandler) Fire() {
	if h == nil {
		return
	}
	if h.Operation != nil {
		h.Operation()
	}
	h.ready = true
	if cb := h.callback; cb != nil {
		h.callback = nil
		cb()
	}
	event.Fire(&h.Fired)
}
