// Package event provides typed observer lists and scoped subscriptions.
package event

// Signal is an ordered list of observers for a single event type.
// Handlers run synchronously in subscription order.
type Signal[T any] struct {
	handlers []*handler[T]
}

type handler[T any] struct {
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is safe to call more than once.
func (s *Signal[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if s == nil || fn == nil {
		return func() {}
	}
	h := &handler[T]{fn: fn}
	s.handlers = append(s.handlers, h)
	return func() { s.remove(h) }
}

func (s *Signal[T]) remove(h *handler[T]) {
	for i, cur := range s.handlers {
		if cur == h {
			s.handlers = append(s.handlers[:i:i], s.handlers[i+1:]...)
			return
		}
	}
}

// Emit calls every handler subscribed at the time of the call.
func (s *Signal[T]) Emit(v T) {
	if s == nil || len(s.handlers) == 0 {
		return
	}
	snapshot := append([]*handler[T](nil), s.handlers...)
	for _, h := range snapshot {
		h.fn(v)
	}
}

// Len returns the number of subscribed handlers.
func (s *Signal[T]) Len() int {
	if s == nil {
		return 0
	}
	return len(s.handlers)
}

// Trigger is a Signal without a payload.
type Trigger = Signal[struct{}]

// Fire emits a payload-less trigger.
func Fire(t *Trigger) {
	t.Emit(struct{}{})
}
