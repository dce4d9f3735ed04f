package event

// Scope owns a set of subscriptions. Everything registered while a scope is
// open is released by Close, in reverse order of registration.
type Scope struct {
	releases []func()
	open     bool
}

// Open marks the scope active. Opening an already open scope is a no-op
// that keeps existing subscriptions.
func (s *Scope) Open() {
	s.open = true
}

// Active reports whether the scope is open.
func (s *Scope) Active() bool {
	return s != nil && s.open
}

// Add registers a release function to run on Close.
func (s *Scope) Add(release func()) {
	if s == nil || release == nil {
		return
	}
	s.releases = append(s.releases, release)
}

// Close runs every release function and empties the scope.
func (s *Scope) Close() {
	if s == nil {
		return
	}
	for i := len(s.releases) - 1; i >= 0; i-- {
		s.releases[i]()
	}
	s.releases = nil
	s.open = false
}

// Len returns the number of live subscriptions owned by the scope.
func (s *Scope) Len() int {
	if s == nil {
		return 0
	}
	return len(s.releases)
}

// On subscribes fn to sig for the lifetime of the scope.
func On[T any](s *Scope, sig *Signal[T], fn func(T)) {
	s.Add(sig.Subscribe(fn))
}

// OnFire subscribes a payload-less handler to a trigger.
func OnFire(s *Scope, t *Trigger, fn func()) {
	s.Add(t.Subscribe(func(struct{}) { fn() }))
}
