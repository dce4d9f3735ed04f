package fsm

// Machine runs a single current state and switches between states when a
// transition predicate holds. The zero value is not usable; call New.
type Machine struct {
	current State
	saved   State

	transitions        map[StateID][]Transition
	currentTransitions []Transition
	anyTransitions     []Transition
	order              []StateID

	active             bool
	transitionsEnabled bool
}

// New returns a stopped machine with transition evaluation enabled.
func New() *Machine {
	return &Machine{
		transitions:        make(map[StateID][]Transition),
		transitionsEnabled: true,
	}
}

func (m *Machine) IsActive() bool { return m != nil && m.active }

func (m *Machine) TransitionsEnabled() bool { return m != nil && m.transitionsEnabled }

func (m *Machine) Current() State { return m.current }

func (m *Machine) Saved() State { return m.saved }

// Start enables ticking. The current state is untouched.
func (m *Machine) Start() { m.active = true }

// Stop disables ticking. The current state is untouched.
func (m *Machine) Stop() { m.active = false }

// EnableTransitions resumes transition evaluation.
func (m *Machine) EnableTransitions() { m.transitionsEnabled = true }

// DisableTransitions freezes the graph; the current state keeps ticking.
func (m *Machine) DisableTransitions() { m.transitionsEnabled = false }

// Tick evaluates transitions (when enabled), switches state if one fires and
// then ticks the current state. It does nothing while the machine is
// stopped.
func (m *Machine) Tick() {
	if m == nil || !m.active {
		return
	}

	if m.transitionsEnabled {
		if t, ok := m.nextTransition(); ok {
			m.SetState(t.To)
		}
	}

	if m.current != nil {
		m.current.Tick()
	}
}

// SetState switches to state. Switching to the current state is a no-op.
func (m *Machine) SetState(state State) {
	if state == m.current {
		return
	}

	if m.current != nil {
		m.current.OnExit()
	}
	m.current = state

	m.currentTransitions = nil
	if state == nil {
		return
	}
	m.currentTransitions = m.transitions[state.ID()]

	state.OnEnter()
}

// SaveState remembers the current state for a later LoadState.
func (m *Machine) SaveState() {
	m.saved = m.current
}

// LoadState restores the saved state through SetState. The restored
// state's OnEnter always runs again, also when it is still current; in that
// case its OnExit does not run.
func (m *Machine) LoadState() {
	if m.saved == nil {
		return
	}
	if m.saved == m.current {
		m.current = nil
	}
	m.SetState(m.saved)
}

// CurrentStateName returns the current state's ID, or "" before the first
// SetState.
func (m *Machine) CurrentStateName() string {
	if m == nil || m.current == nil {
		return ""
	}
	return string(m.current.ID())
}

// AddTransition registers an edge from -> to guarded by predicate.
func (m *Machine) AddTransition(from, to State, predicate Predicate) {
	id := from.ID()
	if _, ok := m.transitions[id]; !ok {
		m.order = append(m.order, id)
	}
	m.transitions[id] = append(m.transitions[id], Transition{To: to, Condition: predicate})

	if m.current != nil && m.current.ID() == id {
		m.currentTransitions = m.transitions[id]
	}
}

// AddAnyTransition registers an edge that is checked from every state,
// before the current state's own edges.
func (m *Machine) AddAnyTransition(to State, predicate Predicate) {
	m.anyTransitions = append(m.anyTransitions, Transition{To: to, Condition: predicate})
}

// ClearTransitions drops every registered edge.
func (m *Machine) ClearTransitions() {
	m.transitions = make(map[StateID][]Transition)
	m.currentTransitions = nil
	m.anyTransitions = nil
	m.order = nil
}

// Edges lists all registered edges: any-transitions first, then local
// transitions grouped by source in first-registration order.
func (m *Machine) Edges() []Edge {
	edges := make([]Edge, 0, len(m.anyTransitions)+len(m.order)*2)
	for _, t := range m.anyTransitions {
		edges = append(edges, Edge{To: t.To.ID(), Any: true})
	}
	for _, from := range m.order {
		for _, t := range m.transitions[from] {
			edges = append(edges, Edge{From: from, To: t.To.ID()})
		}
	}
	return edges
}

func (m *Machine) nextTransition() (Transition, bool) {
	for _, t := range m.anyTransitions {
		if t.Condition() {
			return t, true
		}
	}
	for _, t := range m.currentTransitions {
		if t.Condition() {
			return t, true
		}
	}
	return Transition{}, false
}
