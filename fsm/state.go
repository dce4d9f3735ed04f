// Package fsm implements a polled, guard-driven finite state machine.
//
// Transitions are predicates evaluated every Tick. Global ("any")
// transitions are checked before the transitions of the current state, and
// within each list the first registered predicate that holds wins.
package fsm

// StateID identifies a state and keys its outgoing transitions.
type StateID string

// State is a node in the machine. OnEnter and OnExit run exactly once per
// switch; Tick runs every machine tick while the state is current.
type State interface {
	ID() StateID
	Tick()
	OnEnter()
	OnExit()
}

// Predicate guards a transition. It must not have side effects.
type Predicate func() bool

// Transition is a guarded edge to a target state.
type Transition struct {
	To        State
	Condition Predicate
}

// Edge is a registered transition as seen from outside the machine. From is
// empty for any-state transitions.
type Edge struct {
	From StateID
	To   StateID
	Any  bool
}
