package fsm

import (
	"fmt"
	"testing"
)

type recordingState struct {
	id  StateID
	log *[]string
}

func (s *recordingState) ID() StateID { return s.id }
func (s *recordingState) Tick() { *s.log = append(*s.log, "tick:"+string(s.id)) }
func (s *recordingState) OnEnter() { *s.log = append(*s.log, "enter:"+string(s.id)) }
func (s *recordingState) OnExit() { *s.log = append(*s.log, "exit:"+string(s.id)) }

func newStates(log *[]string, ids ...StateID) []*recordingState {
	out := make([]*recordingState, 0, len(ids))
	for _, id := range ids {
		out = append(out, &recordingState{id: id, log: log})
	}
	return out
}

func assertLog(t *testing.T, got []string, want ...string) {
	t.Helper()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected log %v, got %v", want, got)
	}
}

func TestSetStateEnterExitPairs(t *testing.T) {
	var log []string
	s := newStates(&log, "a", "b")
	m := New()

	m.SetState(s[0])
	m.SetState(s[0])
	m.SetState(s[1])
	m.SetState(s[1])
	m.SetState(s[0])

	assertLog(t, log, "enter:a", "exit:a", "enter:b", "exit:b", "enter:a")
	if m.CurrentStateName() != "a" {
		t.Fatalf("expected current a, got %q", m.CurrentStateName())
	}
}

func TestTickInactiveDoesNothing(t *testing.T) {
	var log []string
	s := newStates(&log, "a", "b")
	m := New()
	m.SetState(s[0])
	m.AddTransition(s[0], s[1], func() bool { return true })
	log = nil

	m.Tick()
	if len(log) != 0 {
		t.Fatalf("inactive machine must not touch states, got %v", log)
	}
	if m.Current() != State(s[0]) {
		t.Fatalf("inactive machine must not switch state")
	}
}

func TestAnyTransitionsWinOverLocal(t *testing.T) {
	var log []string
	s := newStates(&log, "a", "local", "any1", "any2")
	m := New()
	m.Start()
	m.SetState(s[0])

	m.AddTransition(s[0], s[1], func() bool { return true })
	m.AddAnyTransition(s[2], func() bool { return true })
	m.AddAnyTransition(s[3], func() bool { return true })
	log = nil

	m.Tick()
	assertLog(t, log, "exit:a", "enter:any1", "tick:any1")
}

func TestLocalTransitionsFirstRegisteredWins(t *testing.T) {
	var log []string
	s := newStates(&log, "a", "b", "c")
	m := New()
	m.Start()
	m.SetState(s[0])

	never := func() bool { return false }
	always := func() bool { return true }
	m.AddAnyTransition(s[2], never)
	m.AddTransition(s[0], s[2], never)
	m.AddTransition(s[0], s[1], always)
	m.AddTransition(s[0], s[2], always)
	log = nil

	m.Tick()
	assertLog(t, log, "exit:a", "enter:b", "tick:b")

	// b has no outgoing edges: it just keeps ticking.
	log = nil
	m.Tick()
	assertLog(t, log, "tick:b")
}

func TestDisableTransitionsKeepsTicking(t *testing.T) {
	var log []string
	s := newStates(&log, "a", "b")
	m := New()
	m.Start()
	m.SetState(s[0])
	m.AddAnyTransition(s[1], func() bool { return true })
	m.DisableTransitions()
	log = nil

	m.Tick()
	assertLog(t, log, "tick:a")

	m.EnableTransitions()
	log = nil
	m.Tick()
	assertLog(t, log, "exit:a", "enter:b", "tick:b")
}

func TestSaveLoadStateReentersSavedState(t *testing.T) {
	var log []string
	s := newStates(&log, "a", "b")
	m := New()

	m.LoadState()
	if m.Current() != nil {
		t.Fatalf("LoadState without a saved state must be a no-op")
	}

	m.SetState(s[0])
	m.SaveState()
	m.SetState(s[1])
	log = nil

	m.LoadState()
	assertLog(t, log, "exit:b", "enter:a")

	// Loading while the saved state is current enters it again.
	log = nil
	m.LoadState()
	assertLog(t, log, "enter:a")
	if m.Current() != s[0] {
		t.Fatalf("expected a to stay current, got %v", m.Current())
	}
}

func TestClearTransitions(t *testing.T) {
	var log []string
	s := newStates(&log, "a", "b")
	m := New()
	m.Start()
	m.SetState(s[0])
	m.AddTransition(s[0], s[1], func() bool { return true })
	m.AddAnyTransition(s[1], func() bool { return true })

	if len(m.Edges()) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(m.Edges()))
	}

	m.ClearTransitions()
	log = nil
	m.Tick()
	assertLog(t, log, "tick:a")
	if len(m.Edges()) != 0 {
		t.Fatalf("expected no edges after clear")
	}
}

func TestEdgesOrder(t *testing.T) {
	var log []string
	s := newStates(&log, "a", "b", "c")
	m := New()
	m.AddTransition(s[1], s[2], nil)
	m.AddTransition(s[0], s[1], nil)
	m.AddAnyTransition(s[2], nil)
	m.AddTransition(s[1], s[0], nil)

	got := m.Edges()
	want := []Edge{
		{To: "c", Any: true},
		{From: "b", To: "c"},
		{From: "b", To: "a"},
		{From: "a", To: "b"},
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
