package sim

import (
	"fmt"
	"log"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/monowheel/player"
	"github.com/milk9111/monowheel/prefabs"
)

// scriptButtons are the globals a ride script sets.
var scriptButtons = []string{"left", "right", "jump", "sit", "flip", "salto"}

// ScriptInput is an input source driven by a tengo script. The script runs
// once per poll with the global t set to the clock, and reports the
// buttons it holds through boolean globals. Salto is pressed on the poll
// its global turns true.
type ScriptInput struct {
	name     string
	compiled *tengo.Compiled
	clock    func() float64

	last  player.Input
	salto bool
	note  string
	err   error
}

// NewScriptInput compiles the named script from the prefab scripts.
func NewScriptInput(name string, clock func() float64) (*ScriptInput, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, err
	}
	return CompileScriptInput(name, src, clock)
}

func CompileScriptInput(name string, src []byte, clock func() float64) (*ScriptInput, error) {
	script := tengo.NewScript(src)
	if err := script.Add("t", 0.0); err != nil {
		return nil, err
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("sim: compile script %s: %w", name, err)
	}

	// Globals only hold values after a run, so check the buttons on a
	// throwaway copy run at t=0.
	trial := compiled.Clone()
	if err := trial.Run(); err != nil {
		return nil, fmt.Errorf("sim: run script %s: %w", name, err)
	}
	for _, b := range scriptButtons {
		if !trial.IsDefined(b) {
			return nil, fmt.Errorf("sim: script %s does not define %q", name, b)
		}
	}
	return &ScriptInput{name: name, compiled: compiled, clock: clock}, nil
}

// Err is the last run error, if any.
func (s *ScriptInput) Err() error { return s.err }

// Note is the script's optional note global from the last poll.
func (s *ScriptInput) Note() string { return s.note }

// Poll runs the script. A failing run is logged once and keeps the last
// input.
func (s *ScriptInput) Poll() player.Input {
	if err := s.run(); err != nil {
		if s.err == nil {
			log.Printf("ScriptInput: %s: %v", s.name, err)
		}
		s.err = err
		in := s.last
		in.JumpPressed, in.SitPressed, in.SaltoPressed = false, false, false
		return in
	}
	s.err = nil

	c := s.compiled
	in := player.Input{
		MoveLeft:  c.Get("left").Bool(),
		MoveRight: c.Get("right").Bool(),
		Jump:      c.Get("jump").Bool(),
		Sit:       c.Get("sit").Bool(),
		Flip:      c.Get("flip").Bool(),
	}
	salto := c.Get("salto").Bool()
	in.JumpPressed = in.Jump && !s.last.Jump
	in.SitPressed = in.Sit && !s.last.Sit
	in.SaltoPressed = salto && !s.salto
	s.salto = salto
	s.last = in

	if c.IsDefined("note") {
		if note := c.Get("note").String(); note != s.note {
			s.note = note
			if note != "" {
				log.Printf("ScriptInput: %s", note)
			}
		}
	}
	return in
}

func (s *ScriptInput) run() error {
	if err := s.compiled.Set("t", s.clock()); err != nil {
		return err
	}
	return s.compiled.Run()
}
