// Command monosim rides a level headless, driven by a tengo input script,
// and logs every state change and a periodic status line.
package main

import (
	"flag"
	"log"
	"math/rand"

	"github.com/milk9111/monowheel/crash"
	"github.com/milk9111/monowheel/prefabs"
	"github.com/milk9111/monowheel/sim"
)

func main() {
	levelName := flag.String("level", sim.DefaultLevel, "level spec in prefabs/")
	scriptName := flag.String("script", "ride.tengo", "input script in prefabs/scripts/")
	seconds := flag.Float64("seconds", 10, "simulated seconds to run")
	seed := flag.Int64("seed", 1, "crash roll seed")
	every := flag.Float64("every", 0.5, "status log interval in seconds, 0 disables")
	root := flag.String("prefabs", "prefabs", "directory searched before the embedded prefabs")
	flag.Parse()

	prefabs.SetDiskRoot(*root)

	specs, err := sim.LoadSpecs(*levelName)
	if err != nil {
		log.Fatal(err)
	}

	var s *sim.Simulation
	input, err := sim.NewScriptInput(*scriptName, func() float64 { return s.World.Elapsed() })
	if err != nil {
		log.Fatal(err)
	}
	s, err = sim.New(specs, sim.Options{Input: input, Rand: rand.New(rand.NewSource(*seed))})
	if err != nil {
		log.Fatal(err)
	}

	steps := int(*seconds / s.FixedTimeStep())
	nextStatus := 0.0
	for i := 0; i < steps; i++ {
		s.Step()
		s.Motor.Update(s.FixedTimeStep())
		if err := input.Err(); err != nil {
			log.Fatalf("script %s: %v", *scriptName, err)
		}

		st := s.Status()
		if *every > 0 && st.Time >= nextStatus {
			log.Printf("%s", st)
			nextStatus += *every
		}
		if st.Crash != crash.None && s.Controller.CurrentStateName() == "Crash" {
			log.Printf("crashed: %s", st)
			return
		}
	}
	log.Printf("finished: %s", s.Status())
}
