// Command monowheel is a debug viewer: it rides a level with keyboard or
// gamepad, draws the physics space and reloads when prefabs change.
package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/monowheel/prefabs"
	"github.com/milk9111/monowheel/sim"
)

func main() {
	levelName := flag.String("level", sim.DefaultLevel, "level spec in prefabs/")
	root := flag.String("prefabs", "prefabs", "directory searched before the embedded prefabs")
	debug := flag.Bool("debug", false, "enable debug keys (C crashes the rider)")
	watch := flag.Bool("watch", true, "reload when files under -prefabs change")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	prefabs.SetDiskRoot(*root)

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("monowheel")

	game, err := NewGame(*levelName, *debug, *watch)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
