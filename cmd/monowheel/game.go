package main

import (
	"fmt"
	"image/color"
	"log"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/monowheel/crash"
	"github.com/milk9111/monowheel/player"
	"github.com/milk9111/monowheel/prefabs"
	"github.com/milk9111/monowheel/sim"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

const (
	screenWidth   = 1280
	screenHeight  = 720
	pixelsPerUnit = 80
	hudLineHeight = 16
)

type Game struct {
	levelName string
	debug     bool

	sim     *sim.Simulation
	input   *player.HeldInput
	watcher *prefabs.Watcher
	face    text.Face
	pause   *ebitenui.UI
	paused  bool
	lastErr error
}

func NewGame(levelName string, debug bool, watch bool) (*Game, error) {
	g := &Game{
		levelName: levelName,
		debug:     debug,
		input:     &player.HeldInput{},
		face:      text.NewGoXFace(basicfont.Face7x13),
	}
	g.pause = newPauseUI(g.face, g.resume, g.reloadFromMenu, g.crashFromMenu)

	if err := g.reload(); err != nil {
		return nil, err
	}

	if watch {
		w, err := prefabs.NewWatcher(prefabs.DiskRoot())
		if err != nil {
			log.Printf("Game: prefab watcher disabled: %v", err)
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

// reload rebuilds the simulation from the current specs. On failure the
// running simulation is kept.
func (g *Game) reload() error {
	specs, err := sim.LoadSpecs(g.levelName)
	if err != nil {
		return err
	}
	g.input.Current = player.Input{}
	s, err := sim.New(specs, sim.Options{Input: g.input})
	if err != nil {
		return err
	}
	g.sim = s
	g.paused = false
	return nil
}

func (g *Game) resume() {
	g.paused = false
	g.sim.Resume()
}

func (g *Game) reloadFromMenu() {
	if err := g.reload(); err != nil {
		g.lastErr = err
		log.Printf("Game: reload: %v", err)
	}
}

func (g *Game) crashFromMenu() {
	g.resume()
	g.sim.Controller.DebugCrash()
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("Game: %s changed, reloading", change.Name)
			g.reloadFromMenu()
		case err, ok := <-g.watcher.Errors:
			if ok {
				log.Printf("Game: watcher: %v", err)
			}
		default:
			return
		}
	}
}

func (g *Game) Update() error {
	g.pollWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		if g.paused {
			g.resume()
		} else {
			g.paused = true
			g.sim.Suspend()
		}
	}
	if g.paused {
		g.pause.Update()
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.reloadFromMenu()
	}
	if g.debug && inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.sim.Controller.DebugCrash()
	}

	g.input.Current = readInput(g.input.Current)
	g.sim.Advance(1 / float64(ebiten.TPS()))
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)

	st := g.sim.Status()
	cam := camera{focus: st.Position, scale: pixelsPerUnit, width: screenWidth, height: screenHeight}
	drawSpace(screen, g.sim.World.Space(), cam)

	g.drawHUD(screen, st)
	if g.paused {
		g.pause.Draw(screen)
	}
}

func (g *Game) drawHUD(screen *ebiten.Image, st sim.Status) {
	lines := []string{
		fmt.Sprintf("FPS %.0f  t=%.2f  state=%s", ebiten.ActualFPS(), st.Time, st.State),
		fmt.Sprintf("speed %.0f deg/s  tilt %.1f  face %d  grounded %v", st.Speed, st.Tilt, st.Face, st.Grounded),
		fmt.Sprintf("overheat %.0f%%  warning %s", st.Overheat, st.Warning),
	}
	if st.Crash != crash.None {
		lines = append(lines, fmt.Sprintf("CRASH: %s  (R to reload)", st.Crash))
	}
	if g.lastErr != nil {
		lines = append(lines, "reload failed: "+g.lastErr.Error())
	}

	clr := color.Color(colornames.White)
	if st.Warning != crash.WarningNone || st.Crash != crash.None {
		clr = colornames.Orangered
	}
	for i, l := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(8, float64(8+i*hudLineHeight))
		op.ColorScale.ScaleWithColor(clr)
		text.Draw(screen, l, g.face, op)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}
