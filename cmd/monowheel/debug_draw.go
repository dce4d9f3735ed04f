package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"golang.org/x/image/colornames"
)

// camera maps world meters (y up) to screen pixels (y down), centered on
// a focus point.
type camera struct {
	focus  cp.Vector
	scale  float64
	width  float64
	height float64
}

func (c camera) toScreen(p cp.Vector) (float32, float32) {
	x := (p.X-c.focus.X)*c.scale + c.width/2
	y := c.height/2 - (p.Y-c.focus.Y)*c.scale
	return float32(x), float32(y)
}

// spaceDrawer renders chipmunk shapes and joints as outlines.
type spaceDrawer struct {
	screen *ebiten.Image
	cam    camera
}

func drawSpace(screen *ebiten.Image, space *cp.Space, cam camera) {
	if screen == nil || space == nil {
		return
	}
	cp.DrawSpace(space, &spaceDrawer{screen: screen, cam: cam})
}

func (d *spaceDrawer) line(a, b cp.Vector, c color.Color) {
	x0, y0 := d.cam.toScreen(a)
	x1, y1 := d.cam.toScreen(b)
	vector.StrokeLine(d.screen, x0, y0, x1, y1, 1, c, true)
}

func (d *spaceDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(outline)
	steps := 20
	prev := cp.Vector{X: pos.X + radius, Y: pos.Y}
	for i := 1; i <= steps; i++ {
		th := float64(i) * (2 * math.Pi / float64(steps))
		cur := cp.Vector{X: pos.X + math.Cos(th)*radius, Y: pos.Y + math.Sin(th)*radius}
		d.line(prev, cur, c)
		prev = cur
	}
	// spoke
	d.line(pos, cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}, c)
}

func (d *spaceDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.line(a, b, fcolorToRGBA(fill))
}

func (d *spaceDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.line(a, b, fcolorToRGBA(outline))
}

func (d *spaceDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	c := fcolorToRGBA(outline)
	for i := 0; i < count; i++ {
		d.line(verts[i], verts[(i+1)%count], c)
	}
}

func (d *spaceDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	x, y := d.cam.toScreen(pos)
	vector.DrawFilledCircle(d.screen, x, y, float32(size/2), fcolorToRGBA(fill), true)
}

func (d *spaceDrawer) Flags() uint {
	return cp.DRAW_SHAPES | cp.DRAW_CONSTRAINTS | cp.DRAW_COLLISION_POINTS
}

func (d *spaceDrawer) OutlineColor() cp.FColor { return toFColor(colornames.Limegreen) }

func (d *spaceDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	switch {
	case shape == nil:
		return toFColor(colornames.White)
	case shape.Sensor():
		return toFColor(colornames.Gold)
	case shape.Body() != nil && shape.Body().GetType() == cp.BODY_STATIC:
		return toFColor(colornames.Lightskyblue)
	case shape.Body() != nil && shape.Body().GetType() == cp.BODY_KINEMATIC:
		return toFColor(colornames.Orange)
	}
	return toFColor(colornames.Violet)
}

func (d *spaceDrawer) ConstraintColor() cp.FColor { return toFColor(colornames.Lightgrey) }

func (d *spaceDrawer) CollisionPointColor() cp.FColor { return toFColor(colornames.Red) }

func (d *spaceDrawer) Data() interface{} { return nil }

func toFColor(c color.RGBA) cp.FColor {
	return cp.FColor{R: float32(c.R) / 255, G: float32(c.G) / 255, B: float32(c.B) / 255, A: float32(c.A) / 255}
}

func fcolorToRGBA(c cp.FColor) color.RGBA {
	clamp := func(v float32) uint8 {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		return uint8(v * 255)
	}
	return color.RGBA{R: clamp(c.R), G: clamp(c.G), B: clamp(c.B), A: clamp(c.A)}
}
