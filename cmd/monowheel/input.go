package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/monowheel/player"
)

const stickDeadZone = 0.3

// readInput polls keyboard and the first gamepad. Levels replace the
// previous snapshot; a salto press stays pending until the controller
// has polled it.
func readInput(prev player.Input) player.Input {
	var in player.Input
	in.MoveLeft = ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft)
	in.MoveRight = ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight)
	in.Jump = ebiten.IsKeyPressed(ebiten.KeySpace)
	in.Sit = ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyDown)
	in.Flip = ebiten.IsKeyPressed(ebiten.KeyF)
	salto := inpututil.IsKeyJustPressed(ebiten.KeyW) || inpututil.IsKeyJustPressed(ebiten.KeyUp)

	if ids := ebiten.GamepadIDs(); len(ids) > 0 {
		gid := ids[0]
		x := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickHorizontal)
		in.MoveLeft = in.MoveLeft || x < -stickDeadZone
		in.MoveRight = in.MoveRight || x > stickDeadZone

		in.Jump = in.Jump || ebiten.IsStandardGamepadButtonPressed(gid, ebiten.StandardGamepadButtonRightBottom)
		in.Sit = in.Sit || ebiten.IsStandardGamepadButtonPressed(gid, ebiten.StandardGamepadButtonFrontBottomLeft)
		in.Flip = in.Flip || ebiten.IsStandardGamepadButtonPressed(gid, ebiten.StandardGamepadButtonRightLeft)
		salto = salto || inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonRightTop)
	}

	in.SaltoPressed = salto || prev.SaltoPressed
	return in
}
