package physics

import (
	"testing"

	"github.com/jakecoffman/cp"
)

func TestGroundCheckerEdges(t *testing.T) {
	g := NewGroundChecker("wheel", 0.3)
	on, off := 0, 0
	g.Edges().On.Subscribe(func(struct{}) { on++ })
	g.Edges().Off.Subscribe(func(struct{}) { off++ })

	g.apply(cp.Vector{Y: 1}, 1, nil)
	g.apply(cp.Vector{Y: 2}, 2, nil)
	if !g.IsGrounded() || on != 1 || off != 0 {
		t.Fatalf("expected a single On edge, got on=%d off=%d grounded=%v", on, off, g.IsGrounded())
	}

	n, ok := g.AverageNormal()
	if !ok || n.Y != 1 {
		t.Fatalf("expected averaged normal (0,1), got %v ok=%v", n, ok)
	}

	g.apply(cp.Vector{}, 0, nil)
	g.apply(cp.Vector{}, 0, nil)
	if g.IsGrounded() || off != 1 {
		t.Fatalf("expected a single Off edge, got off=%d", off)
	}
}

func TestGroundCheckerAnimatedEdges(t *testing.T) {
	g := NewGroundChecker("wheel", 0.3)
	platform := NewRigidBody("platform", cp.NewKinematicBody())

	var entered []Body
	left := 0
	g.Edges().AnimatedOn.Subscribe(func(b Body) { entered = append(entered, b) })
	g.Edges().AnimatedOff.Subscribe(func(struct{}) { left++ })

	g.apply(cp.Vector{Y: 1}, 1, platform)
	g.apply(cp.Vector{Y: 1}, 1, platform)
	g.apply(cp.Vector{Y: 1}, 1, nil)

	if len(entered) != 1 || entered[0] != Body(platform) {
		t.Fatalf("expected one AnimatedOn with the platform, got %v", entered)
	}
	if left != 1 {
		t.Fatalf("expected one AnimatedOff, got %d", left)
	}
	if g.AnimatedGround() != nil {
		t.Fatalf("animated ground must clear after leaving")
	}
}

func TestGroundCheckerAveragingDisabled(t *testing.T) {
	g := NewGroundChecker("base", 0.3)
	g.DisableAverageNormal()
	g.apply(cp.Vector{Y: 1}, 1, nil)
	if _, ok := g.AverageNormal(); ok {
		t.Fatalf("averaging disabled must report ok=false")
	}
}
