package physics

import (
	"testing"

	"github.com/milk9111/monowheel/prefabs"
	"github.com/stretchr/testify/require"
)

func testVehicle(t *testing.T) *Vehicle {
	t.Helper()
	wheel, err := prefabs.LoadWheelSpec()
	require.NoError(t, err)
	character, err := prefabs.LoadCharacterSpec()
	require.NoError(t, err)
	distance, err := prefabs.LoadGroundDistanceSpec()
	require.NoError(t, err)

	v, err := NewVehicle(VehicleConfig{
		Body:     wheel.Body,
		Rider:    character.Body,
		Sensors:  wheel.Sensors,
		Distance: *distance,
	})
	require.NoError(t, err)
	return v
}

func flatLevel(name string) *prefabs.LevelSpec {
	return &prefabs.LevelSpec{
		Name:          name,
		Gravity:       -9.81,
		Friction:      0.9,
		FixedTimeStep: 0.02,
		Ground:        []prefabs.VectorSpec{{X: -10, Y: 0}, {X: 10, Y: 0}},
	}
}

func TestVehicleSettlesOnGround(t *testing.T) {
	spec, err := prefabs.LoadLevelSpec("level.yaml")
	require.NoError(t, err)

	w := NewWorld(spec.Gravity)
	w.SetLevel(NewLevel(spec))
	v := testVehicle(t)
	w.AddVehicle(v)

	landed := 0
	v.WheelGround.Edges().On.Subscribe(func(struct{}) { landed++ })

	for i := 0; i < 100; i++ {
		w.Step(spec.FixedTimeStep)
	}

	if !v.WheelGround.IsGrounded() {
		t.Fatalf("wheel never reached the ground, y=%.3f", v.Wheel.Body.Position().Y)
	}
	if landed == 0 {
		t.Fatalf("expected a ground On edge")
	}
	if y := v.Wheel.Body.Position().Y; y < 0.1 || y > 0.8 {
		t.Fatalf("wheel center at unexpected height %.3f", y)
	}
	if !v.Distance.zero.IsGroundDetected {
		t.Fatalf("zero point probe should see the ground")
	}
}

func TestCrashAreaEnter(t *testing.T) {
	spec := flatLevel("area")
	spec.CrashAreas = []prefabs.BoxSpec{{X: 2, Y: 1.5, Width: 2, Height: 2}}

	w := NewWorld(spec.Gravity)
	level := NewLevel(spec)
	w.SetLevel(level)
	v := testVehicle(t)
	w.AddVehicle(v)

	var parts []string
	level.CrashAreas[0].Entered.Subscribe(func(p *Part) { parts = append(parts, p.Name) })

	w.Step(spec.FixedTimeStep)
	if len(parts) == 0 {
		t.Fatalf("expected parts inside the crash area to be reported")
	}
}

func TestObstacleContactReachesDetector(t *testing.T) {
	spec := flatLevel("obstacle")
	// Overlaps the base at spawn.
	spec.Obstacles = []prefabs.ObstacleSpec{{
		BoxSpec:     prefabs.BoxSpec{X: 2, Y: 1.35, Width: 1, Height: 0.1},
		AlwaysCrash: true,
	}}

	w := NewWorld(spec.Gravity)
	w.SetLevel(NewLevel(spec))
	v := testVehicle(t)
	w.AddVehicle(v)

	var got []CollisionInfo
	for _, d := range v.Detectors() {
		d.Enter.Subscribe(func(info CollisionInfo) { got = append(got, info) })
	}

	w.Step(spec.FixedTimeStep)
	require.NotEmpty(t, got)
	if !got[0].AlwaysCrash || got[0].Obstacle == nil {
		t.Fatalf("unexpected collision info %+v", got[0])
	}
}

func TestTransformLinksToggle(t *testing.T) {
	w := NewWorld(-9.81)
	w.SetLevel(NewLevel(flatLevel("links")))
	v := testVehicle(t)
	w.AddVehicle(v)

	if !v.IsLinked() {
		t.Fatalf("rider must start linked")
	}
	v.DisableTransformLinks()
	v.DisableTransformLinks()
	if v.IsLinked() {
		t.Fatalf("links still enabled")
	}
	v.EnableTransformLinks()
	if !v.IsLinked() {
		t.Fatalf("links not restored")
	}

	NewRagdoll(v).Enable()
	w.Step(0.02)
}
