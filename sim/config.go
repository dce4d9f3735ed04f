package sim

import (
	"fmt"
	"log"

	"github.com/milk9111/monowheel/anim"
	"github.com/milk9111/monowheel/params"
	"github.com/milk9111/monowheel/physics"
	"github.com/milk9111/monowheel/prefabs"
)

// DefaultLevel is the level loaded when none is named.
const DefaultLevel = "level.yaml"

// Specs is every piece of tuning a simulation is built from.
type Specs struct {
	Gear      *prefabs.GearSpec
	Crash     *prefabs.CrashDetectorSpec
	Wheel     *prefabs.WheelSpec
	Character *prefabs.CharacterSpec
	Animation *prefabs.AnimationSpec
	Timers    *prefabs.TimersSpec
	Jump      *prefabs.JumpSpec
	Salto     *prefabs.SaltoSpec
	Distance  *prefabs.GroundDistanceSpec
	Level     *prefabs.LevelSpec
}

// LoadSpecs reads all specs through the prefab lookup, so files on disk
// win over the embedded copies.
func LoadSpecs(levelFile string) (*Specs, error) {
	if levelFile == "" {
		levelFile = DefaultLevel
	}
	var (
		s   Specs
		err error
	)
	if s.Gear, err = prefabs.LoadGearSpec(); err != nil {
		return nil, err
	}
	if s.Crash, err = prefabs.LoadCrashDetectorSpec(); err != nil {
		return nil, err
	}
	if s.Wheel, err = prefabs.LoadWheelSpec(); err != nil {
		return nil, err
	}
	if s.Character, err = prefabs.LoadCharacterSpec(); err != nil {
		return nil, err
	}
	if s.Animation, err = prefabs.LoadAnimationSpec(); err != nil {
		return nil, err
	}
	if s.Timers, err = prefabs.LoadTimersSpec(); err != nil {
		return nil, err
	}
	if s.Jump, err = prefabs.LoadJumpSpec(); err != nil {
		return nil, err
	}
	if s.Salto, err = prefabs.LoadSaltoSpec(); err != nil {
		return nil, err
	}
	if s.Distance, err = prefabs.LoadGroundDistanceSpec(); err != nil {
		return nil, err
	}
	if s.Level, err = prefabs.LoadLevelSpec(levelFile); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Specs) validate() error {
	switch {
	case s == nil:
		return fmt.Errorf("sim: %w", ErrMissingSpec)
	case s.Gear == nil || s.Crash == nil || s.Wheel == nil || s.Character == nil:
		return fmt.Errorf("sim: %w: gear, crash, wheel and character are required", ErrMissingSpec)
	case s.Timers == nil || s.Jump == nil || s.Salto == nil || s.Distance == nil || s.Level == nil:
		return fmt.Errorf("sim: %w: timers, jump, salto, distance and level are required", ErrMissingSpec)
	}
	return nil
}

func gear(g prefabs.GearParametersSpec) params.Gear {
	return params.Gear{
		Power:          g.Power,
		Size:           g.Size,
		Weight:         g.Weight,
		TorqueMoment:   g.TorqueMoment,
		DamperStrength: g.DamperStrength,
	}
}

func bounds(b prefabs.WheelBoundsSpec) params.Bounds {
	r := func(r prefabs.RangeSpec) params.Range { return params.Range{Min: r.Min, Max: r.Max} }
	return params.Bounds{
		Power:          r(b.Power),
		Size:           r(b.Size),
		Weight:         r(b.Weight),
		DamperStrength: r(b.DamperStrength),
	}
}

func modifiers(m prefabs.CharacterModifiersSpec) params.Modifiers {
	return params.Modifiers{
		TiltAccelerate:   m.TiltAccelerate,
		MaxForwardSpeed:  m.MaxForwardSpeed,
		MaxBackwardSpeed: m.MaxBackwardSpeed,
		JumpHeight:       m.JumpHeight,
		Stability:        m.Stability,
		SaltoSpeed:       m.SaltoSpeed,
	}
}

// parameters mounts the spec's current wheel on its reference wheel.
func (s *Specs) parameters() (*params.Parameters, error) {
	p, err := params.New(gear(s.Wheel.Base), bounds(s.Wheel.Bounds), modifiers(s.Character.Modifiers))
	if err != nil {
		return nil, err
	}
	p.SetWheel(gear(s.Wheel.Current))
	return p, nil
}

func (s *Specs) vehicleConfig(p *params.Parameters) physics.VehicleConfig {
	return physics.VehicleConfig{
		Body:                   s.Wheel.Body,
		Rider:                  s.Character.Body,
		Sensors:                s.Wheel.Sensors,
		Distance:               *s.Distance,
		Size:                   p.Size(),
		DamperStrength:         p.DamperStrength(),
		RelativeSize:           p.RelativeSize(),
		RelativeDamperStrength: p.RelativeDamperStrength(),
	}
}

// animationSettings maps clip names onto animator hashes. Unknown names
// are logged and skipped.
func (s *Specs) animationSettings() anim.Settings {
	if s.Animation == nil {
		return anim.DefaultSettings()
	}
	settings := anim.Settings{BlendTime: s.Animation.BlendTime, Clips: map[anim.Hash]anim.Clip{}}
	for name, clip := range s.Animation.Clips {
		h, ok := anim.HashByName(name)
		if !ok {
			log.Printf("Simulation: unknown animation clip %q", name)
			continue
		}
		settings.Clips[h] = anim.Clip{Duration: clip.Duration, EventAt: clip.EventAt}
	}
	return settings
}
