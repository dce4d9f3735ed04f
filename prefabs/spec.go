package prefabs

import (
	"errors"
	"fmt"

	"github.com/milk9111/monowheel/common"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSpec is wrapped by every Validate failure.
var ErrInvalidSpec = errors.New("invalid spec")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	if v, ok := any(&spec).(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return zero, fmt.Errorf("prefabs: validate %s: %w", filename, err)
		}
	}

	return spec, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidSpec}, args...)...)
}

type RangeSpec struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (r RangeSpec) Relative(v float64) float64 {
	return common.InverseLerp(r.Min, r.Max, v)
}

type VectorSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// GearSpec tunes the motor: speeds are wheel angular speeds in degrees per
// second, factors are scaled by the motor's accelerate multiplier.
type GearSpec struct {
	MaxForwardWheelSpeed             float64      `yaml:"max_forward_wheel_speed"`
	MaxBackwardWheelSpeed            float64      `yaml:"max_backward_wheel_speed"`
	WheelForwardAccelerateFactor     float64      `yaml:"wheel_forward_accelerate_factor"`
	WheelBackwardAccelerateFactor    float64      `yaml:"wheel_backward_accelerate_factor"`
	WheelDecelerateFactor            float64      `yaml:"wheel_decelerate_factor"`
	WheelForwardAccelerateFromSpeed  common.Curve `yaml:"wheel_forward_accelerate_from_speed"`
	WheelBackwardAccelerateFromSpeed common.Curve `yaml:"wheel_backward_accelerate_from_speed"`
	WheelDecelerateFromSpeed         common.Curve `yaml:"wheel_decelerate_from_speed"`
	TiltAccelerateFactor             float64      `yaml:"tilt_accelerate_factor"`
	TiltDecelerateFactor             float64      `yaml:"tilt_decelerate_factor"`
	TiltFromSpeed                    common.Curve `yaml:"tilt_from_speed"`
	ForwardMaxTiltAngle              float64      `yaml:"forward_max_tilt_angle"`
	BackwardMaxTiltAngle             float64      `yaml:"backward_max_tilt_angle"`
	ForwardJumpForceFactor           float64      `yaml:"forward_jump_force_factor"`
	BackwardJumpForceFactor          float64      `yaml:"backward_jump_force_factor"`
	JumpingDelay                     float64      `yaml:"jumping_delay"`
	BeforeSaltoLockTime              float64      `yaml:"before_salto_lock_time"`
	BaseJumpHeight                   float64      `yaml:"base_jump_height"`
	VelocityDumpIterations           int          `yaml:"velocity_dump_iterations"`
}

func (s *GearSpec) Validate() error {
	switch {
	case s.MaxForwardWheelSpeed <= 0 || s.MaxBackwardWheelSpeed <= 0:
		return invalid("gear: max wheel speeds must be positive")
	case s.BaseJumpHeight <= 0:
		return invalid("gear: base_jump_height must be positive")
	case s.JumpingDelay < 0 || s.BeforeSaltoLockTime < 0:
		return invalid("gear: delays must not be negative")
	}
	return nil
}

func LoadGearSpec() (*GearSpec, error) {
	spec, err := LoadSpec[GearSpec]("gear.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type CrashDetectorSpec struct {
	MinHeight                    float64 `yaml:"min_height"`
	MaxHeight                    float64 `yaml:"max_height"`
	MinVelocity                  float64 `yaml:"min_velocity"`
	MaxVelocity                  float64 `yaml:"max_velocity"`
	ThresholdOfRelativePower     float64 `yaml:"threshold_of_relative_power"`
	FirstWarningDuration         float64 `yaml:"first_warning_duration"`
	SecondWarningDuration        float64 `yaml:"second_warning_duration"`
	OverheatIncreasingSpeed      float64 `yaml:"overheat_increasing_speed"`
	OverheatDecreasingSpeed      float64 `yaml:"overheat_decreasing_speed"`
	CrashCharacterVelocityFactor float64 `yaml:"crash_character_velocity_factor"`
	CrashBaseVelocityFactor      float64 `yaml:"crash_base_velocity_factor"`
}

func (s *CrashDetectorSpec) Validate() error {
	switch {
	case s.MaxHeight <= s.MinHeight:
		return invalid("crash detector: max_height must exceed min_height")
	case s.MaxVelocity <= s.MinVelocity:
		return invalid("crash detector: max_velocity must exceed min_velocity")
	case s.FirstWarningDuration <= 0:
		return invalid("crash detector: first_warning_duration must be positive")
	}
	return nil
}

func LoadCrashDetectorSpec() (*CrashDetectorSpec, error) {
	spec, err := LoadSpec[CrashDetectorSpec]("crash_detector.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type GearParametersSpec struct {
	Power          float64 `yaml:"power"`
	Size           float64 `yaml:"size"`
	Weight         float64 `yaml:"weight"`
	TorqueMoment   float64 `yaml:"torque_moment"`
	DamperStrength float64 `yaml:"damper_strength"`
}

func (p GearParametersSpec) validate(name string) error {
	if p.Power <= 0 || p.Size <= 0 || p.Weight <= 0 || p.TorqueMoment <= 0 || p.DamperStrength <= 0 {
		return invalid("wheel: %s parameters must be positive", name)
	}
	return nil
}

type WheelBoundsSpec struct {
	Power          RangeSpec `yaml:"power"`
	Size           RangeSpec `yaml:"size"`
	Weight         RangeSpec `yaml:"weight"`
	DamperStrength RangeSpec `yaml:"damper_strength"`
}

// VehicleBodySpec is the rigid body layout of the monowheel. Lengths are
// meters, masses kilograms.
type VehicleBodySpec struct {
	Spawn            VectorSpec `yaml:"spawn"`
	WheelRadius      float64    `yaml:"wheel_radius"`
	WheelMass        float64    `yaml:"wheel_mass"`
	WheelFriction    float64    `yaml:"wheel_friction"`
	BaseWidth        float64    `yaml:"base_width"`
	BaseHeight       float64    `yaml:"base_height"`
	BaseMass         float64    `yaml:"base_mass"`
	DamperWidth      float64    `yaml:"damper_width"`
	DamperHeight     float64    `yaml:"damper_height"`
	DamperMass       float64    `yaml:"damper_mass"`
	SuspensionTravel float64    `yaml:"suspension_travel"`
	SpringStiffness  float64    `yaml:"spring_stiffness"`
	SpringDamping    float64    `yaml:"spring_damping"`
	MotorMaxForce    float64    `yaml:"motor_max_force"`
}

type SensorsSpec struct {
	StopVelocity        float64 `yaml:"stop_velocity"`
	StopAngularVelocity float64 `yaml:"stop_angular_velocity"`
	StopDuration        float64 `yaml:"stop_duration"`
	MaxAcceleration     float64 `yaml:"max_acceleration"`
	GroundNormalMinY    float64 `yaml:"ground_normal_min_y"`
}

type WheelSpec struct {
	Name    string             `yaml:"name"`
	Base    GearParametersSpec `yaml:"base"`
	Current GearParametersSpec `yaml:"current"`
	Bounds  WheelBoundsSpec    `yaml:"bounds"`
	Body    VehicleBodySpec    `yaml:"body"`
	Sensors SensorsSpec        `yaml:"sensors"`
}

func (s *WheelSpec) Validate() error {
	if err := s.Base.validate("base"); err != nil {
		return err
	}
	if err := s.Current.validate("current"); err != nil {
		return err
	}
	if s.Body.WheelRadius <= 0 || s.Body.WheelMass <= 0 || s.Body.BaseMass <= 0 || s.Body.DamperMass <= 0 {
		return invalid("wheel: body radius and masses must be positive")
	}
	return nil
}

func LoadWheelSpec() (*WheelSpec, error) {
	spec, err := LoadSpec[WheelSpec]("wheel.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type CharacterModifiersSpec struct {
	TiltAccelerate   float64 `yaml:"tilt_accelerate"`
	MaxForwardSpeed  float64 `yaml:"max_forward_speed"`
	MaxBackwardSpeed float64 `yaml:"max_backward_speed"`
	JumpHeight       float64 `yaml:"jump_height"`
	Stability        float64 `yaml:"stability"`
	SaltoSpeed       float64 `yaml:"salto_speed"`
}

type RiderBodySpec struct {
	TorsoWidth  float64 `yaml:"torso_width"`
	TorsoHeight float64 `yaml:"torso_height"`
	TorsoMass   float64 `yaml:"torso_mass"`
	HeadRadius  float64 `yaml:"head_radius"`
	HeadMass    float64 `yaml:"head_mass"`
	// LimbSwing limits how far the head may rotate relative to the torso
	// while the rider is linked, in radians.
	LimbSwing float64 `yaml:"limb_swing"`
}

type CharacterSpec struct {
	Name      string                 `yaml:"name"`
	Modifiers CharacterModifiersSpec `yaml:"modifiers"`
	Body      RiderBodySpec          `yaml:"body"`
}

func (s *CharacterSpec) Validate() error {
	if s.Modifiers.Stability <= 0 {
		return invalid("character: stability must be positive")
	}
	return nil
}

func LoadCharacterSpec() (*CharacterSpec, error) {
	spec, err := LoadSpec[CharacterSpec]("character.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type ClipSpec struct {
	Duration float64 `yaml:"duration"`
	EventAt  float64 `yaml:"event_at"`
}

type AnimationSpec struct {
	BlendTime float64             `yaml:"blend_time"`
	Clips     map[string]ClipSpec `yaml:"clips"`
}

func LoadAnimationSpec() (*AnimationSpec, error) {
	spec, err := LoadSpec[AnimationSpec]("animation.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type TimersSpec struct {
	BeforeStopDelay          float64 `yaml:"before_stop_delay"`
	DangerousCollisionsDelay float64 `yaml:"dangerous_collisions_delay"`
}

func LoadTimersSpec() (*TimersSpec, error) {
	spec, err := LoadSpec[TimersSpec]("timers.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type JumpSpec struct {
	IncreaseSpeed float64 `yaml:"increase_speed"`
	DecreaseSpeed float64 `yaml:"decrease_speed"`
	InitialPower  float64 `yaml:"initial_power"`
}

func (s *JumpSpec) Validate() error {
	if s.IncreaseSpeed <= 0 || s.DecreaseSpeed <= 0 {
		return invalid("jump: charge speeds must be positive")
	}
	return nil
}

func LoadJumpSpec() (*JumpSpec, error) {
	spec, err := LoadSpec[JumpSpec]("jump.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type SaltoSpec struct {
	Duration                      float64 `yaml:"duration"`
	AllowTurnIfButtonPressedAgain bool    `yaml:"allow_turn_if_button_pressed_again"`
}

func (s *SaltoSpec) Validate() error {
	if s.Duration <= 0 {
		return invalid("salto: duration must be positive")
	}
	return nil
}

func LoadSaltoSpec() (*SaltoSpec, error) {
	spec, err := LoadSpec[SaltoSpec]("salto.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type GroundDistanceSpec struct {
	RequestInterval                     float64    `yaml:"request_interval"`
	RayLength                           float64    `yaml:"ray_length"`
	AccuracyCalculation                 bool       `yaml:"accuracy_calculation"`
	UseReactionOffset                   bool       `yaml:"use_reaction_offset"`
	FeetAverageDistanceMultiplierBounds RangeSpec  `yaml:"feet_average_distance_multiplier_bounds"`
	SuspensionDamperReactionBounds      RangeSpec  `yaml:"suspension_damper_reaction_multiplier_bounds"`
	ZeroPoint                           VectorSpec `yaml:"zero_point"`
	FootRear                            VectorSpec `yaml:"foot_rear"`
	FootMiddle                          VectorSpec `yaml:"foot_middle"`
	FootFront                           VectorSpec `yaml:"foot_front"`
}

func LoadGroundDistanceSpec() (*GroundDistanceSpec, error) {
	spec, err := LoadSpec[GroundDistanceSpec]("ground_distance.yaml")
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type BoxSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type ObstacleSpec struct {
	BoxSpec     `yaml:",inline"`
	AlwaysCrash bool `yaml:"always_crash"`
}

type PlatformSpec struct {
	BoxSpec  `yaml:",inline"`
	Travel   VectorSpec `yaml:"travel"`
	Duration float64    `yaml:"duration"`
}

type LevelSpec struct {
	Name          string         `yaml:"name"`
	Gravity       float64        `yaml:"gravity"`
	Friction      float64        `yaml:"friction"`
	Ground        []VectorSpec   `yaml:"ground"`
	Obstacles     []ObstacleSpec `yaml:"obstacles"`
	CrashAreas    []BoxSpec      `yaml:"crash_areas"`
	Platforms     []PlatformSpec `yaml:"platforms"`
	FixedTimeStep float64        `yaml:"fixed_time_step"`
}

func (s *LevelSpec) Validate() error {
	if len(s.Ground) < 2 {
		return invalid("level %q: ground needs at least two points", s.Name)
	}
	if s.FixedTimeStep <= 0 {
		return invalid("level %q: fixed_time_step must be positive", s.Name)
	}
	return nil
}

func LoadLevelSpec(filename string) (*LevelSpec, error) {
	spec, err := LoadSpec[LevelSpec](filename)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}
