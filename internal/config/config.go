// Package config loads the on-disk representation of a mixer.Config from
// YAML. It is deliberately thin: the mixer owns the shape of what gets
// loaded, not where it persists.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/skyforge-fc/mixer/internal/airframe"
	"github.com/skyforge-fc/mixer/internal/mixer"
)

// motorFactorYAML mirrors airframe.MotorFactor with yaml tags; kept
// separate so the domain type stays free of serialization concerns.
type motorFactorYAML struct {
	Throttle float32 `yaml:"throttle"`
	Roll     float32 `yaml:"roll"`
	Pitch    float32 `yaml:"pitch"`
	Yaw      float32 `yaml:"yaw"`
}

type servoRuleYAML struct {
	TargetServo uint8 `yaml:"target_servo"`
	InputSource uint8 `yaml:"input_source"`
	RatePct     int16 `yaml:"rate"`
	Speed       uint8 `yaml:"speed"`
	MinPct      uint8 `yaml:"min_pct"`
	MaxPct      uint8 `yaml:"max_pct"`
	ModeBox     uint8 `yaml:"mode_box"`
}

type servoParamYAML struct {
	Min            int16  `yaml:"min"`
	Mid            int16  `yaml:"mid"`
	Max            int16  `yaml:"max"`
	RatePct        int16  `yaml:"rate"`
	ForwardChannel uint8  `yaml:"forward_channel"`
	ReversedMask   uint32 `yaml:"reversed_mask"`
}

// File is the on-disk YAML document: airframe selection, every behavioral
// knob in mixer.Config, and (only meaningful for CUSTOM_* kinds) the
// sentinel-terminated custom motor/servo tables.
type File struct {
	Airframe string `yaml:"airframe"`

	Motor struct {
		MinCommand  int16 `yaml:"min_command"`
		MinThrottle int16 `yaml:"min_throttle"`
		MaxThrottle int16 `yaml:"max_throttle"`
	} `yaml:"motor"`

	Flight3D struct {
		DeadbandLow      int16 `yaml:"deadband_low"`
		DeadbandHigh     int16 `yaml:"deadband_high"`
		Neutral          int16 `yaml:"neutral"`
		ThrottleDeadband int16 `yaml:"throttle_deadband"`
	} `yaml:"flight_3d"`

	Mixer struct {
		YawMotorDirection         int8    `yaml:"yaw_motor_direction"`
		YawJumpPreventionLimit    int16   `yaml:"yaw_jump_prevention_limit"`
		AirmodeSaturationLimitPct int16   `yaml:"airmode_saturation_limit_pct"`
		PIDAtMinThrottle          bool    `yaml:"pid_at_min_throttle"`
		TriUnarmedServo           bool    `yaml:"tri_unarmed_servo"`
		TriTailMotorThrustFactor  float32 `yaml:"tri_tail_motor_thrustfactor"`
		TriServoAngleAtMaxDdeg    int16   `yaml:"tri_servo_angle_at_max_ddeg"`
		TriTailServoSpeedDps      float32 `yaml:"tri_tail_servo_speed_dps"`
		ServoLowpassEnable        bool    `yaml:"servo_lowpass_enable"`
		ServoLowpassFreqHz        float32 `yaml:"servo_lowpass_freq_hz"`
		MidRC                     int16   `yaml:"mid_rc"`
		MinCheck                  int16   `yaml:"min_check"`
		GimbalMixTilt             bool    `yaml:"gimbal_mix_tilt"`
	} `yaml:"mixer"`

	LoopPeriod float32 `yaml:"loop_period"`
	Feature3D  bool    `yaml:"feature_3d"`

	CustomMotors []motorFactorYAML `yaml:"custom_motors,omitempty"`
	CustomServos []servoRuleYAML   `yaml:"custom_servos,omitempty"`
	ServoParams  []servoParamYAML  `yaml:"servo_params,omitempty"`
}

var airframeByName = map[string]airframe.Kind{
	"quad_x":          airframe.QuadX,
	"quad_p":          airframe.QuadP,
	"tri":             airframe.Tri,
	"bicopter":        airframe.Bicopter,
	"y4":              airframe.Y4,
	"y6":              airframe.Y6,
	"hex6_p":          airframe.Hex6P,
	"hex6_x":          airframe.Hex6X,
	"hex6_h":          airframe.Hex6H,
	"octo_x8":         airframe.OctoX8,
	"octo_flat_p":     airframe.OctoFlatP,
	"octo_flat_x":     airframe.OctoFlatX,
	"vtail4":          airframe.VTail4,
	"atail4":          airframe.ATail4,
	"dualcopter":      airframe.Dualcopter,
	"singlecopter":    airframe.Singlecopter,
	"flying_wing":     airframe.FlyingWing,
	"airplane":        airframe.Airplane,
	"gimbal":          airframe.Gimbal,
	"custom_motor":    airframe.CustomMotor,
	"custom_tri":      airframe.CustomTri,
	"custom_airplane": airframe.CustomAirplane,
}

// Load reads and parses a mixer.Config from a YAML file at path.
func Load(path string) (mixer.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return mixer.Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a mixer.Config from raw YAML bytes.
func Parse(data []byte) (mixer.Config, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return mixer.Config{}, fmt.Errorf("config: parsing yaml: %w", err)
	}
	return f.toMixerConfig()
}

func (f File) toMixerConfig() (mixer.Config, error) {
	kind, ok := airframeByName[f.Airframe]
	if !ok {
		return mixer.Config{}, fmt.Errorf("config: unknown airframe %q", f.Airframe)
	}

	cfg := mixer.Config{
		Kind: kind,
		Motor: mixer.MotorConfig{
			MinCommand:  f.Motor.MinCommand,
			MinThrottle: f.Motor.MinThrottle,
			MaxThrottle: f.Motor.MaxThrottle,
		},
		Flight3D: mixer.Flight3DConfig{
			DeadbandLow:      f.Flight3D.DeadbandLow,
			DeadbandHigh:     f.Flight3D.DeadbandHigh,
			Neutral:          f.Flight3D.Neutral,
			ThrottleDeadband: f.Flight3D.ThrottleDeadband,
		},
		Mixer: mixer.MixerConfig{
			YawMotorDirection:         f.Mixer.YawMotorDirection,
			YawJumpPreventionLimit:    f.Mixer.YawJumpPreventionLimit,
			AirmodeSaturationLimitPct: f.Mixer.AirmodeSaturationLimitPct,
			PIDAtMinThrottle:          f.Mixer.PIDAtMinThrottle,
			TriUnarmedServo:           f.Mixer.TriUnarmedServo,
			TriTailMotorThrustFactor:  f.Mixer.TriTailMotorThrustFactor,
			TriServoAngleAtMaxDdeg:    f.Mixer.TriServoAngleAtMaxDdeg,
			TriTailServoSpeedDps:      f.Mixer.TriTailServoSpeedDps,
			ServoLowpassEnable:        f.Mixer.ServoLowpassEnable,
			ServoLowpassFreqHz:        f.Mixer.ServoLowpassFreqHz,
			MidRC:                     f.Mixer.MidRC,
			MinCheck:                  f.Mixer.MinCheck,
			GimbalMixTilt:             f.Mixer.GimbalMixTilt,
		},
		LoopPeriod: f.LoopPeriod,
		Feature3D:  f.Feature3D,
	}

	for _, m := range f.CustomMotors {
		cfg.CustomMotors = append(cfg.CustomMotors, airframe.MotorFactor{
			Throttle: m.Throttle, Roll: m.Roll, Pitch: m.Pitch, Yaw: m.Yaw,
		})
		if m.Throttle == 0 {
			break
		}
	}
	for _, s := range f.CustomServos {
		cfg.CustomServos = append(cfg.CustomServos, airframe.ServoRule{
			TargetServo: airframe.InputSource(s.TargetServo),
			InputSource: airframe.InputSource(s.InputSource),
			RatePct:     s.RatePct,
			Speed:       s.Speed,
			MinPct:      s.MinPct,
			MaxPct:      s.MaxPct,
			ModeBox:     s.ModeBox,
		})
		if s.RatePct == 0 {
			break
		}
	}
	for _, sp := range f.ServoParams {
		cfg.ServoParams = append(cfg.ServoParams, mixer.ServoParam{
			Min: sp.Min, Mid: sp.Mid, Max: sp.Max,
			RatePct:        sp.RatePct,
			ForwardChannel: sp.ForwardChannel,
			ReversedMask:   sp.ReversedMask,
		})
	}

	return cfg, nil
}
