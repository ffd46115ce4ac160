// Package mixer converts throttle and three-axis attitude demands into
// per-motor ESC commands and per-servo PWM setpoints, honoring the
// geometry of the configured airframe.
package mixer

import (
	"github.com/skyforge-fc/mixer/internal/airframe"
	"gonum.org/v1/gonum/mat"
)

// MaxMotors and MaxServos bound the fixed-size output arrays; no
// allocation happens past New, matching the no-suspension-point,
// no-allocation control-loop model.
const (
	MaxMotors     = 8
	MaxServos     = 8
	MaxServoRules = 36
	yawCurveSize  = 100
)

// ServoParam holds the per-servo hardware calibration: its PWM travel
// range, a post-scale rate, an optional RC pass-through channel, and
// which input sources get inverted for this servo.
type ServoParam struct {
	Min            int16
	Mid            int16
	Max            int16
	RatePct        int16
	ForwardChannel uint8 // 0xFF disables pass-through
	ReversedMask   uint32
}

const NoForwardChannel uint8 = 0xFF

// MotorConfig bounds the ESC command range.
type MotorConfig struct {
	MinCommand  int16 // disarmed / motor-stop value
	MinThrottle int16 // idle value while armed
	MaxThrottle int16
}

// Flight3DConfig configures the deadband around mid-stick for
// bidirectional (3D) ESCs.
type Flight3DConfig struct {
	DeadbandLow      int16 // upper bound of the negative-side PWM range
	DeadbandHigh     int16 // lower bound of the positive-side PWM range
	Neutral          int16 // disarmed value in 3D mode
	ThrottleDeadband int16 // half-width of the RC-stick deadband around MidRC
}

// MixerConfig carries the behavioral knobs that are not geometry.
type MixerConfig struct {
	YawMotorDirection         int8 // -1 or +1
	YawJumpPreventionLimit    int16
	AirmodeSaturationLimitPct int16
	PIDAtMinThrottle          bool
	TriUnarmedServo           bool
	TriTailMotorThrustFactor  float32
	TriServoAngleAtMaxDdeg    int16
	TriTailServoSpeedDps      float32
	ServoLowpassEnable        bool
	ServoLowpassFreqHz        float32

	// MidRC is the center value of the RC PWM range (typically 1500),
	// used to center both the 3D throttle deadband and the servo mixer's
	// RC_* input channels.
	MidRC int16
	// MinCheck is the raw throttle value below which the stick is
	// considered "at minimum" for motor-stop purposes.
	MinCheck int16
	// GimbalMixTilt selects the blended two-axis camera-tilt overlay
	// instead of the default independent pitch/roll overlay.
	GimbalMixTilt bool
}

// Config aggregates everything New needs to build a Mixer: airframe
// selection, behavioral knobs, and (for CUSTOM kinds) the user-supplied
// mix tables. It is what internal/config's YAML loader produces.
type Config struct {
	Kind         airframe.Kind
	Motor        MotorConfig
	Flight3D     Flight3DConfig
	Mixer        MixerConfig
	CustomMotors []airframe.MotorFactor
	CustomServos []airframe.ServoRule
	ServoParams  []ServoParam
	// LoopPeriod is the control loop period in seconds, used to design
	// the optional servo lowpass filter at init.
	LoopPeriod float32
	// Feature3D mirrors the persistent FEATURE_3D config bit at the time
	// the geometry is compiled: when set and the airframe has more than
	// one motor, the compiled pitch/roll/yaw coefficients are halved (see
	// spec's mixer-gain invariant). This is distinct from Inputs.Feature3D,
	// which is read every cycle for the throttle deadband/yaw-negation
	// logic that does vary per cycle.
	Feature3D bool
}

// Inputs is the snapshot of collaborator state the mixer reads at the
// top of Mix. Nothing here is retained past one call.
type Inputs struct {
	ThrottleCmd   int16
	AxisPID       [3]int16 // roll, pitch, yaw
	RCCommand     [4]int16 // roll, pitch, yaw, throttle
	RCData        [8]uint16
	AttitudePitch int16 // decidegrees
	AttitudeRoll  int16 // decidegrees

	Armed                    bool
	FailsafeActive           bool
	AirmodeActive            bool
	PassthroughActive        bool
	Feature3D                bool
	FeatureMotorStop         bool
	FeatureOneshot125        bool
	FeatureServoTilt         bool
	FeatureChannelForwarding bool
	CamstabActive            bool

	RCModeActive func(box uint8) bool
	DT           float32 // seconds since last cycle
}

// Outputs is the result of one Mix call: fixed-size slices view into
// Mixer's own backing arrays, valid until the next Mix call.
type Outputs struct {
	Motors            []int16
	Servos            []int16
	MotorLimitReached bool
}

// tricopterState is the precomputed yaw-force curve plus the first-order
// virtual-servo model, carried across cycles.
type tricopterState struct {
	yawForceCurve   [yawCurveSize]int16
	maxYawForce     int16
	thrustFactor    float32
	maxAngleDdeg    int16
	virtualAngleDeg float32
	built           bool
}

// Mixer is the per-cycle scratch and persistent memory for one airframe
// configuration. It deliberately carries no mutex: spec-mandated
// single-threaded, no-suspension-point execution means the owning control
// loop is the only caller, so a lock would only hide a real concurrency
// bug rather than prevent one.
type Mixer struct {
	kind        airframe.Kind
	motorConfig MotorConfig
	flight3D    Flight3DConfig
	cfg         MixerConfig
	feature3D   bool // persistent FEATURE_3D bit captured at New time

	geometry    airframe.Geometry
	servoParams [MaxServos]ServoParam

	motorCount int
	servoCount int

	motors         [MaxMotors]int16
	motorsDisarmed [MaxMotors]int16
	servos         [MaxServos]int16

	servoRuleOutputs [MaxServoRules]float32
	throttlePrev     int16 // last raw RC throttle that resolved a 3D deadband side

	tri tricopterState

	lowpass [MaxServos]*biquadLowpass

	// motorThrottleFactor is a mutable working copy of geometry.Motors[*].Throttle;
	// the tricopter pre-hook overwrites index 0 each cycle without touching the
	// shared, immutable Geometry.
	motorThrottleFactor [MaxMotors]float32

	// demandVec/rpyVec are reused every cycle so the RPY matrix multiply
	// performs no per-call allocation.
	demandVec *mat.VecDense
	rpyVec    *mat.VecDense
}
