package mixer

import (
	"fmt"

	"github.com/skyforge-fc/mixer/internal/airframe"
	"gonum.org/v1/gonum/mat"
)

// New builds a Mixer from cfg. It resolves the airframe geometry
// (builtin or custom), validates the configuration, and precomputes the
// tricopter yaw force curve where applicable. An invalid configuration
// returns a *ConfigError and no Mixer, so the caller can refuse to arm
// rather than run the per-cycle path against bad geometry.
func New(cfg Config) (*Mixer, error) {
	geometry, err := resolveGeometry(cfg.Kind, cfg.CustomMotors, cfg.CustomServos)
	if err != nil {
		return nil, &ConfigError{Reason: "resolving airframe geometry", Err: err}
	}

	motorCount := len(geometry.Motors)
	if motorCount > MaxMotors {
		return nil, &ConfigError{Reason: fmt.Sprintf("airframe has %d motors", motorCount), Err: ErrTooManyMotors}
	}
	if cfg.Feature3D && motorCount > 1 {
		// In 3D mode the mixer gain has to be halved: the same rpy
		// authority would otherwise saturate twice as fast on a
		// bidirectional ESC's half-sized forward/reverse throttle bands.
		geometry.RPY.Scale(0.5, geometry.RPY)
	}
	if cfg.Kind.UsesServos() && len(geometry.Servos) == 0 {
		return nil, &ConfigError{Reason: "airframe requires servos", Err: ErrServosRequired}
	}
	if len(geometry.Servos) > MaxServoRules {
		return nil, &ConfigError{Reason: fmt.Sprintf("%d servo rules", len(geometry.Servos)), Err: ErrTooManyServoRules}
	}
	for i, r := range geometry.Servos {
		if int(r.TargetServo) >= MaxServos || r.InputSource >= airframe.InputSourceCount {
			return nil, &ConfigError{Reason: fmt.Sprintf("servo rule %d", i), Err: ErrBadServoRule}
		}
	}
	servoCount := len(cfg.ServoParams)
	if servoCount > MaxServos {
		return nil, &ConfigError{Reason: fmt.Sprintf("%d servo params", servoCount), Err: ErrTooManyServos}
	}

	m := &Mixer{
		kind:        cfg.Kind,
		motorConfig: cfg.Motor,
		flight3D:    cfg.Flight3D,
		cfg:         cfg.Mixer,
		feature3D:   cfg.Feature3D,
		geometry:    geometry,
		motorCount:  motorCount,
		servoCount:  servoCount,
	}
	if motorCount > 0 {
		m.demandVec = mat.NewVecDense(3, nil)
		m.rpyVec = mat.NewVecDense(motorCount, nil)
	}
	copy(m.servoParams[:], cfg.ServoParams)

	for i := 0; i < motorCount; i++ {
		m.motorThrottleFactor[i] = geometry.Motors[i].Throttle
		if geometry.Motors[i].Throttle < 0 {
			return nil, &ConfigError{Reason: "motor throttle coefficient must be >= 0", Err: nil}
		}
	}

	m.resetDisarmedMotors()

	if cfg.Kind == airframe.Tri || cfg.Kind == airframe.CustomTri {
		if err := m.initTricopter(); err != nil {
			return nil, err
		}
	}

	if cfg.Mixer.ServoLowpassEnable && cfg.LoopPeriod > 0 {
		for i := 0; i < servoCount; i++ {
			m.lowpass[i] = newBiquadLowpass(cfg.Mixer.ServoLowpassFreqHz, cfg.LoopPeriod)
		}
	}

	for i := 0; i < MaxServos; i++ {
		m.servos[i] = m.servoParams[i].Mid
	}

	return m, nil
}

// resolveGeometry looks up the builtin table for kind, or loads custom
// rows when kind is one of the CUSTOM_* variants.
func resolveGeometry(kind airframe.Kind, customMotors []airframe.MotorFactor, customServos []airframe.ServoRule) (airframe.Geometry, error) {
	if kind.IsCustom() {
		geometry, err := airframe.LoadCustom(kind, customMotors, customServos)
		if err != nil {
			return airframe.Geometry{}, ErrNoMotors
		}
		return geometry, nil
	}
	geometry, ok := airframe.Lookup(kind)
	if !ok {
		return airframe.Geometry{}, fmt.Errorf("no builtin geometry for %s", kind)
	}
	return geometry, nil
}

// resetDisarmedMotors computes the per-motor value used whenever the
// mixer is disarmed: neutral3d in 3D mode, min_command otherwise.
// Recomputed any time MotorConfig or Flight3DConfig changes.
func (m *Mixer) resetDisarmedMotors() {
	v := m.motorConfig.MinCommand
	if m.feature3D {
		v = m.flight3D.Neutral
	}
	for i := 0; i < m.motorCount; i++ {
		m.motorsDisarmed[i] = v
	}
}

// initTricopter builds the yaw force curve and rejects a configuration
// whose curve is not ordered enough for the binary search in
// getAngleFromYawCurveAtForce to behave correctly (spec's resolution of
// the tricopter monotonicity open question).
func (m *Mixer) initTricopter() error {
	thrustFactor := m.cfg.TriTailMotorThrustFactor / 10
	curve, maxYawForce := buildYawForceCurve(thrustFactor, m.cfg.TriServoAngleAtMaxDdeg)
	if err := validateTriGeometry(curve, m.cfg.TriServoAngleAtMaxDdeg); err != nil {
		return &ConfigError{Reason: "tricopter yaw force curve", Err: err}
	}
	m.tri = tricopterState{
		yawForceCurve:   curve,
		maxYawForce:     maxYawForce,
		thrustFactor:    thrustFactor,
		maxAngleDdeg:    m.cfg.TriServoAngleAtMaxDdeg,
		virtualAngleDeg: float32(triTailServoAngleMidDdeg) / 10,
		built:           true,
	}
	return nil
}

// Reconfigure rebuilds the tricopter curve and disarmed-motor table
// after a geometry-affecting config change, without discarding per-cycle
// memory (servo rule slew state, virtual servo angle) that is still
// valid across the change.
func (m *Mixer) Reconfigure(motor MotorConfig, flight3D Flight3DConfig, cfg MixerConfig) error {
	m.motorConfig = motor
	m.flight3D = flight3D
	m.cfg = cfg
	m.resetDisarmedMotors()
	if m.kind == airframe.Tri || m.kind == airframe.CustomTri {
		virtualAngleDeg := m.tri.virtualAngleDeg
		if err := m.initTricopter(); err != nil {
			return err
		}
		m.tri.virtualAngleDeg = virtualAngleDeg
	}
	return nil
}

// Mix runs one control cycle: tricopter pre-hook, motor mix, disarm
// overwrite, servo mix (if the airframe uses servos), camera-tilt
// overlay, final servo clamp, and the optional servo lowpass. Order
// matters — motor[0] feeds the servo mixer's STABILIZED_THROTTLE input,
// so motors are always computed first.
func (m *Mixer) Mix(in Inputs) Outputs {
	motorLimitReached := m.mixMotors(in)

	if m.kind.UsesServos() {
		m.mixServos(in)
	}

	// Camera stabilization runs for every airframe, not just the ones
	// with a servo mixer: a quad with tilt servos still gets a gimbal.
	if in.FeatureServoTilt {
		m.applyGimbalOverlay(in)
	}

	for i := 0; i < m.servoCount; i++ {
		m.servos[i] = clamp16(m.servos[i], m.servoParams[i].Min, m.servoParams[i].Max)
	}

	if m.cfg.ServoLowpassEnable {
		for i := 0; i < m.servoCount; i++ {
			if m.lowpass[i] == nil {
				continue
			}
			filtered := m.lowpass[i].Apply(float32(m.servos[i]))
			m.servos[i] = clamp16(roundToInt16(filtered), m.servoParams[i].Min, m.servoParams[i].Max)
		}
	}

	return Outputs{
		Motors:            m.motors[:m.motorCount],
		Servos:            m.servos[:m.servoCount],
		MotorLimitReached: motorLimitReached,
	}
}
