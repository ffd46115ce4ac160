package airframe

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Geometry is the compiled, ready-to-multiply form of an airframe: the
// raw motor rows (which carry the throttle column), a motor-count x 3
// roll/pitch/yaw matrix, and the servo rules that apply to it. Mixer
// holds one of these per configured airframe; mixer.New halves the RPY
// matrix once in 3D mode, and nothing mutates it per cycle.
type Geometry struct {
	Kind   Kind
	Motors []MotorFactor
	RPY    *mat.Dense // motorCount x 3, roll/pitch/yaw columns only; nil when motorless
	Servos []ServoRule
}

// Lookup returns the built-in Geometry for kind, or false if kind has no
// built-in table (the Custom* kinds, which are always loaded explicitly
// via LoadCustom or a config-supplied rule list).
func Lookup(kind Kind) (Geometry, bool) {
	motors, ok := builtinMixers[kind]
	if !ok {
		return Geometry{}, false
	}
	return Compile(kind, motors, builtinServoRules[kind]), true
}

// Compile builds a Geometry from raw motor and servo rows, constructing
// the RPY matrix gonum will multiply against the roll/pitch/yaw demand
// vector every cycle. The throttle column is carried separately on each
// MotorFactor since it is summed directly rather than matrix-multiplied.
func Compile(kind Kind, motors []MotorFactor, servos []ServoRule) Geometry {
	// A motorless geometry (Gimbal) compiles to a nil matrix; gonum
	// rejects zero-row matrices and the mixer never multiplies one anyway.
	var rpy *mat.Dense
	if len(motors) > 0 {
		rpy = mat.NewDense(len(motors), 3, nil)
		for i, m := range motors {
			rpy.Set(i, 0, float64(m.Roll))
			rpy.Set(i, 1, float64(m.Pitch))
			rpy.Set(i, 2, float64(m.Yaw))
		}
	}
	return Geometry{
		Kind:   kind,
		Motors: motors,
		RPY:    rpy,
		Servos: servos,
	}
}

// LoadCustom builds a Geometry from user-supplied motor and servo rows.
// Each list terminates at its sentinel row (a MotorFactor with
// Throttle == 0, a ServoRule with RatePct == 0); the sentinel and
// anything after it are dropped.
func LoadCustom(kind Kind, motorRows []MotorFactor, servoRows []ServoRule) (Geometry, error) {
	if !kind.IsCustom() {
		return Geometry{}, fmt.Errorf("airframe: %s is not a custom kind", kind)
	}
	motors := make([]MotorFactor, 0, len(motorRows))
	for _, m := range motorRows {
		if m.Terminal() {
			break
		}
		motors = append(motors, m)
	}
	if len(motors) == 0 {
		return Geometry{}, fmt.Errorf("airframe: custom motor mix has no rows")
	}
	var servos []ServoRule
	for _, s := range servoRows {
		if s.Terminal() {
			break
		}
		servos = append(servos, s)
	}
	return Compile(kind, motors, servos), nil
}

// IsCustom reports whether kind is loaded from a config-supplied mix table
// rather than a built-in one.
func (k Kind) IsCustom() bool {
	switch k {
	case CustomMotor, CustomTri, CustomAirplane:
		return true
	default:
		return false
	}
}
