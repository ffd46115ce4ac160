package airframe

// MotorFactor is one row of a mixing matrix: motor output is the weighted
// sum of throttle, roll, pitch and yaw demand by these coefficients.
type MotorFactor struct {
	Throttle float32
	Roll     float32
	Pitch    float32
	Yaw      float32
}

// InputSource identifies one of the fixed input-vector slots the servo
// mixer builds every cycle.
type InputSource uint8

const (
	InputStabilizedRoll InputSource = iota
	InputStabilizedPitch
	InputStabilizedYaw
	InputStabilizedThrottle
	InputGimbalPitch
	InputGimbalRoll
	InputRCRoll
	InputRCPitch
	InputRCYaw
	InputRCThrottle
	InputRCAux1
	InputRCAux2
	InputRCAux3
	InputRCAux4
	InputSourceCount
)

// ServoRule is one programmable linear-mix rule: a fraction of
// input[InputSource], rate-scaled, speed-slewed and range-limited, added
// into servos[TargetServo].
type ServoRule struct {
	TargetServo InputSource // index into the servo output array
	InputSource InputSource
	RatePct     int16 // signed percent
	Speed       uint8 // 0 = instant, >0 = units/tick slew
	MinPct      uint8
	MaxPct      uint8
	ModeBox     uint8 // 0 = always active; else RC mode switch index
}

// Terminal returns true if this is the sentinel row used to end a
// sentinel-terminated custom servo-rule list (rate == 0).
func (r ServoRule) Terminal() bool { return r.RatePct == 0 }

// Terminal returns true if this is the sentinel row used to end a
// sentinel-terminated custom motor-mixer list (throttle == 0).
func (f MotorFactor) Terminal() bool { return f.Throttle == 0 }

// Logical servo output slots. Gimbal pitch/roll are always reserved at
// 0/1 so the camera-stabilization overlay can run alongside any
// airframe's primary servos; every other slot is reused across airframes
// that are never active simultaneously, keeping the whole set within
// MaxServos.
const (
	ServoGimbalPitch     = 0
	ServoGimbalRoll      = 1
	ServoFlapperon1      = 2
	ServoFlapperon2      = 3
	ServoRudder          = 4
	ServoElevator        = 5
	ServoThrottle        = 6
	ServoBicopterLeft    = 4
	ServoBicopterRight   = 5
	ServoDualcopterLeft  = 4
	ServoDualcopterRight = 5
	ServoSinglecopter1   = 3
	ServoSinglecopter2   = 4
	ServoSinglecopter3   = 5
	ServoSinglecopter4   = 6
)

// builtinMixers maps each Kind to its motor-factor table, one row per
// motor in column order {throttle, roll, pitch, yaw}. Coefficients
// encode each motor's lever arm and spin direction on the frame.
var builtinMixers = map[Kind][]MotorFactor{
	QuadX: {
		{1.0, -1.0, 1.0, -1.0},  // REAR_R
		{1.0, -1.0, -1.0, 1.0},  // FRONT_R
		{1.0, 1.0, 1.0, 1.0},    // REAR_L
		{1.0, 1.0, -1.0, -1.0},  // FRONT_L
	},
	QuadP: {
		{1.0, 0.0, 1.0, -1.0}, // REAR
		{1.0, -1.0, 0.0, 1.0}, // RIGHT
		{1.0, 1.0, 0.0, 1.0},  // LEFT
		{1.0, 0.0, -1.0, -1.0}, // FRONT
	},
	Tri: {
		{1.0, 0.0, 1.333333, 0.0},  // REAR
		{1.0, -1.0, -0.666667, 0.0}, // RIGHT
		{1.0, 1.0, -0.666667, 0.0},  // LEFT
	},
	Bicopter: {
		{1.0, 1.0, 0.0, 0.0},  // LEFT
		{1.0, -1.0, 0.0, 0.0}, // RIGHT
	},
	Y6: {
		{1.0, 0.0, 1.333333, 1.0},   // REAR
		{1.0, -1.0, -0.666667, -1.0}, // RIGHT
		{1.0, 1.0, -0.666667, -1.0},  // LEFT
		{1.0, 0.0, 1.333333, -1.0},  // UNDER_REAR
		{1.0, -1.0, -0.666667, 1.0}, // UNDER_RIGHT
		{1.0, 1.0, -0.666667, 1.0},  // UNDER_LEFT
	},
	Hex6P: {
		{1.0, -0.866025, 0.5, 1.0},   // REAR_R
		{1.0, -0.866025, -0.5, -1.0}, // FRONT_R
		{1.0, 0.866025, 0.5, 1.0},    // REAR_L
		{1.0, 0.866025, -0.5, -1.0},  // FRONT_L
		{1.0, 0.0, -1.0, 1.0},        // FRONT
		{1.0, 0.0, 1.0, -1.0},        // REAR
	},
	Y4: {
		{1.0, 0.0, 1.0, -1.0},  // REAR_TOP CW
		{1.0, -1.0, -1.0, 0.0}, // FRONT_R CCW
		{1.0, 0.0, 1.0, 1.0},   // REAR_BOTTOM CCW
		{1.0, 1.0, -1.0, 0.0},  // FRONT_L CW
	},
	Hex6X: {
		{1.0, -0.5, 0.866025, 1.0},   // REAR_R
		{1.0, -0.5, -0.866025, 1.0},  // FRONT_R
		{1.0, 0.5, 0.866025, -1.0},   // REAR_L
		{1.0, 0.5, -0.866025, -1.0},  // FRONT_L
		{1.0, -1.0, 0.0, -1.0},       // RIGHT
		{1.0, 1.0, 0.0, 1.0},         // LEFT
	},
	OctoX8: {
		{1.0, -1.0, 1.0, -1.0},  // REAR_R
		{1.0, -1.0, -1.0, 1.0},  // FRONT_R
		{1.0, 1.0, 1.0, 1.0},    // REAR_L
		{1.0, 1.0, -1.0, -1.0},  // FRONT_L
		{1.0, -1.0, 1.0, 1.0},   // UNDER_REAR_R
		{1.0, -1.0, -1.0, -1.0}, // UNDER_FRONT_R
		{1.0, 1.0, 1.0, -1.0},   // UNDER_REAR_L
		{1.0, 1.0, -1.0, 1.0},   // UNDER_FRONT_L
	},
	OctoFlatP: {
		{1.0, 0.707107, -0.707107, 1.0},  // FRONT_L
		{1.0, -0.707107, -0.707107, 1.0}, // FRONT_R
		{1.0, -0.707107, 0.707107, 1.0},  // REAR_R
		{1.0, 0.707107, 0.707107, 1.0},   // REAR_L
		{1.0, 0.0, -1.0, -1.0},           // FRONT
		{1.0, -1.0, 0.0, -1.0},           // RIGHT
		{1.0, 0.0, 1.0, -1.0},            // REAR
		{1.0, 1.0, 0.0, -1.0},            // LEFT
	},
	OctoFlatX: {
		{1.0, 1.0, -0.414178, 1.0},   // MIDFRONT_L
		{1.0, -0.414178, -1.0, 1.0},  // FRONT_R
		{1.0, -1.0, 0.414178, 1.0},   // MIDREAR_R
		{1.0, 0.414178, 1.0, 1.0},    // REAR_L
		{1.0, 0.414178, -1.0, -1.0},  // FRONT_L
		{1.0, -1.0, -0.414178, -1.0}, // MIDFRONT_R
		{1.0, -0.414178, 1.0, -1.0},  // REAR_R
		{1.0, 1.0, 0.414178, -1.0},   // MIDREAR_L
	},
	VTail4: {
		{1.0, -0.58, 0.58, 1.0},   // REAR_R
		{1.0, -0.46, -0.39, -0.5}, // FRONT_R
		{1.0, 0.58, 0.58, -1.0},   // REAR_L
		{1.0, 0.46, -0.39, 0.5},   // FRONT_L
	},
	ATail4: {
		{1.0, 0.0, 1.0, 1.0},   // REAR_R
		{1.0, -1.0, -1.0, 0.0}, // FRONT_R
		{1.0, 0.0, 1.0, -1.0},  // REAR_L
		{1.0, 1.0, -1.0, 0.0},  // FRONT_L
	},
	Hex6H: {
		{1.0, -1.0, 1.0, -1.0}, // REAR_R
		{1.0, -1.0, -1.0, 1.0}, // FRONT_R
		{1.0, 1.0, 1.0, 1.0},   // REAR_L
		{1.0, 1.0, -1.0, -1.0}, // FRONT_L
		{1.0, 0.0, 0.0, 0.0},   // RIGHT
		{1.0, 0.0, 0.0, 0.0},   // LEFT
	},
	Dualcopter: {
		{1.0, 0.0, 0.0, -1.0}, // LEFT
		{1.0, 0.0, 0.0, 1.0},  // RIGHT
	},
	Singlecopter: {
		{1.0, 0.0, 0.0, 0.0},
	},
	FlyingWing: {
		{1.0, 0.0, 0.0, 0.0},
	},
	Airplane: {
		{1.0, 0.0, 0.0, 0.0},
	},
	// Gimbal drives no motors at all; it exists only for its servo rules.
	Gimbal: {},
}

// builtinServoRules maps each Kind to its servo-mix rule table
// (format: target, input, rate, speed, min, max, box).
var builtinServoRules = map[Kind][]ServoRule{
	Airplane: {
		{ServoFlapperon1, InputStabilizedRoll, 100, 0, 0, 100, 0},
		{ServoFlapperon2, InputStabilizedRoll, 100, 0, 0, 100, 0},
		{ServoRudder, InputStabilizedYaw, 100, 0, 0, 100, 0},
		{ServoElevator, InputStabilizedPitch, 100, 0, 0, 100, 0},
		{ServoThrottle, InputStabilizedThrottle, 100, 0, 0, 100, 0},
	},
	FlyingWing: {
		{ServoFlapperon1, InputStabilizedRoll, 100, 0, 0, 100, 0},
		{ServoFlapperon1, InputStabilizedPitch, 100, 0, 0, 100, 0},
		{ServoFlapperon2, InputStabilizedRoll, -100, 0, 0, 100, 0},
		{ServoFlapperon2, InputStabilizedPitch, 100, 0, 0, 100, 0},
		{ServoThrottle, InputStabilizedThrottle, 100, 0, 0, 100, 0},
	},
	Bicopter: {
		{ServoBicopterLeft, InputStabilizedYaw, 100, 0, 0, 100, 0},
		{ServoBicopterLeft, InputStabilizedPitch, 100, 0, 0, 100, 0},
		{ServoBicopterRight, InputStabilizedYaw, 100, 0, 0, 100, 0},
		{ServoBicopterRight, InputStabilizedPitch, 100, 0, 0, 100, 0},
	},
	Tri: {
		{ServoRudder, InputStabilizedYaw, 100, 0, 0, 100, 0},
	},
	Dualcopter: {
		{ServoDualcopterLeft, InputStabilizedPitch, 100, 0, 0, 100, 0},
		{ServoDualcopterRight, InputStabilizedRoll, 100, 0, 0, 100, 0},
	},
	Singlecopter: {
		{ServoSinglecopter1, InputStabilizedYaw, 100, 0, 0, 100, 0},
		{ServoSinglecopter1, InputStabilizedPitch, 100, 0, 0, 100, 0},
		{ServoSinglecopter2, InputStabilizedYaw, 100, 0, 0, 100, 0},
		{ServoSinglecopter2, InputStabilizedPitch, 100, 0, 0, 100, 0},
		{ServoSinglecopter3, InputStabilizedYaw, 100, 0, 0, 100, 0},
		{ServoSinglecopter3, InputStabilizedRoll, 100, 0, 0, 100, 0},
		{ServoSinglecopter4, InputStabilizedYaw, 100, 0, 0, 100, 0},
		{ServoSinglecopter4, InputStabilizedRoll, 100, 0, 0, 100, 0},
	},
	Gimbal: {
		{ServoGimbalPitch, InputGimbalPitch, 125, 0, 0, 100, 0},
		{ServoGimbalRoll, InputGimbalRoll, 125, 0, 0, 100, 0},
	},
}

// MotorCount returns how many motors the built-in geometry for kind has.
// Custom kinds return 0; the caller supplies the count from its loaded rows.
func MotorCount(kind Kind) int {
	return len(builtinMixers[kind])
}
