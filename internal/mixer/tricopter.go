package mixer

import "github.com/chewxy/math32"

// Tricopter tail geometry, in decidegrees. The yaw force curve always
// spans [midDdeg-curveHalfRangeDdeg, midDdeg+curveHalfRangeDdeg) in 100
// one-degree steps, independent of the configured servo travel limit
// (which only bounds which slice of that curve is used for authority and
// validation).
const (
	triTailServoAngleMidDdeg  int16 = 900
	triCurveHalfRangeDdeg     int16 = 500
	triMotorCurveMaxPhaseShiftDeg float32 = 15.0
)

// buildYawForceCurve precomputes the tail's yaw-force-vs-angle table and
// the symmetric max yaw force usable over the configured servo travel.
// Grounded on initTailServoSymmetry: the curve itself always covers the
// full ±50deg range around mid, but max_yaw_force only considers the
// window actually reachable by the configured servo limit.
func buildYawForceCurve(thrustFactor float32, maxAngleDdeg int16) (curve [yawCurveSize]int16, maxYawForce int16) {
	minWindowDdeg := triTailServoAngleMidDdeg - maxAngleDdeg
	maxWindowDdeg := triTailServoAngleMidDdeg + maxAngleDdeg

	var maxNegForce, maxPosForce int16
	angleDdeg := triTailServoAngleMidDdeg - triCurveHalfRangeDdeg
	for i := 0; i < yawCurveSize; i++ {
		angleDeg := float32(angleDdeg) / 10
		force := roundToInt16(1000 * (-thrustFactor*math32.Cos(deg2rad(angleDeg)) -
			math32.Sin(deg2rad(angleDeg))*pitchCorrectionAtTailAngle(angleDeg, thrustFactor)))
		curve[i] = force
		if angleDdeg >= minWindowDdeg && angleDdeg < maxWindowDdeg {
			maxNegForce = minI16(force, maxNegForce)
			maxPosForce = maxI16(force, maxPosForce)
		}
		angleDdeg += 10
	}
	maxYawForce = minI16(absI16(maxNegForce), absI16(maxPosForce))
	return curve, maxYawForce
}

func absI16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}

func deg2rad(deg float32) float32 { return deg * (math32.Pi / 180) }

// pitchCorrectionAtTailAngle returns the motor-0 throttle coefficient
// that compensates for the thrust lost to the tail servo's tilt at angle
// (degrees, relative to the airframe's longitudinal axis).
func pitchCorrectionAtTailAngle(angleDeg, thrustFactor float32) float32 {
	a := deg2rad(angleDeg)
	return 1 / (math32.Sin(a) - math32.Cos(a)/thrustFactor)
}

// getServoValueAtAngle converts a commanded tail angle back to the servo
// PWM value that geometrically produces it, piecewise-linear between
// [min,mid] and [mid,max].
func getServoValueAtAngle(sp ServoParam, angleDdeg, maxAngleDdeg int16) int16 {
	switch {
	case angleDdeg < triTailServoAngleMidDdeg:
		minAngleDdeg := triTailServoAngleMidDdeg - maxAngleDdeg
		frac := float32(angleDdeg-minAngleDdeg) / float32(maxAngleDdeg)
		return roundToInt16(frac*float32(sp.Mid-sp.Min)) + sp.Min
	case angleDdeg > triTailServoAngleMidDdeg:
		frac := float32(angleDdeg-triTailServoAngleMidDdeg) / float32(maxAngleDdeg)
		return roundToInt16(frac*float32(sp.Max-sp.Mid)) + sp.Mid
	default:
		return sp.Mid
	}
}

// getAngleFromYawCurveAtForce binary-searches the precomputed curve for
// the decidegree angle producing the given linearized yaw force,
// clamping to the table ends when out of range.
func getAngleFromYawCurveAtForce(curve [yawCurveSize]int16, force int16) int16 {
	if force < curve[0] {
		return triTailServoAngleMidDdeg - triCurveHalfRangeDdeg
	}
	if force >= curve[yawCurveSize-1] {
		return triTailServoAngleMidDdeg + triCurveHalfRangeDdeg
	}
	lower, higher := 0, yawCurveSize-1
	for higher > lower+1 {
		mid := (lower + higher) / 2
		if curve[mid] > force {
			higher = mid
		} else {
			lower = mid
		}
	}
	frac := float32(force-curve[lower]) / float32(curve[higher]-curve[lower])
	return triTailServoAngleMidDdeg - triCurveHalfRangeDdeg + int16(lower*10) + roundToInt16(frac*10)
}

// getLinearServoValue replaces a commanded (nonlinear-authority) servo
// value with the value that produces linear yaw authority across the
// servo's travel, by round-tripping through the yaw force curve.
func getLinearServoValue(sp ServoParam, maxAngleDdeg int16, maxYawForce int16, curve [yawCurveSize]int16, servoValue int16) int16 {
	var span int16
	if servoValue < sp.Mid {
		span = sp.Mid - sp.Min
	} else {
		span = sp.Max - sp.Mid
	}
	if span == 0 {
		return servoValue
	}
	linearForce := roundToInt16(float32(servoValue-sp.Mid) / float32(span) * float32(maxYawForce))
	angle := getAngleFromYawCurveAtForce(curve, linearForce)
	return getServoValueAtAngle(sp, angle, maxAngleDdeg)
}

// getServoAngleInDeciDegrees converts a servo PWM value to the tail angle
// it geometrically corresponds to, the inverse of getServoValueAtAngle.
func getServoAngleInDeciDegrees(sp ServoParam, maxAngleDdeg int16, servoValue int16) int16 {
	var endValue, endAngle int16
	if servoValue < sp.Mid {
		endValue = sp.Min
		endAngle = triTailServoAngleMidDdeg - maxAngleDdeg
	} else {
		endValue = sp.Max
		endAngle = triTailServoAngleMidDdeg + maxAngleDdeg
	}
	if endValue == sp.Mid {
		return triTailServoAngleMidDdeg
	}
	frac := float32(servoValue-sp.Mid) / float32(endValue-sp.Mid)
	return roundToInt16(float32(endAngle-triTailServoAngleMidDdeg)*frac) + triTailServoAngleMidDdeg
}

// virtualServoStep advances the first-order virtual servo model toward
// angleSetpointDdeg by at most speedDps*dt degrees per cycle, tracking
// how fast the physical tail servo can actually move.
func virtualServoStep(virtualAngleDeg float32, angleSetpointDdeg int16, speedDps, dt float32) float32 {
	setpoint := float32(angleSetpointDdeg) / 10
	maxStep := dt * speedDps
	diff := setpoint - virtualAngleDeg
	switch {
	case absF(diff) < maxStep:
		return setpoint
	case diff > 0:
		return virtualAngleDeg + maxStep
	default:
		return virtualAngleDeg - maxStep
	}
}

// tricopterPreHook predicts the tail's angle one cycle ahead (bounded by
// the motor curve's maximum phase shift) and uses it to pick motor 0's
// throttle coefficient, compensating for motor spool-up lag while the
// tail tilts. rudderValue is the rudder servo PWM left by the previous
// cycle's servo mix (linearized while armed).
func (m *Mixer) tricopterPreHook(sp ServoParam, rudderValue int16) {
	servoAngleD := m.tri.virtualAngleDeg
	setpointD := float32(getServoAngleInDeciDegrees(sp, m.tri.maxAngleDdeg, rudderValue)) / 10

	diff := setpointD - servoAngleD
	if absF(diff) > triMotorCurveMaxPhaseShiftDeg {
		if diff > 0 {
			diff = triMotorCurveMaxPhaseShiftDeg
		} else {
			diff = -triMotorCurveMaxPhaseShiftDeg
		}
	}

	minDeg := float32(triTailServoAngleMidDdeg-m.tri.maxAngleDdeg) / 10
	maxDeg := float32(triTailServoAngleMidDdeg+m.tri.maxAngleDdeg) / 10
	futureAngle := clampF(servoAngleD+diff, minDeg, maxDeg)

	m.motorThrottleFactor[0] = pitchCorrectionAtTailAngle(futureAngle, m.tri.thrustFactor)
}

// validateTriGeometry rejects configurations whose yaw force curve is
// not non-decreasing across the window the binary search is fed at
// runtime: [mid-maxAngle, mid+maxAngle). The force function is not
// monotonic over the full tabulated range for every thrust factor, and
// a non-monotonic window would let the lookup return a
// plausible-but-wrong angle near an extremum.
func validateTriGeometry(curve [yawCurveSize]int16, maxAngleDdeg int16) error {
	minWindowDdeg := triTailServoAngleMidDdeg - maxAngleDdeg
	maxWindowDdeg := triTailServoAngleMidDdeg + maxAngleDdeg
	curveStartDdeg := triTailServoAngleMidDdeg - triCurveHalfRangeDdeg

	startIdx := int(minWindowDdeg-curveStartDdeg) / 10
	endIdx := int(maxWindowDdeg-curveStartDdeg) / 10
	if startIdx < 0 {
		startIdx = 0
	}
	if endIdx > yawCurveSize {
		endIdx = yawCurveSize
	}
	for i := startIdx + 1; i < endIdx; i++ {
		if curve[i] < curve[i-1] {
			return ErrNonMonotonicCurve
		}
	}
	return nil
}
