package mixer

import "github.com/skyforge-fc/mixer/internal/airframe"

// mixServos builds the fixed input vector, applies every programmable
// servo rule with rate/speed-slew/min-max limiting, post-scales by the
// per-servo rate and adds the middle (or forwarded) value, then runs the
// tricopter tail linearization. The camera-tilt overlay and final clamp
// happen afterwards in Mix, since they apply to every airframe. No-op
// for airframes that declare UsesServos() == false.
func (m *Mixer) mixServos(in Inputs) {
	if !m.kind.UsesServos() {
		return
	}

	var input [airframe.InputSourceCount]float32

	if in.PassthroughActive {
		input[airframe.InputStabilizedRoll] = float32(in.RCCommand[0])
		input[airframe.InputStabilizedPitch] = float32(in.RCCommand[1])
		input[airframe.InputStabilizedYaw] = float32(in.RCCommand[2])
	} else {
		input[airframe.InputStabilizedRoll] = float32(in.AxisPID[0])
		input[airframe.InputStabilizedPitch] = float32(in.AxisPID[1])
		yaw := float32(in.AxisPID[2])
		if in.Feature3D && int16(in.RCData[3]) < m.cfg.MidRC {
			yaw = -yaw
		}
		input[airframe.InputStabilizedYaw] = yaw
	}

	input[airframe.InputGimbalPitch] = scaleRange(float32(in.AttitudePitch), -1800, 1800, -500, 500)
	input[airframe.InputGimbalRoll] = scaleRange(float32(in.AttitudeRoll), -1800, 1800, -500, 500)
	input[airframe.InputStabilizedThrottle] = float32(m.motors[0]) - 1000 - 500

	midRC := float32(m.cfg.MidRC)
	input[airframe.InputRCRoll] = float32(in.RCData[0]) - midRC
	input[airframe.InputRCPitch] = float32(in.RCData[1]) - midRC
	input[airframe.InputRCYaw] = float32(in.RCData[2]) - midRC
	input[airframe.InputRCThrottle] = float32(in.RCData[3]) - midRC
	input[airframe.InputRCAux1] = float32(in.RCData[4]) - midRC
	input[airframe.InputRCAux2] = float32(in.RCData[5]) - midRC
	input[airframe.InputRCAux3] = float32(in.RCData[6]) - midRC
	input[airframe.InputRCAux4] = float32(in.RCData[7]) - midRC

	var accum [MaxServos]float32

	for ruleIdx, r := range m.geometry.Servos {
		if ruleIdx >= MaxServoRules {
			break
		}
		active := r.ModeBox == 0 || (in.RCModeActive != nil && in.RCModeActive(r.ModeBox))
		if !active {
			m.servoRuleOutputs[ruleIdx] = 0
			continue
		}

		sp := m.servoParams[r.TargetServo]
		width := float32(sp.Max - sp.Min)
		lo := float32(r.MinPct)*width/100 - width/2
		hi := float32(r.MaxPct)*width/100 - width/2

		target := input[r.InputSource]
		var out float32
		if r.Speed == 0 {
			out = target
		} else {
			cur := m.servoRuleOutputs[ruleIdx]
			speed := float32(r.Speed)
			switch {
			case cur < target:
				out = clampF(cur+speed, cur, target)
			case cur > target:
				out = clampF(cur-speed, target, cur)
			default:
				out = cur
			}
			m.servoRuleOutputs[ruleIdx] = out
		}

		direction := float32(1)
		if sp.ReversedMask&(1<<uint(r.InputSource)) != 0 {
			direction = -1
		}
		accum[r.TargetServo] += direction * clampF(out*float32(r.RatePct)/100, lo, hi)
	}

	for i := 0; i < m.servoCount; i++ {
		sp := m.servoParams[i]
		v := accum[i] * float32(sp.RatePct) / 100
		m.servos[i] = roundToInt16(v) + m.servoMiddleOrForward(i, in)
	}

	if m.kind == airframe.Tri || m.kind == airframe.CustomTri {
		rudderSp := m.servoParams[airframe.ServoRudder]
		if in.Armed {
			m.servos[airframe.ServoRudder] = getLinearServoValue(rudderSp, m.tri.maxAngleDdeg, m.tri.maxYawForce, m.tri.yawForceCurve, m.servos[airframe.ServoRudder])
		}
		m.tri.virtualAngleDeg = virtualServoStep(m.tri.virtualAngleDeg, getServoAngleInDeciDegrees(rudderSp, m.tri.maxAngleDdeg, m.servos[airframe.ServoRudder]), m.cfg.TriTailServoSpeedDps, in.DT)
	}
}

// servoMiddleOrForward returns the RC channel value servo i should track
// when its ForwardChannel is enabled, else its calibrated mid value.
func (m *Mixer) servoMiddleOrForward(i int, in Inputs) int16 {
	sp := m.servoParams[i]
	if sp.ForwardChannel != NoForwardChannel && int(sp.ForwardChannel) < len(in.RCData) {
		return int16(in.RCData[sp.ForwardChannel])
	}
	return sp.Mid
}

// applyGimbalOverlay implements the camera-stabilization overlay: center
// (or forward) the gimbal servos, then, if camstab mode is active, add
// attitude-derived pitch/roll correction. The MixTilt sub-mode blends
// both axes into both servos with the sign convention below, matching
// the gimbal's two-servo tilt linkage geometry.
func (m *Mixer) applyGimbalOverlay(in Inputs) {
	pitchSp := m.servoParams[airframe.ServoGimbalPitch]
	rollSp := m.servoParams[airframe.ServoGimbalRoll]

	m.servos[airframe.ServoGimbalPitch] = m.servoMiddleOrForward(airframe.ServoGimbalPitch, in)
	m.servos[airframe.ServoGimbalRoll] = m.servoMiddleOrForward(airframe.ServoGimbalRoll, in)

	if !in.CamstabActive {
		return
	}

	pitchTerm := float32(pitchSp.RatePct) * float32(in.AttitudePitch) / 50
	rollTerm := float32(rollSp.RatePct) * float32(in.AttitudeRoll) / 50

	if m.cfg.GimbalMixTilt {
		m.servos[airframe.ServoGimbalPitch] -= roundToInt16(-pitchTerm - rollTerm)
		m.servos[airframe.ServoGimbalRoll] += roundToInt16(-pitchTerm + rollTerm)
	} else {
		m.servos[airframe.ServoGimbalPitch] += roundToInt16(pitchTerm)
		m.servos[airframe.ServoGimbalRoll] += roundToInt16(rollTerm)
	}
}

// scaleRange linearly remaps v from [inMin,inMax] to [outMin,outMax].
func scaleRange(v, inMin, inMax, outMin, outMax float32) float32 {
	return outMin + (v-inMin)*(outMax-outMin)/(inMax-inMin)
}
