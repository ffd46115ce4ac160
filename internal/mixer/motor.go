package mixer

import "github.com/skyforge-fc/mixer/internal/airframe"

// yawJumpPreventionLimitHigh is the sentinel at which yaw jump
// prevention is disabled entirely.
const yawJumpPreventionLimitHigh int16 = 500

// mixMotors combines throttle and the three axis PIDs through the active
// motor matrix, applying saturation, airmode, 3D deadband, failsafe,
// disarm and motor-stop policy. It mutates m.motors and returns whether
// the airmode motor limit was reached.
func (m *Mixer) mixMotors(in Inputs) bool {
	if m.motorCount == 0 {
		return false
	}

	yaw := in.AxisPID[2]
	if m.motorCount >= 4 && m.cfg.YawJumpPreventionLimit < yawJumpPreventionLimitHigh {
		limit := m.cfg.YawJumpPreventionLimit + absI16(in.RCCommand[2])
		yaw = clamp16(yaw, -limit, limit)
	}

	if m.kind == airframe.Tri || m.kind == airframe.CustomTri {
		m.tricopterPreHook(m.servoParams[airframe.ServoRudder], m.servos[airframe.ServoRudder])
	}

	roll := float64(in.AxisPID[0])
	pitch := float64(in.AxisPID[1])
	yawDemand := float64(yaw) * float64(-m.cfg.YawMotorDirection)

	m.demandVec.SetVec(0, roll)
	m.demandVec.SetVec(1, pitch)
	m.demandVec.SetVec(2, yawDemand)
	m.rpyVec.MulVec(m.geometry.RPY, m.demandVec)

	var motorLimitReached bool
	if in.AirmodeActive {
		motorLimitReached = m.mixMotorsAirmode(in)
	} else {
		m.mixMotorsClassic(in)
	}

	if !in.Armed {
		copy(m.motors[:m.motorCount], m.motorsDisarmed[:m.motorCount])
	}

	return motorLimitReached
}

// resolveThrottleAirmode resolves the throttle command and the active
// output band for airmode, running the 3D deadband state machine with
// hysteresis through throttlePrev. positiveSide reports which side of
// the deadband is active, for the per-motor clamp below.
func (m *Mixer) resolveThrottleAirmode(in Inputs) (throttle, tMin, tMax int16, positiveSide bool) {
	mc := m.motorConfig
	if !in.Feature3D {
		return in.ThrottleCmd, mc.MinThrottle, mc.MaxThrottle, true
	}

	f3 := m.flight3D
	midRC := m.cfg.MidRC
	if !in.Armed {
		m.throttlePrev = midRC
	}
	rcThrottle := int16(in.RCData[3])

	switch {
	case rcThrottle <= midRC-f3.ThrottleDeadband:
		tMax, tMin = f3.DeadbandLow, mc.MinThrottle
		m.throttlePrev = rcThrottle
		throttle = rcThrottle
	case rcThrottle >= midRC+f3.ThrottleDeadband:
		tMax, tMin = mc.MaxThrottle, f3.DeadbandHigh
		m.throttlePrev = rcThrottle
		throttle = rcThrottle
		positiveSide = true
	case m.throttlePrev <= midRC-f3.ThrottleDeadband:
		throttle, tMax = f3.DeadbandLow, f3.DeadbandLow
		tMin = mc.MinThrottle
	default:
		tMax = mc.MaxThrottle
		throttle, tMin = f3.DeadbandHigh, f3.DeadbandHigh
		positiveSide = true
	}
	return
}

func (m *Mixer) mixMotorsAirmode(in Inputs) bool {
	var rpyMix [MaxMotors]float64
	// Min/max start at zero, not at the first motor's mix: the range is
	// measured around the symmetric-about-zero resting point so that a
	// one-sided mix (possible with asymmetric custom coefficient rows)
	// still counts its full excursion against the throttle band.
	rpyMin, rpyMax := 0.0, 0.0
	for i := 0; i < m.motorCount; i++ {
		v := m.rpyVec.AtVec(i)
		rpyMix[i] = v
		if v < rpyMin {
			rpyMin = v
		}
		if v > rpyMax {
			rpyMax = v
		}
	}
	rpyRange := rpyMax - rpyMin

	throttle, throttleMin, throttleMax, positiveSide := m.resolveThrottleAirmode(in)
	throttleRange := float64(throttleMax - throttleMin)

	var motorLimitReached bool
	if rpyRange > throttleRange {
		motorLimitReached = true
		mixReduction := throttleRange / rpyRange
		for i := 0; i < m.motorCount; i++ {
			rpyMix[i] *= mixReduction
		}
		if mixReduction > float64(m.cfg.AirmodeSaturationLimitPct)/100 {
			mid := throttleMin + (throttleMax-throttleMin)/2
			throttleMin, throttleMax = mid, mid
		}
	} else {
		half := roundToInt16(float32(rpyRange)) / 2
		throttleMin += half
		throttleMax -= half
	}

	for i := 0; i < m.motorCount; i++ {
		throttleTerm := clamp16(roundToInt16(float32(float64(throttle)*float64(m.motorThrottleFactor[i]))), throttleMin, throttleMax)
		motor := roundToInt16(float32(rpyMix[i])) + throttleTerm

		switch {
		case in.FailsafeActive:
			motor = clamp16(motor, m.motorConfig.MinCommand, m.motorConfig.MaxThrottle)
		case in.Feature3D:
			if positiveSide {
				motor = clamp16(motor, m.flight3D.DeadbandHigh, m.motorConfig.MaxThrottle)
			} else {
				motor = clamp16(motor, m.motorConfig.MinThrottle, m.flight3D.DeadbandLow)
			}
		default:
			motor = clamp16(motor, m.motorConfig.MinThrottle, m.motorConfig.MaxThrottle)
		}
		m.motors[i] = motor
	}
	return motorLimitReached
}

func (m *Mixer) mixMotorsClassic(in Inputs) {
	var motor [MaxMotors]float32
	maxMotor := float32(0)
	for i := 0; i < m.motorCount; i++ {
		v := float32(in.ThrottleCmd)*m.motorThrottleFactor[i] + float32(m.rpyVec.AtVec(i))
		motor[i] = v
		if i == 0 || v > maxMotor {
			maxMotor = v
		}
	}

	var overshoot float32
	if maxMotor > float32(m.motorConfig.MaxThrottle) {
		overshoot = maxMotor - float32(m.motorConfig.MaxThrottle)
	}

	midRC := m.cfg.MidRC
	rcThrottle := int16(in.RCData[3])

	for i := 0; i < m.motorCount; i++ {
		v := roundToInt16(motor[i] - overshoot)

		switch {
		case in.Feature3D:
			f3 := m.flight3D
			outOfDeadband := rcThrottle <= midRC-f3.ThrottleDeadband || rcThrottle >= midRC+f3.ThrottleDeadband
			if m.cfg.PIDAtMinThrottle || outOfDeadband {
				if rcThrottle > midRC {
					v = clamp16(v, f3.DeadbandHigh, m.motorConfig.MaxThrottle)
				} else {
					v = clamp16(v, m.motorConfig.MinCommand, f3.DeadbandLow)
				}
			} else if rcThrottle > midRC {
				v = f3.DeadbandHigh
			} else {
				v = f3.DeadbandLow
			}
		case in.FailsafeActive:
			v = clamp16(v, m.motorConfig.MinCommand, m.motorConfig.MaxThrottle)
		default:
			v = clamp16(v, m.motorConfig.MinThrottle, m.motorConfig.MaxThrottle)
			if rcThrottle < m.cfg.MinCheck {
				if in.FeatureMotorStop {
					v = m.motorConfig.MinCommand
				} else if !m.cfg.PIDAtMinThrottle {
					v = m.motorConfig.MinThrottle
				}
			}
		}
		m.motors[i] = v
	}
}
