package mixer

import (
	"github.com/skyforge-fc/mixer/internal/airframe"
	"github.com/skyforge-fc/mixer/internal/hal"
)

// WriteMotors hands the current cycle's motor commands to the driver,
// flushing the batch when the Oneshot125 protocol is in use.
func (m *Mixer) WriteMotors(w hal.MotorWriter, oneshot bool) error {
	for i := 0; i < m.motorCount; i++ {
		if err := w.WriteMotor(i, m.motors[i]); err != nil {
			return err
		}
	}
	if oneshot {
		return w.CompleteOneshotUpdate()
	}
	return nil
}

// emitOrder returns the logical servo indices emitted for this airframe,
// in physical output order. Gimbal overlay servos and forwarded aux
// channels follow at the next free physical indices; see WriteServos.
func (m *Mixer) emitOrder() []int {
	switch m.kind {
	case airframe.Bicopter:
		return []int{airframe.ServoBicopterLeft, airframe.ServoBicopterRight}
	case airframe.Tri, airframe.CustomTri:
		return []int{airframe.ServoRudder}
	case airframe.FlyingWing:
		return []int{airframe.ServoFlapperon1, airframe.ServoFlapperon2}
	case airframe.Dualcopter:
		return []int{airframe.ServoDualcopterLeft, airframe.ServoDualcopterRight}
	case airframe.Airplane, airframe.CustomAirplane:
		return []int{airframe.ServoFlapperon1, airframe.ServoFlapperon2, airframe.ServoRudder, airframe.ServoElevator, airframe.ServoThrottle}
	case airframe.Singlecopter:
		return []int{airframe.ServoSinglecopter1, airframe.ServoSinglecopter2, airframe.ServoSinglecopter3, airframe.ServoSinglecopter4}
	default:
		return nil
	}
}

// WriteServos emits the current cycle's servo values in the physical
// output order of the configured airframe: the airframe's own servos
// first, then the gimbal pair when servo tilt (or the gimbal-only
// airframe) is active, then raw forwarded aux channels. The tricopter
// rudder channel is killed outright (zero pulse) while disarmed unless
// tri_unarmed_servo keeps it live.
func (m *Mixer) WriteServos(w hal.ServoWriter, in Inputs) error {
	idx := 0
	for _, logical := range m.emitOrder() {
		v := m.servos[logical]
		if logical == airframe.ServoRudder &&
			(m.kind == airframe.Tri || m.kind == airframe.CustomTri) &&
			!m.cfg.TriUnarmedServo && !in.Armed {
			v = 0
		}
		if err := w.WriteServo(idx, v); err != nil {
			return err
		}
		idx++
	}

	if in.FeatureServoTilt || m.kind == airframe.Gimbal {
		if err := w.WriteServo(idx, m.servos[airframe.ServoGimbalPitch]); err != nil {
			return err
		}
		if err := w.WriteServo(idx+1, m.servos[airframe.ServoGimbalRoll]); err != nil {
			return err
		}
		idx += 2
	}

	if in.FeatureChannelForwarding {
		const auxStart = 4 // RCData index of AUX1
		for i := 0; i < 4; i++ {
			if err := w.WriteServo(idx, int16(in.RCData[auxStart+i])); err != nil {
				return err
			}
			idx++
		}
	}
	return nil
}

// StopMotors commands every motor to its safe resting value (3D neutral
// or min_command). The caller should give the timers and ESCs a moment
// to react before cutting PWM pulses entirely via
// hal.MotorWriter.ShutdownPulses.
func (m *Mixer) StopMotors(w hal.MotorWriter) error {
	v := m.motorConfig.MinCommand
	if m.feature3D {
		v = m.flight3D.Neutral
	}
	for i := 0; i < m.motorCount; i++ {
		m.motors[i] = v
		if err := w.WriteMotor(i, v); err != nil {
			return err
		}
	}
	return nil
}
