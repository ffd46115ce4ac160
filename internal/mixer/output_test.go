package mixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyforge-fc/mixer/internal/airframe"
)

// recordingWriter is an in-memory hal.OutputWriter capturing what the
// output stage would hand to the PWM driver.
type recordingWriter struct {
	motors    map[int]int16
	servos    map[int]int16
	completed int
	shutdowns int
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{motors: map[int]int16{}, servos: map[int]int16{}}
}

func (r *recordingWriter) WriteMotor(index int, value int16) error {
	r.motors[index] = value
	return nil
}

func (r *recordingWriter) WriteServo(index int, value int16) error {
	r.servos[index] = value
	return nil
}

func (r *recordingWriter) CompleteOneshotUpdate() error {
	r.completed++
	return nil
}

func (r *recordingWriter) ShutdownPulses() error {
	r.shutdowns++
	return nil
}

func TestWriteMotors_FlushesOneshotBatch(t *testing.T) {
	m, err := New(quadXConfig())
	require.NoError(t, err)

	m.Mix(baseInputs(1500, true))

	w := newRecordingWriter()
	require.NoError(t, m.WriteMotors(w, true))

	assert.Len(t, w.motors, 4)
	assert.Equal(t, 1, w.completed)

	w2 := newRecordingWriter()
	require.NoError(t, m.WriteMotors(w2, false))
	assert.Zero(t, w2.completed)
}

func TestWriteServos_TriRudderKilledWhenDisarmed(t *testing.T) {
	cfg := triConfig()
	cfg.Mixer.TriUnarmedServo = false
	m, err := New(cfg)
	require.NoError(t, err)

	in := baseInputs(1500, false)
	m.Mix(in)

	w := newRecordingWriter()
	require.NoError(t, m.WriteServos(w, in))
	assert.Equal(t, int16(0), w.servos[0])

	in.Armed = true
	m.Mix(in)
	w2 := newRecordingWriter()
	require.NoError(t, m.WriteServos(w2, in))
	assert.NotEqual(t, int16(0), w2.servos[0])
}

func TestWriteServos_TriUnarmedServoKeepsRudderLive(t *testing.T) {
	m, err := New(triConfig()) // triConfig sets TriUnarmedServo
	require.NoError(t, err)

	in := baseInputs(1500, false)
	m.Mix(in)

	w := newRecordingWriter()
	require.NoError(t, m.WriteServos(w, in))
	assert.Equal(t, int16(1500), w.servos[0])
}

func TestWriteServos_AirplaneEmitsFiveServos(t *testing.T) {
	params := make([]ServoParam, airframe.ServoThrottle+1)
	for i := range params {
		params[i] = ServoParam{Min: 1000, Mid: 1500, Max: 2000, RatePct: 100, ForwardChannel: NoForwardChannel}
	}
	cfg := Config{
		Kind:  airframe.Airplane,
		Motor: MotorConfig{MinCommand: 1000, MinThrottle: 1100, MaxThrottle: 2000},
		Mixer: MixerConfig{
			YawMotorDirection:      1,
			YawJumpPreventionLimit: 500,
			MidRC:                  1500,
			MinCheck:               1100,
		},
		ServoParams: params,
	}
	m, err := New(cfg)
	require.NoError(t, err)

	in := baseInputs(1500, true)
	m.Mix(in)

	w := newRecordingWriter()
	require.NoError(t, m.WriteServos(w, in))

	// Flapperon 1/2, rudder, elevator, throttle at physical outputs 0-4.
	assert.Len(t, w.servos, 5)
	for i := 0; i < 5; i++ {
		assert.Contains(t, w.servos, i)
	}
}

func TestWriteServos_AuxChannelForwarding(t *testing.T) {
	m, err := New(triConfig())
	require.NoError(t, err)

	in := baseInputs(1500, true)
	in.RCData[4] = 1600
	in.RCData[5] = 1700
	in.RCData[6] = 1800
	in.RCData[7] = 1900
	in.FeatureChannelForwarding = true
	m.Mix(in)

	w := newRecordingWriter()
	require.NoError(t, m.WriteServos(w, in))

	// Rudder at physical 0, forwarded aux channels right behind it.
	require.Len(t, w.servos, 5)
	assert.Equal(t, int16(1600), w.servos[1])
	assert.Equal(t, int16(1700), w.servos[2])
	assert.Equal(t, int16(1800), w.servos[3])
	assert.Equal(t, int16(1900), w.servos[4])
}

func TestWriteServos_ServoTiltAppendsGimbalPair(t *testing.T) {
	cfg := quadXConfig()
	cfg.ServoParams = []ServoParam{
		{Min: 1000, Mid: 1500, Max: 2000, RatePct: 100, ForwardChannel: NoForwardChannel},
		{Min: 1000, Mid: 1500, Max: 2000, RatePct: 100, ForwardChannel: NoForwardChannel},
	}
	m, err := New(cfg)
	require.NoError(t, err)

	in := baseInputs(1500, true)
	in.FeatureServoTilt = true
	m.Mix(in)

	w := newRecordingWriter()
	require.NoError(t, m.WriteServos(w, in))

	// A quad emits no airframe servos, so the gimbal pair lands at 0/1.
	require.Len(t, w.servos, 2)
	assert.Equal(t, int16(1500), w.servos[0])
	assert.Equal(t, int16(1500), w.servos[1])
}

func TestStopMotors_WritesRestingValue(t *testing.T) {
	m, err := New(quadXConfig())
	require.NoError(t, err)

	m.Mix(baseInputs(1800, true))

	w := newRecordingWriter()
	require.NoError(t, m.StopMotors(w))
	for i := 0; i < 4; i++ {
		assert.Equal(t, int16(1000), w.motors[i])
	}
}

func TestStopMotors_3DUsesNeutral(t *testing.T) {
	cfg := quadXConfig()
	cfg.Feature3D = true
	m, err := New(cfg)
	require.NoError(t, err)

	w := newRecordingWriter()
	require.NoError(t, m.StopMotors(w))
	for i := 0; i < 4; i++ {
		assert.Equal(t, cfg.Flight3D.Neutral, w.motors[i])
	}
}
