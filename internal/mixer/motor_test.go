package mixer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyforge-fc/mixer/internal/airframe"
)

func quadXConfig() Config {
	return Config{
		Kind: airframe.QuadX,
		Motor: MotorConfig{
			MinCommand:  1000,
			MinThrottle: 1100,
			MaxThrottle: 2000,
		},
		Flight3D: Flight3DConfig{
			DeadbandLow:      1406,
			DeadbandHigh:     1546,
			Neutral:          1460,
			ThrottleDeadband: 50,
		},
		Mixer: MixerConfig{
			YawMotorDirection:         1,
			YawJumpPreventionLimit:    500, // sentinel: disables yaw jump prevention
			AirmodeSaturationLimitPct: 100,
			MidRC:                     1500,
			MinCheck:                  1100,
		},
	}
}

// baseInputs returns a neutral Inputs for quadXConfig with the raw RC
// throttle channel tracking throttleCmd, so the classic motor-stop branch
// doesn't fire unless the test wants it to.
func baseInputs(throttleCmd int16, armed bool) Inputs {
	rc := [8]uint16{1500, 1500, 1500, uint16(throttleCmd), 1500, 1500, 1500, 1500}
	return Inputs{
		ThrottleCmd:  throttleCmd,
		RCCommand:    [4]int16{0, 0, 0, throttleCmd},
		RCData:       rc,
		Armed:        armed,
		RCModeActive: func(uint8) bool { return false },
	}
}

func TestMixMotors_LevelHover(t *testing.T) {
	m, err := New(quadXConfig())
	require.NoError(t, err)

	in := baseInputs(1500, true)
	out := m.Mix(in)

	for i, v := range out.Motors {
		assert.Equalf(t, int16(1500), v, "motor %d", i)
	}
}

func TestMixMotors_PureRoll(t *testing.T) {
	m, err := New(quadXConfig())
	require.NoError(t, err)

	in := baseInputs(1500, true)
	in.AxisPID = [3]int16{100, 0, 0}
	out := m.Mix(in)

	// REAR_R, FRONT_R, REAR_L, FRONT_L per the QuadX table row order.
	want := []int16{1400, 1400, 1600, 1600}
	assert.Equal(t, want, out.Motors)
}

func TestMixMotors_OvershootRebalance(t *testing.T) {
	m, err := New(quadXConfig())
	require.NoError(t, err)

	in := baseInputs(1950, true)
	in.AxisPID = [3]int16{100, 0, 0}
	out := m.Mix(in)

	want := []int16{1800, 1800, 2000, 2000}
	assert.Equal(t, want, out.Motors)
	for _, v := range out.Motors {
		assert.LessOrEqual(t, v, int16(2000))
	}
}

func TestMixMotors_DisarmDominance(t *testing.T) {
	m, err := New(quadXConfig())
	require.NoError(t, err)

	in := baseInputs(1950, false)
	in.AxisPID = [3]int16{10000, -10000, 10000}
	out := m.Mix(in)

	for i, v := range out.Motors {
		assert.Equalf(t, int16(1000), v, "motor %d", i)
	}
}

func TestMixMotors_FailsafeDominance(t *testing.T) {
	m, err := New(quadXConfig())
	require.NoError(t, err)

	in := baseInputs(1500, true)
	in.FailsafeActive = true
	in.AxisPID = [3]int16{10000, 0, 0}
	out := m.Mix(in)

	for _, v := range out.Motors {
		assert.GreaterOrEqual(t, v, int16(1000))
		assert.LessOrEqual(t, v, int16(2000))
	}
}

func TestMixMotors_AirmodeAuthorityPreservation(t *testing.T) {
	m, err := New(quadXConfig())
	require.NoError(t, err)

	in := baseInputs(1100, true)
	in.AirmodeActive = true
	in.AxisPID = [3]int16{500, 0, 0}
	out := m.Mix(in)

	assert.True(t, out.MotorLimitReached)
	for _, v := range out.Motors {
		assert.GreaterOrEqual(t, v, int16(1100))
		assert.LessOrEqual(t, v, int16(2000))
	}
}

func TestMixMotors_MotorStop(t *testing.T) {
	cfg := quadXConfig()
	m, err := New(cfg)
	require.NoError(t, err)

	in := baseInputs(1500, true)
	in.RCData[3] = 1000 // below MinCheck
	in.FeatureMotorStop = true
	out := m.Mix(in)

	for _, v := range out.Motors {
		assert.Equal(t, int16(1000), v)
	}
}

func TestMixMotors_MinThrottleWhenNotMotorStop(t *testing.T) {
	cfg := quadXConfig()
	m, err := New(cfg)
	require.NoError(t, err)

	in := baseInputs(1500, true)
	in.RCData[3] = 1000 // below MinCheck
	in.FeatureMotorStop = false
	out := m.Mix(in)

	for _, v := range out.Motors {
		assert.Equal(t, int16(1100), v)
	}
}

func TestMixMotors_YawJumpPrevention(t *testing.T) {
	cfg := quadXConfig()
	cfg.Mixer.YawJumpPreventionLimit = 100
	m, err := New(cfg)
	require.NoError(t, err)

	in := baseInputs(1500, true)
	in.AxisPID = [3]int16{0, 0, 1000}
	in.RCCommand[2] = 0 // no pilot yaw stick input, so limit stays at 100

	out1 := m.Mix(in)

	cfgUnclamped := quadXConfig()
	cfgUnclamped.Mixer.YawJumpPreventionLimit = 500
	m2, err := New(cfgUnclamped)
	require.NoError(t, err)
	out2 := m2.Mix(in)

	// Clamped yaw produces a smaller motor spread than the unclamped case.
	spread := func(vals []int16) int16 {
		min, max := vals[0], vals[0]
		for _, v := range vals {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		return max - min
	}
	assert.Less(t, spread(out1.Motors), spread(out2.Motors))
}

func TestMixMotors_Feature3DHalvesMixerGain(t *testing.T) {
	cfg := quadXConfig()
	cfg.Feature3D = true
	m, err := New(cfg)
	require.NoError(t, err)

	in := baseInputs(1500, true)
	in.AxisPID = [3]int16{100, 0, 0}
	out := m.Mix(in)

	// Same pure-roll demand as S2, but with half the mixer gain: the
	// ±100 spread around 1500 becomes ±50.
	want := []int16{1450, 1450, 1550, 1550}
	assert.Equal(t, want, out.Motors)
}

func TestClamp16_ChecksLoBeforeHi(t *testing.T) {
	assert.Equal(t, int16(5), clamp16(4, 5, 3))
	assert.Equal(t, int16(3), clamp16(10, 5, 3))
}

func TestRoundToInt16_RoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, int16(2), roundToInt16(1.5))
	assert.Equal(t, int16(-2), roundToInt16(-1.5))
}
