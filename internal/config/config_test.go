package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyforge-fc/mixer/internal/airframe"
)

const quadXYAML = `
airframe: quad_x
motor:
  min_command: 1000
  min_throttle: 1100
  max_throttle: 2000
flight_3d:
  deadband_low: 1406
  deadband_high: 1546
  neutral: 1460
  throttle_deadband: 50
mixer:
  yaw_motor_direction: 1
  yaw_jump_prevention_limit: 500
  airmode_saturation_limit_pct: 100
  mid_rc: 1500
  min_check: 1100
loop_period: 0.001
`

func TestParse_QuadX(t *testing.T) {
	cfg, err := Parse([]byte(quadXYAML))
	require.NoError(t, err)

	assert.Equal(t, airframe.QuadX, cfg.Kind)
	assert.Equal(t, int16(1000), cfg.Motor.MinCommand)
	assert.Equal(t, int16(1100), cfg.Motor.MinThrottle)
	assert.Equal(t, int16(2000), cfg.Motor.MaxThrottle)
	assert.Equal(t, int16(1500), cfg.Mixer.MidRC)
	assert.False(t, cfg.Feature3D)
	assert.Empty(t, cfg.CustomMotors)
}

func TestParse_UnknownAirframe(t *testing.T) {
	_, err := Parse([]byte("airframe: not_a_real_frame\n"))
	assert.Error(t, err)
}

func TestParse_CustomMotorsStopAtSentinel(t *testing.T) {
	yamlDoc := strings.Replace(quadXYAML, "airframe: quad_x", "airframe: custom_motor", 1) + `
custom_motors:
  - { throttle: 1.0, roll: -1.0, pitch: 1.0, yaw: -1.0 }
  - { throttle: 1.0, roll: 1.0, pitch: -1.0, yaw: 1.0 }
  - { throttle: 0.0, roll: 0.0, pitch: 0.0, yaw: 0.0 }
  - { throttle: 1.0, roll: 99.0, pitch: 99.0, yaw: 99.0 }
`
	cfg, err := Parse([]byte(yamlDoc))
	require.NoError(t, err)

	// Rows after the sentinel must not reach the parsed config; the
	// sentinel itself is kept for the geometry loader to trim.
	require.Len(t, cfg.CustomMotors, 3)
	assert.Equal(t, float32(0), cfg.CustomMotors[2].Throttle)
}

func TestParse_Feature3D(t *testing.T) {
	cfg, err := Parse([]byte(quadXYAML + "feature_3d: true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Feature3D)
}
