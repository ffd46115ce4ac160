package airframe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_QuadXHasFourMotorsAndNoServos(t *testing.T) {
	g, ok := Lookup(QuadX)
	require.True(t, ok)

	assert.Len(t, g.Motors, 4)
	assert.Empty(t, g.Servos)
	r, c := g.RPY.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 3, c)
}

func TestLookup_UnknownCustomKindHasNoBuiltin(t *testing.T) {
	_, ok := Lookup(CustomMotor)
	assert.False(t, ok)
}

func TestLookup_TriHasRudderRule(t *testing.T) {
	g, ok := Lookup(Tri)
	require.True(t, ok)

	require.Len(t, g.Servos, 1)
	assert.Equal(t, InputSource(ServoRudder), g.Servos[0].TargetServo)
	assert.Equal(t, InputStabilizedYaw, g.Servos[0].InputSource)
}

func TestLookup_SinglecopterVanePairing(t *testing.T) {
	g, ok := Lookup(Singlecopter)
	require.True(t, ok)
	require.Len(t, g.Servos, 8)

	// Every vane mixes yaw; the front/rear pair adds pitch, the side
	// pair adds roll.
	want := []struct {
		target int
		input  InputSource
	}{
		{ServoSinglecopter1, InputStabilizedYaw},
		{ServoSinglecopter1, InputStabilizedPitch},
		{ServoSinglecopter2, InputStabilizedYaw},
		{ServoSinglecopter2, InputStabilizedPitch},
		{ServoSinglecopter3, InputStabilizedYaw},
		{ServoSinglecopter3, InputStabilizedRoll},
		{ServoSinglecopter4, InputStabilizedYaw},
		{ServoSinglecopter4, InputStabilizedRoll},
	}
	for i, w := range want {
		assert.Equalf(t, InputSource(w.target), g.Servos[i].TargetServo, "rule %d target", i)
		assert.Equalf(t, w.input, g.Servos[i].InputSource, "rule %d input", i)
	}
}

func TestLoadCustom_StopsAtSentinel(t *testing.T) {
	motors := []MotorFactor{
		{Throttle: 1.0, Roll: -1.0, Pitch: 1.0, Yaw: -1.0},
		{Throttle: 1.0, Roll: 1.0, Pitch: -1.0, Yaw: 1.0},
		{}, // sentinel: Throttle == 0
		{Throttle: 1.0, Roll: 99, Pitch: 99, Yaw: 99},
	}

	g, err := LoadCustom(CustomMotor, motors, nil)
	require.NoError(t, err)
	assert.Len(t, g.Motors, 2)
}

func TestLoadCustom_EmptyMotorsIsError(t *testing.T) {
	_, err := LoadCustom(CustomMotor, []MotorFactor{{}}, nil)
	assert.Error(t, err)
}

func TestLoadCustom_RejectsNonCustomKind(t *testing.T) {
	_, err := LoadCustom(QuadX, []MotorFactor{{Throttle: 1}}, nil)
	assert.Error(t, err)
}

func TestKind_UsesServos(t *testing.T) {
	assert.True(t, Tri.UsesServos())
	assert.True(t, Airplane.UsesServos())
	assert.False(t, QuadX.UsesServos())
	assert.False(t, Hex6X.UsesServos())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "quad_x", QuadX.String())
	assert.Equal(t, "custom_tri", CustomTri.String())
}
