package halserial

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridge_SimulationMode_RoundTrip(t *testing.T) {
	b := New(Config{SimulationMode: true}, nil)

	require.NoError(t, b.Connect(context.Background()))
	defer b.Close()

	assert.NoError(t, b.WriteMotor(0, 1500))
	assert.NoError(t, b.WriteServo(0, 1500))
	assert.NoError(t, b.WriteServo(1, 0)) // zero kills the channel's pulse
	assert.NoError(t, b.CompleteOneshotUpdate())
	assert.NoError(t, b.ShutdownPulses())

	assert.Equal(t, uint64(5), b.FramesSent())
}

func TestBridge_WriteBeforeConnect_Errors(t *testing.T) {
	b := New(Config{SimulationMode: true}, nil)
	assert.Error(t, b.WriteMotor(0, 1500))
}

func TestBridge_ConnectIsIdempotent(t *testing.T) {
	b := New(Config{SimulationMode: true}, nil)
	require.NoError(t, b.Connect(context.Background()))
	require.NoError(t, b.Connect(context.Background()))
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
}
