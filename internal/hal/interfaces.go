// Package hal declares the hardware abstraction the mixer daemon writes
// its outputs through, so the mixer itself never depends on a specific
// PWM/DShot backend.
package hal

import "context"

// MotorWriter drives the ESC outputs produced by one mixer cycle.
type MotorWriter interface {
	// WriteMotor sets motor index's raw command.
	WriteMotor(index int, value int16) error
	// CompleteOneshotUpdate flushes a batch of Oneshot125 writes. No-op
	// for regular PWM and DShot backends.
	CompleteOneshotUpdate() error
	// ShutdownPulses stops driving every motor output.
	ShutdownPulses() error
}

// ServoWriter drives the servo PWM outputs produced by one mixer cycle.
type ServoWriter interface {
	// WriteServo sets servo index's PWM value. A zero value kills the
	// channel's pulse entirely.
	WriteServo(index int, value int16) error
}

// OutputWriter is the combined interface a dispatch loop writes a mixer
// cycle's Outputs through.
type OutputWriter interface {
	MotorWriter
	ServoWriter
}

// Connector is implemented by backends that own a physical or simulated
// link (serial, network) which must be opened before first use and
// closed at shutdown.
type Connector interface {
	Connect(ctx context.Context) error
	Close() error
}
