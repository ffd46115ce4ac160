// Package halserial implements hal.OutputWriter over a serial link to an
// external PWM/DShot generator board: one framed write per motor or
// servo index, plus a batch-complete marker for Oneshot125 backends.
package halserial

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"go.bug.st/serial"

	"github.com/skyforge-fc/mixer/internal/hal"
)

const (
	frameMotor    byte = 0x01
	frameServo    byte = 0x02
	frameComplete byte = 0x03
	frameShutdown byte = 0x04
)

// Config holds the serial link parameters plus the simulation escape
// hatch used in bench testing without a PWM board attached.
type Config struct {
	Port           string
	BaudRate       int
	SimulationMode bool
}

// Bridge is a hal.OutputWriter backed by a serial port. It carries no
// buffering of its own: every WriteMotor/WriteServo call is a blocking
// framed write, so a stalled serial link blocks the mixer's own output
// stage rather than silently dropping commands.
type Bridge struct {
	mu sync.RWMutex

	cfg       Config
	port      serial.Port
	connected bool

	logger *logrus.Logger

	framesSent uint64
}

var _ hal.OutputWriter = (*Bridge)(nil)
var _ hal.Connector = (*Bridge)(nil)

// New creates a Bridge. The serial port is opened on Connect, not here.
func New(cfg Config, logger *logrus.Logger) *Bridge {
	if logger == nil {
		logger = logrus.New()
	}
	return &Bridge{cfg: cfg, logger: logger}
}

// Connect opens the serial port, or marks the bridge connected without
// touching hardware when SimulationMode is set.
func (b *Bridge) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.connected {
		return nil
	}

	if b.cfg.SimulationMode {
		b.connected = true
		b.logger.Info("halserial: connected in simulation mode")
		return nil
	}

	mode := &serial.Mode{BaudRate: b.cfg.BaudRate}
	port, err := serial.Open(b.cfg.Port, mode)
	if err != nil {
		return fmt.Errorf("halserial: opening %s: %w", b.cfg.Port, err)
	}

	b.port = port
	b.connected = true
	b.logger.WithFields(logrus.Fields{"port": b.cfg.Port, "baud": b.cfg.BaudRate}).Info("halserial: connected")
	return nil
}

// Close releases the serial port.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected {
		return nil
	}
	b.connected = false
	if b.port != nil {
		err := b.port.Close()
		b.port = nil
		return err
	}
	return nil
}

func (b *Bridge) writeFrame(kind byte, index int, value int16) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.connected {
		return fmt.Errorf("halserial: not connected")
	}
	if b.cfg.SimulationMode {
		b.framesSent++
		return nil
	}

	var frame [5]byte
	frame[0] = kind
	frame[1] = byte(index)
	binary.LittleEndian.PutUint16(frame[2:4], uint16(value))
	frame[4] = checksum(frame[:4])

	if _, err := b.port.Write(frame[:]); err != nil {
		return fmt.Errorf("halserial: write: %w", err)
	}
	b.framesSent++
	return nil
}

// WriteMotor sends one motor command frame.
func (b *Bridge) WriteMotor(index int, value int16) error {
	return b.writeFrame(frameMotor, index, value)
}

// WriteServo sends one servo command frame. A zero value tells the
// board to stop driving that channel.
func (b *Bridge) WriteServo(index int, value int16) error {
	return b.writeFrame(frameServo, index, value)
}

// CompleteOneshotUpdate sends the batch-complete marker frame.
func (b *Bridge) CompleteOneshotUpdate() error {
	return b.writeFrame(frameComplete, 0, 0)
}

// ShutdownPulses sends the shutdown marker frame, telling the board to
// stop driving every output.
func (b *Bridge) ShutdownPulses() error {
	return b.writeFrame(frameShutdown, 0, 0)
}

// FramesSent reports how many frames have been written, for diagnostics.
func (b *Bridge) FramesSent() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.framesSent
}

func checksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum ^= v
	}
	return sum
}
