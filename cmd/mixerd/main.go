// mixerd runs the output mixer at a fixed loop rate, wiring a loaded
// airframe configuration to a serial PWM/DShot bridge. It is a thin loop
// runner, not a configuration CLI or RC/PID implementation: those live
// in their own processes and feed this one.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skyforge-fc/mixer/internal/config"
	"github.com/skyforge-fc/mixer/internal/failsafe"
	"github.com/skyforge-fc/mixer/internal/hal"
	"github.com/skyforge-fc/mixer/internal/halserial"
	"github.com/skyforge-fc/mixer/internal/mixer"
	"github.com/skyforge-fc/mixer/pkg/utils"
	"github.com/sirupsen/logrus"
)

var (
	version   = "0.1.0"
	buildTime = "unknown"
	gitCommit = "unknown"

	configFile = flag.String("config", "configs/mixer.yaml", "Mixer configuration file path")
	loopHz     = flag.Float64("loop-hz", 1000, "Control loop rate in Hz")

	serialPort = flag.String("serial-port", "/dev/ttyUSB0", "PWM/DShot bridge serial port")
	serialBaud = flag.Int("serial-baud", 500000, "Serial baud rate")
	simMode    = flag.Bool("sim", false, "Simulation mode (no serial hardware attached)")

	logLevel = flag.String("log-level", "info", "Log level: debug, info, warn, error")
)

// inputSource supplies one cycle's worth of mixer.Inputs. RC decoding and
// the attitude/PID controllers that fill it belong to other processes;
// neutralInputSource below is a bench-bringup stand-in that holds every
// input at its safe, disarmed default.
type inputSource interface {
	Sample(dt float32) mixer.Inputs
}

type neutralInputSource struct {
	midRC int16
}

func (n neutralInputSource) Sample(dt float32) mixer.Inputs {
	rc := [8]uint16{uint16(n.midRC), uint16(n.midRC), uint16(n.midRC), uint16(n.midRC), uint16(n.midRC), uint16(n.midRC), uint16(n.midRC), uint16(n.midRC)}
	return mixer.Inputs{
		ThrottleCmd: n.midRC,
		RCCommand:   [4]int16{0, 0, 0, n.midRC},
		RCData:      rc,
		Armed:       false,
		DT:          dt,
		RCModeActive: func(uint8) bool { return false },
	}
}

func main() {
	flag.Parse()
	printBanner()

	logger := utils.NewLogger(*logLevel, "stdout")

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	cfg.LoopPeriod = float32(1 / *loopHz)

	m, err := mixer.New(cfg)
	if err != nil {
		log.Fatalf("initializing mixer (refusing to arm): %v", err)
	}

	bridge := halserial.New(halserial.Config{
		Port:           *serialPort,
		BaudRate:       *serialBaud,
		SimulationMode: *simMode,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := bridge.Connect(ctx); err != nil {
		log.Fatalf("connecting output bridge: %v", err)
	}
	defer bridge.Close()

	fs := failsafe.NewLatch(logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	period := time.Duration(float64(time.Second) / *loopHz)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	logger.WithField("period", period).Info("mixerd: entering control loop")

	src := neutralInputSource{midRC: cfg.Mixer.MidRC}
	dt := float32(period.Seconds())

	for {
		select {
		case <-sigCh:
			logger.Warn("mixerd: shutdown signal received")
			shutdown(m, bridge, logger)
			return
		case <-ticker.C:
			in := src.Sample(dt)
			in.FailsafeActive = fs.Active()
			runCycle(m, bridge, in, logger)
		}
	}
}

func runCycle(m *mixer.Mixer, w hal.OutputWriter, in mixer.Inputs, logger *logrus.Logger) {
	m.Mix(in)
	if err := m.WriteMotors(w, in.FeatureOneshot125); err != nil {
		logger.WithError(err).Error("mixerd: write motors failed")
	}
	if err := m.WriteServos(w, in); err != nil {
		logger.WithError(err).Error("mixerd: write servos failed")
	}
}

func shutdown(m *mixer.Mixer, w hal.OutputWriter, logger *logrus.Logger) {
	if err := m.StopMotors(w); err != nil {
		logger.WithError(err).Error("mixerd: stop motors failed")
	}
	// Give the timers and ESCs a chance to react before cutting pulses.
	time.Sleep(50 * time.Millisecond)
	if err := w.ShutdownPulses(); err != nil {
		logger.WithError(err).Error("mixerd: shutdown pulses failed")
	}
}

func printBanner() {
	fmt.Printf(`
 __  __ _          _
|  \/  (_)_ _____ _| |
| |\/| | \ \ / -_) '_|
|_|  |_|_/_\_\___|_|
Flight Controller Output Mixer v%s (%s, %s)

`, version, gitCommit, buildTime)
}
