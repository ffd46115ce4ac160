// Package failsafe supplies the Inputs.FailsafeActive signal the mixer
// consumes every cycle: a latch that a link-loss detector or RC
// supervisor sets and an explicit recovery call clears.
package failsafe

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Source is what the dispatch loop polls once per cycle to fill
// mixer.Inputs.FailsafeActive.
type Source interface {
	Active() bool
}

// Latch is a Source that trips on Trigger and stays tripped until
// Recover is called. There is no auto-recovery: once a link loss has
// persisted long enough to trip it, only an explicit decision upstream
// clears it.
type Latch struct {
	mu      sync.RWMutex
	tripped bool
	since   time.Time
	logger  *logrus.Logger
}

var _ Source = (*Latch)(nil)

// NewLatch creates a Latch in the recovered (not tripped) state.
func NewLatch(logger *logrus.Logger) *Latch {
	if logger == nil {
		logger = logrus.New()
	}
	return &Latch{logger: logger}
}

// Active reports whether the latch is currently tripped.
func (l *Latch) Active() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tripped
}

// Trigger trips the latch. Idempotent.
func (l *Latch) Trigger(reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.tripped {
		return
	}
	l.tripped = true
	l.since = time.Now()
	l.logger.WithField("reason", reason).Warn("failsafe: latch tripped")
}

// Recover clears the latch. Idempotent.
func (l *Latch) Recover() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.tripped {
		return
	}
	l.tripped = false
	l.logger.WithField("duration", time.Since(l.since)).Info("failsafe: latch recovered")
}

// TrippedSince reports how long the latch has been active, or zero when
// it is not tripped.
func (l *Latch) TrippedSince() time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.tripped {
		return 0
	}
	return time.Since(l.since)
}
