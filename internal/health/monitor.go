package health

import (
	"context"
	"sync"

	"Mansoor88-6/activity-agent/internal/models"

	"go.uber.org/zap"
)

// State of the daemon connection as seen by the monitor
type State int

const (
	StateDisabled State = iota
	StateChecking
	StateConnected
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateChecking:
		return "checking"
	case StateConnected:
		return "connected"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Prober performs a lightweight liveness call against the daemon
type Prober interface {
	Ping(ctx context.Context) error
}

// Monitor owns the process-wide ConnectionHealth. It probes only while
// enabled and never retries on its own.
type Monitor struct {
	prober Prober
	logger *zap.Logger

	mu          sync.Mutex
	health      models.ConnectionHealth
	state       State
	generation  uint64
	subscribers []func(bool)
}

// NewMonitor creates a disabled monitor
func NewMonitor(prober Prober, logger *zap.Logger) *Monitor {
	return &Monitor{
		prober: prober,
		logger: logger,
		state:  StateDisabled,
	}
}

// Subscribe registers fn to receive "enabled && connected" on every
// state transition. Entering checking repeats whether the monitor was
// connected until the outcome is known.
func (m *Monitor) Subscribe(fn func(bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// SetEnabled toggles supervision. Enabling probes immediately. Disabling
// reports disabled and keeps only the last alive value.
func (m *Monitor) SetEnabled(ctx context.Context, enabled bool) State {
	m.mu.Lock()
	if m.health.Enabled == enabled {
		m.mu.Unlock()
		if enabled {
			return m.Check(ctx)
		}
		return StateDisabled
	}

	m.health.Enabled = enabled
	m.generation++
	if !enabled {
		m.state = StateDisabled
		m.health.Icon = ""
		m.health.Status = ""
		m.health.Message = StateDisabled.String()
		subscribers := m.snapshotSubscribers()
		m.mu.Unlock()

		m.logger.Info("Daemon supervision disabled")
		notify(subscribers, false)
		return StateDisabled
	}
	m.mu.Unlock()

	m.logger.Info("Daemon supervision enabled")
	return m.Check(ctx)
}

// Check probes the daemon when enabled. It is a no-op while disabled.
func (m *Monitor) Check(ctx context.Context) State {
	m.mu.Lock()
	if !m.health.Enabled {
		m.mu.Unlock()
		return StateDisabled
	}
	connected := m.state == StateConnected
	m.state = StateChecking
	generation := m.generation
	checking := m.snapshotSubscribers()
	m.mu.Unlock()

	notify(checking, connected)
	err := m.prober.Ping(ctx)

	m.mu.Lock()
	if m.generation != generation || !m.health.Enabled {
		// toggled while the probe was in flight
		state := m.state
		m.mu.Unlock()
		return state
	}

	wasAlive := m.health.Alive
	if err != nil {
		m.health.Alive = false
		m.health.Icon = models.IconDisconnected
		m.health.Status = models.HealthStatusDanger
		m.health.Message = "disconnected"
		m.state = StateDisconnected
	} else {
		m.health.Alive = true
		m.health.Icon = models.IconConnected
		m.health.Status = models.HealthStatusSuccess
		m.health.Message = "connected"
		m.state = StateConnected
	}
	state := m.state
	subscribers := m.snapshotSubscribers()
	m.mu.Unlock()

	if err != nil {
		m.logger.Warn("Daemon probe failed", zap.Error(err))
	} else if !wasAlive {
		m.logger.Info("Daemon connected")
	}

	notify(subscribers, state == StateConnected)
	return state
}

// Status returns a copy of the current connection health
func (m *Monitor) Status() models.ConnectionHealth {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.health
}

func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Connected reports enabled && alive
func (m *Monitor) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.health.Enabled && m.health.Alive
}

func (m *Monitor) snapshotSubscribers() []func(bool) {
	out := make([]func(bool), len(m.subscribers))
	copy(out, m.subscribers)
	return out
}

func notify(subscribers []func(bool), connected bool) {
	for _, fn := range subscribers {
		fn(connected)
	}
}
