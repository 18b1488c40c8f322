package monitoring

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTickBudget is the time one tick may spend in the tactical core
const DefaultTickBudget = 42 * time.Millisecond

// TickMonitor tracks how long each tick takes against a fixed budget.
// Record is called from the tick loop; Metrics may be read from any goroutine.
type TickMonitor struct {
	mu            sync.RWMutex
	budget        time.Duration
	alertCooldown time.Duration
	lastAlert     time.Time
	now           func() time.Time

	ticks      int
	overBudget int
	last       time.Duration
	peak       time.Duration
	total      time.Duration
	components map[string]time.Duration

	logger zerolog.Logger
}

// NewTickMonitor creates a monitor. Over-budget warnings are logged at most
// once per cooldown; every overrun is still counted.
func NewTickMonitor(budget, cooldown time.Duration, logger zerolog.Logger) *TickMonitor {
	if budget <= 0 {
		budget = DefaultTickBudget
	}
	return &TickMonitor{
		budget:        budget,
		alertCooldown: cooldown,
		now:           time.Now,
		components:    make(map[string]time.Duration),
		logger:        logger.With().Str("component", "tick_monitor").Logger(),
	}
}

// Budget returns the per-tick time budget
func (m *TickMonitor) Budget() time.Duration {
	return m.budget
}

// Record stores the duration of one tick and reports whether it overran the budget
func (m *TickMonitor) Record(tick int, d time.Duration) bool {
	m.mu.Lock()
	m.ticks++
	m.last = d
	m.total += d
	if d > m.peak {
		m.peak = d
	}

	over := d > m.budget
	shouldAlert := false
	if over {
		m.overBudget++
		now := m.now()
		shouldAlert = m.lastAlert.IsZero() || now.Sub(m.lastAlert) >= m.alertCooldown
		if shouldAlert {
			m.lastAlert = now
		}
	}
	overBudget := m.overBudget
	m.mu.Unlock()

	if shouldAlert {
		m.logger.Warn().
			Int("tick", tick).
			Dur("duration", d).
			Dur("budget", m.budget).
			Int("over_budget_ticks", overBudget).
			Msg("Tick exceeded time budget")
	}
	return over
}

// RecordComponent stores the latest duration of one stage of the tick
func (m *TickMonitor) RecordComponent(name string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components[name] = d
}

// Metrics returns a snapshot of the tick statistics
func (m *TickMonitor) Metrics() TickMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var mean time.Duration
	if m.ticks > 0 {
		mean = m.total / time.Duration(m.ticks)
	}
	return TickMetrics{
		Ticks:      m.ticks,
		OverBudget: m.overBudget,
		Last:       m.last,
		Peak:       m.peak,
		Mean:       mean,
		Components: copyMap(m.components),
	}
}

// TickMetrics contains tick timing statistics
type TickMetrics struct {
	Ticks      int                      `json:"ticks"`
	OverBudget int                      `json:"over_budget"`
	Last       time.Duration            `json:"last"`
	Peak       time.Duration            `json:"peak"`
	Mean       time.Duration            `json:"mean"`
	Components map[string]time.Duration `json:"components"`
}

func copyMap(m map[string]time.Duration) map[string]time.Duration {
	result := make(map[string]time.Duration, len(m))
	for k, v := range m {
		result[k] = v
	}
	return result
}
