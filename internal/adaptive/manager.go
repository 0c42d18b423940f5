package adaptive

import (
	"math"
	"sort"
	"sync"
	"time"

	"adaptive-decision-core/internal/logging"
	"adaptive-decision-core/internal/regime"
)

// historyCap bounds the parameter history ring. Oldest entries are evicted
// first.
const historyCap = 100

// ParameterStats summarizes adjustment behavior over the retained history.
type ParameterStats struct {
	AdjustmentCount    int           `json:"adjustment_count"`
	MeanConfidence     float64       `json:"mean_confidence"`
	MostFrequentRegime regime.Regime `json:"most_frequent_regime"`
	StabilityScore     float64       `json:"stability_score"` // [0,1], 1 = no threshold drift
}

// Manager owns the canonical AdaptiveParameters. All mutation goes through
// the merge + clamp pipeline; callers always receive copies.
type Manager struct {
	mu          sync.RWMutex
	current     AdaptiveParameters
	defaults    AdaptiveParameters
	rules       []Rule
	history     []AdaptiveParameters
	adjustments int
	logger      *logging.Logger
	now         func() time.Time
}

// NewManager creates a manager seeded with the compiled-in defaults and the
// built-in rule set.
func NewManager(logger *logging.Logger) *Manager {
	m := &Manager{
		current:  Defaults(),
		defaults: Defaults(),
		logger:   logger.WithComponent("adaptive"),
		now:      time.Now,
	}
	for _, r := range DefaultRules() {
		m.registerRuleLocked(r)
	}
	return m
}

// RegisterRule adds a rule to the evaluation set. Rules cannot be changed or
// removed once registered.
func (m *Manager) RegisterRule(r Rule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registerRuleLocked(r)
}

func (m *Manager) registerRuleLocked(r Rule) {
	m.rules = append(m.rules, r)
	sort.SliceStable(m.rules, func(i, j int) bool {
		return m.rules[i].Priority > m.rules[j].Priority
	})
}

// AdjustParameters produces a new validated parameter set for the given
// market state: regime base override first, then every matching rule in
// descending priority order (higher-priority fields win), then metadata,
// clamping, and a history push.
func (m *Manager) AdjustParameters(state regime.MarketStateResult) AdaptiveParameters {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.current
	BaseOverride(state.Regime).ApplyTo(&next)

	var combined Partial
	applied := make([]string, 0, len(m.rules))
	for _, r := range m.rules {
		if r.Condition(state, next) {
			combined.fill(r.Apply())
			applied = append(applied, r.Name)
		}
	}
	combined.ApplyTo(&next)

	next.Version = m.current.Version + 1
	next.Regime = state.Regime
	next.Confidence = state.Confidence
	next.UpdatedAt = m.now()
	next.Source = SourceAutomatic
	next.Clamp()

	m.pushHistoryLocked(m.current)
	m.current = next
	m.adjustments++

	m.logger.Info("parameters adjusted",
		"regime", state.Regime.String(),
		"version", next.Version,
		"rules", applied,
		"signal_threshold", next.Thresholds.SignalThreshold,
		"position_sizing", next.Risk.PositionSizing)

	return next
}

// SetParameters applies a manual partial override through the same merge and
// clamp pipeline.
func (m *Manager) SetParameters(override Partial) AdaptiveParameters {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.current
	override.ApplyTo(&next)
	next.Version = m.current.Version + 1
	next.UpdatedAt = m.now()
	next.Source = SourceManual
	next.Clamp()

	m.pushHistoryLocked(m.current)
	m.current = next
	m.adjustments++

	m.logger.Info("parameters set manually", "version", next.Version)
	return next
}

// ResetToDefaults restores the compiled-in default parameter set.
func (m *Manager) ResetToDefaults() AdaptiveParameters {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.defaults
	next.Version = m.current.Version + 1
	next.UpdatedAt = m.now()
	next.Source = SourceManual

	m.pushHistoryLocked(m.current)
	m.current = next

	m.logger.Info("parameters reset to defaults", "version", next.Version)
	return next
}

// Current returns a copy of the canonical parameter set.
func (m *Manager) Current() AdaptiveParameters {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// History returns a copy of the retained parameter history, oldest first.
func (m *Manager) History() []AdaptiveParameters {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]AdaptiveParameters, len(m.history))
	copy(out, m.history)
	return out
}

func (m *Manager) pushHistoryLocked(p AdaptiveParameters) {
	if len(m.history) >= historyCap {
		m.history = m.history[1:]
	}
	m.history = append(m.history, p)
}

// GetParameterStats reports adjustment count, mean confidence, the most
// frequent regime in history, and a stability score: 1 minus the mean
// relative change of the signal threshold across consecutive entries.
func (m *Manager) GetParameterStats() ParameterStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := ParameterStats{
		AdjustmentCount:    m.adjustments,
		MostFrequentRegime: m.current.Regime,
		StabilityScore:     1.0,
	}

	entries := append(append([]AdaptiveParameters{}, m.history...), m.current)
	if len(entries) == 0 {
		return stats
	}

	sum := 0.0
	counts := make(map[regime.Regime]int)
	for _, e := range entries {
		sum += e.Confidence
		counts[e.Regime]++
	}
	stats.MeanConfidence = sum / float64(len(entries))

	best := -1
	for _, r := range regime.AllRegimes {
		if counts[r] > best {
			best = counts[r]
			stats.MostFrequentRegime = r
		}
	}

	if len(entries) >= 2 {
		totalChange := 0.0
		for i := 1; i < len(entries); i++ {
			prev := entries[i-1].Thresholds.SignalThreshold
			cur := entries[i].Thresholds.SignalThreshold
			if prev != 0 {
				totalChange += math.Abs(cur-prev) / prev
			}
		}
		mean := totalChange / float64(len(entries)-1)
		stats.StabilityScore = clampFloat(1.0-mean, 0, 1)
	}

	return stats
}
