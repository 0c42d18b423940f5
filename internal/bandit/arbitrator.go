// Package bandit arbitrates allocation weights between competing
// sub-strategies with an epsilon-greedy scheme: the best-performing strategy
// gets most of the allocation while a time-decaying exploration budget is
// spread over the rest. Epsilon-greedy is deliberate here — the reward
// signal moves per trade, not per tick, and an auditable allocation beats
// tighter regret bounds.
package bandit

import (
	"math"
	"sync"
	"time"

	"adaptive-decision-core/internal/logging"
)

// Config tunes the arbitration policy. The reward weighting is a policy
// choice, not a contract: tune ReturnWeight and AccuracyBaseline rather than
// assuming fixed constants.
type Config struct {
	Epsilon0         float64       `json:"epsilon0"`          // initial exploration rate
	MinExploration   float64       `json:"min_exploration"`   // exploration floor
	DecayRate        float64       `json:"decay_rate"`        // per-interval decay factor
	UpdateInterval   time.Duration `json:"update_interval"`   // decay time base
	ReturnWeight     float64       `json:"return_weight"`     // weight of the avg-return term
	AccuracyBaseline float64       `json:"accuracy_baseline"` // accuracy subtracted before reward
}

// DefaultConfig returns the standard arbitration policy.
func DefaultConfig() Config {
	return Config{
		Epsilon0:         0.3,
		MinExploration:   0.05,
		DecayRate:        0.95,
		UpdateInterval:   time.Hour,
		ReturnWeight:     0.1,
		AccuracyBaseline: 0.5,
	}
}

// SubStrategy is one arm of the bandit: a sub-strategy with its running
// performance record and current allocation weight.
type SubStrategy struct {
	ID               string    `json:"id"`
	Label            string    `json:"label"`
	Weight           float64   `json:"weight"` // [0,1], active weights sum to 1
	TotalPredictions int       `json:"total_predictions"`
	CorrectPredictions int     `json:"correct_predictions"`
	ReturnSum        float64   `json:"return_sum"`
	Active           bool      `json:"active"`
	LastOutcomeAt    time.Time `json:"last_outcome_at"`
}

// Accuracy is the running hit rate, 0 when no outcome has been recorded.
func (s *SubStrategy) Accuracy() float64 {
	if s.TotalPredictions == 0 {
		return 0
	}
	return float64(s.CorrectPredictions) / float64(s.TotalPredictions)
}

// AvgReturn is the mean realized return across recorded outcomes.
func (s *SubStrategy) AvgReturn() float64 {
	if s.TotalPredictions == 0 {
		return 0
	}
	return s.ReturnSum / float64(s.TotalPredictions)
}

// Arbitrator tracks a fixed roster of sub-strategies and recomputes their
// weights on demand.
type Arbitrator struct {
	mu         sync.RWMutex
	cfg        Config
	strategies map[string]*SubStrategy
	order      []string // roster order, for deterministic iteration
	startedAt  time.Time
	logger     *logging.Logger
}

// NewArbitrator creates an arbitrator over the given roster with equal
// initial weights.
func NewArbitrator(cfg Config, logger *logging.Logger, roster ...SubStrategy) *Arbitrator {
	if cfg.UpdateInterval <= 0 {
		cfg.UpdateInterval = DefaultConfig().UpdateInterval
	}
	a := &Arbitrator{
		cfg:        cfg,
		strategies: make(map[string]*SubStrategy, len(roster)),
		startedAt:  time.Now(),
		logger:     logger.WithComponent("bandit"),
	}
	active := 0
	for _, s := range roster {
		cp := s
		if !cp.Active && cp.TotalPredictions == 0 && cp.Weight == 0 {
			cp.Active = true
		}
		a.strategies[cp.ID] = &cp
		a.order = append(a.order, cp.ID)
		if cp.Active {
			active++
		}
	}
	if active > 0 {
		for _, s := range a.strategies {
			if s.Active && s.Weight == 0 {
				s.Weight = 1 / float64(active)
			}
		}
	}
	return a
}

// RecordOutcome updates a strategy's performance record after a realized
// outcome. Unknown strategy ids are ignored.
func (a *Arbitrator) RecordOutcome(strategyID string, correct bool, realizedReturn float64, at time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.strategies[strategyID]
	if !ok {
		return
	}
	s.TotalPredictions++
	if correct {
		s.CorrectPredictions++
	}
	s.ReturnSum += realizedReturn
	s.LastOutcomeAt = at
}

// reward scores one strategy: accuracy above the baseline plus a weighted
// positive-return term.
func (a *Arbitrator) reward(s *SubStrategy) float64 {
	return (s.Accuracy() - a.cfg.AccuracyBaseline) +
		a.cfg.ReturnWeight*math.Max(0, s.AvgReturn())
}

// UpdateWeights recomputes weights at the given time: the best-rewarded
// active strategy receives (1-epsilon)+epsilon/N, every other active one
// epsilon/N, where epsilon decays from Epsilon0 toward MinExploration.
// Weights are normalized to sum to 1 over active strategies.
func (a *Arbitrator) UpdateWeights(now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var active []*SubStrategy
	for _, id := range a.order {
		if s := a.strategies[id]; s.Active {
			active = append(active, s)
		}
	}
	if len(active) == 0 {
		return
	}
	n := float64(len(active))
	if len(active) == 1 {
		active[0].Weight = 1
		return
	}

	best := active[0]
	bestReward := a.reward(best)
	for _, s := range active[1:] {
		if r := a.reward(s); r > bestReward {
			best, bestReward = s, r
		}
	}

	elapsed := now.Sub(a.startedAt).Seconds() / a.cfg.UpdateInterval.Seconds()
	epsilon := a.cfg.Epsilon0 * math.Pow(a.cfg.DecayRate, elapsed)
	if epsilon < a.cfg.MinExploration {
		epsilon = a.cfg.MinExploration
	}

	total := 0.0
	for _, s := range active {
		if s == best {
			s.Weight = (1 - epsilon) + epsilon/n
		} else {
			s.Weight = epsilon / n
		}
		total += s.Weight
	}
	for _, s := range active {
		s.Weight /= total
	}

	a.logger.Debug("weights updated",
		"best", best.ID, "reward", bestReward, "epsilon", epsilon)
}

// Weight returns a strategy's current weight, 0 for unknown ids.
func (a *Arbitrator) Weight(strategyID string) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if s, ok := a.strategies[strategyID]; ok {
		return s.Weight
	}
	return 0
}

// Weights returns a copy of the current weight map for active strategies.
func (a *Arbitrator) Weights() map[string]float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]float64, len(a.strategies))
	for id, s := range a.strategies {
		if s.Active {
			out[id] = s.Weight
		}
	}
	return out
}

// Roster returns a copy of every tracked sub-strategy, in roster order.
func (a *Arbitrator) Roster() []SubStrategy {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]SubStrategy, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, *a.strategies[id])
	}
	return out
}

// Restore replaces performance records and weights from a saved roster.
// Strategies absent from the saved roster keep their current state.
func (a *Arbitrator) Restore(saved []SubStrategy) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range saved {
		if cur, ok := a.strategies[s.ID]; ok {
			cp := s
			cp.Label = cur.Label
			*cur = cp
		}
	}
}
