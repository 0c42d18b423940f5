// Package decision assembles the final adaptive decision: it reads the
// latest classified market state, adjusts the parameter set, calibrates the
// raw prediction, and attaches the active sub-strategy's bandit weight. At
// most one decision is assembled at a time; overlapping cycles queue on a
// fair mutex, and a caller whose wait times out receives a stale-but-valid
// decision instead of an aborted pipeline.
package decision

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"adaptive-decision-core/internal/adaptive"
	"adaptive-decision-core/internal/bandit"
	"adaptive-decision-core/internal/calibration"
	"adaptive-decision-core/internal/events"
	"adaptive-decision-core/internal/logging"
	"adaptive-decision-core/internal/regime"
	"adaptive-decision-core/internal/syncx"
)

// RegimeProvider supplies the latest classified market state. The classifier
// itself is outside this core.
type RegimeProvider interface {
	CurrentMarketState() regime.MarketStateResult
}

// StaticProvider is a RegimeProvider fed manually, used as the integration
// point for an external classifier and in tests.
type StaticProvider struct {
	mu    sync.RWMutex
	state regime.MarketStateResult
}

// Set publishes a new market state.
func (p *StaticProvider) Set(state regime.MarketStateResult) {
	p.mu.Lock()
	p.state = state
	p.mu.Unlock()
}

// CurrentMarketState returns the last published market state.
func (p *StaticProvider) CurrentMarketState() regime.MarketStateResult {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Decision is the orchestrator's output, consumed by the external
// recommendation tracker.
type Decision struct {
	ID                    string                      `json:"id"`
	StrategyID            string                      `json:"strategy_id"`
	RawPrediction         float64                     `json:"raw_prediction"`
	CalibratedProbability float64                     `json:"calibrated_probability"`
	Confidence            float64                     `json:"confidence"`
	StrategyWeight        float64                     `json:"strategy_weight"`
	Parameters            adaptive.AdaptiveParameters `json:"parameters"`
	MarketState           regime.MarketStateResult    `json:"market_state"`
	Stale                 bool                        `json:"stale"` // built from last published state after a lock timeout
	CreatedAt             time.Time                   `json:"created_at"`
}

// Orchestrator glues the parameter manager, calibration engine, and bandit
// arbitrator into one decision pipeline.
type Orchestrator struct {
	mu         *syncx.Mutex
	params     *adaptive.Manager
	engine     *calibration.Engine
	arbitrator *bandit.Arbitrator
	regimes    RegimeProvider
	bus        *events.Bus
	method     calibration.Method
	logger     *logging.Logger
	now        func() time.Time
}

// NewOrchestrator wires the decision pipeline. method selects which
// calibration model family Decide uses.
func NewOrchestrator(
	params *adaptive.Manager,
	engine *calibration.Engine,
	arbitrator *bandit.Arbitrator,
	regimes RegimeProvider,
	bus *events.Bus,
	method calibration.Method,
	logger *logging.Logger,
) *Orchestrator {
	return &Orchestrator{
		mu:         syncx.NewMutex(),
		params:     params,
		engine:     engine,
		arbitrator: arbitrator,
		regimes:    regimes,
		bus:        bus,
		method:     method,
		logger:     logger.WithComponent("decision"),
		now:        time.Now,
	}
}

// Decide produces one adaptive decision for a raw strategy prediction. The
// whole pipeline runs inside the exclusion lock so two overlapping cycles
// cannot interleave partial parameter updates. If the lock cannot be
// acquired before ctx is done, the last published parameters are reused and
// the decision is marked stale; a decision is always returned.
func (o *Orchestrator) Decide(ctx context.Context, strategyID string, rawPrediction float64) Decision {
	var d Decision
	err := o.mu.RunExclusive(ctx, func() error {
		state := o.regimes.CurrentMarketState()
		params := o.params.AdjustParameters(state)
		prob, conf := o.engine.Calibrate(ctx, strategyID, rawPrediction, o.method)

		d = Decision{
			ID:                    uuid.NewString(),
			StrategyID:            strategyID,
			RawPrediction:         rawPrediction,
			CalibratedProbability: prob,
			Confidence:            conf,
			StrategyWeight:        o.arbitrator.Weight(strategyID),
			Parameters:            params,
			MarketState:           state,
			CreatedAt:             o.now(),
		}
		return nil
	})
	if err != nil {
		// Lock wait timed out: degrade to the last published state rather
		// than fail the pipeline.
		d = Decision{
			ID:                    uuid.NewString(),
			StrategyID:            strategyID,
			RawPrediction:         rawPrediction,
			CalibratedProbability: rawPrediction,
			Confidence:            0.5,
			StrategyWeight:        o.arbitrator.Weight(strategyID),
			Parameters:            o.params.Current(),
			Stale:                 true,
			CreatedAt:             o.now(),
		}
		o.logger.Warn("decision built from stale state",
			"strategy", strategyID, "error", err)
		return d
	}

	o.bus.Publish(events.EventDecisionEmitted, map[string]interface{}{
		"decision_id": d.ID,
		"strategy_id": d.StrategyID,
		"probability": d.CalibratedProbability,
		"confidence":  d.Confidence,
		"weight":      d.StrategyWeight,
		"regime":      d.MarketState.Regime.String(),
	})
	return d
}

// RecordOutcome feeds a realized outcome back into the calibration window
// and the bandit performance record. correct means the prediction direction
// matched the outcome; realizedReturn is the trade's return proxy.
func (o *Orchestrator) RecordOutcome(ctx context.Context, strategyID string, rawPrediction float64, won bool, realizedReturn float64, at time.Time) error {
	outcome := 0.0
	if won {
		outcome = 1
	}
	if err := o.engine.AddDataPoint(ctx, strategyID, rawPrediction, outcome, at, 1); err != nil {
		return err
	}
	o.arbitrator.RecordOutcome(strategyID, won, realizedReturn, at)
	return nil
}

// RunMaintenance retrains every strategy's calibration models and refreshes
// bandit weights. Scheduled on the slow (default 24h) cadence.
func (o *Orchestrator) RunMaintenance(ctx context.Context) {
	o.engine.TrainAll(ctx)
	o.bus.Publish(events.EventModelTrained, map[string]interface{}{
		"strategies": o.engine.StrategyIDs(ctx),
	})
	o.RefreshWeights(ctx)
}

// RefreshWeights recomputes bandit weights without retraining calibration.
// Scheduled on the fast (default 1h) cadence.
func (o *Orchestrator) RefreshWeights(_ context.Context) {
	o.arbitrator.UpdateWeights(o.now())
	o.bus.Publish(events.EventWeightsUpdated, map[string]interface{}{
		"weights": o.arbitrator.Weights(),
	})
}

// LockWaiters reports how many decision cycles are queued, for diagnostics.
func (o *Orchestrator) LockWaiters() int {
	return o.mu.WaitingCount()
}
