package decision

import (
	"context"
	"testing"
	"time"

	"adaptive-decision-core/internal/adaptive"
	"adaptive-decision-core/internal/bandit"
	"adaptive-decision-core/internal/calibration"
	"adaptive-decision-core/internal/events"
	"adaptive-decision-core/internal/logging"
	"adaptive-decision-core/internal/regime"
)

func testLogger() *logging.Logger {
	return logging.New(&logging.Config{Level: "ERROR", Output: "stderr"})
}

type fixture struct {
	orchestrator *Orchestrator
	params       *adaptive.Manager
	engine       *calibration.Engine
	arbitrator   *bandit.Arbitrator
	provider     *StaticProvider
	bus          *events.Bus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := testLogger()
	params := adaptive.NewManager(logger)
	engine := calibration.NewEngine(calibration.Config{
		MinDataPoints: 4,
		WindowSize:    100,
		MaxAge:        24 * time.Hour,
	}, logger)
	arbitrator := bandit.NewArbitrator(bandit.DefaultConfig(), logger,
		bandit.SubStrategy{ID: "trend", Label: "Trend", Active: true},
		bandit.SubStrategy{ID: "revert", Label: "Mean Reversion", Active: true},
	)
	provider := &StaticProvider{}
	provider.Set(regime.MarketStateResult{
		Regime:             regime.TrendingUp,
		Confidence:         0.8,
		TrendStrength:      35,
		Volatility:         regime.VolatilityNormal,
		TimeframeAgreement: 0.7,
		Timestamp:          time.Now(),
	})
	bus := events.NewBus()
	return &fixture{
		orchestrator: NewOrchestrator(params, engine, arbitrator, provider, bus, calibration.Isotonic, logger),
		params:       params,
		engine:       engine,
		arbitrator:   arbitrator,
		provider:     provider,
		bus:          bus,
	}
}

func TestDecidePipeline(t *testing.T) {
	f := newFixture(t)
	var emitted []events.Event
	f.bus.Subscribe(events.EventDecisionEmitted, func(e events.Event) { emitted = append(emitted, e) })

	d := f.orchestrator.Decide(context.Background(), "trend", 0.73)

	if d.ID == "" {
		t.Error("decision id not assigned")
	}
	if d.Stale {
		t.Error("decision marked stale on uncontended lock")
	}
	if d.StrategyID != "trend" {
		t.Errorf("strategy id = %q, want trend", d.StrategyID)
	}
	if d.RawPrediction != 0.73 {
		t.Errorf("raw prediction = %.2f, want 0.73", d.RawPrediction)
	}
	// No model is trained yet: calibration degrades to passthrough.
	if d.CalibratedProbability != 0.73 || d.Confidence != 0.5 {
		t.Errorf("passthrough = (%.2f, %.2f), want (0.73, 0.5)", d.CalibratedProbability, d.Confidence)
	}
	if d.StrategyWeight != 0.5 {
		t.Errorf("strategy weight = %.2f, want initial 0.5", d.StrategyWeight)
	}
	if d.Parameters.Regime != regime.TrendingUp {
		t.Errorf("parameters stamped with regime %v, want TRENDING_UP", d.Parameters.Regime)
	}
	if d.MarketState.Regime != regime.TrendingUp {
		t.Errorf("market state regime = %v, want TRENDING_UP", d.MarketState.Regime)
	}
	if len(emitted) != 1 {
		t.Fatalf("emitted %d decision events, want 1", len(emitted))
	}
	if emitted[0].Data["decision_id"] != d.ID {
		t.Errorf("event decision id = %v, want %s", emitted[0].Data["decision_id"], d.ID)
	}
}

// TestDecideStaleOnLockTimeout holds the pipeline lock and issues a Decide
// whose context is already cancelled: the caller must still get a decision,
// marked stale and built from the last published parameters, and no decision
// event may fire.
func TestDecideStaleOnLockTimeout(t *testing.T) {
	f := newFixture(t)
	var emitted int
	f.bus.Subscribe(events.EventDecisionEmitted, func(events.Event) { emitted++ })

	if err := f.orchestrator.mu.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire pipeline lock: %v", err)
	}
	defer f.orchestrator.mu.Release()

	before := f.params.Current()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := f.orchestrator.Decide(ctx, "trend", 0.6)

	if !d.Stale {
		t.Fatal("decision not marked stale")
	}
	if d.CalibratedProbability != 0.6 || d.Confidence != 0.5 {
		t.Errorf("stale decision = (%.2f, %.2f), want raw passthrough (0.60, 0.50)",
			d.CalibratedProbability, d.Confidence)
	}
	if d.Parameters.Version != before.Version {
		t.Errorf("stale decision advanced parameters to version %d, want %d",
			d.Parameters.Version, before.Version)
	}
	if emitted != 0 {
		t.Errorf("stale decision emitted %d events, want 0", emitted)
	}
}

func TestRecordOutcomeFeedsEngineAndBandit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if err := f.orchestrator.RecordOutcome(ctx, "trend", 0.7, true, 0.012, time.Now()); err != nil {
		t.Fatalf("record outcome: %v", err)
	}
	if err := f.orchestrator.RecordOutcome(ctx, "trend", 0.3, false, -0.008, time.Now()); err != nil {
		t.Fatalf("record outcome: %v", err)
	}

	if got := f.engine.WindowLen(ctx, "trend"); got != 2 {
		t.Errorf("calibration window length = %d, want 2", got)
	}
	for _, s := range f.arbitrator.Roster() {
		if s.ID != "trend" {
			continue
		}
		if s.TotalPredictions != 2 || s.CorrectPredictions != 1 {
			t.Errorf("bandit record = %d/%d, want 1/2", s.CorrectPredictions, s.TotalPredictions)
		}
	}
}

func TestRunMaintenanceTrainsAndPublishes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		raw := 0.2 + 0.06*float64(i)
		won := raw > 0.5
		if err := f.orchestrator.RecordOutcome(ctx, "trend", raw, won, 0.01, time.Now()); err != nil {
			t.Fatalf("record outcome: %v", err)
		}
	}

	var trained, weighted int
	f.bus.Subscribe(events.EventModelTrained, func(events.Event) { trained++ })
	f.bus.Subscribe(events.EventWeightsUpdated, func(events.Event) { weighted++ })

	f.orchestrator.RunMaintenance(ctx)

	if trained != 1 {
		t.Errorf("model trained events = %d, want 1", trained)
	}
	if weighted != 1 {
		t.Errorf("weights updated events = %d, want 1", weighted)
	}
	if f.engine.Model(ctx, "trend", calibration.Isotonic) == nil {
		t.Error("maintenance did not publish an isotonic model")
	}

	// Decisions now use the trained model instead of passthrough.
	d := f.orchestrator.Decide(ctx, "trend", 0.7)
	if d.Confidence == 0.5 && d.CalibratedProbability == 0.7 {
		t.Error("decision still passthrough after training")
	}
}

func TestRefreshWeightsPublishes(t *testing.T) {
	f := newFixture(t)
	var got map[string]float64
	f.bus.Subscribe(events.EventWeightsUpdated, func(e events.Event) {
		got, _ = e.Data["weights"].(map[string]float64)
	})

	f.orchestrator.RefreshWeights(context.Background())

	if got == nil {
		t.Fatal("weights event not published")
	}
	sum := 0.0
	for _, w := range got {
		sum += w
	}
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("published weights sum to %.4f, want 1", sum)
	}
}
