package store

import (
	"context"
	"testing"
	"time"

	"adaptive-decision-core/internal/adaptive"
	"adaptive-decision-core/internal/bandit"
	"adaptive-decision-core/internal/calibration"
	"adaptive-decision-core/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New(&logging.Config{Level: "ERROR", Output: "stderr"})
}

func newCore(logger *logging.Logger) (*calibration.Engine, *bandit.Arbitrator, *adaptive.Manager) {
	engine := calibration.NewEngine(calibration.Config{
		MinDataPoints: 4,
		WindowSize:    100,
		MaxAge:        24 * time.Hour,
	}, logger)
	arbitrator := bandit.NewArbitrator(bandit.DefaultConfig(), logger,
		bandit.SubStrategy{ID: "trend", Label: "Trend", Active: true},
		bandit.SubStrategy{ID: "revert", Label: "Mean Reversion", Active: true},
	)
	return engine, arbitrator, adaptive.NewManager(logger)
}

func TestPersisterRoundtrip(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()
	backing := NewMemoryStore()

	engine, arbitrator, params := newCore(logger)
	now := time.Now()
	for i := 0; i < 10; i++ {
		raw := 0.2 + 0.06*float64(i)
		outcome := 0.0
		if raw > 0.5 {
			outcome = 1
		}
		if err := engine.AddDataPoint(ctx, "trend", raw, outcome, now, 1); err != nil {
			t.Fatalf("add point: %v", err)
		}
		arbitrator.RecordOutcome("trend", outcome == 1, 0.01, now)
	}
	if _, err := engine.Train(ctx, "trend", calibration.Isotonic); err != nil {
		t.Fatalf("train: %v", err)
	}

	NewPersister(backing, engine, arbitrator, params, logger).SaveAll(ctx)

	engine2, arbitrator2, params2 := newCore(logger)
	NewPersister(backing, engine2, arbitrator2, params2, logger).LoadAll(ctx)

	if got, want := engine2.WindowLen(ctx, "trend"), engine.WindowLen(ctx, "trend"); got != want {
		t.Errorf("restored window length = %d, want %d", got, want)
	}
	if engine2.Model(ctx, "trend", calibration.Isotonic) == nil {
		t.Error("trained model not restored")
	}

	wantP, wantC := engine.Calibrate(ctx, "trend", 0.7, calibration.Isotonic)
	gotP, gotC := engine2.Calibrate(ctx, "trend", 0.7, calibration.Isotonic)
	if gotP != wantP || gotC != wantC {
		t.Errorf("restored calibrate = (%.4f, %.4f), want (%.4f, %.4f)", gotP, gotC, wantP, wantC)
	}

	for _, s := range arbitrator2.Roster() {
		if s.ID == "trend" && s.TotalPredictions != 10 {
			t.Errorf("restored roster record = %d predictions, want 10", s.TotalPredictions)
		}
	}
}

func TestLoadAllEmptyStoreIsFirstStart(t *testing.T) {
	ctx := context.Background()
	logger := testLogger()
	engine, arbitrator, params := newCore(logger)

	// Nothing saved yet: LoadAll must leave the fresh state untouched.
	NewPersister(NewMemoryStore(), engine, arbitrator, params, logger).LoadAll(ctx)

	if got := engine.WindowLen(ctx, "trend"); got != 0 {
		t.Errorf("window length = %d after empty load, want 0", got)
	}
	if got := arbitrator.Weight("trend"); got != 0.5 {
		t.Errorf("weight = %.2f after empty load, want initial 0.5", got)
	}
	if got := params.Current().Version; got != 1 {
		t.Errorf("parameter version = %d after empty load, want 1", got)
	}
}
