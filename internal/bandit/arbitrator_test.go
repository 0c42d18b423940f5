package bandit

import (
	"math"
	"testing"
	"time"

	"adaptive-decision-core/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New(&logging.Config{Level: "ERROR", Output: "stderr"})
}

func newTestArbitrator(cfg Config) *Arbitrator {
	return NewArbitrator(cfg, testLogger(),
		SubStrategy{ID: "trend", Label: "Trend", Active: true},
		SubStrategy{ID: "revert", Label: "Mean Reversion", Active: true},
		SubStrategy{ID: "breakout", Label: "Breakout", Active: true},
	)
}

// feedRecord gives a strategy wins out of total outcomes with a flat return.
func feedRecord(a *Arbitrator, id string, wins, total int, ret float64) {
	at := time.Now()
	for i := 0; i < total; i++ {
		a.RecordOutcome(id, i < wins, ret, at)
	}
}

func sumWeights(a *Arbitrator) float64 {
	sum := 0.0
	for _, w := range a.Weights() {
		sum += w
	}
	return sum
}

func TestInitialWeightsEqual(t *testing.T) {
	a := newTestArbitrator(DefaultConfig())
	for id, w := range a.Weights() {
		if math.Abs(w-1.0/3.0) > 1e-9 {
			t.Errorf("initial weight[%s] = %.4f, want 1/3", id, w)
		}
	}
}

func TestWeightsSumToOne(t *testing.T) {
	a := newTestArbitrator(DefaultConfig())
	feedRecord(a, "trend", 16, 20, 0.01)
	feedRecord(a, "revert", 9, 20, -0.005)
	feedRecord(a, "breakout", 11, 20, 0.002)

	a.UpdateWeights(time.Now())
	if sum := sumWeights(a); math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("weights sum to %.6f, want 1", sum)
	}
}

func TestBestStrategyGetsExploitationShare(t *testing.T) {
	a := newTestArbitrator(DefaultConfig())
	feedRecord(a, "trend", 18, 20, 0.01)
	feedRecord(a, "revert", 8, 20, 0)
	feedRecord(a, "breakout", 10, 20, 0)

	a.UpdateWeights(time.Now())

	best := a.Weight("trend")
	if best < 1.0/3.0 {
		t.Errorf("best weight %.4f below uniform 1/3", best)
	}
	if best <= a.Weight("revert") || best <= a.Weight("breakout") {
		t.Errorf("best strategy not dominant: trend=%.4f revert=%.4f breakout=%.4f",
			best, a.Weight("revert"), a.Weight("breakout"))
	}
}

// TestEpsilonDecay simulates a long-running arbitrator: as elapsed time
// grows, exploration decays to the floor and the dominant weight approaches
// (1 - MinExploration) + MinExploration/N.
func TestEpsilonDecay(t *testing.T) {
	cfg := DefaultConfig()
	a := newTestArbitrator(cfg)
	feedRecord(a, "trend", 18, 20, 0.01)
	feedRecord(a, "revert", 8, 20, 0)
	feedRecord(a, "breakout", 10, 20, 0)

	a.UpdateWeights(a.startedAt)
	early := a.Weight("trend")

	a.UpdateWeights(a.startedAt.Add(200 * cfg.UpdateInterval))
	late := a.Weight("trend")

	if late <= early {
		t.Errorf("dominant weight did not grow with decay: early=%.4f late=%.4f", early, late)
	}

	n := 3.0
	wantBest := (1 - cfg.MinExploration) + cfg.MinExploration/n
	if math.Abs(late-wantBest) > 1e-6 {
		t.Errorf("late best weight = %.6f, want %.6f at exploration floor", late, wantBest)
	}
	wantOther := cfg.MinExploration / n
	if got := a.Weight("revert"); math.Abs(got-wantOther) > 1e-6 {
		t.Errorf("late explorer weight = %.6f, want %.6f", got, wantOther)
	}
	if sum := sumWeights(a); math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("weights sum to %.6f, want 1", sum)
	}
}

func TestPositiveReturnBreaksAccuracyTie(t *testing.T) {
	a := newTestArbitrator(DefaultConfig())
	feedRecord(a, "trend", 12, 20, 0.02)
	feedRecord(a, "revert", 12, 20, -0.02)
	feedRecord(a, "breakout", 5, 20, 0)

	a.UpdateWeights(time.Now())
	if a.Weight("trend") <= a.Weight("revert") {
		t.Errorf("positive-return strategy not preferred: trend=%.4f revert=%.4f",
			a.Weight("trend"), a.Weight("revert"))
	}
}

func TestSingleActiveStrategyTakesAll(t *testing.T) {
	a := NewArbitrator(DefaultConfig(), testLogger(),
		SubStrategy{ID: "only", Label: "Only", Active: true, Weight: 0.4},
		SubStrategy{ID: "off", Label: "Off", Active: false, Weight: 0.6, TotalPredictions: 1},
	)
	a.UpdateWeights(time.Now())
	if got := a.Weight("only"); got != 1 {
		t.Fatalf("single active weight = %.4f, want 1", got)
	}
}

func TestRecordOutcomeUnknownIDIgnored(t *testing.T) {
	a := newTestArbitrator(DefaultConfig())
	a.RecordOutcome("ghost", true, 0.5, time.Now())
	if got := a.Weight("ghost"); got != 0 {
		t.Fatalf("unknown strategy acquired weight %.4f", got)
	}
}

func TestRestoreReplacesRecords(t *testing.T) {
	a := newTestArbitrator(DefaultConfig())
	feedRecord(a, "trend", 10, 10, 0.01)

	saved := a.Roster()
	b := newTestArbitrator(DefaultConfig())
	b.Restore(saved)

	roster := b.Roster()
	for _, s := range roster {
		if s.ID == "trend" {
			if s.TotalPredictions != 10 || s.CorrectPredictions != 10 {
				t.Errorf("restored record = %d/%d, want 10/10", s.CorrectPredictions, s.TotalPredictions)
			}
		}
	}
}
