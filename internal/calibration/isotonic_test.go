package calibration

import (
	"testing"
	"time"
)

func pts(pairs ...[2]float64) []DataPoint {
	out := make([]DataPoint, 0, len(pairs))
	ts := time.Now()
	for _, pr := range pairs {
		out = append(out, DataPoint{RawPrediction: pr[0], Outcome: pr[1], Timestamp: ts, Weight: 1})
	}
	return out
}

// TestFitIsotonicPoolsViolators feeds a window where the middle bin's mean
// outcome dips below its predecessor and checks the fitted steps come out
// non-decreasing.
func TestFitIsotonicPoolsViolators(t *testing.T) {
	points := pts(
		[2]float64{0.10, 0}, [2]float64{0.15, 1}, // bin 1: mean 0.5
		[2]float64{0.40, 0}, [2]float64{0.45, 0}, // bin 2: mean 0.0, violator
		[2]float64{0.80, 1}, [2]float64{0.85, 1}, // bin 3: mean 1.0
	)
	bins, ok := fitIsotonic(points, 2)
	if !ok {
		t.Fatal("fit failed on valid window")
	}
	for i := 1; i < len(bins); i++ {
		if bins[i].Value < bins[i-1].Value {
			t.Errorf("bin %d value %.3f below predecessor %.3f", i, bins[i].Value, bins[i-1].Value)
		}
	}
	// The dipping bin must have been raised to its predecessor's level.
	if len(bins) >= 2 && bins[1].Value != bins[0].Value {
		t.Errorf("violator bin value = %.3f, want pooled to %.3f", bins[1].Value, bins[0].Value)
	}
}

func TestApplyIsotonicEndsClamped(t *testing.T) {
	bins := []IsotonicBin{
		{Lower: 0.2, Upper: 0.4, Value: 0.25},
		{Lower: 0.4, Upper: 0.7, Value: 0.60},
	}
	if got := applyIsotonic(bins, 0.05); got != 0.25 {
		t.Errorf("below first bin: got %.3f, want first value 0.25", got)
	}
	if got := applyIsotonic(bins, 0.95); got != 0.60 {
		t.Errorf("above last bin: got %.3f, want last value 0.60", got)
	}
	if got := applyIsotonic(bins, 0.5); got != 0.60 {
		t.Errorf("inside second bin: got %.3f, want 0.60", got)
	}
}

func TestFitIsotonicRejectsTinyWindow(t *testing.T) {
	if _, ok := fitIsotonic(pts([2]float64{0.5, 1}), 1); ok {
		t.Error("fit succeeded on a single point")
	}
}
