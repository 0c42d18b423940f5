package calibration

import (
	"math"
	"testing"
)

func TestLogitSigmoidRoundtrip(t *testing.T) {
	for _, p := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
		if got := sigmoid(logit(p)); math.Abs(got-p) > 1e-9 {
			t.Errorf("sigmoid(logit(%.1f)) = %.9f", p, got)
		}
	}
}

func TestFitPlattRecoversDirection(t *testing.T) {
	points := make([]DataPoint, 0, 40)
	for i := 0; i < 20; i++ {
		points = append(points,
			DataPoint{RawPrediction: 0.2 + 0.01*float64(i), Outcome: 0, Weight: 1},
			DataPoint{RawPrediction: 0.7 + 0.01*float64(i), Outcome: 1, Weight: 1},
		)
	}
	a, b, ok := fitPlatt(points)
	if !ok {
		t.Fatal("fit failed on separable window")
	}
	if a <= 0 {
		t.Errorf("slope a = %.4f, want positive on positively correlated data", a)
	}
	lo, hi := applyPlatt(a, b, 0.2), applyPlatt(a, b, 0.9)
	if hi <= lo {
		t.Errorf("applyPlatt(0.9)=%.4f not above applyPlatt(0.2)=%.4f", hi, lo)
	}
	if lo < 0 || lo > 1 || hi < 0 || hi > 1 {
		t.Errorf("outputs outside [0,1]: %.4f, %.4f", lo, hi)
	}
}

func TestFitPlattRejectsTinyWindow(t *testing.T) {
	if _, _, ok := fitPlatt([]DataPoint{{RawPrediction: 0.5, Outcome: 1, Weight: 1}}); ok {
		t.Error("fit succeeded on a single point")
	}
}
