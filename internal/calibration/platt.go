package calibration

import "math"

// Platt scaling fits two scalars (A, B) so that sigmoid(A*logit(p)+B)
// minimizes the log-loss over the window. The fit is a plain fixed-step
// gradient descent; the loss is convex in (A, B) so no line search is needed.
const (
	plattIterations = 500
	plattLearnRate  = 0.05
)

// rawEpsilon keeps logit and log arguments away from 0 and 1.
const rawEpsilon = 1e-6

func clampOpen01(v float64) float64 {
	if v < rawEpsilon {
		return rawEpsilon
	}
	if v > 1-rawEpsilon {
		return 1 - rawEpsilon
	}
	return v
}

func logit(p float64) float64 {
	p = clampOpen01(p)
	return math.Log(p / (1 - p))
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// fitPlatt trains (A, B) over the window. Returns ok=false when the window
// carries no variance to fit.
func fitPlatt(points []DataPoint) (a, b float64, ok bool) {
	if len(points) < 2 {
		return 0, 0, false
	}

	type sample struct {
		x, y, w float64
	}
	samples := make([]sample, 0, len(points))
	sumW := 0.0
	for _, p := range points {
		w := p.Weight
		if w <= 0 {
			w = 1
		}
		samples = append(samples, sample{x: logit(p.RawPrediction), y: p.Outcome, w: w})
		sumW += w
	}
	if sumW == 0 {
		return 0, 0, false
	}

	a, b = 1, 0
	for iter := 0; iter < plattIterations; iter++ {
		gradA, gradB := 0.0, 0.0
		for _, s := range samples {
			err := sigmoid(a*s.x+b) - s.y
			gradA += s.w * err * s.x
			gradB += s.w * err
		}
		a -= plattLearnRate * gradA / sumW
		b -= plattLearnRate * gradB / sumW
	}

	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return 0, 0, false
	}
	return a, b, true
}

func applyPlatt(a, b, raw float64) float64 {
	return sigmoid(a*logit(raw) + b)
}
