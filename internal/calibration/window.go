package calibration

import "time"

// rollingWindow holds a strategy's recent (prediction, outcome) pairs,
// bounded by both a maximum age and a maximum count. Points arrive in
// outcome order, so eviction always drops from the front.
type rollingWindow struct {
	points   []DataPoint
	maxAge   time.Duration
	maxCount int
}

func newRollingWindow(maxAge time.Duration, maxCount int) *rollingWindow {
	return &rollingWindow{
		points:   make([]DataPoint, 0, maxCount),
		maxAge:   maxAge,
		maxCount: maxCount,
	}
}

func (w *rollingWindow) add(p DataPoint, now time.Time) {
	w.points = append(w.points, p)
	w.evict(now)
}

// evict drops points older than maxAge, then trims to maxCount, oldest first.
func (w *rollingWindow) evict(now time.Time) {
	if w.maxAge > 0 {
		cutoff := now.Add(-w.maxAge)
		i := 0
		for i < len(w.points) && w.points[i].Timestamp.Before(cutoff) {
			i++
		}
		if i > 0 {
			w.points = w.points[i:]
		}
	}
	if w.maxCount > 0 && len(w.points) > w.maxCount {
		w.points = w.points[len(w.points)-w.maxCount:]
	}
}

func (w *rollingWindow) len() int {
	return len(w.points)
}

func (w *rollingWindow) snapshot() []DataPoint {
	out := make([]DataPoint, len(w.points))
	copy(out, w.points)
	return out
}

// hasVariance reports whether the window carries any signal to fit: both the
// predictions and the outcomes must take at least two distinct values.
func (w *rollingWindow) hasVariance() bool {
	if len(w.points) < 2 {
		return false
	}
	firstPred := w.points[0].RawPrediction
	firstOut := w.points[0].Outcome
	predVaries, outVaries := false, false
	for _, p := range w.points[1:] {
		if p.RawPrediction != firstPred {
			predVaries = true
		}
		if p.Outcome != firstOut {
			outVaries = true
		}
		if predVaries && outVaries {
			return true
		}
	}
	return false
}
