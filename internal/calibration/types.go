// Package calibration turns raw strategy predictions into empirically
// calibrated probabilities. It keeps a rolling window of (prediction,
// outcome) pairs per strategy, fits Platt scaling or isotonic regression
// models over the window, and scores model quality with Brier score,
// log-loss, and expected calibration error. Model reads and retrains are
// coordinated through a writer-priority read/write lock so lookups never
// observe a half-published model.
package calibration

import (
	"errors"
	"time"
)

// Method selects the calibration model family.
type Method string

const (
	Platt    Method = "platt"
	Isotonic Method = "isotonic"
)

// Soft failure states. Both leave the previously published model intact;
// callers treat them as degraded data quality, not pipeline failures.
var (
	ErrInsufficientData = errors.New("calibration: not enough data points to train")
	ErrDegenerateWindow = errors.New("calibration: zero-variance window, model not published")
)

// DataPoint pairs a raw prediction with its realized outcome.
type DataPoint struct {
	RawPrediction float64   `json:"raw_prediction"` // (0,1)
	Outcome       float64   `json:"outcome"`        // 0 or 1
	Timestamp     time.Time `json:"timestamp"`
	Weight        float64   `json:"weight"` // defaults to 1
}

// IsotonicBin is one step of the fitted monotone function.
type IsotonicBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Metrics scores a model against a data window.
type Metrics struct {
	BrierScore  float64 `json:"brier_score"` // [0,1], lower is better
	LogLoss     float64 `json:"log_loss"`
	ECE         float64 `json:"ece"`         // expected calibration error
	Reliability float64 `json:"reliability"` // 1 - ECE, clamped to [0,1]
}

// Model is a trained calibration model. It is immutable once published; a
// retrain supersedes it atomically and in-flight readers keep the old one.
type Model struct {
	Method     Method        `json:"method"`
	PlattA     float64       `json:"platt_a,omitempty"`
	PlattB     float64       `json:"platt_b,omitempty"`
	Bins       []IsotonicBin `json:"bins,omitempty"`
	TrainedAt  time.Time     `json:"trained_at"`
	PointCount int           `json:"point_count"`
	Metrics    Metrics       `json:"metrics"`
}

// Apply transforms a raw prediction through the model, clamped to [0,1].
func (m *Model) Apply(raw float64) float64 {
	var p float64
	switch m.Method {
	case Platt:
		p = applyPlatt(m.PlattA, m.PlattB, raw)
	case Isotonic:
		p = applyIsotonic(m.Bins, raw)
	default:
		p = raw
	}
	return clamp01(p)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
