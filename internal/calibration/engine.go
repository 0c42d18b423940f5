package calibration

import (
	"context"
	"math"
	"sort"
	"time"

	"adaptive-decision-core/internal/logging"
	"adaptive-decision-core/internal/syncx"
)

// Config bounds the rolling windows and training.
type Config struct {
	MinDataPoints int           `json:"min_data_points"` // minimum window size to train
	WindowSize    int           `json:"window_size"`     // maximum points per strategy
	MaxAge        time.Duration `json:"max_age"`         // maximum point age
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{
		MinDataPoints: 20,
		WindowSize:    500,
		MaxAge:        30 * 24 * time.Hour,
	}
}

// Confidence bounds for calibrated outputs. Uncalibrated passthrough always
// reports 0.5.
const (
	minConfidence         = 0.3
	maxConfidence         = 0.95
	passthroughConfidence = 0.5
	volumeBonusCap        = 0.1
	volumeBonusScale      = 1000.0
	extremenessBonus      = 0.1
)

// Engine maintains rolling calibration windows and trained models per
// strategy. Concurrent Calibrate calls run as readers; AddDataPoint and
// Train take the writer side so a retrain never races an in-flight lookup.
type Engine struct {
	lock    *syncx.RWLock
	cfg     Config
	windows map[string]*rollingWindow
	models  map[string]map[Method]*Model
	logger  *logging.Logger
	now     func() time.Time
}

// NewEngine creates a calibration engine.
func NewEngine(cfg Config, logger *logging.Logger) *Engine {
	if cfg.MinDataPoints <= 0 {
		cfg.MinDataPoints = DefaultConfig().MinDataPoints
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultConfig().WindowSize
	}
	return &Engine{
		lock:    syncx.NewRWLock(),
		cfg:     cfg,
		windows: make(map[string]*rollingWindow),
		models:  make(map[string]map[Method]*Model),
		logger:  logger.WithComponent("calibration"),
		now:     time.Now,
	}
}

// AddDataPoint appends a realized outcome to the strategy's rolling window,
// evicting stale and surplus points oldest first. The raw prediction is
// clamped into (0,1); outcome is coerced to {0,1}.
func (e *Engine) AddDataPoint(ctx context.Context, strategyID string, rawPrediction, outcome float64, ts time.Time, weight float64) error {
	if outcome > 0.5 {
		outcome = 1
	} else {
		outcome = 0
	}
	if weight <= 0 {
		weight = 1
	}
	point := DataPoint{
		RawPrediction: clampOpen01(rawPrediction),
		Outcome:       outcome,
		Timestamp:     ts,
		Weight:        weight,
	}

	return e.lock.RunWrite(ctx, func() error {
		w, ok := e.windows[strategyID]
		if !ok {
			w = newRollingWindow(e.cfg.MaxAge, e.cfg.WindowSize)
			e.windows[strategyID] = w
		}
		w.add(point, e.now())
		return nil
	})
}

// Train fits and atomically publishes a model for the strategy. Insufficient
// data and zero-variance windows are soft failures: the previous model stays
// published and the corresponding sentinel error is returned.
func (e *Engine) Train(ctx context.Context, strategyID string, method Method) (*Model, error) {
	var model *Model
	var trainErr error

	err := e.lock.RunWrite(ctx, func() error {
		w, ok := e.windows[strategyID]
		if !ok || w.len() < e.cfg.MinDataPoints {
			trainErr = ErrInsufficientData
			return nil
		}
		if !w.hasVariance() {
			trainErr = ErrDegenerateWindow
			return nil
		}

		points := w.snapshot()
		m := &Model{
			Method:     method,
			TrainedAt:  e.now(),
			PointCount: len(points),
		}
		switch method {
		case Platt:
			a, b, ok := fitPlatt(points)
			if !ok {
				trainErr = ErrDegenerateWindow
				return nil
			}
			m.PlattA, m.PlattB = a, b
		case Isotonic:
			bins, ok := fitIsotonic(points, e.cfg.MinDataPoints/4)
			if !ok {
				trainErr = ErrDegenerateWindow
				return nil
			}
			m.Bins = bins
		default:
			trainErr = ErrDegenerateWindow
			return nil
		}
		m.Metrics = Evaluate(points, m)

		if e.models[strategyID] == nil {
			e.models[strategyID] = make(map[Method]*Model)
		}
		e.models[strategyID][method] = m
		model = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	if trainErr != nil {
		e.logger.Debug("training skipped",
			"strategy", strategyID, "method", string(method), "reason", trainErr)
		return nil, trainErr
	}

	e.logger.Info("calibration model trained",
		"strategy", strategyID,
		"method", string(method),
		"points", model.PointCount,
		"brier", model.Metrics.BrierScore,
		"ece", model.Metrics.ECE)
	return model, nil
}

// Calibrate maps a raw prediction to a calibrated probability and a
// confidence. Without a trained model it degrades to passthrough: the raw
// prediction unchanged with confidence 0.5.
func (e *Engine) Calibrate(ctx context.Context, strategyID string, rawPrediction float64, method Method) (probability, confidence float64) {
	probability = clamp01(rawPrediction)
	confidence = passthroughConfidence

	_ = e.lock.RunRead(ctx, func() error {
		byMethod, ok := e.models[strategyID]
		if !ok {
			return nil
		}
		model, ok := byMethod[method]
		if !ok {
			return nil
		}
		probability = model.Apply(rawPrediction)
		confidence = modelConfidence(model, probability)
		return nil
	})
	return probability, confidence
}

// modelConfidence derives a confidence from the model's reliability, a data
// volume bonus capped at 0.1, and an extremeness bonus rewarding outputs far
// from 0.5. Clamped to [0.3, 0.95].
func modelConfidence(model *Model, probability float64) float64 {
	volume := float64(model.PointCount) / volumeBonusScale
	if volume > volumeBonusCap {
		volume = volumeBonusCap
	}
	extreme := extremenessBonus * 2 * math.Abs(probability-0.5)

	c := model.Metrics.Reliability + volume + extreme
	if c < minConfidence {
		return minConfidence
	}
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}

// Model returns the published model for a strategy and method, or nil.
func (e *Engine) Model(ctx context.Context, strategyID string, method Method) *Model {
	var model *Model
	_ = e.lock.RunRead(ctx, func() error {
		if byMethod, ok := e.models[strategyID]; ok {
			model = byMethod[method]
		}
		return nil
	})
	return model
}

// WindowLen reports the strategy's current window size.
func (e *Engine) WindowLen(ctx context.Context, strategyID string) int {
	n := 0
	_ = e.lock.RunRead(ctx, func() error {
		if w, ok := e.windows[strategyID]; ok {
			n = w.len()
		}
		return nil
	})
	return n
}

// StrategyIDs lists every strategy with a window, sorted.
func (e *Engine) StrategyIDs(ctx context.Context) []string {
	var ids []string
	_ = e.lock.RunRead(ctx, func() error {
		for id := range e.windows {
			ids = append(ids, id)
		}
		return nil
	})
	sort.Strings(ids)
	return ids
}

// TrainAll retrains both model families for every strategy. Soft failures
// per strategy are logged and skipped.
func (e *Engine) TrainAll(ctx context.Context) {
	for _, id := range e.StrategyIDs(ctx) {
		for _, method := range []Method{Platt, Isotonic} {
			if _, err := e.Train(ctx, id, method); err != nil && ctx.Err() != nil {
				return
			}
		}
	}
}

// Snapshot captures windows and models for persistence.
type Snapshot struct {
	Windows map[string][]DataPoint          `json:"windows"`
	Models  map[string]map[Method]*Model    `json:"models"`
}

// Snapshot returns a deep copy of the engine state.
func (e *Engine) Snapshot(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{
		Windows: make(map[string][]DataPoint),
		Models:  make(map[string]map[Method]*Model),
	}
	err := e.lock.RunRead(ctx, func() error {
		for id, w := range e.windows {
			snap.Windows[id] = w.snapshot()
		}
		for id, byMethod := range e.models {
			cp := make(map[Method]*Model, len(byMethod))
			for method, m := range byMethod {
				mc := *m
				cp[method] = &mc
			}
			snap.Models[id] = cp
		}
		return nil
	})
	return snap, err
}

// Restore replaces the engine state from a snapshot, re-applying eviction
// bounds to the restored windows.
func (e *Engine) Restore(ctx context.Context, snap Snapshot) error {
	return e.lock.RunWrite(ctx, func() error {
		e.windows = make(map[string]*rollingWindow, len(snap.Windows))
		now := e.now()
		for id, points := range snap.Windows {
			w := newRollingWindow(e.cfg.MaxAge, e.cfg.WindowSize)
			for _, p := range points {
				w.add(p, now)
			}
			e.windows[id] = w
		}
		e.models = make(map[string]map[Method]*Model, len(snap.Models))
		for id, byMethod := range snap.Models {
			cp := make(map[Method]*Model, len(byMethod))
			for method, m := range byMethod {
				mc := *m
				cp[method] = &mc
			}
			e.models[id] = cp
		}
		return nil
	})
}
