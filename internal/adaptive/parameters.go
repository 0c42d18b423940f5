// Package adaptive maintains the canonical, versioned trading parameter set
// and adjusts it per classified market regime through a prioritized rule
// pipeline. Every numeric field is clamped into a documented bound after
// every update, and a capped history of past sets is kept for diagnostics.
package adaptive

import (
	"time"

	"adaptive-decision-core/internal/regime"
)

// Source tags who produced a parameter set.
type Source string

const (
	SourceManual    Source = "manual"
	SourceAutomatic Source = "automatic"
	SourceLearned   Source = "learned"
)

// ThresholdParams drive signal acceptance.
type ThresholdParams struct {
	SignalThreshold     float64 `json:"signal_threshold"`     // [0.1, 0.9]
	EVThreshold         float64 `json:"ev_threshold"`         // [0.0, 0.05]
	ConfidenceThreshold float64 `json:"confidence_threshold"` // [0.3, 0.95]
	MinTrendStrength    float64 `json:"min_trend_strength"`   // [5, 60] ADX-like
	MinVolumeRatio      float64 `json:"min_volume_ratio"`     // [0.5, 5.0]
}

// LeverageParams control position leverage.
type LeverageParams struct {
	BaseLeverage         float64 `json:"base_leverage"`         // [1, 10]
	MaxLeverage          float64 `json:"max_leverage"`          // [1, 20]
	VolatilityMultiplier float64 `json:"volatility_multiplier"` // [0.1, 2.0]
	ConfidenceMultiplier float64 `json:"confidence_multiplier"` // [0.5, 2.0]
}

// CooldownParams throttle signal emission.
type CooldownParams struct {
	SignalCooldown        time.Duration `json:"signal_cooldown"`         // [30s, 1h]
	OppositeSignalCooldown time.Duration `json:"opposite_signal_cooldown"` // [30s, 1h]
	SameDirectionCooldown time.Duration `json:"same_direction_cooldown"` // [30s, 1h]
	VolatilityCooldown    time.Duration `json:"volatility_cooldown"`     // [30s, 2h]
}

// HoldingParams bound position holding duration. The clamp pipeline also
// enforces Min <= Target <= Max.
type HoldingParams struct {
	MinHoldingTime     time.Duration `json:"min_holding_time"`    // [1m, 4h]
	MaxHoldingTime     time.Duration `json:"max_holding_time"`    // [10m, 48h]
	TargetHoldingTime  time.Duration `json:"target_holding_time"` // [1m, 48h]
	AutoTimeoutEnabled bool          `json:"auto_timeout_enabled"`
	TimeoutMultiplier  float64       `json:"timeout_multiplier"` // [1.0, 3.0]
}

// RiskParams size positions and cap losses.
type RiskParams struct {
	StopLossPercent    float64 `json:"stop_loss_percent"`    // [0.5, 10.0]
	TakeProfitPercent  float64 `json:"take_profit_percent"`  // [0.5, 20.0]
	MaxRiskPerTrade    float64 `json:"max_risk_per_trade"`   // [0.1, 5.0] % of account
	PositionSizing     float64 `json:"position_sizing"`      // [0.1, 1.0] fraction of allowance
	MaxDrawdownPercent float64 `json:"max_drawdown_percent"` // [1.0, 30.0]
}

// AdaptiveParameters is the versioned aggregate handed to the risk and
// execution layers. External callers always receive copies.
type AdaptiveParameters struct {
	Version    int                      `json:"version"`
	Thresholds ThresholdParams          `json:"thresholds"`
	Leverage   LeverageParams           `json:"leverage"`
	Cooldowns  CooldownParams           `json:"cooldowns"`
	Holding    HoldingParams            `json:"holding"`
	Risk       RiskParams               `json:"risk"`
	Regime     regime.Regime            `json:"regime"`
	Confidence float64                  `json:"confidence"`
	UpdatedAt  time.Time                `json:"updated_at"`
	Source     Source                   `json:"source"`
}

// Defaults returns the compiled-in default parameter set.
func Defaults() AdaptiveParameters {
	return AdaptiveParameters{
		Version: 1,
		Thresholds: ThresholdParams{
			SignalThreshold:     0.5,
			EVThreshold:         0.005,
			ConfidenceThreshold: 0.6,
			MinTrendStrength:    20,
			MinVolumeRatio:      1.0,
		},
		Leverage: LeverageParams{
			BaseLeverage:         3,
			MaxLeverage:          10,
			VolatilityMultiplier: 1.0,
			ConfidenceMultiplier: 1.0,
		},
		Cooldowns: CooldownParams{
			SignalCooldown:        5 * time.Minute,
			OppositeSignalCooldown: 15 * time.Minute,
			SameDirectionCooldown: 10 * time.Minute,
			VolatilityCooldown:    30 * time.Minute,
		},
		Holding: HoldingParams{
			MinHoldingTime:     15 * time.Minute,
			MaxHoldingTime:     8 * time.Hour,
			TargetHoldingTime:  2 * time.Hour,
			AutoTimeoutEnabled: true,
			TimeoutMultiplier:  1.5,
		},
		Risk: RiskParams{
			StopLossPercent:    2.0,
			TakeProfitPercent:  4.0,
			MaxRiskPerTrade:    1.0,
			PositionSizing:     0.8,
			MaxDrawdownPercent: 10.0,
		},
		Regime:     regime.Sideways,
		Confidence: 0.5,
		Source:     SourceAutomatic,
	}
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampDuration(v, lo, hi time.Duration) time.Duration {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp forces every bounded field into its documented range and restores the
// holding-duration ordering Min <= Target <= Max. Out-of-range values are a
// recognized degraded state, not an error.
func (p *AdaptiveParameters) Clamp() {
	t := &p.Thresholds
	t.SignalThreshold = clampFloat(t.SignalThreshold, 0.1, 0.9)
	t.EVThreshold = clampFloat(t.EVThreshold, 0.0, 0.05)
	t.ConfidenceThreshold = clampFloat(t.ConfidenceThreshold, 0.3, 0.95)
	t.MinTrendStrength = clampFloat(t.MinTrendStrength, 5, 60)
	t.MinVolumeRatio = clampFloat(t.MinVolumeRatio, 0.5, 5.0)

	l := &p.Leverage
	l.BaseLeverage = clampFloat(l.BaseLeverage, 1, 10)
	l.MaxLeverage = clampFloat(l.MaxLeverage, 1, 20)
	if l.BaseLeverage > l.MaxLeverage {
		l.BaseLeverage = l.MaxLeverage
	}
	l.VolatilityMultiplier = clampFloat(l.VolatilityMultiplier, 0.1, 2.0)
	l.ConfidenceMultiplier = clampFloat(l.ConfidenceMultiplier, 0.5, 2.0)

	c := &p.Cooldowns
	c.SignalCooldown = clampDuration(c.SignalCooldown, 30*time.Second, time.Hour)
	c.OppositeSignalCooldown = clampDuration(c.OppositeSignalCooldown, 30*time.Second, time.Hour)
	c.SameDirectionCooldown = clampDuration(c.SameDirectionCooldown, 30*time.Second, time.Hour)
	c.VolatilityCooldown = clampDuration(c.VolatilityCooldown, 30*time.Second, 2*time.Hour)

	h := &p.Holding
	h.MinHoldingTime = clampDuration(h.MinHoldingTime, time.Minute, 4*time.Hour)
	h.MaxHoldingTime = clampDuration(h.MaxHoldingTime, 10*time.Minute, 48*time.Hour)
	if h.MaxHoldingTime < h.MinHoldingTime {
		h.MaxHoldingTime = h.MinHoldingTime
	}
	h.TargetHoldingTime = clampDuration(h.TargetHoldingTime, h.MinHoldingTime, h.MaxHoldingTime)
	h.TimeoutMultiplier = clampFloat(h.TimeoutMultiplier, 1.0, 3.0)

	r := &p.Risk
	r.StopLossPercent = clampFloat(r.StopLossPercent, 0.5, 10.0)
	r.TakeProfitPercent = clampFloat(r.TakeProfitPercent, 0.5, 20.0)
	r.MaxRiskPerTrade = clampFloat(r.MaxRiskPerTrade, 0.1, 5.0)
	r.PositionSizing = clampFloat(r.PositionSizing, 0.1, 1.0)
	r.MaxDrawdownPercent = clampFloat(r.MaxDrawdownPercent, 1.0, 30.0)

	p.Confidence = clampFloat(p.Confidence, 0, 1)
}
