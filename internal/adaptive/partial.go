package adaptive

import "time"

// The override types mirror the parameter groups with a pointer per field:
// nil means "leave the base value alone". Merging is shallow per group and
// deep per field, so a rule that only sets Risk.StopLossPercent never resets
// its sibling fields.

// ThresholdOverride is a per-field partial over ThresholdParams.
type ThresholdOverride struct {
	SignalThreshold     *float64 `json:"signal_threshold,omitempty"`
	EVThreshold         *float64 `json:"ev_threshold,omitempty"`
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`
	MinTrendStrength    *float64 `json:"min_trend_strength,omitempty"`
	MinVolumeRatio      *float64 `json:"min_volume_ratio,omitempty"`
}

// LeverageOverride is a per-field partial over LeverageParams.
type LeverageOverride struct {
	BaseLeverage         *float64 `json:"base_leverage,omitempty"`
	MaxLeverage          *float64 `json:"max_leverage,omitempty"`
	VolatilityMultiplier *float64 `json:"volatility_multiplier,omitempty"`
	ConfidenceMultiplier *float64 `json:"confidence_multiplier,omitempty"`
}

// CooldownOverride is a per-field partial over CooldownParams.
type CooldownOverride struct {
	SignalCooldown        *time.Duration `json:"signal_cooldown,omitempty"`
	OppositeSignalCooldown *time.Duration `json:"opposite_signal_cooldown,omitempty"`
	SameDirectionCooldown *time.Duration `json:"same_direction_cooldown,omitempty"`
	VolatilityCooldown    *time.Duration `json:"volatility_cooldown,omitempty"`
}

// HoldingOverride is a per-field partial over HoldingParams.
type HoldingOverride struct {
	MinHoldingTime     *time.Duration `json:"min_holding_time,omitempty"`
	MaxHoldingTime     *time.Duration `json:"max_holding_time,omitempty"`
	TargetHoldingTime  *time.Duration `json:"target_holding_time,omitempty"`
	AutoTimeoutEnabled *bool          `json:"auto_timeout_enabled,omitempty"`
	TimeoutMultiplier  *float64       `json:"timeout_multiplier,omitempty"`
}

// RiskOverride is a per-field partial over RiskParams.
type RiskOverride struct {
	StopLossPercent    *float64 `json:"stop_loss_percent,omitempty"`
	TakeProfitPercent  *float64 `json:"take_profit_percent,omitempty"`
	MaxRiskPerTrade    *float64 `json:"max_risk_per_trade,omitempty"`
	PositionSizing     *float64 `json:"position_sizing,omitempty"`
	MaxDrawdownPercent *float64 `json:"max_drawdown_percent,omitempty"`
}

// Partial is a sparse parameter override. A nil group leaves the whole group
// untouched.
type Partial struct {
	Thresholds *ThresholdOverride `json:"thresholds,omitempty"`
	Leverage   *LeverageOverride  `json:"leverage,omitempty"`
	Cooldowns  *CooldownOverride  `json:"cooldowns,omitempty"`
	Holding    *HoldingOverride   `json:"holding,omitempty"`
	Risk       *RiskOverride      `json:"risk,omitempty"`
}

// Float returns a pointer to v, for building Partial literals.
func Float(v float64) *float64 { return &v }

// Dur returns a pointer to d, for building Partial literals.
func Dur(d time.Duration) *time.Duration { return &d }

// Bool returns a pointer to b, for building Partial literals.
func Bool(b bool) *bool { return &b }

func setF(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setD(dst *time.Duration, src *time.Duration) {
	if src != nil {
		*dst = *src
	}
}

// ApplyTo overwrites only the fields the partial carries.
func (o Partial) ApplyTo(p *AdaptiveParameters) {
	if o.Thresholds != nil {
		setF(&p.Thresholds.SignalThreshold, o.Thresholds.SignalThreshold)
		setF(&p.Thresholds.EVThreshold, o.Thresholds.EVThreshold)
		setF(&p.Thresholds.ConfidenceThreshold, o.Thresholds.ConfidenceThreshold)
		setF(&p.Thresholds.MinTrendStrength, o.Thresholds.MinTrendStrength)
		setF(&p.Thresholds.MinVolumeRatio, o.Thresholds.MinVolumeRatio)
	}
	if o.Leverage != nil {
		setF(&p.Leverage.BaseLeverage, o.Leverage.BaseLeverage)
		setF(&p.Leverage.MaxLeverage, o.Leverage.MaxLeverage)
		setF(&p.Leverage.VolatilityMultiplier, o.Leverage.VolatilityMultiplier)
		setF(&p.Leverage.ConfidenceMultiplier, o.Leverage.ConfidenceMultiplier)
	}
	if o.Cooldowns != nil {
		setD(&p.Cooldowns.SignalCooldown, o.Cooldowns.SignalCooldown)
		setD(&p.Cooldowns.OppositeSignalCooldown, o.Cooldowns.OppositeSignalCooldown)
		setD(&p.Cooldowns.SameDirectionCooldown, o.Cooldowns.SameDirectionCooldown)
		setD(&p.Cooldowns.VolatilityCooldown, o.Cooldowns.VolatilityCooldown)
	}
	if o.Holding != nil {
		setD(&p.Holding.MinHoldingTime, o.Holding.MinHoldingTime)
		setD(&p.Holding.MaxHoldingTime, o.Holding.MaxHoldingTime)
		setD(&p.Holding.TargetHoldingTime, o.Holding.TargetHoldingTime)
		if o.Holding.AutoTimeoutEnabled != nil {
			p.Holding.AutoTimeoutEnabled = *o.Holding.AutoTimeoutEnabled
		}
		setF(&p.Holding.TimeoutMultiplier, o.Holding.TimeoutMultiplier)
	}
	if o.Risk != nil {
		setF(&p.Risk.StopLossPercent, o.Risk.StopLossPercent)
		setF(&p.Risk.TakeProfitPercent, o.Risk.TakeProfitPercent)
		setF(&p.Risk.MaxRiskPerTrade, o.Risk.MaxRiskPerTrade)
		setF(&p.Risk.PositionSizing, o.Risk.PositionSizing)
		setF(&p.Risk.MaxDrawdownPercent, o.Risk.MaxDrawdownPercent)
	}
}

func keepF(dst **float64, src *float64) {
	if *dst == nil && src != nil {
		*dst = src
	}
}

func keepD(dst **time.Duration, src *time.Duration) {
	if *dst == nil && src != nil {
		*dst = src
	}
}

// fill copies fields from other into o where o has none. It implements the
// "higher priority wins" composition: rules merge in descending priority
// order, and a field set by an earlier (higher-priority) rule sticks.
func (o *Partial) fill(other Partial) {
	if other.Thresholds != nil {
		if o.Thresholds == nil {
			o.Thresholds = &ThresholdOverride{}
		}
		keepF(&o.Thresholds.SignalThreshold, other.Thresholds.SignalThreshold)
		keepF(&o.Thresholds.EVThreshold, other.Thresholds.EVThreshold)
		keepF(&o.Thresholds.ConfidenceThreshold, other.Thresholds.ConfidenceThreshold)
		keepF(&o.Thresholds.MinTrendStrength, other.Thresholds.MinTrendStrength)
		keepF(&o.Thresholds.MinVolumeRatio, other.Thresholds.MinVolumeRatio)
	}
	if other.Leverage != nil {
		if o.Leverage == nil {
			o.Leverage = &LeverageOverride{}
		}
		keepF(&o.Leverage.BaseLeverage, other.Leverage.BaseLeverage)
		keepF(&o.Leverage.MaxLeverage, other.Leverage.MaxLeverage)
		keepF(&o.Leverage.VolatilityMultiplier, other.Leverage.VolatilityMultiplier)
		keepF(&o.Leverage.ConfidenceMultiplier, other.Leverage.ConfidenceMultiplier)
	}
	if other.Cooldowns != nil {
		if o.Cooldowns == nil {
			o.Cooldowns = &CooldownOverride{}
		}
		keepD(&o.Cooldowns.SignalCooldown, other.Cooldowns.SignalCooldown)
		keepD(&o.Cooldowns.OppositeSignalCooldown, other.Cooldowns.OppositeSignalCooldown)
		keepD(&o.Cooldowns.SameDirectionCooldown, other.Cooldowns.SameDirectionCooldown)
		keepD(&o.Cooldowns.VolatilityCooldown, other.Cooldowns.VolatilityCooldown)
	}
	if other.Holding != nil {
		if o.Holding == nil {
			o.Holding = &HoldingOverride{}
		}
		keepD(&o.Holding.MinHoldingTime, other.Holding.MinHoldingTime)
		keepD(&o.Holding.MaxHoldingTime, other.Holding.MaxHoldingTime)
		keepD(&o.Holding.TargetHoldingTime, other.Holding.TargetHoldingTime)
		if o.Holding.AutoTimeoutEnabled == nil && other.Holding.AutoTimeoutEnabled != nil {
			o.Holding.AutoTimeoutEnabled = other.Holding.AutoTimeoutEnabled
		}
		keepF(&o.Holding.TimeoutMultiplier, other.Holding.TimeoutMultiplier)
	}
	if other.Risk != nil {
		if o.Risk == nil {
			o.Risk = &RiskOverride{}
		}
		keepF(&o.Risk.StopLossPercent, other.Risk.StopLossPercent)
		keepF(&o.Risk.TakeProfitPercent, other.Risk.TakeProfitPercent)
		keepF(&o.Risk.MaxRiskPerTrade, other.Risk.MaxRiskPerTrade)
		keepF(&o.Risk.PositionSizing, other.Risk.PositionSizing)
		keepF(&o.Risk.MaxDrawdownPercent, other.Risk.MaxDrawdownPercent)
	}
}
