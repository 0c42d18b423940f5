package adaptive

import (
	"time"

	"adaptive-decision-core/internal/regime"
)

// Rule is a conditional parameter adjustment. Condition is a predicate over
// the classified market state and the current parameter set; Apply produces
// a partial override. Rules are immutable once registered and evaluated in
// descending priority order, with higher-priority fields winning on conflict.
type Rule struct {
	Name      string
	Priority  int
	Condition func(state regime.MarketStateResult, params AdaptiveParameters) bool
	Apply     func() Partial
}

// DefaultRules returns the built-in rule set.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "extreme_volatility",
			Priority: 100,
			Condition: func(state regime.MarketStateResult, _ AdaptiveParameters) bool {
				return state.Volatility == regime.VolatilityExtreme ||
					(state.Regime == regime.HighVolatility && state.Confidence >= 0.8)
			},
			Apply: func() Partial {
				return Partial{
					Leverage: &LeverageOverride{
						BaseLeverage:         Float(1),
						VolatilityMultiplier: Float(0.3),
					},
					Cooldowns: &CooldownOverride{
						VolatilityCooldown: Dur(2 * time.Hour),
					},
					Risk: &RiskOverride{
						StopLossPercent: Float(4.5),
						PositionSizing:  Float(0.3),
						MaxRiskPerTrade: Float(0.5),
					},
				}
			},
		},
		{
			Name:     "low_timeframe_agreement",
			Priority: 80,
			Condition: func(state regime.MarketStateResult, _ AdaptiveParameters) bool {
				return state.TimeframeAgreement < 0.4
			},
			Apply: func() Partial {
				return Partial{
					Thresholds: &ThresholdOverride{
						ConfidenceThreshold: Float(0.8),
					},
					Risk: &RiskOverride{
						PositionSizing: Float(0.4),
					},
				}
			},
		},
		{
			Name:     "strong_trend",
			Priority: 60,
			Condition: func(state regime.MarketStateResult, _ AdaptiveParameters) bool {
				trending := state.Regime == regime.TrendingUp || state.Regime == regime.TrendingDown
				return trending && state.TrendStrength >= 40 && state.TimeframeAgreement >= 0.7
			},
			Apply: func() Partial {
				return Partial{
					Leverage: &LeverageOverride{
						ConfidenceMultiplier: Float(1.4),
					},
					Cooldowns: &CooldownOverride{
						SameDirectionCooldown: Dur(5 * time.Minute),
					},
					Holding: &HoldingOverride{
						TargetHoldingTime: Dur(4 * time.Hour),
					},
				}
			},
		},
		{
			Name:     "weak_classification",
			Priority: 40,
			Condition: func(state regime.MarketStateResult, _ AdaptiveParameters) bool {
				return state.Confidence < 0.4
			},
			Apply: func() Partial {
				return Partial{
					Thresholds: &ThresholdOverride{
						SignalThreshold: Float(0.65),
					},
					Risk: &RiskOverride{
						PositionSizing: Float(0.5),
					},
				}
			},
		},
	}
}
