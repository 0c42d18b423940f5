package adaptive

import (
	"time"

	"adaptive-decision-core/internal/regime"
)

// BaseOverride returns the regime-keyed base adjustment applied before any
// rules. The switch is exhaustive over the closed regime set so every regime
// has a defined override.
func BaseOverride(r regime.Regime) Partial {
	switch r {
	case regime.TrendingUp:
		return Partial{
			Thresholds: &ThresholdOverride{
				SignalThreshold:  Float(0.45),
				MinTrendStrength: Float(25),
			},
			Leverage: &LeverageOverride{
				ConfidenceMultiplier: Float(1.2),
			},
			Holding: &HoldingOverride{
				TargetHoldingTime: Dur(3 * time.Hour),
			},
			Risk: &RiskOverride{
				TakeProfitPercent: Float(5.0),
			},
		}
	case regime.TrendingDown:
		return Partial{
			Thresholds: &ThresholdOverride{
				SignalThreshold:  Float(0.55),
				MinTrendStrength: Float(25),
			},
			Leverage: &LeverageOverride{
				ConfidenceMultiplier: Float(0.9),
			},
			Risk: &RiskOverride{
				StopLossPercent: Float(1.8),
				PositionSizing:  Float(0.7),
			},
		}
	case regime.Sideways:
		return Partial{
			Thresholds: &ThresholdOverride{
				SignalThreshold: Float(0.6),
				MinVolumeRatio:  Float(1.2),
			},
			Cooldowns: &CooldownOverride{
				SignalCooldown: Dur(10 * time.Minute),
			},
			Holding: &HoldingOverride{
				TargetHoldingTime: Dur(time.Hour),
			},
			Risk: &RiskOverride{
				TakeProfitPercent: Float(2.5),
				PositionSizing:    Float(0.6),
			},
		}
	case regime.HighVolatility:
		return Partial{
			Thresholds: &ThresholdOverride{
				SignalThreshold:     Float(0.65),
				ConfidenceThreshold: Float(0.7),
			},
			Leverage: &LeverageOverride{
				BaseLeverage:         Float(2),
				VolatilityMultiplier: Float(0.5),
			},
			Cooldowns: &CooldownOverride{
				VolatilityCooldown: Dur(time.Hour),
			},
			Risk: &RiskOverride{
				StopLossPercent: Float(3.5),
				PositionSizing:  Float(0.5),
			},
		}
	case regime.LowVolatility:
		return Partial{
			Thresholds: &ThresholdOverride{
				SignalThreshold: Float(0.45),
			},
			Leverage: &LeverageOverride{
				VolatilityMultiplier: Float(1.3),
			},
			Risk: &RiskOverride{
				StopLossPercent: Float(1.2),
				PositionSizing:  Float(0.9),
			},
		}
	case regime.Breakout:
		return Partial{
			Thresholds: &ThresholdOverride{
				SignalThreshold: Float(0.5),
				MinVolumeRatio:  Float(1.5),
			},
			Cooldowns: &CooldownOverride{
				SameDirectionCooldown: Dur(5 * time.Minute),
			},
			Holding: &HoldingOverride{
				MinHoldingTime: Dur(5 * time.Minute),
			},
			Risk: &RiskOverride{
				StopLossPercent:   Float(2.5),
				TakeProfitPercent: Float(6.0),
			},
		}
	case regime.Reversal:
		return Partial{
			Thresholds: &ThresholdOverride{
				SignalThreshold:     Float(0.6),
				ConfidenceThreshold: Float(0.7),
			},
			Cooldowns: &CooldownOverride{
				OppositeSignalCooldown: Dur(5 * time.Minute),
			},
			Risk: &RiskOverride{
				StopLossPercent: Float(2.5),
				PositionSizing:  Float(0.6),
			},
		}
	default:
		// Unreachable for the closed regime set; keep current values.
		return Partial{}
	}
}
