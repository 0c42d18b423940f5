// Package regime defines the classified market condition consumed by the
// decision core. The classifier itself lives outside this module; it hands
// the core one MarketStateResult per evaluation cycle.
package regime

import (
	"encoding/json"
	"fmt"
	"time"
)

// Regime is a closed set of classified market conditions. Keeping it a small
// integer type lets parameter overrides use an exhaustive switch, so a newly
// added regime without an override fails review instead of silently falling
// through a map lookup.
type Regime int

const (
	TrendingUp Regime = iota
	TrendingDown
	Sideways
	HighVolatility
	LowVolatility
	Breakout
	Reversal
)

// AllRegimes lists every regime, in declaration order.
var AllRegimes = []Regime{
	TrendingUp, TrendingDown, Sideways,
	HighVolatility, LowVolatility, Breakout, Reversal,
}

func (r Regime) String() string {
	switch r {
	case TrendingUp:
		return "TRENDING_UP"
	case TrendingDown:
		return "TRENDING_DOWN"
	case Sideways:
		return "SIDEWAYS"
	case HighVolatility:
		return "HIGH_VOLATILITY"
	case LowVolatility:
		return "LOW_VOLATILITY"
	case Breakout:
		return "BREAKOUT"
	case Reversal:
		return "REVERSAL"
	default:
		return "UNKNOWN"
	}
}

// Parse converts a regime tag string to a Regime.
func Parse(s string) (Regime, error) {
	for _, r := range AllRegimes {
		if r.String() == s {
			return r, nil
		}
	}
	return Sideways, fmt.Errorf("unknown market regime %q", s)
}

// MarshalJSON encodes the regime as its tag string so persisted records and
// logs stay readable.
func (r Regime) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a regime tag string.
func (r *Regime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// VolatilityLevel tags the classifier's volatility reading.
type VolatilityLevel string

const (
	VolatilityLow     VolatilityLevel = "LOW"
	VolatilityNormal  VolatilityLevel = "NORMAL"
	VolatilityHigh    VolatilityLevel = "HIGH"
	VolatilityExtreme VolatilityLevel = "EXTREME"
)

// MarketStateResult is the external classifier's output for one evaluation
// cycle. It is read-only to this core.
type MarketStateResult struct {
	Regime             Regime          `json:"regime"`
	Confidence         float64         `json:"confidence"`           // [0,1]
	TrendStrength      float64         `json:"trend_strength"`       // ADX-like, typically 0-100
	Volatility         VolatilityLevel `json:"volatility"`
	TimeframeAgreement float64         `json:"timeframe_agreement"`  // [0,1] multi-timeframe consensus
	Timestamp          time.Time       `json:"timestamp"`
}
