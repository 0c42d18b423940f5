package calibration

import "math"

// eceBins is the number of equal-width probability bins used for expected
// calibration error.
const eceBins = 10

// logLossEpsilon keeps probabilities away from 0 and 1 so the log-loss never
// reaches infinity.
const logLossEpsilon = 1e-9

// Evaluate scores a model against a set of data points: Brier score (mean
// squared error of the calibrated probability), log-loss (negative mean
// log-likelihood), and expected calibration error (weighted mean absolute
// gap between each bin's mean calibrated probability and its mean outcome).
func Evaluate(points []DataPoint, model *Model) Metrics {
	if len(points) == 0 || model == nil {
		return Metrics{}
	}

	type binAcc struct {
		sumW, sumWP, sumWY float64
	}
	var bins [eceBins]binAcc

	sumW, brier, logLoss := 0.0, 0.0, 0.0
	for _, pt := range points {
		w := pt.Weight
		if w <= 0 {
			w = 1
		}
		p := model.Apply(pt.RawPrediction)
		y := pt.Outcome

		sumW += w
		brier += w * (p - y) * (p - y)

		pc := p
		if pc < logLossEpsilon {
			pc = logLossEpsilon
		} else if pc > 1-logLossEpsilon {
			pc = 1 - logLossEpsilon
		}
		logLoss += -w * (y*math.Log(pc) + (1-y)*math.Log(1-pc))

		idx := int(p * eceBins)
		if idx >= eceBins {
			idx = eceBins - 1
		}
		bins[idx].sumW += w
		bins[idx].sumWP += w * p
		bins[idx].sumWY += w * y
	}
	if sumW == 0 {
		return Metrics{}
	}

	ece := 0.0
	for _, b := range bins {
		if b.sumW == 0 {
			continue
		}
		avgP := b.sumWP / b.sumW
		avgY := b.sumWY / b.sumW
		ece += (b.sumW / sumW) * math.Abs(avgP-avgY)
	}

	m := Metrics{
		BrierScore: brier / sumW,
		LogLoss:    logLoss / sumW,
		ECE:        ece,
	}
	m.Reliability = clamp01(1 - m.ECE)
	return m
}
