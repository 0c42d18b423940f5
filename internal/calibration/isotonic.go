package calibration

import "sort"

// isotonicMaxBins caps the number of equal-count bins the fit partitions the
// window into.
const isotonicMaxBins = 20

// fitIsotonic fits a monotone step function: sort by raw prediction,
// partition into equal-count bins (each at least minPerBin points), take
// each bin's weighted mean outcome, then enforce monotonicity by pooling
// adjacent violators forward (a bin below its predecessor is raised to
// match it).
func fitIsotonic(points []DataPoint, minPerBin int) ([]IsotonicBin, bool) {
	if len(points) < 2 {
		return nil, false
	}
	if minPerBin < 1 {
		minPerBin = 1
	}

	sorted := make([]DataPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].RawPrediction < sorted[j].RawPrediction
	})

	binCount := len(sorted) / minPerBin
	if binCount > isotonicMaxBins {
		binCount = isotonicMaxBins
	}
	if binCount < 1 {
		binCount = 1
	}

	bins := make([]IsotonicBin, 0, binCount)
	perBin := len(sorted) / binCount
	for i := 0; i < binCount; i++ {
		start := i * perBin
		end := start + perBin
		if i == binCount-1 {
			end = len(sorted) // last bin absorbs the remainder
		}
		chunk := sorted[start:end]

		sumW, sumWY := 0.0, 0.0
		for _, p := range chunk {
			w := p.Weight
			if w <= 0 {
				w = 1
			}
			sumW += w
			sumWY += w * p.Outcome
		}
		if sumW == 0 {
			continue
		}
		bins = append(bins, IsotonicBin{
			Lower: chunk[0].RawPrediction,
			Upper: chunk[len(chunk)-1].RawPrediction,
			Value: sumWY / sumW,
			Count: len(chunk),
		})
	}
	if len(bins) == 0 {
		return nil, false
	}

	// Pool adjacent violators, propagating forward.
	for i := 1; i < len(bins); i++ {
		if bins[i].Value < bins[i-1].Value {
			bins[i].Value = bins[i-1].Value
		}
	}

	return bins, true
}

// applyIsotonic evaluates the step function at raw. Predictions below the
// first bin take the first bin's value, above the last bin the last one's.
func applyIsotonic(bins []IsotonicBin, raw float64) float64 {
	if len(bins) == 0 {
		return raw
	}
	for _, b := range bins {
		if raw <= b.Upper {
			return b.Value
		}
	}
	return bins[len(bins)-1].Value
}
