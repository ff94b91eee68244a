package scoring

import "math"

// DefectEstimate is the expected number of defects for a code size
type DefectEstimate struct {
	RatePerKLOC float64
	Estimate    float64

	// Count is the estimate rounded down
	Count int
}

// EstimateDefects returns codeLines / 1000 * baselineRate * multiplier
func EstimateDefects(codeLines int, baselineRate, multiplier float64) DefectEstimate {
	rate := baselineRate * multiplier
	estimate := float64(codeLines) / 1000 * rate
	if estimate < 0 {
		estimate = 0
	}
	return DefectEstimate{
		RatePerKLOC: rate,
		Estimate:    estimate,
		Count:       int(math.Floor(estimate)),
	}
}
