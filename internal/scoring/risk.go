package scoring

import (
	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/config"
)

// RiskFor maps a score to its tier. Each breakpoint is the inclusive lower
// bound of its tier.
func RiskFor(score int, b config.RiskBreakpoints) domain.RiskTier {
	switch {
	case score >= b.Low:
		return domain.RiskLow
	case score >= b.Moderate:
		return domain.RiskModerate
	case score >= b.Elevated:
		return domain.RiskElevated
	case score >= b.High:
		return domain.RiskHigh
	default:
		return domain.RiskCritical
	}
}
