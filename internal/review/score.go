package review

// Default thresholds. Dimensions at or above DefaultExcellent need no
// action; DefaultHigh is the floor of the high-score chart.
const (
	DefaultExcellent = 4.78
	DefaultHigh      = 4.5
)

// Thresholds configures tier boundaries.
type Thresholds struct {
	Excellent float64 `json:"excellent"`
	High      float64 `json:"high"`
}

// DefaultThresholds returns the standard tier boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{Excellent: DefaultExcellent, High: DefaultHigh}
}

// Classify places a score in a tier.
func (th Thresholds) Classify(score float64) Tier {
	switch {
	case score >= th.Excellent:
		return TierExcellent
	case score >= th.High:
		return TierHigh
	default:
		return TierNeedsWork
	}
}

// HighScores returns the dimensions at or above the high threshold, in
// input order.
func HighScores(dims []DimensionScore, th Thresholds) []DimensionScore {
	var out []DimensionScore
	for _, d := range dims {
		if d.Score >= th.High {
			out = append(out, d)
		}
	}
	return out
}

// BelowExcellent returns the dimensions that still need improvement.
func BelowExcellent(dims []DimensionScore, th Thresholds) []DimensionScore {
	var out []DimensionScore
	for _, d := range dims {
		if d.Score < th.Excellent {
			out = append(out, d)
		}
	}
	return out
}
