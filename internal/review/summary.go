package review

import "math"

// ComputeSummary derives the overall score and tier counts from dimension
// scores. Tiers on the dimensions are trusted as set by Classify.
func ComputeSummary(dims []DimensionScore) Summary {
	var s Summary
	if len(dims) == 0 {
		return s
	}

	var sum float64
	best, worst := dims[0], dims[0]
	for _, d := range dims {
		sum += d.Score
		switch d.Tier {
		case TierExcellent:
			s.ExcellentCount++
		case TierHigh:
			s.HighCount++
		case TierNeedsWork:
			s.NeedsWorkCount++
		}
		if d.Score > best.Score {
			best = d
		}
		if d.Score < worst.Score {
			worst = d
		}
	}

	s.Overall = math.Round(sum/float64(len(dims))*100) / 100
	s.AllExcellent = s.ExcellentCount == len(dims)
	s.Best = best.Name
	s.Worst = worst.Name
	return s
}
