package review

// Source records where a dimension score came from.
type Source string

const (
	SourceManual Source = "MANUAL"
	SourceText   Source = "TEXT"
)

func (s Source) Valid() bool {
	switch s {
	case SourceManual, SourceText:
		return true
	}
	return false
}

// Label is the short Chinese tag shown next to a score in reports.
func (s Source) Label() string {
	if s == SourceManual {
		return "手动"
	}
	return "文本"
}

// Tier buckets a dimension score against the report thresholds.
type Tier string

const (
	TierExcellent Tier = "EXCELLENT"
	TierHigh      Tier = "HIGH"
	TierNeedsWork Tier = "NEEDS_WORK"
)

func (t Tier) Valid() bool {
	switch t {
	case TierExcellent, TierHigh, TierNeedsWork:
		return true
	}
	return false
}
