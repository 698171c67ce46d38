package review

import "sort"

// SortDimensions orders dimensions by score descending. Ties keep manual
// scores ahead of text-derived ones, then fall back to name.
func SortDimensions(dims []DimensionScore) {
	sort.SliceStable(dims, func(i, j int) bool {
		if dims[i].Score != dims[j].Score {
			return dims[i].Score > dims[j].Score
		}
		if dims[i].Source != dims[j].Source {
			return dims[i].Source == SourceManual
		}
		return dims[i].Name < dims[j].Name
	})
}

// SortSuggestions puts the weakest dimension first.
func SortSuggestions(s []Suggestion) {
	sort.SliceStable(s, func(i, j int) bool {
		return s[i].Score < s[j].Score
	})
}
