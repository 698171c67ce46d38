// Package review defines the report produced by a hotel review analysis.
package review

// Report is the top-level output object.
type Report struct {
	Tool        string           `json:"tool"`
	Version     string           `json:"version"`
	Hotel       Hotel            `json:"hotel"`
	Input       Input            `json:"input"`
	Summary     Summary          `json:"summary"`
	Dimensions  []DimensionScore `json:"dimensions"`
	Suggestions []Suggestion     `json:"suggestions,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"`
	Thresholds  Thresholds       `json:"thresholds"`
}

// Hotel identifies the property under review.
type Hotel struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Input describes the sheet and lexicon used for the analysis.
type Input struct {
	SheetFile string `json:"sheet_file"`
	SheetHash string `json:"sheet_hash"`
	Lexicon   string `json:"lexicon"`
	Rows      int    `json:"rows"`
	Comments  int    `json:"comments"`
}

// Summary holds the overall score and tier counts.
type Summary struct {
	Overall        float64 `json:"overall"`
	ExcellentCount int     `json:"excellent_count"`
	HighCount      int     `json:"high_count"`
	NeedsWorkCount int     `json:"needs_work_count"`
	AllExcellent   bool    `json:"all_excellent"`
	Best           string  `json:"best,omitempty"`
	Worst          string  `json:"worst,omitempty"`
}

// DimensionScore is the score of one quality dimension.
type DimensionScore struct {
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
	Source   Source  `json:"source"`
	Tier     Tier    `json:"tier"`
	Mentions int     `json:"mentions"`
}

// Suggestion is improvement advice for a dimension below the excellence line.
type Suggestion struct {
	Dimension string  `json:"dimension"`
	Score     float64 `json:"score"`
	Text      string  `json:"text"`
}
