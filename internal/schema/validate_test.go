package schema

import (
	"testing"

	"github.com/dshills/hotelcritic/internal/review"
)

func validReport() *review.Report {
	th := review.DefaultThresholds()
	dims := []review.DimensionScore{
		{Name: "设施", Score: 4.9, Source: review.SourceManual, Tier: th.Classify(4.9)},
		{Name: "卫生", Score: 4.6, Source: review.SourceManual, Tier: th.Classify(4.6)},
		{Name: "噪音", Score: 3.3, Source: review.SourceText, Tier: th.Classify(3.3), Mentions: 2},
	}
	return &review.Report{
		Tool:       "hotelcritic",
		Version:    "1.0",
		Hotel:      review.Hotel{Name: "中油花园酒店", Location: "市中心繁华地段"},
		Summary:    review.ComputeSummary(dims),
		Dimensions: dims,
		Suggestions: []review.Suggestion{
			{Dimension: "噪音", Score: 3.3, Text: "加强隔音措施"},
		},
		Thresholds: th,
	}
}

func hasPath(errs []ValidationError, path string) bool {
	for _, e := range errs {
		if e.Path == path {
			return true
		}
	}
	return false
}

func TestValidateValid(t *testing.T) {
	errs := Validate(validReport())
	for _, e := range errs {
		t.Errorf("unexpected error: %s", e)
	}
}

func TestValidateMissingTool(t *testing.T) {
	r := validReport()
	r.Tool = ""
	if !hasPath(Validate(r), "tool") {
		t.Error("expected error for missing tool")
	}
}

func TestValidateMissingHotel(t *testing.T) {
	r := validReport()
	r.Hotel.Name = ""
	if !hasPath(Validate(r), "hotel.name") {
		t.Error("expected error for missing hotel name")
	}
}

func TestValidateDuplicateDimension(t *testing.T) {
	r := validReport()
	r.Dimensions[1].Name = "设施"
	if !hasPath(Validate(r), "dimensions[1].name") {
		t.Error("expected duplicate dimension error")
	}
}

func TestValidateTierMismatch(t *testing.T) {
	r := validReport()
	r.Dimensions[1].Tier = review.TierExcellent
	if !hasPath(Validate(r), "dimensions[1].tier") {
		t.Error("expected tier mismatch error")
	}
}

func TestValidateInvalidSource(t *testing.T) {
	r := validReport()
	r.Dimensions[0].Source = "GUESS"
	if !hasPath(Validate(r), "dimensions[0].source") {
		t.Error("expected invalid source error")
	}
}

func TestValidateScoreRange(t *testing.T) {
	r := validReport()
	r.Dimensions[2].Score = 0.5
	r.Dimensions[2].Tier = review.TierNeedsWork
	if !hasPath(Validate(r), "dimensions[2].score") {
		t.Error("expected score range error")
	}
}

func TestValidateSummaryMismatch(t *testing.T) {
	r := validReport()
	r.Summary.ExcellentCount = 3
	r.Summary.Overall = 1.0
	errs := Validate(r)
	if !hasPath(errs, "summary.excellent_count") {
		t.Error("expected excellent_count mismatch")
	}
	if !hasPath(errs, "summary.overall") {
		t.Error("expected overall mismatch")
	}
}

func TestValidateSuggestion(t *testing.T) {
	r := validReport()
	r.Suggestions = append(r.Suggestions,
		review.Suggestion{Dimension: "早餐", Score: 4.0, Text: "x"},
		review.Suggestion{Dimension: "设施", Score: 4.9, Text: ""},
	)
	errs := Validate(r)
	if !hasPath(errs, "suggestions[1].dimension") {
		t.Error("expected unknown dimension error")
	}
	if !hasPath(errs, "suggestions[2].text") {
		t.Error("expected missing text error")
	}
	if !hasPath(errs, "suggestions[2].score") {
		t.Error("expected already-excellent error")
	}
}
