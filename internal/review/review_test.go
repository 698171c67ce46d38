package review

import (
	"testing"
)

// --- Enum validation tests ---

func TestSourceValid(t *testing.T) {
	for _, s := range []Source{SourceManual, SourceText} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if Source("GUESS").Valid() {
		t.Error("expected GUESS source to be invalid")
	}
}

func TestSourceLabel(t *testing.T) {
	if got := SourceManual.Label(); got != "手动" {
		t.Errorf("manual label = %q", got)
	}
	if got := SourceText.Label(); got != "文本" {
		t.Errorf("text label = %q", got)
	}
}

func TestTierValid(t *testing.T) {
	for _, tr := range []Tier{TierExcellent, TierHigh, TierNeedsWork} {
		if !tr.Valid() {
			t.Errorf("expected %q to be valid", tr)
		}
	}
	if Tier("OK").Valid() {
		t.Error("expected OK tier to be invalid")
	}
}

// --- Threshold tests ---

func TestClassify(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		score float64
		want  Tier
	}{
		{5.0, TierExcellent},
		{4.78, TierExcellent},
		{4.77, TierHigh},
		{4.5, TierHigh},
		{4.49, TierNeedsWork},
		{1.0, TierNeedsWork},
	}
	for _, tt := range tests {
		if got := th.Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestHighScoresAndBelowExcellent(t *testing.T) {
	th := DefaultThresholds()
	dims := []DimensionScore{
		{Name: "设施", Score: 4.9},
		{Name: "卫生", Score: 4.6},
		{Name: "噪音", Score: 3.8},
	}

	high := HighScores(dims, th)
	if len(high) != 2 || high[0].Name != "设施" || high[1].Name != "卫生" {
		t.Errorf("HighScores = %+v", high)
	}

	low := BelowExcellent(dims, th)
	if len(low) != 2 || low[0].Name != "卫生" || low[1].Name != "噪音" {
		t.Errorf("BelowExcellent = %+v", low)
	}
}

// --- Sort tests ---

func TestSortDimensions(t *testing.T) {
	dims := []DimensionScore{
		{Name: "噪音", Score: 3.8, Source: SourceText},
		{Name: "设施", Score: 4.9, Source: SourceManual},
		{Name: "早餐", Score: 4.5, Source: SourceText},
		{Name: "服务", Score: 4.5, Source: SourceManual},
		{Name: "位置", Score: 4.5, Source: SourceText},
	}

	SortDimensions(dims)

	expected := []string{"设施", "服务", "位置", "早餐", "噪音"}
	for i, name := range expected {
		if dims[i].Name != name {
			t.Errorf("position %d: got %s, want %s", i, dims[i].Name, name)
		}
	}
}

func TestSortSuggestions(t *testing.T) {
	s := []Suggestion{
		{Dimension: "A", Score: 4.6},
		{Dimension: "B", Score: 3.1},
		{Dimension: "C", Score: 4.0},
	}
	SortSuggestions(s)
	if s[0].Dimension != "B" || s[1].Dimension != "C" || s[2].Dimension != "A" {
		t.Errorf("unexpected order: %+v", s)
	}
}

// --- Summary tests ---

func TestComputeSummary(t *testing.T) {
	th := DefaultThresholds()
	mk := func(name string, score float64) DimensionScore {
		return DimensionScore{Name: name, Score: score, Tier: th.Classify(score)}
	}

	tests := []struct {
		name string
		dims []DimensionScore
		want Summary
	}{
		{"empty", nil, Summary{}},
		{"all excellent", []DimensionScore{mk("设施", 4.9), mk("卫生", 4.8)}, Summary{
			Overall: 4.85, ExcellentCount: 2, AllExcellent: true, Best: "设施", Worst: "卫生",
		}},
		{"mixed", []DimensionScore{mk("设施", 4.9), mk("服务", 4.6), mk("噪音", 3.5)}, Summary{
			Overall: 4.33, ExcellentCount: 1, HighCount: 1, NeedsWorkCount: 1, Best: "设施", Worst: "噪音",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeSummary(tt.dims)
			if got != tt.want {
				t.Errorf("ComputeSummary() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHotelResolved(t *testing.T) {
	got := Hotel{Name: "  ", Location: ""}.Resolved()
	if got.Name != FallbackName || got.Location != FallbackLocation {
		t.Errorf("Resolved() = %+v", got)
	}
	got = Hotel{Name: " 中油花园酒店 ", Location: "市中心繁华地段"}.Resolved()
	if got.Name != "中油花园酒店" || got.Location != "市中心繁华地段" {
		t.Errorf("Resolved() = %+v", got)
	}
}
