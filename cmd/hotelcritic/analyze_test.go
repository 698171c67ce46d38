package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dshills/hotelcritic/internal/review"
)

const hybridSheet = "评论内容,设施,卫生,环境,服务\n" +
	"早餐很丰富，推荐！,4.9,4.8,4.6,5\n" +
	"位置方便，离地铁近。,4.9,4.7,4.4,4.9\n" +
	"隔音差劲，半夜很吵，失望。,4.9,4.75,4.5,4.95\n"

func TestRunAnalyzeMarkdown(t *testing.T) {
	path := writeTempFile(t, "reviews.csv", hybridSheet)
	c, out := testCommon()
	f := &analyzeFlags{common: c, format: "md"}

	assertExitCode(t, runAnalyze(path, f), 0)
	got := out.String()
	for _, want := range []string{"中油花园酒店", "维度得分", "改进建议", "安静"} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRunAnalyzeJSON(t *testing.T) {
	path := writeTempFile(t, "reviews.csv", hybridSheet)
	c, out := testCommon()
	f := &analyzeFlags{common: c, format: "json", hotel: "测试酒店", location: "湖边"}

	assertExitCode(t, runAnalyze(path, f), 0)
	var rep review.Report
	if err := json.Unmarshal([]byte(out.String()), &rep); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if rep.Hotel.Name != "测试酒店" || rep.Hotel.Location != "湖边" {
		t.Errorf("hotel = %+v", rep.Hotel)
	}
	if len(rep.Dimensions) != 7 {
		t.Errorf("dimensions = %d, want 7", len(rep.Dimensions))
	}
}

func TestRunAnalyzeHTML(t *testing.T) {
	path := writeTempFile(t, "reviews.csv", hybridSheet)
	c, out := testCommon()
	f := &analyzeFlags{common: c, format: "html"}

	assertExitCode(t, runAnalyze(path, f), 0)
	if !strings.Contains(out.String(), "<table>") {
		t.Error("expected an HTML table")
	}
}

func TestRunAnalyzeFailBelow(t *testing.T) {
	path := writeTempFile(t, "reviews.csv", hybridSheet)
	c, _ := testCommon()
	f := &analyzeFlags{common: c, format: "md", failBelow: 4.99}
	assertExitCode(t, runAnalyze(path, f), 2)
}

func TestRunAnalyzeExport(t *testing.T) {
	path := writeTempFile(t, "reviews.csv", hybridSheet)
	c, _ := testCommon()
	export := filepath.Join(t.TempDir(), "raw.xlsx")
	f := &analyzeFlags{common: c, format: "md", export: export}

	assertExitCode(t, runAnalyze(path, f), 0)
	if _, err := os.Stat(export); err != nil {
		t.Errorf("export not written: %v", err)
	}
}

func TestRunAnalyzeInputErrors(t *testing.T) {
	good := writeTempFile(t, "reviews.csv", hybridSheet)
	empty := writeTempFile(t, "empty.csv", "name,city\nA,B\n")

	tests := []struct {
		name string
		path string
		f    func(*analyzeFlags)
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.csv"), nil},
		{"unknown lexicon", good, func(f *analyzeFlags) { f.lexicon = "no-such-lexicon" }},
		{"unknown format", good, func(f *analyzeFlags) { f.format = "pdf" }},
		{"nothing to analyze", empty, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testCommon()
			f := &analyzeFlags{common: c, format: "md"}
			if tt.f != nil {
				tt.f(f)
			}
			assertExitCode(t, runAnalyze(tt.path, f), 3)
		})
	}
}
