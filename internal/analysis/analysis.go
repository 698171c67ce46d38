// Package analysis turns a review sheet into a dimension report by merging
// numeric per-dimension columns with scores extracted from comment text.
package analysis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/hotelcritic/internal/ingest"
	"github.com/dshills/hotelcritic/internal/lexicon"
	"github.com/dshills/hotelcritic/internal/review"
	"github.com/dshills/hotelcritic/internal/sentiment"
)

// ErrNothingToAnalyze is returned when a sheet has neither usable numeric
// dimension columns nor comments that mention any dimension.
var ErrNothingToAnalyze = errors.New("no dimension scores could be derived")

// Options configures an analysis run.
type Options struct {
	Tool       string
	Version    string
	Hotel      review.Hotel
	Thresholds review.Thresholds
}

// Analyze scores every lexicon dimension found in the sheet. Numeric
// columns win over text-derived scores for the same dimension.
func Analyze(s *ingest.Sheet, lx *lexicon.Lexicon, opts Options) (*review.Report, error) {
	if opts.Thresholds == (review.Thresholds{}) {
		opts.Thresholds = review.DefaultThresholds()
	}

	rep := &review.Report{
		Tool:       opts.Tool,
		Version:    opts.Version,
		Hotel:      opts.Hotel.Resolved(),
		Thresholds: opts.Thresholds,
		Input: review.Input{
			SheetFile: s.FilePath,
			SheetHash: s.Hash,
			Lexicon:   lx.Name,
			Rows:      len(s.Rows),
		},
	}

	manual := ingest.ManualScores(s, lx.ManualColumns)
	if len(manual.Missing) > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("missing manual score columns %s; using comment text only", strings.Join(manual.Missing, ", ")))
	}
	for _, col := range manual.Invalid {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %s has values outside [%.0f, %.0f] or no numbers; skipped", col, ingest.ManualMin, ingest.ManualMax))
	}

	seen := make(map[string]bool)
	for _, cs := range manual.Scores {
		rep.Dimensions = append(rep.Dimensions, review.DimensionScore{
			Name:     cs.Column,
			Score:    cs.Mean,
			Source:   review.SourceManual,
			Mentions: cs.Count,
		})
		seen[cs.Column] = true
	}

	comments, err := ingest.Comments(s, lx.CommentColumns)
	if err != nil {
		rep.Warnings = append(rep.Warnings, "no comment column found; text analysis skipped")
	}
	rep.Input.Comments = len(comments)

	for _, ds := range sentiment.NewTagger(lx).Extract(comments) {
		if seen[ds.Dimension] {
			continue
		}
		rep.Dimensions = append(rep.Dimensions, review.DimensionScore{
			Name:     ds.Dimension,
			Score:    ds.Score,
			Source:   review.SourceText,
			Mentions: ds.Mentions,
		})
		seen[ds.Dimension] = true
	}

	if len(rep.Dimensions) == 0 {
		return nil, fmt.Errorf("analysis.Analyze: %s: %w", s.FilePath, ErrNothingToAnalyze)
	}

	for i := range rep.Dimensions {
		rep.Dimensions[i].Tier = opts.Thresholds.Classify(rep.Dimensions[i].Score)
	}
	review.SortDimensions(rep.Dimensions)
	rep.Summary = review.ComputeSummary(rep.Dimensions)

	for _, d := range review.BelowExcellent(rep.Dimensions, opts.Thresholds) {
		rep.Suggestions = append(rep.Suggestions, review.Suggestion{
			Dimension: d.Name,
			Score:     d.Score,
			Text:      lx.Suggestion(d.Name),
		})
	}
	review.SortSuggestions(rep.Suggestions)

	return rep, nil
}
