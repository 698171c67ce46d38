// Package schema validates analysis reports before they are rendered.
package schema

import (
	"fmt"
	"math"

	"github.com/dshills/hotelcritic/internal/review"
)

// ValidationError describes a single schema violation.
type ValidationError struct {
	Path    string
	Message string
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

const scoreEpsilon = 0.005

// Validate checks a Report for structural validity and internal consistency.
func Validate(r *review.Report) []ValidationError {
	var errs []ValidationError

	if r.Tool == "" {
		errs = append(errs, ValidationError{"tool", "required"})
	}
	if r.Version == "" {
		errs = append(errs, ValidationError{"version", "required"})
	}
	if r.Hotel.Name == "" {
		errs = append(errs, ValidationError{"hotel.name", "required"})
	}
	if r.Thresholds.High > r.Thresholds.Excellent {
		errs = append(errs, ValidationError{"thresholds", fmt.Sprintf("high %.2f exceeds excellent %.2f", r.Thresholds.High, r.Thresholds.Excellent)})
	}

	// Validate dimensions
	names := make(map[string]bool)
	for i, d := range r.Dimensions {
		prefix := fmt.Sprintf("dimensions[%d]", i)
		if d.Name == "" {
			errs = append(errs, ValidationError{prefix + ".name", "required"})
		} else if names[d.Name] {
			errs = append(errs, ValidationError{prefix + ".name", fmt.Sprintf("duplicate dimension: %q", d.Name)})
		} else {
			names[d.Name] = true
		}
		if !d.Source.Valid() {
			errs = append(errs, ValidationError{prefix + ".source", fmt.Sprintf("invalid: %q", d.Source)})
		}
		if !d.Tier.Valid() {
			errs = append(errs, ValidationError{prefix + ".tier", fmt.Sprintf("invalid: %q", d.Tier)})
		} else if want := r.Thresholds.Classify(d.Score); d.Tier != want {
			errs = append(errs, ValidationError{prefix + ".tier", fmt.Sprintf("score %.2f should be %s, got %s", d.Score, want, d.Tier)})
		}
		if math.IsNaN(d.Score) || d.Score < 1 || d.Score > 5 {
			errs = append(errs, ValidationError{prefix + ".score", fmt.Sprintf("must be within [1, 5], got %v", d.Score)})
		}
		if d.Mentions < 0 {
			errs = append(errs, ValidationError{prefix + ".mentions", "must be >= 0"})
		}
	}

	// Verify summary consistency
	expected := review.ComputeSummary(r.Dimensions)
	if r.Summary.ExcellentCount != expected.ExcellentCount {
		errs = append(errs, ValidationError{"summary.excellent_count", fmt.Sprintf("expected %d, got %d", expected.ExcellentCount, r.Summary.ExcellentCount)})
	}
	if r.Summary.HighCount != expected.HighCount {
		errs = append(errs, ValidationError{"summary.high_count", fmt.Sprintf("expected %d, got %d", expected.HighCount, r.Summary.HighCount)})
	}
	if r.Summary.NeedsWorkCount != expected.NeedsWorkCount {
		errs = append(errs, ValidationError{"summary.needs_work_count", fmt.Sprintf("expected %d, got %d", expected.NeedsWorkCount, r.Summary.NeedsWorkCount)})
	}
	if math.Abs(r.Summary.Overall-expected.Overall) > scoreEpsilon {
		errs = append(errs, ValidationError{"summary.overall", fmt.Sprintf("overall %.2f does not match computed %.2f", r.Summary.Overall, expected.Overall)})
	}

	// Validate suggestions
	for i, s := range r.Suggestions {
		prefix := fmt.Sprintf("suggestions[%d]", i)
		if !names[s.Dimension] {
			errs = append(errs, ValidationError{prefix + ".dimension", fmt.Sprintf("unknown dimension: %q", s.Dimension)})
		}
		if s.Text == "" {
			errs = append(errs, ValidationError{prefix + ".text", "required"})
		}
		if s.Score >= r.Thresholds.Excellent {
			errs = append(errs, ValidationError{prefix + ".score", fmt.Sprintf("%.2f already meets the excellent threshold", s.Score)})
		}
	}

	return errs
}
