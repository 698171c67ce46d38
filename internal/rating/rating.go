// Package rating implements the weighted-score algebra behind rating
// reconciliation: inverting a platform's blended rating to recover the score
// of the recent review population, and solving for the number of additional
// five-star reviews needed to reach a target blended rating.
//
// Every function in this package is pure. Nothing is logged, retried or
// cached; failures are reported through ErrInvalidInputs and
// ErrUnreachableTarget and left to the caller.
package rating

import "errors"

// Score bounds and the value of a single maximum-score review.
const (
	MinScore = 0.0
	MaxScore = 5.0
)

// DefaultDiscountFactor is the usual weight reduction applied to the
// historical period: an old review counts for 1/10 of a recent one.
const DefaultDiscountFactor = 10.0

// DefaultRecentShare is the fixed-split alternate configuration in which the
// recent period contributes 90% of the blended rating.
const DefaultRecentShare = 0.9

// tolerance absorbs floating-point noise in range checks and ceilings.
const tolerance = 1e-9

var (
	// ErrInvalidInputs reports inputs that cannot be mutually consistent,
	// for example a blended score that cannot arise from the given
	// historical score and counts.
	ErrInvalidInputs = errors.New("invalid inputs")

	// ErrUnreachableTarget reports a target that no number of maximum-score
	// reviews can reach (target >= 5.0).
	ErrUnreachableTarget = errors.New("unreachable target")
)

// Period is one review population: a mean score and a review count. Count is
// a float because discounted populations carry fractional effective counts.
type Period struct {
	Score float64 `json:"score"`
	Count float64 `json:"review_count"`
}

// Request describes a two-period reconciliation. DiscountFactor is how many
// historical reviews weigh as much as one recent review.
type Request struct {
	CurrentBlended float64 `json:"current_blended"`
	Historical     Period  `json:"historical"`
	RecentCount    float64 `json:"recent_count"`
	Target         float64 `json:"target"`
	DiscountFactor float64 `json:"discount_factor"`
}

// Result is the outcome of a reconciliation.
type Result struct {
	InferredRecentScore      float64 `json:"inferred_recent_score"`
	AdditionalFiveStarNeeded int     `json:"additional_five_star_needed"`
	AlreadyMet               bool    `json:"already_met"`

	EffectiveHistoricalCount float64 `json:"effective_historical_count"`
	TotalEffectiveWeight     float64 `json:"total_effective_weight"`
}
