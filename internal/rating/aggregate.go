package rating

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Decay defaults for the exponential policy.
const (
	DefaultDecayLambda       = 0.05 // per day
	DefaultCalibrationOffset = 0.20
	DefaultAggregateFloor    = 1.0
)

// Policy names accepted by ParsePolicy.
const (
	PolicyInverseDay     = "inverse-day"
	PolicyInverseDayRank = "inverse-day-rank"
	PolicyExponential    = "exponential"
)

// Review is a single scored review. A zero Date marks a row whose date could
// not be parsed. Rank is the platform's own ordering (1 = first); zero means
// the review's position in the input is used instead.
type Review struct {
	Score float64   `json:"score"`
	Date  time.Time `json:"date"`
	Rank  int       `json:"rank,omitempty"`
}

// WeightFunc returns the weight of r, given its age in whole days relative
// to the most recent review and its zero-based position in the input.
type WeightFunc func(r Review, days float64, position int) float64

// Policy configures AggregateReviews. CalibrationOffset is subtracted from
// the weighted mean; Floor, when positive, bounds the result from below.
type Policy struct {
	Name              string
	Weight            WeightFunc
	CalibrationOffset float64
	Floor             float64
}

// InverseDayRank weights each review by 1/(1+days). With useRank set the
// weight is further multiplied by 1/rank.
func InverseDayRank(useRank bool) Policy {
	name := PolicyInverseDay
	if useRank {
		name = PolicyInverseDayRank
	}
	return Policy{
		Name: name,
		Weight: func(r Review, days float64, position int) float64 {
			w := 1 / (1 + days)
			if useRank {
				rank := r.Rank
				if rank <= 0 {
					rank = position + 1
				}
				w *= 1 / float64(rank)
			}
			return w
		},
	}
}

// ExponentialDecay weights each review by exp(-lambda*days) times a rarity
// weight that grows as the star rating falls (5★ → 1 … 1★ → 5). The weighted
// mean is reduced by offset and floored at 1.0.
func ExponentialDecay(lambda, offset float64) Policy {
	return Policy{
		Name: PolicyExponential,
		Weight: func(r Review, days float64, _ int) float64 {
			return math.Exp(-lambda*days) * rarityWeight(r.Score)
		},
		CalibrationOffset: offset,
		Floor:             DefaultAggregateFloor,
	}
}

// ParsePolicy maps a policy name to its Policy. lambda and offset apply to
// the exponential policy only.
func ParsePolicy(name string, lambda, offset float64) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PolicyInverseDay, "":
		return InverseDayRank(false), nil
	case PolicyInverseDayRank:
		return InverseDayRank(true), nil
	case PolicyExponential:
		if !isFinite(lambda) || lambda < 0 {
			return Policy{}, fmt.Errorf("rating.ParsePolicy: decay lambda %v must be non-negative: %w", lambda, ErrInvalidInputs)
		}
		if !isFinite(offset) {
			return Policy{}, fmt.Errorf("rating.ParsePolicy: calibration offset %v: %w", offset, ErrInvalidInputs)
		}
		return ExponentialDecay(lambda, offset), nil
	}
	return Policy{}, fmt.Errorf("rating.ParsePolicy: unknown policy %q", name)
}

// AggregateReviews folds a review list into a single weighted score. Rows
// with a zero date or a score outside [0,5] are dropped. Ages are measured
// from the most recent valid review. It returns 0 when no valid rows remain.
func AggregateReviews(reviews []Review, policy Policy) float64 {
	type row struct {
		Review
		position int
	}
	var valid []row
	var latest time.Time
	for i, r := range reviews {
		if !usable(r) {
			continue
		}
		valid = append(valid, row{Review: r, position: i})
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	if len(valid) == 0 {
		return 0
	}

	weight := policy.Weight
	if weight == nil {
		weight = InverseDayRank(false).Weight
	}

	var sum, totalWeight float64
	for _, r := range valid {
		days := math.Floor(latest.Sub(r.Date).Hours() / 24)
		w := weight(r.Review, days, r.position)
		if !isFinite(w) || w <= 0 {
			continue
		}
		sum += r.Score * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}

	score := sum/totalWeight - policy.CalibrationOffset
	if policy.Floor > 0 && score < policy.Floor {
		score = policy.Floor
	}
	return score
}

// CountValid returns how many reviews AggregateReviews would keep.
func CountValid(reviews []Review) int {
	n := 0
	for _, r := range reviews {
		if usable(r) {
			n++
		}
	}
	return n
}

func usable(r Review) bool {
	return !r.Date.IsZero() && isFinite(r.Score) && r.Score >= MinScore && r.Score <= MaxScore
}

// rarityWeight is 6 minus the score rounded to the nearest star, so rare
// low ratings pull harder on the aggregate.
func rarityWeight(score float64) float64 {
	stars := math.Round(score)
	if stars < 1 {
		stars = 1
	}
	if stars > 5 {
		stars = 5
	}
	return 6 - stars
}
