package rating

import (
	"fmt"
	"math"
)

// ReconcileTwoPeriod recovers the recent-period score hidden inside a
// blended rating and solves for the additional five-star reviews needed to
// reach req.Target. Historical reviews are discounted by req.DiscountFactor
// before blending.
func ReconcileTwoPeriod(req Request) (Result, error) {
	if err := validateRequest(req); err != nil {
		return Result{}, fmt.Errorf("rating.ReconcileTwoPeriod: %w", err)
	}
	effHist := req.Historical.Count / req.DiscountFactor
	res, err := solve(req.CurrentBlended, req.RecentCount, req.Historical.Score, effHist, req.Target)
	if err != nil {
		return Result{}, fmt.Errorf("rating.ReconcileTwoPeriod: %w", err)
	}
	return res, nil
}

// ProjectSinglePeriod is the degenerate reconciliation with no historical
// period: a single population of total reviews averaging current.
func ProjectSinglePeriod(current, total, target float64) (Result, error) {
	if err := checkScore("current score", current); err != nil {
		return Result{}, fmt.Errorf("rating.ProjectSinglePeriod: %w", err)
	}
	if err := checkPositive("total reviews", total); err != nil {
		return Result{}, fmt.Errorf("rating.ProjectSinglePeriod: %w", err)
	}
	if err := checkTarget(target); err != nil {
		return Result{}, fmt.Errorf("rating.ProjectSinglePeriod: %w", err)
	}
	res, err := solve(current, total, 0, 0, target)
	if err != nil {
		return Result{}, fmt.Errorf("rating.ProjectSinglePeriod: %w", err)
	}
	return res, nil
}

// ReconcileFixedSplit handles platforms that publish a fixed split between
// periods (blended = share*recent + (1-share)*historical) instead of a
// count-weighted one. It is the count-weighted inversion with the effective
// historical count forced to recentCount*(1-share)/share, so a 90/10 split
// gives recentCount/9.
func ReconcileFixedSplit(current, historicalScore, recentCount, recentShare, target float64) (Result, error) {
	if math.IsNaN(recentShare) || recentShare <= 0 || recentShare > 1 {
		return Result{}, fmt.Errorf("rating.ReconcileFixedSplit: recent share %v outside (0,1]: %w", recentShare, ErrInvalidInputs)
	}
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"current blended", current},
		{"historical score", historicalScore},
	} {
		if err := checkScore(c.name, c.v); err != nil {
			return Result{}, fmt.Errorf("rating.ReconcileFixedSplit: %w", err)
		}
	}
	if err := checkPositive("recent count", recentCount); err != nil {
		return Result{}, fmt.Errorf("rating.ReconcileFixedSplit: %w", err)
	}
	if err := checkTarget(target); err != nil {
		return Result{}, fmt.Errorf("rating.ReconcileFixedSplit: %w", err)
	}
	effHist := recentCount * (1 - recentShare) / recentShare
	res, err := solve(current, recentCount, historicalScore, effHist, target)
	if err != nil {
		return Result{}, fmt.Errorf("rating.ReconcileFixedSplit: %w", err)
	}
	return res, nil
}

// Blend is the forward weighted-average identity that the reconcilers
// invert. It returns 0 when both weights are zero.
func Blend(recentScore, recentCount, historicalScore, effHist float64) float64 {
	total := recentCount + effHist
	if total == 0 {
		return 0
	}
	return (recentScore*recentCount + historicalScore*effHist) / total
}

// solve is the single general inversion behind every reconciliation variant.
func solve(current, recentCount, historicalScore, effHist, target float64) (Result, error) {
	total := recentCount + effHist
	inferred := (current*total - historicalScore*effHist) / recentCount

	if inferred < MinScore-tolerance || inferred > MaxScore+tolerance || math.IsNaN(inferred) {
		return Result{}, fmt.Errorf("inferred recent score %.4f outside [%g,%g]: %w",
			inferred, MinScore, MaxScore, ErrInvalidInputs)
	}
	inferred = math.Min(MaxScore, math.Max(MinScore, inferred))

	res := Result{
		InferredRecentScore:      inferred,
		EffectiveHistoricalCount: effHist,
		TotalEffectiveWeight:     total,
	}

	if current >= target {
		res.AlreadyMet = true
		return res, nil
	}

	denominator := MaxScore - target
	if denominator <= 0 {
		return Result{}, fmt.Errorf("target %.2f leaves no headroom below %.1f: %w", target, MaxScore, ErrUnreachableTarget)
	}
	numerator := target*total - historicalScore*effHist - inferred*recentCount

	needed := ceil(numerator / denominator)
	if needed < 0 {
		needed = 0
	}
	res.AdditionalFiveStarNeeded = needed
	return res, nil
}

// ceil rounds up, treating values within an absolute tolerance above an
// integer as that integer so 742.0000000001 does not become 743. The
// tolerance is absolute: any larger fraction is a real shortfall.
func ceil(x float64) int {
	return int(math.Ceil(x - tolerance))
}

func validateRequest(req Request) error {
	if err := checkScore("current blended", req.CurrentBlended); err != nil {
		return err
	}
	if err := checkScore("historical score", req.Historical.Score); err != nil {
		return err
	}
	if err := checkNonNegative("historical count", req.Historical.Count); err != nil {
		return err
	}
	if err := checkPositive("recent count", req.RecentCount); err != nil {
		return err
	}
	if err := checkPositive("discount factor", req.DiscountFactor); err != nil {
		return err
	}
	return checkTarget(req.Target)
}

func checkScore(name string, v float64) error {
	if !isFinite(v) || v < MinScore || v > MaxScore {
		return fmt.Errorf("%s %v outside [%g,%g]: %w", name, v, MinScore, MaxScore, ErrInvalidInputs)
	}
	return nil
}

func checkNonNegative(name string, v float64) error {
	if !isFinite(v) || v < 0 {
		return fmt.Errorf("%s %v must be a non-negative number: %w", name, v, ErrInvalidInputs)
	}
	return nil
}

func checkPositive(name string, v float64) error {
	if !isFinite(v) || v <= 0 {
		return fmt.Errorf("%s %v must be positive: %w", name, v, ErrInvalidInputs)
	}
	return nil
}

// checkTarget rejects malformed targets. Targets above the maximum are left
// to solve, which reports them as unreachable.
func checkTarget(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, -1) || v < MinScore {
		return fmt.Errorf("target %v below %g: %w", v, MinScore, ErrInvalidInputs)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
