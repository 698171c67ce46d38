package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/hotelcritic/internal/history"
	"github.com/dshills/hotelcritic/internal/rating"
	"github.com/dshills/hotelcritic/internal/render"
)

// Calculation modes reported in JSON output.
const (
	modeTwoPeriod    = "two-period"
	modeFixedSplit   = "fixed-split"
	modeSinglePeriod = "single-period"
)

type reconcileOutput struct {
	Mode        string          `json:"mode"`
	Request     *rating.Request `json:"request,omitempty"`
	RecentShare float64         `json:"recent_share,omitempty"`
	Total       float64         `json:"total,omitempty"`
	Result      rating.Result   `json:"result"`
}

type reconcileFlags struct {
	common
	current         float64
	historicalScore float64
	historicalCount float64
	recentCount     float64
	discount        float64
	target          float64
	recentShare     float64
	fixedSplit      bool
	format          string
	out             string
}

func newReconcileCmd(g *rootFlags) *cobra.Command {
	f := &reconcileFlags{}

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Infer the recent-period score behind a blended rating and count the five-star reviews needed to reach a target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.init(g)
			f.fixedSplit = cmd.Flags().Changed("recent-share")
			if !f.fixedSplit && !cmd.Flags().Changed("historical-count") {
				return exitError(3, "--historical-count is required unless --recent-share is set")
			}
			return runReconcile(f)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&f.current, "current", 0, "Currently displayed blended score")
	flags.Float64Var(&f.historicalScore, "historical-score", 0, "Score of the historical period")
	flags.Float64Var(&f.historicalCount, "historical-count", 0, "Review count of the historical period")
	flags.Float64Var(&f.recentCount, "recent-count", 0, "Review count of the recent period")
	flags.Float64Var(&f.discount, "discount", rating.DefaultDiscountFactor, "Divisor applied to historical counts")
	flags.Float64Var(&f.target, "target", 0, "Target blended score")
	flags.Float64Var(&f.recentShare, "recent-share", rating.DefaultRecentShare, "Use a fixed recent/historical weight split instead of counts")
	flags.StringVar(&f.format, "format", "md", "Output format: json or md")
	flags.StringVar(&f.out, "out", "", "Output file path (default: stdout)")
	for _, name := range []string{"current", "historical-score", "recent-count", "target"} {
		_ = cmd.MarkFlagRequired(name)
	}
	f.addHistoryFlag(cmd)

	return cmd
}

func runReconcile(f *reconcileFlags) error {
	if err := f.setup(); err != nil {
		return err
	}

	var (
		req rating.Request
		res rating.Result
		err error
		out reconcileOutput
	)
	if f.fixedSplit {
		f.logger.Info("reconciling with fixed split", "recent_share", f.recentShare)
		res, err = rating.ReconcileFixedSplit(f.current, f.historicalScore, f.recentCount, f.recentShare, f.target)
		req = rating.Request{
			CurrentBlended: f.current,
			Historical:     rating.Period{Score: f.historicalScore, Count: res.EffectiveHistoricalCount},
			RecentCount:    f.recentCount,
			Target:         f.target,
			DiscountFactor: 1,
		}
		out = reconcileOutput{Mode: modeFixedSplit, RecentShare: f.recentShare}
	} else {
		req = rating.Request{
			CurrentBlended: f.current,
			Historical:     rating.Period{Score: f.historicalScore, Count: f.historicalCount},
			RecentCount:    f.recentCount,
			Target:         f.target,
			DiscountFactor: f.discount,
		}
		f.logger.Info("reconciling two periods", "discount", f.discount)
		res, err = rating.ReconcileTwoPeriod(req)
		out = reconcileOutput{Mode: modeTwoPeriod, Request: &req}
	}
	f.record(history.KindReconcile, fmt.Sprintf("current=%g historical=%g/%g recent=%g target=%g", f.current, f.historicalScore, req.Historical.Count, f.recentCount, f.target), res, err)
	if err != nil {
		return computeError(err)
	}
	f.logger.Debug("reconciled", "inferred", res.InferredRecentScore, "needed", res.AdditionalFiveStarNeeded, "already_met", res.AlreadyMet)
	out.Result = res

	var output string
	switch f.format {
	case "json":
		output, err = marshalJSON(out)
		if err != nil {
			return err
		}
	case "md":
		output = render.Reconciliation(req, res)
	default:
		return exitError(3, "unknown format: %s", f.format)
	}
	if err := f.emit(f.out, output); err != nil {
		return err
	}
	return f.saveHistory()
}

type projectFlags struct {
	common
	current float64
	total   float64
	target  float64
	format  string
	out     string
}

func newProjectCmd(g *rootFlags) *cobra.Command {
	f := &projectFlags{}

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Count the five-star reviews needed to lift a single-period score to a target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.init(g)
			return runProject(f)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&f.current, "current", 0, "Current score")
	flags.Float64Var(&f.total, "total", 0, "Current review count")
	flags.Float64Var(&f.target, "target", 0, "Target score")
	flags.StringVar(&f.format, "format", "md", "Output format: json or md")
	flags.StringVar(&f.out, "out", "", "Output file path (default: stdout)")
	for _, name := range []string{"current", "total", "target"} {
		_ = cmd.MarkFlagRequired(name)
	}
	f.addHistoryFlag(cmd)

	return cmd
}

func runProject(f *projectFlags) error {
	if err := f.setup(); err != nil {
		return err
	}

	res, err := rating.ProjectSinglePeriod(f.current, f.total, f.target)
	f.record(history.KindProject, fmt.Sprintf("current=%g total=%g target=%g", f.current, f.total, f.target), res, err)
	if err != nil {
		return computeError(err)
	}

	var output string
	switch f.format {
	case "json":
		output, err = marshalJSON(reconcileOutput{Mode: modeSinglePeriod, Total: f.total, Result: res})
		if err != nil {
			return err
		}
	case "md":
		output = render.Projection(f.current, f.total, f.target, res)
	default:
		return exitError(3, "unknown format: %s", f.format)
	}
	if err := f.emit(f.out, output); err != nil {
		return err
	}
	return f.saveHistory()
}

// record appends a calculation outcome to the session history.
func (c *common) record(kind history.Kind, input string, res rating.Result, err error) {
	e := history.Entry{
		Kind:  kind,
		Input: input,
		Meta: map[string]string{
			"inferred_recent_score": strconv.FormatFloat(res.InferredRecentScore, 'f', 4, 64),
			"already_met":           strconv.FormatBool(res.AlreadyMet),
		},
	}
	if err != nil {
		e.Error = err.Error()
	} else {
		e.Output = strconv.Itoa(res.AdditionalFiveStarNeeded)
	}
	c.history.Append(e)
}

// computeError maps rating failures to exit code 5 and anything else to 3.
func computeError(err error) error {
	if errors.Is(err, rating.ErrInvalidInputs) || errors.Is(err, rating.ErrUnreachableTarget) {
		return exitError(5, "%v", err)
	}
	return exitError(3, "%v", err)
}
