package main

import (
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/hotelcritic/internal/history"
	"github.com/dshills/hotelcritic/internal/ingest"
	"github.com/dshills/hotelcritic/internal/lexicon"
	"github.com/dshills/hotelcritic/internal/rating"
	"github.com/dshills/hotelcritic/internal/render"
)

type aggregateOutput struct {
	Policy     string         `json:"policy"`
	Reviews    int            `json:"reviews"`
	Dropped    int            `json:"dropped"`
	Score      float64        `json:"score"`
	Target     float64        `json:"target,omitempty"`
	Projection *rating.Result `json:"projection,omitempty"`
}

type aggregateFlags struct {
	common
	policy    string
	lambda    float64
	offset    float64
	scoreCol  string
	dateCol   string
	rankCol   string
	target    float64
	hasTarget bool
	format    string
	out       string
}

func newAggregateCmd(g *rootFlags) *cobra.Command {
	f := &aggregateFlags{}

	cmd := &cobra.Command{
		Use:   "aggregate <sheet>",
		Short: "Fold a dated review list into one recency-weighted score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.init(g)
			f.hasTarget = cmd.Flags().Changed("target")
			changed := map[string]bool{}
			for _, name := range []string{"policy", "lambda", "offset"} {
				changed[name] = cmd.Flags().Changed(name)
			}
			return runAggregate(args[0], f, changed)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.policy, "policy", rating.PolicyInverseDay, "Weighting: inverse-day, inverse-day-rank or exponential")
	flags.Float64Var(&f.lambda, "lambda", rating.DefaultDecayLambda, "Daily decay rate for the exponential policy")
	flags.Float64Var(&f.offset, "offset", rating.DefaultCalibrationOffset, "Calibration offset subtracted by the exponential policy")
	flags.StringVar(&f.scoreCol, "score-col", "", "Score column header (default from config)")
	flags.StringVar(&f.dateCol, "date-col", "", "Date column header (default from config)")
	flags.StringVar(&f.rankCol, "rank-col", "", "Rank column header (default from config)")
	flags.Float64Var(&f.target, "target", 0, "Also count the five-star reviews needed to reach this score")
	flags.StringVar(&f.format, "format", "md", "Output format: json or md")
	flags.StringVar(&f.out, "out", "", "Output file path (default: stdout)")
	f.addHistoryFlag(cmd)

	return cmd
}

// runAggregate takes policy, lambda and offset from config unless the
// matching flag was set.
func runAggregate(sheetPath string, f *aggregateFlags, changed map[string]bool) error {
	if err := f.setup(); err != nil {
		return err
	}
	cfg := f.cfg.Aggregate

	if !changed["policy"] {
		f.policy = cfg.Policy
	}
	if !changed["lambda"] {
		f.lambda = cfg.Lambda
	}
	if !changed["offset"] {
		f.offset = cfg.Offset
	}
	policy, err := rating.ParsePolicy(f.policy, f.lambda, f.offset)
	if err != nil {
		return exitError(3, "%v", err)
	}

	// The lexicon's own column names extend the configured candidates.
	lx, err := lexicon.Resolve(f.cfg.Analysis.Lexicon)
	if err != nil {
		return exitError(3, "failed to load lexicon: %v", err)
	}
	cols := ingest.ReviewColumns{
		Score: pick(f.scoreCol, slices.Concat(cfg.ScoreColumns, lx.ScoreColumns)),
		Date:  pick(f.dateCol, slices.Concat(cfg.DateColumns, lx.DateColumns)),
		Rank:  pick(f.rankCol, cfg.RankColumns),
	}

	f.logger.Info("loading sheet", "path", sheetPath)
	sheet, err := ingest.Load(sheetPath)
	if err != nil {
		return exitError(3, "failed to load sheet: %v", err)
	}
	reviews, _, err := ingest.Reviews(sheet, cols)
	if err != nil {
		return exitError(3, "%v", err)
	}
	valid := rating.CountValid(reviews)
	if valid == 0 {
		return exitError(3, "no usable reviews in %s", sheetPath)
	}
	dropped := len(sheet.Rows) - valid

	score := rating.AggregateReviews(reviews, policy)
	f.logger.Info("aggregated", "policy", policy.Name, "reviews", valid, "score", score)

	out := aggregateOutput{
		Policy:  policy.Name,
		Reviews: valid,
		Dropped: dropped,
		Score:   score,
	}
	entry := history.Entry{
		Kind:   history.KindAggregate,
		Input:  sheetPath,
		Output: strconv.FormatFloat(score, 'f', 4, 64),
		Meta:   map[string]string{"policy": policy.Name, "reviews": strconv.Itoa(valid)},
	}
	if f.hasTarget {
		res, err := rating.ProjectSinglePeriod(score, float64(valid), f.target)
		if err != nil {
			return computeError(err)
		}
		out.Target = f.target
		out.Projection = &res
		entry.Meta["needed"] = strconv.Itoa(res.AdditionalFiveStarNeeded)
	}
	f.history.Append(entry)

	var output string
	switch f.format {
	case "json":
		output, err = marshalJSON(out)
		if err != nil {
			return err
		}
	case "md":
		output = render.Aggregate(render.AggregateSummary{
			Policy:     out.Policy,
			Reviews:    out.Reviews,
			Dropped:    out.Dropped,
			Score:      out.Score,
			Target:     out.Target,
			Projection: out.Projection,
		})
	default:
		return exitError(3, "unknown format: %s", f.format)
	}
	if err := f.emit(f.out, output); err != nil {
		return err
	}
	return f.saveHistory()
}

// pick prefers an explicit column name over the configured candidates.
func pick(flag string, defaults []string) []string {
	if flag != "" {
		return []string{flag}
	}
	return defaults
}
