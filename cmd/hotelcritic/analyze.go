package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dshills/hotelcritic/internal/analysis"
	"github.com/dshills/hotelcritic/internal/ingest"
	"github.com/dshills/hotelcritic/internal/lexicon"
	"github.com/dshills/hotelcritic/internal/render"
	"github.com/dshills/hotelcritic/internal/schema"
)

type analyzeFlags struct {
	common
	format    string
	out       string
	lexicon   string
	hotel     string
	location  string
	export    string
	failBelow float64
}

func newAnalyzeCmd(g *rootFlags) *cobra.Command {
	f := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze <sheet>",
		Short: "Score review dimensions from a spreadsheet and write a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.init(g)
			return runAnalyze(args[0], f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.format, "format", "md", "Output format: json, md or html")
	flags.StringVar(&f.out, "out", "", "Output file path (default: stdout)")
	flags.StringVar(&f.lexicon, "lexicon", "", "Built-in lexicon name or YAML path (default from config)")
	flags.StringVar(&f.hotel, "hotel", "", "Hotel name (default from config)")
	flags.StringVar(&f.location, "location", "", "Hotel location (default from config)")
	flags.StringVar(&f.export, "export", "", "Also write the raw rows to this .xlsx file")
	flags.Float64Var(&f.failBelow, "fail-below", 0, "Exit 2 if the overall score is below this value")

	return cmd
}

func runAnalyze(sheetPath string, f *analyzeFlags) error {
	if err := f.setup(); err != nil {
		return err
	}
	cfg := f.cfg

	// 1. Lexicon
	lexRef := f.lexicon
	if lexRef == "" {
		lexRef = cfg.Analysis.Lexicon
	}
	f.logger.Info("loading lexicon", "ref", lexRef)
	lx, err := lexicon.Resolve(lexRef)
	if err != nil {
		return exitError(3, "failed to load lexicon: %v", err)
	}

	// 2. Sheet
	f.logger.Info("loading sheet", "path", sheetPath)
	s, err := ingest.Load(sheetPath)
	if err != nil {
		return exitError(3, "failed to load sheet: %v", err)
	}
	f.logger.Debug("sheet loaded", "sheet", s.SheetName, "rows", len(s.Rows), "columns", len(s.Header))

	// 3. Analyze
	hotel := cfg.HotelInfo()
	if f.hotel != "" {
		hotel.Name = f.hotel
	}
	if f.location != "" {
		hotel.Location = f.location
	}
	rep, err := analysis.Analyze(s, lx, analysis.Options{
		Tool:       "hotelcritic",
		Version:    version,
		Hotel:      hotel,
		Thresholds: cfg.Thresholds(),
	})
	if err != nil {
		if errors.Is(err, analysis.ErrNothingToAnalyze) {
			return exitError(3, "%v", err)
		}
		return exitError(5, "analysis failed: %v", err)
	}
	for _, w := range rep.Warnings {
		f.logger.Warn(w)
	}
	f.logger.Info("analysis complete", "dimensions", len(rep.Dimensions), "overall", rep.Summary.Overall)

	// 4. Validate
	if verrs := schema.Validate(rep); len(verrs) > 0 {
		for _, e := range verrs {
			f.logger.Error("report validation", "error", e)
		}
		return exitError(5, "report failed validation with %d errors", len(verrs))
	}

	// 5. Output
	var output string
	switch f.format {
	case "json":
		output, err = marshalJSON(rep)
		if err != nil {
			return err
		}
	case "md":
		output = render.Markdown(rep)
	case "html":
		output, err = render.HTML(rep)
		if err != nil {
			return err
		}
	default:
		return exitError(3, "unknown format: %s", f.format)
	}
	if err := f.emit(f.out, output); err != nil {
		return err
	}

	// 6. Raw export
	if f.export != "" {
		f.logger.Info("exporting raw rows", "path", f.export)
		if err := ingest.Export(s, f.export); err != nil {
			return exitError(3, "failed to export sheet: %v", err)
		}
	}

	// 7. Exit code based on --fail-below
	if f.failBelow > 0 && rep.Summary.Overall < f.failBelow {
		return exitError(2, "overall score %.2f is below %.2f", rep.Summary.Overall, f.failBelow)
	}
	return nil
}
