package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/hotelcritic/internal/ingest"
	"github.com/dshills/hotelcritic/internal/lexicon"
	"github.com/dshills/hotelcritic/internal/llm"
	"github.com/dshills/hotelcritic/internal/reply"
)

// retryDelay is the base backoff between provider attempts.
var retryDelay = time.Second

type replyFlags struct {
	common
	sheet       string
	model       string
	temperature float64
	maxTokens   int
	maxWords    int
	workers     int
	redact      bool
	redactSet   bool
	revise      bool
	format      string
	out         string

	// Injected in tests.
	provider llm.Provider
	stdin    io.Reader
}

func newReplyCmd(g *rootFlags) *cobra.Command {
	f := &replyFlags{}

	cmd := &cobra.Command{
		Use:   "reply [comment]",
		Short: "Draft a reply to a guest comment, or to every comment in a sheet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.init(g)
			f.redactSet = cmd.Flags().Changed("redact")
			comment := ""
			if len(args) == 1 {
				comment = args[0]
			}
			return runReply(cmd.Context(), comment, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.sheet, "sheet", "", "Draft replies for every comment in this sheet")
	flags.StringVar(&f.model, "model", "", "Model to use, e.g. qwen-max, gpt-4o or claude-sonnet-4-5 (default from config)")
	flags.Float64Var(&f.temperature, "temperature", -1, "Sampling temperature (default from config)")
	flags.IntVar(&f.maxTokens, "max-tokens", 0, "Max tokens per reply (default from config)")
	flags.IntVar(&f.maxWords, "max-words", 0, "Truncate replies to this many words (default from config)")
	flags.IntVar(&f.workers, "workers", 0, "Concurrent requests for --sheet (default from config)")
	flags.BoolVar(&f.redact, "redact", true, "Mask personal data before comments reach the provider (default from config)")
	flags.BoolVar(&f.revise, "revise", false, "Ask for one corrected draft when a reply breaks the style rules")
	flags.StringVar(&f.format, "format", "text", "Output format: text, json or md")
	flags.StringVar(&f.out, "out", "", "Output file path (default: stdout)")
	f.addHistoryFlag(cmd)

	return cmd
}

func runReply(ctx context.Context, comment string, f *replyFlags) error {
	if err := f.setup(); err != nil {
		return err
	}
	cfg := f.cfg

	// 1. Comments
	var comments []string
	switch {
	case f.sheet != "":
		if comment != "" {
			return exitError(3, "pass a comment or --sheet, not both")
		}
		lx, err := lexicon.Resolve(cfg.Analysis.Lexicon)
		if err != nil {
			return exitError(3, "failed to load lexicon: %v", err)
		}
		s, err := ingest.Load(f.sheet)
		if err != nil {
			return exitError(3, "failed to load sheet: %v", err)
		}
		comments, err = ingest.Comments(s, lx.CommentColumns)
		if err != nil {
			return exitError(3, "%v", err)
		}
		if len(comments) == 0 {
			return exitError(3, "no comments in %s", f.sheet)
		}
	case comment != "":
		comments = []string{comment}
	default:
		in := f.stdin
		if in == nil {
			in = os.Stdin
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return exitError(3, "failed to read comment: %v", err)
		}
		comments = []string{string(data)}
	}
	if len(comments) == 1 && strings.TrimSpace(comments[0]) == "" {
		return exitError(3, "%v", reply.ErrEmptyComment)
	}

	// 2. Provider
	modelFlag := f.model
	if modelFlag == "" {
		modelFlag = cfg.Reply.Model
	}
	p := f.provider
	if p == nil {
		var err error
		p, err = llm.ResolveProvider(modelFlag)
		if err != nil {
			return exitError(4, "provider error: %v", err)
		}
	}
	p = llm.NewRetrying(p, cfg.Reply.Retries, retryDelay)
	p = llm.NewRateLimited(p, cfg.Reply.RatePerSecond, cfg.Reply.Burst)
	if cfg.Cache.Enabled {
		store := llm.NewRedisStore(cfg.Cache.RedisAddr)
		defer store.Close()
		if err := store.Ping(ctx); err != nil {
			f.logger.Warn("reply cache unavailable", "addr", cfg.Cache.RedisAddr, "error", err)
		} else {
			p = llm.NewCached(p, store, cfg.Cache.TTL, f.logger)
		}
	}
	f.logger.Info("drafting replies", "provider", p.Name(), "comments", len(comments))

	// 3. Draft
	opts := reply.Options{
		Hotel: cfg.HotelInfo(),
		Settings: llm.Settings{
			Temperature: cfg.Reply.Temperature,
			MaxTokens:   cfg.Reply.MaxTokens,
		},
		MaxWords: cfg.Reply.MaxWords,
		MaxChars: cfg.Reply.MaxChars,
		Redact:   cfg.Reply.Redact,
		Revise:   cfg.Reply.Revise || f.revise,
		Workers:  cfg.Reply.Workers,
	}
	if f.redactSet {
		opts.Redact = f.redact
	}
	if f.temperature >= 0 {
		opts.Settings.Temperature = f.temperature
	}
	if f.maxTokens > 0 {
		opts.Settings.MaxTokens = f.maxTokens
	}
	if f.maxWords > 0 {
		opts.MaxWords = f.maxWords
	}
	if f.workers > 0 {
		opts.Workers = f.workers
	}
	d := reply.NewDrafter(p, f.history, opts)

	var drafts []reply.Draft
	if len(comments) == 1 {
		dr, err := d.Draft(ctx, comments[0])
		if err != nil {
			_ = f.saveHistory()
			if errors.Is(err, reply.ErrEmptyComment) {
				return exitError(3, "%v", err)
			}
			return exitError(4, "provider error: %v", err)
		}
		drafts = []reply.Draft{dr}
	} else {
		drafts = d.DraftBatch(ctx, comments)
	}

	failed := 0
	for _, dr := range drafts {
		if dr.Error != "" {
			failed++
			f.logger.Warn("reply failed", "index", dr.Index, "error", dr.Error)
		}
		for _, pr := range dr.Problems {
			f.logger.Warn("reply breaks style rules", "index", dr.Index, "kind", pr.Kind, "detail", pr.Detail)
		}
	}

	// 4. Output
	var output string
	switch f.format {
	case "json":
		var err error
		output, err = marshalJSON(drafts)
		if err != nil {
			return err
		}
	case "md":
		output = draftsMarkdown(drafts)
	case "text":
		output = draftsText(drafts)
	default:
		return exitError(3, "unknown format: %s", f.format)
	}
	if err := f.emit(f.out, output); err != nil {
		return err
	}
	if err := f.saveHistory(); err != nil {
		return err
	}
	if failed == len(drafts) {
		return exitError(4, "all %d replies failed", failed)
	}
	return nil
}

func draftsText(drafts []reply.Draft) string {
	var b strings.Builder
	for i, dr := range drafts {
		if len(drafts) > 1 {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "[%d] %s\n", dr.Index+1, dr.Comment)
		}
		if dr.Error != "" {
			fmt.Fprintf(&b, "ERROR: %s\n", dr.Error)
			continue
		}
		b.WriteString(dr.Reply)
		b.WriteString("\n")
	}
	return b.String()
}

func draftsMarkdown(drafts []reply.Draft) string {
	var b strings.Builder
	b.WriteString("# 评论回复\n\n")
	for _, dr := range drafts {
		fmt.Fprintf(&b, "## 评论 %d\n\n", dr.Index+1)
		fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(dr.Comment, "\n", "\n> "))
		if dr.Error != "" {
			fmt.Fprintf(&b, "**错误:** %s\n\n", dr.Error)
			continue
		}
		b.WriteString(dr.Reply)
		b.WriteString("\n\n")
		for _, pr := range dr.Problems {
			fmt.Fprintf(&b, "- ⚠️ %s: %s\n", pr.Kind, pr.Detail)
		}
		if len(dr.Problems) > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
