package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/hotelcritic/internal/config"
	"github.com/dshills/hotelcritic/internal/history"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	verbose bool
	debug   bool
}

func newRootCmd() *cobra.Command {
	g := &rootFlags{}

	root := &cobra.Command{
		Use:           "hotelcritic",
		Short:         "Analyze hotel guest reviews, reconcile platform ratings and draft replies",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().BoolVar(&g.verbose, "verbose", false, "Print processing steps to stderr")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "Enable debug logging")

	root.AddCommand(newAnalyzeCmd(g))
	root.AddCommand(newReconcileCmd(g))
	root.AddCommand(newProjectCmd(g))
	root.AddCommand(newAggregateCmd(g))
	root.AddCommand(newReplyCmd(g))
	root.AddCommand(newLexiconsCmd())

	return root
}

// newLogger writes text logs to w. Warnings always show; --verbose adds
// progress and --debug adds everything.
func newLogger(w io.Writer, verbose, debug bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case debug:
		level = slog.LevelDebug
	case verbose:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// common carries what every command needs. Tests inject cfg and stdout.
type common struct {
	cfg        *config.Config
	logger     *slog.Logger
	stdout     io.Writer
	historyOut string
	history    *history.Log
}

func (c *common) addHistoryFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.historyOut, "history-out", "", "Write the session log to this file as JSON, replacing any existing content")
}

func (c *common) init(g *rootFlags) {
	if c.logger == nil {
		c.logger = newLogger(os.Stderr, g.verbose, g.debug)
	}
}

func (c *common) setup() error {
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.stdout == nil {
		c.stdout = os.Stdout
	}
	if c.history == nil {
		c.history = history.New()
	}
	if c.cfg == nil {
		cfg, err := config.Load(".")
		if err != nil {
			return exitError(3, "failed to load config: %v", err)
		}
		c.cfg = cfg
	}
	return nil
}

// emit writes output to path, or to stdout when path is empty.
func (c *common) emit(path, output string) error {
	if path == "" {
		_, err := io.WriteString(c.stdout, output)
		return err
	}
	c.logger.Info("writing output", "path", path)
	if err := os.WriteFile(path, []byte(output), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// saveHistory writes the session log when --history-out is set, replacing
// any earlier file.
func (c *common) saveHistory() error {
	if c.historyOut == "" || c.history.Len() == 0 {
		return nil
	}
	fh, err := os.Create(c.historyOut)
	if err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	if err := c.history.WriteJSON(fh); err != nil {
		fh.Close()
		return fmt.Errorf("failed to write history: %w", err)
	}
	return fh.Close()
}

func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("failed to marshal output: %w", err)
	}
	return buf.String(), nil
}

type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

func exitError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}
