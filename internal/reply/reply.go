// Package reply drafts replies to guest comments through a text-generation
// provider and records every attempt in the session history.
package reply

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/hotelcritic/internal/history"
	"github.com/dshills/hotelcritic/internal/llm"
	"github.com/dshills/hotelcritic/internal/prompt"
	"github.com/dshills/hotelcritic/internal/redact"
	"github.com/dshills/hotelcritic/internal/review"
)

// DefaultWorkers bounds concurrent provider calls in a batch.
const DefaultWorkers = 4

// ErrEmptyComment is returned for blank comments.
var ErrEmptyComment = errors.New("comment is empty")

// Options configures drafting.
type Options struct {
	Hotel    review.Hotel
	Settings llm.Settings
	MaxWords int
	MaxChars int
	Redact   bool
	// Revise asks the provider for one corrected draft when Check finds
	// problems.
	Revise  bool
	Workers int
}

// Draft is the outcome for one comment.
type Draft struct {
	Index    int       `json:"index"`
	Comment  string    `json:"comment"`
	Reply    string    `json:"reply,omitempty"`
	Revised  bool      `json:"revised,omitempty"`
	Problems []Problem `json:"problems,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Drafter turns comments into replies.
type Drafter struct {
	provider llm.Provider
	log      *history.Log
	opts     Options
}

// NewDrafter returns a Drafter. A nil log disables recording.
func NewDrafter(p llm.Provider, log *history.Log, opts Options) *Drafter {
	if opts.MaxWords <= 0 {
		opts.MaxWords = prompt.DefaultMaxWords
	}
	if opts.MaxChars <= 0 {
		opts.MaxChars = prompt.DefaultMaxChars
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.Settings.MaxTokens <= 0 {
		opts.Settings.MaxTokens = llm.DefaultMaxTokens
	}
	opts.Hotel = opts.Hotel.Resolved()
	return &Drafter{provider: p, log: log, opts: opts}
}

// Draft produces a reply for one comment.
func (d *Drafter) Draft(ctx context.Context, comment string) (Draft, error) {
	text := strings.TrimSpace(comment)
	if d.opts.Redact {
		text = redact.Redact(text)
	}
	out := Draft{Comment: text}
	if text == "" {
		return out, fmt.Errorf("reply.Draft: %w", ErrEmptyComment)
	}

	p := prompt.Build(prompt.BuildOpts{Hotel: d.opts.Hotel, Comment: text, MaxChars: d.opts.MaxChars})
	raw, err := d.provider.Generate(ctx, p, d.opts.Settings)
	if err != nil {
		out.Error = err.Error()
		d.record(out)
		return out, fmt.Errorf("reply.Draft: %w", err)
	}
	out.Reply = prompt.TruncateWords(raw, d.opts.MaxWords)
	out.Problems = Check(out.Reply, d.opts.MaxChars)

	if len(out.Problems) > 0 && d.opts.Revise {
		revised, err := d.provider.Generate(ctx, prompt.BuildRevision(out.Reply, details(out.Problems)), d.opts.Settings)
		if err == nil {
			out.Reply = prompt.TruncateWords(revised, d.opts.MaxWords)
			out.Problems = Check(out.Reply, d.opts.MaxChars)
			out.Revised = true
		}
	}

	d.record(out)
	return out, nil
}

// DraftBatch drafts replies for every comment with bounded concurrency.
// Results keep input order; a failure for one comment is reported in its
// Draft and does not stop the others.
func (d *Drafter) DraftBatch(ctx context.Context, comments []string) []Draft {
	out := make([]Draft, len(comments))
	var g errgroup.Group
	g.SetLimit(d.opts.Workers)
	for i, c := range comments {
		g.Go(func() error {
			dr, err := d.Draft(ctx, c)
			if err != nil && dr.Error == "" {
				dr.Error = err.Error()
			}
			dr.Index = i
			out[i] = dr
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (d *Drafter) record(dr Draft) {
	if d.log == nil {
		return
	}
	d.log.Append(history.Entry{
		Kind:   history.KindReply,
		Input:  dr.Comment,
		Output: dr.Reply,
		Error:  dr.Error,
		Meta: map[string]string{
			"provider": d.provider.Name(),
			"problems": strconv.Itoa(len(dr.Problems)),
			"revised":  strconv.FormatBool(dr.Revised),
		},
	})
}
