package sentiment

import (
	"math"
	"strings"

	"github.com/dshills/hotelcritic/internal/lexicon"
)

// DimensionScore is the mean sentiment of every comment that mentions a
// dimension.
type DimensionScore struct {
	Dimension string  `json:"dimension"`
	Score     float64 `json:"score"`
	Mentions  int     `json:"mentions"`
}

// Tagger assigns comments to lexicon dimensions and scores them.
type Tagger struct {
	scorer *Scorer
	dims   []taggedDimension
}

type taggedDimension struct {
	name     string
	keywords []string
}

// NewTagger prepares a Tagger for the lexicon.
func NewTagger(lx *lexicon.Lexicon) *Tagger {
	t := &Tagger{scorer: NewScorer(lx)}
	for _, d := range lx.Dimensions {
		td := taggedDimension{name: d.Name}
		for _, kw := range d.Keywords {
			kw = foldKeyword(kw)
			if kw != "" {
				td.keywords = append(td.keywords, kw)
			}
		}
		t.dims = append(t.dims, td)
	}
	return t
}

// Tags returns the dimensions a comment mentions, in lexicon order.
func (t *Tagger) Tags(comment string) []string {
	text := foldKeyword(comment)
	if text == "" {
		return nil
	}
	var tags []string
	for _, d := range t.dims {
		for _, kw := range d.keywords {
			if strings.Contains(text, kw) {
				tags = append(tags, d.name)
				break
			}
		}
	}
	return tags
}

// Extract scores every comment and averages the scores per tagged
// dimension. Blank comments are skipped; dimensions nobody mentioned are
// omitted. Scores are rounded to two decimals.
func (t *Tagger) Extract(comments []string) []DimensionScore {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, c := range comments {
		if strings.TrimSpace(c) == "" {
			continue
		}
		tags := t.Tags(c)
		if len(tags) == 0 {
			continue
		}
		score := t.scorer.Score(c)
		for _, tag := range tags {
			sums[tag] += score
			counts[tag]++
		}
	}

	var out []DimensionScore
	for _, d := range t.dims {
		n := counts[d.name]
		if n == 0 {
			continue
		}
		out = append(out, DimensionScore{
			Dimension: d.name,
			Score:     Round2(sums[d.name] / float64(n)),
			Mentions:  n,
		})
	}
	return out
}

// Scorer exposes the tagger's sentiment scorer.
func (t *Tagger) Scorer() *Scorer { return t.scorer }

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func foldKeyword(s string) string {
	return strings.TrimSpace(fold(s))
}
