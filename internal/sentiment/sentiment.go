// Package sentiment scores guest comments against a fixed positive/negative
// lexicon and tags them with quality dimensions by keyword lookup.
package sentiment

import (
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/hotelcritic/internal/lexicon"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/width"
)

// Score anchors. A comment with no sentiment hits, or as many positive as
// negative hits, scores NeutralScore.
const (
	NeutralScore  = 3.8
	PositiveBase  = 4.5
	NegativeBase  = 2.5
	SentimentSpan = 0.5
	MinScore      = 1.0
	MaxScore      = 5.0
)

// minWordRunes is the shortest lexicon word that counts as a hit. Single
// characters are too ambiguous inside running Chinese text.
const minWordRunes = 2

// Normalize folds full-width characters, lowercases, and strips everything
// except Han characters and letters.
func Normalize(text string) string {
	text = fold(text)
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.Is(unicode.Han, r) || ('a' <= r && r <= 'z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Scorer counts positive and negative lexicon hits in a comment.
type Scorer struct {
	// words holds both lists, longest first.
	words []polarWord
}

type polarWord struct {
	text     string
	positive bool
}

// NewScorer builds a Scorer from the lexicon's word lists. A word listed
// as both positive and negative counts as positive.
func NewScorer(lx *lexicon.Lexicon) *Scorer {
	var words []polarWord
	seen := make(map[string]bool)
	for _, w := range prepareWords(lx.Positive) {
		words = append(words, polarWord{text: w, positive: true})
		seen[w] = true
	}
	for _, w := range prepareWords(lx.Negative) {
		if !seen[w] {
			words = append(words, polarWord{text: w})
		}
	}
	slices.SortStableFunc(words, func(a, b polarWord) int {
		return utf8.RuneCountInString(b.text) - utf8.RuneCountInString(a.text)
	})
	return &Scorer{words: words}
}

// Hits returns the number of positive and negative word occurrences. The
// text is scanned left to right taking the longest word at each position,
// so overlapping words such as 不值 and 值得 in 不值得 count once.
func (s *Scorer) Hits(text string) (pos, neg int) {
	rest := Normalize(text)
	for rest != "" {
		matched := false
		for _, w := range s.words {
			if strings.HasPrefix(rest, w.text) {
				if w.positive {
					pos++
				} else {
					neg++
				}
				rest = rest[len(w.text):]
				matched = true
				break
			}
		}
		if !matched {
			_, size := utf8.DecodeRuneInString(rest)
			rest = rest[size:]
		}
	}
	return pos, neg
}

// Score maps a comment to [1,5]. Mostly positive comments land in
// [4.5,5], mostly negative ones in [1,2.5], everything else at 3.8.
func (s *Scorer) Score(text string) float64 {
	pos, neg := s.Hits(text)
	total := pos + neg
	switch {
	case total == 0:
		return NeutralScore
	case pos > neg:
		return math.Min(MaxScore, PositiveBase+SentimentSpan*float64(pos)/float64(total))
	case neg > pos:
		return math.Max(MinScore, NegativeBase-SentimentSpan*float64(neg)/float64(total))
	default:
		return NeutralScore
	}
}

// fold applies width folding and lowercasing. Casers keep state, so a new
// one is built per call.
func fold(s string) string {
	return cases.Lower(language.Und).String(width.Fold.String(s))
}

func prepareWords(words []string) []string {
	seen := make(map[string]bool, len(words))
	var out []string
	for _, w := range words {
		w = Normalize(w)
		if utf8.RuneCountInString(w) < minWordRunes || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
