package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dshills/hotelcritic/internal/rating"
)

// Manual score columns must hold values in this range.
const (
	ManualMin = 1.0
	ManualMax = 5.0
)

// ColumnScore is the mean of a numeric per-dimension column.
type ColumnScore struct {
	Column string  `json:"column"`
	Mean   float64 `json:"mean"`
	Count  int     `json:"count"`
}

// ManualResult is the outcome of reading the numeric dimension columns.
// When any expected column is missing no scores are taken at all and the
// caller falls back to text extraction.
type ManualResult struct {
	Scores  []ColumnScore `json:"scores"`
	Missing []string      `json:"missing,omitempty"`
	Invalid []string      `json:"invalid,omitempty"`
}

// Comments returns the non-blank cells of the first matching comment column.
func Comments(s *Sheet, candidates []string) ([]string, error) {
	col := s.Column(candidates...)
	if col < 0 {
		return nil, fmt.Errorf("ingest.Comments: no comment column (tried %s)", strings.Join(candidates, ", "))
	}
	var out []string
	for _, v := range s.Values(col) {
		if v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

// ManualScores averages each numeric dimension column. Unparseable cells
// are ignored; a column is rejected as invalid if it has no numbers or any
// number falls outside [1,5]. Means are rounded to two decimals.
func ManualScores(s *Sheet, columns []string) ManualResult {
	var res ManualResult
	idx := make([]int, len(columns))
	for i, name := range columns {
		idx[i] = s.Column(name)
		if idx[i] < 0 {
			res.Missing = append(res.Missing, name)
		}
	}
	if len(res.Missing) > 0 {
		return res
	}

	for i, name := range columns {
		var sum float64
		var n int
		valid := true
		for _, cell := range s.Values(idx[i]) {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil || math.IsNaN(v) {
				continue
			}
			if v < ManualMin || v > ManualMax {
				valid = false
				break
			}
			sum += v
			n++
		}
		if !valid || n == 0 {
			res.Invalid = append(res.Invalid, name)
			continue
		}
		res.Scores = append(res.Scores, ColumnScore{
			Column: name,
			Mean:   math.Round(sum/float64(n)*100) / 100,
			Count:  n,
		})
	}
	return res
}

// ReviewColumns names the columns that hold dated review scores. An optional
// rank column carries the platform's own ordering.
type ReviewColumns struct {
	Score []string
	Date  []string
	Rank  []string
}

// Reviews converts dated score rows into rating reviews. Rows whose score
// does not parse are skipped and counted in dropped; rows whose date does
// not parse are kept with a zero date so the aggregator can drop them.
func Reviews(s *Sheet, cols ReviewColumns) (reviews []rating.Review, dropped int, err error) {
	scoreCol := s.Column(cols.Score...)
	if scoreCol < 0 {
		return nil, 0, fmt.Errorf("ingest.Reviews: no score column (tried %s)", strings.Join(cols.Score, ", "))
	}
	dateCol := s.Column(cols.Date...)
	if dateCol < 0 {
		return nil, 0, fmt.Errorf("ingest.Reviews: no date column (tried %s)", strings.Join(cols.Date, ", "))
	}
	rankCol := -1
	if len(cols.Rank) > 0 {
		rankCol = s.Column(cols.Rank...)
	}

	for i := range s.Rows {
		score, err := strconv.ParseFloat(s.Cell(i, scoreCol), 64)
		if err != nil {
			dropped++
			continue
		}
		r := rating.Review{Score: score}
		if d, ok := ParseDate(s.Cell(i, dateCol)); ok {
			r.Date = d
		} else {
			dropped++
		}
		if rankCol >= 0 {
			if rank, err := strconv.Atoi(s.Cell(i, rankCol)); err == nil && rank > 0 {
				r.Rank = rank
			}
		}
		reviews = append(reviews, r)
	}
	return reviews, dropped, nil
}
