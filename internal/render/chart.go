package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/dshills/hotelcritic/internal/review"
)

// DefaultChartWidth is the bar length, in cells, of a perfect score.
const DefaultChartWidth = 30

// Chart draws a horizontal bar per dimension. Labels are padded by display
// width so CJK names line up.
func Chart(dims []review.DimensionScore, width int) string {
	if width <= 0 {
		width = DefaultChartWidth
	}
	labelWidth := 0
	for _, d := range dims {
		if w := runewidth.StringWidth(d.Name); w > labelWidth {
			labelWidth = w
		}
	}

	var b strings.Builder
	for _, d := range dims {
		n := int(math.Round(d.Score / 5 * float64(width)))
		n = max(0, min(n, width))
		fmt.Fprintf(&b, "%s │%s%s %.2f\n",
			padRight(d.Name, labelWidth),
			strings.Repeat("█", n),
			strings.Repeat(" ", width-n),
			d.Score)
	}
	return b.String()
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
