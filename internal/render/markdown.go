// Package render produces Markdown and HTML output from analysis reports and
// rating calculations.
package render

import (
	"fmt"
	"strings"

	"github.com/dshills/hotelcritic/internal/review"
)

// Markers shown next to a score relative to the excellence line.
const (
	MarkExcellent = "🟢"
	MarkBelow     = "🟡"
)

// Markdown renders a report as a Markdown document.
func Markdown(r *review.Report) string {
	var b strings.Builder

	// Summary
	fmt.Fprintf(&b, "# %s 评论分析报告\n\n", r.Hotel.Name)
	fmt.Fprintf(&b, "**位置:** %s\n", r.Hotel.Location)
	fmt.Fprintf(&b, "**综合得分:** %.2f / 5\n", r.Summary.Overall)
	fmt.Fprintf(&b, "**维度:** %d 优秀, %d 高分, %d 待改进\n", r.Summary.ExcellentCount, r.Summary.HighCount, r.Summary.NeedsWorkCount)
	fmt.Fprintf(&b, "**样本:** %s 行, %s 条评论\n\n", printer.Sprintf("%d", r.Input.Rows), printer.Sprintf("%d", r.Input.Comments))

	// High-score chart
	high := review.HighScores(r.Dimensions, r.Thresholds)
	if len(high) > 0 {
		fmt.Fprintf(&b, "## 高分维度 (≥ %.2f)\n\n", r.Thresholds.High)
		b.WriteString("```\n")
		b.WriteString(Chart(high, DefaultChartWidth))
		b.WriteString("```\n\n")
	}

	// Dimension table
	if len(r.Dimensions) > 0 {
		b.WriteString("## 维度得分\n\n")
		b.WriteString("| 维度 | 得分 | 来源 | 提及 | |\n")
		b.WriteString("|------|------|------|------|---|\n")
		for _, d := range r.Dimensions {
			fmt.Fprintf(&b, "| %s | %.2f | %s | %d | %s |\n", d.Name, d.Score, d.Source.Label(), d.Mentions, marker(d.Score, r.Thresholds))
		}
		b.WriteString("\n")
	}

	// Suggestions
	b.WriteString("## 改进建议\n\n")
	if r.Summary.AllExcellent {
		fmt.Fprintf(&b, "所有维度均达到 %.2f 分以上，请继续保持。\n\n", r.Thresholds.Excellent)
	} else {
		for _, s := range r.Suggestions {
			fmt.Fprintf(&b, "- %s **%s** (%.2f): %s\n", MarkBelow, s.Dimension, s.Score, s.Text)
		}
		b.WriteString("\n")
	}

	if len(r.Warnings) > 0 {
		b.WriteString("## 警告\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	// Input used
	if r.Input.SheetFile != "" {
		b.WriteString("## 数据来源\n\n")
		fmt.Fprintf(&b, "- %s (%s)\n", r.Input.SheetFile, r.Input.SheetHash)
		fmt.Fprintf(&b, "- 词典: %s\n\n", r.Input.Lexicon)
	}

	return b.String()
}

func marker(score float64, th review.Thresholds) string {
	if score >= th.Excellent {
		return MarkExcellent
	}
	return MarkBelow
}
