package render

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dshills/hotelcritic/internal/rating"
)

// printer formats counts with digit grouping.
var printer = message.NewPrinter(language.English)

// Reconciliation renders a two-period reconciliation result.
func Reconciliation(req rating.Request, res rating.Result) string {
	var b strings.Builder

	b.WriteString("# 评分测算\n\n")
	b.WriteString("| 项目 | 数值 |\n|------|------|\n")
	fmt.Fprintf(&b, "| 当前综合评分 | %.2f |\n", req.CurrentBlended)
	fmt.Fprintf(&b, "| 历史评分 | %.2f |\n", req.Historical.Score)
	fmt.Fprintf(&b, "| 历史评论数 | %s |\n", printer.Sprintf("%.0f", req.Historical.Count))
	fmt.Fprintf(&b, "| 折算系数 | %g |\n", req.DiscountFactor)
	fmt.Fprintf(&b, "| 近期评论数 | %s |\n", printer.Sprintf("%.0f", req.RecentCount))
	fmt.Fprintf(&b, "| 历史有效权重 | %.4f |\n", res.EffectiveHistoricalCount)
	fmt.Fprintf(&b, "| 总有效权重 | %.4f |\n", res.TotalEffectiveWeight)
	fmt.Fprintf(&b, "| 推算近期评分 | %.4f |\n", res.InferredRecentScore)
	fmt.Fprintf(&b, "| 目标评分 | %.2f |\n\n", req.Target)

	writeOutcome(&b, res, req.Target)
	return b.String()
}

// Projection renders a single-period projection.
func Projection(current, total, target float64, res rating.Result) string {
	var b strings.Builder

	b.WriteString("# 评分预测\n\n")
	b.WriteString("| 项目 | 数值 |\n|------|------|\n")
	fmt.Fprintf(&b, "| 当前评分 | %.2f |\n", current)
	fmt.Fprintf(&b, "| 评论总数 | %s |\n", printer.Sprintf("%.0f", total))
	fmt.Fprintf(&b, "| 目标评分 | %.2f |\n\n", target)

	writeOutcome(&b, res, target)
	return b.String()
}

// AggregateSummary describes one aggregation run over a review list.
type AggregateSummary struct {
	Policy     string
	Reviews    int
	Dropped    int
	Score      float64
	Target     float64
	Projection *rating.Result
}

// Aggregate renders the result of a review-list aggregation, with an
// optional projection toward a target.
func Aggregate(s AggregateSummary) string {
	var b strings.Builder

	b.WriteString("# 加权评分\n\n")
	b.WriteString("| 项目 | 数值 |\n|------|------|\n")
	fmt.Fprintf(&b, "| 加权方式 | %s |\n", s.Policy)
	fmt.Fprintf(&b, "| 有效评论 | %s |\n", printer.Sprintf("%d", s.Reviews))
	fmt.Fprintf(&b, "| 丢弃行 | %s |\n", printer.Sprintf("%d", s.Dropped))
	fmt.Fprintf(&b, "| 加权得分 | %.4f |\n\n", s.Score)

	if s.Projection != nil {
		writeOutcome(&b, *s.Projection, s.Target)
	}
	return b.String()
}

func writeOutcome(b *strings.Builder, res rating.Result, target float64) {
	if res.AlreadyMet {
		fmt.Fprintf(b, "%s 已达到目标 %.2f，无需额外好评。\n", MarkExcellent, target)
		return
	}
	fmt.Fprintf(b, "%s 还需 **%s** 条五星好评才能达到 %.2f。\n", MarkBelow, printer.Sprintf("%d", res.AdditionalFiveStarNeeded), target)
}
