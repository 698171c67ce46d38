// Package prompt builds the text-generation prompt for guest review replies.
package prompt

import (
	"fmt"
	"strings"

	"github.com/dshills/hotelcritic/internal/review"
)

// Defaults for reply length.
const (
	DefaultMaxChars = 80
	DefaultMaxWords = 60
)

// BuildOpts configures prompt construction.
type BuildOpts struct {
	Hotel    review.Hotel
	Comment  string
	MaxChars int
}

// Build assembles the reply prompt for one guest comment.
func Build(opts BuildOpts) string {
	hotel := opts.Hotel.Resolved()
	maxChars := opts.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var b strings.Builder

	// 1. Role
	fmt.Fprintf(&b, "你是一家名为【%s】的酒店客服，请以温暖、专业、真诚的口吻回复以下客人评论。\n", hotel.Name)
	fmt.Fprintf(&b, "酒店位于：%s，请结合地理位置适当提及。\n\n", hotel.Location)

	// 2. Comment
	fmt.Fprintf(&b, "评论内容：%s\n\n", strings.TrimSpace(opts.Comment))

	// 3. Rules
	b.WriteString("要求：\n")
	b.WriteString("1. 先感谢客人；\n")
	b.WriteString("2. 若为好评，表达荣幸与欢迎再来；\n")
	b.WriteString("3. 若为差评，诚恳道歉并说明改进方向；\n")
	b.WriteString("4. 语言自然，避免模板化；\n")
	b.WriteString("5. 不要使用“我们”、“您”等生硬称呼，可适度拟人化；\n")
	fmt.Fprintf(&b, "6. 限%d字以内。\n\n", maxChars)

	b.WriteString("请直接输出回复内容：\n")
	return b.String()
}

// BuildRevision constructs a follow-up prompt asking the model to fix the
// listed problems in a draft reply.
func BuildRevision(original string, problems []string) string {
	var b strings.Builder
	b.WriteString("下面的回复不符合要求，请只修正列出的问题并重新输出回复内容。\n\n")
	b.WriteString("问题：\n")
	for _, p := range problems {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	b.WriteString("\n原回复：\n")
	b.WriteString(strings.TrimSpace(original))
	b.WriteString("\n\n请直接输出修改后的回复内容：\n")
	return b.String()
}

// TruncateWords keeps the first maxWords whitespace-separated words and
// joins them with single spaces. Text without spaces counts as one word.
func TruncateWords(text string, maxWords int) string {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	words := strings.Fields(text)
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ")
}
