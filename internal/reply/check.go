package reply

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// bannedAddress are stiff forms of address a reply must avoid.
var bannedAddress = []string{"我们", "您"}

// failureMarkers suggest the model answered with an error or refusal
// instead of a reply.
var failureMarkers = []string{
	"调用失败",
	"作为一个ai",
	"as an ai",
	"i cannot",
}

// ProblemKind classifies a reply problem.
type ProblemKind string

const (
	ProblemEmpty         ProblemKind = "EMPTY"
	ProblemBannedAddress ProblemKind = "BANNED_ADDRESS"
	ProblemTooLong       ProblemKind = "TOO_LONG"
	ProblemFailure       ProblemKind = "FAILURE_MARKER"
)

// Problem records one way a reply breaks the house style.
type Problem struct {
	Kind   ProblemKind `json:"kind"`
	Detail string      `json:"detail"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Kind, p.Detail)
}

// Check scans a reply for banned forms of address, failure markers and
// length beyond maxChars visible characters.
func Check(reply string, maxChars int) []Problem {
	if strings.TrimSpace(reply) == "" {
		return []Problem{{Kind: ProblemEmpty, Detail: "reply is empty"}}
	}

	var problems []Problem
	for _, phrase := range bannedAddress {
		if strings.Contains(reply, phrase) {
			problems = append(problems, Problem{Kind: ProblemBannedAddress, Detail: fmt.Sprintf("不要使用“%s”", phrase)})
		}
	}
	lower := strings.ToLower(reply)
	for _, marker := range failureMarkers {
		if strings.Contains(lower, marker) {
			problems = append(problems, Problem{Kind: ProblemFailure, Detail: fmt.Sprintf("contains %q", marker)})
		}
	}
	if n := visibleLen(reply); maxChars > 0 && n > maxChars {
		problems = append(problems, Problem{Kind: ProblemTooLong, Detail: fmt.Sprintf("%d字，超过%d字限制", n, maxChars)})
	}
	return problems
}

func visibleLen(s string) int {
	n := utf8.RuneCountInString(s)
	for _, r := range s {
		if unicode.IsSpace(r) {
			n--
		}
	}
	return n
}

func details(problems []Problem) []string {
	out := make([]string, len(problems))
	for i, p := range problems {
		out[i] = p.Detail
	}
	return out
}
