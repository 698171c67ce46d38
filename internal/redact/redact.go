// Package redact replaces guest personal data and secrets in text with
// [REDACTED] before it is sent to a text-generation provider.
package redact

import "regexp"

var patterns []*regexp.Regexp

func init() {
	raw := []string{
		// Mainland resident ID numbers (18 characters, last may be X)
		`\b\d{17}[\dXx]\b`,
		// Mainland mobile numbers, optional +86 prefix
		`(?:\+?86[- ]?)?\b1[3-9]\d{9}\b`,
		// Landlines with area code
		`\b0\d{2,3}-\d{7,8}\b`,
		// E-mail addresses
		`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`,
		// Private key blocks
		`-----BEGIN [A-Z ]+PRIVATE KEY-----[\s\S]*?-----END [A-Z ]+PRIVATE KEY-----`,
		// Bearer tokens
		`Bearer\s+[A-Za-z0-9\-._~+/]+=*`,
		// Provider API keys
		`\bsk-[A-Za-z0-9\-_]{16,}`,
		// Generic key/secret/token/password assignments
		`(?i)(api[_-]?key|api[_-]?secret|secret[_-]?key|token|password|passwd|credentials)\s*[:=]\s*\S+`,
	}
	for _, r := range raw {
		patterns = append(patterns, regexp.MustCompile(r))
	}
}

// Redact replaces personal data and secret patterns in text with [REDACTED].
func Redact(text string) string {
	for _, p := range patterns {
		text = p.ReplaceAllString(text, "[REDACTED]")
	}
	return text
}
