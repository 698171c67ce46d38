// Package llm defines the provider interface and implementations for reply
// generation, plus rate-limiting and caching wrappers.
package llm

import "context"

// Settings configures the generation request.
type Settings struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// DefaultMaxTokens caps reply length when Settings.MaxTokens is unset.
const DefaultMaxTokens = 512

// Provider generates text from a prompt.
type Provider interface {
	Generate(ctx context.Context, prompt string, settings Settings) (string, error)
	Name() string
}

func maxTokens(s Settings) int {
	if s.MaxTokens <= 0 {
		return DefaultMaxTokens
	}
	return s.MaxTokens
}
