package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// ResolveProvider selects a provider based on the model flag and available
// API keys. Without a model flag DashScope is preferred, then OpenAI, then
// Anthropic.
func ResolveProvider(modelFlag string) (Provider, error) {
	// Explicit provider from model flag
	if modelFlag != "" {
		lower := strings.ToLower(modelFlag)
		switch {
		case strings.HasPrefix(lower, "qwen:"):
			return withModel(NewQwen())(modelFlag[len("qwen:"):])
		case strings.HasPrefix(lower, "qwen"):
			return withModel(NewQwen())(modelFlag)
		case strings.HasPrefix(lower, "anthropic:"):
			return withModel(NewAnthropic())(modelFlag[len("anthropic:"):])
		case strings.HasPrefix(lower, "claude"):
			return withModel(NewAnthropic())(modelFlag)
		case strings.HasPrefix(lower, "openai:"):
			return withModel(NewOpenAI())(modelFlag[len("openai:"):])
		case strings.HasPrefix(lower, "gpt"):
			return withModel(NewOpenAI())(modelFlag)
		default:
			return nil, fmt.Errorf("unknown model %q: use a qwen, gpt or claude model, optionally prefixed with qwen:, openai: or anthropic:", modelFlag)
		}
	}

	// Auto-detect from environment
	if os.Getenv("DASHSCOPE_API_KEY") != "" {
		return NewQwen()
	}
	if os.Getenv("OPENAI_API_KEY") != "" {
		return NewOpenAI()
	}
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		return NewAnthropic()
	}

	return nil, fmt.Errorf("no text generation provider configured: set DASHSCOPE_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY")
}

func withModel[P Provider](p P, err error) func(model string) (Provider, error) {
	return func(model string) (Provider, error) {
		if err != nil {
			return nil, err
		}
		return &modelOverride{Provider: p, model: model}, nil
	}
}

// modelOverride wraps a provider to override the model in settings.
type modelOverride struct {
	Provider
	model string
}

func (m *modelOverride) Generate(ctx context.Context, prompt string, s Settings) (string, error) {
	s.Model = m.model
	return m.Provider.Generate(ctx, prompt, s)
}

// Name includes the model so cache keys and logs tell overrides apart.
func (m *modelOverride) Name() string {
	return m.Provider.Name() + "/" + m.model
}
