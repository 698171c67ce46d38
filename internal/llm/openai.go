package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openaiDefaultModel = "gpt-4o"

	dashscopeBaseURL      = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	dashscopeDefaultModel = "qwen-max"
)

// OpenAIProvider implements Provider over any OpenAI-compatible Chat
// Completions endpoint.
type OpenAIProvider struct {
	name         string
	defaultModel string
	client       *openai.Client
}

// NewOpenAI creates an OpenAI provider using the OPENAI_API_KEY env var.
func NewOpenAI() (*OpenAIProvider, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	return newCompatible("openai", key, "", openaiDefaultModel, nil), nil
}

// NewQwen creates a DashScope provider for Qwen models using the
// DASHSCOPE_API_KEY env var and DashScope's OpenAI-compatible mode.
func NewQwen() (*OpenAIProvider, error) {
	key := os.Getenv("DASHSCOPE_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("DASHSCOPE_API_KEY environment variable not set")
	}
	return newCompatible("qwen", key, dashscopeBaseURL, dashscopeDefaultModel, nil), nil
}

func newCompatible(name, key, baseURL, model string, hc *http.Client) *OpenAIProvider {
	cfg := openai.DefaultConfig(key)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if hc != nil {
		cfg.HTTPClient = hc
	}
	return &OpenAIProvider{name: name, defaultModel: model, client: openai.NewClientWithConfig(cfg)}
}

func (o *OpenAIProvider) Name() string { return o.name }

func (o *OpenAIProvider) Generate(ctx context.Context, prompt string, s Settings) (string, error) {
	model := s.Model
	if model == "" {
		model = o.defaultModel
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		MaxTokens:   maxTokens(s),
		Temperature: float32(s.Temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s: request failed: %w", o.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices in response", o.name)
	}
	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		return "", fmt.Errorf("%s: response truncated at %d max tokens", o.name, maxTokens(s))
	}

	return strings.TrimSpace(choice.Message.Content), nil
}
