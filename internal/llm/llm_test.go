package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
)

func clearKeys(t *testing.T) {
	t.Helper()
	t.Setenv("DASHSCOPE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
}

func TestResolveProviderPrefixes(t *testing.T) {
	tests := []struct {
		model string
		env   string
		want  string
	}{
		{"qwen:qwen-plus", "DASHSCOPE_API_KEY", "qwen/qwen-plus"},
		{"qwen-max", "DASHSCOPE_API_KEY", "qwen/qwen-max"},
		{"anthropic:claude-sonnet-4-6", "ANTHROPIC_API_KEY", "anthropic/claude-sonnet-4-6"},
		{"claude-sonnet-4-6", "ANTHROPIC_API_KEY", "anthropic/claude-sonnet-4-6"},
		{"openai:gpt-4o-mini", "OPENAI_API_KEY", "openai/gpt-4o-mini"},
		{"gpt-4o", "OPENAI_API_KEY", "openai/gpt-4o"},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			clearKeys(t)
			t.Setenv(tt.env, "test-key")
			p, err := ResolveProvider(tt.model)
			if err != nil {
				t.Fatal(err)
			}
			if p.Name() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, p.Name())
			}
		})
	}
}

func TestResolveProviderMissingKey(t *testing.T) {
	clearKeys(t)
	if _, err := ResolveProvider("qwen-max"); err == nil {
		t.Error("expected error when DASHSCOPE_API_KEY is unset")
	}
}

func TestResolveProviderUnknownModel(t *testing.T) {
	clearKeys(t)
	t.Setenv("OPENAI_API_KEY", "test-key")
	if _, err := ResolveProvider("llama-3"); err == nil {
		t.Error("expected error for unknown model")
	}
}

func TestResolveProviderAutoDetect(t *testing.T) {
	clearKeys(t)
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("OPENAI_API_KEY", "test-key")
	p, err := ResolveProvider("")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "openai" {
		t.Errorf("expected openai ahead of anthropic, got %s", p.Name())
	}

	t.Setenv("DASHSCOPE_API_KEY", "test-key")
	p, err = ResolveProvider("")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "qwen" {
		t.Errorf("expected qwen first, got %s", p.Name())
	}
}

func TestResolveProviderNone(t *testing.T) {
	clearKeys(t)
	if _, err := ResolveProvider(""); err == nil {
		t.Error("expected error when no API keys set")
	}
}

func TestMockProvider(t *testing.T) {
	m := &MockProvider{Response: "感谢入住"}
	got, err := m.Generate(context.Background(), "prompt", Settings{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "感谢入住" {
		t.Errorf("unexpected response: %s", got)
	}
	if p := m.Prompts(); len(p) != 1 || p[0] != "prompt" {
		t.Errorf("unexpected prompts: %v", p)
	}
}

// --- Anthropic ---

// anthropicServer answers /v1/messages with a message holding the given
// content blocks and stop reason.
func anthropicServer(t *testing.T, stopReason string, blocks []map[string]any, check func(req map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Error("missing API key header")
		}
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if check != nil {
			check(req)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":            "msg_test",
			"type":          "message",
			"role":          "assistant",
			"model":         "claude-sonnet-4-5",
			"content":       blocks,
			"stop_reason":   stopReason,
			"stop_sequence": nil,
			"usage":         map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
	}))
}

func testAnthropic(srv *httptest.Server) *AnthropicProvider {
	return newAnthropic(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(srv.URL),
		option.WithHTTPClient(srv.Client()),
		option.WithMaxRetries(0),
	)
}

func TestAnthropicProviderGenerate(t *testing.T) {
	srv := anthropicServer(t, "end_turn",
		[]map[string]any{{"type": "text", "text": " 感谢入住，欢迎再来！\n"}},
		func(req map[string]any) {
			if got, _ := req["max_tokens"].(float64); int(got) != DefaultMaxTokens {
				t.Errorf("expected default max tokens, got %v", req["max_tokens"])
			}
			if req["model"] != anthropicDefaultModel {
				t.Errorf("model = %v", req["model"])
			}
			if got, _ := req["temperature"].(float64); got != 0.7 {
				t.Errorf("temperature = %v", req["temperature"])
			}
		})
	defer srv.Close()

	got, err := testAnthropic(srv).Generate(context.Background(), "test prompt", Settings{Temperature: 0.7})
	if err != nil {
		t.Fatal(err)
	}
	if got != "感谢入住，欢迎再来！" {
		t.Errorf("unexpected response: %q", got)
	}
}

func TestAnthropicErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"rate limited"}}`))
	}))
	defer srv.Close()

	_, err := testAnthropic(srv).Generate(context.Background(), "prompt", Settings{})
	if err == nil {
		t.Fatal("expected error for 429 status")
	}
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *anthropic.Error, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", apiErr.StatusCode)
	}
}

func TestAnthropicNoTextContent(t *testing.T) {
	srv := anthropicServer(t, "end_turn", []map[string]any{}, nil)
	defer srv.Close()

	_, err := testAnthropic(srv).Generate(context.Background(), "prompt", Settings{})
	if err == nil || !strings.Contains(err.Error(), "no text content") {
		t.Errorf("expected 'no text content' error, got: %v", err)
	}
}

func TestAnthropicTruncated(t *testing.T) {
	srv := anthropicServer(t, "max_tokens", []map[string]any{{"type": "text", "text": "感谢"}}, nil)
	defer srv.Close()

	_, err := testAnthropic(srv).Generate(context.Background(), "prompt", Settings{MaxTokens: 16})
	if err == nil || !strings.Contains(err.Error(), "truncated") {
		t.Errorf("expected truncation error, got: %v", err)
	}
}

// --- OpenAI-compatible ---

func chatServer(t *testing.T, handle func(w http.ResponseWriter, req map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("missing Authorization header")
		}
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		handle(w, req)
	}))
}

func chatResponse(content, finish string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			FinishReason: openai.FinishReason(finish),
		}},
	}
}

func TestOpenAIProviderGenerate(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, req map[string]any) {
		if req["model"] != "qwen-max" {
			t.Errorf("expected default model, got %v", req["model"])
		}
		if req["max_tokens"] != float64(DefaultMaxTokens) {
			t.Errorf("expected max_tokens %d, got %v", DefaultMaxTokens, req["max_tokens"])
		}
		json.NewEncoder(w).Encode(chatResponse("  感谢入住！ ", "stop"))
	})
	defer srv.Close()

	p := newCompatible("qwen", "test-key", srv.URL, "qwen-max", srv.Client())
	got, err := p.Generate(context.Background(), "test prompt", Settings{Temperature: 0.7})
	if err != nil {
		t.Fatal(err)
	}
	if got != "感谢入住！" {
		t.Errorf("unexpected response: %q", got)
	}
}

func TestOpenAIModelOverride(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, req map[string]any) {
		if req["model"] != "gpt-4o-mini" {
			t.Errorf("expected override model, got %v", req["model"])
		}
		json.NewEncoder(w).Encode(chatResponse("ok", "stop"))
	})
	defer srv.Close()

	p := &modelOverride{Provider: newCompatible("openai", "test-key", srv.URL, "gpt-4o", srv.Client()), model: "gpt-4o-mini"}
	if _, err := p.Generate(context.Background(), "prompt", Settings{Model: "ignored"}); err != nil {
		t.Fatal(err)
	}
}

func TestOpenAINon200Status(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, _ map[string]any) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"message": "server error", "type": "server_error"}}`))
	})
	defer srv.Close()

	p := newCompatible("openai", "test-key", srv.URL, "gpt-4o", srv.Client())
	_, err := p.Generate(context.Background(), "prompt", Settings{})
	if err == nil {
		t.Fatal("expected error for non-200 status")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error should contain status code 500, got: %s", err.Error())
	}
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) || apiErr.HTTPStatusCode != http.StatusInternalServerError {
		t.Errorf("expected wrapped APIError, got %T", err)
	}
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, _ map[string]any) {
		json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	})
	defer srv.Close()

	p := newCompatible("openai", "test-key", srv.URL, "gpt-4o", srv.Client())
	_, err := p.Generate(context.Background(), "prompt", Settings{})
	if err == nil || !strings.Contains(err.Error(), "no choices") {
		t.Errorf("expected 'no choices' error, got: %v", err)
	}
}

func TestOpenAITruncation(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, _ map[string]any) {
		json.NewEncoder(w).Encode(chatResponse("感谢", "length"))
	})
	defer srv.Close()

	p := newCompatible("openai", "test-key", srv.URL, "gpt-4o", srv.Client())
	_, err := p.Generate(context.Background(), "prompt", Settings{MaxTokens: 10})
	if err == nil || !strings.Contains(err.Error(), "truncated") {
		t.Errorf("expected truncation error, got: %v", err)
	}
}

// --- Wrappers ---

func TestRateLimitedCancelled(t *testing.T) {
	m := &MockProvider{Response: "ok"}
	p := NewRateLimited(m, 0.001, 1)

	if _, err := p.Generate(context.Background(), "a", Settings{}); err != nil {
		t.Fatalf("first call should use the burst: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Generate(ctx, "b", Settings{}); err == nil {
		t.Fatal("expected limiter wait to fail")
	}
	if len(m.Prompts()) != 1 {
		t.Errorf("limited call must not reach the provider")
	}
}

func TestRateLimitedUnlimited(t *testing.T) {
	m := &MockProvider{Response: "ok"}
	p := NewRateLimited(m, 0, 0)
	for i := 0; i < 20; i++ {
		if _, err := p.Generate(context.Background(), "x", Settings{}); err != nil {
			t.Fatal(err)
		}
	}
	if p.Name() != "mock" {
		t.Errorf("wrapper should keep the provider name, got %s", p.Name())
	}
}

type mapStore struct {
	mu      sync.Mutex
	data    map[string]string
	ttl     time.Duration
	failGet bool
}

func (s *mapStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return "", false, errors.New("connection refused")
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *mapStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.ttl = ttl
	return nil
}

func TestCachedServesRepeats(t *testing.T) {
	var calls atomic.Int32
	m := &MockProvider{Func: func(string) (string, error) {
		calls.Add(1)
		return "感谢入住", nil
	}}
	store := &mapStore{data: map[string]string{}}
	p := NewCached(m, store, 0, nil)

	for i := 0; i < 3; i++ {
		got, err := p.Generate(context.Background(), "same prompt", Settings{Temperature: 0.7})
		if err != nil {
			t.Fatal(err)
		}
		if got != "感谢入住" {
			t.Errorf("unexpected reply %q", got)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("expected one provider call, got %d", calls.Load())
	}
	if store.ttl != DefaultCacheTTL {
		t.Errorf("expected default ttl, got %v", store.ttl)
	}

	if _, err := p.Generate(context.Background(), "other prompt", Settings{Temperature: 0.7}); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Errorf("different prompt should miss the cache")
	}
}

func TestCachedStoreFailureFallsThrough(t *testing.T) {
	m := &MockProvider{Response: "ok"}
	p := NewCached(m, &mapStore{data: map[string]string{}, failGet: true}, time.Minute, nil)
	got, err := p.Generate(context.Background(), "prompt", Settings{})
	if err != nil || got != "ok" {
		t.Errorf("expected provider reply despite cache failure, got %q, %v", got, err)
	}
}

func TestCachedDoesNotStoreErrors(t *testing.T) {
	store := &mapStore{data: map[string]string{}}
	p := NewCached(&MockProvider{Err: errors.New("boom")}, store, time.Minute, nil)
	if _, err := p.Generate(context.Background(), "prompt", Settings{}); err == nil {
		t.Fatal("expected provider error")
	}
	if len(store.data) != 0 {
		t.Error("errors must not be cached")
	}
}

func TestCacheKey(t *testing.T) {
	base := CacheKey("qwen", "p", Settings{Model: "qwen-max", Temperature: 0.7})
	if !strings.HasPrefix(base, cacheKeyPrefix) {
		t.Errorf("missing prefix: %s", base)
	}
	if base != CacheKey("qwen", "p", Settings{Model: "qwen-max", Temperature: 0.7, MaxTokens: DefaultMaxTokens}) {
		t.Error("default max tokens should not change the key")
	}
	for _, other := range []string{
		CacheKey("openai", "p", Settings{Model: "qwen-max", Temperature: 0.7}),
		CacheKey("qwen", "q", Settings{Model: "qwen-max", Temperature: 0.7}),
		CacheKey("qwen", "p", Settings{Model: "qwen-plus", Temperature: 0.7}),
		CacheKey("qwen", "p", Settings{Model: "qwen-max", Temperature: 0.2}),
	} {
		if other == base {
			t.Error("expected distinct keys")
		}
	}
}

func TestRetryingRecovers(t *testing.T) {
	var calls atomic.Int32
	m := &MockProvider{Func: func(string) (string, error) {
		if calls.Add(1) < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}}
	got, err := NewRetrying(m, 3, time.Millisecond).Generate(context.Background(), "p", Settings{})
	if err != nil || got != "ok" {
		t.Fatalf("expected recovery, got %q, %v", got, err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestRetryingGivesUp(t *testing.T) {
	m := &MockProvider{Err: errors.New("down")}
	_, err := NewRetrying(m, 2, time.Millisecond).Generate(context.Background(), "p", Settings{})
	if err == nil || !strings.Contains(err.Error(), "after 2 attempts") {
		t.Errorf("unexpected error: %v", err)
	}
	if len(m.Prompts()) != 2 {
		t.Errorf("expected 2 attempts, got %d", len(m.Prompts()))
	}
}
