package llm

import (
	"context"
	"sync"
)

// MockProvider is a test double that returns canned responses. When Func is
// set it is called instead. Prompts are recorded and safe to read after
// concurrent use.
type MockProvider struct {
	Response string
	Err      error
	Func     func(prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Generate(_ context.Context, prompt string, _ Settings) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.Func != nil {
		return m.Func(prompt)
	}
	return m.Response, m.Err
}

// Prompts returns the prompts received so far.
func (m *MockProvider) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
