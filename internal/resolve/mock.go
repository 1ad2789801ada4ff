package resolve

import (
	"context"
	"sync"
)

// MockCompletionClient is a test double for CompletionClient. Results are
// consumed in order; when the script runs out, DefaultResult is returned.
type MockCompletionClient struct {
	mu            sync.Mutex
	Script        []MockResult
	DefaultResult string
	Calls         []Request
}

// MockResult is one scripted outcome.
type MockResult struct {
	Text string
	Err  error
}

// NewMockCompletionClient creates a mock that answers every call with text.
func NewMockCompletionClient(text string) *MockCompletionClient {
	return &MockCompletionClient{DefaultResult: text}
}

func (m *MockCompletionClient) Complete(_ context.Context, req Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	if len(m.Script) > 0 {
		next := m.Script[0]
		m.Script = m.Script[1:]
		return next.Text, next.Err
	}
	return m.DefaultResult, nil
}

// CallCount returns how many completion calls were made.
func (m *MockCompletionClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Enqueue appends scripted outcomes.
func (m *MockCompletionClient) Enqueue(results ...MockResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Script = append(m.Script, results...)
}
