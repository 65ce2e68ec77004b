package llm

import (
	"context"
	"sync"
)

// MockClient implements Client for tests
type MockClient struct {
	mu sync.Mutex

	// ChatFunc allows customizing the response
	ChatFunc func(context.Context, ChatRequest) (*ChatResponse, error)

	// Tracking for assertions
	ChatCalls []ChatRequest
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a new mock client with default behavior
func NewMockClient() *MockClient {
	return &MockClient{
		ChatCalls: make([]ChatRequest, 0),
	}
}

// ChatCompletion implements Client.ChatCompletion
func (m *MockClient) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	m.mu.Lock()
	m.ChatCalls = append(m.ChatCalls, req)
	m.mu.Unlock()

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, req)
	}

	resp := NewTextResponse(req.Model, "This is a mock response.")
	resp.ID = "mock-response-1"
	resp.Created = 1234567890
	resp.Usage = Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}
	return resp, nil
}

// Reset clears the call history
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ChatCalls = make([]ChatRequest, 0)
}

// GetChatCallCount returns the number of calls made
func (m *MockClient) GetChatCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ChatCalls)
}

// LastRequest returns the most recent request, if any
func (m *MockClient) LastRequest() (ChatRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ChatCalls) == 0 {
		return ChatRequest{}, false
	}
	return m.ChatCalls[len(m.ChatCalls)-1], true
}
