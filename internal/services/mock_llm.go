package services

import (
	"context"
	"slices"
	"sync"

	"github.com/jwebster45206/scene-engine/pkg/chat"
)

// MockLLM is a mock implementation of LLMService for testing
type MockLLM struct {
	InitModelFunc func(ctx context.Context, modelName string) error
	ChatFunc      func(ctx context.Context, messages []chat.ChatMessage, opts chat.ChatOptions) (*chat.ChatResponse, error)

	// Responses are returned in order by Chat when ChatFunc is nil. The
	// last one repeats once the list runs out.
	Responses []string

	// Track calls for testing
	InitModelCalls []string
	ChatCalls      []ChatCall

	mu sync.Mutex // protects all fields above
}

type ChatCall struct {
	Messages []chat.ChatMessage
	Options  chat.ChatOptions
}

var _ LLMService = (*MockLLM)(nil)

// NewMockLLM returns a mock that replies with responses in order.
func NewMockLLM(responses ...string) *MockLLM {
	return &MockLLM{Responses: responses}
}

func (m *MockLLM) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)
	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}
	return nil
}

func (m *MockLLM) Chat(ctx context.Context, messages []chat.ChatMessage, opts chat.ChatOptions) (*chat.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := len(m.ChatCalls)
	m.ChatCalls = append(m.ChatCalls, ChatCall{Messages: slices.Clone(messages), Options: opts})

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages, opts)
	}

	if len(m.Responses) == 0 {
		return &chat.ChatResponse{Message: "Mock response"}, nil
	}
	return &chat.ChatResponse{Message: m.Responses[min(call, len(m.Responses)-1)]}, nil
}

// Calls returns a copy of the recorded Chat calls.
func (m *MockLLM) Calls() []ChatCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.ChatCalls)
}

// Reset clears all call tracking
func (m *MockLLM) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = nil
	m.ChatCalls = nil
}
