package services

import (
	"context"

	"github.com/jwebster45206/scene-engine/pkg/chat"
)

// LLMService is a chat completion provider.
type LLMService interface {
	// InitModel prepares the model on startup. Hosted providers need nothing.
	InitModel(ctx context.Context, modelName string) error

	// Chat sends the conversation and returns the model's reply. Empty
	// fields in opts fall back to the service defaults.
	Chat(ctx context.Context, messages []chat.ChatMessage, opts chat.ChatOptions) (*chat.ChatResponse, error)
}
