package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/scene-engine/pkg/chat"
)

// Builder constructs the chat messages for a scene generation request.
type Builder struct {
	situation   string
	rating      string
	corrections []correction
	messages    []chat.ChatMessage
}

type correction struct {
	previous string
	reason   string
}

// New creates a new prompt builder with a PG-13 rating.
func New() *Builder {
	return &Builder{
		rating:   RatingPG13,
		messages: make([]chat.ChatMessage, 0),
	}
}

// WithSituation sets the player's description of the situation.
func (b *Builder) WithSituation(situation string) *Builder {
	b.situation = situation
	return b
}

// WithRating sets the content rating.
func (b *Builder) WithRating(rating string) *Builder {
	if rating != "" {
		b.rating = rating
	}
	return b
}

// WithCorrection appends a rejected model reply and the reason it was
// rejected, so the next attempt can fix it.
func (b *Builder) WithCorrection(previous string, reason string) *Builder {
	b.corrections = append(b.corrections, correction{previous: previous, reason: reason})
	return b
}

// Build constructs and returns the final message array for LLM consumption.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if strings.TrimSpace(b.situation) == "" {
		return nil, fmt.Errorf("situation is required")
	}

	// Reset messages
	b.messages = make([]chat.ChatMessage, 0, 2+2*len(b.corrections))

	// 1. System prompt with rating
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: SceneSystemPrompt + "\n\nContent Rating: " + normalizeRating(b.rating) + " (" + GetContentRatingPrompt(b.rating) + ")",
	})

	// 2. Situation
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleUser,
		Content: b.situation,
	})

	// 3. Rejected attempts, oldest first
	for _, c := range b.corrections {
		b.messages = append(b.messages,
			chat.ChatMessage{Role: chat.ChatRoleAgent, Content: c.previous},
			chat.ChatMessage{Role: chat.ChatRoleUser, Content: fmt.Sprintf(CorrectionPrompt, c.reason)},
		)
	}

	return b.messages, nil
}
