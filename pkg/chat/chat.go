package chat

import (
	"fmt"
	"strings"
)

// SceneRequest asks the API to generate a new scene from a prompt, or to
// load a named fixture scene instead.
type SceneRequest struct {
	Prompt  string `json:"prompt,omitempty"`
	Model   string `json:"model,omitempty"`  // overrides the configured model
	Effort  string `json:"effort,omitempty"` // reasoning effort hint, provider specific
	Fixture string `json:"fixture,omitempty"`
}

const (
	ChatRoleUser   = "user"
	ChatRoleAgent  = "assistant"
	ChatRoleSystem = "system"
)

// ChatMessage is a single message sent to or received from an LLM provider.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatResponse is the text an LLM returned.
type ChatResponse struct {
	Message string `json:"message,omitempty"`
}

// ChatOptions tune a single completion.
type ChatOptions struct {
	Model  string
	Effort string
}

func (r *SceneRequest) Validate() error {
	prompt := strings.TrimSpace(r.Prompt)
	fixture := strings.TrimSpace(r.Fixture)
	switch {
	case prompt == "" && fixture == "":
		return fmt.Errorf("prompt or fixture is required")
	case prompt != "" && fixture != "":
		return fmt.Errorf("prompt and fixture are mutually exclusive")
	case fixture != "" && (strings.Contains(fixture, "..") || strings.ContainsAny(fixture, `/\`)):
		return fmt.Errorf("invalid fixture name")
	}
	return nil
}
