package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jwebster45206/scene-engine/pkg/chat"
)

const (
	openAIBaseURL = "https://api.openai.com/v1"
)

// OpenAIService implements LLMService on the OpenAI chat completions API.
type OpenAIService struct {
	apiKey     string
	modelName  string
	effort     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ LLMService = (*OpenAIService)(nil)

type OpenAIResponseFormat struct {
	Type string `json:"type"` // "json_object"
}

type OpenAIChatRequest struct {
	Model           string                `json:"model"`
	Messages        []chat.ChatMessage    `json:"messages"`
	ReasoningEffort string                `json:"reasoning_effort,omitempty"` // "minimal", "low", "medium", "high"
	ResponseFormat  *OpenAIResponseFormat `json:"response_format,omitempty"`
}

type OpenAIChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
		Refusal string `json:"refusal,omitempty"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type OpenAIChatResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []OpenAIChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// NewOpenAIService creates a service for modelName. effort is the default
// reasoning effort and may be empty.
func NewOpenAIService(apiKey string, modelName string, effort string, logger *slog.Logger) *OpenAIService {
	return &OpenAIService{
		apiKey:    apiKey,
		modelName: modelName,
		effort:    effort,
		baseURL:   openAIBaseURL,
		httpClient: &http.Client{
			Timeout: 90 * time.Second, // reasoning models can be slow
		},
		logger: logger,
	}
}

// WithBaseURL points the service at another endpoint, e.g. a test server.
func (c *OpenAIService) WithBaseURL(baseURL string) *OpenAIService {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// InitModel initializes the model (OpenAI doesn't require explicit model initialization)
func (c *OpenAIService) InitModel(ctx context.Context, modelName string) error {
	return nil
}

// Chat requests a JSON object response.
func (c *OpenAIService) Chat(ctx context.Context, messages []chat.ChatMessage, opts chat.ChatOptions) (*chat.ChatResponse, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	request := OpenAIChatRequest{
		Model:           c.modelName,
		Messages:        messages,
		ReasoningEffort: c.effort,
		ResponseFormat:  &OpenAIResponseFormat{Type: "json_object"},
	}
	if opts.Model != "" {
		request.Model = opts.Model
	}
	if opts.Effort != "" {
		request.ReasoningEffort = opts.Effort
	}

	reqBody, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var chatResp OpenAIChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if chatResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", chatResp.Error.Message)
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := chatResp.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, fmt.Errorf("model refused: %s", choice.Message.Refusal)
	}
	if choice.Message.Content == "" {
		return nil, fmt.Errorf("empty response content (finish_reason=%s)", choice.FinishReason)
	}

	c.logger.Debug("OpenAI completion",
		"model", request.Model,
		"reasoning_effort", request.ReasoningEffort,
		"total_tokens", chatResp.Usage.TotalTokens,
		"duration_ms", time.Since(start).Milliseconds())

	return &chat.ChatResponse{Message: choice.Message.Content}, nil
}
