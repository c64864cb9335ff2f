package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jwebster45206/scene-engine/internal/telemetry"
	"github.com/jwebster45206/scene-engine/pkg/chat"
	"github.com/jwebster45206/scene-engine/pkg/prompts"
	"github.com/jwebster45206/scene-engine/pkg/scene"
	"github.com/jwebster45206/scene-engine/pkg/textfilter"
)

var (
	// ErrGenerationFailed wraps errors from the LLM provider itself.
	ErrGenerationFailed = errors.New("scene generation failed")
	// ErrMalformedContent wraps the last rejection once every attempt has
	// produced an unusable scene.
	ErrMalformedContent = errors.New("malformed generated content")
)

const DefaultGenerationAttempts = 3

// SceneGenerator asks an LLM for a scene and validates the reply. Rejected
// replies are sent back with the rejection reason until attempts run out.
type SceneGenerator struct {
	llm      LLMService
	logger   *slog.Logger
	attempts int
	rating   string
	filter   *textfilter.Filter
}

func NewSceneGenerator(llm LLMService, attempts int, rating string, logger *slog.Logger) *SceneGenerator {
	if attempts < 1 {
		attempts = DefaultGenerationAttempts
	}
	g := &SceneGenerator{
		llm:      llm,
		logger:   logger,
		attempts: attempts,
		rating:   rating,
	}
	if textfilter.ShouldFilter(rating) {
		g.filter = textfilter.NewFilter()
	}
	return g
}

// Generate returns a validated scene for req.Prompt.
func (g *SceneGenerator) Generate(ctx context.Context, req chat.SceneRequest) (*scene.Scene, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "scene.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", req.Model),
		attribute.Int("scene.max_attempts", g.attempts),
	)

	builder := prompts.New().WithSituation(req.Prompt).WithRating(g.rating)
	opts := chat.ChatOptions{Model: req.Model, Effort: req.Effort}

	var lastErr error
	for attempt := 1; attempt <= g.attempts; attempt++ {
		messages, err := builder.Build()
		if err != nil {
			span.SetStatus(codes.Error, "invalid request")
			return nil, fmt.Errorf("failed to build prompt: %w", err)
		}

		start := time.Now()
		resp, err := g.llm.Chat(ctx, messages, opts)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "llm request failed")
			g.logger.Error("LLM request failed", "attempt", attempt, "error", err)
			return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
		}

		s, err := g.parse(resp.Message)
		if err == nil {
			span.SetAttributes(
				attribute.String("scene.id", s.ID()),
				attribute.Int("scene.attempts", attempt),
			)
			g.logger.Info("Scene generated",
				"scene_id", s.ID(),
				"attempt", attempt,
				"states", len(s.States()),
				"duration_ms", time.Since(start).Milliseconds())
			return s, nil
		}

		lastErr = err
		span.AddEvent("scene.rejected", traceAttrs(attempt, err)...)
		g.logger.Warn("Generated scene rejected", "attempt", attempt, "error", err)
		builder.WithCorrection(resp.Message, err.Error())
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "scene rejected")
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrMalformedContent, g.attempts, lastErr)
}

func traceAttrs(attempt int, err error) []trace.EventOption {
	return []trace.EventOption{trace.WithAttributes(
		attribute.Int("attempt", attempt),
		attribute.String("error", err.Error()),
	)}
}

func (g *SceneGenerator) parse(content string) (*scene.Scene, error) {
	p, err := scene.DecodeJSON([]byte(extractJSON(content)), false)
	if err != nil {
		return nil, err
	}
	if n := g.filterPayload(&p); n > 0 {
		g.logger.Debug("Filtered generated text", "rating", g.rating, "texts", n)
	}
	return scene.Validate(p)
}

// extractJSON strips markdown code fences and any prose around the outermost
// JSON object.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		if nl := strings.IndexByte(content, '\n'); nl >= 0 {
			content = content[nl+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return strings.TrimSpace(content)
}

// filterPayload cleans every display text in place and returns how many
// texts were changed.
func (g *SceneGenerator) filterPayload(p *scene.Payload) int {
	if g.filter == nil {
		return 0
	}
	changed := 0
	clean := func(text string) string {
		if !g.filter.ContainsProfanity(text) {
			return text
		}
		changed++
		return g.filter.FilterText(text)
	}

	for i := range p.States {
		st := &p.States[i]
		st.Text = clean(st.Text)
		for j := range st.Choices {
			if o := st.Choices[j].OverrideText; o != nil {
				filtered := clean(*o)
				st.Choices[j].OverrideText = &filtered
			}
		}
	}
	for id, c := range p.Choices {
		c.Text = clean(c.Text)
		p.Choices[id] = c
	}
	return changed
}
