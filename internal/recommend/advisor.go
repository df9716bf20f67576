package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

var (
	// ErrNoRecommendation is returned by Ask before any recommendation
	// has been generated in the session.
	ErrNoRecommendation = errors.New("generate a recommendation before asking a question")

	// ErrGeneration wraps failures of the language model call.
	ErrGeneration = errors.New("language model request failed")

	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("language model returned an empty response")
)

// Generator turns a prompt into free-form text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ChatGenerator sends each prompt as a single system message to a chat
// model.
type ChatGenerator struct {
	model model.BaseChatModel
}

// NewChatGenerator wraps an existing chat model.
func NewChatGenerator(cm model.BaseChatModel) *ChatGenerator {
	return &ChatGenerator{model: cm}
}

// OpenAIConfig configures an OpenAI compatible endpoint.
type OpenAIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewOpenAIGenerator builds a ChatGenerator backed by an OpenAI compatible
// chat completion endpoint.
func NewOpenAIGenerator(ctx context.Context, cfg OpenAIConfig) (*ChatGenerator, error) {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return NewChatGenerator(cm), nil
}

// Generate implements Generator.
func (g *ChatGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.Generate(ctx, []*schema.Message{
		{Role: schema.System, Content: prompt},
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Advisor requests recommendations and follow-up answers and records them
// in a session.
type Advisor struct {
	gen    Generator
	logger *slog.Logger
}

// NewAdvisor creates an advisor using gen for every request.
func NewAdvisor(gen Generator, logger *slog.Logger) *Advisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Advisor{gen: gen, logger: logger}
}

// Recommend asks for recommendations on changing metric in direction and
// stores the result as the session's recommendation. A failed request
// leaves the session untouched.
func (a *Advisor) Recommend(ctx context.Context, session *Session, metric Metric, direction Direction) (Exchange, error) {
	prompt, err := Prompt(metric, direction)
	if err != nil {
		return Exchange{}, err
	}

	text, err := a.generate(ctx, prompt)
	if err != nil {
		return Exchange{}, err
	}

	ex := Exchange{Metric: metric, Direction: direction, Prompt: prompt, Text: text}
	session.Recommendation.Store(ex)

	a.logger.InfoContext(ctx, "recommendation generated",
		"metric", metric.String(),
		"direction", direction.String(),
		"chars", len(text),
	)
	return ex, nil
}

// Ask answers a question about the session's current recommendation and
// stores the answer.
func (a *Advisor) Ask(ctx context.Context, session *Session, question string) (Exchange, error) {
	rec, ok := session.Recommendation.Load()
	if !ok {
		return Exchange{}, ErrNoRecommendation
	}

	prompt, err := FollowUpPrompt(rec.Text, question)
	if err != nil {
		return Exchange{}, err
	}

	text, err := a.generate(ctx, prompt)
	if err != nil {
		return Exchange{}, err
	}

	ex := Exchange{
		Metric:    rec.Metric,
		Direction: rec.Direction,
		Question:  strings.TrimSpace(question),
		Prompt:    prompt,
		Text:      text,
	}
	session.Answer.Store(ex)

	a.logger.InfoContext(ctx, "follow-up answered", "chars", len(text))
	return ex, nil
}

func (a *Advisor) generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		a.logger.ErrorContext(ctx, "language model request failed",
			"error", err,
			"duration", time.Since(start),
		)
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
