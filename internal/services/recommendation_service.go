package services

import (
	"context"
	"log/slog"
	"time"

	apperrors "optimedu/internal/errors"
	"optimedu/internal/infrastructure"
	"optimedu/internal/recommend"
)

// Conversation is the latest recommendation and follow-up answer.
type Conversation struct {
	Recommendation *recommend.Exchange `json:"recommendation,omitempty"`
	Answer         *recommend.Exchange `json:"answer,omitempty"`
}

// RecommendationService drives the advisor over the workspace session.
type RecommendationService struct {
	ws      *Workspace
	advisor *recommend.Advisor
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewRecommendationService creates a recommendation service. advisor may
// be nil when no language model is configured; requests then fail with
// ErrAdvisorDisabled.
func NewRecommendationService(ws *Workspace, advisor *recommend.Advisor, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *RecommendationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecommendationService{
		ws:      ws,
		advisor: advisor,
		metrics: metrics,
		logger:  logger.With(slog.String("service", "recommendation")),
	}
}

// Enabled reports whether a language model is configured.
func (s *RecommendationService) Enabled() bool {
	return s.advisor != nil
}

// Recommend generates recommendations for changing metric in direction.
func (s *RecommendationService) Recommend(ctx context.Context, metric recommend.Metric, direction recommend.Direction) (recommend.Exchange, error) {
	if err := s.available(); err != nil {
		return recommend.Exchange{}, err
	}

	start := time.Now()
	ex, err := s.advisor.Recommend(ctx, s.ws.Advisor(), metric, direction)
	infrastructure.RecordOperation(ctx, s.metrics, "recommend", time.Since(start), err)
	return ex, err
}

// Ask answers a follow-up question about the latest recommendation.
func (s *RecommendationService) Ask(ctx context.Context, question string) (recommend.Exchange, error) {
	if err := s.available(); err != nil {
		return recommend.Exchange{}, err
	}

	start := time.Now()
	ex, err := s.advisor.Ask(ctx, s.ws.Advisor(), question)
	infrastructure.RecordOperation(ctx, s.metrics, "ask", time.Since(start), err)
	return ex, err
}

// Latest returns the stored recommendation and answer. Both are empty
// before the first request.
func (s *RecommendationService) Latest(ctx context.Context) Conversation {
	var conv Conversation
	session := s.ws.Advisor()
	if rec, ok := session.Recommendation.Load(); ok {
		conv.Recommendation = &rec
	}
	if ans, ok := session.Answer.Load(); ok {
		conv.Answer = &ans
	}
	return conv
}

func (s *RecommendationService) available() error {
	if s.advisor == nil {
		return apperrors.NewUnavailableError("language model is not configured", ErrAdvisorDisabled)
	}
	return nil
}
