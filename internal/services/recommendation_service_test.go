package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "optimedu/internal/errors"
	"optimedu/internal/recommend"
)

func TestRecommendationServiceDisabled(t *testing.T) {
	svc := NewRecommendationService(NewWorkspace(), nil, nil, quietLogger())
	ctx := context.Background()

	assert.False(t, svc.Enabled())

	_, err := svc.Recommend(ctx, recommend.SpendingPerStudent, recommend.Increase)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAdvisorDisabled)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeUnavailable, appErr.Type)

	_, err = svc.Ask(ctx, "why?")
	assert.ErrorIs(t, err, ErrAdvisorDisabled)

	conv := svc.Latest(ctx)
	assert.Nil(t, conv.Recommendation)
	assert.Nil(t, conv.Answer)
}

func TestRecommendationServiceConversation(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return p == "A school wants to decrease its student-teacher ratio. Provide specific recommendations on how they can achieve this goal while maintaining educational quality."
	})).Return("Hire more teachers.", nil).Once()
	gen.On("Generate", mock.Anything, "Based on these recommendations: Hire more teachers., answer this question: How many?").
		Return("Two per school.", nil).Once()

	ws := NewWorkspace()
	svc := NewRecommendationService(ws, recommend.NewAdvisor(gen, quietLogger()), nil, quietLogger())
	ctx := context.Background()
	require.True(t, svc.Enabled())

	_, err := svc.Ask(ctx, "How many?")
	assert.ErrorIs(t, err, recommend.ErrNoRecommendation)

	rec, err := svc.Recommend(ctx, recommend.StudentTeacherRatio, recommend.Decrease)
	require.NoError(t, err)
	assert.Equal(t, "Hire more teachers.", rec.Text)

	ans, err := svc.Ask(ctx, "How many?")
	require.NoError(t, err)
	assert.Equal(t, "Two per school.", ans.Text)
	assert.Equal(t, "How many?", ans.Question)

	conv := svc.Latest(ctx)
	require.NotNil(t, conv.Recommendation)
	require.NotNil(t, conv.Answer)
	assert.Equal(t, rec, *conv.Recommendation)
	assert.Equal(t, ans, *conv.Answer)

	gen.AssertExpectations(t)
}

func TestRecommendationServiceFailureKeepsSlots(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("Cut admin costs.", nil).Once()
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("upstream timeout")).Once()

	svc := NewRecommendationService(NewWorkspace(), recommend.NewAdvisor(gen, quietLogger()), nil, quietLogger())
	ctx := context.Background()

	first, err := svc.Recommend(ctx, recommend.SpendingPerStudent, recommend.Decrease)
	require.NoError(t, err)

	_, err = svc.Recommend(ctx, recommend.SpendingPerStudent, recommend.Increase)
	assert.ErrorIs(t, err, recommend.ErrGeneration)

	conv := svc.Latest(ctx)
	require.NotNil(t, conv.Recommendation)
	assert.Equal(t, first, *conv.Recommendation)
}
