package recommend

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSelectionRequired is returned when the metric or the direction is
	// still unselected.
	ErrSelectionRequired = errors.New("choose both a metric and a direction")

	// ErrEmptyQuestion is returned for a blank follow-up question.
	ErrEmptyQuestion = errors.New("question must not be empty")
)

// Prompt builds the recommendation request for a metric and direction.
func Prompt(metric Metric, direction Direction) (string, error) {
	if !metric.Selected() || !direction.Selected() {
		return "", ErrSelectionRequired
	}
	return fmt.Sprintf(
		"A school wants to %s its %s. Provide specific recommendations on how they can achieve this goal while maintaining educational quality.",
		strings.ToLower(direction.String()),
		strings.ToLower(metric.String()),
	), nil
}

// FollowUpPrompt builds a question about an earlier recommendation.
func FollowUpPrompt(recommendation, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	return fmt.Sprintf("Based on these recommendations: %s, answer this question: %s", recommendation, question), nil
}
