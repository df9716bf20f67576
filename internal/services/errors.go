package services

import "errors"

var (
	// Panel state errors
	ErrNoPanel        = errors.New("no panel loaded")
	ErrEntityNotFound = errors.New("entity not found")
	ErrYearNotFound   = errors.New("year not found for entity")

	// Forecast input errors
	ErrNoSeries     = errors.New("either an enrollment series or an entity is required")
	ErrNoEnrollment = errors.New("entity has no enrollment values")

	// Advisor errors
	ErrAdvisorDisabled = errors.New("recommendation advisor is not configured")
)
