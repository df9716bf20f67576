package errors

import (
	"context"
	"errors"
	"net/http"

	"optimedu/internal/forecast"
	"optimedu/internal/panel"
	"optimedu/internal/planner"
	"optimedu/internal/recommend"
	"optimedu/internal/regression"
	"optimedu/internal/simulation"
)

// Common error types following RFC 7807
const (
	TypeValidation       = "/errors/validation"
	TypeNotFound         = "/errors/not-found"
	TypeRateLimit        = "/errors/rate-limit"
	TypeInternal         = "/errors/internal"
	TypeServiceDown      = "/errors/service-unavailable"
	TypeTimeout          = "/errors/timeout"
	TypeConflict         = "/errors/conflict"
	TypePayloadTooLarge  = "/errors/payload-too-large"
	TypeMethodNotAllowed = "/errors/method-not-allowed"
)

// Domain-specific error types
const (
	TypePanelSchema       = "/errors/panel/schema"
	TypePanelFormat       = "/errors/panel/unsupported-format"
	TypePanelEmpty        = "/errors/panel/empty"
	TypeInsufficientData  = "/errors/forecast/insufficient-data"
	TypeDegenerateReturn  = "/errors/plan/degenerate-return"
	TypeRegressionFailure = "/errors/regression/failed"
	TypeGeneration        = "/errors/advisor/generation-failed"
	TypeNoRecommendation  = "/errors/advisor/no-recommendation"
	TypeUnprocessable     = "/errors/unprocessable"
)

// MapDomainError converts errors raised by the analytics packages into a
// problem document. It returns nil for errors it does not recognise.
func MapDomainError(err error, instance string) *ProblemDetails {
	if err == nil {
		return nil
	}

	var schemaErr *panel.SchemaError
	var predErr *regression.PredictionError
	var unknownCol *panel.UnknownColumnError

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return NewProblemDetails(http.StatusGatewayTimeout, TypeTimeout, "Request Timeout",
			"The request took too long to process and was cancelled", instance)

	case errors.As(err, &schemaErr):
		return NewProblemDetails(http.StatusUnprocessableEntity, TypePanelSchema, "Panel Schema Error",
			err.Error(), instance).WithExtension("column", schemaErr.Column)
	case errors.Is(err, panel.ErrSchema):
		return NewProblemDetails(http.StatusUnprocessableEntity, TypePanelSchema, "Panel Schema Error",
			err.Error(), instance)
	case errors.Is(err, panel.ErrUnsupportedFormat):
		return NewProblemDetails(http.StatusUnsupportedMediaType, TypePanelFormat, "Unsupported Panel Format",
			err.Error(), instance)
	case errors.Is(err, panel.ErrEmptyInput):
		return NewProblemDetails(http.StatusUnprocessableEntity, TypePanelEmpty, "Empty Panel",
			err.Error(), instance)
	case errors.As(err, &unknownCol):
		return NewProblemDetails(http.StatusBadRequest, TypeValidation, "Unknown Column",
			err.Error(), instance).WithExtension("column", unknownCol.Name)

	case errors.Is(err, forecast.ErrInsufficientData):
		return NewProblemDetails(http.StatusUnprocessableEntity, TypeInsufficientData, "Insufficient Data",
			err.Error(), instance)
	case errors.Is(err, forecast.ErrDuplicatePeriod), errors.Is(err, forecast.ErrInvalidValue):
		return NewProblemDetails(http.StatusBadRequest, TypeValidation, "Invalid Enrollment Series",
			err.Error(), instance)

	case errors.Is(err, planner.ErrDegenerateReturn):
		return NewProblemDetails(http.StatusUnprocessableEntity, TypeDegenerateReturn, "Degenerate Expected Return",
			err.Error(), instance)
	case errors.Is(err, planner.ErrUnknownAsset):
		return NewProblemDetails(http.StatusBadRequest, TypeValidation, "Invalid Plan Input",
			err.Error(), instance)

	case errors.Is(err, simulation.ErrInvalidMonths), errors.Is(err, simulation.ErrInvalidPaths),
		errors.Is(err, simulation.ErrInvalidInput):
		return NewProblemDetails(http.StatusBadRequest, TypeValidation, "Invalid Simulation Parameters",
			err.Error(), instance)

	case errors.Is(err, regression.ErrUnknownOutcome):
		return NewProblemDetails(http.StatusBadRequest, TypeValidation, "Unknown Outcome",
			err.Error(), instance)
	case errors.As(err, &predErr):
		return NewProblemDetails(http.StatusUnprocessableEntity, TypeRegressionFailure, "Regression Failed",
			err.Error(), instance).WithExtension("outcome", predErr.Outcome.String())
	case errors.Is(err, regression.ErrRankDeficient), errors.Is(err, regression.ErrTooFewObservations),
		errors.Is(err, regression.ErrNumerical):
		return NewProblemDetails(http.StatusUnprocessableEntity, TypeRegressionFailure, "Regression Failed",
			err.Error(), instance)

	case errors.Is(err, recommend.ErrSelectionRequired), errors.Is(err, recommend.ErrUnknownChoice),
		errors.Is(err, recommend.ErrEmptyQuestion):
		return NewProblemDetails(http.StatusBadRequest, TypeValidation, "Invalid Selection",
			err.Error(), instance)
	case errors.Is(err, recommend.ErrNoRecommendation):
		return NewProblemDetails(http.StatusConflict, TypeNoRecommendation, "No Recommendation",
			err.Error(), instance)
	case errors.Is(err, recommend.ErrGeneration), errors.Is(err, recommend.ErrEmptyResponse):
		return NewProblemDetails(http.StatusBadGateway, TypeGeneration, "Recommendation Failed",
			err.Error(), instance)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErrorToProblem(appErr, instance)
	}

	return nil
}

func appErrorToProblem(appErr *AppError, instance string) *ProblemDetails {
	status := appErr.Type.StatusCode()

	problemType := TypeInternal
	switch appErr.Type {
	case ErrTypeValidation:
		problemType = TypeValidation
	case ErrTypeNotFound:
		problemType = TypeNotFound
	case ErrTypeConflict:
		problemType = TypeConflict
	case ErrTypeUnavailable:
		problemType = TypeServiceDown
	case ErrTypeUpstream:
		problemType = TypeGeneration
	case ErrTypeParsing, ErrTypeComputation:
		problemType = TypeUnprocessable
	}

	detail := appErr.Message
	if status >= http.StatusInternalServerError && appErr.Type != ErrTypeUpstream && appErr.Type != ErrTypeUnavailable {
		detail = "An unexpected error occurred while processing your request"
	}

	problem := NewProblemDetails(status, problemType, http.StatusText(status), detail, instance).
		WithExtension("error_code", string(appErr.Type))
	for k, v := range appErr.Context {
		problem.WithExtension(k, v)
	}
	return problem
}
