package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Error(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	assert.Equal(t, "Invalid request format", err.Error())

	var target *APIError
	wrapped := errors.Join(errors.New("outer"), err)
	require.True(t, errors.As(wrapped, &target))
	assert.Equal(t, http.StatusBadRequest, target.StatusCode)
}

func TestHelpers(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		status int
		code   string
	}{
		{"invalid request", InvalidRequestWithError(errors.New("bad json")), http.StatusBadRequest, "INVALID_REQUEST"},
		{"field validation", ErrValidation("goal_per_student", "must be positive"), http.StatusBadRequest, "VALIDATION_FAILED"},
		{"many fields", NewValidationErrors([]ValidationError{{Field: "a", Message: "b"}}), http.StatusBadRequest, "VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
			assert.Equal(t, tt.code, tt.err.ErrorCode)
			assert.NotNil(t, tt.err.Details)
		})
	}
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	problem := NewProblemDetails(http.StatusConflict, TypeConflict, "Conflict", "no panel loaded", "/api/forecast").
		WithExtension("trace_id", "abc")

	data, err := json.Marshal(problem)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, TypeConflict, got["type"])
	assert.Equal(t, float64(http.StatusConflict), got["status"])
	assert.Equal(t, "no panel loaded", got["detail"])
	assert.Equal(t, "/api/forecast", got["instance"])
	assert.Equal(t, "abc", got["trace_id"])

	// extensions cannot shadow the standard members
	problem.WithExtension("status", 200)
	data, err = json.Marshal(problem)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, float64(http.StatusConflict), got["status"])
}

func TestAppError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewConfigError("cannot read config", cause).WithContext("path", "/etc/optimedu.yaml")

	assert.Equal(t, "[CONFIG] cannot read config: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "/etc/optimedu.yaml", err.Context["path"])

	assert.Equal(t, "[NOT_FOUND] entity not found", NewNotFoundError("entity", nil).Error())

	var nilCtx AppError
	nilCtx.WithContext("k", 1)
	assert.Equal(t, 1, nilCtx.Context["k"])
}

func TestErrorTypeStatusCode(t *testing.T) {
	tests := map[ErrorType]int{
		ErrTypeValidation:  http.StatusBadRequest,
		ErrTypeNotFound:    http.StatusNotFound,
		ErrTypeConflict:    http.StatusConflict,
		ErrTypeParsing:     http.StatusUnprocessableEntity,
		ErrTypeComputation: http.StatusUnprocessableEntity,
		ErrTypeUpstream:    http.StatusBadGateway,
		ErrTypeUnavailable: http.StatusServiceUnavailable,
		ErrTypeConfig:      http.StatusInternalServerError,
	}
	for typ, want := range tests {
		assert.Equal(t, want, typ.StatusCode(), string(typ))
	}
}
