package regression

import (
	"errors"
	"fmt"

	"optimedu/internal/panel"
)

var (
	// ErrRankDeficient is returned when the design matrix does not have
	// full column rank, for example when a predictor is constant.
	ErrRankDeficient = errors.New("design matrix is rank deficient")

	// ErrTooFewObservations is returned when fewer complete rows than
	// coefficients are available.
	ErrTooFewObservations = errors.New("too few complete observations")

	// ErrNumerical is returned when a fit or prediction produces a
	// non-finite value.
	ErrNumerical = errors.New("numerical failure")

	// ErrUnknownOutcome is returned when no model was attempted for an
	// outcome.
	ErrUnknownOutcome = errors.New("outcome was not modelled")
)

// PredictionError isolates a fitting or prediction failure to a single
// outcome.
type PredictionError struct {
	Outcome panel.Column
	Err     error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Outcome.Label(), e.Err)
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}
