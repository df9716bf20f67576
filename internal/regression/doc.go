// Package regression relates school spending inputs to outcome metrics.
//
// Every numeric column is Z-score standardized once with its sample mean
// and sample standard deviation. One ordinary least squares model with an
// intercept is then fitted per outcome against the standardized
// predictors. The stored (mean, std) pairs map predictions and plot axes
// back to original units.
//
// Fits are isolated: a rank-deficient design for one outcome is recorded
// as a PredictionError for that outcome and the others still fit.
package regression
