// Package forecast projects school enrollment one period ahead.
//
// The model is Holt's linear method: exponential smoothing with an additive
// trend and no seasonal component. Five yearly observations are far too few
// for a seasonal decomposition, so only level and trend are tracked.
//
// Smoothing weights and initial state are estimated by minimizing the
// in-sample one-step squared error with a Nelder-Mead search seeded from a
// fixed grid. The procedure uses no randomness, so a series always produces
// the same forecast.
package forecast
