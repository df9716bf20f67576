package regression

import (
	"gonum.org/v1/gonum/stat"
)

// Scaler holds the sample mean and standard deviation of one column.
type Scaler struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// FitScaler computes the sample mean and the n−1 standard deviation of
// values. A column with fewer than two values gets a zero deviation.
func FitScaler(values []float64) Scaler {
	if len(values) == 0 {
		return Scaler{}
	}
	if len(values) == 1 {
		return Scaler{Mean: values[0]}
	}
	mean, std := stat.MeanStdDev(values, nil)
	return Scaler{Mean: mean, Std: std}
}

// Transform returns the Z-score of x. A constant column maps to zero.
func (s Scaler) Transform(x float64) float64 {
	if s.Std == 0 {
		return 0
	}
	return (x - s.Mean) / s.Std
}

// Inverse maps a Z-score back to original units.
func (s Scaler) Inverse(z float64) float64 {
	return z*s.Std + s.Mean
}

// Range is the slider span offered for a predictor: two standard
// deviations either side of the mean, starting at the mean.
type Range struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
}

// Range returns the predictor slider span for the column.
func (s Scaler) Range() Range {
	return Range{
		Min:     s.Mean - 2*s.Std,
		Max:     s.Mean + 2*s.Std,
		Default: s.Mean,
	}
}
