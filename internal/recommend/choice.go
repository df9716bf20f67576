package recommend

import (
	"errors"
	"fmt"
	"strings"
)

// Placeholder is the label of the empty selection.
const Placeholder = "Choose an option"

// ErrUnknownChoice is returned when a label matches no option.
var ErrUnknownChoice = errors.New("unknown option")

// Metric is the budget area a school wants to change.
type Metric int

const (
	MetricUnselected Metric = iota
	SpendingPerStudent
	StudentTeacherRatio
	PerPupilInstructionalSpending
)

var metricLabels = map[Metric]string{
	MetricUnselected:              Placeholder,
	SpendingPerStudent:            "Spending Per Student",
	StudentTeacherRatio:           "Student-Teacher Ratio",
	PerPupilInstructionalSpending: "Per-Pupil Instructional Spending",
}

// Metrics lists the selectable metrics in display order.
var Metrics = []Metric{SpendingPerStudent, StudentTeacherRatio, PerPupilInstructionalSpending}

func (m Metric) String() string {
	if label, ok := metricLabels[m]; ok {
		return label
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

// Selected reports whether m is a real choice.
func (m Metric) Selected() bool {
	_, ok := metricLabels[m]
	return ok && m != MetricUnselected
}

func (m Metric) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Metric) UnmarshalText(text []byte) error {
	parsed, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMetric maps a label to a Metric. The placeholder and the empty
// string map to MetricUnselected.
func ParseMetric(label string) (Metric, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return MetricUnselected, nil
	}
	for m, l := range metricLabels {
		if strings.EqualFold(l, label) {
			return m, nil
		}
	}
	return MetricUnselected, fmt.Errorf("%w: metric %q", ErrUnknownChoice, label)
}

// Direction is whether the metric should go up or down.
type Direction int

const (
	DirectionUnselected Direction = iota
	Increase
	Decrease
)

var directionLabels = map[Direction]string{
	DirectionUnselected: Placeholder,
	Increase:            "Increase",
	Decrease:            "Decrease",
}

// Directions lists the selectable directions in display order.
var Directions = []Direction{Increase, Decrease}

func (d Direction) String() string {
	if label, ok := directionLabels[d]; ok {
		return label
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Selected reports whether d is a real choice.
func (d Direction) Selected() bool {
	return d == Increase || d == Decrease
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection maps a label to a Direction. The placeholder and the
// empty string map to DirectionUnselected.
func ParseDirection(label string) (Direction, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return DirectionUnselected, nil
	}
	for d, l := range directionLabels {
		if strings.EqualFold(l, label) {
			return d, nil
		}
	}
	return DirectionUnselected, fmt.Errorf("%w: direction %q", ErrUnknownChoice, label)
}
