package simulation

// Bands are per-month percentile sequences across all paths. Index 0 is
// the principal, index Months is the end of the horizon.
type Bands struct {
	Months int       `json:"months"`
	Paths  int       `json:"paths"`
	Seed   uint64    `json:"seed"`
	Median []float64 `json:"median"`
	P5     []float64 `json:"p5"`
	P95    []float64 `json:"p95"`
}

// FinalMedian returns the median value at the end of the horizon.
func (b *Bands) FinalMedian() float64 {
	return b.Median[len(b.Median)-1]
}

// Verdict is the outcome of comparing a simulation with the deficit.
type Verdict string

const (
	Adequate    Verdict = "adequate"
	LikelyShort Verdict = "likely_short"
)

// Message is the text shown next to the chart.
func (v Verdict) Message() string {
	if v == Adequate {
		return "Investment plan is projected to cover the deficit"
	}
	return "Investment plan is likely to fall short of the deficit"
}

// Assess reports Adequate when the final median reaches the deficit.
func (b *Bands) Assess(deficit float64) Verdict {
	if b.FinalMedian() >= deficit {
		return Adequate
	}
	return LikelyShort
}
