package model

import "math"

// State is the balance state advanced by one step per month.
type State struct {
	Balance     float64 `json:"balance"`
	Contributed float64 `json:"contributed"`
	Income      float64 `json:"income"` // projected monthly passive income
}

// Yield returns the accumulated yield (balance above contributed principal).
func (s State) Yield() float64 {
	return s.Balance - s.Contributed
}

// Sample is one recorded chart point.
type Sample struct {
	Month       int     `json:"month"` // zero-based iteration index
	Contributed float64 `json:"contributed"`
	Yield       float64 `json:"yield"`
	Income      float64 `json:"income"`
}

// Series holds the parallel sample sequences handed to the chart renderer.
type Series struct {
	Months      []int     `json:"months"`
	Contributed []float64 `json:"contributed"`
	Yield       []float64 `json:"yield"`
	Income      []float64 `json:"income"`
}

// Append records one sample at the end of every sequence.
func (s *Series) Append(smp Sample) {
	s.Months = append(s.Months, smp.Month)
	s.Contributed = append(s.Contributed, smp.Contributed)
	s.Yield = append(s.Yield, smp.Yield)
	s.Income = append(s.Income, smp.Income)
}

// Len returns the number of samples.
func (s Series) Len() int {
	return len(s.Months)
}

// At returns the i-th sample.
func (s Series) At(i int) Sample {
	return Sample{
		Month:       s.Months[i],
		Contributed: s.Contributed[i],
		Yield:       s.Yield[i],
		Income:      s.Income[i],
	}
}

// Last returns the final sample, or false when the series is empty.
func (s Series) Last() (Sample, bool) {
	if s.Len() == 0 {
		return Sample{}, false
	}
	return s.At(s.Len() - 1), true
}

// Totals returns contributed+yield per sample, i.e. the balance at each point.
func (s Series) Totals() []float64 {
	out := make([]float64, s.Len())
	for i := range out {
		out[i] = s.Contributed[i] + s.Yield[i]
	}
	return out
}

// Finite reports whether every sampled value is a finite number.
func (s Series) Finite() bool {
	for i := range s.Months {
		if !finite(s.Contributed[i]) || !finite(s.Yield[i]) || !finite(s.Income[i]) {
			return false
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Result is the output contract of a projection run.
type Result struct {
	Mode   Mode   `json:"mode"`
	Params Params `json:"params"`
	Final  State  `json:"final"`

	// Months is the number of monthly steps executed.
	Months int    `json:"months"`
	Series Series `json:"series"`

	// ReachedTarget is set in goal mode once income meets the target.
	ReachedTarget bool `json:"reached_target,omitempty"`

	Benchmark  float64 `json:"benchmark"`
	Difference float64 `json:"difference"`
}

// Years returns the whole years elapsed.
func (r Result) Years() int {
	return r.Months / 12
}

// RemainderMonths returns the months elapsed beyond Years.
func (r Result) RemainderMonths() int {
	return r.Months % 12
}

// Finite reports whether the final state, benchmark and series are all finite.
// Degenerate inputs such as a growth rate below -100% produce NaN.
func (r Result) Finite() bool {
	for _, v := range []float64{r.Final.Balance, r.Final.Contributed, r.Final.Income, r.Benchmark, r.Difference} {
		if !finite(v) {
			return false
		}
	}
	return r.Series.Finite()
}
