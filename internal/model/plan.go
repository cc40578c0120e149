// Package model defines the domain types shared by the projection engine and its consumers.
package model

// Mode selects which question a projection answers.
type Mode string

const (
	// ModeGoal steps until the monthly passive income reaches the target.
	ModeGoal Mode = "goal"
	// ModeHorizon steps a fixed number of months.
	ModeHorizon Mode = "horizon"
)

// DefaultSampleInterval is the number of months between chart samples.
const DefaultSampleInterval = 12

// Params holds the immutable inputs of one projection run.
// Rates are decimals: 0.10 means 10% per year.
type Params struct {
	InitialBalance      float64 `json:"initial_balance"`
	MonthlyContribution float64 `json:"monthly_contribution"`
	AnnualGrowthRate    float64 `json:"annual_growth_rate"`
	AnnualYieldRate     float64 `json:"annual_yield_rate"`
	TargetIncome        float64 `json:"target_income,omitempty"`
	DurationMonths      int     `json:"duration_months,omitempty"`
	SampleInterval      int     `json:"sample_interval,omitempty"`
	BenchmarkRate       float64 `json:"benchmark_rate"`

	// MaxMonths caps the goal-seek loop. Zero means the engine default.
	MaxMonths int `json:"max_months,omitempty"`
}

// Mode reports horizon mode when a duration was supplied, goal mode otherwise.
func (p Params) Mode() Mode {
	if p.DurationMonths > 0 {
		return ModeHorizon
	}
	return ModeGoal
}

// Interval returns the sampling interval, falling back to DefaultSampleInterval
// for non-positive values.
func (p Params) Interval() int {
	if p.SampleInterval < 1 {
		return DefaultSampleInterval
	}
	return p.SampleInterval
}

// WithDuration returns a copy of p running in horizon mode for years and months.
func (p Params) WithDuration(years, months int) Params {
	p.DurationMonths = years*12 + months
	return p
}

// WithTarget returns a copy of p running in goal mode for the given monthly income.
func (p Params) WithTarget(income float64) Params {
	p.TargetIncome = income
	p.DurationMonths = 0
	return p
}
