package projection

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/snowball/internal/model"
)

// DefaultMaxMonths bounds the goal-seek loop when Params.MaxMonths is unset.
const DefaultMaxMonths = 200 * 12

// ErrTargetUnreachable is returned when goal seeking hits its month cap.
var ErrTargetUnreachable = errors.New("target income not reached")

// sampler records a sample every interval months and, on finish, a terminal
// sample unless the last one already carries the final contributed total.
type sampler struct {
	interval        int
	series          model.Series
	sampled         bool
	lastContributed float64
}

func newSampler(interval int) *sampler {
	if interval < 1 {
		interval = model.DefaultSampleInterval
	}
	return &sampler{interval: interval}
}

func (s *sampler) observe(month int, st model.State) {
	if month%s.interval == 0 {
		s.record(month, st)
	}
}

func (s *sampler) record(month int, st model.State) {
	s.series.Append(model.Sample{
		Month:       month,
		Contributed: st.Contributed,
		Yield:       st.Yield(),
		Income:      st.Income,
	})
	s.sampled = true
	s.lastContributed = st.Contributed
}

// finish appends the terminal state when nothing was sampled yet or the last
// sample's contributed total differs from the final one. With no contribution
// the principal never moves, so no terminal sample is added.
func (s *sampler) finish(month int, st model.State) model.Series {
	if !s.sampled || s.lastContributed != st.Contributed {
		s.record(month, st)
	}
	return s.series
}

// GoalSeek steps until the projected monthly income meets p.TargetIncome,
// bounded by p.MaxMonths (or DefaultMaxMonths). When the cap is hit the
// result is returned with ReachedTarget unset.
func GoalSeek(p model.Params) model.Result {
	res, _ := GoalSeekWithLimit(p, p.MaxMonths)
	return res
}

// GoalSeekWithLimit is GoalSeek with an explicit month cap. It returns the
// state reached so far together with ErrTargetUnreachable when the cap is hit.
//
// The first month always runs: there is no income estimate before it, so a
// non-positive target terminates after exactly one step (terminal month 0).
func GoalSeekWithLimit(p model.Params, maxMonths int) (model.Result, error) {
	if maxMonths < 1 {
		maxMonths = DefaultMaxMonths
	}

	growth := MonthlyGrowth(p.AnnualGrowthRate)
	smp := newSampler(p.Interval())
	st := initialState(p)

	months := 0
	reached := false
	for months < maxMonths {
		st = Step(st, p.MonthlyContribution, growth, p.AnnualYieldRate)
		smp.observe(months, st)
		months++
		if st.Income >= p.TargetIncome {
			reached = true
			break
		}
	}

	res := model.Result{
		Mode:          model.ModeGoal,
		Params:        p,
		Final:         st,
		Months:        months,
		Series:        smp.finish(months-1, st),
		ReachedTarget: reached,
	}
	if !reached {
		return res, fmt.Errorf("%w within %d months (income %.2f, target %.2f)",
			ErrTargetUnreachable, months, st.Income, p.TargetIncome)
	}
	return res, nil
}

// Horizon steps exactly p.DurationMonths times. A non-positive duration runs
// no steps and yields a single month-0 sample of the initial state.
func Horizon(p model.Params) model.Result {
	growth := MonthlyGrowth(p.AnnualGrowthRate)
	smp := newSampler(p.Interval())
	st := initialState(p)

	for i := 0; i < p.DurationMonths; i++ {
		st = Step(st, p.MonthlyContribution, growth, p.AnnualYieldRate)
		smp.observe(i, st)
	}

	months := max(p.DurationMonths, 0)
	return model.Result{
		Mode:   model.ModeHorizon,
		Params: p,
		Final:  st,
		Months: months,
		Series: smp.finish(max(months-1, 0), st),
	}
}
