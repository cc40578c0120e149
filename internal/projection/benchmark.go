package projection

import "github.com/theirongolddev/snowball/internal/model"

// Benchmark returns the balance a fixed-rate investment reaches over years and
// months with the same initial balance and monthly contribution.
//
// The initial balance grows for one month up front, then each further month
// adds the contribution before compounding. The loop therefore runs
// years*12+months-1 times and the first month's contribution is never
// invested; a zero-length horizon still grows the initial balance once.
func Benchmark(initial, contribution float64, years, months int, annualRate float64) float64 {
	m := MonthlyGrowth(annualRate)
	balance := initial * m
	for t := years*12 + months; t > 1; t-- {
		balance = (balance + contribution) * m
	}
	return balance
}

// Run executes the projection selected by p.Mode and compares the outcome
// against the benchmark rate over the elapsed time. In goal mode the returned
// error wraps ErrTargetUnreachable when the month cap was hit; the partial
// result is still filled in.
func Run(p model.Params) (model.Result, error) {
	var (
		res model.Result
		err error
	)
	switch p.Mode() {
	case model.ModeHorizon:
		res = Horizon(p)
	default:
		res, err = GoalSeekWithLimit(p, p.MaxMonths)
	}

	res.Benchmark = Benchmark(p.InitialBalance, p.MonthlyContribution,
		res.Years(), res.RemainderMonths(), p.BenchmarkRate)
	res.Difference = res.Final.Balance - res.Benchmark
	return res, err
}
