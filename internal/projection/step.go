// Package projection implements the monthly compounding engine: the step
// function, the goal-seek and horizon loops, and the benchmark comparator.
// Everything here is pure; callers own presentation and persistence.
package projection

import (
	"math"

	"github.com/theirongolddev/snowball/internal/model"
)

// MonthlyGrowth converts an annual rate into the equivalent monthly multiplier.
func MonthlyGrowth(annual float64) float64 {
	return math.Pow(1+annual, 1.0/12)
}

// Step advances s by one month. The previous month's projected income is
// reinvested together with the contribution before compounding, and the next
// income estimate is derived from the new balance.
func Step(s model.State, contribution, monthlyGrowth, annualYield float64) model.State {
	balance := (s.Balance + contribution + s.Income) * monthlyGrowth
	return model.State{
		Balance:     balance,
		Contributed: s.Contributed + contribution,
		Income:      balance * annualYield / 12,
	}
}

// initialState is the month-0 state: the whole initial balance counts as principal.
func initialState(p model.Params) model.State {
	return model.State{
		Balance:     p.InitialBalance,
		Contributed: p.InitialBalance,
	}
}
