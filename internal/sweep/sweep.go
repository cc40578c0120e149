// Package sweep runs a projection across a range of values for one parameter.
package sweep

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/projection"
)

// Field names the parameter a sweep varies.
type Field string

const (
	FieldContribution Field = "contribution"
	FieldTarget       Field = "target"
	FieldGrowth       Field = "growth"
	FieldYield        Field = "yield"
	FieldInitial      Field = "initial"
)

// Fields lists the sweepable parameters in display order.
var Fields = []Field{FieldContribution, FieldTarget, FieldGrowth, FieldYield, FieldInitial}

// ErrBadRange is returned for a range that cannot be expanded.
var ErrBadRange = errors.New("invalid sweep range")

// maxPoints bounds how many projections one sweep may run.
const maxPoints = 1000

// Range is an inclusive from:to:step sequence.
type Range struct {
	From, To, Step float64
}

// ParseRange parses "from:to:step". The step may be omitted for a single value.
func ParseRange(s string) (Range, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 1 || len(parts) > 3 {
		return Range{}, fmt.Errorf("%w: %q", ErrBadRange, s)
	}

	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q: %w", ErrBadRange, s, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Range{}, fmt.Errorf("%w: %q is not finite", ErrBadRange, p)
		}
		vals[i] = v
	}

	switch len(vals) {
	case 1:
		return Range{From: vals[0], To: vals[0], Step: 1}, nil
	case 2:
		return Range{}, fmt.Errorf("%w: %q needs a step", ErrBadRange, s)
	}
	return Range{From: vals[0], To: vals[1], Step: vals[2]}, nil
}

// Values expands r into its points.
func (r Range) Values() ([]float64, error) {
	// negated comparisons so NaN fields fail too
	if !(r.Step > 0) || !(r.To >= r.From) {
		return nil, fmt.Errorf("%w: from %g to %g step %g", ErrBadRange, r.From, r.To, r.Step)
	}
	count := math.Floor((r.To-r.From)/r.Step+1e-9) + 1
	if !(count <= maxPoints) {
		return nil, fmt.Errorf("%w: %g points exceeds %d", ErrBadRange, count, maxPoints)
	}
	n := int(count)
	out := make([]float64, n)
	for i := range out {
		out[i] = r.From + float64(i)*r.Step
	}
	return out, nil
}

// Apply returns a copy of p with field set to v.
func Apply(p model.Params, field Field, v float64) (model.Params, error) {
	switch field {
	case FieldContribution:
		p.MonthlyContribution = v
	case FieldTarget:
		p.TargetIncome = v
	case FieldGrowth:
		p.AnnualGrowthRate = v
	case FieldYield:
		p.AnnualYieldRate = v
	case FieldInitial:
		p.InitialBalance = v
	default:
		return p, fmt.Errorf("unknown sweep field %q", field)
	}
	return p, nil
}

// Point is one projection of a sweep.
type Point struct {
	Value  float64
	Result model.Result
	Err    error // wraps projection.ErrTargetUnreachable when the cap was hit
}

// ProgressFunc is called as projections finish.
// current is the number completed so far, total is the point count.
type ProgressFunc func(current, total int)

// Run projects base once per value with field overridden, using a bounded
// worker pool. Points come back in value order.
func Run(base model.Params, field Field, values []float64, progressFn ProgressFunc) ([]Point, error) {
	if _, err := Apply(base, field, 0); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(values) {
		numWorkers = len(values)
	}

	work := make(chan int, len(values))
	points := make([]Point, len(values))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range values {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				p, _ := Apply(base, field, values[idx])
				res, err := projection.Run(p)
				points[idx] = Point{Value: values[idx], Result: res, Err: err}
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(values))
				}
			}
		}()
	}

	wg.Wait()
	return points, nil
}

// Summary totals a finished sweep.
type Summary struct {
	Points      int
	Reached     int
	Unreachable int
	// Fastest is the index of the point with the fewest months among those
	// that reached the target, or -1.
	Fastest int
}

// Summarize counts outcomes across points.
func Summarize(points []Point) Summary {
	s := Summary{Points: len(points), Fastest: -1}
	for i, pt := range points {
		if errors.Is(pt.Err, projection.ErrTargetUnreachable) {
			s.Unreachable++
			continue
		}
		if pt.Result.Mode != model.ModeGoal || !pt.Result.ReachedTarget {
			continue
		}
		s.Reached++
		if s.Fastest < 0 || pt.Result.Months < points[s.Fastest].Result.Months {
			s.Fastest = i
		}
	}
	return s
}
