package cli

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/snowball/internal/model"
)

// Report turns a projection result into console rows and sentences.
type Report struct {
	Result    model.Result
	Format    Formatter
	Benchmark string // benchmark name, e.g. "CDI"
}

// Title returns the report heading for the result's mode.
func (r Report) Title() string {
	if r.Result.Mode == model.ModeHorizon {
		return fmt.Sprintf("PASSIVE INCOME  After %s", FormatElapsedShort(r.Result.Months))
	}
	return fmt.Sprintf("PASSIVE INCOME  Target %s/mo", r.Format.Money(r.Result.Params.TargetIncome))
}

// SummaryRows builds the Metric/Value rows for RenderTable.
func (r Report) SummaryRows() [][]string {
	res := r.Result
	p := res.Params
	f := r.Format

	rows := [][]string{
		{"Initial balance", f.Money(p.InitialBalance)},
		{"Monthly contribution", f.Money(p.MonthlyContribution)},
		{"Growth rate", FormatRate(p.AnnualGrowthRate) + "/yr"},
		{"Yield rate", FormatRate(p.AnnualYieldRate) + "/yr"},
	}
	if res.Mode == model.ModeGoal {
		rows = append(rows, []string{"Target income", f.Money(p.TargetIncome) + "/mo"})
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Final balance", f.Money(res.Final.Balance)},
		[]string{"Contributed", f.Money(res.Final.Contributed)},
		[]string{"Accumulated yield", f.Money(res.Final.Yield())},
		[]string{"Monthly income", f.Money(res.Final.Income)},
		[]string{"---"},
		[]string{fmt.Sprintf("%s (%s)", r.benchmarkName(), FormatRate(p.BenchmarkRate)), f.Money(res.Benchmark)},
		[]string{"Difference", f.SignedMoney(res.Difference)},
		[]string{"---"},
		[]string{"Elapsed", FormatElapsed(res.Months)},
	)
	return rows
}

// SampleRows builds one row per recorded sample.
func (r Report) SampleRows() [][]string {
	s := r.Result.Series
	rows := make([][]string, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		smp := s.At(i)
		rows = append(rows, []string{
			SampleLabel(smp.Month),
			r.Format.Money(smp.Contributed),
			r.Format.Money(smp.Yield),
			r.Format.Money(smp.Contributed + smp.Yield),
			r.Format.Money(smp.Income),
		})
	}
	return rows
}

// SampleHeaders are the column headers matching SampleRows.
var SampleHeaders = []string{"Period", "Contributed", "Yield", "Balance", "Income/mo"}

// Lines returns the plain summary sentences: final balance, benchmark,
// difference, and the elapsed-time or achieved-income conclusion.
func (r Report) Lines() []string {
	res := r.Result
	f := r.Format
	return []string{
		fmt.Sprintf("Balance: %s", f.Money(res.Final.Balance)),
		fmt.Sprintf("Investing at 100%% of %s would yield: %s", r.benchmarkName(), f.Money(res.Benchmark)),
		fmt.Sprintf("A difference of: %s", f.SignedMoney(res.Difference)),
		r.Conclusion(),
	}
}

// Conclusion states how long the goal takes or what income the horizon yields.
func (r Report) Conclusion() string {
	res := r.Result
	f := r.Format
	switch {
	case res.Mode == model.ModeHorizon:
		return fmt.Sprintf("Estimated monthly income after %s: approximately %s",
			FormatElapsed(res.Months), f.Money(res.Final.Income))
	case res.ReachedTarget:
		return fmt.Sprintf("It will take approximately %s to reach the desired passive income of %s per month",
			FormatElapsed(res.Months), f.Money(res.Params.TargetIncome))
	default:
		return fmt.Sprintf("The desired passive income of %s per month is not reached within %s (income then: %s)",
			f.Money(res.Params.TargetIncome), FormatElapsed(res.Months), f.Money(res.Final.Income))
	}
}

// RenderLines renders Lines with the difference and conclusion highlighted.
func (r Report) RenderLines() string {
	lines := r.Lines()
	st := palette()
	var b strings.Builder
	for i, line := range lines {
		b.WriteString("  ")
		switch {
		case i == 2 && r.Result.Difference < 0:
			b.WriteString(st.loss.Render(line))
		case i == 2:
			b.WriteString(st.gain.Render(line))
		case i == len(lines)-1 && r.Result.Mode == model.ModeGoal && !r.Result.ReachedTarget:
			b.WriteString(st.warn.Render(line))
		case i == len(lines)-1:
			b.WriteString(st.header.Render(line))
		default:
			b.WriteString(st.value.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderComparison renders strategy vs benchmark balances as scaled bars.
func (r Report) RenderComparison(width int) string {
	res := r.Result
	peak := res.Final.Balance
	if res.Benchmark > peak {
		peak = res.Benchmark
	}
	name := r.benchmarkName()
	labelW := max(len("Strategy"), len(name))
	st := palette()

	var b strings.Builder
	b.WriteString("  ")
	b.WriteString(st.header.Render("Strategy vs Benchmark"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s\n",
		RenderHorizontalBar(fmt.Sprintf("%-*s", labelW, "Strategy"), res.Final.Balance, peak, width),
		r.Format.Money(res.Final.Balance))
	fmt.Fprintf(&b, "%s  %s\n",
		RenderHorizontalBar(fmt.Sprintf("%-*s", labelW, name), res.Benchmark, peak, width),
		r.Format.Money(res.Benchmark))
	b.WriteString("  ")
	b.WriteString(st.muted.Render("Income trend "))
	b.WriteString(RenderSparkline(res.Series.Income))
	b.WriteString("\n")
	return b.String()
}

func (r Report) benchmarkName() string {
	if r.Benchmark == "" {
		return "Benchmark"
	}
	return r.Benchmark
}
