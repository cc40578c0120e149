package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/tui/components"
	"github.com/theirongolddev/snowball/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) report() cli.Report {
	return cli.Report{Result: a.result, Format: a.format, Benchmark: a.benchmarkName}
}

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	res := a.result
	f := a.format
	var b strings.Builder

	// Row 1: Metric cards
	incomeDelta := "after " + cli.FormatElapsedShort(res.Months)
	if res.Mode == model.ModeGoal {
		incomeDelta = "target " + f.Money(res.Params.TargetIncome)
	}
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Balance", Value: f.Money(res.Final.Balance), Delta: cli.FormatElapsed(res.Months)},
		{Label: "Contributed", Value: f.Money(res.Final.Contributed), Delta: f.Money(res.Params.MonthlyContribution) + "/mo"},
		{Label: "Yield", Value: f.Money(res.Final.Yield()), Tone: components.ToneGain},
		{Label: "Income", Value: f.Money(res.Final.Income) + "/mo", Delta: incomeDelta, Tone: components.ToneIncome},
	}, cw))
	b.WriteString("\n")

	// Row 2: progress toward the target and benchmark comparison
	halves := components.LayoutRow(cw, 2)
	inner := components.CardInnerWidth(halves[0])

	var progress string
	if res.Mode == model.ModeGoal {
		progress = components.IncomeProgress("Income", res.Final.Income, res.Params.TargetIncome, 7, inner-13)
	} else {
		progress = lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).
			Render("Monthly income after " + cli.FormatElapsed(res.Months))
	}
	conclusion := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Width(inner).
		Render(a.report().Conclusion())
	left := components.ContentCard("Goal", progress+"\n"+conclusion, halves[0])

	name := a.benchmarkName
	if name == "" {
		name = "Benchmark"
	}
	diffColor := t.Green
	if res.Difference < 0 {
		diffColor = t.Red
	}
	diffStyle := lipgloss.NewStyle().Foreground(diffColor).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	cmp := mutedStyle.Render(fmt.Sprintf("%s at %s: ", name, cli.FormatRate(res.Params.BenchmarkRate))) +
		lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Render(f.Money(res.Benchmark)) + "\n" +
		mutedStyle.Render("Difference: ") + diffStyle.Render(f.SignedMoney(res.Difference))
	right := components.ContentCard("Benchmark", cmp, halves[1])

	b.WriteString(components.CardRow([]string{left, right}))
	b.WriteString("\n")

	// Row 3: stacked principal/yield chart
	s := res.Series
	labels := make([]string, s.Len())
	for i, m := range s.Months {
		labels[i] = cli.SampleLabel(m)
	}
	chartW := components.CardInnerWidth(cw)
	chart := components.StackedBarChart(s, components.ChartOptions{
		Width:  chartW,
		Height: a.chartHeight,
		Labels: labels,
	})
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Growth (every %s)", cli.FormatElapsedShort(res.Params.Interval())),
		chart+"\n"+components.ChartLegend(),
		cw,
	))

	return b.String()
}

func (a App) renderSamplesTab(cw, h int) string {
	t := theme.Active
	rows := a.report().SampleRows()

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	lastStyle := lipgloss.NewStyle().Foreground(t.Income).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	innerW := components.CardInnerWidth(cw)
	colW := make([]int, len(cli.SampleHeaders))
	for i, hdr := range cli.SampleHeaders {
		colW[i] = len(hdr)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > colW[i] {
				colW[i] = len(cell)
			}
		}
	}

	formatRow := func(cells []string) string {
		var line strings.Builder
		for i, cell := range cells {
			if i == 0 {
				fmt.Fprintf(&line, "%-*s", colW[i], cell)
			} else {
				fmt.Fprintf(&line, "  %*s", colW[i], cell)
			}
		}
		return line.String()
	}

	visible := h - 5 // card border, title, header, separator
	if visible < 1 {
		visible = 1
	}
	end := a.offset + visible
	if end > len(rows) {
		end = len(rows)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(formatRow(cli.SampleHeaders)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(strings.Repeat("─", min(innerW, lipgloss.Width(formatRow(cli.SampleHeaders))))))
	for i := a.offset; i < end; i++ {
		b.WriteString("\n")
		if i == len(rows)-1 {
			b.WriteString(lastStyle.Render(formatRow(rows[i])))
		} else {
			b.WriteString(rowStyle.Render(formatRow(rows[i])))
		}
	}

	title := fmt.Sprintf("Samples (%d)", len(rows))
	if len(rows) > visible {
		title = fmt.Sprintf("Samples (%d-%d of %d)", a.offset+1, end, len(rows))
	}
	return components.ContentCard(title, b.String(), cw)
}
