package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var barBlocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// ChartOptions controls StackedBarChart layout.
type ChartOptions struct {
	Width  int
	Height int

	// Labels are x-axis labels, one per sample. Ignored when the count differs.
	Labels []string

	// IncomeLabel formats the per-bar passive income annotation.
	// Nil uses compact labels such as "1.3k".
	IncomeLabel func(float64) string
}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak == 0 {
		peak = 1
	}

	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 4) // UTF-8 block chars are up to 3 bytes
	for _, v := range values {
		idx := int(v/peak*float64(len(barBlocks)-2)) + 1
		if idx >= len(barBlocks) {
			idx = len(barBlocks) - 1
		}
		if idx < 1 {
			idx = 1
		}
		buf.WriteRune(barBlocks[idx]) //nolint:gosec // bounds checked above
	}

	return style.Render(buf.String())
}

type cellStyles struct {
	principal lipgloss.Style
	yield     lipgloss.Style
	split     lipgloss.Style // principal ends inside a cell that yield fills above
	blank     lipgloss.Style
}

// StackedBarChart renders one bar per sample: contributed principal at the
// bottom, accumulated yield stacked on top, with x-axis labels and a row of
// passive-income annotations under the bars.
func StackedBarChart(s model.Series, opts ChartOptions) string {
	n := s.Len()
	if n == 0 {
		return ""
	}
	t := theme.Active
	if !s.Finite() {
		return lipgloss.NewStyle().Foreground(t.TextMuted).Render("  (no chart: the projection produced non-finite values)")
	}
	totals := s.Totals()

	if opts.Width < 15 || opts.Height < 3 {
		return Sparkline(totals, t.Yield)
	}
	width, height := opts.Width, opts.Height

	maxVal := 0.0
	for _, v := range totals {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Y-axis: compute tick step and ceiling
	tickStep := chartTickStep(maxVal)
	maxIntervals := height / 2
	if maxIntervals < 2 {
		maxIntervals = 2
	}
	for {
		n := int(math.Ceil(maxVal / tickStep))
		if n <= maxIntervals {
			break
		}
		tickStep *= 2
	}
	ceiling := math.Ceil(maxVal/tickStep) * tickStep
	numIntervals := int(math.Round(ceiling / tickStep))
	if numIntervals < 1 {
		numIntervals = 1
	}

	rowsPerTick := height / numIntervals
	if rowsPerTick < 2 {
		rowsPerTick = 2
	}
	chartH := rowsPerTick * numIntervals

	yLabelW := len(formatChartLabel(ceiling)) + 1
	if yLabelW < 4 {
		yLabelW = 4
	}
	tickLabels := make(map[int]string)
	for i := 1; i <= numIntervals; i++ {
		tickLabels[i*rowsPerTick] = formatChartLabel(tickStep * float64(i))
	}

	chartW := width - yLabelW - 1
	if chartW < 5 {
		chartW = 5
	}

	principal := s.Contributed
	income := s.Income
	labels := opts.Labels
	if len(labels) != n {
		labels = nil
	}

	// Bar sizing
	gap := 1
	if n <= 1 {
		gap = 0
	}
	barW := chartW
	if n > 1 {
		barW = (chartW - (n - 1)) / n
	}
	if barW < 2 && n > 1 {
		maxN := (chartW + 1) / 3
		if maxN < 2 {
			maxN = 2
		}
		idx := make([]int, maxN)
		for i := range idx {
			idx[i] = i * (n - 1) / (maxN - 1)
		}
		totals = pickFloats(totals, idx)
		principal = pickFloats(principal, idx)
		income = pickFloats(income, idx)
		if labels != nil {
			picked := make([]string, len(idx))
			for i, src := range idx {
				picked[i] = labels[src]
			}
			labels = picked
		}
		n = maxN
		barW = 2
	}
	if barW > 6 {
		barW = 6
	}
	axisLen := n*barW + max(0, n-1)*gap

	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	styles := cellStyles{
		principal: lipgloss.NewStyle().Foreground(t.Principal).Background(t.Surface),
		yield:     lipgloss.NewStyle().Foreground(t.Yield).Background(t.Surface),
		split:     lipgloss.NewStyle().Foreground(t.Principal).Background(t.Yield),
		blank:     lipgloss.NewStyle().Background(t.Surface),
	}

	var b strings.Builder

	// Render rows top to bottom
	for row := chartH; row >= 1; row-- {
		rowTop := ceiling * float64(row) / float64(chartH)
		rowBottom := ceiling * float64(row-1) / float64(chartH)

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, tickLabels[row])))
		b.WriteString(axisStyle.Render("│"))

		for i := range totals {
			if i > 0 && gap > 0 {
				b.WriteString(styles.blank.Render(strings.Repeat(" ", gap)))
			}
			b.WriteString(stackedCell(principal[i], totals[i], rowBottom, rowTop, barW, styles))
		}
		b.WriteString("\n")
	}

	// X-axis line with 0 label
	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└"))
	b.WriteString(axisStyle.Render(strings.Repeat("─", axisLen)))

	if labels != nil {
		labelStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
		b.WriteString("\n")
		b.WriteString(styles.blank.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(labelStyle.Render(placeLabels(labels, barW, gap, axisLen)))
	}

	incomeFmt := opts.IncomeLabel
	if incomeFmt == nil {
		incomeFmt = formatChartLabel
	}
	incomeLabels := make([]string, len(income))
	for i, v := range income {
		incomeLabels[i] = incomeFmt(v)
	}
	incomeStyle := lipgloss.NewStyle().Foreground(t.Income).Background(t.Surface)
	b.WriteString("\n")
	b.WriteString(incomeStyle.Render(fmt.Sprintf("%*s ", yLabelW, "/mo")))
	b.WriteString(incomeStyle.Render(placeLabels(incomeLabels, barW, gap, axisLen)))

	return b.String()
}

// ChartLegend describes the StackedBarChart colors.
func ChartLegend() string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)
	return lipgloss.NewStyle().Foreground(t.Principal).Render("█") + muted.Render(" Contributed  ") +
		lipgloss.NewStyle().Foreground(t.Yield).Render("█") + muted.Render(" Yield  ") +
		lipgloss.NewStyle().Foreground(t.Income).Render("/mo") + muted.Render(" passive income")
}

// stackedCell renders one bar cell covering values (lo, hi].
func stackedCell(principal, total, lo, hi float64, barW int, st cellStyles) string {
	fill := func(style lipgloss.Style, r rune) string {
		return style.Render(strings.Repeat(string(r), barW))
	}
	switch {
	case principal >= hi:
		return fill(st.principal, '█')
	case principal > lo:
		r := partialBlock((principal - lo) / (hi - lo))
		if total >= hi {
			return fill(st.split, r)
		}
		return fill(st.principal, r)
	case total >= hi:
		return fill(st.yield, '█')
	case total > lo:
		return fill(st.yield, partialBlock((total-lo)/(hi-lo)))
	default:
		return st.blank.Render(strings.Repeat(" ", barW))
	}
}

func partialBlock(frac float64) rune {
	idx := int(frac * 8)
	if idx > 8 {
		idx = 8
	}
	if idx < 1 {
		idx = 1
	}
	return barBlocks[idx]
}

// placeLabels lays labels out under bar positions, skipping any that would
// collide, and always tries to show the last one.
func placeLabels(labels []string, barW, gap, axisLen int) string {
	n := len(labels)
	if n == 0 || axisLen <= 0 {
		return ""
	}
	buf := []byte(strings.Repeat(" ", axisLen))

	minSpacing := 8
	labelStep := max(1, (n*minSpacing)/(axisLen+1))

	lastEnd := -1
	for i := 0; i < n; i += labelStep {
		if n > 1 && i == n-1 {
			break
		}
		pos := i * (barW + gap)
		lbl := labels[i]
		end := pos + len(lbl)
		if pos <= lastEnd {
			continue
		}
		if end > axisLen {
			end = axisLen
			if end-pos < 3 {
				continue
			}
			lbl = lbl[:end-pos]
		}
		copy(buf[pos:end], lbl)
		lastEnd = end
	}
	if n > 1 {
		lbl := labels[n-1]
		pos := (n - 1) * (barW + gap)
		end := pos + len(lbl)
		if end > axisLen {
			pos = axisLen - len(lbl)
			end = axisLen
		}
		if pos >= 0 && pos > lastEnd {
			copy(buf[pos:end], lbl)
		}
	}
	return strings.TrimRight(string(buf), " ")
}

func pickFloats(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, src := range idx {
		out[i] = values[src]
	}
	return out
}

// chartTickStep computes a nice tick interval targeting ~5 ticks.
func chartTickStep(maxVal float64) float64 {
	if maxVal <= 0 {
		return 1
	}
	rough := maxVal / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	switch {
	case v >= 1e9:
		if v == math.Trunc(v/1e9)*1e9 {
			return fmt.Sprintf("%.0fB", v/1e9)
		}
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		if v == math.Trunc(v/1e6)*1e6 {
			return fmt.Sprintf("%.0fM", v/1e6)
		}
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		if v == math.Trunc(v/1e3)*1e3 {
			return fmt.Sprintf("%.0fk", v/1e3)
		}
		return fmt.Sprintf("%.1fk", v/1e3)
	case v >= 1:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
