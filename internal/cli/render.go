package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/snowball/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// styles are rebuilt from theme.Active on each render so `appearance.theme`
// applies to plain CLI output too.
type styles struct {
	title, header, value, muted lipgloss.Style
	gain, loss, warn, rule      lipgloss.Style
	border                      lipgloss.Color
}

func palette() styles {
	t := theme.Active
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	return styles{
		title:  fg(t.TextPrimary).Bold(true).Align(lipgloss.Center),
		header: fg(t.Accent).Bold(true),
		value:  fg(t.TextPrimary),
		muted:  fg(t.TextMuted),
		gain:   fg(t.Green),
		loss:   fg(t.Red),
		warn:   fg(t.Orange),
		rule:   fg(t.TextDim),
		border: t.Border,
	}
}

// separatorRow in Table.Rows draws a horizontal rule across the table.
const separatorRow = "---"

// Table is a bordered text table. The first column is left-aligned and the
// rest, being amounts, right-aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// RenderTitle renders title centered in a rounded box.
func RenderTitle(title string) string {
	st := palette()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(st.border).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(st.title.Render(title))
}

func (t Table) columnWidths() []int {
	cols := len(t.Headers)
	for _, row := range t.Rows {
		if !isSeparator(row) {
			cols = max(cols, len(row))
		}
	}
	widths := make([]int, cols)
	measure := func(cells []string) {
		for i, c := range cells {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		if !isSeparator(row) {
			measure(row)
		}
	}
	return widths
}

func isSeparator(row []string) bool {
	return len(row) == 1 && row[0] == separatorRow
}

// RenderTable renders t with box-drawing borders. Rows holding the single
// cell "---" become separators.
func RenderTable(t Table) string {
	widths := t.columnWidths()
	if len(widths) == 0 {
		return ""
	}
	st := palette()

	var b strings.Builder
	rule := func(left, mid, right string) {
		segs := make([]string, len(widths))
		for i, w := range widths {
			segs[i] = strings.Repeat("─", w+2)
		}
		b.WriteString(st.rule.Render(left + strings.Join(segs, mid) + right))
		b.WriteByte('\n')
	}
	line := func(cells []string, style lipgloss.Style, alignAmounts bool) {
		bar := st.rule.Render("│")
		b.WriteString(bar)
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := strings.Repeat(" ", w-lipgloss.Width(cell))
			if alignAmounts && i > 0 {
				cell = pad + cell
			} else {
				cell += pad
			}
			b.WriteString(style.Render(" " + cell + " "))
			b.WriteString(bar)
		}
		b.WriteByte('\n')
	}

	if t.Title != "" {
		b.WriteString("  " + st.header.Render(t.Title) + "\n")
	}
	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		line(t.Headers, st.header, false)
		rule("├", "┼", "┤")
	}
	for _, row := range t.Rows {
		if isSeparator(row) {
			rule("├", "┼", "┤")
			continue
		}
		line(row, st.value, true)
	}
	rule("╰", "┴", "╯")
	return b.String()
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// RenderSparkline scales values between their minimum and maximum onto block
// characters. Non-finite values render as the lowest block.
func RenderSparkline(values []float64) string {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			lo, hi = min(lo, v), max(hi, v)
		}
	}
	span := hi - lo

	var b strings.Builder
	for _, v := range values {
		idx := 0
		if span > 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
			idx = int((v - lo) / span * float64(len(sparkBlocks)-1))
		} else if span == 0 && v == hi {
			idx = len(sparkBlocks) - 1
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// RenderHorizontalBar renders label followed by a bar of value/maxValue of
// maxWidth cells. Non-positive or non-finite inputs render the label alone.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	ratio := value / maxValue
	if !(maxValue > 0) || !(value > 0) || math.IsNaN(ratio) {
		return "  " + label
	}
	filled := int(min(ratio, 1) * float64(maxWidth))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", maxWidth-filled)
	return fmt.Sprintf("  %s %s", label, palette().gain.Render(bar))
}
