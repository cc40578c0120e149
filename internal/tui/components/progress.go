package components

import (
	"fmt"
	"math"

	"github.com/theirongolddev/snowball/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// ColorForProgress returns a color that warms up as income approaches the target.
func ColorForProgress(pct float64) string {
	t := theme.Active
	switch {
	case pct >= 1:
		return string(t.Green)
	case pct >= 0.5:
		return string(t.Income)
	case pct >= 0.25:
		return string(t.Orange)
	default:
		return string(t.Red)
	}
}

// IncomeProgress renders how far current monthly income is from target as a
// bar plus percentage. A non-positive target counts as reached.
func IncomeProgress(label string, current, target float64, labelW, barWidth int) string {
	t := theme.Active

	pct := 1.0
	if target > 0 {
		pct = current / target
	}
	shown := pct
	if math.IsNaN(shown) || shown < 0 {
		shown = 0
	}
	if shown > 1 {
		shown = 1
	}
	if barWidth < 4 {
		barWidth = 4
	}

	color := ColorForProgress(pct)
	bar := progress.New(
		progress.WithSolidFill(color),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(shown) +
		spaceStyle.Render(" ") +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100))
}
