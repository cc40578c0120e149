// Package tui provides the interactive Bubble Tea explorer for snowball.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/projection"
	"github.com/theirongolddev/snowball/internal/tui/components"
	"github.com/theirongolddev/snowball/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	minTerminalWidth = 60
	maxContentWidth  = 140
	minContentHeight = 5

	contributionStep = 100
	targetStep       = 100
	durationStep     = 12
	defaultDuration  = 120
)

// Options configures the explorer.
type Options struct {
	Params        model.Params
	Format        cli.Formatter
	BenchmarkName string
	ChartHeight   int
}

// App is the root Bubble Tea model.
type App struct {
	params model.Params
	result model.Result
	runErr error

	format        cli.Formatter
	benchmarkName string
	chartHeight   int

	// Remembered while the other mode is active
	lastTarget   float64
	lastDuration int

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	offset    int // first visible row on the Samples tab
}

// NewApp creates the explorer and runs the initial projection.
func NewApp(opts Options) App {
	a := App{
		params:        opts.Params,
		format:        opts.Format,
		benchmarkName: opts.BenchmarkName,
		chartHeight:   opts.ChartHeight,
		lastTarget:    opts.Params.TargetIncome,
		lastDuration:  opts.Params.DurationMonths,
	}
	if a.chartHeight < 4 {
		a.chartHeight = 12
	}
	if a.lastDuration <= 0 {
		a.lastDuration = defaultDuration
	}
	a.recompute()
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

func (a *App) recompute() {
	a.result, a.runErr = projection.Run(a.params)
	if a.offset >= a.result.Series.Len() {
		a.offset = 0
	}
}

// Result returns the projection currently on screen.
func (a App) Result() model.Result {
	return a.result
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}
		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "+", "=":
			a.params.MonthlyContribution += contributionStep
			a.recompute()
		case "-", "_":
			a.params.MonthlyContribution = max(0, a.params.MonthlyContribution-contributionStep)
			a.recompute()
		case "]":
			a.adjustGoal(1)
		case "[":
			a.adjustGoal(-1)
		case "m":
			a.toggleMode()
		case "j", "down":
			if a.activeTab == 1 && a.offset < a.result.Series.Len()-1 {
				a.offset++
			}
		case "k", "up":
			if a.activeTab == 1 && a.offset > 0 {
				a.offset--
			}
		case "left":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		case "right", "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		default:
			if len(msg.Runes) == 1 {
				if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
					a.activeTab = idx
				}
			}
		}
		return a, nil
	}
	return a, nil
}

// adjustGoal moves the target income in goal mode and the duration in
// horizon mode.
func (a *App) adjustGoal(dir int) {
	if a.params.Mode() == model.ModeHorizon {
		d := a.params.DurationMonths + dir*durationStep
		if d < 1 {
			d = 1
		}
		a.params.DurationMonths = d
		a.lastDuration = d
	} else {
		a.params.TargetIncome = max(0, a.params.TargetIncome+float64(dir)*targetStep)
		a.lastTarget = a.params.TargetIncome
	}
	a.recompute()
}

func (a *App) toggleMode() {
	if a.params.Mode() == model.ModeHorizon {
		a.params = a.params.WithTarget(a.lastTarget)
	} else {
		a.params.DurationMonths = a.lastDuration
	}
	a.offset = 0
	a.recompute()
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  snowball needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Income).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		name     string
		bindings []struct{ key, desc string }
	}{
		{"Plan", []struct{ key, desc string }{
			{"+ -", fmt.Sprintf("Contribution ±%d", contributionStep)},
			{"] [", fmt.Sprintf("Target ±%d (goal) / duration ±%d months (horizon)", targetStep, durationStep)},
			{"m", "Switch goal / horizon"},
		}},
		{"Navigation", []struct{ key, desc string }{
			{"o s", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Scroll samples"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.name))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-6s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Background(t.Surface).Width(w)

	p := a.params
	parts := []string{
		accentStyle.Render(string(p.Mode())),
		pillStyle.Render(a.format.Money(p.InitialBalance) + " + " + a.format.Money(p.MonthlyContribution) + "/mo"),
		pillStyle.Render("growth " + cli.FormatRate(p.AnnualGrowthRate)),
		pillStyle.Render("yield " + cli.FormatRate(p.AnnualYieldRate)),
	}
	if p.Mode() == model.ModeHorizon {
		parts = append(parts, accentStyle.Render(cli.FormatElapsedShort(p.DurationMonths)))
	} else {
		parts = append(parts, accentStyle.Render("target "+a.format.Money(p.TargetIncome)))
	}
	header := components.RenderTabBar(a.activeTab) + "\n" +
		rowStyle.Render(" "+strings.Join(parts, pillStyle.Render(" │ ")))

	statusBar := components.RenderStatusBar(w, "[+/-]contribution  [[/]]goal  [m]ode  [?]help  [q]uit", a.statusInfo())

	contentH := h - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	switch a.activeTab {
	case 1:
		content = a.renderSamplesTab(cw, contentH)
	default:
		content = a.renderOverviewTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusInfo() string {
	res := a.result
	switch {
	case errors.Is(a.runErr, projection.ErrTargetUnreachable):
		return "target not reached in " + cli.FormatElapsedShort(res.Months)
	case res.Mode == model.ModeHorizon:
		return "income " + a.format.Money(res.Final.Income) + "/mo"
	default:
		return "reached in " + cli.FormatElapsedShort(res.Months)
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
