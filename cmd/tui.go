package cmd

import (
	"fmt"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Explore the plan interactively",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Force TrueColor profile so all background styling produces ANSI codes
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(tui.Options{
		Params:        resolveParams(cmd, appCfg, ""),
		Format:        cli.NewFormatter(appCfg.Output.Locale, appCfg.Output.CurrencySymbol),
		BenchmarkName: appCfg.Benchmark.Name,
		ChartHeight:   appCfg.Chart.Height,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if a, ok := final.(tui.App); ok && !flagNoHistory && appCfg.History.Enabled {
		recordRun(a.Result())
	}
	return nil
}
