package cmd

import (
	"fmt"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg := appCfg
	out := cmd.OutOrStdout()
	f := cli.NewFormatter(cfg.Output.Locale, cfg.Output.CurrencySymbol)

	_, _ = fmt.Fprintf(out, "  Config file: %s\n", config.Path())
	if config.Exists() {
		_, _ = fmt.Fprintln(out, "  Status: loaded")
	} else {
		_, _ = fmt.Fprintln(out, "  Status: using defaults (no config file)")
	}
	_, _ = fmt.Fprintln(out)

	_, _ = fmt.Fprintln(out, "  [Plan]")
	_, _ = fmt.Fprintf(out, "    Initial balance:      %s\n", f.Money(cfg.Plan.InitialBalance))
	_, _ = fmt.Fprintf(out, "    Monthly contribution: %s\n", f.Money(cfg.Plan.MonthlyContribution))
	_, _ = fmt.Fprintf(out, "    Growth rate:          %s\n", cli.FormatRate(cfg.Plan.AnnualGrowthRate))
	_, _ = fmt.Fprintf(out, "    Yield rate:           %s\n", cli.FormatRate(cfg.Plan.AnnualYieldRate))
	_, _ = fmt.Fprintf(out, "    Target income:        %s\n", f.Money(cfg.Plan.TargetIncome))
	_, _ = fmt.Fprintf(out, "    Default horizon:      %s\n", cli.FormatElapsed(cfg.Plan.DurationMonths))
	_, _ = fmt.Fprintf(out, "    Goal cap:             %d years\n", cfg.Plan.MaxYears)
	_, _ = fmt.Fprintln(out)

	_, _ = fmt.Fprintln(out, "  [Benchmark]")
	_, _ = fmt.Fprintf(out, "    %s at %s\n", cfg.Benchmark.Name, cli.FormatRate(cfg.Benchmark.AnnualRate))
	_, _ = fmt.Fprintln(out)

	_, _ = fmt.Fprintln(out, "  [Chart]")
	_, _ = fmt.Fprintf(out, "    Sample interval: %d months\n", cfg.Chart.SampleInterval)
	_, _ = fmt.Fprintf(out, "    Show:            %v\n", cfg.Chart.Show)
	_, _ = fmt.Fprintf(out, "    Height:          %d\n", cfg.Chart.Height)
	_, _ = fmt.Fprintln(out)

	_, _ = fmt.Fprintln(out, "  [Output]")
	_, _ = fmt.Fprintf(out, "    Locale:   %s\n", cfg.Output.Locale)
	_, _ = fmt.Fprintf(out, "    Currency: %q\n", cfg.Output.CurrencySymbol)
	_, _ = fmt.Fprintf(out, "    Theme:    %s\n", cfg.Appearance.Theme)
	_, _ = fmt.Fprintf(out, "    Log:      %s\n", cfg.Log.Level)
	_, _ = fmt.Fprintln(out)

	_, _ = fmt.Fprintln(out, "  [History]")
	_, _ = fmt.Fprintf(out, "    Enabled: %v\n", cfg.History.Enabled)
	_, _ = fmt.Fprintln(out)

	_, _ = fmt.Fprintln(out, "  Run `snowball setup` to reconfigure.")
	return nil
}
