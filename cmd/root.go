// Package cmd implements the snowball CLI commands.
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/config"
	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/projection"
	"github.com/theirongolddev/snowball/internal/store"
	"github.com/theirongolddev/snowball/internal/tui/components"
	"github.com/theirongolddev/snowball/internal/tui/theme"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagInitial       float64
	flagContribution  float64
	flagGrowth        float64
	flagYield         float64
	flagTarget        float64
	flagYears         int
	flagMonths        int
	flagInterval      int
	flagBenchmarkRate float64
	flagMaxYears      int
	flagNoChart       bool
	flagNoHistory     bool
	flagJSON          bool
	flagQuiet         bool
	flagLogLevel      string
)

var (
	appCfg = config.DefaultConfig()
	logger = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "snowball",
	Short: "Passive income projection for a monthly contribution plan",
	Long: `Project how long reinvested yield takes to pay a target monthly income,
or what it pays after a fixed horizon, compared against a fixed-rate benchmark.

Without --years/--months snowball runs in goal mode; with them, horizon mode.`,
	SilenceUsage:      true,
	PersistentPreRunE: initRuntime,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProjection(cmd, "")
	},
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.Float64Var(&flagInitial, "initial", 0, "Initial balance")
	pf.Float64Var(&flagContribution, "contribution", 0, "Monthly contribution")
	pf.Float64Var(&flagGrowth, "growth", 0, "Annual growth rate as a decimal (0.10 = 10%)")
	pf.Float64Var(&flagYield, "yield", 0, "Annual yield rate as a decimal")
	pf.Float64Var(&flagTarget, "target", 0, "Target monthly passive income (goal mode)")
	pf.IntVarP(&flagYears, "years", "y", 0, "Horizon years (switches to horizon mode)")
	pf.IntVarP(&flagMonths, "months", "m", 0, "Horizon months (switches to horizon mode)")
	pf.IntVar(&flagInterval, "interval", 0, "Months between chart samples")
	pf.Float64Var(&flagBenchmarkRate, "benchmark-rate", 0, "Annual benchmark rate as a decimal")
	pf.IntVar(&flagMaxYears, "max-years", 0, "Give up goal seeking after this many years")
	pf.BoolVar(&flagNoChart, "no-chart", false, "Skip the chart and samples table")
	pf.BoolVar(&flagNoHistory, "no-history", false, "Do not record this run in history")
	pf.BoolVar(&flagJSON, "json", false, "Print the result as JSON")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Print only the summary sentences")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// initRuntime loads configuration and sets up logging and the theme.
func initRuntime(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	appCfg = cfg

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	if err := configureLogger(logger, level, false); err != nil {
		return err
	}
	theme.SetActive(cfg.Appearance.Theme)

	logger.WithFields(logrus.Fields{
		"config": config.Path(),
		"exists": config.Exists(),
	}).Debug("configuration loaded")
	return nil
}

func configureLogger(l *logrus.Logger, level string, jsonFormat bool) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	l.SetLevel(lvl)
	l.SetOutput(os.Stderr)
	if jsonFormat {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return nil
}

// resolveParams layers explicitly set flags over the configuration. mode
// forces goal or horizon; empty picks horizon only when --years/--months
// were given.
func resolveParams(cmd *cobra.Command, cfg config.Config, mode model.Mode) model.Params {
	p := cfg.Params()
	flags := cmd.Flags()

	if flags.Changed("initial") {
		p.InitialBalance = flagInitial
	}
	if flags.Changed("contribution") {
		p.MonthlyContribution = flagContribution
	}
	if flags.Changed("growth") {
		p.AnnualGrowthRate = flagGrowth
	}
	if flags.Changed("yield") {
		p.AnnualYieldRate = flagYield
	}
	if flags.Changed("target") {
		p.TargetIncome = flagTarget
	}
	if flags.Changed("interval") {
		p.SampleInterval = flagInterval
	}
	if flags.Changed("benchmark-rate") {
		p.BenchmarkRate = flagBenchmarkRate
	}
	if flags.Changed("max-years") {
		p.MaxMonths = flagMaxYears * 12
	}

	durationSet := flags.Changed("years") || flags.Changed("months")
	if durationSet {
		p = p.WithDuration(flagYears, flagMonths)
	}

	switch {
	case mode == model.ModeGoal, mode == "" && !durationSet:
		p = p.WithTarget(p.TargetIncome)
	case p.DurationMonths <= 0:
		// horizon forced without a usable length
		p.DurationMonths = cfg.Plan.DurationMonths
		if p.DurationMonths <= 0 {
			p.DurationMonths = config.DefaultConfig().Plan.DurationMonths
		}
	}
	return p
}

func runProjection(cmd *cobra.Command, mode model.Mode) error {
	p := resolveParams(cmd, appCfg, mode)
	logger.WithFields(logrus.Fields{
		"mode":         p.Mode(),
		"initial":      p.InitialBalance,
		"contribution": p.MonthlyContribution,
		"target":       p.TargetIncome,
		"months":       p.DurationMonths,
	}).Debug("running projection")

	res, err := projection.Run(p)
	if err != nil {
		if !errors.Is(err, projection.ErrTargetUnreachable) {
			return err
		}
		logger.WithError(err).Warn("goal seeking stopped at the month cap")
	}

	finite := res.Finite()
	if !finite {
		logger.WithField("growth", p.AnnualGrowthRate).Warn("projection produced non-finite values")
	}
	if finite && !flagNoHistory && appCfg.History.Enabled {
		recordRun(res)
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		if !finite {
			return errors.New("projection produced non-finite values, which JSON cannot represent")
		}
		return writeJSON(out, res)
	}
	renderResult(out, res, appCfg)
	return nil
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// recordRun saves res to the history store. Failures are logged, never fatal.
func recordRun(res model.Result) {
	st, err := store.Open(store.Path())
	if err != nil {
		logger.WithError(err).Warn("history unavailable")
		return
	}
	defer func() { _ = st.Close() }()

	id, err := st.SaveRun(res)
	if err != nil {
		logger.WithError(err).Warn("saving run to history")
		return
	}
	logger.WithField("run_id", id.String()).Debug("run saved")
}

func newReport(res model.Result, cfg config.Config) cli.Report {
	return cli.Report{
		Result:    res,
		Format:    cli.NewFormatter(cfg.Output.Locale, cfg.Output.CurrencySymbol),
		Benchmark: cfg.Benchmark.Name,
	}
}

func renderResult(out io.Writer, res model.Result, cfg config.Config) {
	rep := newReport(res, cfg)

	if flagQuiet {
		for _, line := range rep.Lines() {
			_, _ = fmt.Fprintln(out, line)
		}
		return
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, cli.RenderTitle(rep.Title()))
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rep.SummaryRows(),
	}))
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprint(out, rep.RenderLines())
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprint(out, rep.RenderComparison(30))

	if !cfg.Chart.Show || flagNoChart {
		return
	}

	labels := make([]string, res.Series.Len())
	for i, m := range res.Series.Months {
		labels[i] = cli.SampleLabel(m)
	}
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, components.StackedBarChart(res.Series, components.ChartOptions{
		Width:  terminalWidth() - 2,
		Height: cfg.Chart.Height,
		Labels: labels,
	}))
	_, _ = fmt.Fprintln(out, components.ChartLegend())
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:   "Samples",
		Headers: cli.SampleHeaders,
		Rows:    rep.SampleRows(),
	}))
}

// terminalWidth reads $COLUMNS, defaulting to 80.
func terminalWidth() int {
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n >= 40 {
		return n
	}
	return 80
}
