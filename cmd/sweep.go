package cmd

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/projection"
	"github.com/theirongolddev/snowball/internal/sweep"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	flagSweepOver  string
	flagSweepRange string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compare projections across a range of one parameter",
	Example: `  snowball sweep --range 500:2000:250 --target 1320
  snowball sweep --over yield --range 0.05:0.09:0.01 --years 10`,
	RunE: runSweep,
}

func init() {
	names := make([]string, len(sweep.Fields))
	for i, f := range sweep.Fields {
		names[i] = string(f)
	}
	sweepCmd.Flags().StringVar(&flagSweepOver, "over", string(sweep.FieldContribution),
		"Parameter to vary ("+strings.Join(names, ", ")+")")
	sweepCmd.Flags().StringVar(&flagSweepRange, "range", "", "Values as from:to:step")
	_ = sweepCmd.MarkFlagRequired("range")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, _ []string) error {
	r, err := sweep.ParseRange(flagSweepRange)
	if err != nil {
		return err
	}
	values, err := r.Values()
	if err != nil {
		return err
	}

	base := resolveParams(cmd, appCfg, "")
	field := sweep.Field(flagSweepOver)

	var mu sync.Mutex
	progressFn := func(current, total int) {
		if flagQuiet || flagJSON {
			return
		}
		mu.Lock()
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "\r  Projecting [%d/%d]", current, total)
		mu.Unlock()
	}

	points, err := sweep.Run(base, field, values, progressFn)
	if err != nil {
		return err
	}
	if !flagQuiet && !flagJSON {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "\r                         \r")
	}

	out := cmd.OutOrStdout()
	if flagJSON {
		results := make([]model.Result, len(points))
		for i, pt := range points {
			results[i] = pt.Result
		}
		return writeJSON(out, results)
	}

	f := cli.NewFormatter(appCfg.Output.Locale, appCfg.Output.CurrencySymbol)
	sum := sweep.Summarize(points)

	rows := make([][]string, 0, len(points))
	for i, pt := range points {
		res := pt.Result
		elapsed := cli.FormatElapsedShort(res.Months)
		switch {
		case errors.Is(pt.Err, projection.ErrTargetUnreachable):
			elapsed = "> " + elapsed
		case i == sum.Fastest && sum.Reached > 1:
			elapsed += " *"
		}
		rows = append(rows, []string{
			sweepValueLabel(field, pt.Value, f),
			elapsed,
			f.Money(res.Final.Contributed),
			f.Money(res.Final.Balance),
			f.Money(res.Final.Income),
			f.SignedMoney(res.Difference),
		})
	}

	title := fmt.Sprintf("Sweep over %s (%s)", field, base.Mode())
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, cli.RenderTitle(title))
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprint(out, cli.RenderTable(cli.Table{
		Headers: []string{cases.Title(language.English).String(string(field)), "Elapsed", "Contributed", "Balance", "Income/mo", "vs " + appCfg.Benchmark.Name},
		Rows:    rows,
	}))
	if sum.Unreachable > 0 {
		_, _ = fmt.Fprintf(out, "  %d of %d points (%s) did not reach the target within the cap\n",
			sum.Unreachable, sum.Points, cli.FormatPercent(float64(sum.Unreachable)/float64(sum.Points)))
	}
	return nil
}

func sweepValueLabel(field sweep.Field, v float64, f cli.Formatter) string {
	switch field {
	case sweep.FieldGrowth, sweep.FieldYield:
		return cli.FormatRate(v)
	default:
		return f.Money(v)
	}
}
