package cmd

import (
	"fmt"

	"github.com/theirongolddev/snowball/internal/cli"
	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/store"

	"github.com/spf13/cobra"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded projection runs",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a recorded run (an ID prefix is enough)",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryRm,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of runs to list (0 for all)")
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRmCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (*store.Store, error) {
	st, err := store.Open(store.Path())
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return st, nil
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	st, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	runs, err := st.ListRuns(flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	total, err := st.RunCount()
	if err != nil {
		return fmt.Errorf("counting runs: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, "\n  No recorded runs yet.")
		return nil
	}

	f := cli.NewFormatter(appCfg.Output.Locale, appCfg.Output.CurrencySymbol)
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		goal := cli.FormatElapsedShort(r.Params.DurationMonths)
		if r.Mode == model.ModeGoal {
			goal = f.Money(r.Params.TargetIncome) + "/mo"
		}
		reached := ""
		if r.ReachedTarget {
			reached = "yes"
		}
		rows = append(rows, []string{
			r.ID.String()[:8],
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			string(r.Mode),
			goal,
			cli.FormatElapsedShort(r.Months),
			f.Money(r.FinalBalance.InexactFloat64()),
			f.Money(r.Income.InexactFloat64()),
			reached,
		})
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprint(out, cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("History (%d of %s)", len(runs), cli.FormatNumber(int64(total))),
		Headers: []string{"ID", "When", "Mode", "Goal", "Elapsed", "Balance", "Income/mo", "Reached"},
		Rows:    rows,
	}))
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	st, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	id, err := st.ResolveID(args[0])
	if err != nil {
		return err
	}
	run, err := st.LoadRun(id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "\n  Run %s recorded %s\n", run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	renderResult(out, run.Result(), appCfg)
	return nil
}

func runHistoryRm(cmd *cobra.Command, args []string) error {
	st, err := openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	id, err := st.ResolveID(args[0])
	if err != nil {
		return err
	}
	if err := st.DeleteRun(id); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Deleted run %s\n", id)
	return nil
}
