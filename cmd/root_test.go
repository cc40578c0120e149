package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/snowball/internal/config"
	"github.com/theirongolddev/snowball/internal/model"
	"github.com/theirongolddev/snowball/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config and history at temp dirs and clears flag state left
// by earlier executions.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("COLUMNS", "100")
	resetFlags(rootCmd)
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	})
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func decodeResult(t *testing.T, out string) model.Result {
	t.Helper()
	var res model.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	return res
}

func TestRootGoalJSON(t *testing.T) {
	isolate(t)

	res := decodeResult(t, execute(t,
		"--json", "--no-history",
		"--contribution", "1100", "--growth", "0.105", "--target", "1320"))

	assert.Equal(t, model.ModeGoal, res.Mode)
	assert.Equal(t, 85, res.Months)
	assert.True(t, res.ReachedTarget)
	assert.InDelta(t, 108500.0, res.Final.Contributed, 1e-6)
}

func TestRootYearsSwitchesToHorizon(t *testing.T) {
	isolate(t)

	res := decodeResult(t, execute(t, "--json", "--no-history", "--years", "10"))
	assert.Equal(t, model.ModeHorizon, res.Mode)
	assert.Equal(t, 120, res.Months)
	assert.InDelta(t, 381558.7003719085, res.Final.Balance, 1e-6)
	assert.Equal(t, 11, res.Series.Len())
}

func TestHorizonUsesConfiguredDuration(t *testing.T) {
	isolate(t)

	cfg := config.DefaultConfig()
	cfg.Plan.DurationMonths = 24
	require.NoError(t, config.Save(cfg))

	res := decodeResult(t, execute(t, "horizon", "--json", "--no-history"))
	assert.Equal(t, model.ModeHorizon, res.Mode)
	assert.Equal(t, 24, res.Months)
}

func TestQuietPrintsSentences(t *testing.T) {
	isolate(t)

	out := execute(t, "goal", "-q", "--no-history",
		"--contribution", "1100", "--growth", "0.105", "--target", "1320")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "Balance: "))
	assert.Contains(t, lines[1], "Investing at 100% of CDI")
	assert.Contains(t, lines[3], "7 years and 1 month")
	assert.Contains(t, lines[3], "1,320.00")
}

func TestFullReportRendersChart(t *testing.T) {
	isolate(t)

	out := execute(t, "horizon", "--no-history", "-y", "3")
	assert.Contains(t, out, "Samples")
	assert.Contains(t, out, "/mo")
	assert.Contains(t, out, "Estimated monthly income after 3 years")

	out = execute(t, "horizon", "--no-history", "--no-chart", "-y", "3")
	assert.NotContains(t, out, "Samples")
}

func TestResolveParamsModeSelection(t *testing.T) {
	isolate(t)
	cfg := config.DefaultConfig()
	// cobra merges persistent flags into Flags() during parsing
	rootCmd.Flags().AddFlagSet(rootCmd.PersistentFlags())

	p := resolveParams(rootCmd, cfg, "")
	assert.Equal(t, model.ModeGoal, p.Mode(), "config duration alone does not select horizon")

	p = resolveParams(rootCmd, cfg, model.ModeHorizon)
	assert.Equal(t, 120, p.DurationMonths)

	require.NoError(t, rootCmd.PersistentFlags().Set("months", "18"))
	p = resolveParams(rootCmd, cfg, "")
	assert.Equal(t, model.ModeHorizon, p.Mode())
	assert.Equal(t, 18, p.DurationMonths)

	p = resolveParams(rootCmd, cfg, model.ModeGoal)
	assert.Equal(t, model.ModeGoal, p.Mode(), "goal forced even with --months")

	require.NoError(t, rootCmd.PersistentFlags().Set("months", "0"))
	p = resolveParams(rootCmd, cfg, "")
	assert.Equal(t, 120, p.DurationMonths, "zero horizon falls back to the default")

	require.NoError(t, rootCmd.PersistentFlags().Set("max-years", "5"))
	p = resolveParams(rootCmd, cfg, "")
	assert.Equal(t, 60, p.MaxMonths)
}

func TestHistoryRecordsRuns(t *testing.T) {
	isolate(t)

	execute(t, "--json", "--target", "500")
	execute(t, "horizon", "--json", "-y", "2")

	st, err := store.Open(store.Path())
	require.NoError(t, err)
	runs, err := st.ListRuns(0)
	require.NoError(t, err)
	require.NoError(t, st.Close())
	require.Len(t, runs, 2)

	out := execute(t, "history")
	assert.Contains(t, out, "History (2 of 2)")
	assert.Contains(t, out, runs[0].ID.String()[:8])

	out = execute(t, "history", "show", runs[0].ID.String()[:8])
	assert.Contains(t, out, runs[0].ID.String())
	assert.Contains(t, out, "Estimated monthly income after 2 years")

	out = execute(t, "history", "rm", runs[1].ID.String())
	assert.Contains(t, out, "Deleted run")

	out = execute(t, "history", "-n", "5")
	assert.Contains(t, out, "History (1 of 1)")
}

func TestHistoryEmpty(t *testing.T) {
	isolate(t)
	out := execute(t, "history")
	assert.Contains(t, out, "No recorded runs yet.")
}

func TestConfigCommandShowsPath(t *testing.T) {
	isolate(t)
	out := execute(t, "config")
	assert.Contains(t, out, filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "snowball", "config.toml"))
}

func TestSweepCommand(t *testing.T) {
	isolate(t)

	out := execute(t, "sweep", "--json", "--range", "1000:1200:100", "--growth", "0.105", "--target", "1320")
	var results []model.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results), out)
	require.Len(t, results, 3)
	assert.Equal(t, 85, results[1].Months)

	out = execute(t, "sweep", "--over", "yield", "--range", "0.05:0.07:0.01", "-y", "5")
	assert.Contains(t, out, "Sweep over yield (horizon)")
	assert.Contains(t, out, "6.00%")
	assert.Contains(t, out, "Yield")
}

func TestNonFiniteProjectionDoesNotCrash(t *testing.T) {
	isolate(t)

	out := execute(t, "--growth", "-2", "--years", "1")
	assert.Contains(t, out, "NaN")
	assert.Contains(t, out, "no chart")

	st, err := store.Open(store.Path())
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	n, err := st.RunCount()
	require.NoError(t, err)
	assert.Zero(t, n, "non-finite runs are not recorded")

	rootCmd.SetArgs([]string{"--json", "--growth", "-2", "--years", "1"})
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	assert.ErrorContains(t, rootCmd.Execute(), "non-finite")
	resetFlags(rootCmd)
}

func TestZeroHorizonFallsBackToConfiguredDuration(t *testing.T) {
	isolate(t)
	cfg := config.DefaultConfig()
	cfg.Plan.DurationMonths = 36
	rootCmd.Flags().AddFlagSet(rootCmd.PersistentFlags())

	require.NoError(t, rootCmd.PersistentFlags().Set("years", "0"))
	assert.Equal(t, 36, resolveParams(rootCmd, cfg, "").DurationMonths)

	cfg.Plan.DurationMonths = 0
	assert.Equal(t, 120, resolveParams(rootCmd, cfg, model.ModeHorizon).DurationMonths)
}
