package cmd

import (
	"github.com/theirongolddev/snowball/internal/model"

	"github.com/spf13/cobra"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Time until passive income reaches --target",
	Example: `  snowball goal --target 1320 --contribution 1100 --growth 0.105
  snowball goal --target 5000 --max-years 50`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProjection(cmd, model.ModeGoal)
	},
}

var horizonCmd = &cobra.Command{
	Use:   "horizon",
	Short: "Passive income after --years/--months",
	Example: `  snowball horizon --years 10
  snowball horizon -y 7 -m 6 --interval 6`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProjection(cmd, model.ModeHorizon)
	},
}

func init() {
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(horizonCmd)
}
