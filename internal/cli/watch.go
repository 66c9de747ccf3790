package cli

import (
	"github.com/spf13/cobra"

	"arbitrage-finder/internal/app"
)

var (
	watchQueries   []string
	watchThreshold float64
	watchOnce      bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "周期性检查产品价差, 净利润率超过阈值时告警",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.WatchOptions{Queries: watchQueries, Once: watchOnce}
		if cmd.Flags().Changed("threshold") {
			v := watchThreshold
			opts.ThresholdPct = &v
		}
		return getApp().Watch(cmd.Context(), opts)
	},
}

func init() {
	watchCmd.Flags().StringSliceVarP(&watchQueries, "query", "q", nil, "Product queries to watch (default watch.queries)")
	watchCmd.Flags().Float64Var(&watchThreshold, "threshold", 0, "Net margin threshold in percent (default watch.threshold_pct)")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Run a single check and exit")
}
