package cli

import (
	"github.com/spf13/cobra"

	"arbitrage-finder/internal/app"
)

var (
	reportKind  string
	reportHTML  string
	reportCSV   string
	reportPNG   string
	reportFlags analysisFlags
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render an analysis as HTML, CSV or a PNG median chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Report(cmd.Context(), app.ReportOptions{
			Kind:     reportKind,
			Analysis: reportFlags.options(cmd),
			HTMLPath: reportHTML,
			CSVPath:  reportCSV,
			PNGPath:  reportPNG,
		})
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportKind, "kind", app.KindProducts, "Analysis kind: products, services or realestate")
	reportCmd.Flags().StringVar(&reportHTML, "html", "", "HTML output path (default <report.output_dir>/<kind>.html)")
	reportCmd.Flags().StringVar(&reportCSV, "csv", "", "Write the first table as CSV")
	reportCmd.Flags().StringVar(&reportPNG, "png", "", "Write a median bar chart (products/services only)")
	reportFlags.register(reportCmd, true, true)
}
