package cli

import (
	"github.com/spf13/cobra"

	"arbitrage-finder/internal/app"
)

var (
	importSource string
	importPath   string
	importDryRun bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a CSV, SQLite or XLSX dataset into PostgreSQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Import(cmd.Context(), app.ImportOptions{
			Source: importSource,
			Path:   importPath,
			DryRun: importDryRun,
		})
	},
}

func init() {
	importCmd.Flags().StringVar(&importSource, "source", "", "Source type: csv, sqlite or xlsx (default data.source)")
	importCmd.Flags().StringVar(&importPath, "path", "", "CSV directory or database/workbook file")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Only decode and print row counts")
}
