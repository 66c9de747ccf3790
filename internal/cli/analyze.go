package cli

import (
	"github.com/spf13/cobra"

	"arbitrage-finder/internal/app"
)

// analysisFlags 为三个分析命令以及 report 共用。
type analysisFlags struct {
	query    string
	shipping float64
	vat      float64
	top      int
	json     bool
}

func (f *analysisFlags) register(cmd *cobra.Command, withQuery, withCosts bool) {
	if withQuery {
		cmd.Flags().StringVarP(&f.query, "query", "q", "", "Case-insensitive substring to match")
	}
	if withCosts {
		cmd.Flags().Float64Var(&f.shipping, "shipping", 0, "Shipping cost in percent (default from config)")
		cmd.Flags().Float64Var(&f.vat, "vat", 0, "VAT/sales tax in percent (default from config)")
	}
	cmd.Flags().IntVar(&f.top, "top", 0, "Number of rows per table (default from config)")
	cmd.Flags().BoolVar(&f.json, "json", false, "Print the result as JSON")
}

// options 仅在 flag 被显式设置时覆盖配置, 允许 --vat 0。
func (f *analysisFlags) options(cmd *cobra.Command) app.AnalysisOptions {
	opts := app.AnalysisOptions{Query: f.query, TopN: f.top, JSON: f.json}
	if cmd.Flags().Changed("shipping") {
		v := f.shipping
		opts.ShippingPct = &v
	}
	if cmd.Flags().Changed("vat") {
		v := f.vat
		opts.VATPct = &v
	}
	return opts
}

var (
	productFlags    analysisFlags
	serviceFlags    analysisFlags
	realEstateFlags analysisFlags
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Compare median USD product prices across countries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Products(cmd.Context(), productFlags.options(cmd))
	},
}

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "Compare median USD hourly service rates by country and seniority",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Services(cmd.Context(), serviceFlags.options(cmd))
	},
}

var realEstateCmd = &cobra.Command{
	Use:     "realestate",
	Aliases: []string{"real-estate"},
	Short:   "Rank cities by gross rental yield",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().RealEstate(cmd.Context(), realEstateFlags.options(cmd))
	},
}

func init() {
	productFlags.register(productsCmd, true, true)
	serviceFlags.register(servicesCmd, true, false)
	realEstateFlags.register(realEstateCmd, false, false)
}
