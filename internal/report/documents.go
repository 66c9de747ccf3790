package report

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"arbitrage-finder/internal/analysis"
)

// Section names used by the built-in documents.
const (
	SectionByCountry    = "By Country"
	SectionPair         = "Buy/Sell Pair"
	SectionTopYields    = "Top yields"
	SectionLowestYields = "Lowest yields"
)

var pairColumns = []string{
	"buy_country", "buy_median_usd", "sell_country", "sell_median_usd",
	"assumed_shipping_pct", "assumed_vat_pct", "buy_cost", "sell_net",
	"gross_gap_pct", "est_net_margin_pct",
}

var yieldColumns = []string{
	"city", "country", "currency", "price_usd_sqm", "rent_usd_sqm_m", "gross_yield_pct",
}

func num(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// GroupTable lays out groups with one column per key part, then median and count.
func GroupTable(keyNames []string, metric string, groups []analysis.Group) Table {
	columns := make([]string, 0, len(keyNames)+2)
	columns = append(columns, keyNames...)
	columns = append(columns, metric, "count")

	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		row := make([]string, 0, len(columns))
		for i := range keyNames {
			row = append(row, g.Key(i))
		}
		row = append(row, num(g.Median), strconv.Itoa(g.Count))
		rows = append(rows, row)
	}
	return Table{Columns: columns, Rows: rows}
}

// PairTable renders the pair as a single row, or an empty table when there is none.
func PairTable(pair *analysis.Pair) Table {
	t := Table{Columns: pairColumns, Rows: [][]string{}}
	if pair == nil {
		return t
	}
	t.Rows = append(t.Rows, []string{
		pair.Buy.Key(0), num(pair.Buy.Median),
		pair.Sell.Key(0), num(pair.Sell.Median),
		num(pair.ShippingPct), num(pair.VATPct),
		num(pair.BuyCost), num(pair.SellNet),
		num(pair.GrossGapPct), num(pair.NetMarginPct),
	})
	return t
}

// YieldTable lays out yield rows in their given order.
func YieldTable(rows []analysis.YieldRow) Table {
	t := Table{Columns: yieldColumns, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.City, r.Country, r.Currency,
			num(r.PriceUSDSqm), num(r.RentUSDSqmMonth), num(r.GrossYieldPct),
		})
	}
	return t
}

// ProductDocument builds the product arbitrage report.
func ProductDocument(res *analysis.ProductAnalysisResult) Document {
	return Document{
		Title:   fmt.Sprintf("Product arbitrage: %q", res.Params.Query),
		Summary: res.Summary,
		Sections: []Section{
			{Name: SectionByCountry, Table: GroupTable(analysis.ProductKeys, "median_usd", res.ByCountry)},
			{Name: SectionPair, Table: PairTable(res.Pair)},
		},
	}
}

// ServiceDocument builds the service rate report.
func ServiceDocument(res *analysis.ServiceAnalysisResult) Document {
	return Document{
		Title:   fmt.Sprintf("Service rates: %q", res.Params.Query),
		Summary: res.Summary,
		Sections: []Section{
			{Name: SectionByCountry, Table: GroupTable(analysis.ServiceKeys, "median_usd_per_hour", res.ByCountry)},
		},
	}
}

// RealEstateDocument builds the gross-yield report.
func RealEstateDocument(res *analysis.RealEstateAnalysisResult) Document {
	return Document{
		Title:   "Real estate gross yields",
		Summary: res.Summary,
		Sections: []Section{
			{Name: SectionTopYields, Table: YieldTable(res.TopYields)},
			{Name: SectionLowestYields, Table: YieldTable(res.WorstYields)},
		},
	}
}
