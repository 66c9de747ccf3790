package dataset

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Columns lists the required columns of each table in canonical order.
var Columns = map[string][]string{
	TableProducts:   {"item_name", "brand", "country", "currency", "price_local"},
	TableServices:   {"service_name", "country", "seniority", "currency", "rate_local_per_hour"},
	TableRealEstate: {"city", "country", "currency", "price_per_sqm_local", "rent_per_sqm_local_per_month"},
	TableFX:         {"currency", "usd_per_unit"},
}

// TableNames is the load order used by every loader.
var TableNames = []string{TableProducts, TableServices, TableRealEstate, TableFX}

// RawTable is an untyped table as read from a file or database.
type RawTable struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// nullTokens are matched exactly, after trimming.
var nullTokens = map[string]struct{}{
	"":     {},
	"NULL": {},
	"null": {},
	"NaN":  {},
}

// Decode converts raw tables into a typed Dataset. Text cells are trimmed and
// null tokens become empty; rows with a missing or unparseable amount are dropped.
func Decode(source string, tables map[string]RawTable) (*Dataset, error) {
	ds := &Dataset{
		Source:   source,
		LoadedAt: time.Now().UTC(),
		Dropped:  make(map[string]int, len(TableNames)),
	}

	for _, name := range TableNames {
		raw, ok := tables[name]
		if !ok {
			return nil, fmt.Errorf("table %s not found in %s", name, source)
		}
		cols, err := indexColumns(raw, Columns[name])
		if err != nil {
			return nil, err
		}

		for _, row := range raw.Rows {
			if isBlankRow(row) {
				continue
			}
			if !decodeRow(ds, name, cols, row) {
				ds.Dropped[name]++
			}
		}
	}

	return ds, nil
}

func decodeRow(ds *Dataset, table string, c columnIndex, row []string) bool {
	switch table {
	case TableProducts:
		price, ok := c.number(row, "price_local")
		if !ok {
			return false
		}
		ds.Products = append(ds.Products, Product{
			ItemName:   c.text(row, "item_name"),
			Brand:      c.text(row, "brand"),
			Country:    c.text(row, "country"),
			Currency:   c.text(row, "currency"),
			PriceLocal: price,
		})
	case TableServices:
		rate, ok := c.number(row, "rate_local_per_hour")
		if !ok {
			return false
		}
		ds.Services = append(ds.Services, ServiceQuote{
			ServiceName:      c.text(row, "service_name"),
			Country:          c.text(row, "country"),
			Seniority:        c.text(row, "seniority"),
			Currency:         c.text(row, "currency"),
			RateLocalPerHour: rate,
		})
	case TableRealEstate:
		price, ok := c.number(row, "price_per_sqm_local")
		if !ok {
			return false
		}
		rent, ok := c.number(row, "rent_per_sqm_local_per_month")
		if !ok {
			return false
		}
		ds.RealEstate = append(ds.RealEstate, Property{
			City:                    c.text(row, "city"),
			Country:                 c.text(row, "country"),
			Currency:                c.text(row, "currency"),
			PricePerSqmLocal:        price,
			RentPerSqmLocalPerMonth: rent,
		})
	case TableFX:
		rate, ok := c.number(row, "usd_per_unit")
		if !ok {
			return false
		}
		code := c.text(row, "currency")
		if code == "" {
			return false
		}
		ds.FX = append(ds.FX, FXRate{Currency: code, USDPerUnit: rate})
	}
	return true
}

type columnIndex map[string]int

func indexColumns(raw RawTable, required []string) (columnIndex, error) {
	idx := make(columnIndex, len(raw.Headers))
	for i, h := range raw.Headers {
		key := strings.ToLower(strings.Join(strings.FieldsFunc(h, unicode.IsSpace), " "))
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	var missing []string
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("table %s missing columns: %s", raw.Name, strings.Join(missing, ", "))
	}
	return idx, nil
}

func (c columnIndex) text(row []string, col string) string {
	i := c[col]
	if i >= len(row) {
		return ""
	}
	v := NormaliseText(row[i])
	if _, null := nullTokens[v]; null {
		return ""
	}
	return v
}

func (c columnIndex) number(row []string, col string) (decimal.Decimal, bool) {
	v := c.text(row, col)
	if v == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// NormaliseText strips surrounding whitespace. Inner spacing is kept so that
// substring queries see the cell as stored.
func NormaliseText(s string) string {
	return strings.TrimSpace(s)
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
