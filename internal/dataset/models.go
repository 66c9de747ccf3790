package dataset

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Table names shared by every source (CSV file stems, SQLite/PostgreSQL tables, XLSX sheets).
const (
	TableProducts   = "products"
	TableServices   = "services"
	TableRealEstate = "realestate"
	TableFX         = "fx_rates"
)

// Product is one product listing observed in a country.
type Product struct {
	ItemName   string          `json:"item_name"`
	Brand      string          `json:"brand"`
	Country    string          `json:"country"`
	Currency   string          `json:"currency"`
	PriceLocal decimal.Decimal `json:"price_local"`
}

// ServiceQuote is one hourly rate quote for a service.
type ServiceQuote struct {
	ServiceName      string          `json:"service_name"`
	Country          string          `json:"country"`
	Seniority        string          `json:"seniority"`
	Currency         string          `json:"currency"`
	RateLocalPerHour decimal.Decimal `json:"rate_local_per_hour"`
}

// Property is one real-estate observation per square metre.
type Property struct {
	City                    string          `json:"city"`
	Country                 string          `json:"country"`
	Currency                string          `json:"currency"`
	PricePerSqmLocal        decimal.Decimal `json:"price_per_sqm_local"`
	RentPerSqmLocalPerMonth decimal.Decimal `json:"rent_per_sqm_local_per_month"`
}

// FXRate is the USD value of one unit of a currency.
type FXRate struct {
	Currency   string          `json:"currency"`
	USDPerUnit decimal.Decimal `json:"usd_per_unit"`
}

// Dataset is an immutable snapshot of the four source tables.
type Dataset struct {
	Products   []Product
	Services   []ServiceQuote
	RealEstate []Property
	FX         []FXRate

	Source   string
	LoadedAt time.Time
	// Dropped counts rows discarded during decoding, keyed by table name.
	Dropped map[string]int
}

// Rows reports the number of decoded rows per table.
func (d *Dataset) Rows() map[string]int {
	if d == nil {
		return map[string]int{}
	}
	return map[string]int{
		TableProducts:   len(d.Products),
		TableServices:   len(d.Services),
		TableRealEstate: len(d.RealEstate),
		TableFX:         len(d.FX),
	}
}

// Loader produces a fresh Dataset from some backing store.
type Loader interface {
	Load(ctx context.Context) (*Dataset, error)
}
