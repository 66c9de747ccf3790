package storage

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"arbitrage-finder/internal/dataset"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS products (
    row_no      BIGINT NOT NULL,
    item_name   TEXT NOT NULL,
    brand       TEXT,
    country     TEXT NOT NULL,
    currency    TEXT NOT NULL,
    price_local NUMERIC NOT NULL
);
CREATE TABLE IF NOT EXISTS services (
    row_no              BIGINT NOT NULL,
    service_name        TEXT NOT NULL,
    country             TEXT NOT NULL,
    seniority           TEXT,
    currency            TEXT NOT NULL,
    rate_local_per_hour NUMERIC NOT NULL
);
CREATE TABLE IF NOT EXISTS realestate (
    row_no                       BIGINT NOT NULL,
    city                         TEXT NOT NULL,
    country                      TEXT NOT NULL,
    currency                     TEXT NOT NULL,
    price_per_sqm_local          NUMERIC NOT NULL,
    rent_per_sqm_local_per_month NUMERIC NOT NULL
);
CREATE TABLE IF NOT EXISTS fx_rates (
    row_no       BIGINT NOT NULL,
    currency     TEXT PRIMARY KEY,
    usd_per_unit NUMERIC NOT NULL
);
ALTER TABLE products ADD COLUMN IF NOT EXISTS row_no BIGINT NOT NULL DEFAULT 0;
ALTER TABLE services ADD COLUMN IF NOT EXISTS row_no BIGINT NOT NULL DEFAULT 0;
ALTER TABLE realestate ADD COLUMN IF NOT EXISTS row_no BIGINT NOT NULL DEFAULT 0;
ALTER TABLE fx_rates ADD COLUMN IF NOT EXISTS row_no BIGINT NOT NULL DEFAULT 0;`

// rowNoColumn stores the source row index; reads order by it.
const rowNoColumn = "row_no"

// copyColumns is the COPY column list of table: row_no, then dataset.Columns.
func copyColumns(table string) []string {
	return append([]string{rowNoColumn}, dataset.Columns[table]...)
}

// numeric converts a decimal into the pgx binary numeric representation used by COPY.
func numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// copyRows flattens one dataset table into COPY rows following copyColumns order.
// row_no is the slice index.
func copyRows(ds *dataset.Dataset, table string) [][]any {
	switch table {
	case dataset.TableProducts:
		rows := make([][]any, 0, len(ds.Products))
		for i, p := range ds.Products {
			rows = append(rows, []any{int64(i), p.ItemName, p.Brand, p.Country, p.Currency, numeric(p.PriceLocal)})
		}
		return rows
	case dataset.TableServices:
		rows := make([][]any, 0, len(ds.Services))
		for i, s := range ds.Services {
			rows = append(rows, []any{int64(i), s.ServiceName, s.Country, s.Seniority, s.Currency, numeric(s.RateLocalPerHour)})
		}
		return rows
	case dataset.TableRealEstate:
		rows := make([][]any, 0, len(ds.RealEstate))
		for i, r := range ds.RealEstate {
			rows = append(rows, []any{int64(i), r.City, r.Country, r.Currency, numeric(r.PricePerSqmLocal), numeric(r.RentPerSqmLocalPerMonth)})
		}
		return rows
	case dataset.TableFX:
		rows := make([][]any, 0, len(ds.FX))
		for i, fx := range ds.FX {
			rows = append(rows, []any{int64(i), fx.Currency, numeric(fx.USDPerUnit)})
		}
		return rows
	}
	return nil
}
