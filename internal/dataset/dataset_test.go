package dataset

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var fixture = map[string][][]string{
	TableProducts: {
		{"item_name", "brand", "country", "currency", "price_local"},
		{"iPhone 15 Pro 128GB", "Apple", "US", "USD", "1000"},
		{"iPhone 15 Pro 128GB", "Apple", "JP", "JPY", "150000"},
		{"  Galaxy   S24 ", "NULL", "DE", "EUR", "899.90"},
		{"Pixel 8", "Google", "US", "USD", "NaN"},
	},
	TableServices: {
		{"service_name", "country", "seniority", "currency", "rate_local_per_hour"},
		{"Web development", "IN", "Senior", "INR", "2500"},
		{"Web development", "US", "Senior", "USD", "95"},
	},
	TableRealEstate: {
		{"city", "country", "currency", "price_per_sqm_local", "rent_per_sqm_local_per_month"},
		{"Lisbon", "PT", "EUR", "5000", "20"},
		{"Austin", "US", "USD", "2000", "null"},
	},
	TableFX: {
		{"currency", "usd_per_unit"},
		{"USD", "1"},
		{"JPY", "0.0067"},
		{"EUR", "1.08"},
		{"INR", "0.012"},
	},
}

func writeFixtureCSV(t *testing.T, dir string) {
	t.Helper()
	for table, rows := range fixture {
		var b strings.Builder
		for _, row := range rows {
			b.WriteString(strings.Join(row, ","))
			b.WriteString("\n")
		}
		path := filepath.Join(dir, DefaultCSVFiles[table])
		if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func assertFixtureDataset(t *testing.T, ds *Dataset) {
	t.Helper()
	if len(ds.Products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(ds.Products))
	}
	if ds.Dropped[TableProducts] != 1 {
		t.Fatalf("expected 1 dropped product, got %d", ds.Dropped[TableProducts])
	}
	galaxy := ds.Products[2]
	if galaxy.ItemName != "Galaxy   S24" {
		t.Fatalf("item name should only be trimmed, got %q", galaxy.ItemName)
	}
	if galaxy.Brand != "" {
		t.Fatalf("NULL brand should be empty, got %q", galaxy.Brand)
	}
	if !galaxy.PriceLocal.Equal(decimal.RequireFromString("899.9")) {
		t.Fatalf("unexpected price %s", galaxy.PriceLocal)
	}
	if !ds.Products[1].PriceLocal.Equal(decimal.NewFromInt(150000)) {
		t.Fatalf("unexpected JP price %s", ds.Products[1].PriceLocal)
	}
	if len(ds.Services) != 2 {
		t.Fatalf("expected 2 services, got %d", len(ds.Services))
	}
	if len(ds.RealEstate) != 1 || ds.Dropped[TableRealEstate] != 1 {
		t.Fatalf("expected 1 property and 1 dropped, got %d/%d", len(ds.RealEstate), ds.Dropped[TableRealEstate])
	}
	if len(ds.FX) != 4 {
		t.Fatalf("expected 4 fx rows, got %d", len(ds.FX))
	}
	if !ds.FX[1].USDPerUnit.Equal(decimal.RequireFromString("0.0067")) {
		t.Fatalf("unexpected JPY rate %s", ds.FX[1].USDPerUnit)
	}
}

func TestCSVLoader(t *testing.T) {
	dir := t.TempDir()
	writeFixtureCSV(t, dir)

	ds, err := NewCSVLoader(dir, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertFixtureDataset(t, ds)
	if ds.Source != dir {
		t.Fatalf("source should be the directory, got %q", ds.Source)
	}
}

func TestCSVLoaderMissingFile(t *testing.T) {
	dir := t.TempDir()
	writeFixtureCSV(t, dir)
	if err := os.Remove(filepath.Join(dir, DefaultCSVFiles[TableFX])); err != nil {
		t.Fatal(err)
	}
	if _, err := NewCSVLoader(dir, nil).Load(context.Background()); err == nil {
		t.Fatal("缺少 fx 文件时应报错")
	}
}

func TestReadCSVStripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.csv")
	content := "\xEF\xBB\xBFcurrency,usd_per_unit\nUSD,1\nEUR\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	raw, err := ReadCSV(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if raw.Headers[0] != "currency" {
		t.Fatalf("BOM should be stripped, got %q", raw.Headers[0])
	}
	if len(raw.Rows) != 2 || raw.Rows[1][1] != "" {
		t.Fatalf("short rows should be padded: %#v", raw.Rows)
	}
}

func TestDecodeMissingColumn(t *testing.T) {
	tables := map[string]RawTable{}
	for _, name := range TableNames {
		tables[name] = RawTable{Name: name, Headers: Columns[name]}
	}
	tables[TableFX] = RawTable{Name: TableFX, Headers: []string{"currency"}}

	_, err := Decode("memory", tables)
	if err == nil || !strings.Contains(err.Error(), "usd_per_unit") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func TestDecodeHeadersCaseInsensitive(t *testing.T) {
	tables := map[string]RawTable{}
	for _, name := range TableNames {
		tables[name] = RawTable{Name: name, Headers: Columns[name]}
	}
	tables[TableFX] = RawTable{
		Name:    TableFX,
		Headers: []string{" Currency ", "USD_PER_UNIT"},
		Rows:    [][]string{{"usd", "1"}, {"", ""}},
	}

	ds, err := Decode("memory", tables)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ds.FX) != 1 || ds.Dropped[TableFX] != 0 {
		t.Fatalf("blank rows should be skipped silently: %#v %#v", ds.FX, ds.Dropped)
	}
}

func TestSQLiteLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for table, rows := range fixture {
		defs := make([]string, len(rows[0]))
		for i, col := range rows[0] {
			defs[i] = quoteIdent(col) + " TEXT"
		}
		if _, err := db.Exec("CREATE TABLE " + quoteIdent(table) + " (" + strings.Join(defs, ",") + ")"); err != nil {
			t.Fatalf("create %s: %v", table, err)
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(rows[0])), ",")
		for _, row := range rows[1:] {
			args := make([]any, len(row))
			for i, v := range row {
				args[i] = v
			}
			if _, err := db.Exec("INSERT INTO "+quoteIdent(table)+" VALUES ("+placeholders+")", args...); err != nil {
				t.Fatalf("insert %s: %v", table, err)
			}
		}
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	ds, err := NewSQLiteLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertFixtureDataset(t, ds)
}

func TestXLSXLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	f := excelize.NewFile()
	for table, rows := range fixture {
		if _, err := f.NewSheet(table); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for i, row := range rows {
			cells := make([]interface{}, len(row))
			for j, v := range row {
				cells[j] = v
			}
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetSheetRow(table, cell, &cells); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = f.Close()

	ds, err := NewXLSXLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	assertFixtureDataset(t, ds)
}

func TestDecodeNullTokensExact(t *testing.T) {
	tables := map[string]RawTable{
		TableProducts: {Name: TableProducts, Headers: Columns[TableProducts], Rows: [][]string{
			{"Walkman", "None", "JP", "JPY", "9000"},
			{"Discman", " null ", "JP", "JPY", "12000"},
			{"Minidisc", "Sony", "JP", "JPY", "NAN"},
		}},
		TableServices:   {Name: TableServices, Headers: Columns[TableServices]},
		TableRealEstate: {Name: TableRealEstate, Headers: Columns[TableRealEstate]},
		TableFX:         {Name: TableFX, Headers: Columns[TableFX]},
	}
	ds, err := Decode("memory", tables)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ds.Products) != 2 || ds.Dropped[TableProducts] != 1 {
		t.Fatalf("expected 2 products and 1 dropped, got %d/%d", len(ds.Products), ds.Dropped[TableProducts])
	}
	if ds.Products[0].Brand != "None" {
		t.Fatalf("None is a real brand, got %q", ds.Products[0].Brand)
	}
	if ds.Products[1].Brand != "" {
		t.Fatalf("trimmed null should be empty, got %q", ds.Products[1].Brand)
	}
}
