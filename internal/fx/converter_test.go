package fx

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"arbitrage-finder/internal/dataset"
)

func testTable(t *testing.T) *RateTable {
	t.Helper()
	table, err := NewRateTable([]dataset.FXRate{
		{Currency: "USD", USDPerUnit: decimal.NewFromInt(1)},
		{Currency: "JPY", USDPerUnit: decimal.RequireFromString("0.0067")},
		{Currency: "eur", USDPerUnit: decimal.RequireFromString("1.08")},
	})
	if err != nil {
		t.Fatalf("构建汇率表失败: %v", err)
	}
	return table
}

func TestConvertJPY(t *testing.T) {
	table := testTable(t)
	got, err := table.Convert(decimal.NewFromInt(150000), "JPY")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(1005)) {
		t.Fatalf("expected 1005, got %s", got)
	}
}

func TestConvertCaseInsensitive(t *testing.T) {
	table := testTable(t)
	for _, code := range []string{"EUR", "eur", " Eur "} {
		got, err := table.Convert(decimal.NewFromInt(10), code)
		if err != nil {
			t.Fatalf("convert %q: %v", code, err)
		}
		if !got.Equal(decimal.RequireFromString("10.8")) {
			t.Fatalf("convert %q: expected 10.8, got %s", code, got)
		}
	}
}

func TestConvertIsLinear(t *testing.T) {
	table := testTable(t)
	amounts := []string{"0", "1", "19.99", "150000", "-3.5"}
	for _, code := range []string{"USD", "JPY", "EUR"} {
		for _, raw := range amounts {
			x := decimal.RequireFromString(raw)
			single, err := table.Convert(x, code)
			if err != nil {
				t.Fatalf("convert: %v", err)
			}
			double, err := table.Convert(x.Mul(decimal.NewFromInt(2)), code)
			if err != nil {
				t.Fatalf("convert: %v", err)
			}
			if !double.Equal(single.Mul(decimal.NewFromInt(2))) {
				t.Fatalf("%s %s: convert(2x)=%s, 2*convert(x)=%s", code, raw, double, single.Mul(decimal.NewFromInt(2)))
			}
		}
	}
}

func TestConvertUnknownCurrency(t *testing.T) {
	table := testTable(t)
	_, err := table.Convert(decimal.NewFromInt(1), "GBP")
	if err == nil {
		t.Fatal("未知币种应返回错误")
	}
	if !errors.Is(err, ErrMissingRate) {
		t.Fatalf("expected ErrMissingRate, got %v", err)
	}
	var missing *MissingRateError
	if !errors.As(err, &missing) || missing.Currency != "GBP" {
		t.Fatalf("expected MissingRateError for GBP, got %#v", err)
	}
}

func TestNilTableFails(t *testing.T) {
	var table *RateTable
	if _, err := table.Convert(decimal.NewFromInt(1), "USD"); !errors.Is(err, ErrMissingRate) {
		t.Fatalf("nil table should report missing rate, got %v", err)
	}
}

func TestNewRateTableRejectsDuplicates(t *testing.T) {
	_, err := NewRateTable([]dataset.FXRate{
		{Currency: "usd", USDPerUnit: decimal.NewFromInt(1)},
		{Currency: "USD", USDPerUnit: decimal.NewFromInt(1)},
	})
	if !errors.Is(err, ErrDuplicateRate) {
		t.Fatalf("expected ErrDuplicateRate, got %v", err)
	}
}
