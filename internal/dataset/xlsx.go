package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// XLSXLoader reads the four tables from sheets of one workbook. Sheet names are
// matched case-insensitively against the table names.
type XLSXLoader struct {
	Path string
}

// NewXLSXLoader returns a loader for the workbook at path.
func NewXLSXLoader(path string) *XLSXLoader {
	return &XLSXLoader{Path: path}
}

// Load implements Loader.
func (l *XLSXLoader) Load(ctx context.Context) (*Dataset, error) {
	f, err := excelize.OpenFile(l.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := make(map[string]string)
	for _, name := range f.GetSheetList() {
		sheets[strings.ToLower(strings.TrimSpace(name))] = name
	}

	tables := make(map[string]RawTable, len(TableNames))
	for _, table := range TableNames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sheet, ok := sheets[table]
		if !ok {
			return nil, fmt.Errorf("sheet %s not found in %s", table, l.Path)
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("sheet %s is empty", sheet)
		}

		raw := RawTable{Name: table, Headers: rows[0]}
		for _, rec := range rows[1:] {
			row := make([]string, len(raw.Headers))
			copy(row, rec)
			raw.Rows = append(raw.Rows, row)
		}
		tables[table] = raw
	}
	return Decode(l.Path, tables)
}

var _ Loader = (*XLSXLoader)(nil)
