package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultCSVFiles maps each table to the file name expected inside a CSV data directory.
var DefaultCSVFiles = map[string]string{
	TableProducts:   "products_prices_sample.csv",
	TableServices:   "services_rates_sample.csv",
	TableRealEstate: "real_estate_sample.csv",
	TableFX:         "fx_rates_sample.csv",
}

// CSVLoader reads the four tables from CSV files in one directory.
type CSVLoader struct {
	Dir   string
	Files map[string]string
}

// NewCSVLoader returns a loader for dir. Missing entries in files fall back to DefaultCSVFiles.
func NewCSVLoader(dir string, files map[string]string) *CSVLoader {
	merged := make(map[string]string, len(DefaultCSVFiles))
	for table, name := range DefaultCSVFiles {
		merged[table] = name
	}
	for table, name := range files {
		if name != "" {
			merged[table] = name
		}
	}
	return &CSVLoader{Dir: dir, Files: merged}
}

// Load implements Loader.
func (l *CSVLoader) Load(ctx context.Context) (*Dataset, error) {
	tables := make(map[string]RawTable, len(TableNames))
	for _, name := range TableNames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(l.Dir, l.Files[name])
		raw, err := ReadCSV(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		raw.Name = name
		tables[name] = raw
	}
	return Decode(l.Dir, tables)
}

// ReadCSV reads a header row plus records from path. A UTF-8 BOM is ignored and
// short records are padded.
func ReadCSV(path string) (RawTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return RawTable{}, err
	}
	b = bytes.TrimPrefix(b, []byte{0xEF, 0xBB, 0xBF})

	r := csv.NewReader(bytes.NewReader(b))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	headers, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return RawTable{}, fmt.Errorf("%s: empty file", path)
		}
		return RawTable{}, err
	}

	table := RawTable{Name: filepath.Base(path), Headers: headers}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return RawTable{}, err
		}
		row := make([]string, len(headers))
		copy(row, rec)
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

var _ Loader = (*CSVLoader)(nil)
