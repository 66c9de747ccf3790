package report

import (
	"encoding/csv"
	"os"
)

// WriteCSV writes table with a header row to path.
func WriteCSV(path string, table Table) (err error) {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeFile(file, &err)

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(table.Columns); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
