package report

import (
	"io"
	"os"
	"path/filepath"
)

// Table is a rendered result table. Cells are already formatted.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Section is one named table of a report. Sections render in slice order.
type Section struct {
	Name  string
	Table Table
}

// Document is a titled report with an optional summary paragraph.
type Document struct {
	Title    string
	Summary  string
	Sections []Section
}

// Section returns the section named name, if present.
func (d Document) Section(name string) (Section, bool) {
	for _, s := range d.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// closeFile closes f and reports its error unless err is already set.
func closeFile(f io.Closer, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
