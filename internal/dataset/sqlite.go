package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteLoader reads the four tables from a SQLite database file.
type SQLiteLoader struct {
	Path string
}

// NewSQLiteLoader returns a loader for the database at path.
func NewSQLiteLoader(path string) *SQLiteLoader {
	return &SQLiteLoader{Path: path}
}

// Load implements Loader.
func (l *SQLiteLoader) Load(ctx context.Context) (*Dataset, error) {
	db, err := sql.Open("sqlite", l.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	tables := make(map[string]RawTable, len(TableNames))
	for _, name := range TableNames {
		raw, err := readSQLTable(ctx, db, name)
		if err != nil {
			return nil, err
		}
		tables[name] = raw
	}
	return Decode(l.Path, tables)
}

func readSQLTable(ctx context.Context, db *sql.DB, table string) (RawTable, error) {
	cols := Columns[table]
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), quoteIdent(table))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return RawTable{}, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	raw := RawTable{Name: table, Headers: cols}
	for rows.Next() {
		values := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return RawTable{}, fmt.Errorf("scan %s: %w", table, err)
		}
		row := make([]string, len(cols))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			}
		}
		raw.Rows = append(raw.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return RawTable{}, fmt.Errorf("iterate %s: %w", table, err)
	}
	return raw, nil
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

var _ Loader = (*SQLiteLoader)(nil)
