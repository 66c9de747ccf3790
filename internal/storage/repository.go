package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"arbitrage-finder/internal/dataset"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
	// ErrImportLocked is returned when another import holds the advisory lock.
	ErrImportLocked = errors.New("storage: another import is running")
)

const (
	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// Importer replaces the stored tables with a dataset.
type Importer interface {
	ImportDataset(ctx context.Context, ds *dataset.Dataset) (map[string]int64, error)
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store reads and writes the reference tables in PostgreSQL.
type Store struct {
	pool    *pgxpool.Pool
	lockKey int64
}

// NewStore wires a pgx pool into a Store. lockKey guards concurrent imports.
func NewStore(pool *pgxpool.Pool, lockKey int64) *Store {
	return &Store{pool: pool, lockKey: lockKey}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// EnsureSchema creates the reference tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// 解锁失败时连接释放后 session 锁也会随之消失
		_, _ = conn.Exec(ctxUnlock, advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

// Load implements dataset.Loader. Values are read as text and decoded with the
// same rules as file sources.
func (s *Store) Load(ctx context.Context) (*dataset.Dataset, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	tables := make(map[string]dataset.RawTable, len(dataset.TableNames))
	for _, name := range dataset.TableNames {
		raw, err := readTable(ctx, pool, name)
		if err != nil {
			return nil, err
		}
		tables[name] = raw
	}
	return dataset.Decode("postgres", tables)
}

// ImportDataset truncates the four tables and copies ds into them in one transaction.
// It returns the number of rows copied per table.
func (s *Store) ImportDataset(ctx context.Context, ds *dataset.Dataset) (map[string]int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, errors.New("import dataset: dataset is nil")
	}

	unlock, acquired, err := s.TryAdvisoryLock(ctx, s.lockKey)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrImportLocked
	}
	defer unlock()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	counts := make(map[string]int64, len(dataset.TableNames))
	for _, name := range dataset.TableNames {
		if _, err := tx.Exec(ctx, "TRUNCATE "+pgx.Identifier{name}.Sanitize()); err != nil {
			return nil, fmt.Errorf("truncate %s: %w", name, err)
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{name}, copyColumns(name), pgx.CopyFromRows(copyRows(ds, name)))
		if err != nil {
			return nil, fmt.Errorf("copy %s: %w", name, err)
		}
		counts[name] = n
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	return counts, nil
}

// selectSQL reads table as text in import order.
func selectSQL(table string) string {
	cols := dataset.Columns[table]
	selects := make([]string, len(cols))
	for i, c := range cols {
		selects[i] = pgx.Identifier{c}.Sanitize() + "::text"
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(selects, ", "), pgx.Identifier{table}.Sanitize(), pgx.Identifier{rowNoColumn}.Sanitize())
}

func readTable(ctx context.Context, pool *pgxpool.Pool, table string) (dataset.RawTable, error) {
	cols := dataset.Columns[table]
	rows, err := pool.Query(ctx, selectSQL(table))
	if err != nil {
		return dataset.RawTable{}, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	raw := dataset.RawTable{Name: table, Headers: cols}
	for rows.Next() {
		values := make([]pgtype.Text, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return dataset.RawTable{}, fmt.Errorf("scan %s: %w", table, err)
		}
		row := make([]string, len(cols))
		for i, v := range values {
			if v.Valid {
				row[i] = v.String
			}
		}
		raw.Rows = append(raw.Rows, row)
	}
	if rows.Err() != nil {
		return dataset.RawTable{}, rows.Err()
	}
	return raw, nil
}

var (
	_ dataset.Loader = (*Store)(nil)
	_ Importer       = (*Store)(nil)
	_ AdvisoryLocker = (*Store)(nil)
)
