package app

import (
	"context"
	"errors"
	"fmt"

	"arbitrage-finder/internal/config"
	"arbitrage-finder/internal/dataset"
)

// Import copies a dataset from a file source into the PostgreSQL tables.
func (a *App) Import(ctx context.Context, opts ImportOptions) error {
	source := opts.Source
	if source == "" {
		source = a.Config.Data.Source
	}
	if source == config.SourcePostgres {
		return errors.New("import source must be csv, sqlite or xlsx")
	}

	loader, closeLoader, err := a.openLoader(ctx, source, opts.Path)
	if err != nil {
		return err
	}
	defer closeLoader()

	ds, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	rows := ds.Rows()
	for table, n := range ds.Dropped {
		if n > 0 {
			a.Logger.Warn().Str("table", table).Int("dropped", n).Msg("rows dropped while decoding")
		}
	}

	if opts.DryRun {
		a.Logger.Warn().Msg("import dry-run: 不会写入数据库")
		for _, table := range dataset.TableNames {
			fmt.Fprintf(a.Out, "%s\t%d\n", table, rows[table])
		}
		return nil
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}
	counts, err := store.ImportDataset(ctx, ds)
	if err != nil {
		return err
	}

	event := a.Logger.Info().Str("source", ds.Source)
	for _, table := range dataset.TableNames {
		event = event.Int64(table, counts[table])
	}
	event.Msg("import complete")
	return nil
}
