package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"arbitrage-finder/internal/dataset"
)

// Snapshot holds the dataset currently served. Readers keep whatever pointer they
// loaded; a reload swaps in a new dataset without touching the old one.
type Snapshot struct {
	current atomic.Pointer[dataset.Dataset]
}

// Load returns the current dataset or nil before the first successful load.
func (s *Snapshot) Load() *dataset.Dataset {
	return s.current.Load()
}

// Store publishes ds as the current dataset.
func (s *Snapshot) Store(ds *dataset.Dataset) {
	s.current.Store(ds)
}

// Reloader rebuilds the snapshot from a loader.
type Reloader struct {
	loader   dataset.Loader
	snapshot *Snapshot
	logger   zerolog.Logger
	onLoad   func(*dataset.Dataset)
}

// NewReloader wires a loader into snapshot. onLoad, if set, runs after each successful swap.
func NewReloader(loader dataset.Loader, snapshot *Snapshot, onLoad func(*dataset.Dataset), logger zerolog.Logger) *Reloader {
	return &Reloader{
		loader:   loader,
		snapshot: snapshot,
		onLoad:   onLoad,
		logger:   logger.With().Str("component", "reloader").Logger(),
	}
}

// Reload loads a fresh dataset and swaps it in. On failure the previous snapshot stays.
// Its signature matches scheduler.TickFunc.
func (r *Reloader) Reload(ctx context.Context, slot time.Time) error {
	ds, err := r.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("reload dataset: %w", err)
	}
	r.snapshot.Store(ds)

	event := r.logger.Info().Str("source", ds.Source).Time("slot", slot)
	for table, n := range ds.Rows() {
		event = event.Int(table, n)
	}
	event.Msg("dataset loaded")
	for table, n := range ds.Dropped {
		if n > 0 {
			r.logger.Warn().Str("table", table).Int("dropped", n).Msg("rows dropped while decoding")
		}
	}

	if r.onLoad != nil {
		r.onLoad(ds)
	}
	return nil
}
