package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os/signal"
	"syscall"
	"time"

	"arbitrage-finder/internal/analysis"
	"arbitrage-finder/internal/scheduler"
	"arbitrage-finder/internal/service"
)

const defaultWatchInterval = time.Hour

// Watch re-runs the configured product queries on every scheduler slot and notifies
// when a pair's net margin reaches the threshold.
func (a *App) Watch(ctx context.Context, opts WatchOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	queries := a.Config.Watch.Queries
	if len(opts.Queries) > 0 {
		queries = opts.Queries
	}
	if len(queries) == 0 {
		return errors.New("no watch queries configured (watch.queries or --query)")
	}
	threshold := a.Config.Watch.ThresholdPct
	if opts.ThresholdPct != nil {
		threshold = *opts.ThresholdPct
	}

	params := a.productParams(AnalysisOptions{})
	if err := analysis.Validate(params); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return fmt.Errorf("invalid watch threshold %v", threshold)
	}
	aopts, err := a.analysisOptions()
	if err != nil {
		return err
	}

	loader, closeLoader, err := a.openLoader(ctx, a.Config.Data.Source, "")
	if err != nil {
		return err
	}
	defer closeLoader()

	sched, err := scheduler.New(scheduler.Options{
		Interval:     a.Config.ReloadInterval(defaultWatchInterval),
		AlignToStart: a.Config.Scheduler.AlignToBucket,
		StartupDelay: a.Config.Scheduler.StartupDelay,
		Immediate:    true,
	}, a.Logger)
	if err != nil {
		return err
	}

	snapshot := &service.Snapshot{}
	svc := service.New(sched, service.NewReloader(loader, snapshot, nil, a.Logger), snapshot, a.newNotifier(), service.WatchOptions{
		Queries:      queries,
		ThresholdPct: pctDecimal(threshold),
		Cooldown:     a.Config.Watch.Cooldown,
		Params:       params,
		Analysis:     aopts,
	}, a.Logger)

	if opts.Once {
		return svc.ProcessSlot(ctx, time.Now().UTC())
	}

	a.Logger.Info().Strs("queries", queries).Float64("threshold_pct", threshold).Msg("starting watch service")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watch service terminated with error")
		return err
	}

	a.Logger.Info().Msg("watch service stopped")
	return nil
}
