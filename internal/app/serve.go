package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"arbitrage-finder/internal/dataset"
	"arbitrage-finder/internal/httpapi"
	"arbitrage-finder/internal/scheduler"
	"arbitrage-finder/internal/service"
)

// Serve loads the dataset, starts the HTTP API and, when scheduler.interval is set,
// reloads the snapshot in the background.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	aopts, err := a.analysisOptions()
	if err != nil {
		return err
	}

	loader, closeLoader, err := a.openLoader(ctx, a.Config.Data.Source, "")
	if err != nil {
		return err
	}
	defer closeLoader()

	metrics := httpapi.NewMetrics()
	snapshot := &service.Snapshot{}
	reloader := service.NewReloader(loader, snapshot, func(ds *dataset.Dataset) {
		metrics.ObserveSnapshot(ds)
	}, a.Logger)

	if err := reloader.Reload(ctx, time.Now().UTC()); err != nil {
		return err
	}

	if a.Config.Scheduler.Interval > 0 {
		sched, err := scheduler.New(scheduler.Options{
			Interval:     a.Config.Scheduler.Interval,
			AlignToStart: a.Config.Scheduler.AlignToBucket,
			StartupDelay: a.Config.Scheduler.StartupDelay,
		}, a.Logger)
		if err != nil {
			return err
		}
		go func() {
			if err := sched.Run(ctx, reloader.Reload); err != nil && !errors.Is(err, context.Canceled) {
				a.Logger.Error().Err(err).Msg("reload loop stopped")
			}
		}()
	}

	api := httpapi.New(snapshot, httpapi.Defaults{
		ShippingPct: a.Config.Analysis.ShippingPct,
		VATPct:      a.Config.Analysis.VATPct,
		TopN:        a.Config.Analysis.TopN,
		Analysis:    aopts,
	}, metrics, a.Logger)

	srv := &http.Server{
		Addr:         a.Config.Server.Addr,
		Handler:      api.Routes(),
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", srv.Addr).Msg("http api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.Logger.Info().Msg("http api stopped")
	return nil
}
