package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"arbitrage-finder/internal/alerting"
	"arbitrage-finder/internal/analysis"
	"arbitrage-finder/internal/config"
	"arbitrage-finder/internal/dataset"
	"arbitrage-finder/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	// Out receives tables and JSON printed by the analysis commands.
	Out io.Writer
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{
		Config: cfg,
		Logger: logger.With().Str("component", "app").Logger(),
		Out:    os.Stdout,
	}
}

// AnalysisOptions carry CLI overrides; nil or zero fields fall back to config.
type AnalysisOptions struct {
	Query       string
	ShippingPct *float64
	VATPct      *float64
	TopN        int
	JSON        bool
}

// ReportOptions select what the report command renders and where.
type ReportOptions struct {
	Kind     string
	Analysis AnalysisOptions
	HTMLPath string
	CSVPath  string
	PNGPath  string
}

// ImportOptions configure the import job.
type ImportOptions struct {
	Source string
	Path   string
	DryRun bool
}

// WatchOptions override the watch section of the config.
type WatchOptions struct {
	Queries      []string
	ThresholdPct *float64
	Once         bool
}

func (a *App) analysisOptions() (analysis.Options, error) {
	policy, err := analysis.ParsePolicy(a.Config.Analysis.MissingRatePolicy)
	if err != nil {
		return analysis.Options{}, err
	}
	return analysis.Options{MissingRates: policy}, nil
}

func (a *App) productParams(opts AnalysisOptions) analysis.ProductParams {
	params := analysis.ProductParams{
		Query:       opts.Query,
		ShippingPct: a.Config.Analysis.ShippingPct,
		VATPct:      a.Config.Analysis.VATPct,
		TopN:        a.topN(opts.TopN),
	}
	if opts.ShippingPct != nil {
		params.ShippingPct = *opts.ShippingPct
	}
	if opts.VATPct != nil {
		params.VATPct = *opts.VATPct
	}
	return params
}

func (a *App) topN(override int) int {
	if override > 0 {
		return override
	}
	return a.Config.Analysis.TopN
}

// openLoader builds the loader for source. The returned closer is never nil.
func (a *App) openLoader(ctx context.Context, source, path string) (dataset.Loader, func(), error) {
	noop := func() {}
	switch source {
	case config.SourceCSV:
		if path == "" {
			path = a.Config.Data.Dir
		}
		return dataset.NewCSVLoader(path, nil), noop, nil
	case config.SourceSQLite:
		if path == "" {
			path = a.Config.Data.SQLitePath
		}
		return dataset.NewSQLiteLoader(path), noop, nil
	case config.SourceXLSX:
		if path == "" {
			path = a.Config.Data.XLSXPath
		}
		return dataset.NewXLSXLoader(path), noop, nil
	case config.SourcePostgres:
		store, closeStore, err := a.openStore(ctx)
		if err != nil {
			return nil, noop, err
		}
		return store, closeStore, nil
	}
	return nil, noop, fmt.Errorf("unknown data source %q", source)
}

// loadDataset loads the configured source once.
func (a *App) loadDataset(ctx context.Context) (*dataset.Dataset, error) {
	loader, closeLoader, err := a.openLoader(ctx, a.Config.Data.Source, "")
	if err != nil {
		return nil, err
	}
	defer closeLoader()

	ds, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	for table, n := range ds.Dropped {
		if n > 0 {
			a.Logger.Warn().Str("table", table).Int("dropped", n).Msg("rows dropped while decoding")
		}
	}
	a.Logger.Debug().Str("source", ds.Source).Interface("rows", ds.Rows()).Msg("dataset loaded")
	return ds, nil
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, cfg.Timeout, a.Logger)
	}
	return alerting.NewLogNotifier(a.Logger)
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, fmt.Errorf("database.dsn not configured")
	}

	store, err := storage.Open(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

func pctDecimal(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
