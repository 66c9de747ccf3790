package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"arbitrage-finder/internal/alerting"
	"arbitrage-finder/internal/analysis"
	"arbitrage-finder/internal/scheduler"
)

// WatchOptions configure the opportunity watcher.
type WatchOptions struct {
	Queries      []string
	ThresholdPct decimal.Decimal
	Cooldown     time.Duration
	// Params supplies shipping, VAT and top-N; Query is replaced per watched query.
	Params   analysis.ProductParams
	Analysis analysis.Options
}

// Service reloads the dataset on every scheduler slot and alerts on product
// pairs whose estimated net margin reaches the threshold.
type Service struct {
	scheduler *scheduler.Scheduler
	reloader  *Reloader
	snapshot  *Snapshot
	notifier  alerting.Notifier
	opts      WatchOptions
	logger    zerolog.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
	now      func() time.Time
}

// New constructs the watch service.
func New(sched *scheduler.Scheduler, reloader *Reloader, snapshot *Snapshot, notifier alerting.Notifier, opts WatchOptions, logger zerolog.Logger) *Service {
	return &Service{
		scheduler: sched,
		reloader:  reloader,
		snapshot:  snapshot,
		notifier:  notifier,
		opts:      opts,
		logger:    logger.With().Str("component", "service").Logger(),
		lastSent:  make(map[string]time.Time),
		now:       time.Now,
	}
}

// Run begins the watch loop.
func (s *Service) Run(ctx context.Context) error {
	if s.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return s.scheduler.Run(ctx, s.ProcessSlot)
}

// ProcessSlot 重新加载数据并逐个检查关注的查询。
func (s *Service) ProcessSlot(ctx context.Context, slot time.Time) error {
	if s.reloader != nil {
		if err := s.reloader.Reload(ctx, slot); err != nil {
			if s.snapshot.Load() == nil {
				return err
			}
			s.logger.Error().Err(err).Msg("reload failed; keeping previous snapshot")
		}
	}

	ds := s.snapshot.Load()
	if ds == nil {
		return fmt.Errorf("no dataset loaded")
	}

	for _, query := range s.opts.Queries {
		if err := ctx.Err(); err != nil {
			return err
		}

		params := s.opts.Params
		params.Query = query
		res, err := analysis.AnalyzeProducts(ds, params, s.opts.Analysis)
		if err != nil {
			s.logger.Error().Err(err).Str("query", query).Msg("product analysis failed")
			continue
		}
		s.logger.Info().Str("run_id", res.RunID).
			Str("query", query).
			Int("matched", res.MatchedRows).
			Int("skipped", res.SkippedRows).
			Int("groups", res.TotalGroups).
			Msg("watch analysis complete")

		if res.Pair == nil || res.Pair.NetMarginPct.LessThan(s.opts.ThresholdPct) {
			continue
		}
		if !s.claim(query) {
			s.logger.Debug().Str("query", query).Msg("opportunity suppressed by cooldown")
			continue
		}

		note := newNotification(slot, res, s.opts.ThresholdPct)
		if err := s.notifier.Notify(ctx, note); err != nil {
			s.release(query)
			s.logger.Error().Err(err).Str("query", query).Msg("failed to dispatch alert")
		}
	}

	return nil
}

// claim reserves the cooldown window for query; false means an alert was sent recently.
func (s *Service) claim(query string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if last, ok := s.lastSent[query]; ok && now.Sub(last) < s.opts.Cooldown {
		return false
	}
	s.lastSent[query] = now
	return true
}

func (s *Service) release(query string) {
	s.mu.Lock()
	delete(s.lastSent, query)
	s.mu.Unlock()
}

func newNotification(slot time.Time, res *analysis.ProductAnalysisResult, threshold decimal.Decimal) alerting.Notification {
	pair := res.Pair.Rounded()
	return alerting.Notification{
		At:            slot,
		RunID:         res.RunID,
		Query:         res.Params.Query,
		BuyCountry:    pair.Buy.Key(0),
		BuyMedianUSD:  pair.Buy.Median,
		SellCountry:   pair.Sell.Key(0),
		SellMedianUSD: pair.Sell.Median,
		ShippingPct:   pair.ShippingPct,
		VATPct:        pair.VATPct,
		GrossGapPct:   pair.GrossGapPct,
		NetMarginPct:  pair.NetMarginPct,
		ThresholdPct:  threshold,
		AdditionalMsg: res.Summary,
	}
}
