package app

import (
	"context"
	"errors"
	"time"

	"arbitrage-finder/internal/alerting"
)

// SimulateAlert 对指定查询执行一次产品分析, 并无视阈值发送告警, 用于验证告警通道。
func (a *App) SimulateAlert(ctx context.Context, query string) error {
	res, err := a.runProducts(ctx, AnalysisOptions{Query: query})
	if err != nil {
		return err
	}
	if res.Pair == nil {
		return errors.New("查询结果不足两组, 无法生成买卖对: " + res.Summary)
	}

	pair := res.Pair.Rounded()
	note := alerting.Notification{
		At:            time.Now().UTC(),
		RunID:         res.RunID,
		Query:         query,
		BuyCountry:    pair.Buy.Key(0),
		BuyMedianUSD:  pair.Buy.Median,
		SellCountry:   pair.Sell.Key(0),
		SellMedianUSD: pair.Sell.Median,
		ShippingPct:   pair.ShippingPct,
		VATPct:        pair.VATPct,
		GrossGapPct:   pair.GrossGapPct,
		NetMarginPct:  pair.NetMarginPct,
		ThresholdPct:  pctDecimal(a.Config.Watch.ThresholdPct),
		AdditionalMsg: "(simulated)",
	}
	return a.newNotifier().Notify(ctx, note)
}
