package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Notification 封装一次套利机会的上下文。
type Notification struct {
	At            time.Time
	RunID         string
	Query         string
	BuyCountry    string
	BuyMedianUSD  decimal.Decimal
	SellCountry   string
	SellMedianUSD decimal.Decimal
	ShippingPct   decimal.Decimal
	VATPct        decimal.Decimal
	GrossGapPct   decimal.Decimal
	NetMarginPct  decimal.Decimal
	ThresholdPct  decimal.Decimal
	AdditionalMsg string
}

// Notifier 定义告警输送接口。
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// TelegramNotifier 通过 Telegram Bot API 推送消息。
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
	logger   zerolog.Logger
}

// NewTelegramNotifier 构造 Telegram 告警器。
func NewTelegramNotifier(botToken, chatID, baseURL string, timeout time.Duration, logger zerolog.Logger) *TelegramNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "alert_telegram").Logger(),
	}
}

// Notify 调用 sendMessage API 推送文本。
func (n *TelegramNotifier) Notify(ctx context.Context, note Notification) error {
	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    RenderMessage(note),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram 响应码异常: %d", resp.StatusCode)
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err == nil {
		if !result.OK {
			return fmt.Errorf("telegram 返回 ok=false: %s", result.Description)
		}
	}

	n.logger.Info().Str("query", note.Query).
		Str("buy", note.BuyCountry).
		Str("sell", note.SellCountry).
		Str("net_margin_pct", note.NetMarginPct.StringFixed(2)).
		Msg("告警已发送 (Telegram)")
	return nil
}

// LogNotifier 仅写日志, 未配置 Telegram 时使用。
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier 构造日志告警器。
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "alert_log").Logger()}
}

// Notify writes the opportunity as a warning-level event.
func (n *LogNotifier) Notify(_ context.Context, note Notification) error {
	n.logger.Warn().
		Str("run_id", note.RunID).
		Str("query", note.Query).
		Str("buy", note.BuyCountry).
		Str("sell", note.SellCountry).
		Str("gross_gap_pct", note.GrossGapPct.StringFixed(2)).
		Str("net_margin_pct", note.NetMarginPct.StringFixed(2)).
		Str("threshold_pct", note.ThresholdPct.StringFixed(2)).
		Msg("arbitrage opportunity")
	return nil
}

// RenderMessage formats a notification as plain text.
func RenderMessage(note Notification) string {
	builder := strings.Builder{}
	builder.WriteString("[Arbitrage Opportunity]\n")
	builder.WriteString(fmt.Sprintf("Query: %s\n", note.Query))
	if !note.At.IsZero() {
		builder.WriteString(fmt.Sprintf("At: %s UTC\n", note.At.UTC().Format(time.RFC3339)))
	}
	builder.WriteString(fmt.Sprintf("Buy: %s ~ $%s\n", note.BuyCountry, note.BuyMedianUSD.StringFixed(2)))
	builder.WriteString(fmt.Sprintf("Sell: %s ~ $%s\n", note.SellCountry, note.SellMedianUSD.StringFixed(2)))
	builder.WriteString(fmt.Sprintf("Gross gap: %s%%\n", note.GrossGapPct.StringFixed(2)))
	builder.WriteString(fmt.Sprintf("Net margin: %s%% (threshold %s%%, shipping %s%%, VAT %s%%)\n",
		note.NetMarginPct.StringFixed(2), note.ThresholdPct.StringFixed(2),
		note.ShippingPct.StringFixed(1), note.VATPct.StringFixed(1)))
	if note.RunID != "" {
		builder.WriteString(fmt.Sprintf("Run: %s\n", note.RunID))
	}
	if note.AdditionalMsg != "" {
		builder.WriteString(note.AdditionalMsg)
	}
	return builder.String()
}

var (
	_ Notifier = (*TelegramNotifier)(nil)
	_ Notifier = (*LogNotifier)(nil)
)
