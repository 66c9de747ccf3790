package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func sampleNote() Notification {
	return Notification{
		At:            time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		RunID:         "run-1",
		Query:         "iphone",
		BuyCountry:    "US",
		BuyMedianUSD:  decimal.NewFromInt(1000),
		SellCountry:   "BR",
		SellMedianUSD: decimal.NewFromInt(1600),
		ShippingPct:   decimal.NewFromInt(5),
		VATPct:        decimal.NewFromInt(8),
		GrossGapPct:   decimal.NewFromInt(60),
		NetMarginPct:  decimal.RequireFromString("41.71"),
		ThresholdPct:  decimal.NewFromInt(10),
	}
}

func TestTelegramNotifierSuccess(t *testing.T) {
	received := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottoken/sendMessage" {
			t.Fatalf("路径应为 /bottoken/sendMessage, 实际 %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("解析请求体失败: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL+"/", time.Second, testLogger())
	if err := notifier.Notify(context.Background(), sampleNote()); err != nil {
		t.Fatalf("Telegram Notify 应成功: %v", err)
	}

	if received["chat_id"] != "chat" {
		t.Fatalf("chat_id 不正确: %#v", received)
	}
	if !strings.Contains(received["text"], "Buy: US ~ $1000.00") {
		t.Fatalf("text 内容不正确: %s", received["text"])
	}
}

func TestTelegramNotifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "description": "chat not found"})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	err := notifier.Notify(context.Background(), sampleNote())
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("ok=false 应报错, 实际 %v", err)
	}
}

func TestTelegramNotifierHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	if err := notifier.Notify(context.Background(), sampleNote()); err == nil {
		t.Fatal("HTTP 502 应报错")
	}
}

func TestRenderMessage(t *testing.T) {
	msg := RenderMessage(sampleNote())
	for _, want := range []string{"Query: iphone", "Sell: BR ~ $1600.00", "Net margin: 41.71% (threshold 10.00%, shipping 5.0%, VAT 8.0%)", "Run: run-1", "2026-01-02T03:04:05Z"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("消息缺少 %q:\n%s", want, msg)
		}
	}
}

func TestLogNotifier(t *testing.T) {
	if err := NewLogNotifier(testLogger()).Notify(context.Background(), sampleNote()); err != nil {
		t.Fatalf("LogNotifier 不应报错: %v", err)
	}
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
