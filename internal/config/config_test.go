package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "app:\n  name: test\n"))
	if err != nil {
		t.Fatalf("加载默认配置失败: %v", err)
	}
	if cfg.App.Name != "test" {
		t.Fatalf("app.name 应为 test, 实际 %s", cfg.App.Name)
	}
	if cfg.Data.Source != SourceCSV || cfg.Data.Dir != "data" {
		t.Fatalf("默认数据源不正确: %+v", cfg.Data)
	}
	if cfg.Analysis.ShippingPct != 5 || cfg.Analysis.VATPct != 8 || cfg.Analysis.TopN != 10 {
		t.Fatalf("默认分析参数不正确: %+v", cfg.Analysis)
	}
	if cfg.Watch.Cooldown != 6*time.Hour {
		t.Fatalf("watch.cooldown 应为 6h, 实际 %s", cfg.Watch.Cooldown)
	}
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("server.addr 不正确: %s", cfg.Server.Addr)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ARBFINDER_ANALYSIS_TOP_N", "25")
	t.Setenv("ARBFINDER_WATCH_QUERIES", "iphone,galaxy")
	t.Setenv("ARBFINDER_SCHEDULER_INTERVAL", "15m")

	cfg, err := Load(writeConfig(t, "watch:\n  threshold_pct: 3\n"))
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if cfg.Analysis.TopN != 25 {
		t.Fatalf("环境变量应覆盖 top_n, 实际 %d", cfg.Analysis.TopN)
	}
	if len(cfg.Watch.Queries) != 2 || cfg.Watch.Queries[1] != "galaxy" {
		t.Fatalf("watch.queries 解析不正确: %v", cfg.Watch.Queries)
	}
	if cfg.ReloadInterval(time.Minute) != 15*time.Minute {
		t.Fatalf("scheduler.interval 应为 15m, 实际 %s", cfg.Scheduler.Interval)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]string{
		"unknown source":   "data:\n  source: ftp\n",
		"sqlite path":      "data:\n  source: sqlite\n",
		"postgres dsn":     "data:\n  source: postgres\n",
		"top_n range":      "analysis:\n  top_n: 1\n",
		"vat range":        "analysis:\n  vat_pct: 101\n",
		"policy":           "analysis:\n  missing_rate_policy: ignore\n",
		"telegram token":   "alerting:\n  telegram:\n    enabled: true\n    chat_id: x\n",
		"negative trigger": "watch:\n  threshold_pct: -1\n",
		"shipping nan":     "analysis:\n  shipping_pct: .nan\n",
		"threshold nan":    "watch:\n  threshold_pct: .nan\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: 应校验失败", name)
		}
	}
}

func TestReloadIntervalFallback(t *testing.T) {
	cfg := &Config{}
	if cfg.ReloadInterval(time.Minute) != time.Minute {
		t.Fatal("未配置 interval 时应返回 fallback")
	}
}
