package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"arbitrage-finder/internal/analysis"
	"arbitrage-finder/internal/config"
	"arbitrage-finder/internal/dataset"
	"arbitrage-finder/internal/fx"
)

var sampleFiles = map[string]string{
	dataset.TableProducts: "item_name,brand,country,currency,price_local\n" +
		"iPhone 15,Apple,US,USD,1000\n" +
		"iPhone 15,Apple,JP,JPY,150000\n" +
		"Pixel 8,Google,GB,GBP,700\n",
	dataset.TableServices: "service_name,country,seniority,currency,rate_local_per_hour\n" +
		"Web development,IN,Senior,INR,2500\n" +
		"Web development,US,Senior,USD,95\n",
	dataset.TableRealEstate: "city,country,currency,price_per_sqm_local,rent_per_sqm_local_per_month\n" +
		"Austin,US,USD,2000,10\n" +
		"Tokyo,JP,JPY,1000000,3000\n",
	dataset.TableFX: "currency,usd_per_unit\nUSD,1\nJPY,0.0067\nINR,0.012\n",
}

func newTestApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	for table, body := range sampleFiles {
		if err := os.WriteFile(filepath.Join(dir, dataset.DefaultCSVFiles[table]), []byte(body), 0o644); err != nil {
			t.Fatalf("写入样例数据失败: %v", err)
		}
	}

	cfg := &config.Config{
		Data:     config.DataConfig{Source: config.SourceCSV, Dir: dir},
		Analysis: config.AnalysisConfig{ShippingPct: 5, VATPct: 8, TopN: 10, MissingRatePolicy: "fail"},
		Report:   config.ReportConfig{OutputDir: filepath.Join(dir, "reports")},
	}
	out := &bytes.Buffer{}
	a := NewApp(cfg, zerolog.Nop())
	a.Out = out
	return a, out
}

func TestProductsTable(t *testing.T) {
	a, out := newTestApp(t)
	if err := a.Products(context.Background(), AnalysisOptions{Query: "iphone"}); err != nil {
		t.Fatalf("products 执行失败: %v", err)
	}
	text := out.String()
	for _, want := range []string{"Cheapest median in US ~ $1000 vs highest in JP ~ $1005", "== By Country ==", "== Buy/Sell Pair ==", "1050.00", "-11.94"} {
		if !strings.Contains(text, want) {
			t.Fatalf("输出缺少 %q:\n%s", want, text)
		}
	}
}

func TestProductsJSONOverrides(t *testing.T) {
	a, out := newTestApp(t)
	vat := 0.0
	if err := a.Products(context.Background(), AnalysisOptions{Query: "iphone", VATPct: &vat, TopN: 2, JSON: true}); err != nil {
		t.Fatalf("products 执行失败: %v", err)
	}
	var res analysis.ProductAnalysisResult
	if err := json.Unmarshal(out.Bytes(), &res); err != nil {
		t.Fatalf("JSON 输出无法解析: %v", err)
	}
	if res.Params.VATPct != 0 || res.Params.TopN != 2 || res.Params.ShippingPct != 5 {
		t.Fatalf("参数覆盖不正确: %+v", res.Params)
	}
	if res.Pair == nil || res.Pair.SellNet.StringFixed(2) != "1005.00" {
		t.Fatalf("VAT 为 0 时 sell_net 应等于卖出中位数: %+v", res.Pair)
	}
}

func TestProductsMissingRatePolicy(t *testing.T) {
	a, _ := newTestApp(t)
	err := a.Products(context.Background(), AnalysisOptions{Query: "pixel"})
	if !errors.Is(err, fx.ErrMissingRate) {
		t.Fatalf("fail 策略应返回 MissingRateError, 实际 %v", err)
	}

	a.Config.Analysis.MissingRatePolicy = "skip"
	if err := a.Products(context.Background(), AnalysisOptions{Query: "pixel"}); err != nil {
		t.Fatalf("skip 策略不应报错: %v", err)
	}
}

func TestProductsInvalidTopN(t *testing.T) {
	a, _ := newTestApp(t)
	if err := a.Products(context.Background(), AnalysisOptions{Query: "iphone", TopN: 99}); err == nil {
		t.Fatal("top 超出范围应报错")
	}
}

func TestServicesAndRealEstate(t *testing.T) {
	a, out := newTestApp(t)
	if err := a.Services(context.Background(), AnalysisOptions{Query: "web"}); err != nil {
		t.Fatalf("services 执行失败: %v", err)
	}
	if !strings.Contains(out.String(), "Lowest median in IN (Senior) ~ $30/h") {
		t.Fatalf("services 输出不正确:\n%s", out.String())
	}

	out.Reset()
	if err := a.RealEstate(context.Background(), AnalysisOptions{}); err != nil {
		t.Fatalf("realestate 执行失败: %v", err)
	}
	if !strings.Contains(out.String(), "Best gross yield: Austin (US) ~ 6.0%") {
		t.Fatalf("realestate 输出不正确:\n%s", out.String())
	}
}

func TestReportDefaultsToHTML(t *testing.T) {
	a, _ := newTestApp(t)
	if err := a.Report(context.Background(), ReportOptions{Kind: KindProducts, Analysis: AnalysisOptions{Query: "iphone"}}); err != nil {
		t.Fatalf("report 执行失败: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(a.Config.Report.OutputDir, "products.html"))
	if err != nil {
		t.Fatalf("HTML 报告未生成: %v", err)
	}
	if !strings.Contains(string(raw), "<h2>Buy/Sell Pair</h2>") {
		t.Fatalf("HTML 内容不正确")
	}
}

func TestReportCSVAndPNG(t *testing.T) {
	a, _ := newTestApp(t)
	dir := t.TempDir()
	opts := ReportOptions{
		Kind:     KindServices,
		Analysis: AnalysisOptions{Query: "web"},
		CSVPath:  filepath.Join(dir, "services.csv"),
		PNGPath:  filepath.Join(dir, "services.png"),
	}
	if err := a.Report(context.Background(), opts); err != nil {
		t.Fatalf("report 执行失败: %v", err)
	}
	for _, path := range []string{opts.CSVPath, opts.PNGPath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("%s 未生成: %v", path, err)
		}
	}

	err := a.Report(context.Background(), ReportOptions{Kind: KindRealEstate, PNGPath: filepath.Join(dir, "re.png")})
	if err == nil {
		t.Fatal("realestate 不支持中位数图表")
	}
	if err := a.Report(context.Background(), ReportOptions{Kind: "crypto"}); err == nil {
		t.Fatal("未知 kind 应报错")
	}
}

func TestImportDryRun(t *testing.T) {
	a, out := newTestApp(t)
	if err := a.Import(context.Background(), ImportOptions{DryRun: true}); err != nil {
		t.Fatalf("dry-run 不应报错: %v", err)
	}
	if !strings.Contains(out.String(), "products\t3") || !strings.Contains(out.String(), "fx_rates\t3") {
		t.Fatalf("dry-run 输出不正确:\n%s", out.String())
	}
	if err := a.Import(context.Background(), ImportOptions{Source: config.SourcePostgres}); err == nil {
		t.Fatal("postgres 不能作为导入源")
	}
}

func TestWatchOnceWithoutQueries(t *testing.T) {
	a, _ := newTestApp(t)
	if err := a.Watch(context.Background(), WatchOptions{Once: true}); err == nil {
		t.Fatal("未配置 queries 时应报错")
	}
	threshold := 0.0
	if err := a.Watch(context.Background(), WatchOptions{Once: true, Queries: []string{"iphone"}, ThresholdPct: &threshold}); err != nil {
		t.Fatalf("watch --once 不应报错: %v", err)
	}
}

func TestSimulateAlert(t *testing.T) {
	a, _ := newTestApp(t)
	if err := a.SimulateAlert(context.Background(), "iphone"); err != nil {
		t.Fatalf("LogNotifier 下模拟告警不应失败: %v", err)
	}
	if err := a.SimulateAlert(context.Background(), "walkman"); err == nil {
		t.Fatal("无买卖对时应报错")
	}
}

func TestWatchRejectsNaNParams(t *testing.T) {
	a, _ := newTestApp(t)
	a.Config.Analysis.ShippingPct = math.NaN()
	if err := a.Watch(context.Background(), WatchOptions{Once: true, Queries: []string{"iphone"}}); err == nil {
		t.Fatal("shipping_pct 为 NaN 时应报错而不是继续分析")
	}

	a.Config.Analysis.ShippingPct = 5
	threshold := math.NaN()
	if err := a.Watch(context.Background(), WatchOptions{Once: true, Queries: []string{"iphone"}, ThresholdPct: &threshold}); err == nil {
		t.Fatal("threshold 为 NaN 时应报错")
	}
}
