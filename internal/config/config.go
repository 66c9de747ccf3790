package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"arbitrage-finder/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. ARBFINDER_ANALYSIS_TOP_N.
const EnvPrefix = "ARBFINDER"

// Data source kinds.
const (
	SourceCSV      = "csv"
	SourceSQLite   = "sqlite"
	SourceXLSX     = "xlsx"
	SourcePostgres = "postgres"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Data      DataConfig      `mapstructure:"data"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Report    ReportConfig    `mapstructure:"report"`
	Server    ServerConfig    `mapstructure:"server"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DataConfig selects where the reference tables are loaded from.
type DataConfig struct {
	Source     string `mapstructure:"source"`
	Dir        string `mapstructure:"dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
	XLSXPath   string `mapstructure:"xlsx_path"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	ImportLockKey   int64         `mapstructure:"import_lock_key"`
}

// AnalysisConfig holds defaults for the interactive parameters.
type AnalysisConfig struct {
	ShippingPct       float64 `mapstructure:"shipping_pct"`
	VATPct            float64 `mapstructure:"vat_pct"`
	TopN              int     `mapstructure:"top_n"`
	MissingRatePolicy string  `mapstructure:"missing_rate_policy"`
}

// ReportConfig sets where rendered reports go.
type ReportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SchedulerConfig governs dataset reload cadence. Zero interval disables reloads in serve.
type SchedulerConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	AlignToBucket bool          `mapstructure:"align_to_bucket"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
}

// WatchConfig drives the opportunity watcher.
type WatchConfig struct {
	Queries      []string      `mapstructure:"queries"`
	ThresholdPct float64       `mapstructure:"threshold_pct"`
	Cooldown     time.Duration `mapstructure:"cooldown"`
}

// AlertingConfig defines alert routing.
type AlertingConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig 描述 Telegram 告警参数。
type TelegramConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	BotToken string        `mapstructure:"bot_token"`
	ChatID   string        `mapstructure:"chat_id"`
	APIBase  string        `mapstructure:"api_base"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Load builds configuration from .env, file, environment, and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "arbfinder")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.path", "")
	v.SetDefault("logging.file.max_size_mb", 100)
	v.SetDefault("logging.file.max_backups", 3)
	v.SetDefault("logging.file.max_age_days", 7)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("data.source", SourceCSV)
	v.SetDefault("data.dir", "data")
	v.SetDefault("data.sqlite_path", "")
	v.SetDefault("data.xlsx_path", "")

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.import_lock_key", int64(0x61726266))

	v.SetDefault("analysis.shipping_pct", 5.0)
	v.SetDefault("analysis.vat_pct", 8.0)
	v.SetDefault("analysis.top_n", 10)
	v.SetDefault("analysis.missing_rate_policy", "fail")

	v.SetDefault("report.output_dir", "reports")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("scheduler.interval", "0s")
	v.SetDefault("scheduler.align_to_bucket", true)
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("watch.queries", []string{})
	v.SetDefault("watch.threshold_pct", 10.0)
	v.SetDefault("watch.cooldown", "6h")

	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.bot_token", "")
	v.SetDefault("alerting.telegram.chat_id", "")
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")
	v.SetDefault("alerting.telegram.timeout", "10s")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case SourceCSV:
		if c.Data.Dir == "" {
			return fmt.Errorf("data.dir is required for csv source")
		}
	case SourceSQLite:
		if c.Data.SQLitePath == "" {
			return fmt.Errorf("data.sqlite_path is required for sqlite source")
		}
	case SourceXLSX:
		if c.Data.XLSXPath == "" {
			return fmt.Errorf("data.xlsx_path is required for xlsx source")
		}
	case SourcePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for postgres source")
		}
	default:
		return fmt.Errorf("unknown data.source %q", c.Data.Source)
	}

	if !inRange(c.Analysis.ShippingPct, 0, 100) {
		return fmt.Errorf("analysis.shipping_pct must be within [0, 100]")
	}
	if !inRange(c.Analysis.VATPct, 0, 100) {
		return fmt.Errorf("analysis.vat_pct must be within [0, 100]")
	}
	if c.Analysis.TopN < 2 || c.Analysis.TopN > 50 {
		return fmt.Errorf("analysis.top_n must be within [2, 50]")
	}
	switch strings.ToLower(c.Analysis.MissingRatePolicy) {
	case "", "fail", "skip":
	default:
		return fmt.Errorf("analysis.missing_rate_policy must be fail or skip")
	}

	if c.Scheduler.Interval < 0 {
		return fmt.Errorf("scheduler.interval cannot be negative")
	}
	if !inRange(c.Watch.ThresholdPct, 0, math.MaxFloat64) {
		return fmt.Errorf("watch.threshold_pct cannot be negative")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token 必须配置")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id 必须配置")
		}
	}
	return nil
}

// inRange is false for NaN as well as out-of-bounds values.
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

// ReloadInterval returns the scheduler interval used by watch, falling back to fallback
// when reloads are disabled.
func (c *Config) ReloadInterval(fallback time.Duration) time.Duration {
	if c.Scheduler.Interval > 0 {
		return c.Scheduler.Interval
	}
	return fallback
}
