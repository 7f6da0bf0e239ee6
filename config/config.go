package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Binance   BinanceConfig   `mapstructure:"binance"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
}

type BinanceConfig struct {
	REST RESTConfig `mapstructure:"rest"`
	WS   WSConfig   `mapstructure:"ws"`
}

type RESTConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}
type WSConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// MonitorConfig describes what the pipeline watches and how it buckets ticks.
type MonitorConfig struct {
	Symbols        []string      `mapstructure:"symbols"`         // monitored symbol set, e.g. ["BTCUSDT", "ETHUSDT"]
	Timeframe      string        `mapstructure:"timeframe"`       // resample bucket width, e.g. "1s"
	FlushThreshold int           `mapstructure:"flush_threshold"` // ticks buffered per symbol before a flush
	Backfill       time.Duration `mapstructure:"backfill"`        // REST history lookback on startup
}

// AnalyticsConfig holds the serving-side analytics defaults.
type AnalyticsConfig struct {
	AlertZScore float64 `mapstructure:"alert_zscore"` // |z| above this raises an alert
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"` // listen address for the query API, e.g. ":8000"
}

// Options defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// Load loads application configuration using Viper.
// It reads from config.yaml and overrides with environment variables.
func Load() *Config {
	v := viper.New()

	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")

	ex, _ := os.Executable()
	if strings.Contains(ex, "go-build") {
		pwd, _ := os.Getwd()
		v.AddConfigPath(filepath.Join(pwd, "../../config"))
	} else {
		v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
	}

	// Support environment variables with dot notation (e.g., BINANCE_WS_URL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("monitor.timeframe", "1s")
	v.SetDefault("monitor.flush_threshold", 50)
	v.SetDefault("analytics.alert_zscore", 2.0)

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("failed to read config: %v", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	return &cfg
}
