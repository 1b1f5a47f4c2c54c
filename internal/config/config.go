// Package config loads server settings from an optional YAML file and
// FXDESK_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // trade-date zone must resolve in minimal images

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FXDESK_HTTP_ADDR.
const EnvPrefix = "FXDESK"

// Config is the full server configuration.
type Config struct {
	HTTP       HTTPConfig       `mapstructure:"http"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Log        LogConfig        `mapstructure:"log"`
	Market     MarketConfig     `mapstructure:"market"`
	Calendar   CalendarConfig   `mapstructure:"calendar"`
	Stream     StreamConfig     `mapstructure:"stream"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

// MetricsConfig serves /metrics on its own listener when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type ClickHouseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// KafkaConfig enables the market-rate feed when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type MarketConfig struct {
	Source   string `mapstructure:"source"`
	Timezone string `mapstructure:"timezone"`
}

// CalendarConfig lists extra YYYY-MM-DD holidays merged into the built-in tables.
type CalendarConfig struct {
	KRHolidays []string `mapstructure:"kr_holidays"`
	USHolidays []string `mapstructure:"us_holidays"`
}

type StreamConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("clickhouse.dsn", "")
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "fx.market-rates")
	v.SetDefault("kafka.group_id", "fxdesk")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("market.source", "infomax")
	v.SetDefault("market.timezone", "Asia/Seoul")
	v.SetDefault("calendar.kr_holidays", []string{})
	v.SetDefault("calendar.us_holidays", []string{})
	v.SetDefault("stream.interval", time.Second)
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.Market.Source == "" {
		return fmt.Errorf("market.source is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Stream.Interval <= 0 {
		return fmt.Errorf("stream.interval must be positive, got %s", c.Stream.Interval)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka.topic is required when kafka.brokers is set")
	}
	switch c.Log.Encoding {
	case "json", "console":
	default:
		return fmt.Errorf("log.encoding %q: want json or console", c.Log.Encoding)
	}
	return nil
}

// Location resolves market.timezone, the zone trade dates are taken in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Market.Timezone)
	if err != nil {
		return nil, fmt.Errorf("market.timezone: %w", err)
	}
	return loc, nil
}
