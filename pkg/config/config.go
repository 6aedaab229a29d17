package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"SignalDesk/pkg/logger"
)

type Config struct {
	Environment string        `yaml:"environment" default:"development" validate:"oneof=development staging production test"`
	Log         logger.Config `yaml:"log"`
	Server      Server        `yaml:"server"`
	Metrics     Metrics       `yaml:"metrics"`
	Cache       Cache         `yaml:"cache"`
	ClickHouse  ClickHouse    `yaml:"clickhouse"`
	Scoring     Scoring       `yaml:"scoring"`
	RateLimit   RateLimit     `yaml:"rate_limit"`
}

type Server struct {
	Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"15s"`
}

type Metrics struct {
	Path string `yaml:"path" default:"/metrics" validate:"startswith=/"`
}

type Cache struct {
	Redis struct {
		Enabled     bool          `yaml:"enabled"`
		Addr        string        `yaml:"addr" default:"localhost:6379" validate:"required_if=Enabled true"`
		Password    string        `yaml:"password"`
		DB          int           `yaml:"db" validate:"gte=0"`
		Prefix      string        `yaml:"prefix" default:"signaldesk"`
		DialTimeout time.Duration `yaml:"dial_timeout" default:"2s"`
	} `yaml:"redis"`
	Memory struct {
		MaxEntries int `yaml:"max_entries" default:"10000" validate:"gte=1"`
	} `yaml:"memory"`
	RetryAfter    time.Duration `yaml:"retry_after" default:"30s" validate:"gt=0"`
	SweepSchedule string        `yaml:"sweep_schedule" default:"@every 1m" validate:"required"`
	TTL           struct {
		Candles   time.Duration `yaml:"candles" default:"30s" validate:"gt=0"`
		Trend     time.Duration `yaml:"trend" default:"1m" validate:"gt=0"`
		Composite time.Duration `yaml:"composite" default:"5m" validate:"gt=0"`
		Risk      time.Duration `yaml:"risk" default:"1m" validate:"gt=0"`
	} `yaml:"ttl"`
}

type ClickHouse struct {
	Enabled          bool          `yaml:"enabled"`
	Host             string        `yaml:"host" default:"localhost" validate:"required_if=Enabled true"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"signaldesk"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
	CandleTable      string        `yaml:"candle_table" default:"candles"`
	ScoreTable       string        `yaml:"score_table"`
}

type Scoring struct {
	Symbols   []string `yaml:"symbols" default:"[\"BTCUSDT\",\"ETHUSDT\"]" validate:"min=1,dive,required"`
	Timeframe string   `yaml:"timeframe" default:"1m" validate:"oneof=1s 1m 5m"`
	Bars      int      `yaml:"bars" default:"200" validate:"gte=30,lte=5000"`
	Schedule  string   `yaml:"schedule" default:"@every 1m" validate:"required"`
	Workers   int      `yaml:"workers" default:"4" validate:"gte=1,lte=64"`
}

type RateLimit struct {
	Limit         int           `yaml:"limit" default:"60" validate:"gte=1"`
	Window        time.Duration `yaml:"window" default:"1m" validate:"gt=0"`
	PruneSchedule string        `yaml:"prune_schedule" default:"@every 5m" validate:"required"`
}

var validate = validator.New()

// Load reads a YAML configuration file, applies defaults and validates the
// result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := read(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SIGNALDESK_REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v := os.Getenv("SIGNALDESK_SYMBOLS"); v != "" {
		c.Scoring.Symbols = splitList(v)
	}
	if v := os.Getenv("SIGNALDESK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

func read(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	return &c, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
