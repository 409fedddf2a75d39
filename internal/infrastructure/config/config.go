package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		Debug           bool `toml:"debug"`
		SnapEveryMin    int  `toml:"snap_every_min"`
		FlushIntervalMs int  `toml:"flush_interval_ms"`
	} `toml:"app"`

	Spread struct {
		MinVolume24h float64  `toml:"min_volume_24h"`
		Blacklist    []string `toml:"blacklist"`
	} `toml:"spread"`

	Mexc struct {
		SpotWsURL      string `toml:"spot_ws_url"`    // e.g. wss://wbs-api.mexc.com/ws
		FuturesWsURL   string `toml:"futures_ws_url"` // e.g. wss://contract.mexc.com/edge
		SpotRestURL    string `toml:"spot_rest_url"`
		FuturesRestURL string `toml:"futures_rest_url"`
	} `toml:"mexc"`

	Storage struct {
		Driver      string `toml:"driver"` // "postgres", "sqlite" or "" (dry run)
		PostgresDSN string `toml:"postgres_dsn"`
		SqlitePath  string `toml:"sqlite_path"`
	} `toml:"storage"`

	Redis struct {
		Enabled bool   `toml:"enabled"`
		Addr    string `toml:"addr"`
		Prefix  string `toml:"prefix"`
	} `toml:"redis"`
}

func Load(path string) (*Config, error) {
	// .env 覆盖层：部署环境通过环境变量改默认值
	_ = godotenv.Load()

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.SnapEveryMin <= 0 {
		cfg.App.SnapEveryMin = 5
	}
	if cfg.App.FlushIntervalMs <= 0 {
		cfg.App.FlushIntervalMs = 1000
	}
	if cfg.Spread.MinVolume24h <= 0 {
		cfg.Spread.MinVolume24h = 100000
	}
	if cfg.Mexc.SpotWsURL == "" {
		cfg.Mexc.SpotWsURL = "wss://wbs-api.mexc.com/ws"
	}
	if cfg.Mexc.FuturesWsURL == "" {
		cfg.Mexc.FuturesWsURL = "wss://contract.mexc.com/edge"
	}
	if cfg.Storage.Driver == "sqlite" && cfg.Storage.SqlitePath == "" {
		cfg.Storage.SqlitePath = "data/sfarb.db"
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "sfarb"
	}
}

// applyEnvOverrides 识别的环境变量：MIN_VOLUME_24H、FLUSH_INTERVAL_MS、SFARB_DEBUG
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MIN_VOLUME_24H"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Spread.MinVolume24h = f
		}
	}
	if v := os.Getenv("FLUSH_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.App.FlushIntervalMs = n
		}
	}
	if v := os.Getenv("SFARB_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.App.Debug = b
		}
	}
}

func validate(cfg *Config) error {
	switch cfg.Storage.Driver {
	case "", "sqlite":
	case "postgres":
		if strings.TrimSpace(cfg.Storage.PostgresDSN) == "" {
			return errors.New("storage.postgres_dsn empty but driver is postgres")
		}
	default:
		return errors.New("storage.driver must be postgres, sqlite or empty")
	}
	if cfg.Redis.Enabled && strings.TrimSpace(cfg.Redis.Addr) == "" {
		return errors.New("redis.addr empty but enabled")
	}
	return nil
}

// FlushInterval 去抖窗口
func (c *Config) FlushInterval() time.Duration {
	return time.Duration(c.App.FlushIntervalMs) * time.Millisecond
}

// SnapInterval 快照行间隔
func (c *Config) SnapInterval() time.Duration {
	return time.Duration(c.App.SnapEveryMin) * time.Minute
}
