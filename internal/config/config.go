package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type API struct {
	BaseURL           string `json:"base_url"`
	RequestTimeoutSec int    `json:"request_timeout_sec"`
	MaxBodyBytes      int64  `json:"max_body_bytes"`
	UserAgent         string `json:"user_agent"`
}

type Client struct {
	FallbackSymbol string `json:"fallback_symbol"`
	// ProbeAddr is dialed when a failure is reported; empty disables the probe.
	ProbeAddr       string `json:"probe_addr"`
	ProbeTimeoutSec int    `json:"probe_timeout_sec"`
}

type Log struct {
	Level string `json:"level"`
	// File receives the log of the terminal UI; empty means stderr.
	File string `json:"file"`
}

type FakeServer struct {
	Port string `json:"port"`
	// PublicURL is the URL clients reach the fake server at, used in logo urls.
	PublicURL string `json:"public_url"`
}

type Config struct {
	API        API        `json:"api"`
	Client     Client     `json:"client"`
	Log        Log        `json:"log"`
	FakeServer FakeServer `json:"fake_server"`
}

func Default() Config {
	return Config{
		API: API{
			BaseURL:           "https://api.iextrading.com/1.0",
			RequestTimeoutSec: 0,
			MaxBodyBytes:      4 << 20,
			UserAgent:         "stocks/1.0",
		},
		Client: Client{
			FallbackSymbol:  "USO",
			ProbeAddr:       "1.1.1.1:443",
			ProbeTimeoutSec: 2,
		},
		Log: Log{
			Level: "info",
			File:  "stocks.log",
		},
		FakeServer: FakeServer{
			Port: "8081",
		},
	}
}

// Load reads JSON config from path. If path is empty or file does not exist,
// it returns defaults. A .env file in the working directory is loaded into the
// environment first; environment variables then override select fields.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("STOCKS_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x >= 0 {
			cfg.API.RequestTimeoutSec = x
		}
	}
	if v := os.Getenv("STOCKS_MAX_BODY_BYTES"); v != "" {
		var x int64
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.API.MaxBodyBytes = x
		}
	}
	if v := os.Getenv("STOCKS_USER_AGENT"); v != "" {
		cfg.API.UserAgent = v
	}
	if v := os.Getenv("STOCKS_FALLBACK_SYMBOL"); v != "" {
		cfg.Client.FallbackSymbol = strings.ToUpper(strings.TrimSpace(v))
	}
	if v, ok := os.LookupEnv("STOCKS_PROBE_ADDR"); ok {
		cfg.Client.ProbeAddr = strings.TrimSpace(v)
	}
	if v := os.Getenv("STOCKS_PROBE_TIMEOUT_SEC"); v != "" {
		var x int
		fmt.Sscanf(v, "%d", &x)
		if x > 0 {
			cfg.Client.ProbeTimeoutSec = x
		}
	}
	if v := os.Getenv("STOCKS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v, ok := os.LookupEnv("STOCKS_LOG_FILE"); ok {
		cfg.Log.File = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.FakeServer.Port = v
	}
	if v := os.Getenv("FAKEIEX_PUBLIC_URL"); v != "" {
		cfg.FakeServer.PublicURL = strings.TrimRight(v, "/")
	}
}

// SlogLevel maps the configured level name to a slog.Level, defaulting to info.
func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
