package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"STOCKS_API_BASE_URL", "REQUEST_TIMEOUT_SEC", "STOCKS_MAX_BODY_BYTES", "STOCKS_USER_AGENT",
	"STOCKS_FALLBACK_SYMBOL", "STOCKS_PROBE_ADDR", "STOCKS_PROBE_TIMEOUT_SEC",
	"STOCKS_LOG_LEVEL", "STOCKS_LOG_FILE", "PORT", "FAKEIEX_PUBLIC_URL",
}

// unsetenv clears key for the test and restores it afterwards.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad_DefaultsWithoutFiles(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range envKeys {
		unsetenv(t, k)
	}

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	for _, k := range envKeys {
		unsetenv(t, k)
	}
	t.Setenv("STOCKS_API_BASE_URL", "http://localhost:8081/")
	t.Setenv("REQUEST_TIMEOUT_SEC", "7")

	path := filepath.Join(dir, "custom.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"api": {"base_url": "http://file.test", "request_timeout_sec": 3},
		"client": {"fallback_symbol": "SPY"},
		"log": {"level": "debug"}
	}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "http://localhost:8081", cfg.API.BaseURL)
	require.Equal(t, 7, cfg.API.RequestTimeoutSec)
	require.Equal(t, "SPY", cfg.Client.FallbackSymbol)
	require.Equal(t, slog.LevelDebug, cfg.Log.SlogLevel())
	// untouched fields keep defaults
	require.Equal(t, Default().API.MaxBodyBytes, cfg.API.MaxBodyBytes)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	for _, k := range envKeys {
		unsetenv(t, k)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STOCKS_FALLBACK_SYMBOL=qqq\nSTOCKS_PROBE_ADDR=\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "QQQ", cfg.Client.FallbackSymbol)
	require.Empty(t, cfg.Client.ProbeAddr)
}

func TestLoad_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"api":`), 0o600))

	_, err := Load("")
	require.ErrorContains(t, err, "parse config")
}

func TestSlogLevel(t *testing.T) {
	require.Equal(t, slog.LevelWarn, Log{Level: "WARNING"}.SlogLevel())
	require.Equal(t, slog.LevelError, Log{Level: "error"}.SlogLevel())
	require.Equal(t, slog.LevelInfo, Log{Level: "bogus"}.SlogLevel())
}
