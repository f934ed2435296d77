package devserver

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig(nil)

	want := &Config{}
	want.LoadDefaults()
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoadConfig_JSONThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"addr": ":9999",
		"secret_key": "from-json",
		"access_token_ttl": "30s",
		"refresh_token_ttl": "1h",
		"seed_books": false
	}`), 0o600))

	cfg := LoadConfig([]string{"-config", path, "-s", "from-flag", "-unknown", "x"})

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "from-flag", cfg.SecretKey)
	assert.Equal(t, 30*time.Second, cfg.AccessTokenTTL)
	assert.Equal(t, time.Hour, cfg.RefreshTokenTTL)
	assert.False(t, cfg.SeedBooks)
}

func TestParseFlags(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg, []string{"-a", ":7000", "-t", "5", "-r", "60", "-e", "", "-l", "debug"})

	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, 5*time.Second, cfg.AccessTokenTTL)
	assert.Equal(t, time.Minute, cfg.RefreshTokenTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParseFlags_Invalid(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()
	require.Panics(t, func() { parseFlags(cfg, []string{"-t", "abc"}) })
}

func TestParseJson_MissingFile(t *testing.T) {
	cfg := &Config{}
	require.Panics(t, func() { parseJson(cfg, []string{"-c", "/does/not/exist.json"}) })
}
