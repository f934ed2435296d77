package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.Equal(t, 60*time.Second, c.ExpiryThreshold)
	assert.Equal(t, StoreSQLite, c.TokenStore)
	assert.Zero(t, c.RateLimitRPS)
	assert.Zero(t, c.BreakerFailureThreshold)
	require.NoError(t, c.Validate())
}

func TestLoad_NoArgs(t *testing.T) {
	var want Config
	want.LoadDefaults()
	assert.Empty(t, cmp.Diff(&want, load(nil)))
}

func TestLoad_JSON(t *testing.T) {
	path := writeTempJSON(t, `{
		"server_url": "https://books.example.com",
		"expiry_threshold": "30s",
		"request_timeout": 5000000000,
		"token_store": "redis",
		"redis_prefix": "work",
		"rate_limit_rps": 2.5,
		"rate_limit_burst": 3,
		"breaker_failure_threshold": 4,
		"breaker_timeout": "1m"
	}`)

	cfg := load([]string{"-c", path})

	assert.Equal(t, "https://books.example.com", cfg.ServerURL)
	assert.Equal(t, 30*time.Second, cfg.ExpiryThreshold)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 15*time.Second, cfg.RefreshTimeout)
	assert.Equal(t, StoreRedis, cfg.TokenStore)
	assert.Equal(t, "work", cfg.RedisPrefix)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 3, cfg.RateLimitBurst)
	assert.EqualValues(t, 4, cfg.BreakerFailureThreshold)
	assert.Equal(t, time.Minute, cfg.BreakerTimeout)
}

func TestLoad_JSONZeroThreshold(t *testing.T) {
	path := writeTempJSON(t, `{"expiry_threshold": "0s"}`)

	cfg := load([]string{"-c", path})

	assert.Equal(t, time.Duration(0), cfg.ExpiryThreshold)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FlagsOverrideJSON(t *testing.T) {
	path := writeTempJSON(t, `{"server_url": "https://json.example.com", "token_store": "redis"}`)

	cfg := load([]string{"-config=" + path, "-a", "http://flag.example.com", "-s", "memory", "-t", "10", "-z"})

	assert.Equal(t, "http://flag.example.com", cfg.ServerURL)
	assert.Equal(t, StoreMemory, cfg.TokenStore)
	assert.Equal(t, 10*time.Second, cfg.ExpiryThreshold)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		expectPanic bool
		check       func(t *testing.T, c *Config)
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://h", "-t", "5", "-s", "sqlite", "-d", "x.db", "-r", "r:1", "-p", "pre", "-k", "sec", "-l", "debug"},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "http://h", c.ServerURL)
				assert.Equal(t, 5*time.Second, c.ExpiryThreshold)
				assert.Equal(t, "x.db", c.DatabasePath)
				assert.Equal(t, "r:1", c.RedisAddr)
				assert.Equal(t, "pre", c.RedisPrefix)
				assert.Equal(t, "sec", c.StoreSecret)
				assert.Equal(t, "debug", c.LogLevel)
			},
		},
		{name: "bad threshold", args: []string{"-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{}
			c.LoadDefaults()
			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(c, tt.args) })
				return
			}
			require.NotPanics(t, func() { parseFlags(c, tt.args) })
			tt.check(t, c)
		})
	}
}

func TestParseJson_Invalid(t *testing.T) {
	path := writeTempJSON(t, `{not json`)
	require.Panics(t, func() { parseJson(&Config{}, []string{"-c", path}) })
}

func TestValidate(t *testing.T) {
	var c Config
	c.LoadDefaults()
	c.TokenStore = "keychain"
	assert.Error(t, c.Validate())

	c.LoadDefaults()
	c.ServerURL = ""
	assert.Error(t, c.Validate())
}
