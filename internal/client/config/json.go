package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/flagx"
	"github.com/dmitrijs2005/bookshelf/internal/timex"
)

// JsonConfig is the on-disk form of Config. Zero values leave the current
// setting untouched, except ExpiryThreshold where an explicit 0 is honoured.
type JsonConfig struct {
	ServerURL       string          `json:"server_url"`
	ExpiryThreshold *timex.Duration `json:"expiry_threshold"`
	RequestTimeout  timex.Duration  `json:"request_timeout"`
	RefreshTimeout  timex.Duration  `json:"refresh_timeout"`

	TokenStore   string `json:"token_store"`
	DatabasePath string `json:"database_path"`
	RedisAddr    string `json:"redis_addr"`
	RedisPrefix  string `json:"redis_prefix"`
	StoreSecret  string `json:"store_secret"`

	RateLimitRPS            float64        `json:"rate_limit_rps"`
	RateLimitBurst          int            `json:"rate_limit_burst"`
	BreakerFailureThreshold uint32         `json:"breaker_failure_threshold"`
	BreakerTimeout          timex.Duration `json:"breaker_timeout"`

	LogLevel string `json:"log_level"`
}

// parseJson loads the file named by -c/-config into config. It panics if
// the file cannot be read or contains invalid JSON.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.ServerURL, c.ServerURL)
	if c.ExpiryThreshold != nil {
		config.ExpiryThreshold = c.ExpiryThreshold.Duration
	}
	setDuration(&config.RequestTimeout, c.RequestTimeout)
	setDuration(&config.RefreshTimeout, c.RefreshTimeout)
	setString(&config.TokenStore, c.TokenStore)
	setString(&config.DatabasePath, c.DatabasePath)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPrefix, c.RedisPrefix)
	setString(&config.StoreSecret, c.StoreSecret)
	if c.RateLimitRPS > 0 {
		config.RateLimitRPS = c.RateLimitRPS
	}
	if c.RateLimitBurst > 0 {
		config.RateLimitBurst = c.RateLimitBurst
	}
	if c.BreakerFailureThreshold > 0 {
		config.BreakerFailureThreshold = c.BreakerFailureThreshold
	}
	setDuration(&config.BreakerTimeout, c.BreakerTimeout)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration > 0 {
		*dst = v.Duration
	}
}
