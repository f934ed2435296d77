package config

import (
	"fmt"
	"os"
	"time"
)

// Token store kinds.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config holds runtime settings for the bookshelf CLI.
type Config struct {
	ServerURL       string
	ExpiryThreshold time.Duration
	RequestTimeout  time.Duration
	RefreshTimeout  time.Duration

	TokenStore   string
	DatabasePath string
	RedisAddr    string
	RedisPrefix  string
	StoreSecret  string

	RateLimitRPS            float64
	RateLimitBurst          int
	BreakerFailureThreshold uint32
	BreakerTimeout          time.Duration

	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.ExpiryThreshold = 60 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.RefreshTimeout = 15 * time.Second
	c.TokenStore = StoreSQLite
	c.DatabasePath = "bookshelf.db"
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPrefix = "bookshelf:session"
	c.RateLimitBurst = 1
	c.BreakerTimeout = 30 * time.Second
	c.LogLevel = "warn"
}

// Validate rejects settings the CLI cannot start with.
func (c *Config) Validate() error {
	switch c.TokenStore {
	case StoreMemory, StoreSQLite, StoreRedis:
	default:
		return fmt.Errorf("unknown token store %q", c.TokenStore)
	}
	if c.ServerURL == "" {
		return fmt.Errorf("server url is required")
	}
	if c.ExpiryThreshold < 0 {
		return fmt.Errorf("expiry threshold must not be negative")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
