package devserver

import (
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/flagx"
	"github.com/dmitrijs2005/bookshelf/internal/timex"
)

// Config holds runtime settings for the dev server.
//
// Durations in flags are whole seconds so short access token lifetimes can
// be tried out against the client's proactive refresh.
type Config struct {
	Addr             string
	SecretKey        string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	SeedUserEmail    string
	SeedUserPassword string
	SeedBooks        bool
	LogLevel         string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = "127.0.0.1:8080"
	c.SecretKey = "dev-secret"
	c.AccessTokenTTL = 2 * time.Minute
	c.RefreshTokenTTL = 24 * time.Hour
	c.SeedUserEmail = "reader@example.com"
	c.SeedUserPassword = "reader"
	c.SeedBooks = true
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then the JSON file named by -c/-config, then
// flags. Later sources win.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}

type JsonConfig struct {
	Addr             string         `json:"addr"`
	SecretKey        string         `json:"secret_key"`
	AccessTokenTTL   timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL  timex.Duration `json:"refresh_token_ttl"`
	SeedUserEmail    string         `json:"seed_user_email"`
	SeedUserPassword string         `json:"seed_user_password"`
	SeedBooks        *bool          `json:"seed_books"`
	LogLevel         string         `json:"log_level"`
}

// parseJson overlays non-empty values from the JSON config file. It panics
// if the file cannot be read or parsed.
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

	if c.Addr != "" {
		config.Addr = c.Addr
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenTTL.Duration > 0 {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	if c.RefreshTokenTTL.Duration > 0 {
		config.RefreshTokenTTL = c.RefreshTokenTTL.Duration
	}
	if c.SeedUserEmail != "" {
		config.SeedUserEmail = c.SeedUserEmail
	}
	if c.SeedUserPassword != "" {
		config.SeedUserPassword = c.SeedUserPassword
	}
	if c.SeedBooks != nil {
		config.SeedBooks = *c.SeedBooks
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}

// parseFlags overlays command-line flags.
//
//	-a string   listen address
//	-s string   JWT HMAC secret
//	-t int      access token lifetime, seconds
//	-r int      refresh token lifetime, seconds
//	-e string   seed user email ("" disables the seed user)
//	-p string   seed user password
//	-l string   log level
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t", "-r", "-e", "-p", "-l"})

	fs := flag.NewFlagSet("devserver", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to listen on")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	access := fs.Int("t", int(config.AccessTokenTTL.Seconds()), "access token lifetime (in seconds)")
	refresh := fs.Int("r", int(config.RefreshTokenTTL.Seconds()), "refresh token lifetime (in seconds)")
	fs.StringVar(&config.SeedUserEmail, "e", config.SeedUserEmail, "seed user email")
	fs.StringVar(&config.SeedUserPassword, "p", config.SeedUserPassword, "seed user password")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenTTL = time.Duration(*access) * time.Second
	config.RefreshTokenTTL = time.Duration(*refresh) * time.Second
}
