package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/bookshelf/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Only the flags listed in the package doc are considered; anything else on
// the command line is ignored. A malformed value panics.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-s", "-d", "-r", "-p", "-k", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ServerURL, "a", config.ServerURL, "bookshelf API base URL")
	threshold := fs.Int("t", int(config.ExpiryThreshold.Seconds()), "access token expiry threshold (in seconds)")
	fs.StringVar(&config.TokenStore, "s", config.TokenStore, "token store: memory, sqlite, redis")
	fs.StringVar(&config.DatabasePath, "d", config.DatabasePath, "sqlite database path")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	fs.StringVar(&config.RedisPrefix, "p", config.RedisPrefix, "redis key prefix")
	fs.StringVar(&config.StoreSecret, "k", config.StoreSecret, "token encryption secret")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ExpiryThreshold = time.Duration(*threshold) * time.Second
}
