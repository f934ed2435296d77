// Package config loads runtime configuration for the bookshelf CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the bookshelf API
//	-t int      access token expiry threshold (seconds)
//	-s string   token store: memory, sqlite or redis
//	-d string   SQLite database path (sqlite store)
//	-r string   redis address (redis store)
//	-p string   redis key prefix (redis store)
//	-k string   secret used to encrypt stored tokens ("" stores them as is)
//	-l string   log level: debug, info, warn, error
//
// # JSON schema
//
// Durations are timex.Duration, so "30s" and integer nanoseconds both work:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "expiry_threshold": "60s",
//	  "request_timeout": "30s",
//	  "refresh_timeout": "15s",
//	  "token_store": "sqlite",
//	  "database_path": "bookshelf.db",
//	  "rate_limit_rps": 5,
//	  "breaker_failure_threshold": 5,
//	  "breaker_timeout": "30s"
//	}
package config
