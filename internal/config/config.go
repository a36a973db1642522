package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string
	DatabaseURI     string
	CatalogAddress  string
	SyncBaseDelay   time.Duration
	SyncMaxDelay    time.Duration
	SyncMaxRetries  int
	ShutdownTimeout time.Duration
}

const (
	defaultRunAddress      = ":8080"
	defaultSyncBaseDelay   = 2 * time.Second
	defaultSyncMaxDelay    = 30 * time.Second
	defaultSyncMaxRetries  = 50
	defaultShutdownTimeout = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:      getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:     getString(lookup, "DATABASE_URI", ""),
		CatalogAddress:  getString(lookup, "CATALOG_ADDRESS", ""),
		SyncBaseDelay:   getDuration(lookup, "SYNC_BASE_DELAY", defaultSyncBaseDelay),
		SyncMaxDelay:    getDuration(lookup, "SYNC_MAX_DELAY", defaultSyncMaxDelay),
		SyncMaxRetries:  getInt(lookup, "SYNC_MAX_RETRIES", defaultSyncMaxRetries),
		ShutdownTimeout: getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("basketd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		baseDelayStr       = cfg.SyncBaseDelay.String()
		maxDelayStr        = cfg.SyncMaxDelay.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.CatalogAddress, "r", cfg.CatalogAddress, "Catalog service base URL")
	fs.StringVar(&baseDelayStr, "sync-base-delay", baseDelayStr, "Initial delay between sync retries")
	fs.StringVar(&maxDelayStr, "sync-max-delay", maxDelayStr, "Upper bound for the sync retry delay")
	fs.IntVar(&cfg.SyncMaxRetries, "sync-max-retries", cfg.SyncMaxRetries, "Sync attempts before giving up")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.SyncBaseDelay, err = time.ParseDuration(baseDelayStr); err != nil {
		return nil, fmt.Errorf("invalid sync base delay: %w", err)
	}

	if cfg.SyncMaxDelay, err = time.ParseDuration(maxDelayStr); err != nil {
		return nil, fmt.Errorf("invalid sync max delay: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.SyncBaseDelay <= 0 {
		cfg.SyncBaseDelay = defaultSyncBaseDelay
	}

	if cfg.SyncMaxDelay < cfg.SyncBaseDelay {
		cfg.SyncMaxDelay = defaultSyncMaxDelay
	}

	if cfg.SyncMaxRetries <= 0 {
		cfg.SyncMaxRetries = defaultSyncMaxRetries
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.CatalogAddress == "" {
		return nil, fmt.Errorf("catalog address must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
