// Package config holds runtime settings for the companion client core.
// Values are resolved in three layers, later ones winning: built-in
// defaults, a JSON file given via -c/-config, and SKDESK_* environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries every tunable of the session manager and the snapshot
// derivation engine.
//
// Fields:
//   - StoragePath: sqlite file backing the durable key-value store.
//   - LogLevel: "debug" | "info" | "warn" | "error".
//   - AuthBaseURL / APIBaseURL: hosts of the account service and the
//     companion data service.
//   - LocalStateExpiry: how long a persisted session stays restorable.
//   - SnapshotCacheTTL: how long a fetched snapshot is served without a
//     remote call.
//   - RolesCacheTTL: how long the bound-role list is served from memory.
//   - CredCheckTTL: lifetime of a background credential-check cache entry.
//   - PersistDebounce: window within which persist requests coalesce.
//   - RevalidateTimeout: hard deadline for the background credential check.
//   - MaxRestoreAttempts: ceiling on consecutive failed restore attempts.
type Config struct {
	StoragePath string `env:"SKDESK_STORAGE_PATH"`
	LogLevel    string `env:"SKDESK_LOG_LEVEL"`

	AuthBaseURL string `env:"SKDESK_AUTH_BASE_URL"`
	APIBaseURL  string `env:"SKDESK_API_BASE_URL"`

	LocalStateExpiry  time.Duration `env:"SKDESK_LOCAL_STATE_EXPIRY"`
	SnapshotCacheTTL  time.Duration `env:"SKDESK_SNAPSHOT_CACHE_TTL"`
	RolesCacheTTL     time.Duration `env:"SKDESK_ROLES_CACHE_TTL"`
	CredCheckTTL      time.Duration `env:"SKDESK_CRED_CHECK_TTL"`
	PersistDebounce   time.Duration `env:"SKDESK_PERSIST_DEBOUNCE"`
	RevalidateTimeout time.Duration `env:"SKDESK_REVALIDATE_TIMEOUT"`

	MaxRestoreAttempts int `env:"SKDESK_MAX_RESTORE_ATTEMPTS"`
}

// LoadDefaults populates c with the defaults the original client shipped
// with: 7-day local expiry, 5-minute snapshot cache, 10-minute role cache,
// 1-minute credential-check cache, 500ms persist debounce.
func (c *Config) LoadDefaults() {
	c.StoragePath = "skdesk.db"
	c.LogLevel = "info"
	c.AuthBaseURL = "https://as.hypergryph.com"
	c.APIBaseURL = "https://zonai.skland.com"
	c.LocalStateExpiry = 7 * 24 * time.Hour
	c.SnapshotCacheTTL = 5 * time.Minute
	c.RolesCacheTTL = 10 * time.Minute
	c.CredCheckTTL = time.Minute
	c.PersistDebounce = 500 * time.Millisecond
	c.RevalidateTimeout = 5 * time.Second
	c.MaxRestoreAttempts = 5
}

// LoadConfig constructs a Config: defaults, then JSON file (if any), then
// environment. Later sources take precedence.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the state machine cannot operate with.
func (c *Config) Validate() error {
	if c.MaxRestoreAttempts <= 0 {
		return fmt.Errorf("config: MaxRestoreAttempts must be positive, got %d", c.MaxRestoreAttempts)
	}
	if c.PersistDebounce <= 0 {
		return fmt.Errorf("config: PersistDebounce must be positive, got %s", c.PersistDebounce)
	}
	if c.SnapshotCacheTTL <= 0 {
		return fmt.Errorf("config: SnapshotCacheTTL must be positive, got %s", c.SnapshotCacheTTL)
	}
	if c.LocalStateExpiry <= c.CredCheckTTL {
		return fmt.Errorf("config: LocalStateExpiry (%s) must exceed CredCheckTTL (%s)",
			c.LocalStateExpiry, c.CredCheckTTL)
	}
	return nil
}
