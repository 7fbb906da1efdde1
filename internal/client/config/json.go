package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/antonk9218/skdesk/internal/flagx"
	"github.com/antonk9218/skdesk/internal/timex"
)

// jsonConfig is the DTO used exclusively for JSON unmarshalling. Durations
// rely on timex.Duration so the file can spell them either as strings like
// "5m" or as integer nanoseconds. Pointer fields distinguish "absent" from
// zero so the file only overrides what it names.
type jsonConfig struct {
	StoragePath *string `json:"storage_path"`
	LogLevel    *string `json:"log_level"`
	AuthBaseURL *string `json:"auth_base_url"`
	APIBaseURL  *string `json:"api_base_url"`

	LocalStateExpiry  *timex.Duration `json:"local_state_expiry"`
	SnapshotCacheTTL  *timex.Duration `json:"snapshot_cache_ttl"`
	RolesCacheTTL     *timex.Duration `json:"roles_cache_ttl"`
	CredCheckTTL      *timex.Duration `json:"cred_check_ttl"`
	PersistDebounce   *timex.Duration `json:"persist_debounce"`
	RevalidateTimeout *timex.Duration `json:"revalidate_timeout"`

	MaxRestoreAttempts *int `json:"max_restore_attempts"`
}

// parseJSON overlays cfg with values from the file named by -c/-config.
// No flag, no overlay.
func parseJSON(cfg *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	if jc.StoragePath != nil {
		cfg.StoragePath = *jc.StoragePath
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.AuthBaseURL != nil {
		cfg.AuthBaseURL = *jc.AuthBaseURL
	}
	if jc.APIBaseURL != nil {
		cfg.APIBaseURL = *jc.APIBaseURL
	}
	if jc.LocalStateExpiry != nil {
		cfg.LocalStateExpiry = time.Duration(jc.LocalStateExpiry.Duration)
	}
	if jc.SnapshotCacheTTL != nil {
		cfg.SnapshotCacheTTL = time.Duration(jc.SnapshotCacheTTL.Duration)
	}
	if jc.RolesCacheTTL != nil {
		cfg.RolesCacheTTL = time.Duration(jc.RolesCacheTTL.Duration)
	}
	if jc.CredCheckTTL != nil {
		cfg.CredCheckTTL = time.Duration(jc.CredCheckTTL.Duration)
	}
	if jc.PersistDebounce != nil {
		cfg.PersistDebounce = time.Duration(jc.PersistDebounce.Duration)
	}
	if jc.RevalidateTimeout != nil {
		cfg.RevalidateTimeout = time.Duration(jc.RevalidateTimeout.Duration)
	}
	if jc.MaxRestoreAttempts != nil {
		cfg.MaxRestoreAttempts = *jc.MaxRestoreAttempts
	}

	return nil
}
