package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/antonk9218/skdesk/internal/client/api"
	"github.com/antonk9218/skdesk/internal/common"
)

const (
	// authStateKey is the storage key holding the persisted session.
	authStateKey = "authState"

	// credCheckPrefix prefixes the per-user revalidation cache keys
	// ("cred_check_<userId>").
	credCheckPrefix = "cred_check_"

	// persistVersion tags the blob layout; any other value is treated as
	// corrupted state and cleared on restore.
	persistVersion = 2
)

// persistedSession is the serializable projection of the session: the
// credential set, the role list, a compact snapshot projection, and
// bookkeeping fields.
type persistedSession struct {
	IsLogin         bool               `json:"isLogin"`
	LoginToken      string             `json:"loginToken"`
	Cred            string             `json:"cred"`
	SignToken       string             `json:"signToken"`
	UserID          string             `json:"userId"`
	DeviceID        string             `json:"deviceId"`
	PlayerData      *api.CompactStatus `json:"playerDataCompressed,omitempty"`
	BindingRoles    []api.Role         `json:"bindingRoles"`
	Timestamp       int64              `json:"timestamp"`
	LastUpdated     int64              `json:"lastUpdated"`
	RestoreAttempts int                `json:"restoreAttempts"`
	Version         int                `json:"version"`
}

// SchedulePersist requests a durable write of the current session state.
// Requests within the debounce window coalesce: each call cancels the
// pending timer and installs a new one, and the write that eventually
// fires serializes the state settled at fire time, not at call time.
func (m *Manager) SchedulePersist() {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	if m.persistTimer != nil {
		m.persistTimer.Stop()
	}
	m.persistTimer = time.AfterFunc(m.cfg.PersistDebounce, func() {
		m.persistNow(context.Background())
	})
}

// cancelPendingPersist drops any scheduled write.
func (m *Manager) cancelPendingPersist() {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()
	if m.persistTimer != nil {
		m.persistTimer.Stop()
		m.persistTimer = nil
	}
}

// persistNow serializes and writes the session, then reads the write back
// and treats a missing or unparseable result as a failure. Persistence
// failure never propagates to the flow that requested it; it is logged as
// a StorageError and forgotten.
func (m *Manager) persistNow(ctx context.Context) {
	m.mu.Lock()
	if m.state != StateLoggedIn || !m.creds.Valid() {
		// Nothing coherent to persist; partial credential sets must never
		// reach storage.
		m.mu.Unlock()
		return
	}
	ps := persistedSession{
		IsLogin:         true,
		LoginToken:      m.creds.LoginToken,
		Cred:            m.creds.Cred,
		SignToken:       m.creds.SignToken,
		UserID:          m.creds.UserID,
		DeviceID:        m.deviceID,
		PlayerData:      m.compact,
		BindingRoles:    append([]api.Role(nil), m.roles...),
		Timestamp:       m.nowFn().Unix(),
		LastUpdated:     m.lastUpdated.Unix(),
		RestoreAttempts: m.restoreAttempts,
		Version:         persistVersion,
	}
	m.mu.Unlock()

	data, err := json.Marshal(ps)
	if err != nil {
		m.log.Error(ctx, "persist failed", "err", &common.StorageError{Op: "marshal session", Err: err})
		return
	}

	if err := m.kv.Set(ctx, authStateKey, data); err != nil {
		m.log.Error(ctx, "persist failed", "err", &common.StorageError{Op: "write session", Err: err})
		return
	}

	// Verify the write landed instead of silently assuming success.
	back, err := m.kv.Get(ctx, authStateKey)
	if err != nil || back == nil {
		m.log.Error(ctx, "persist verification failed", "err", &common.StorageError{Op: "read back session", Err: err})
		return
	}
	var check persistedSession
	if err := json.Unmarshal(back, &check); err != nil {
		m.log.Error(ctx, "persist verification failed", "err", &common.StorageError{Op: "parse read-back session", Err: err})
		return
	}

	m.log.Debug(ctx, "session persisted", "userId", ps.UserID, "roles", len(ps.BindingRoles))
}

// clearStoredState deletes the persisted blob after a failed restore,
// recording why.
func (m *Manager) clearStoredState(ctx context.Context, reason error) {
	if err := m.kv.Remove(ctx, authStateKey); err != nil {
		m.log.Warn(ctx, "failed to clear stored session", "err", err)
	}
	m.log.Warn(ctx, "stored session cleared", "reason", reason)
}
