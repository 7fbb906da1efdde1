package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/antonk9218/skdesk/internal/common"
)

// Restore rebuilds the session from durable storage. It returns true only
// when a complete, unexpired blob was adopted into memory.
//
// Behavior:
//   - Refuses outright (no storage read) once the consecutive failed
//     attempt counter reaches the configured ceiling.
//   - Unparseable JSON or missing required fields clear the blob as
//     corrupted; a blob older than the local expiry clears it as expired.
//   - On success every stored field is adopted, including the stored
//     restoreAttempts counter, so process restarts do not reset it. Only a
//     successful Login (or an explicit Logout) resets the counter.
//   - A background credential revalidation is scheduled fire-and-forget;
//     Restore returns as soon as in-memory state is adopted.
func (m *Manager) Restore(ctx context.Context) bool {
	m.mu.Lock()

	if m.restoreAttempts >= m.cfg.MaxRestoreAttempts {
		m.mu.Unlock()
		m.log.Warn(ctx, "restore refused", "err", common.ErrRestoreLimitReached, "attempts", m.cfg.MaxRestoreAttempts)
		return false
	}
	m.restoreAttempts++
	m.state = StateRestoring
	m.mu.Unlock()

	raw, err := m.kv.Get(ctx, authStateKey)
	if err != nil {
		m.failRestore()
		m.log.Warn(ctx, "restore failed", "err", &common.StorageError{Op: "read session", Err: err})
		return false
	}
	if raw == nil {
		m.failRestore()
		m.log.Debug(ctx, "no persisted session to restore")
		return false
	}

	var ps persistedSession
	if err := json.Unmarshal(raw, &ps); err != nil {
		m.failRestore()
		m.clearStoredState(ctx, &common.ValidationError{Field: authStateKey, Err: common.ErrCorruptedState})
		return false
	}

	if ps.Version != persistVersion || ps.Cred == "" || ps.SignToken == "" || ps.LoginToken == "" || ps.UserID == "" {
		m.failRestore()
		m.clearStoredState(ctx, &common.ValidationError{Field: authStateKey, Err: common.ErrCorruptedState})
		return false
	}

	now := m.nowFn()
	if time.Unix(ps.Timestamp, 0).Add(m.cfg.LocalStateExpiry).Before(now) {
		m.failRestore()
		m.clearStoredState(ctx, common.ErrStateExpired)
		return false
	}

	// The stored counter carries failed attempts across process restarts.
	// Record this attempt in it before adopting; refuse when the history
	// alone already exhausted the ceiling.
	attempts := ps.RestoreAttempts + 1
	if attempts > m.cfg.MaxRestoreAttempts {
		m.mu.Lock()
		m.restoreAttempts = ps.RestoreAttempts
		m.state = StateLoggedOut
		m.mu.Unlock()
		m.log.Warn(ctx, "restore refused", "err", common.ErrRestoreLimitReached, "storedAttempts", ps.RestoreAttempts)
		return false
	}

	m.mu.Lock()
	m.creds = Credentials{
		LoginToken: ps.LoginToken,
		Cred:       ps.Cred,
		SignToken:  ps.SignToken,
		UserID:     ps.UserID,
	}
	if ps.DeviceID != "" {
		m.deviceID = ps.DeviceID
	}
	m.roles = ps.BindingRoles
	m.rolesFetchedAt = time.Unix(ps.LastUpdated, 0)
	m.lastUpdated = time.Unix(ps.LastUpdated, 0)
	m.compact = ps.PlayerData
	m.restoreAttempts = ps.RestoreAttempts
	m.state = StateLoggedIn
	creds := m.creds
	m.mu.Unlock()

	// Fire-and-forget: the caller gets its answer without waiting on the
	// network.
	go m.revalidateInBackground(creds)

	m.log.Info(ctx, "session restored", "userId", creds.UserID, "roles", len(ps.BindingRoles))
	return true
}

// failRestore rolls the state machine back to logged-out after an
// unsuccessful attempt without touching credentials (there are none yet).
func (m *Manager) failRestore() {
	m.mu.Lock()
	m.state = StateLoggedOut
	m.mu.Unlock()
}

// credCheckEntry is the cached outcome of a background credential check.
type credCheckEntry struct {
	Timestamp int64 `json:"timestamp"`
	IsValid   bool  `json:"isValid"`
}

// revalidateInBackground verifies restored credentials against the remote
// service under a hard timeout. The outcome is cached per user; failure is
// advisory only and never forces logout — a possibly-stale session beats
// forcing a re-login on a transient network blip.
func (m *Manager) revalidateInBackground(creds Credentials) {
	if !creds.Valid() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.RevalidateTimeout)
	defer cancel()

	key := credCheckPrefix + creds.UserID

	if raw, err := m.kv.Get(ctx, key); err == nil && raw != nil {
		var entry credCheckEntry
		if err := json.Unmarshal(raw, &entry); err == nil {
			age := m.nowFn().Sub(time.Unix(entry.Timestamp, 0))
			if age < m.cfg.CredCheckTTL {
				if !entry.IsValid {
					m.log.Warn(ctx, "cached credential check is negative", "userId", creds.UserID)
				}
				return
			}
		}
	}

	// The context deadline is the race against the timer: exceeding it is
	// a normal failure outcome, not a process error.
	_, err := m.game.BindingRoles(ctx, creds.Cred, creds.SignToken)

	entry := credCheckEntry{Timestamp: m.nowFn().Unix(), IsValid: err == nil}
	data, merr := json.Marshal(entry)
	if merr == nil {
		if serr := m.kv.Set(ctx, key, data); serr != nil {
			m.log.Warn(ctx, "failed to cache credential check", "err", serr)
		}
	}

	if err != nil {
		m.log.Warn(ctx, "background credential check failed", "userId", creds.UserID, "err", err)
		return
	}
	m.log.Debug(ctx, "background credential check passed", "userId", creds.UserID)
}
