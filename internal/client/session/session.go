// Package session owns the credential lifecycle of the companion client:
// login, debounced persistence, restoration with an attempt ceiling,
// background revalidation, and logout. It is the only writer of the
// in-memory credential record and of the durable authState blob.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/antonk9218/skdesk/internal/client/api"
	"github.com/antonk9218/skdesk/internal/client/config"
	"github.com/antonk9218/skdesk/internal/client/storage"
	"github.com/antonk9218/skdesk/internal/logging"
	"github.com/google/uuid"
)

// State is the session state machine position.
type State int32

const (
	StateLoggedOut State = iota
	StateAuthenticating
	StateLoggedIn
	StateRestoring
)

func (s State) String() string {
	switch s {
	case StateLoggedOut:
		return "logged_out"
	case StateAuthenticating:
		return "authenticating"
	case StateLoggedIn:
		return "logged_in"
	case StateRestoring:
		return "restoring"
	default:
		return "unknown"
	}
}

// Credentials is the four-field credential set tying the client to the
// remote account. The session is authenticated only when every field is
// non-empty; partial sets are never persisted or restored.
type Credentials struct {
	LoginToken string
	Cred       string
	SignToken  string
	UserID     string
}

// Valid reports whether all four fields are simultaneously non-empty.
func (c Credentials) Valid() bool {
	return c.LoginToken != "" && c.Cred != "" && c.SignToken != "" && c.UserID != ""
}

// SnapshotPrimer is the hook the derivation engine registers so a fresh
// login can pull the first snapshot as part of the flow.
type SnapshotPrimer interface {
	Prime(ctx context.Context) error
}

// Manager is the session/credential lifecycle service. Construct with
// NewManager, tear down with Logout (idempotent). All exported methods are
// safe for concurrent use.
type Manager struct {
	cfg  *config.Config
	log  logging.Logger
	auth api.AuthClient
	game api.GameClient
	kv   storage.KV

	nowFn func() time.Time

	mu              sync.Mutex
	state           State
	creds           Credentials
	deviceID        string
	roles           []api.Role
	rolesFetchedAt  time.Time
	lastUpdated     time.Time
	restoreAttempts int
	compact         *api.CompactStatus
	primer          SnapshotPrimer

	persistMu    sync.Mutex
	persistTimer *time.Timer
}

// Option customizes a Manager.
type Option func(*Manager)

// WithLogger sets the logger (default: noop).
func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithNow replaces the wall-clock source. Test seam.
func WithNow(now func() time.Time) Option {
	return func(m *Manager) { m.nowFn = now }
}

// WithDeviceID pins the per-install identifier instead of generating one.
func WithDeviceID(id string) Option {
	return func(m *Manager) { m.deviceID = id }
}

// NewManager builds a logged-out Manager over the given collaborators.
func NewManager(cfg *config.Config, auth api.AuthClient, game api.GameClient, kv storage.KV, opts ...Option) *Manager {
	m := &Manager{
		cfg:   cfg,
		log:   logging.NewNoopLogger(),
		auth:  auth,
		game:  game,
		kv:    kv,
		nowFn: time.Now,
		state: StateLoggedOut,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.deviceID == "" {
		m.deviceID = uuid.NewString()
	}
	return m
}

// SetPrimer registers the snapshot primer invoked at the tail of Login.
func (m *Manager) SetPrimer(p SnapshotPrimer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.primer = p
}

// State returns the current state machine position.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsLoggedIn reports whether the session is authenticated.
func (m *Manager) IsLoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateLoggedIn && m.creds.Valid()
}

// Credentials returns a copy of the current credential set.
func (m *Manager) Credentials() Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds
}

// UserID returns the authenticated account id, "" when logged out.
func (m *Manager) UserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.creds.UserID
}

// Roles returns a copy of the cached bound-role list.
func (m *Manager) Roles() []api.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]api.Role(nil), m.roles...)
}

// DefaultUID resolves the active role's uid: the one flagged default,
// else the first. "" when no roles are known.
func (m *Manager) DefaultUID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := api.DefaultRole(m.roles); ok {
		return r.UID
	}
	return ""
}

// RestoreAttempts returns the consecutive failed-restore counter.
func (m *Manager) RestoreAttempts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restoreAttempts
}

// CompactStatus returns the persisted snapshot projection, nil when none.
func (m *Manager) CompactStatus() *api.CompactStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.compact
}

// SetCompactStatus records the snapshot projection carried inside the
// persisted session and schedules a persist. Called by the derivation
// engine after each successful fetch.
func (m *Manager) SetCompactStatus(cs *api.CompactStatus) {
	m.mu.Lock()
	m.compact = cs
	m.lastUpdated = m.nowFn()
	m.mu.Unlock()
	m.SchedulePersist()
}

// Logout tears the session down: zeroes all in-memory credential and role
// fields, cancels any pending debounced persist, and deletes the persisted
// blob plus every per-user credential-check cache entry. Always succeeds
// and is safe to call when already logged out.
func (m *Manager) Logout(ctx context.Context) {
	m.cancelPendingPersist()

	m.mu.Lock()
	m.state = StateLoggedOut
	m.creds = Credentials{}
	m.roles = nil
	m.rolesFetchedAt = time.Time{}
	m.lastUpdated = time.Time{}
	m.compact = nil
	m.restoreAttempts = 0
	m.mu.Unlock()

	if err := m.kv.Remove(ctx, authStateKey); err != nil {
		m.log.Warn(ctx, "failed to remove persisted session", "err", err)
	}
	if err := m.kv.RemovePrefix(ctx, credCheckPrefix); err != nil {
		m.log.Warn(ctx, "failed to remove credential-check cache", "err", err)
	}

	m.log.Info(ctx, "logged out")
}
