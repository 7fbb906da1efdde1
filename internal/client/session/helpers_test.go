package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/antonk9218/skdesk/internal/client/api"
	"github.com/antonk9218/skdesk/internal/client/config"
	"github.com/antonk9218/skdesk/internal/client/storage"
)

// ---- fakes ----

type fakeAuth struct {
	PasswordTokenRet string
	PasswordTokenErr error
	SMSTokenRet      string
	SMSTokenErr      error

	GrantCodeRet string
	GrantCodeErr error

	SessionRet api.SessionGrant
	SessionErr error

	GrantCalls   int
	SessionCalls int
}

func (f *fakeAuth) LoginByPassword(ctx context.Context, phone, password string) (string, error) {
	return f.PasswordTokenRet, f.PasswordTokenErr
}

func (f *fakeAuth) LoginBySMSCode(ctx context.Context, phone, code string) (string, error) {
	return f.SMSTokenRet, f.SMSTokenErr
}

func (f *fakeAuth) ExchangeGrantCode(ctx context.Context, loginToken string) (string, error) {
	f.GrantCalls++
	return f.GrantCodeRet, f.GrantCodeErr
}

func (f *fakeAuth) ExchangeSession(ctx context.Context, grantCode string) (api.SessionGrant, error) {
	f.SessionCalls++
	return f.SessionRet, f.SessionErr
}

type fakeGame struct {
	mu sync.Mutex

	RolesRet []api.Role
	RolesErr error

	SnapRet *api.Snapshot
	SnapErr error

	rolesCalls int
	snapCalls  int
}

func (f *fakeGame) BindingRoles(ctx context.Context, cred, signToken string) ([]api.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rolesCalls++
	return append([]api.Role(nil), f.RolesRet...), f.RolesErr
}

func (f *fakeGame) PlayerSnapshot(ctx context.Context, cred, signToken, uid string) (*api.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapCalls++
	return f.SnapRet, f.SnapErr
}

func (f *fakeGame) RolesCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rolesCalls
}

// countingKV wraps MemoryKV with call counters and error injection.
type countingKV struct {
	*storage.MemoryKV

	mu       sync.Mutex
	SetErr   error
	getCalls int
	setCalls int
}

func newCountingKV() *countingKV {
	return &countingKV{MemoryKV: storage.NewMemoryKV()}
}

func (c *countingKV) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	c.getCalls++
	c.mu.Unlock()
	return c.MemoryKV.Get(ctx, key)
}

func (c *countingKV) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.setCalls++
	err := c.SetErr
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.MemoryKV.Set(ctx, key, value)
}

func (c *countingKV) GetCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getCalls
}

func (c *countingKV) SetCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setCalls
}

type fakePrimer struct {
	Err   error
	Calls int
}

func (f *fakePrimer) Prime(ctx context.Context) error {
	f.Calls++
	return f.Err
}

// ---- setup ----

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.PersistDebounce = 10 * time.Millisecond
	cfg.RevalidateTimeout = time.Second
	cfg.MaxRestoreAttempts = 3
	return cfg
}

func validGrant() api.SessionGrant {
	return api.SessionGrant{Cred: "cred-1", SignToken: "sign-1", UserID: "user-1"}
}

func testRoles() []api.Role {
	return []api.Role{
		{UID: "1001", NickName: "alt", IsDefault: false},
		{UID: "2002", NickName: "main", IsDefault: true},
	}
}

func newTestManager(t *testing.T, auth *fakeAuth, game *fakeGame, kv storage.KV) *Manager {
	t.Helper()
	m := NewManager(testConfig(t), auth, game, kv, WithDeviceID("dev-test"))
	t.Cleanup(func() { m.cancelPendingPersist() })
	return m
}

// waitForPersist blocks until at least one debounced write should have
// fired with the test debounce window.
func waitForPersist() {
	time.Sleep(60 * time.Millisecond)
}
