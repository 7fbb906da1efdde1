package session

import (
	"context"
	"errors"
	"testing"

	"github.com/antonk9218/skdesk/internal/common"
	"github.com/stretchr/testify/require"
)

func TestBindingRoles_NotLoggedIn(t *testing.T) {
	m := newTestManager(t, &fakeAuth{}, &fakeGame{}, newCountingKV())

	_, err := m.BindingRoles(context.Background(), false)
	require.ErrorIs(t, err, common.ErrNotLoggedIn)
}

func TestBindingRoles_ServesCacheWithinTTL(t *testing.T) {
	ctx := context.Background()
	game := &fakeGame{RolesRet: testRoles()}
	auth := &fakeAuth{GrantCodeRet: "g", SessionRet: validGrant()}
	m := newTestManager(t, auth, game, newCountingKV())

	_, err := m.Login(ctx, "hg-token")
	require.NoError(t, err)
	callsAfterLogin := game.RolesCalls()

	roles, err := m.BindingRoles(ctx, false)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	require.Equal(t, callsAfterLogin, game.RolesCalls(), "cached list must be served")

	// force always refetches
	_, err = m.BindingRoles(ctx, true)
	require.NoError(t, err)
	require.Equal(t, callsAfterLogin+1, game.RolesCalls())
}

func TestBindingRoles_AuthErrorForcesLogout(t *testing.T) {
	ctx := context.Background()
	game := &fakeGame{RolesRet: testRoles()}
	auth := &fakeAuth{GrantCodeRet: "g", SessionRet: validGrant()}
	kv := newCountingKV()
	m := newTestManager(t, auth, game, kv)

	_, err := m.Login(ctx, "hg-token")
	require.NoError(t, err)

	game.mu.Lock()
	game.RolesErr = errors.New("cred expired")
	game.mu.Unlock()

	_, err = m.BindingRoles(ctx, true)
	require.ErrorIs(t, err, common.ErrSessionExpired)
	require.Equal(t, StateLoggedOut, m.State())
}

func TestBindingRoles_NetworkErrorServesStaleCache(t *testing.T) {
	ctx := context.Background()
	game := &fakeGame{RolesRet: testRoles()}
	auth := &fakeAuth{GrantCodeRet: "g", SessionRet: validGrant()}
	m := newTestManager(t, auth, game, newCountingKV())

	_, err := m.Login(ctx, "hg-token")
	require.NoError(t, err)

	game.mu.Lock()
	game.RolesErr = errors.New("dial tcp: connection refused")
	game.mu.Unlock()

	roles, err := m.BindingRoles(ctx, true)
	require.NoError(t, err, "network failure with cache is absorbed")
	require.Len(t, roles, 2)
	require.Equal(t, StateLoggedIn, m.State())
}

func TestBindingRoles_OtherErrorPropagates(t *testing.T) {
	ctx := context.Background()
	game := &fakeGame{RolesRet: nil, RolesErr: nil}
	auth := &fakeAuth{GrantCodeRet: "g", SessionRet: validGrant()}
	m := newTestManager(t, auth, game, newCountingKV())

	_, err := m.Login(ctx, "hg-token")
	require.NoError(t, err)

	game.mu.Lock()
	game.RolesErr = errors.New("payload schema mismatch")
	game.mu.Unlock()

	_, err = m.BindingRoles(ctx, true)
	require.Error(t, err)
	require.False(t, common.IsAuthError(err))
	require.False(t, common.IsNetworkError(err))
}
