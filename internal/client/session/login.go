package session

import (
	"context"
	"errors"

	"github.com/antonk9218/skdesk/internal/common"
)

// Login runs the full authentication flow: exchange the login token for a
// grant code, exchange the grant code for the session credential set,
// fetch the bound roles, prime the first snapshot when a role exists, and
// schedule persistence. Every step may fail independently; the first
// failure aborts the flow, funnels through Logout so no partial credential
// set stays live, and surfaces to the caller.
func (m *Manager) Login(ctx context.Context, loginToken string) (Credentials, error) {
	if loginToken == "" {
		return Credentials{}, &common.ValidationError{Field: "loginToken", Err: errors.New("empty")}
	}

	m.mu.Lock()
	m.state = StateAuthenticating
	m.mu.Unlock()

	grantCode, err := m.auth.ExchangeGrantCode(ctx, loginToken)
	if err != nil {
		m.Logout(ctx)
		return Credentials{}, &common.AuthError{Op: "exchange grant code", Err: err}
	}

	grant, err := m.auth.ExchangeSession(ctx, grantCode)
	if err != nil {
		m.Logout(ctx)
		return Credentials{}, &common.AuthError{Op: "exchange session", Err: err}
	}

	creds := Credentials{
		LoginToken: loginToken,
		Cred:       grant.Cred,
		SignToken:  grant.SignToken,
		UserID:     grant.UserID,
	}
	if !creds.Valid() {
		m.Logout(ctx)
		return Credentials{}, &common.ValidationError{Field: "credentials", Err: errors.New("incomplete credential set from exchange")}
	}

	m.mu.Lock()
	m.creds = creds
	m.state = StateLoggedIn
	m.lastUpdated = m.nowFn()
	m.restoreAttempts = 0
	primer := m.primer
	m.mu.Unlock()

	roles, err := m.BindingRoles(ctx, true)
	if err != nil {
		m.Logout(ctx)
		return Credentials{}, err
	}

	if len(roles) > 0 && primer != nil {
		if err := primer.Prime(ctx); err != nil {
			m.Logout(ctx)
			return Credentials{}, err
		}
	}

	// Best-effort: a storage failure is reported by the persist step
	// itself and never fails the login.
	m.SchedulePersist()

	m.log.Info(ctx, "login complete", "userId", creds.UserID, "roles", len(roles))
	return creds, nil
}

// LoginByPassword obtains a login token from phone/password credentials
// and runs the standard login flow with it.
func (m *Manager) LoginByPassword(ctx context.Context, phone, password string) (Credentials, error) {
	token, err := m.auth.LoginByPassword(ctx, phone, password)
	if err != nil {
		return Credentials{}, &common.AuthError{Op: "password login", Err: err}
	}
	return m.Login(ctx, token)
}

// LoginBySMSCode obtains a login token from a phone/sms-code pair and runs
// the standard login flow with it.
func (m *Manager) LoginBySMSCode(ctx context.Context, phone, code string) (Credentials, error) {
	token, err := m.auth.LoginBySMSCode(ctx, phone, code)
	if err != nil {
		return Credentials{}, &common.AuthError{Op: "sms login", Err: err}
	}
	return m.Login(ctx, token)
}
