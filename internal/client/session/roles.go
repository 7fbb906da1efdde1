package session

import (
	"context"
	"fmt"

	"github.com/antonk9218/skdesk/internal/client/api"
	"github.com/antonk9218/skdesk/internal/common"
)

// BindingRoles returns the account's bound game roles, serving the cached
// list while it is fresh unless force is set.
//
// Failure policy:
//   - auth error: the session is terminated and ErrSessionExpired surfaces
//     so the UI can prompt a re-login;
//   - network error with a non-empty cached list: the stale list is served
//     and the error demoted to a warning;
//   - anything else propagates.
func (m *Manager) BindingRoles(ctx context.Context, force bool) ([]api.Role, error) {
	m.mu.Lock()
	creds := m.creds
	cached := append([]api.Role(nil), m.roles...)
	age := m.nowFn().Sub(m.rolesFetchedAt)
	m.mu.Unlock()

	if !creds.Valid() {
		return nil, common.ErrNotLoggedIn
	}

	if !force && len(cached) > 0 && age < m.cfg.RolesCacheTTL {
		m.log.Debug(ctx, "serving cached role list", "roles", len(cached), "age", age)
		return cached, nil
	}

	roles, err := m.game.BindingRoles(ctx, creds.Cred, creds.SignToken)
	if err != nil {
		if common.IsAuthError(err) {
			m.Logout(ctx)
			return nil, fmt.Errorf("%w: %w", common.ErrSessionExpired, err)
		}
		if common.IsNetworkError(err) && len(cached) > 0 {
			m.log.Warn(ctx, "role fetch failed, serving cached list", "err", err)
			return cached, nil
		}
		return nil, fmt.Errorf("fetch binding roles: %w", err)
	}

	m.mu.Lock()
	m.roles = roles
	m.rolesFetchedAt = m.nowFn()
	m.lastUpdated = m.nowFn()
	m.mu.Unlock()

	m.SchedulePersist()
	m.log.Debug(ctx, "role list refreshed", "roles", len(roles))
	return append([]api.Role(nil), roles...), nil
}
