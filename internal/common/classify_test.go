package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsAuthError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"typed", &AuthError{Op: "exchange", Err: errors.New("rejected")}, true},
		{"wrapped typed", fmt.Errorf("login: %w", &AuthError{Op: "x", Err: errors.New("no")}), true},
		{"status 401 in message", errors.New("server replied 401"), true},
		{"unauthorized keyword", errors.New("request unauthorized"), true},
		{"token expired keyword", errors.New("token expired, refresh required"), true},
		{"session expired sentinel", ErrSessionExpired, true},
		{"plain error", errors.New("disk full"), false},
		{"network error", &NetworkError{Op: "fetch", Err: errors.New("dial tcp: refused")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsAuthError(tt.err))
		})
	}
}

func TestIsNetworkError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"typed", &NetworkError{Op: "fetch", Err: errors.New("down")}, true},
		{"wrapped typed", fmt.Errorf("roles: %w", &NetworkError{Op: "x", Err: errors.New("y")}), true},
		{"timeout keyword", errors.New("request timeout after 5s"), true},
		{"dns keyword", errors.New("lookup api.example.org: no such host"), true},
		{"refused keyword", errors.New("dial tcp 1.2.3.4:443: connection refused"), true},
		{"auth error", &AuthError{Op: "x", StatusCode: 401, Err: errors.New("no")}, false},
		{"plain error", errors.New("parse failure"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsNetworkError(tt.err))
		})
	}
}

func TestTypedErrorFormatting(t *testing.T) {
	ae := &AuthError{Op: "exchange", StatusCode: 401, Err: errors.New("rejected")}
	require.Contains(t, ae.Error(), "exchange")
	require.Contains(t, ae.Error(), "401")

	se := &StorageError{Op: "persist", Err: errors.New("readonly fs")}
	require.Contains(t, se.Error(), "persist")
	require.ErrorIs(t, se, se.Err)

	ve := &ValidationError{Field: "signToken", Err: errors.New("empty")}
	require.Contains(t, ve.Error(), "signToken")
}
