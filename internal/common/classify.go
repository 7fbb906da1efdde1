package common

import (
	"errors"
	"strings"
)

// authKeywords are message fragments that mark a credential failure coming
// from a collaborator that did not wrap its error in *AuthError.
var authKeywords = []string{
	"401",
	"unauthorized",
	"auth failed",
	"token expired",
	"cred expired",
	"invalid token",
	"invalid cred",
	"login expired",
}

// networkKeywords mark connectivity failures: DNS, dial, timeout.
var networkKeywords = []string{
	"network",
	"timeout",
	"timed out",
	"connection refused",
	"connection reset",
	"no such host",
	"i/o timeout",
	"dial tcp",
}

// IsAuthError reports whether err should be treated as a credential
// failure. It matches typed *AuthError values, an embedded 401 status
// code, the ErrSessionExpired sentinel, and the fixed keyword set.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return true
	}
	if errors.Is(err, ErrSessionExpired) {
		return true
	}
	return containsAny(err.Error(), authKeywords)
}

// IsNetworkError reports whether err should be treated as a connectivity
// failure, which gates the serve-stale fallback in data fetch paths.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return true
	}
	return containsAny(err.Error(), networkKeywords)
}

func containsAny(msg string, keywords []string) bool {
	msg = strings.ToLower(msg)
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}
