// Package common defines the error taxonomy shared by the session manager
// and the snapshot derivation engine, plus the keyword classification used
// to pick fallback behavior for remote-call failures. Callers match typed
// errors with errors.As and sentinels with errors.Is.
package common

import (
	"errors"
	"fmt"
)

// Sentinel errors for flow control.
var (
	// ErrNotLoggedIn is returned by operations that require an
	// authenticated session.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrNoBindingRoles is returned when the account has no bound game roles.
	ErrNoBindingRoles = errors.New("no binding roles")

	// ErrSessionExpired signals that stored or in-memory credentials were
	// rejected by the remote service and a fresh login is required.
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrRestoreLimitReached means restore was refused because too many
	// consecutive attempts failed since the last successful login.
	ErrRestoreLimitReached = errors.New("restore attempt limit reached")

	// ErrCorruptedState marks a persisted session blob that failed
	// validation and was cleared.
	ErrCorruptedState = errors.New("persisted state corrupted")

	// ErrStateExpired marks a persisted session blob older than the local
	// storage expiry window.
	ErrStateExpired = errors.New("persisted state expired")
)

// AuthError is a credential failure: a rejected exchange, a 401-class
// remote response, or an expired token/cred.
type AuthError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("auth error in %s (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("auth error in %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NetworkError is a connectivity or timeout failure on a remote call.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error in %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError is a malformed stored or remote payload.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("validation error: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StorageError is a durable-storage read or write failure. It is always
// non-fatal to the operation that triggered the persist.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
