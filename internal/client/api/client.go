// Package api defines the remote capabilities the client core consumes and
// the typed models of the payloads they return. The actual signed HTTP
// client lives outside this module; everything here is the contract the
// session manager and the derivation engine program against.
package api

import "context"

// SessionGrant is the credential triple returned by the grant-code
// exchange. All fields are opaque to this client.
type SessionGrant struct {
	Cred      string
	SignToken string
	UserID    string
}

// AuthClient performs the two-step credential exchange.
//
// Contract:
//   - ExchangeGrantCode trades a login token for a short-lived grant code.
//   - ExchangeSession trades the grant code for the session credential set.
//   - LoginByPassword / LoginBySMSCode obtain a login token from primary
//     credentials; they exist for the interactive CLI and are never called
//     by the session manager itself.
//
// All methods must honor context cancellation/timeouts.
type AuthClient interface {
	LoginByPassword(ctx context.Context, phone, password string) (string, error)
	LoginBySMSCode(ctx context.Context, phone, code string) (string, error)
	ExchangeGrantCode(ctx context.Context, loginToken string) (string, error)
	ExchangeSession(ctx context.Context, grantCode string) (SessionGrant, error)
}

// GameClient fetches account-bound game data with an established session.
type GameClient interface {
	// BindingRoles lists the game roles bound to the account.
	BindingRoles(ctx context.Context, cred, signToken string) ([]Role, error)

	// PlayerSnapshot fetches the full point-in-time game state for uid.
	PlayerSnapshot(ctx context.Context, cred, signToken, uid string) (*Snapshot, error)
}

// Role is one game role bound to the account.
type Role struct {
	UID             string `json:"uid"`
	IsOfficial      bool   `json:"isOfficial"`
	IsDefault       bool   `json:"isDefault"`
	ChannelMasterID string `json:"channelMasterId"`
	ChannelName     string `json:"channelName"`
	NickName        string `json:"nickName"`
}

// DefaultRole picks the role flagged IsDefault, falling back to the first
// element. Returns false when the list is empty.
func DefaultRole(roles []Role) (Role, bool) {
	if len(roles) == 0 {
		return Role{}, false
	}
	for _, r := range roles {
		if r.IsDefault {
			return r, true
		}
	}
	return roles[0], true
}
