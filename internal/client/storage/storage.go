// Package storage provides the durable key-value store the session manager
// persists into. The interface is deliberately tiny: the session layer
// treats storage as a write-mostly sink read only at restore time.
package storage

import "context"

// KV is the durable key-value capability.
//
// Contract:
//   - Get returns (nil, nil) when the key is absent.
//   - Set overwrites an existing value.
//   - Remove of a missing key is not an error.
//   - RemovePrefix deletes every key with the given prefix (used for the
//     per-user credential-check cache entries on logout).
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	RemovePrefix(ctx context.Context, prefix string) error
}
