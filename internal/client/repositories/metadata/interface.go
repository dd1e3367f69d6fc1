// Package metadata persists small client-side values (the sealed session,
// the key derivation salt) in the local SQLite database.
package metadata

import (
	"context"
)

type Repository interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes every given key; absent keys are ignored.
	Delete(ctx context.Context, keys ...string) error
	// List returns all pairs whose key starts with prefix.
	List(ctx context.Context, prefix string) (map[string][]byte, error)
	// Reset atomically replaces everything stored with values.
	Reset(ctx context.Context, values map[string][]byte) error
}
