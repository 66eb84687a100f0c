// Package sessions persists the bearer token of the single active
// session. Backends: in-memory (tests, ephemeral processes), SQLite
// (durable local storage) and Redis (shared between replicas).
package sessions

import "context"

// Store holds at most one token. Load returns the empty string, not an
// error, when no session is stored.
type Store interface {
	Save(ctx context.Context, token string) error
	Load(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}
