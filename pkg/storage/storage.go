package storage

import (
	"context"

	"github.com/cargoport/cargoport/pkg/api"
)

// Store hands out connections to the backing database.
type Store interface {
	// Acquire checks out a connection. Callers must Release it.
	Acquire(ctx context.Context) (Conn, error)

	// Close releases all resources held by the store.
	Close()
}

// Conn is a checked-out database connection.
type Conn interface {
	// FindTokenByString looks up an API token by its presented plaintext
	// string. Returns ErrNotFound when no token matches, or
	// *api.TokenRevokedError when the matching token was generated by the
	// deprecated insecure generator and has been revoked.
	FindTokenByString(ctx context.Context, token string) (*api.APIToken, error)

	// FindUser looks up a user by id. Returns ErrNotFound when missing.
	FindUser(ctx context.Context, id int64) (*api.User, error)

	// ListTokensForUser returns all live tokens belonging to a user,
	// newest first.
	ListTokensForUser(ctx context.Context, userID int64) ([]api.APIToken, error)

	// Release returns the connection to the store.
	Release()
}
