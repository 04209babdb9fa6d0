// Package postgres provides a PostgreSQL implementation of storage.Store.
// It uses pgx/v5 for connection pooling and stores only SHA-256 digests of
// token strings.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cargoport/cargoport/pkg/api"
	"github.com/cargoport/cargoport/pkg/storage"
)

// Store is a PostgreSQL-backed storage.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// Acquire checks a connection out of the pool. A pool-exhaustion or
// connectivity failure is returned unchanged.
func (s *Store) Acquire(ctx context.Context) (storage.Conn, error) {
	pc, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &conn{conn: pc}, nil
}

// Close shuts down the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// SeedUser inserts a user row and returns its id. Used by tests and the
// seed tooling; account registration itself lives outside this service.
func (s *Store) SeedUser(ctx context.Context, login, email string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (login, email) VALUES ($1, $2) RETURNING id`,
		login, email,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting user: %w", err)
	}
	return id, nil
}

// SeedToken inserts a token row for a user and returns its id. legacyRandom
// marks tokens produced by the deprecated insecure generator; looking one up
// yields the revoked-token signal.
func (s *Store) SeedToken(ctx context.Context, userID int64, name, plaintext string, legacyRandom bool) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO api_tokens (user_id, name, token_digest, legacy_random)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		userID, name, storage.TokenDigest(plaintext), legacyRandom,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting token: %w", err)
	}
	return id, nil
}

// conn is a checked-out pool connection.
type conn struct {
	conn *pgxpool.Conn
}

// FindTokenByString implements storage.Conn. The presented token is hashed
// and matched against stored digests. A row flagged legacy_random yields the
// distinguished revoked-token signal instead of the record.
func (c *conn) FindTokenByString(ctx context.Context, token string) (*api.APIToken, error) {
	var (
		t            api.APIToken
		lastUsedAt   *time.Time
		legacyRandom bool
	)
	err := c.conn.QueryRow(ctx, `
		SELECT id, user_id, name, last_used_at, created_at, legacy_random
		FROM api_tokens
		WHERE token_digest = $1
	`, storage.TokenDigest(token)).Scan(
		&t.ID, &t.UserID, &t.Name, &lastUsedAt, &t.CreatedAt, &legacyRandom,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying token: %w", err)
	}

	if legacyRandom {
		return nil, &api.TokenRevokedError{}
	}

	t.LastUsedAt = lastUsedAt

	// Touch last_used_at outside the hot path's error handling; a failure
	// here must not reject an otherwise valid token.
	if _, err := c.conn.Exec(ctx,
		`UPDATE api_tokens SET last_used_at = now() WHERE id = $1`, t.ID,
	); err != nil {
		return &t, nil
	}

	return &t, nil
}

// FindUser implements storage.Conn.
func (c *conn) FindUser(ctx context.Context, id int64) (*api.User, error) {
	var u api.User
	err := c.conn.QueryRow(ctx, `
		SELECT id, login, email, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Login, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

// ListTokensForUser implements storage.Conn.
func (c *conn) ListTokensForUser(ctx context.Context, userID int64) ([]api.APIToken, error) {
	rows, err := c.conn.Query(ctx, `
		SELECT id, user_id, name, last_used_at, created_at
		FROM api_tokens
		WHERE user_id = $1 AND NOT legacy_random
		ORDER BY id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying tokens: %w", err)
	}
	defer rows.Close()

	var out []api.APIToken
	for rows.Next() {
		var t api.APIToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.LastUsedAt, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tokens: %w", err)
	}
	return out, nil
}

// Release returns the connection to the pool.
func (c *conn) Release() {
	c.conn.Release()
}
