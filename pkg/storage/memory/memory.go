// Package memory provides an in-memory storage.Store for tests and
// lightweight single-node deployments. All data is lost when the process
// exits.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cargoport/cargoport/pkg/api"
	"github.com/cargoport/cargoport/pkg/storage"
)

// tokenEntry holds a token record and the flag marking tokens produced by
// the deprecated insecure generator.
type tokenEntry struct {
	token        api.APIToken
	legacyRandom bool
}

// Store is an in-memory storage.Store.
type Store struct {
	mu     sync.RWMutex
	users  map[int64]api.User
	tokens map[string]*tokenEntry // keyed by digest
	nextID int64
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:  make(map[int64]api.User),
		tokens: make(map[string]*tokenEntry),
		nextID: 1,
	}
}

// AddUser inserts a user and returns its assigned id.
func (s *Store) AddUser(login, email string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.users[id] = api.User{
		ID:        id,
		Login:     login,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	return id
}

// RemoveUser deletes a user row, leaving any tokens that reference it
// dangling. Used by tests to simulate a missing backing row.
func (s *Store) RemoveUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// AddToken inserts a token for the given user and returns its assigned id.
func (s *Store) AddToken(userID int64, name, plaintext string) int64 {
	return s.addToken(userID, name, plaintext, false)
}

// AddLegacyToken inserts a token flagged as generated by the deprecated
// insecure generator. Looking it up yields the revoked-token signal.
func (s *Store) AddLegacyToken(userID int64, name, plaintext string) int64 {
	return s.addToken(userID, name, plaintext, true)
}

func (s *Store) addToken(userID int64, name, plaintext string, legacy bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.tokens[storage.TokenDigest(plaintext)] = &tokenEntry{
		token: api.APIToken{
			ID:        id,
			UserID:    userID,
			Name:      name,
			CreatedAt: time.Now().UTC(),
		},
		legacyRandom: legacy,
	}
	return id
}

// Acquire returns a connection view of the store. Acquisition never fails
// for the in-memory adapter.
func (s *Store) Acquire(ctx context.Context) (storage.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &conn{store: s}, nil
}

// Close is a no-op for the in-memory adapter.
func (s *Store) Close() {}

// conn is a borrowed view of the store.
type conn struct {
	store *Store
}

// FindTokenByString implements storage.Conn.
func (c *conn) FindTokenByString(ctx context.Context, token string) (*api.APIToken, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	entry, ok := c.store.tokens[storage.TokenDigest(token)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if entry.legacyRandom {
		return nil, &api.TokenRevokedError{}
	}
	t := entry.token
	return &t, nil
}

// FindUser implements storage.Conn.
func (c *conn) FindUser(ctx context.Context, id int64) (*api.User, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	u, ok := c.store.users[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

// ListTokensForUser implements storage.Conn.
func (c *conn) ListTokensForUser(ctx context.Context, userID int64) ([]api.APIToken, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()

	var out []api.APIToken
	for _, entry := range c.store.tokens {
		if entry.token.UserID == userID && !entry.legacyRandom {
			out = append(out, entry.token)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Release is a no-op for the in-memory adapter.
func (c *conn) Release() {}
