package api

import "time"

// User is a registered account in the registry.
type User struct {
	ID        int64     `json:"id"`
	Login     string    `json:"login"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// APIToken is a persisted bearer credential belonging to a user. The token
// string itself is never stored; only its SHA-256 digest is kept at rest.
type APIToken struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	Name       string     `json:"name"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
