package domain

import "time"

// User is an account that can own pages. The password hash is nullable to
// leave room for externally-provisioned accounts that never set one; such
// accounts cannot log in with credentials.
type User struct {
	ID           string
	Email        string
	PasswordHash *string
	IsActive     bool
	CreatedAt    time.Time
}

// Session is a server-side record backing a bearer token. A token is only
// valid while its session row exists and has not expired, so logout is a
// simple row delete even though the JWT itself is stateless.
type Session struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session has passed its expiry time.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
